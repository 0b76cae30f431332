package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"agro-advisory/internal/config"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/adapter"
	aiAdapters "agro-advisory/internal/infra/adapters/ai"
	identityAdapters "agro-advisory/internal/infra/adapters/identity"
	newsAdapters "agro-advisory/internal/infra/adapters/news"
	payAdapters "agro-advisory/internal/infra/adapters/payment"
	weatherAdapters "agro-advisory/internal/infra/adapters/weather"
	"agro-advisory/internal/infra/api"
	pg "agro-advisory/internal/infra/db/postgres"
	"agro-advisory/internal/infra/logging"
	"agro-advisory/internal/infra/metrics"
	red "agro-advisory/internal/infra/redis"
	"agro-advisory/internal/infra/sched"
	"agro-advisory/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed validation, noop fallbacks)")
	flag.Parse()

	// .env is optional; deployment environments inject variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("[DEV MODE] Enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	txMgr := pg.NewTxManager(pool)
	codeRepo := pg.NewAccessCodeRepo(pool)
	farmerRepo := pg.NewFarmerRepo(pool)
	advisoryRepo := pg.NewAdvisoryRepo(pool)

	// ---- Identity (remote -> local) ----
	var identity adapter.IdentityProvider
	switch strings.ToLower(cfg.Identity.Mode) {
	case "", "remote":
		remote, err := identityAdapters.NewFirebaseIdentity(ctx, cfg.Identity.APIKey, cfg.Identity.BaseURL, cfg.Identity.ServiceAccountKey)
		if err != nil {
			log.Fatalf("identity: %v", err)
		}
		identity = remote
		logger.Info().Str("base_url", cfg.Identity.BaseURL).Msg("identity: remote")
	case "local":
		identity = identityAdapters.NewLocalIdentity(cfg.Identity.LocalSecret)
		logger.Info().Msg("identity: local HS256")
	default:
		log.Fatalf("identity: unknown mode %q", cfg.Identity.Mode)
	}

	// ---- AI adapter (OpenAI -> Gemini -> noop in dev) ----
	var ai adapter.AIServiceAdapter
	switch {
	case cfg.AI.OpenAIKey != "":
		ai, err = aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, cfg.AI.DefaultModel)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	case cfg.AI.GeminiKey != "":
		ai, err = aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, cfg.AI.DefaultModel)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: Gemini")
	case cfg.Runtime.Dev:
		ai = aiAdapters.NewNoopAIAdapter()
		logger.Warn().Msg("AI adapter: noop (dev)")
	default:
		log.Fatalf("no AI provider configured: set ai.openai_key or ai.gemini_key in %s", *cfgPath)
	}

	// ---- Payment gateway (Paystack -> noop in dev) ----
	var gateway adapter.PaymentGateway
	if cfg.Payment.Paystack.SecretKey != "" {
		gateway, err = payAdapters.NewPaystackGateway(cfg.Payment.Paystack.SecretKey)
		if err != nil {
			log.Fatalf("paystack gateway: %v", err)
		}
	} else if cfg.Runtime.Dev {
		gateway = payAdapters.NewNoopPaymentGateway()
		logger.Warn().Msg("payment gateway: noop (dev)")
	} else {
		log.Fatalf("no payment gateway configured: set payment.paystack.secret_key in %s", *cfgPath)
	}

	// ---- Weather + news (both optional) ----
	var weather adapter.WeatherProvider
	if cfg.Weather.APIKey != "" {
		weather = red.NewWeatherCache(redisClient, weatherAdapters.NewOpenWeatherProvider(cfg.Weather.APIKey), cfg.Redis.WeatherTTL)
	}
	var news adapter.NewsProvider
	if cfg.News.SerpAPIKey != "" {
		news = newsAdapters.NewSerpNewsProvider(cfg.News.SerpAPIKey)
	}

	// ---- Use cases ----
	catalog := model.DefaultCatalog()
	codesUC := usecase.NewAccessCodeUseCase(codeRepo, farmerRepo, txMgr)
	subsUC := usecase.NewSubscriptionUseCase(farmerRepo, catalog)
	callbackURL := strings.TrimRight(cfg.Server.PublicURL, "/") + cfg.Payment.Paystack.CallbackPath
	paymentsUC := usecase.NewPaymentUseCase(gateway, identity, farmerRepo, subsUC, catalog, callbackURL)
	advisoryUC := usecase.NewAdvisoryUseCase(ai, weather, news, farmerRepo, advisoryRepo, subsUC, cfg.AI.Temperature, cfg.AI.MaxTokens)
	farmersUC := usecase.NewFarmerUseCase(farmerRepo, identity)

	// ---- Subscription sweep ----
	sweeper := sched.NewSweepWorker(cfg.Scheduler.SweepInterval, farmerRepo, logger)
	go func() {
		if err := sweeper.Run(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("sweep worker stopped")
		}
	}()

	// ---- HTTP server ----
	srv := api.NewServer(codesUC, subsUC, paymentsUC, advisoryUC, farmersUC, identity, weather, rateLimiter, cfg, logger)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	cancel()
	logger.Info().Msg("server stopped")
}
