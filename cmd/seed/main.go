package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"agro-advisory/internal/config"
	"agro-advisory/internal/domain/model"
	pg "agro-advisory/internal/infra/db/postgres"
)

// seed applies the schema and upserts the configured access code row. It
// is idempotent; rerunning against a live database is safe.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	schemaPath := flag.String("schema", "migrations/0001_init.sql", "path to the schema file")
	devMode := flag.Bool("dev", false, "developer mode (relaxed validation)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Printf("schema applied from %s", *schemaPath)

	code, err := model.NewAccessCode(cfg.AccessCode.Value, cfg.AccessCode.MaxUses)
	if err != nil {
		log.Fatalf("access code: %v", err)
	}
	codeRepo := pg.NewAccessCodeRepo(pool)
	if existing, err := codeRepo.Get(ctx, nil, code.Code); err == nil {
		log.Printf("access code already seeded: uses=%d/%d", existing.Uses, existing.MaxUses)
		return
	}
	if err := codeRepo.Save(ctx, nil, code); err != nil {
		log.Fatalf("seed access code: %v", err)
	}
	log.Printf("access code seeded with cap %d", code.MaxUses)
}
