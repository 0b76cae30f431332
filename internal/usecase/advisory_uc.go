package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"agro-advisory/internal/domain"
	"agro-advisory/internal/domain/model"
	"agro-advisory/internal/domain/ports/adapter"
	"agro-advisory/internal/domain/ports/repository"
	"agro-advisory/internal/infra/metrics"
)

// Compile-time check
var _ AdvisoryUseCase = (*advisoryUC)(nil)

// newsTokenBudget caps the news block of a fragility prompt. Headlines
// beyond the budget are dropped oldest-first.
const newsTokenBudget = 512

// CropAdviceRequest describes one crop-advice generation. Empty fields
// fall back to the farmer's stored profile.
type CropAdviceRequest struct {
	FarmerUID string
	Crops     []string
	Stage     string
	State     string
	LGA       string
	Language  string
	Lat, Lon  float64
}

// FragilityRequest describes one regional-fragility assessment.
type FragilityRequest struct {
	FarmerUID string
	State     string
	LGA       string
	Language  string
	Lat, Lon  float64
}

type AdvisoryUseCase interface {
	// CropAdvice generates per-crop guidance. An identified farmer must
	// hold active access and gets profile fallback plus history; an
	// anonymous request works from the body alone. The result is
	// structured when the model cooperated and a raw-text fallback when
	// it did not; generation never fails on a malformed model response.
	CropAdvice(ctx context.Context, req CropAdviceRequest) (*model.AdviceResult, error)
	// Fragility generates a regional risk assessment, enriched with
	// recent local headlines when a news provider is configured.
	Fragility(ctx context.Context, req FragilityRequest) (*model.AdviceResult, error)
	// History lists a farmer's recent advisories of one kind.
	History(ctx context.Context, farmerUID string, kind model.AdvisoryKind, limit int) ([]*model.Advisory, error)
}

type advisoryUC struct {
	ai      adapter.AIServiceAdapter
	weather adapter.WeatherProvider // optional
	news    adapter.NewsProvider    // optional
	farmers repository.FarmerRepository
	history repository.AdvisoryRepository
	subs    SubscriptionUseCase

	temperature float64
	maxTokens   int
	enc         *tiktoken.Tiktoken
}

func NewAdvisoryUseCase(ai adapter.AIServiceAdapter, weather adapter.WeatherProvider, news adapter.NewsProvider, farmers repository.FarmerRepository, history repository.AdvisoryRepository, subs SubscriptionUseCase, temperature float64, maxTokens int) *advisoryUC {
	// cl100k_base is close enough for budget purposes across providers.
	enc, _ := tiktoken.GetEncoding("cl100k_base")
	return &advisoryUC{
		ai:          ai,
		weather:     weather,
		news:        news,
		farmers:     farmers,
		history:     history,
		subs:        subs,
		temperature: temperature,
		maxTokens:   maxTokens,
		enc:         enc,
	}
}

func (u *advisoryUC) CropAdvice(ctx context.Context, req CropAdviceRequest) (*model.AdviceResult, error) {
	farmer, err := u.resolveFarmer(ctx, req.FarmerUID)
	if err != nil {
		return nil, err
	}
	if farmer != nil {
		if len(req.Crops) == 0 {
			req.Crops = farmer.Crops
		}
		if req.State == "" {
			req.State = farmer.State
		}
		if req.LGA == "" {
			req.LGA = farmer.LGA
		}
		if req.Language == "" {
			req.Language = farmer.Language
		}
	}
	if len(req.Crops) == 0 {
		return nil, domain.ErrInvalidArgument
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Location: %s\n", joinLocation(req.State, req.LGA))
	if w := u.currentWeather(ctx, req.Lat, req.Lon); w != nil {
		fmt.Fprintf(&b, "Current weather: %.1f C, %d%% humidity, %s\n", w.TempC, w.Humidity, w.Condition)
	}
	fmt.Fprintf(&b, "Crops: %s\n", strings.Join(req.Crops, ", "))
	if req.Stage != "" {
		fmt.Fprintf(&b, "Growth stage: %s\n", req.Stage)
	}
	b.WriteString("Give practical advice for each crop for the next two weeks.")

	result, err := u.generate(ctx, model.AdvisoryKindCrop, cropSystemPrompt(req.Language), b.String())
	if err != nil {
		return nil, err
	}
	u.record(ctx, req.FarmerUID, model.AdvisoryKindCrop, result)
	return result, nil
}

func (u *advisoryUC) Fragility(ctx context.Context, req FragilityRequest) (*model.AdviceResult, error) {
	farmer, err := u.resolveFarmer(ctx, req.FarmerUID)
	if err != nil {
		return nil, err
	}
	if farmer != nil {
		if req.State == "" {
			req.State = farmer.State
		}
		if req.LGA == "" {
			req.LGA = farmer.LGA
		}
		if req.Language == "" {
			req.Language = farmer.Language
		}
	}
	if req.State == "" {
		return nil, domain.ErrInvalidArgument
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Region: %s\n", joinLocation(req.State, req.LGA))
	if w := u.currentWeather(ctx, req.Lat, req.Lon); w != nil {
		fmt.Fprintf(&b, "Current weather: %.1f C, %d%% humidity, %s\n", w.TempC, w.Humidity, w.Condition)
	}
	if news := u.recentHeadlines(ctx, req.State); news != "" {
		b.WriteString("Recent local headlines:\n")
		b.WriteString(news)
	}
	b.WriteString("Assess agricultural fragility for this region: flooding, drought, pests, market disruption, insecurity.")

	result, err := u.generate(ctx, model.AdvisoryKindFragility, fragilitySystemPrompt(req.Language), b.String())
	if err != nil {
		return nil, err
	}
	u.record(ctx, req.FarmerUID, model.AdvisoryKindFragility, result)
	return result, nil
}

func (u *advisoryUC) History(ctx context.Context, farmerUID string, kind model.AdvisoryKind, limit int) ([]*model.Advisory, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return u.history.ListByFarmer(ctx, repository.NoTX, farmerUID, kind, limit)
}

// resolveFarmer loads the caller's profile when a uid is known. Anonymous
// requests resolve to nil; an identified farmer without active access is
// rejected.
func (u *advisoryUC) resolveFarmer(ctx context.Context, farmerUID string) (*model.Farmer, error) {
	if farmerUID == "" {
		return nil, nil
	}
	farmer, err := u.farmers.FindByUID(ctx, repository.NoTX, farmerUID)
	if err != nil {
		return nil, err
	}
	if !farmer.HasActiveAccess(time.Now()) {
		return nil, domain.ErrNoActiveAccess
	}
	return farmer, nil
}

func (u *advisoryUC) generate(ctx context.Context, kind model.AdvisoryKind, system, user string) (*model.AdviceResult, error) {
	start := time.Now()
	text, err := u.ai.Chat(ctx, []adapter.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: user},
	}, adapter.ChatOptions{Temperature: u.temperature, MaxTokens: u.maxTokens})
	metrics.ObserveModelCall(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}
	result := parseAdviceResponse(kind, text)
	metrics.IncAdvisory(string(kind), result.Structured)
	return result, nil
}

// record persists the advisory for history. Best-effort: the advice has
// already been generated and must reach the caller either way. Anonymous
// generations have no history to attach to.
func (u *advisoryUC) record(ctx context.Context, farmerUID string, kind model.AdvisoryKind, result *model.AdviceResult) {
	if farmerUID == "" {
		return
	}
	_ = u.history.Save(ctx, repository.NoTX, &model.Advisory{
		FarmerUID: farmerUID,
		Kind:      kind,
		Result:    *result,
		CreatedAt: time.Now(),
	})
}

func (u *advisoryUC) currentWeather(ctx context.Context, lat, lon float64) *adapter.Weather {
	if u.weather == nil || (lat == 0 && lon == 0) {
		return nil
	}
	w, err := u.weather.Current(ctx, lat, lon)
	if err != nil {
		return nil
	}
	return w
}

// recentHeadlines returns a newline-joined news block trimmed to the token
// budget, or "" when no provider is wired or nothing recent exists.
func (u *advisoryUC) recentHeadlines(ctx context.Context, state string) string {
	if u.news == nil {
		return ""
	}
	items, err := u.news.Recent(ctx, state+" Nigeria agriculture", 10)
	if err != nil || len(items) == 0 {
		return ""
	}
	var b strings.Builder
	for _, it := range items {
		line := fmt.Sprintf("- %s (%s)\n", it.Title, it.Source)
		if u.countTokens(b.String()+line) > newsTokenBudget {
			break
		}
		b.WriteString(line)
	}
	return b.String()
}

func (u *advisoryUC) countTokens(s string) int {
	if u.enc == nil {
		// Rough heuristic when the encoding is unavailable.
		return len(s) / 4
	}
	return len(u.enc.Encode(s, nil, nil))
}

func cropSystemPrompt(language string) string {
	return "You are an agricultural extension advisor for Nigerian smallholder farmers. " +
		"Answer " + inLanguage(language) + " with strictly this JSON shape and nothing else: " +
		`{"header": string, "items": [{"crop": string, "stage": string, "advice": string}]}`
}

func fragilitySystemPrompt(language string) string {
	return "You are an agricultural risk analyst covering Nigerian regions. " +
		"Answer " + inLanguage(language) + " with strictly this JSON shape and nothing else: " +
		`{"header": string, "sections": [{"title": string, "summary": string, "severity": "low"|"moderate"|"high"}]}`
}

func inLanguage(language string) string {
	if language == "" {
		return "in English"
	}
	return "in " + language
}

func joinLocation(state, lga string) string {
	if lga == "" {
		return state
	}
	return lga + ", " + state
}

// parseAdviceResponse turns raw model text into an AdviceResult. Three
// attempts: the whole text as JSON, then the outermost brace-delimited
// substring (models love to wrap JSON in prose or code fences), then the
// raw text as an unstructured fallback. It never returns an error.
func parseAdviceResponse(kind model.AdvisoryKind, raw string) *model.AdviceResult {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if r, ok := tryParse(kind, text); ok {
		return r
	}
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		if r, ok := tryParse(kind, text[start:end+1]); ok {
			return r
		}
	}
	return &model.AdviceResult{Raw: strings.TrimSpace(raw)}
}

func tryParse(kind model.AdvisoryKind, text string) (*model.AdviceResult, bool) {
	var r model.AdviceResult
	if err := json.Unmarshal([]byte(text), &r); err != nil {
		return nil, false
	}
	switch kind {
	case model.AdvisoryKindCrop:
		if len(r.Items) == 0 {
			return nil, false
		}
		r.Sections = nil
	case model.AdvisoryKindFragility:
		if len(r.Sections) == 0 {
			return nil, false
		}
		r.Items = nil
	}
	r.Structured = true
	r.Raw = ""
	return &r, true
}
