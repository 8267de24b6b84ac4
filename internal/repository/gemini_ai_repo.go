package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"stock-insight/config"
	"stock-insight/internal/dto"
	"stock-insight/pkg/httpclient"
	"stock-insight/pkg/logger"
	"stock-insight/pkg/ratelimit"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com"

	// Free-tier request ceiling; the token budget is configured separately.
	geminiMaxRequestPerMin = 15
)

type AIRepository interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateStructured(ctx context.Context, prompt string, dest interface{}) error
}

type geminiAIRepository struct {
	cfg            *config.Config
	log            *logger.Logger
	client         httpclient.HTTPClient
	genaiClient    *genai.Client
	tokenLimiter   *ratelimit.TokenLimiter
	requestLimiter *rate.Limiter
}

func NewGeminiAIRepository(cfg *config.Config, log *logger.Logger) (AIRepository, error) {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.Gemini.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiAIRepository{
		cfg:            cfg,
		log:            log,
		client:         httpclient.New(geminiBaseURL, cfg.Gemini.Timeout),
		genaiClient:    genaiClient,
		tokenLimiter:   ratelimit.NewTokenLimiter(cfg.Gemini.MaxTokenPerMinutes),
		requestLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(geminiMaxRequestPerMin)), 1),
	}, nil
}

func (r *geminiAIRepository) GenerateText(ctx context.Context, prompt string) (string, error) {
	return r.generate(ctx, prompt, "")
}

// GenerateStructured asks for a JSON response and unmarshals it into dest.
// Markdown code fences around the payload are stripped first.
func (r *geminiAIRepository) GenerateStructured(ctx context.Context, prompt string, dest interface{}) error {
	raw, err := r.generate(ctx, prompt, "application/json")
	if err != nil {
		return err
	}

	jsonString := strings.TrimSpace(raw)
	jsonString = strings.Trim(jsonString, "`json \n")
	if err := json.Unmarshal([]byte(jsonString), dest); err != nil {
		r.log.ErrorContext(ctx, "failed to parse model response",
			logger.ErrorField(err),
			logger.StringField("response", truncateForLog(raw)))
		return fmt.Errorf("failed to parse model response: %w", err)
	}
	return nil
}

func (r *geminiAIRepository) generate(ctx context.Context, prompt, responseMIMEType string) (string, error) {
	if err := r.waitForBudget(ctx, prompt); err != nil {
		return "", err
	}

	body := dto.GeminiAPIRequest{
		Contents: []dto.GeminiContent{
			{Role: "user", Parts: []dto.GeminiPart{{Text: prompt}}},
		},
	}
	if responseMIMEType != "" {
		body.GenerationConfig = &dto.GeminiGenerationConfig{ResponseMIMEType: responseMIMEType}
	}

	endpoint := fmt.Sprintf("/v1beta/models/%s:generateContent?key=%s", r.cfg.Gemini.Model, r.cfg.Gemini.APIKey)
	headers := map[string]string{"Content-Type": "application/json"}

	var apiResp dto.GeminiAPIResponse
	resp, err := r.client.Post(ctx, endpoint, body, headers, &apiResp)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, truncateForLog(string(resp.Body)))
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	return apiResp.Candidates[0].Content.Parts[0].Text, nil
}

// waitForBudget reserves the prompt's token count against the per-minute
// budget, then waits on the request limiter. Falls back to a rough
// 4-chars-per-token estimate when counting fails.
func (r *geminiAIRepository) waitForBudget(ctx context.Context, prompt string) error {
	tokens := len(prompt) / 4
	contents := []*genai.Content{genai.NewContentFromText(prompt, "user")}
	countResp, err := r.genaiClient.Models.CountTokens(ctx, r.cfg.Gemini.Model, contents, nil)
	if err != nil {
		r.log.WarnContext(ctx, "token count failed, using estimate",
			logger.ErrorField(err),
			logger.IntField("estimated_tokens", tokens))
	} else {
		tokens = int(countResp.TotalTokens)
	}

	if err := r.tokenLimiter.Wait(ctx, tokens); err != nil {
		return err
	}
	return r.requestLimiter.Wait(ctx)
}

func truncateForLog(s string) string {
	const max = 500
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
