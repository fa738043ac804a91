package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"go.uber.org/zap"

	"github.com/timecop-bot/timecop/internal/models"
)

const (
	// DefaultOpenAIModel is the default model to use
	DefaultOpenAIModel = "gpt-4o-mini"
	// DefaultOpenAIBaseURL is the default OpenAI API base URL
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	// DefaultTimeout is the default timeout for API calls
	DefaultTimeout = 30 * time.Second

	// ErrNoChoicesInResponse is returned when the API response has no choices
	ErrNoChoicesInResponse = "no choices in response"
)

// OpenAIExtractor implements the Extractor interface using OpenAI's API
type OpenAIExtractor struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIExtractor creates a new OpenAI extractor
func NewOpenAIExtractor(apiKey string, model string) *OpenAIExtractor {
	return NewOpenAIExtractorWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIExtractorWithLogger creates a new OpenAI extractor with logger support
func NewOpenAIExtractorWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIExtractor {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := &http.Client{
		Timeout: DefaultTimeout,
	}

	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
		option.WithHTTPClient(httpClient),
	)

	return &OpenAIExtractor{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// NewOpenAIExtractorWithConfig creates a new OpenAI extractor with custom configuration
func NewOpenAIExtractorWithConfig(apiKey string, baseURL string, model string) *OpenAIExtractor {
	return NewOpenAIExtractorWithLogger(apiKey, baseURL, model, nil, false)
}

// ExtractEntries extracts structured draft entries from free-form text
func (p *OpenAIExtractor) ExtractEntries(ctx context.Context, rawText string, targetDate time.Time) ([]models.DraftEntry, error) {
	if strings.TrimSpace(rawText) == "" {
		return nil, &ExtractionError{Kind: KindInvalidInput, Detail: "empty message"}
	}

	content, err := p.sendExtractionRequest(ctx, rawText, targetDate)
	if err != nil {
		return nil, err
	}

	drafts, err := parseAndValidateExtraction(content)
	if err != nil {
		return nil, err
	}
	for i := range drafts {
		drafts[i].Date = targetDate
		drafts[i].OriginalText = rawText
	}
	return drafts, nil
}

func (p *OpenAIExtractor) sendExtractionRequest(ctx context.Context, rawText string, targetDate time.Time) (string, error) {
	prompt := buildExtractionPrompt(rawText, targetDate)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are an assistant that extracts structured time tracking entries from free-form work descriptions. Respond with valid JSON only."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	userIDStr := ExtractUserID(ctx)
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", "extract_entries"),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("user_id", userIDStr),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)
	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", "extract_entries"),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("user_id", userIDStr),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to extract entries: %w", apiErr)
		}
		return "", fmt.Errorf("failed to extract entries: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}
	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", "extract_entries"),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("user_id", userIDStr),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}
	return content, nil
}

// wireEntry mirrors the JSON the model is asked to produce. Hours stay a
// json.Number so a non-numeric value can be told apart from an
// out-of-range one.
type wireEntry struct {
	Description string      `json:"description"`
	Project     string      `json:"project"`
	Category    string      `json:"category"`
	Hours       json.Number `json:"hours"`
}

func parseAndValidateExtraction(content string) ([]models.DraftEntry, error) {
	var payload struct {
		Entries []wireEntry `json:"entries"`
	}

	raw := extractJSON(content)
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, &ExtractionError{Kind: KindInvalidSchema, Detail: err.Error()}
	}
	if len(payload.Entries) == 0 {
		return nil, &ExtractionError{Kind: KindEmptyResult}
	}

	drafts := make([]models.DraftEntry, 0, len(payload.Entries))
	for i, entry := range payload.Entries {
		if strings.TrimSpace(entry.Description) == "" {
			return nil, &ExtractionError{
				Kind:   KindInvalidSchema,
				Detail: fmt.Sprintf("entry %d has no description", i+1),
			}
		}

		category, ok := models.ParseCategory(entry.Category)
		if !ok {
			return nil, &ExtractionError{
				Kind:   KindUnknownCategory,
				Detail: fmt.Sprintf("entry %d: %q", i+1, entry.Category),
			}
		}

		hours, err := entry.Hours.Float64()
		if err != nil {
			return nil, &ExtractionError{
				Kind:   KindInvalidHours,
				Detail: fmt.Sprintf("entry %d: hours %q is not a number", i+1, entry.Hours.String()),
			}
		}
		hours = models.RoundHours(hours)
		if hours <= 0 || hours > models.MaxEntryHours {
			return nil, &ExtractionError{
				Kind:   KindInvalidHours,
				Detail: fmt.Sprintf("entry %d: %.2f hours is outside (0, %.0f]", i+1, hours, models.MaxEntryHours),
			}
		}

		project := strings.TrimSpace(entry.Project)
		if project == "" {
			project = "general"
		}

		drafts = append(drafts, models.DraftEntry{
			Description:    strings.TrimSpace(entry.Description),
			Project:        project,
			Category:       category,
			EstimatedHours: hours,
		})
	}

	return drafts, nil
}

// extractJSON strips markdown fences and surrounding prose when the model
// ignores the JSON-only instruction.
func extractJSON(content string) string {
	raw := strings.TrimSpace(content)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
		raw = strings.TrimSpace(raw)
	}
	if len(raw) > 0 && raw[0] != '{' {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start != -1 && end != -1 && end > start {
			raw = raw[start : end+1]
		}
	}
	return raw
}

func buildExtractionPrompt(rawText string, targetDate time.Time) string {
	var categories []string
	for _, c := range models.Categories() {
		categories = append(categories, string(c))
	}

	prompt := fmt.Sprintf(`Extract time tracking entries from the following work description.

Work description: "%s"
Date the work was performed: %s

Respond with a JSON object in this format:
{
  "entries": [
    {
      "description": "what was done",
      "project": "project or client name, or \"general\" if none is named",
      "category": %q,
      "hours": 2.5
    }
  ]
}

Rules:
- Create one entry per distinct activity mentioned.
- "category" must be exactly one of: %s.
  - %s: work on a billable client project
  - %s: work on an internal, non-billable project
  - %s: anything else (meetings, admin, training, support)
- "hours" must be a number greater than 0 and at most %.0f. Interpret
  expressions like "half a day" as 4 and "all morning" as 4.
- If the description names no hours for an activity, estimate from context.
- Keep descriptions short, in the user's own language.

Return only valid JSON.`,
		rawText,
		targetDate.Format("2006-01-02"),
		categories[0],
		strings.Join(categories, ", "),
		models.CategoryBillableProject,
		models.CategoryNonBillableProject,
		models.CategoryOtherNonBillable,
		models.MaxEntryHours,
	)

	return prompt
}
