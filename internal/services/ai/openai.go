package ai

import (
	"bytes"
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

	"github.com/tomorrow-architect/planner-api/internal/models"
	"github.com/tomorrow-architect/planner-api/internal/schedule"
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

// OpenAIProvider implements the Advisor interface using OpenAI's API
type OpenAIProvider struct {
	client    openai.Client
	model     string
	logger    *zap.Logger
	debugMode bool
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, DefaultOpenAIBaseURL, model, nil, false)
}

// NewOpenAIProviderWithLogger creates a new OpenAI provider with logger support
func NewOpenAIProviderWithLogger(apiKey string, baseURL string, model string, logger *zap.Logger, debugMode bool) *OpenAIProvider {
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

	return &OpenAIProvider{
		client:    client,
		model:     model,
		logger:    logger,
		debugMode: debugMode,
	}
}

// NewOpenAIProviderWithConfig creates a new OpenAI provider with custom configuration
func NewOpenAIProviderWithConfig(apiKey string, baseURL string, model string) *OpenAIProvider {
	return NewOpenAIProviderWithLogger(apiKey, baseURL, model, nil, false)
}

// Review asks the model for a short critique of the given plans. An empty
// plan list short-circuits with a canned message and no API call.
func (p *OpenAIProvider) Review(ctx context.Context, plans []*models.Plan) (string, error) {
	if len(plans) == 0 {
		return EmptyPlanReviewMessage, nil
	}

	prompt := buildReviewPrompt(plans)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are an expert productivity coach. Respond with plain text only, no markdown headers."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	content, err := p.send(ctx, "review_plans", prompt, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(content) == "" {
		return ReviewFallbackMessage, nil
	}
	return content, nil
}

// Schedule asks the model for a start time per plan beginning at startLabel.
// An empty plan list returns an empty proposal without an API call. The
// returned suggestions are raw model output; callers must validate them.
func (p *OpenAIProvider) Schedule(ctx context.Context, plans []*models.Plan, startLabel string) ([]schedule.TimeSuggestion, error) {
	if len(plans) == 0 {
		return nil, nil
	}

	prompt, err := buildSchedulePrompt(plans, startLabel)
	if err != nil {
		return nil, err
	}
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage("You are a scheduling assistant. Respond with valid JSON only."),
		openai.UserMessage(prompt),
	}
	req := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(p.model),
		Messages: messages,
	}

	content, err := p.send(ctx, "generate_schedule", prompt, req)
	if err != nil {
		return nil, err
	}

	return ParseScheduleResponse(content)
}

// send issues a chat completion and returns the first choice's content.
func (p *OpenAIProvider) send(ctx context.Context, operation string, prompt string, req openai.ChatCompletionNewParams) (string, error) {
	requestID := ExtractRequestID(ctx)
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_request",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("prompt_length", len(prompt)),
			zap.String("prompt_preview", SanitizePrompt(prompt, true)),
			zap.String("request_id", requestID),
		)
	}

	start := time.Now()
	resp, err := p.client.Chat.Completions.New(ctx, req)
	latency := time.Since(start)

	if err != nil {
		if p.logger != nil && p.debugMode {
			p.logger.Debug("llm_api_error",
				zap.String("operation", operation),
				zap.String("model", p.model),
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.Int64("latency_ms", latency.Milliseconds()),
			)
		}
		if apiErr := ExtractAPIError(err); apiErr != nil {
			return "", fmt.Errorf("failed to %s: %w", operation, apiErr)
		}
		return "", fmt.Errorf("failed to %s: %w", operation, err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New(ErrNoChoicesInResponse)
	}

	content := resp.Choices[0].Message.Content
	if p.logger != nil && p.debugMode {
		p.logger.Debug("llm_api_response",
			zap.String("operation", operation),
			zap.String("model", p.model),
			zap.Int("response_length", len(content)),
			zap.String("response_preview", SanitizeResponse(content, true)),
			zap.String("request_id", requestID),
			zap.Int64("latency_ms", latency.Milliseconds()),
		)
	}

	return content, nil
}

// buildReviewPrompt builds the prompt for reviewing a day's plans
func buildReviewPrompt(plans []*models.Plan) string {
	var lines []string
	for _, plan := range plans {
		lines = append(lines, fmt.Sprintf("- [%s] %s", strings.ToUpper(string(plan.Priority)), plan.Content))
	}

	return fmt.Sprintf(`You are an expert productivity coach. Review the following list of tasks planned for tomorrow:

%s

Provide a concise, friendly response (under 100 words).
1. Acknowledge the workload.
2. Give 1 specific tip to ensure these get done (e.g., about prioritization or breaks).
3. Be encouraging.
Format as plain text, no markdown headers.`, strings.Join(lines, "\n"))
}

// buildSchedulePrompt builds the prompt for generating a day schedule
func buildSchedulePrompt(plans []*models.Plan, startLabel string) (string, error) {
	type promptTask struct {
		ID       string `json:"id"`
		Content  string `json:"content"`
		Priority string `json:"priority"`
		Duration int    `json:"duration"`
	}

	tasks := make([]promptTask, 0, len(plans))
	for _, plan := range plans {
		duration := plan.EstimatedDuration
		if duration <= 0 {
			duration = schedule.DefaultDurationMinutes
		}
		tasks = append(tasks, promptTask{
			ID:       plan.ID,
			Content:  plan.Content,
			Priority: string(plan.Priority),
			Duration: duration,
		})
	}

	taskJSON, err := json.Marshal(tasks)
	if err != nil {
		return "", fmt.Errorf("failed to encode tasks: %w", err)
	}

	return fmt.Sprintf(`Create an optimal schedule for these tasks.
Start time: %s.

Tasks:
%s

Rules:
1. **Time Format**: STRICTLY use 24-hour format (e.g. "09:30", "14:00", "18:15"). DO NOT use AM/PM.
2. **Working Hours**: 09:30 to 24:00 (Midnight).
3. **Lunch Break**: 12:00 to 13:30.
4. **Dinner Break**: 18:00 to 18:30.
5. **Rest Time**: 00:00 to 09:30.

Logic:
- **CRITICAL**: Long tasks ARE ALLOWED to span across Lunch or Dinner breaks.
  - Example: A 3-hour task starting at 11:00 is perfectly fine. It implies the user works 11:00-12:00, takes a break, and resumes 13:30-15:30.
- **CONSTRAINT**: You simply must ensure the **Start Time** of a task does not fall *inside* a break.
  - If a calculated start time is 12:15, move it to 13:30.
  - If a calculated start time is 18:10, move it to 18:30.
- When calculating when the *next* task begins, account for the break time if the previous task spanned across it.
- Respect estimated durations.
- Group similar tasks if possible.
- Return a valid JSON array of objects containing only 'id' and 'suggestedTime'.`, startLabel, string(taskJSON)), nil
}

// ParseScheduleResponse decodes a schedule reply. When the model wraps the
// JSON array in prose or code fences, the first bracketed array is extracted
// and decoded instead.
func ParseScheduleResponse(content string) ([]schedule.TimeSuggestion, error) {
	var suggestions []schedule.TimeSuggestion
	raw := strings.TrimSpace(content)
	if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
		if len(raw) > 0 && raw[0] != '[' {
			start := bytes.Index([]byte(raw), []byte("["))
			end := bytes.LastIndex([]byte(raw), []byte("]"))
			if start != -1 && end != -1 && end > start {
				raw = raw[start : end+1]
			}
		}
		if err := json.Unmarshal([]byte(raw), &suggestions); err != nil {
			return nil, fmt.Errorf("failed to parse schedule response: %w", err)
		}
	}
	return suggestions, nil
}

// RegisterOpenAI registers the OpenAI provider with the registry
func RegisterOpenAI(registry *ProviderRegistry) {
	registry.Register("openai", func(config map[string]string) (Advisor, error) {
		apiKey, ok := config["api_key"]
		if !ok || apiKey == "" {
			return nil, fmt.Errorf("openai api_key is required")
		}

		model := config["model"]
		baseURL := config["base_url"]

		return NewOpenAIProviderWithConfig(apiKey, baseURL, model), nil
	})
}
