package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// CompletionClientInterface abstracts the generative completion service the
// reorder adapter calls. Implementations must return raw JSON text.
type CompletionClientInterface interface {
	CompleteJSON(ctx context.Context, prompt string) (string, error)
}

// GeminiCompletionClient forces JSON-only output with conservative sampling
// so identical prompts produce stable responses.
type GeminiCompletionClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiCompletionClient(apiKey, model string) (CompletionClientInterface, error) {
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiCompletionClient{
		client:  client,
		model:   model,
		timeout: 30 * time.Second,
	}, nil
}

func (c *GeminiCompletionClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", NewDependencyRejected("reorder", 0, "empty prompt")
	}

	m := c.client.GenerativeModel(c.model)
	m.ResponseMIMEType = "application/json"
	m.SetTemperature(0.1)
	m.SetTopP(0.5)
	m.SetTopK(20)
	m.SetMaxOutputTokens(4000)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", NewDependencyUnavailable("reorder", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", NewDependencyRejected("reorder", 0, "no content generated")
	}

	content := CleanJSONResponse(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
	if !json.Valid([]byte(content)) {
		return "", NewReorderParseError(fmt.Errorf("model returned invalid JSON"))
	}
	return content, nil
}

// CleanJSONResponse strips markdown fences some models still wrap around
// JSON output despite the MIME-type instruction.
func CleanJSONResponse(raw string) string {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	return strings.TrimSpace(raw)
}
