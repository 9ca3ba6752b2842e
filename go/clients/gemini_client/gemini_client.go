package gemini_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mcdev12/auctionroom/go/clients"
)

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("gemini returned no text")

type GeminiClient struct {
	*clients.BaseClient
	model string
}

func NewGeminiClient(apiKey, model string) *GeminiClient {
	return NewGeminiClientWithBaseURL(BaseURL, apiKey, model)
}

// NewGeminiClientWithBaseURL points the client at another host, used by tests
func NewGeminiClientWithBaseURL(baseURL, apiKey, model string) *GeminiClient {
	if model == "" {
		model = DefaultModel
	}
	client := &GeminiClient{
		BaseClient: clients.NewBaseClient(baseURL),
		model:      model,
	}

	client.SetHeader(JsonHeader, JsonContentType)
	client.SetHeader(APIKeyHeader, apiKey)

	return client
}

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type GenerateContentRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

type Candidate struct {
	Content      Content `json:"content"`
	FinishReason string  `json:"finishReason"`
}

type GenerateContentResponse struct {
	Candidates []Candidate `json:"candidates"`
}

// Text joins the parts of the first candidate
func (r GenerateContentResponse) Text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, part := range r.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String())
}

// GenerateText sends a single-turn prompt and returns the model's text
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string, temperature float64) (string, error) {
	reqBody := GenerateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{
			Temperature: temperature,
		},
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	data, err := c.Post(ctx, fmt.Sprintf(generateContentPath, c.model), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}

	var resp GenerateContentResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
