package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// DefaultOpenAIURL is the public OpenAI API base.
const DefaultOpenAIURL = "https://api.openai.com/v1"

// OpenAI completes prompts against an OpenAI-compatible chat completions API.
type OpenAI struct {
	baseURL string
	key     string
	http    *http.Client
}

// NewOpenAI creates an OpenAI provider.
func NewOpenAI(baseURL, key string, timeout time.Duration) *OpenAI {
	if baseURL == "" {
		baseURL = DefaultOpenAIURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenAI{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		http:    &http.Client{Timeout: timeout},
	}
}

// Name implements Provider.
func (o *OpenAI) Name() string { return "openai" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// Complete posts a chat completion and returns the first choice's content.
func (o *OpenAI) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if o.key == "" {
		return "", eris.New("openai: api key not set")
	}

	payload, err := json.Marshal(chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", eris.Wrap(err, "openai: marshal request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", eris.Wrap(err, "openai: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.key)

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrap(err, "openai: request failed")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBody(resp, "openai")
	if err != nil {
		return "", err
	}

	text, isJSON := DecodeText(body)
	if !isJSON {
		return "", eris.New("openai: response is not JSON")
	}
	if text == "" {
		return "", eris.New("openai: response has no content")
	}
	return text, nil
}
