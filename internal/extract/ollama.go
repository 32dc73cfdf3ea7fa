package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DefaultOllamaURL is the local Ollama server.
const DefaultOllamaURL = "http://localhost:11434"

// ErrDialectNotFound is recorded when an Ollama endpoint answers 404, which
// means the server does not speak that dialect.
var ErrDialectNotFound = eris.New("ollama: endpoint not found")

// dialect is one Ollama request style.
type dialect struct {
	name string
	path string
	body func(req CompletionRequest) map[string]any
}

func ollamaOptions(req CompletionRequest) map[string]any {
	return map[string]any{
		"num_predict": req.MaxTokens,
		"temperature": req.Temperature,
	}
}

// ollamaDialects are tried in order until one answers.
var ollamaDialects = []dialect{
	{
		name: "generate",
		path: "/api/generate",
		body: func(req CompletionRequest) map[string]any {
			return map[string]any{
				"model":   req.Model,
				"prompt":  req.Prompt,
				"stream":  false,
				"format":  "json",
				"options": ollamaOptions(req),
			}
		},
	},
	{
		name: "chat",
		path: "/api/chat",
		body: func(req CompletionRequest) map[string]any {
			return map[string]any{
				"model": req.Model,
				"messages": []map[string]string{
					{"role": "system", "content": systemPrompt},
					{"role": "user", "content": req.Prompt},
				},
				"stream":  false,
				"options": ollamaOptions(req),
			}
		},
	},
}

// Ollama completes prompts against a local Ollama server.
type Ollama struct {
	baseURL  string
	http     *http.Client
	dialects []dialect
}

// NewOllama creates an Ollama provider. An empty baseURL uses the local
// default.
func NewOllama(baseURL string, timeout time.Duration) *Ollama {
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Ollama{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		dialects: ollamaDialects,
	}
}

// Name implements Provider.
func (o *Ollama) Name() string { return "ollama" }

// Complete tries each dialect in order. A 404 or transport failure moves on
// to the next one; the last failure is reported when none succeeds.
func (o *Ollama) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	var lastErr error
	for _, d := range o.dialects {
		text, err := o.call(ctx, d, req)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", eris.Wrap(ctx.Err(), "ollama: cancelled")
		}
		zap.L().Debug("ollama: dialect failed, trying next",
			zap.String("dialect", d.name),
			zap.Error(err),
		)
		lastErr = err
	}
	return "", eris.Wrap(lastErr, "ollama: all endpoints failed")
}

func (o *Ollama) call(ctx context.Context, d dialect, req CompletionRequest) (string, error) {
	payload, err := json.Marshal(d.body(req))
	if err != nil {
		return "", eris.Wrap(err, "ollama: marshal request")
	}
	url := o.baseURL + d.path

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", eris.Wrap(err, "ollama: create request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(httpReq)
	if err != nil {
		return "", eris.Wrapf(err, "ollama: %s request", d.name)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", eris.Wrapf(ErrDialectNotFound, "ollama: 404 %s", url)
	}
	body, err := readBody(resp, "ollama")
	if err != nil {
		return "", err
	}

	text, isJSON := DecodeText(body)
	if !isJSON {
		return string(body), nil
	}
	return text, nil
}
