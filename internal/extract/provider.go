package extract

import (
	"context"
	"io"
	"net/http"

	"github.com/rotisserie/eris"

	"github.com/sells-group/enrich-cli/internal/resilience"
)

// systemPrompt is sent as the system message by chat-style providers.
const systemPrompt = "You are a strict information extraction assistant. Respond with a SINGLE valid JSON object only."

// maxResponseBytes bounds how much of a provider response is read.
const maxResponseBytes = 4 << 20

// CompletionRequest is one prompt sent to a provider.
type CompletionRequest struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Provider completes a prompt and returns the model's raw text.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// readBody reads a bounded response body and maps non-2xx statuses to
// errors, marking retryable ones transient.
func readBody(resp *http.Response, service string) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, eris.Wrapf(err, "%s: read response", service)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err := eris.Errorf("%s: unexpected status %d: %s", service, resp.StatusCode, truncateBody(body))
		return nil, resilience.StatusError(err, resp.StatusCode)
	}
	return body, nil
}

func truncateBody(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
