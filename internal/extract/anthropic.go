package extract

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/enrich-cli/pkg/anthropic"
)

// Anthropic completes prompts through the Anthropic Messages API.
type Anthropic struct {
	client  anthropic.Client
	pricing anthropic.Pricing
}

// NewAnthropic creates an Anthropic provider over client. pricing is only
// used for the cost logged per call.
func NewAnthropic(client anthropic.Client, pricing anthropic.Pricing) *Anthropic {
	return &Anthropic{client: client, pricing: pricing}
}

// Name implements Provider.
func (a *Anthropic) Name() string { return "anthropic" }

// Complete sends the prompt as a single user message and logs token usage.
func (a *Anthropic) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	temp := req.Temperature
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       req.Model,
		MaxTokens:   int64(req.MaxTokens),
		System:      systemPrompt,
		Prompt:      req.Prompt,
		Temperature: &temp,
	})
	if err != nil {
		return "", err
	}
	zap.L().Debug("extract: anthropic usage",
		zap.String("model", req.Model),
		zap.Int64("input_tokens", resp.Usage.InputTokens),
		zap.Int64("output_tokens", resp.Usage.OutputTokens),
		zap.Float64("estimated_cost_usd", resp.Usage.Cost(a.pricing)),
	)

	text := resp.Text()
	if text == "" {
		return "", eris.New("anthropic: response has no text")
	}
	return text, nil
}
