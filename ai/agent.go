// Package ai holds the writing agent: the collaborator that answers
// questions mentioned inline in a document. Retry and prompt policy live
// here, never in the domain.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
)

const systemPrompt = "You are a writing assistant embedded in a shared document editor. " +
	"Participants mention you inline with a question. Answer concisely in the language " +
	"of the question; your answer is inserted into the document as-is, so return plain " +
	"prose with no preamble."

// Agent answers mention questions through the Anthropic Messages API.
type Agent struct {
	client *anthropic.Client
	opts   Options
}

// Options configures the agent (model id, max tokens, API key).
type Options struct {
	Model     anthropic.Model
	MaxTokens int64
	APIKey    string
}

func WithModel(model anthropic.Model) func(o *Options) {
	return func(o *Options) { o.Model = model }
}

func WithMaxTokens(maxTokens int64) func(o *Options) {
	return func(o *Options) { o.MaxTokens = maxTokens }
}

func WithAPIKey(apiKey string) func(o *Options) {
	return func(o *Options) { o.APIKey = apiKey }
}

func NewAgent(optFns ...func(o *Options)) *Agent {
	opts := Options{
		Model:     anthropic.ModelClaude3_5Sonnet20241022,
		MaxTokens: 1024,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	client := newClient(opts)
	return &Agent{client: client, opts: opts}
}

// Invoke sends one question and returns the agent's plain-text answer.
func (a *Agent) Invoke(ctx context.Context, question string) (string, error) {
	resp, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     a.opts.Model,
		MaxTokens: a.opts.MaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(question)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.AsText().Text)
		}
	}

	answer := strings.TrimSpace(sb.String())
	if answer == "" {
		return "", fmt.Errorf("empty answer from model %s", a.opts.Model)
	}
	return answer, nil
}
