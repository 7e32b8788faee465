package main

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
)

const defaultModel = "claude-sonnet-4-5-20250929"

// classifyFunc is the AI collaborator at its boundary: one prompt in, free
// text out. No format guarantee beyond "text"; callers own prompt
// construction and response parsing.
type classifyFunc func(ctx context.Context, prompt string) (string, error)

// newClassifier returns a Claude-backed classifyFunc, or nil when no API key
// is configured. A nil classifier means categorization is skipped, never
// that the run fails.
func newClassifier(cfg *config) classifyFunc {
	if cfg.AI.APIKey == "" {
		return nil
	}
	model := cfg.AI.Model
	if model == "" {
		model = defaultModel
	}
	client := anthropic.NewClient(option.WithAPIKey(cfg.AI.APIKey))

	return func(ctx context.Context, prompt string) (string, error) {
		message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(model),
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return "", errors.Wrap(err, "claude API call failed")
		}
		if len(message.Content) == 0 {
			return "", errors.New("empty response from Claude API")
		}
		var text string
		for _, block := range message.Content {
			if block.Type == "text" {
				text += block.Text
			}
		}
		return text, nil
	}
}
