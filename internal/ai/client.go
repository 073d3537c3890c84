// Package ai wraps the OpenAI-compatible completion service that powers the
// interview: answer validation, follow-up generation, structured extraction and
// report generation all go through [Client.Complete].
package ai

import (
	"context"
	"log/slog"

	"github.com/lgarza/tiendita/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// ErrUpstream means the completion service could not produce a usable completion:
// transport failure, non-2xx status or a response without choices.
var ErrUpstream = errors.NewSentinel("completion upstream failed")

// Message is one transcript turn. The roles match the chat completion wire format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = openai.ChatMessageRoleSystem
	RoleUser      = openai.ChatMessageRoleUser
	RoleAssistant = openai.ChatMessageRoleAssistant
)

// Options are the recognized sampling options for a completion request.
type Options struct {
	Temperature float32
	// MaxTokens limits the completion length. Zero leaves it unbounded.
	MaxTokens int
}

// Completer produces one completion for a system prompt, prior transcript turns
// and a new user prompt. Implementations never retry; a failed call fails.
type Completer interface {
	Complete(ctx context.Context, system string, history []Message, user string, opts Options) (string, error)
}

type Client struct {
	client *openai.Client
	model  string
}

// NewClient builds a client for an OpenAI-compatible endpoint. baseURL points at
// the API root, e.g. http://localhost:1234/v1 for a local completion server.
func NewClient(baseURL, apiKey, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL
	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Complete sends one chat completion request built from a single system message,
// the prior turns in original order and the new user turn. It returns the first
// choice's content.
func (c *Client) Complete(
	ctx context.Context, system string, history []Message, user string, opts Options,
) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2) //nolint:mnd // system and user turns.
	messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // this is better for readability
		Role:    RoleSystem,
		Content: system,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // see above
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct // see above
		Role:    RoleUser,
		Content: user,
	})

	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // see above
			Model:       c.model,
			Messages:    messages,
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		},
	)
	if err != nil {
		return "", errors.Wrap(errors.Join(ErrUpstream, err), "create chat completion",
			slog.String("model", c.model))
	}
	if len(completion.Choices) == 0 {
		return "", errors.Wrap(ErrUpstream, "completion has no choices", slog.String("model", c.model))
	}
	return completion.Choices[0].Message.Content, nil
}
