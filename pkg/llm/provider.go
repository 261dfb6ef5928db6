package llm

import (
	"context"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(maxTokens int) Option {
	return func(o *Options) {
		o.MaxTokens = maxTokens
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func ApplyOptions(opts ...Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// FragmentStream is a single-pass, finite sequence of incremental text
// fragments. Recv returns io.EOF once the provider finishes. Fragments may be
// empty strings. A stream cannot be restarted; call Stream again instead.
type FragmentStream interface {
	Recv() (string, error)
	Close()
}

// CompletionProvider defines the contract for any LLM backend
type CompletionProvider interface {
	// Stream opens a token-streaming completion over the chat history.
	Stream(ctx context.Context, history []Message, options ...Option) (FragmentStream, error)

	// Complete runs a non-streaming completion and returns the full text.
	Complete(ctx context.Context, history []Message, options ...Option) (string, error)
}
