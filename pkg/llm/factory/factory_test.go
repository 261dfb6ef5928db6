package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCompletionProviderRejectsUnknownProvider(t *testing.T) {
	provider, err := NewCompletionProvider(context.Background(), Config{Provider: "carrier-pigeon"})
	assert.Error(t, err)
	assert.Nil(t, provider)
}

func TestNewCompletionProviderRequiresOpenAIKey(t *testing.T) {
	provider, err := NewCompletionProvider(context.Background(), Config{Provider: "openai", Model: "gpt-4o-mini"})
	assert.Error(t, err)
	assert.Nil(t, provider)
}

func TestNewCompletionProviderBuildsOpenAI(t *testing.T) {
	provider, err := NewCompletionProvider(context.Background(), Config{Provider: "openai", Model: "gpt-4o-mini", APIKey: "sk-test"})
	assert.NoError(t, err)
	assert.NotNil(t, provider)
}
