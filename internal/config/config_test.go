package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, 24*time.Hour, cfg.Cache.ThreadTTL)
	assert.Equal(t, "gpt-4o-mini", cfg.Ai.LLMModel)
	assert.Equal(t, "openai", cfg.Ai.LLMProvider)
}

func TestGetEnvAsDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "go duration", value: "90m", want: 90 * time.Minute},
		{name: "plain seconds", value: "86400", want: 24 * time.Hour},
		{name: "garbage falls back", value: "soon", want: time.Minute},
		{name: "empty falls back", value: "", want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, getEnvAsDuration("TEST_DURATION", time.Minute))
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_FLAG", "true")
	assert.True(t, getEnvAsBool("TEST_FLAG", false))

	t.Setenv("TEST_FLAG", "nope")
	assert.False(t, getEnvAsBool("TEST_FLAG", false))
}
