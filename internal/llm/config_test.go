package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderGemini, config.Provider)
	assert.Equal(t, "gemini-2.5-flash-lite", config.GetModel(TierLite))
	assert.Equal(t, "gemini-2.5-flash", config.GetModel(TierStandard))
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))
}

func TestConfigForProvider(t *testing.T) {
	tests := []struct {
		provider Provider
		standard string
	}{
		{ProviderGemini, "gemini-2.5-flash"},
		{ProviderAnthropic, "claude-sonnet-4-20250514"},
		{ProviderOpenAI, "gpt-4o"},
	}

	for _, tt := range tests {
		t.Run(string(tt.provider), func(t *testing.T) {
			config := ConfigForProvider(tt.provider)
			assert.Equal(t, tt.provider, config.Provider)
			assert.Equal(t, tt.standard, config.GetModel(TierStandard))
			assert.Positive(t, config.MaxTokens)
		})
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{"", ProviderGemini, false},
		{"Gemini", ProviderGemini, false},
		{" openai ", ProviderOpenAI, false},
		{"claude", ProviderAnthropic, false},
		{"anthropic", ProviderAnthropic, false},
		{"mistral", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAPIKeyEnv(t *testing.T) {
	assert.Equal(t, "GEMINI_API_KEY", ProviderGemini.APIKeyEnv())
	assert.Equal(t, "OPENAI_API_KEY", ProviderOpenAI.APIKeyEnv())
	assert.Equal(t, "ANTHROPIC_API_KEY", ProviderAnthropic.APIKeyEnv())
}

func TestGetModel_Fallback(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "fallback-model",
		},
	}

	// Unknown tier should fallback to TierStandard, then TierLite
	assert.Equal(t, "fallback-model", config.GetModel("unknown"))
}

func TestGetModel_EmptyConfig(t *testing.T) {
	config := &Config{
		Provider: ProviderGemini,
		Models:   map[ModelTier]string{},
	}

	assert.Equal(t, "", config.GetModel(TierAdvanced))
}

func TestWithModel(t *testing.T) {
	config := DefaultConfig()
	newConfig := config.WithModel(TierAdvanced, "custom-model")

	// Original should be unchanged
	assert.Equal(t, "gemini-2.5-pro", config.GetModel(TierAdvanced))

	assert.Equal(t, "custom-model", newConfig.GetModel(TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", newConfig.GetModel(TierLite))
	assert.Equal(t, config.Temperature, newConfig.Temperature)
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderAnthropic, ProviderOpenAI} {
		t.Run(string(p), func(t *testing.T) {
			_, err := NewClient(t.Context(), ConfigForProvider(p), "")
			assert.Error(t, err)
		})
	}
}

func TestNewClient_SelectsProvider(t *testing.T) {
	client, err := NewClient(t.Context(), DefaultAnthropicConfig(), "test-key")
	require.NoError(t, err)
	assert.IsType(t, &AnthropicClient{}, client)
	assert.Equal(t, "claude-3-5-haiku-latest", client.GetModel(TierLite))
	assert.NoError(t, client.Close())

	client, err = NewClient(t.Context(), DefaultOpenAIConfig(), "test-key")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)
}
