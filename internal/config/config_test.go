package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"APP_DEBUG", "PORT", "JOB_TOKEN", "CONTENT_SHEET_NAME",
		"TAB_CONTENT_PLAN", "TAB_KNOWLEDGE", "OPENAI_API_KEY", "OPENAI_MODEL",
		"WP_BASE_URL", "WP_USER", "WP_APP_PASSWORD", "DEFAULT_WP_STATUS",
		"CTA_WHATSAPP", "CTA_ABOGADOS_URL", "TZ",
		"GOOGLE_CREDENTIALS_JSON", "GOOGLE_CREDENTIALS", "GOOGLE_CREDENTIALS_B64",
		"REVERT_STATUS_ON_FAILURE",
	} {
		t.Setenv(name, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultPlanTab, cfg.PlanTab)
	assert.Equal(t, DefaultKnowledgeTab, cfg.KnowledgeTab)
	assert.Equal(t, DefaultOpenAIModel, cfg.OpenAIModel)
	assert.Equal(t, DefaultWPStatus, cfg.DefaultWPStatus)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultCTALawyersURL, cfg.CTALawyersURL)
	assert.False(t, cfg.Debug)
	assert.False(t, cfg.RevertStatusOnFailure)
	assert.False(t, cfg.HasGoogleCredentials())
	assert.False(t, cfg.HasWordPress())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_DEBUG", "true")
	t.Setenv("CONTENT_SHEET_NAME", "Plan 2026")
	t.Setenv("TAB_CONTENT_PLAN", "Plan")
	t.Setenv("WP_BASE_URL", "https://example.com/")
	t.Setenv("WP_USER", "bot")
	t.Setenv("WP_APP_PASSWORD", "secret")
	t.Setenv("GOOGLE_CREDENTIALS_JSON", `{"type": "service_account"}`)
	t.Setenv("REVERT_STATUS_ON_FAILURE", "yes")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "Plan 2026", cfg.SheetLocator)
	assert.Equal(t, "Plan", cfg.PlanTab)
	assert.True(t, cfg.HasWordPress())
	assert.True(t, cfg.HasGoogleCredentials())
	assert.True(t, cfg.RevertStatusOnFailure)
}

func TestLoadRejectsMalformedCredentials(t *testing.T) {
	t.Setenv("GOOGLE_CREDENTIALS_JSON", "definitely not json")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateForRunReportsAllMissing(t *testing.T) {
	cfg := &Config{}

	err := cfg.ValidateForRun()
	require.Error(t, err)

	var missing *MissingVarError
	require.ErrorAs(t, err, &missing)
	assert.Contains(t, missing.Vars, "CONTENT_SHEET_NAME")
	assert.Contains(t, missing.Vars, "GOOGLE_CREDENTIALS_JSON")
	assert.Contains(t, missing.Vars, "OPENAI_API_KEY")
	assert.Contains(t, missing.Vars, "WP_BASE_URL")
	assert.Contains(t, missing.Vars, "WP_USER")
	assert.Contains(t, missing.Vars, "WP_APP_PASSWORD")
}

func TestValidateForRunComplete(t *testing.T) {
	cfg := &Config{
		SheetLocator:      "Plan",
		GoogleCredentials: []byte(`{}`),
		OpenAIKey:         "sk-test",
		WPBaseURL:         "https://example.com",
		WPUser:            "bot",
		WPAppPassword:     "secret",
	}

	assert.NoError(t, cfg.ValidateForRun())
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{" true ", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"anything", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseBool(tt.in), "parseBool(%q)", tt.in)
	}
}
