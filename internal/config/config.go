// Package config builds the service configuration from the environment.
//
// All settings live in one Config struct constructed once at startup and
// passed into each component's constructor, so nothing reads the environment
// at call time and tests can inject fake credentials and URLs.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Defaults for optional settings.
const (
	DefaultPort          = "10000"
	DefaultPlanTab       = "Content_Plan"
	DefaultKnowledgeTab  = "Conocimiento_AI"
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultWPStatus      = "draft"
	DefaultTimezone      = "America/Mexico_City"
	DefaultCTALawyersURL = "https://tuderecholaboralmexico.com/abogados/"
)

// Config holds every runtime setting of the content bot.
type Config struct {
	Debug    bool
	Port     string
	JobToken string

	// SheetLocator names the content-plan spreadsheet: a title, a key, or a
	// full spreadsheet URL.
	SheetLocator string
	PlanTab      string
	KnowledgeTab string

	// GoogleCredentials is the resolved service-account JSON, or nil when no
	// credential material was supplied.
	GoogleCredentials []byte

	OpenAIKey   string
	OpenAIModel string

	WPBaseURL       string
	WPUser          string
	WPAppPassword   string
	DefaultWPStatus string

	CTAWhatsApp   string
	CTALawyersURL string

	Timezone string

	// RevertStatusOnFailure controls what happens to a claimed row when a run
	// fails: false (default) leaves it in RUNNING for manual triage, true
	// writes it back to READY.
	RevertStatusOnFailure bool
}

// MissingVarError reports required environment variables that are absent.
type MissingVarError struct {
	Vars []string
}

func (e *MissingVarError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Vars, ", "))
}

// Load builds a Config from the environment. It only fails when credential
// material is present but unparseable; missing settings are reported later by
// ValidateForRun so the HTTP server can start without a full configuration.
func Load() (*Config, error) {
	cfg := &Config{
		Debug:                 parseBool(envString("APP_DEBUG")),
		Port:                  envDefault("PORT", DefaultPort),
		JobToken:              envString("JOB_TOKEN"),
		SheetLocator:          envString("CONTENT_SHEET_NAME"),
		PlanTab:               envDefault("TAB_CONTENT_PLAN", DefaultPlanTab),
		KnowledgeTab:          envDefault("TAB_KNOWLEDGE", DefaultKnowledgeTab),
		OpenAIKey:             envString("OPENAI_API_KEY"),
		OpenAIModel:           envDefault("OPENAI_MODEL", DefaultOpenAIModel),
		WPBaseURL:             envString("WP_BASE_URL"),
		WPUser:                envString("WP_USER"),
		WPAppPassword:         envString("WP_APP_PASSWORD"),
		DefaultWPStatus:       envDefault("DEFAULT_WP_STATUS", DefaultWPStatus),
		CTAWhatsApp:           envString("CTA_WHATSAPP"),
		CTALawyersURL:         envDefault("CTA_ABOGADOS_URL", DefaultCTALawyersURL),
		Timezone:              envDefault("TZ", DefaultTimezone),
		RevertStatusOnFailure: parseBool(envString("REVERT_STATUS_ON_FAILURE")),
	}

	raw := envString("GOOGLE_CREDENTIALS_JSON")
	if raw == "" {
		raw = envString("GOOGLE_CREDENTIALS")
	}
	if raw == "" {
		raw = envString("GOOGLE_CREDENTIALS_B64")
	}
	if raw != "" {
		creds, err := ResolveCredentials(raw)
		if err != nil {
			return nil, fmt.Errorf("google credentials: %w", err)
		}
		cfg.GoogleCredentials = creds
	}

	return cfg, nil
}

// ValidateForRun checks everything a publishing run needs. Called at the
// start of each run, before any row is claimed.
func (c *Config) ValidateForRun() error {
	var missing []string
	if c.SheetLocator == "" {
		missing = append(missing, "CONTENT_SHEET_NAME")
	}
	if len(c.GoogleCredentials) == 0 {
		missing = append(missing, "GOOGLE_CREDENTIALS_JSON")
	}
	if c.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}
	if c.WPBaseURL == "" {
		missing = append(missing, "WP_BASE_URL")
	}
	if c.WPUser == "" {
		missing = append(missing, "WP_USER")
	}
	if c.WPAppPassword == "" {
		missing = append(missing, "WP_APP_PASSWORD")
	}
	if len(missing) > 0 {
		return &MissingVarError{Vars: missing}
	}
	return nil
}

// HasGoogleCredentials reports whether service-account material was supplied.
func (c *Config) HasGoogleCredentials() bool {
	return len(c.GoogleCredentials) > 0
}

// HasWordPress reports whether the WordPress connection is fully configured.
func (c *Config) HasWordPress() bool {
	return c.WPBaseURL != "" && c.WPUser != "" && c.WPAppPassword != ""
}

func envString(name string) string {
	return strings.TrimSpace(os.Getenv(name))
}

func envDefault(name, fallback string) string {
	if v := envString(name); v != "" {
		return v
	}
	return fallback
}

// parseBool accepts the common truthy spellings: "true", "1", "yes".
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
