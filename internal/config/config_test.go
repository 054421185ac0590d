package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	apperrors "go-easyapply-automation/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoad_YAMLEnvAndDefaults(t *testing.T) {
	dir := t.TempDir()
	resume := filepath.Join(dir, "resume.txt")
	writeFile(t, resume, "Go developer with 3 years of experience")

	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, `
keywords: [Backend Engineer]
max_applications_per_day: 5
resume_path: `+resume+`
ledger_dir: `+dir+`
profile:
  salary_expectation: "18,00,000 INR"
  notice_period_days: 60
  location: Hyderabad
ai:
  priority: [groq, gemini]
`)

	t.Setenv("LINKEDIN_PASSWORD", "secret")
	t.Setenv("LINKEDIN_EMAIL", "me@example.com")
	t.Setenv("GROQ_API_KEY", "groq-key")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("JOB_KEYWORDS", "")
	t.Setenv("MAX_APPLICATIONS_PER_DAY", "")
	t.Setenv("RESUME_PATH", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, []string{"Backend Engineer"}, cfg.Keywords)
	assert.Equal(t, 5, cfg.MaxApplicationsPerDay)
	assert.Equal(t, 3, cfg.PerKeywordLimit)
	assert.Equal(t, 24*time.Hour, cfg.Freshness)
	assert.Equal(t, []string{"groq", "gemini"}, cfg.AI.Priority)
	assert.Equal(t, "groq-key", cfg.AI.Keys["groq"])
	assert.True(t, cfg.HasCredentials())
	assert.Equal(t, resume, cfg.Profile.ResumePath)
	assert.Contains(t, cfg.Profile.ResumeText, "Go developer")
	assert.Equal(t, 60, cfg.Profile.NoticePeriodDays)
}

func TestLoad_EnvOverridesKeywordsAndQuota(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("JOB_KEYWORDS", `Software Engineer, "Data Engineer"`)
	t.Setenv("MAX_APPLICATIONS_PER_DAY", "7")
	t.Setenv("RESUME_PATH", filepath.Join(dir, "missing.txt"))
	t.Setenv("TELEGRAM_CHAT_ID", "")

	cfg, err := Load(filepath.Join(dir, "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Software Engineer", "Data Engineer"}, cfg.Keywords)
	assert.Equal(t, 7, cfg.MaxApplicationsPerDay)
	assert.Empty(t, cfg.Profile.ResumeText)
}

func TestLoad_QuotaDefaultsOnlyWhenAbsent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MAX_APPLICATIONS_PER_DAY", "")
	t.Setenv("TELEGRAM_CHAT_ID", "")
	t.Setenv("RESUME_PATH", filepath.Join(dir, "missing.txt"))

	paused := filepath.Join(dir, "paused.yaml")
	writeFile(t, paused, "max_applications_per_day: 0\n")
	absent := filepath.Join(dir, "absent.yaml")
	writeFile(t, absent, "keywords: [Go Developer]\n")

	tests := []struct {
		name string
		path string
		env  string
		want int
	}{
		{name: "Explicit zero pauses applying", path: paused, want: 0},
		{name: "Missing key uses default", path: absent, want: DefaultMaxApplicationsPerDay},
		{name: "Missing file uses default", path: filepath.Join(dir, "none.yaml"), want: DefaultMaxApplicationsPerDay},
		{name: "Env zero overrides default", path: absent, env: "0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAX_APPLICATIONS_PER_DAY", tt.env)
			cfg, err := Load(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.MaxApplicationsPerDay)
		})
	}
}

func TestLoad_InvalidInputs(t *testing.T) {
	dir := t.TempDir()
	badYAML := filepath.Join(dir, "bad.yaml")
	writeFile(t, badYAML, "keywords: [unterminated")

	tests := []struct {
		name string
		path string
		env  map[string]string
	}{
		{name: "Malformed YAML", path: badYAML},
		{name: "Non numeric quota", path: filepath.Join(dir, "none.yaml"), env: map[string]string{"MAX_APPLICATIONS_PER_DAY": "lots"}},
		{name: "Non numeric chat id", path: filepath.Join(dir, "none.yaml"), env: map[string]string{"TELEGRAM_CHAT_ID": "abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("MAX_APPLICATIONS_PER_DAY", "")
			t.Setenv("TELEGRAM_CHAT_ID", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path)
			require.Error(t, err)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeInvalidConfig))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "Defaults are valid",
			config:  Config{},
			wantErr: false,
		},
		{
			name:    "Negative quota",
			config:  Config{MaxApplicationsPerDay: -1},
			wantErr: true,
		},
		{
			name:    "Unknown provider",
			config:  Config{AI: AIConfig{Priority: []string{"claude-ish"}}},
			wantErr: true,
		},
		{
			name: "Custom provider with base url",
			config: Config{AI: AIConfig{
				Priority: []string{"local"},
				BaseURLs: map[string]string{"local": "http://localhost:11434/v1"},
			}},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.ApplyDefaults()
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
