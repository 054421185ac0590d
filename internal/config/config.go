// Load envs from .env
// Load YAML config
// Override secrets from env
// Provide default values, then validate

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	apperrors "go-easyapply-automation/internal/errors"
	"go-easyapply-automation/internal/models"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "configs/config.yaml"

const DefaultMaxApplicationsPerDay = 20

type Config struct {
	Debug bool `yaml:"debug"`

	LinkedInEmail    string `yaml:"linkedin_email"`
	LinkedInPassword string `yaml:"-"`

	//Search criteria
	Keywords        []string      `yaml:"keywords"`
	Location        string        `yaml:"location"`
	Freshness       time.Duration `yaml:"freshness"`
	PerKeywordLimit int           `yaml:"per_keyword_limit"`
	ExcludeKeywords []string      `yaml:"exclude_keywords"`
	// MaxYearsRequired skips postings asking for more experience; 0 disables it.
	MaxYearsRequired int `yaml:"max_years_required"`

	MaxApplicationsPerDay int `yaml:"max_applications_per_day"`

	Profile    models.ApplicantProfile `yaml:"profile"`
	ResumePath string                  `yaml:"resume_path"`
	// ResumeFile is the untailored document uploaded when tailoring fails.
	// Defaults to ResumePath.
	ResumeFile string `yaml:"resume_file"`

	AI AIConfig `yaml:"ai"`

	//Browser
	Headless    bool   `yaml:"headless"`
	CookiesPath string `yaml:"cookies_path"`

	//Paths
	LedgerDir string `yaml:"ledger_dir"`
	OutputDir string `yaml:"output_dir"`

	// Schedule is a cron spec; empty means run once and exit.
	Schedule string `yaml:"schedule"`

	//Optional integrations, enabled when set
	TelegramToken  string        `yaml:"-"`
	TelegramChatID int64         `yaml:"-"`
	DatabaseURL    string        `yaml:"-"`
	NATSURL        string        `yaml:"nats_url"`
	RedisAddr      string        `yaml:"redis_addr"`
	RedisPassword  string        `yaml:"-"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	CollectorURL   string        `yaml:"otel_collector_url"`
	ServerPort     string        `yaml:"server_port"`
}

// AIConfig lists providers in the order they are tried.
type AIConfig struct {
	Priority []string          `yaml:"priority"`
	Timeout  time.Duration     `yaml:"timeout"`
	Models   map[string]string `yaml:"models"`
	Keys     map[string]string `yaml:"-"`
	BaseURLs map[string]string `yaml:"base_urls"`
}

var providerKeyEnv = map[string]string{
	"gemini": "GEMINI_API_KEY",
	"groq":   "GROQ_API_KEY",
	"openai": "OPENAI_API_KEY",
}

// Load reads .env, the YAML file at path (missing file is not an error) and
// environment overrides, then applies defaults and validates.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	// The quota default is set before parsing so an explicit 0 pauses applying.
	cfg := &Config{MaxApplicationsPerDay: DefaultMaxApplicationsPerDay}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, apperrors.InvalidConfig("read "+path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.InvalidConfig("parse "+path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.loadResume(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LINKEDIN_EMAIL"); v != "" {
		c.LinkedInEmail = v
	}
	c.LinkedInPassword = os.Getenv("LINKEDIN_PASSWORD")

	if v := os.Getenv("JOB_KEYWORDS"); v != "" {
		c.Keywords = splitKeywords(v)
	}
	if v := os.Getenv("MAX_APPLICATIONS_PER_DAY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperrors.InvalidConfig("MAX_APPLICATIONS_PER_DAY", err)
		}
		c.MaxApplicationsPerDay = n
	}
	if v := os.Getenv("RESUME_PATH"); v != "" {
		c.ResumePath = v
	}

	if c.AI.Keys == nil {
		c.AI.Keys = make(map[string]string)
	}
	for name, env := range providerKeyEnv {
		if key := os.Getenv(env); key != "" {
			c.AI.Keys[name] = key
		}
	}

	c.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		id, err := strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return apperrors.InvalidConfig("TELEGRAM_CHAT_ID", err)
		}
		c.TelegramChatID = id
	}
	c.DatabaseURL = os.Getenv("DATABASE_URL")
	if v := os.Getenv("NATS_URL"); v != "" {
		c.NATSURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	c.RedisPassword = os.Getenv("REDIS_PASSWORD")
	if v := os.Getenv("OTEL_COLLECTOR_URL"); v != "" {
		c.CollectorURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.ServerPort = v
	}
	return nil
}

// splitKeywords parses `Software Engineer, "Data Engineer"` style lists.
func splitKeywords(raw string) []string {
	var out []string
	for _, k := range strings.Split(raw, ",") {
		k = strings.Trim(strings.TrimSpace(k), `"`)
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// ApplyDefaults fills optional fields left unset. The daily quota is not
// touched here because zero is a meaningful value for it.
func (c *Config) ApplyDefaults() {
	if len(c.Keywords) == 0 {
		c.Keywords = []string{"Software Engineer"}
	}
	if c.Freshness == 0 {
		c.Freshness = 24 * time.Hour
	}
	if c.PerKeywordLimit == 0 {
		c.PerKeywordLimit = 3
	}
	if c.ResumePath == "" {
		c.ResumePath = "./resume.txt"
	}
	if len(c.AI.Priority) == 0 {
		c.AI.Priority = []string{"gemini", "groq"}
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 60 * time.Second
	}
	if c.CookiesPath == "" {
		c.CookiesPath = "../.cookies"
	}
	if c.LedgerDir == "" {
		c.LedgerDir = "../.cache"
	}
	if c.OutputDir == "" {
		c.OutputDir = "Applications"
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 7 * 24 * time.Hour
	}
	if c.ServerPort == "" {
		c.ServerPort = "8080"
	}
}

// Validate checks required fields and expands user paths.
func (c *Config) Validate() error {
	if c.MaxApplicationsPerDay < 0 {
		return apperrors.InvalidConfig("max_applications_per_day must not be negative", nil)
	}
	if c.PerKeywordLimit < 0 {
		return apperrors.InvalidConfig("per_keyword_limit must not be negative", nil)
	}
	for _, name := range c.AI.Priority {
		if _, ok := providerKeyEnv[name]; !ok {
			if _, custom := c.AI.BaseURLs[name]; !custom {
				return apperrors.InvalidConfig(fmt.Sprintf("unknown ai provider %q", name), nil)
			}
		}
	}

	for _, p := range []*string{&c.ResumePath, &c.ResumeFile, &c.CookiesPath, &c.LedgerDir, &c.OutputDir} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return apperrors.InvalidConfig("expand path "+*p, err)
		}
		*p = expanded
	}
	return nil
}

// loadResume reads the resume text; a missing resume leaves the text empty
// so answers rely on profile facts alone.
func (c *Config) loadResume() error {
	c.Profile.ResumePath = c.ResumePath
	if c.ResumeFile != "" {
		c.Profile.ResumePath = c.ResumeFile
	}
	data, err := os.ReadFile(c.ResumePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperrors.InvalidConfig("read resume "+c.ResumePath, err)
	}
	c.Profile.ResumeText = string(data)
	return nil
}

// HasCredentials reports whether password sign-in is possible.
func (c *Config) HasCredentials() bool {
	return c.LinkedInEmail != "" && c.LinkedInPassword != ""
}
