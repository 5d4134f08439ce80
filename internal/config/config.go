package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port               string
	Env                string
	LogLevel           string
	FrontendURL        string
	RateLimitPerMinute int

	// Redis (optional, enables live progress)
	RedisURL string

	// LLM
	LLMProvider        string
	GeminiAPIKey       string
	LLMModel           string
	LLMMaxOutputTokens int
	ReportVariant      string
	ReportLanguage     string
	KeywordScripts     []string

	// Video fetch
	FetchBackend     string
	ApifyToken       string
	ApifyActor       string
	YouTubeAPIKey    string
	CaptionLanguages []string
	CaptionBackfill  bool
}

// fileConfig holds the tuning values that may come from CONFIG_FILE. Credentials stay in
// the environment.
type fileConfig struct {
	Server struct {
		Port               string `yaml:"port"`
		LogLevel           string `yaml:"log_level"`
		FrontendURL        string `yaml:"frontend_url"`
		RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	} `yaml:"server"`
	LLM struct {
		Provider        string   `yaml:"provider"`
		Model           string   `yaml:"model"`
		MaxOutputTokens int      `yaml:"max_output_tokens"`
		ReportVariant   string   `yaml:"report_variant"`
		ReportLanguage  string   `yaml:"report_language"`
		KeywordScripts  []string `yaml:"keyword_scripts"`
	} `yaml:"llm"`
	Fetch struct {
		Backend          string   `yaml:"backend"`
		ApifyActor       string   `yaml:"apify_actor"`
		CaptionLanguages []string `yaml:"caption_languages"`
		CaptionBackfill  bool     `yaml:"caption_backfill"`
	} `yaml:"fetch"`
}

func defaults() *Config {
	return &Config{
		Port:               "8080",
		Env:                "development",
		LogLevel:           "info",
		FrontendURL:        "http://localhost:3000",
		LLMProvider:        "gemini",
		LLMModel:           "gemini-2.5-flash",
		LLMMaxOutputTokens: 4000,
		ReportVariant:      "free-text",
		ReportLanguage:     "Korean",
		KeywordScripts:     []string{"HangulSyllables"},
		FetchBackend:       "apify",
		ApifyActor:         "streamers~youtube-scraper",
		CaptionLanguages:   []string{"ko", "en"},
	}
}

// Load reads .env, then the optional CONFIG_FILE, then the environment. Later sources win.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.Port = getEnvOrDefault("PORT", cfg.Port)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.FrontendURL = getEnvOrDefault("FRONTEND_URL", cfg.FrontendURL)
	cfg.RateLimitPerMinute = getEnvAsIntOrDefault("RATE_LIMIT_PER_MINUTE", cfg.RateLimitPerMinute)
	cfg.RedisURL = getEnvOrDefault("REDIS_URL", cfg.RedisURL)

	cfg.LLMProvider = getEnvOrDefault("LLM_PROVIDER", cfg.LLMProvider)
	cfg.GeminiAPIKey = getEnvOrDefault("GEMINI_API_KEY", cfg.GeminiAPIKey)
	cfg.LLMModel = getEnvOrDefault("LLM_MODEL", cfg.LLMModel)
	cfg.LLMMaxOutputTokens = getEnvAsIntOrDefault("LLM_MAX_OUTPUT_TOKENS", cfg.LLMMaxOutputTokens)
	cfg.ReportVariant = getEnvOrDefault("REPORT_VARIANT", cfg.ReportVariant)
	cfg.ReportLanguage = getEnvOrDefault("REPORT_LANGUAGE", cfg.ReportLanguage)
	cfg.KeywordScripts = getEnvAsListOrDefault("KEYWORD_SCRIPTS", cfg.KeywordScripts)

	cfg.FetchBackend = getEnvOrDefault("FETCH_BACKEND", cfg.FetchBackend)
	cfg.ApifyToken = getEnvOrDefault("APIFY_API_TOKEN", cfg.ApifyToken)
	cfg.ApifyActor = getEnvOrDefault("APIFY_ACTOR", cfg.ApifyActor)
	cfg.YouTubeAPIKey = getEnvOrDefault("YOUTUBE_API_KEY", cfg.YouTubeAPIKey)
	cfg.CaptionLanguages = getEnvAsListOrDefault("CAPTION_LANGUAGES", cfg.CaptionLanguages)
	cfg.CaptionBackfill = getEnvAsBoolOrDefault("CAPTION_BACKFILL", cfg.CaptionBackfill)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	setString(&c.Port, fc.Server.Port)
	setString(&c.LogLevel, fc.Server.LogLevel)
	setString(&c.FrontendURL, fc.Server.FrontendURL)
	if fc.Server.RateLimitPerMinute > 0 {
		c.RateLimitPerMinute = fc.Server.RateLimitPerMinute
	}

	setString(&c.LLMProvider, fc.LLM.Provider)
	setString(&c.LLMModel, fc.LLM.Model)
	if fc.LLM.MaxOutputTokens > 0 {
		c.LLMMaxOutputTokens = fc.LLM.MaxOutputTokens
	}
	setString(&c.ReportVariant, fc.LLM.ReportVariant)
	setString(&c.ReportLanguage, fc.LLM.ReportLanguage)
	if len(fc.LLM.KeywordScripts) > 0 {
		c.KeywordScripts = fc.LLM.KeywordScripts
	}

	setString(&c.FetchBackend, fc.Fetch.Backend)
	setString(&c.ApifyActor, fc.Fetch.ApifyActor)
	if len(fc.Fetch.CaptionLanguages) > 0 {
		c.CaptionLanguages = fc.Fetch.CaptionLanguages
	}
	if fc.Fetch.CaptionBackfill {
		c.CaptionBackfill = true
	}
	return nil
}

// Validate rejects settings the server cannot start with. Missing credentials are fine.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case "gemini", "genai":
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q (want gemini or genai)", c.LLMProvider)
	}
	switch c.FetchBackend {
	case "apify", "youtube":
	default:
		return fmt.Errorf("unknown FETCH_BACKEND %q (want apify or youtube)", c.FetchBackend)
	}
	switch c.ReportVariant {
	case "free-text", "structured":
	default:
		return fmt.Errorf("unknown REPORT_VARIANT %q (want free-text or structured)", c.ReportVariant)
	}
	if c.LLMMaxOutputTokens <= 0 {
		return fmt.Errorf("LLM_MAX_OUTPUT_TOKENS must be positive")
	}
	if c.RateLimitPerMinute < 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// LLMAvailable reports whether report generation has a credential.
func (c *Config) LLMAvailable() bool {
	return c.GeminiAPIKey != ""
}

// FetchAvailable reports whether the selected fetch backend has a credential.
func (c *Config) FetchAvailable() bool {
	if c.FetchBackend == "youtube" {
		return c.YouTubeAPIKey != ""
	}
	return c.ApifyToken != ""
}

func setString(dst *string, val string) {
	if val != "" {
		*dst = val
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvAsListOrDefault(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
