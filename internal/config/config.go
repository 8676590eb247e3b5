package config

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "ARTICLE_ENHANCER_CONFIG"
	logLevelEnv       = "LOG_LEVEL"
	storeDriverEnv    = "STORE_DRIVER"
	storeBaseURLEnv   = "STORE_BASE_URL"
	sqliteDSNEnv      = "SQLITE_DSN"
	modelProviderEnv  = "MODEL_PROVIDER"
	geminiAPIKeyEnv   = "GEMINI_API_KEY"
	geminiModelEnv    = "GEMINI_MODEL"
	chatGPTAPIKeyEnv  = "OPENAI_API_KEY"
	chatGPTModelEnv   = "OPENAI_MODEL"
	telegramTokenEnv  = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv = "TELEGRAM_CHAT_ID"
	browserBinEnv     = "BROWSER_BIN"
)

const (
	StoreDriverAPI    = "api"
	StoreDriverSQLite = "sqlite"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Store         StoreConfig        `yaml:"store"`
	Pipeline      PipelineConfig     `yaml:"pipeline"`
	Search        SearchConfig       `yaml:"search"`
	Extractor     ExtractorConfig    `yaml:"extractor"`
	Browser       BrowserConfig      `yaml:"browser"`
	Generator     GeneratorConfig    `yaml:"generator"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Notifications NotificationConfig `yaml:"notifications"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Lock          LockConfig         `yaml:"lock"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// StoreConfig selects the article store backend.
type StoreConfig struct {
	Driver  string        `yaml:"driver"`
	BaseURL string        `yaml:"baseUrl"`
	DSN     string        `yaml:"dsn"`
	Timeout time.Duration `yaml:"timeout"`
}

// PipelineConfig is the batch and rate-limit policy plus derived-field settings.
type PipelineConfig struct {
	BatchSize   int           `yaml:"batchSize"`
	ItemDelay   time.Duration `yaml:"itemDelay"`
	TitleMarker string        `yaml:"titleMarker"`
	OriginBase  string        `yaml:"originBase"`
}

// SearchConfig drives the browser-backed search used when an article has no URL.
type SearchConfig struct {
	EngineURL       string        `yaml:"engineUrl"`
	Qualifier       string        `yaml:"qualifier"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxCandidates   int           `yaml:"maxCandidates"`
	SelfDomains     []string      `yaml:"selfDomains"`
	VideoDomains    []string      `yaml:"videoDomains"`
	SkipTextMarkers []string      `yaml:"skipTextMarkers"`
	DefaultURLs     []string      `yaml:"defaultUrls"`
}

// ExtractorConfig bounds the extraction tiers.
type ExtractorConfig struct {
	StaticTimeout time.Duration `yaml:"staticTimeout"`
	RenderTimeout time.Duration `yaml:"renderTimeout"`
	MaxChars      int           `yaml:"maxChars"`
	UserAgent     string        `yaml:"userAgent"`
}

// BrowserConfig describes how headless sessions are launched.
type BrowserConfig struct {
	Bin      string `yaml:"bin"`
	Headless bool   `yaml:"headless"`
}

// GeneratorConfig selects the model provider and prompt limits.
type GeneratorConfig struct {
	Provider     string        `yaml:"provider"`
	Timeout      time.Duration `yaml:"timeout"`
	ContextChars int           `yaml:"contextChars"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	APIKey  string `yaml:"apiKey"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"baseUrl"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// NotificationConfig encapsulates outbound channels (Telegram, etc.).
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// SchedulerConfig defines how often watch mode runs the pipeline.
type SchedulerConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// LockConfig points at the file guarding against overlapping runs on one host.
type LockConfig struct {
	Path string `yaml:"path"`
}

// Load reads .env and the YAML file named by ARTICLE_ENHANCER_CONFIG (if set) and applies
// environment overrides.
func Load() Config {
	return LoadFile("")
}

// LoadFile is Load with an explicit YAML path; an empty path falls back to
// ARTICLE_ENHANCER_CONFIG.
func LoadFile(path string) Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: cannot load .env: %v", err)
	}

	cfg := Default()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else if parsed, err := parse(raw, cfg); err != nil {
			log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		} else {
			cfg = parsed
		}
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg
}

// parse decodes YAML over base so that absent keys keep their defaults.
func parse(raw []byte, base Config) (Config, error) {
	cfg := base
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{logLevelEnv, &c.Logging.Level},
		{storeDriverEnv, &c.Store.Driver},
		{storeBaseURLEnv, &c.Store.BaseURL},
		{sqliteDSNEnv, &c.Store.DSN},
		{modelProviderEnv, &c.Generator.Provider},
		{geminiAPIKeyEnv, &c.Gemini.APIKey},
		{geminiModelEnv, &c.Gemini.Model},
		{chatGPTAPIKeyEnv, &c.ChatGPT.APIKey},
		{chatGPTModelEnv, &c.ChatGPT.Model},
		{telegramTokenEnv, &c.Notifications.Telegram.BotToken},
		{telegramChatIDEnv, &c.Notifications.Telegram.ChatID},
		{browserBinEnv, &c.Browser.Bin},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

// normalize repairs values a hand-written file may leave unusable.
func (c *Config) normalize() {
	def := Default()

	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver != StoreDriverSQLite {
		c.Store.Driver = StoreDriverAPI
	}
	c.Generator.Provider = strings.ToLower(strings.TrimSpace(c.Generator.Provider))

	if c.Pipeline.BatchSize <= 0 {
		c.Pipeline.BatchSize = def.Pipeline.BatchSize
	}
	if c.Pipeline.ItemDelay < 0 {
		c.Pipeline.ItemDelay = 0
	}
	if c.Pipeline.TitleMarker == "" {
		c.Pipeline.TitleMarker = def.Pipeline.TitleMarker
	}
	if c.Search.MaxCandidates <= 0 {
		c.Search.MaxCandidates = def.Search.MaxCandidates
	}
	if len(c.Search.DefaultURLs) == 0 {
		c.Search.DefaultURLs = def.Search.DefaultURLs
	}
	if c.Extractor.MaxChars <= 0 {
		c.Extractor.MaxChars = def.Extractor.MaxChars
	}
	if c.Generator.ContextChars <= 0 {
		c.Generator.ContextChars = def.Generator.ContextChars
	}

	durations := []struct {
		value    *time.Duration
		fallback time.Duration
	}{
		{&c.Store.Timeout, def.Store.Timeout},
		{&c.Search.Timeout, def.Search.Timeout},
		{&c.Extractor.StaticTimeout, def.Extractor.StaticTimeout},
		{&c.Extractor.RenderTimeout, def.Extractor.RenderTimeout},
		{&c.Generator.Timeout, def.Generator.Timeout},
	}
	for _, d := range durations {
		if *d.value <= 0 {
			*d.value = d.fallback
		}
	}
}

// Default returns the built-in configuration before any file or environment is applied.
func Default() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Store: StoreConfig{
			Driver:  StoreDriverAPI,
			BaseURL: "http://localhost:5000/api",
			DSN:     "articles.db",
			Timeout: 10 * time.Second,
		},
		Pipeline: PipelineConfig{
			BatchSize:   5,
			ItemDelay:   3 * time.Second,
			TitleMarker: " (AI Enhanced Edition)",
			OriginBase:  "https://beyondchats.com/enhanced/",
		},
		Search: SearchConfig{
			EngineURL:     "https://www.google.com/search",
			Qualifier:     "blog article",
			Timeout:       20 * time.Second,
			MaxCandidates: 5,
			SelfDomains:   []string{"google.com", "googleusercontent.com", "beyondchats.com"},
			VideoDomains:  []string{"youtube.com", "youtu.be", "vimeo.com", "dailymotion.com", "tiktok.com"},
			SkipTextMarkers: []string{
				"cached",
				"similar",
				"similar pages",
				"translate this page",
			},
			DefaultURLs: []string{
				"https://en.wikipedia.org/wiki/Chatbot",
				"https://en.wikipedia.org/wiki/Customer_service",
			},
		},
		Extractor: ExtractorConfig{
			StaticTimeout: 10 * time.Second,
			RenderTimeout: 15 * time.Second,
			MaxChars:      3000,
			UserAgent:     "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		},
		Browser: BrowserConfig{Headless: true},
		Generator: GeneratorConfig{
			Provider:     ProviderGemini,
			Timeout:      60 * time.Second,
			ContextChars: 2000,
		},
		Gemini: GeminiConfig{Model: "gemini-2.0-flash"},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You are an editor who rewrites blog articles and reports structured analytics as JSON.",
		},
		Lock: LockConfig{Path: filepath.Join(os.TempDir(), "article-enhancer.lock")},
	}
}
