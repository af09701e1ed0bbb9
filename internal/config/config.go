package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. It is built once by Load and
// handed to each component's constructor.
type Config struct {
	App        App        `mapstructure:"app"`
	Gemini     Gemini     `mapstructure:"gemini"`
	Blogger    Blogger    `mapstructure:"blogger"`
	Content    Content    `mapstructure:"content"`
	SEO        SEO        `mapstructure:"seo"`
	Publishing Publishing `mapstructure:"publishing"`
	Metrics    Metrics    `mapstructure:"metrics"`
}

// App holds general application configuration
type App struct {
	DataDir      string `mapstructure:"data_dir"`
	TrackingFile string `mapstructure:"tracking_file"`
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
	ConfigFile   string `mapstructure:"config_file"`
}

// Gemini holds generation API configuration
type Gemini struct {
	APIKey             string        `mapstructure:"api_key"`
	Model              string        `mapstructure:"model"`
	APIVersion         string        `mapstructure:"api_version"`
	FallbackAPIVersion string        `mapstructure:"fallback_api_version"`
	BaseURL            string        `mapstructure:"base_url"`
	Temperature        float32       `mapstructure:"temperature"`
	TopP               float32       `mapstructure:"top_p"`
	TopK               float32       `mapstructure:"top_k"`
	MaxTokens          int32         `mapstructure:"max_tokens"`
	MaxAttempts        int           `mapstructure:"max_attempts"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	RequestTimeoutStep time.Duration `mapstructure:"request_timeout_step"`
}

// Blogger holds publishing API configuration
type Blogger struct {
	BlogID       string `mapstructure:"blog_id"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	TokenFile    string `mapstructure:"token_file"`
}

// Content holds recipe content thresholds
type Content struct {
	Categories           []string `mapstructure:"categories"`
	MinIngredients       int      `mapstructure:"min_ingredients"`
	MinSteps             int      `mapstructure:"min_steps"`
	TargetWordCount      int      `mapstructure:"target_word_count"`
	MinTitleLength       int      `mapstructure:"min_title_length"`
	MaxTitleLength       int      `mapstructure:"max_title_length"`
	MinDescriptionLength int      `mapstructure:"min_description_length"`
	SoftKeywordThreshold int      `mapstructure:"soft_keyword_threshold"`
}

// SEO holds optimizer tables and switches
type SEO struct {
	PrimaryKeywords       []string `mapstructure:"primary_keywords"`
	CookingTerms          []string `mapstructure:"cooking_terms"`
	TriggerPhrases        []string `mapstructure:"trigger_phrases"`
	SearchTerms           []string `mapstructure:"search_terms"`
	TitlePrefix           string   `mapstructure:"title_prefix"`
	MetaDescriptionLength int      `mapstructure:"meta_description_length"`
	Aggressive            bool     `mapstructure:"aggressive"`
}

// Publishing holds scheduling configuration for continuous mode
type Publishing struct {
	IntervalHours       float64       `mapstructure:"interval_hours"`
	Jitter              float64       `mapstructure:"jitter"`
	Cooldown            time.Duration `mapstructure:"cooldown"`
	DraftMode           bool          `mapstructure:"draft_mode"`
	MinFetchWindowHours float64       `mapstructure:"min_fetch_window_hours"`
	SafetyFactor        float64       `mapstructure:"safety_factor"`
	MinArticles         int           `mapstructure:"min_articles"`
	MaxArticles         int           `mapstructure:"max_articles"`
}

// Metrics holds the prometheus listener configuration
type Metrics struct {
	Addr string `mapstructure:"addr"`
}

// Load loads the configuration from defaults, an optional config file, a
// .env file and the environment, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	v := viper.New()
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
		v.SetConfigName(".chefpress")
		v.SetConfigType("yaml")
	}

	setDefaults(v)
	bindEnvironmentVariables(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.App.ConfigFile = v.ConfigFileUsed()

	postProcessConfig(cfg)
	return cfg, nil
}

// Default returns the configuration produced by defaults alone.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	postProcessConfig(cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.data_dir", "data")
	v.SetDefault("app.tracking_file", "performance.json")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "console")

	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.api_version", "v1beta")
	v.SetDefault("gemini.fallback_api_version", "v1")
	v.SetDefault("gemini.temperature", 0.9)
	v.SetDefault("gemini.top_p", 0.95)
	v.SetDefault("gemini.top_k", 40)
	v.SetDefault("gemini.max_tokens", 8000)
	v.SetDefault("gemini.max_attempts", 3)
	v.SetDefault("gemini.request_timeout", "60s")
	v.SetDefault("gemini.request_timeout_step", "30s")

	v.SetDefault("blogger.token_file", "token.json")

	v.SetDefault("content.categories", []string{
		"Arabic sweets", "Pastries", "Cakes and tortes", "Biscuits and cookies",
		"Cold desserts", "Pies and baked goods", "Healthy sweets", "Ramadan dishes",
	})
	v.SetDefault("content.min_ingredients", 5)
	v.SetDefault("content.min_steps", 6)
	v.SetDefault("content.target_word_count", 1200)
	v.SetDefault("content.min_title_length", 10)
	v.SetDefault("content.max_title_length", 70)
	v.SetDefault("content.min_description_length", 50)
	v.SetDefault("content.soft_keyword_threshold", 3)

	v.SetDefault("seo.primary_keywords", []string{
		"cooking recipes", "easy desserts", "how to make", "homemade recipes",
		"delicious sweets", "arabic kitchen", "quick recipes",
	})
	v.SetDefault("seo.cooking_terms", []string{
		"baking", "dessert", "oven", "dough", "syrup", "butter", "sugar",
		"step by step", "family recipe", "traditional",
	})
	v.SetDefault("seo.trigger_phrases", []string{"recipe for", "how to make", "how to prepare"})
	v.SetDefault("seo.search_terms", []string{"recipe", "how to", "homemade", "best", "quick"})
	v.SetDefault("seo.title_prefix", "How to Make")
	v.SetDefault("seo.meta_description_length", 160)
	v.SetDefault("seo.aggressive", true)

	v.SetDefault("publishing.interval_hours", 24)
	v.SetDefault("publishing.jitter", 0.1)
	v.SetDefault("publishing.cooldown", "1h")
	v.SetDefault("publishing.draft_mode", false)
	v.SetDefault("publishing.min_fetch_window_hours", 48)
	v.SetDefault("publishing.safety_factor", 0.8)
	v.SetDefault("publishing.min_articles", 1)
	v.SetDefault("publishing.max_articles", 100)
}

// bindEnvironmentVariables maps the historical environment names onto keys.
func bindEnvironmentVariables(v *viper.Viper) {
	bindEnvKeys(v, "gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})
	bindEnvKeys(v, "gemini.model", []string{"GEMINI_MODEL"})
	bindEnvKeys(v, "blogger.blog_id", []string{"BLOGGER_BLOG_ID"})
	bindEnvKeys(v, "blogger.client_id", []string{"BLOGGER_CLIENT_ID"})
	bindEnvKeys(v, "blogger.client_secret", []string{"BLOGGER_CLIENT_SECRET"})
	bindEnvKeys(v, "publishing.interval_hours", []string{"PUBLISH_INTERVAL_HOURS"})
	bindEnvKeys(v, "publishing.draft_mode", []string{"DRAFT_MODE"})
	bindEnvKeys(v, "app.log_level", []string{"LOG_LEVEL", "CHEFPRESS_LOG_LEVEL"})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(v *viper.Viper, viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			v.Set(viperKey, value)
			return
		}
	}
}

func postProcessConfig(cfg *Config) {
	cfg.App.DataDir = expandPath(cfg.App.DataDir)
	cfg.Blogger.TokenFile = expandPath(cfg.Blogger.TokenFile)
	cfg.Gemini.APIVersion = strings.TrimSpace(cfg.Gemini.APIVersion)
	cfg.Gemini.FallbackAPIVersion = strings.TrimSpace(cfg.Gemini.FallbackAPIVersion)
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// TrackingPath is the full path of the tracking store file.
func (c *Config) TrackingPath() string {
	if filepath.IsAbs(c.App.TrackingFile) {
		return c.App.TrackingFile
	}
	return filepath.Join(c.App.DataDir, c.App.TrackingFile)
}

// Validate checks the settings needed to generate content. Publishing
// credentials are checked separately by ValidatePublishing.
func (c *Config) Validate() error {
	var problems []string

	if c.Gemini.APIKey == "" {
		problems = append(problems, "Gemini API key is required. Set GEMINI_API_KEY environment variable or gemini.api_key in config file")
	}
	if c.Gemini.MaxAttempts < 1 {
		problems = append(problems, "gemini.max_attempts must be at least 1")
	}
	if len(c.Content.Categories) == 0 {
		problems = append(problems, "content.categories must list at least one category")
	}
	if c.SEO.MetaDescriptionLength < 20 {
		problems = append(problems, "seo.meta_description_length must be at least 20")
	}
	if c.Publishing.IntervalHours <= 0 {
		problems = append(problems, "publishing.interval_hours must be positive")
	}
	if c.Publishing.Jitter < 0 || c.Publishing.Jitter >= 1 {
		problems = append(problems, "publishing.jitter must be in [0, 1)")
	}
	if c.Publishing.MinArticles > c.Publishing.MaxArticles {
		problems = append(problems, "publishing.min_articles must not exceed publishing.max_articles")
	}

	return joinProblems(problems)
}

// ValidatePublishing checks the Blogger settings.
func (c *Config) ValidatePublishing() error {
	var problems []string
	if c.Blogger.BlogID == "" {
		problems = append(problems, "Blogger blog id is required. Set BLOGGER_BLOG_ID")
	}
	if c.Blogger.ClientID == "" || c.Blogger.ClientSecret == "" {
		problems = append(problems, "Blogger OAuth credentials are required. Set BLOGGER_CLIENT_ID and BLOGGER_CLIENT_SECRET")
	}
	return joinProblems(problems)
}

func joinProblems(problems []string) error {
	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("configuration errors:\n- %s", strings.Join(problems, "\n- "))
}
