package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai" mapstructure:"openai"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Generation GenerationConfig `yaml:"generation" mapstructure:"generation"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// AnthropicConfig holds Anthropic API settings. Anthropic is the default
// analysis provider (SWOT, competitors, personas).
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// OpenAIConfig holds OpenAI API settings. OpenAI is the default generation
// provider (plan synthesis, streamed content).
type OpenAIConfig struct {
	Key        string `yaml:"key" mapstructure:"key"`
	FastModel  string `yaml:"fast_model" mapstructure:"fast_model"`
	PowerModel string `yaml:"power_model" mapstructure:"power_model"`
}

// FetchConfig configures the headless-browser content fetcher.
type FetchConfig struct {
	TimeoutSecs     int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxContentChars int `yaml:"max_content_chars" mapstructure:"max_content_chars"`
}

// PipelineConfig configures the analysis pipeline.
type PipelineConfig struct {
	PersonaCount  int `yaml:"persona_count" mapstructure:"persona_count"`
	RetryAttempts int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
}

// GenerationConfig configures content generation and plan synthesis.
type GenerationConfig struct {
	PlanMaxTokens   int     `yaml:"plan_max_tokens" mapstructure:"plan_max_tokens"`
	PlanTemperature float64 `yaml:"plan_temperature" mapstructure:"plan_temperature"`
	StreamMaxTokens int     `yaml:"stream_max_tokens" mapstructure:"stream_max_tokens"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("MARKETSMITH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("openai.fast_model", "gpt-4o-mini")
	v.SetDefault("openai.power_model", "gpt-4o")
	v.SetDefault("fetch.timeout_secs", 60)
	v.SetDefault("fetch.max_content_chars", 15000)
	v.SetDefault("pipeline.persona_count", 2)
	v.SetDefault("pipeline.retry_attempts", 2)
	v.SetDefault("generation.plan_max_tokens", 3000)
	v.SetDefault("generation.plan_temperature", 0.5)
	v.SetDefault("generation.stream_max_tokens", 4000)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
