package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Storage     StorageConfig     `yaml:"storage" toml:"storage"`
	Recognition RecognitionConfig `yaml:"recognition" toml:"recognition"`
	Generation  GenerationConfig  `yaml:"generation" toml:"generation"`
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Watcher     WatcherConfig     `yaml:"watcher" toml:"watcher"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
	Performance PerformanceConfig `yaml:"performance" toml:"performance"`
}

// StorageConfig describes the bucket and the key prefixes of every stage.
type StorageConfig struct {
	Root              string `yaml:"root" toml:"root"`
	Bucket            string `yaml:"bucket" toml:"bucket"`
	InputPrefix       string `yaml:"input_prefix" toml:"input_prefix"`
	InputExtension    string `yaml:"input_extension" toml:"input_extension"`
	RecognitionPrefix string `yaml:"recognition_prefix" toml:"recognition_prefix"`
	FormattedPrefix   string `yaml:"formatted_prefix" toml:"formatted_prefix"`
	SummaryPrefix     string `yaml:"summary_prefix" toml:"summary_prefix"`
}

type RecognitionConfig struct {
	Backend        string   `yaml:"backend" toml:"backend"`
	BaseURL        string   `yaml:"base_url" toml:"base_url"`
	APIKey         string   `yaml:"api_key" toml:"api_key"`
	TimeoutSeconds int      `yaml:"timeout_seconds" toml:"timeout_seconds"`
	BinaryPath     string   `yaml:"binary_path" toml:"binary_path"`
	Args           []string `yaml:"args" toml:"args"`
	RunTimeout     int      `yaml:"run_timeout_seconds" toml:"run_timeout_seconds"`
}

type GenerationConfig struct {
	Provider       string   `yaml:"provider" toml:"provider"`
	APIKey         string   `yaml:"api_key" toml:"api_key"`
	Model          string   `yaml:"model" toml:"model"`
	BaseURL        string   `yaml:"base_url" toml:"base_url"`
	MaxTokens      int      `yaml:"max_tokens" toml:"max_tokens"`
	Temperature    *float64 `yaml:"temperature" toml:"temperature"`
	TopP           *float64 `yaml:"top_p" toml:"top_p"`
	TimeoutSeconds int      `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

type ServerConfig struct {
	Bind          string `yaml:"bind" toml:"bind"`
	AllowedOrigin string `yaml:"allowed_origin" toml:"allowed_origin"`
}

type WatcherConfig struct {
	SettleDelayMs int `yaml:"settle_delay_ms" toml:"settle_delay_ms"`
	MaxAttempts   int `yaml:"max_attempts" toml:"max_attempts"`
	RetryDelayMs  int `yaml:"retry_delay_ms" toml:"retry_delay_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" toml:"max_concurrent"`
}

const (
	RecognitionHTTP    = "http"
	RecognitionCommand = "command"

	ProviderGemini = "gemini"
	ProviderChat   = "chat"
)

func (c *Config) Validate() error {
	if c.Storage.Root == "" {
		return fmt.Errorf("storage.root is required")
	}
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage.bucket is required")
	}

	c.Recognition.Backend = strings.ToLower(strings.TrimSpace(c.Recognition.Backend))
	if c.Recognition.Backend == "" {
		c.Recognition.Backend = RecognitionHTTP
	}
	switch c.Recognition.Backend {
	case RecognitionHTTP:
		if c.Recognition.BaseURL == "" {
			return fmt.Errorf("recognition.base_url is required for the http backend")
		}
	case RecognitionCommand:
		if c.Recognition.BinaryPath == "" {
			return fmt.Errorf("recognition.binary_path is required for the command backend")
		}
	default:
		return fmt.Errorf("recognition.backend: unsupported value %q", c.Recognition.Backend)
	}

	c.Generation.Provider = strings.ToLower(strings.TrimSpace(c.Generation.Provider))
	if c.Generation.Provider == "" {
		c.Generation.Provider = ProviderGemini
	}
	switch c.Generation.Provider {
	case ProviderGemini:
		if c.Generation.Model == "" {
			c.Generation.Model = "gemini-2.5-flash"
		}
	case ProviderChat:
		if c.Generation.BaseURL == "" {
			return fmt.Errorf("generation.base_url is required for the chat provider")
		}
		if c.Generation.Model == "" {
			return fmt.Errorf("generation.model is required for the chat provider")
		}
	default:
		return fmt.Errorf("generation.provider: unsupported value %q", c.Generation.Provider)
	}

	if c.Storage.InputPrefix == "" {
		c.Storage.InputPrefix = "audios/"
	}
	if c.Storage.InputExtension == "" {
		c.Storage.InputExtension = ".mp3"
	}
	if c.Storage.RecognitionPrefix == "" {
		c.Storage.RecognitionPrefix = "transcripciones/"
	}
	if c.Storage.FormattedPrefix == "" {
		c.Storage.FormattedPrefix = "transcripciones-formateadas/"
	}
	if c.Storage.SummaryPrefix == "" {
		c.Storage.SummaryPrefix = "resumenes/"
	}
	if c.Recognition.TimeoutSeconds == 0 {
		c.Recognition.TimeoutSeconds = 15
	}
	if c.Recognition.RunTimeout == 0 {
		c.Recognition.RunTimeout = 1800
	}
	if c.Generation.MaxTokens == 0 {
		c.Generation.MaxTokens = 1024
	}
	// Absent sampling keys get defaults; an explicit 0 is kept.
	if c.Generation.Temperature == nil {
		c.Generation.Temperature = floatPtr(0.3)
	} else if *c.Generation.Temperature < 0 {
		return fmt.Errorf("generation.temperature must not be negative")
	}
	if c.Generation.TopP == nil {
		c.Generation.TopP = floatPtr(0.9)
	} else if *c.Generation.TopP < 0 || *c.Generation.TopP > 1 {
		return fmt.Errorf("generation.top_p must be between 0 and 1")
	}
	if c.Generation.TimeoutSeconds == 0 {
		c.Generation.TimeoutSeconds = 60
	}
	if c.Server.Bind == "" {
		c.Server.Bind = ":8080"
	}
	if c.Server.AllowedOrigin == "" {
		c.Server.AllowedOrigin = "*"
	}
	if c.Watcher.SettleDelayMs == 0 {
		c.Watcher.SettleDelayMs = 500
	}
	if c.Watcher.MaxAttempts == 0 {
		c.Watcher.MaxAttempts = 3
	}
	if c.Watcher.RetryDelayMs == 0 {
		c.Watcher.RetryDelayMs = 2000
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}

	return nil
}

func floatPtr(v float64) *float64 {
	return &v
}

func (w WatcherConfig) SettleDelay() time.Duration {
	return time.Duration(w.SettleDelayMs) * time.Millisecond
}

func (w WatcherConfig) RetryDelay() time.Duration {
	return time.Duration(w.RetryDelayMs) * time.Millisecond
}
