// Package config holds the application configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	Request RequestConfig `yaml:"request"`
	LLM     LLMConfig     `yaml:"llm"`
	TTS     TTSConfig     `yaml:"tts"`
	Narrate NarrateConfig `yaml:"narrate"`
	Log     LogConfig     `yaml:"log"`
	DB      DBConfig      `yaml:"db"`
}

// RequestConfig holds HTTP request settings.
type RequestConfig struct {
	Retries int           `yaml:"retries"`
	Timeout Duration      `yaml:"timeout"`
	Backoff BackoffConfig `yaml:"backoff"`
}

// BackoffConfig holds exponential backoff settings.
type BackoffConfig struct {
	BaseDelay Duration `yaml:"base_delay"`
}

// ProviderConfig holds settings for one text-generation provider.
type ProviderConfig struct {
	Key      string            `yaml:"key"`      // API Key
	BaseURL  string            `yaml:"base_url"` // API root, e.g. https://api.openai.com/v1
	Profiles map[string]string `yaml:"profiles"` // Map of intent -> model
}

// LLMConfig holds settings for the text-generation providers.
// Chain lists the providers in fallback order.
type LLMConfig struct {
	Chain  []string       `yaml:"chain"`
	OpenAI ProviderConfig `yaml:"openai"`
	Gemini ProviderConfig `yaml:"gemini"`
}

// TTSConfig holds Text-To-Speech settings.
type TTSConfig struct {
	Model        string  `yaml:"model"`  // e.g. "tts-1-hd", "gpt-4o-mini-tts"
	Voice        string  `yaml:"voice"`  // e.g. "alloy"
	Format       string  `yaml:"format"` // mp3|wav|opus|aac
	Speed        float64 `yaml:"speed"`  // [0.25, 4.0]
	Instructions string  `yaml:"instructions"`
}

// NarrateConfig holds settings for the narration pipeline.
type NarrateConfig struct {
	TargetLanguage string `yaml:"target_language"`
	NoTranslate    bool   `yaml:"no_translate"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	TTS    LogSettings `yaml:"tts"`
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings.
type DBConfig struct {
	Path string `yaml:"path"`
	// Retention prunes narration history older than this on startup.
	// Zero keeps history forever.
	Retention Duration `yaml:"retention"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Request: RequestConfig{
			Retries: 3,
			Timeout: Duration(300 * time.Second),
			Backoff: BackoffConfig{
				BaseDelay: Duration(500 * time.Millisecond),
			},
		},
		LLM: LLMConfig{
			Chain: []string{"openai"},
			OpenAI: ProviderConfig{
				BaseURL: "https://api.openai.com/v1",
				Profiles: map[string]string{
					"translate": "gpt-5-mini",
				},
			},
			Gemini: ProviderConfig{
				Profiles: map[string]string{},
			},
		},
		TTS: TTSConfig{
			Model:  "tts-1-hd",
			Voice:  "alloy",
			Format: "mp3",
			Speed:  1.0,
		},
		Narrate: NarrateConfig{
			TargetLanguage: "english",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/text2audio.log",
				Level: "INFO",
			},
			TTS: LogSettings{
				Path:  "./logs/tts.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path: "./data/text2audio.db",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT
// save back to disk (to preserve user formatting and comments).
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		cfg.applyEnv()
		return cfg, nil
	}

	// If file does not exist, save defaults
	if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv fills API keys from the environment when the file left them empty.
func (c *Config) applyEnv() {
	if c.LLM.OpenAI.Key == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			c.LLM.OpenAI.Key = key
		}
	}
	if c.LLM.Gemini.Key == "" {
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			c.LLM.Gemini.Key = key
		}
	}
	if model := os.Getenv("OPENAI_TTS_MODEL"); model != "" && c.TTS.Model == DefaultConfig().TTS.Model {
		c.TTS.Model = model
	}
	if voice := os.Getenv("OPENAI_TTS_VOICE"); voice != "" && c.TTS.Voice == DefaultConfig().TTS.Voice {
		c.TTS.Voice = voice
	}
	if model := os.Getenv("OPENAI_TEXT_MODEL"); model != "" {
		if c.LLM.OpenAI.Profiles == nil {
			c.LLM.OpenAI.Profiles = map[string]string{}
		}
		if c.LLM.OpenAI.Profiles["translate"] == DefaultConfig().LLM.OpenAI.Profiles["translate"] {
			c.LLM.OpenAI.Profiles["translate"] = model
		}
	}
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# text2audio Configuration
# ------------------------
# API keys may be left empty here and provided via the environment
# (OPENAI_API_KEY, GEMINI_API_KEY) or a .env file.

`)
	data = append(header, data...)

	// Inject comments for Enum fields
	reFormat := regexp.MustCompile(`(?m)^(\s+)format:`)
	data = reFormat.ReplaceAll(data, []byte("${1}# Options: mp3, wav, opus, aac\n${1}format:"))

	reSpeed := regexp.MustCompile(`(?m)^(\s+)speed:`)
	data = reSpeed.ReplaceAll(data, []byte("${1}# Range: 0.25 to 4.0\n${1}speed:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
