package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StoreConfig lists the record files loaded at startup.
type StoreConfig struct {
	Inputs []string `yaml:"inputs"`
}

// TermWeight is a vocabulary entry with its bonus.
type TermWeight struct {
	Term  string  `yaml:"term"`
	Bonus float64 `yaml:"bonus"`
}

// WeightsConfig overrides individual scoring weights. Zero values keep the defaults.
type WeightsConfig struct {
	ExactPhrase      float64      `yaml:"exact_phrase,omitempty"`
	ImportantWord    float64      `yaml:"important_word,omitempty"`
	SentenceStart    float64      `yaml:"sentence_start,omitempty"`
	GeneralWord      float64      `yaml:"general_word,omitempty"`
	NumericMatch     float64      `yaml:"numeric_match,omitempty"`
	ShortChunkLength int          `yaml:"short_chunk_length,omitempty"`
	ShortChunkFactor float64      `yaml:"short_chunk_factor,omitempty"`
	StructureTerms   []TermWeight `yaml:"structure_terms,omitempty"`
	QuestionPatterns []TermWeight `yaml:"question_patterns,omitempty"`
}

// ScorerConfig selects and configures the relevance scorer.
type ScorerConfig struct {
	Type    string         `yaml:"type"`
	TopK    int            `yaml:"top_k"`
	Weights *WeightsConfig `yaml:"weights,omitempty"`
}

// GeminiConfig holds connection details for the Gemini generateContent API.
type GeminiConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// OpenAIConfig holds connection details for an OpenAI-compatible chat API.
type OpenAIConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// GeneratorConfig selects and configures the answer generation backend.
type GeneratorConfig struct {
	Type          string        `yaml:"type"`
	MinIntervalMS int           `yaml:"min_interval_ms"`
	TimeoutSecs   int           `yaml:"timeout_secs"`
	Gemini        *GeminiConfig `yaml:"gemini,omitempty"`
	OpenAI        *OpenAIConfig `yaml:"openai,omitempty"`
}

// AnswerConfig controls how much of the ranking feeds the answer.
type AnswerConfig struct {
	ContextChunks int `yaml:"context_chunks"`
	ContextChars  int `yaml:"context_chars"`
	SourceChunks  int `yaml:"source_chunks"`
}

// LogConfig configures the application logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Store     StoreConfig     `yaml:"store"`
	Scorer    ScorerConfig    `yaml:"scorer"`
	Generator GeneratorConfig `yaml:"generator"`
	Answer    AnswerConfig    `yaml:"answer"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			return cfg, nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Store:  StoreConfig{Inputs: []string{"*.json"}},
		Scorer: ScorerConfig{Type: "heuristic", TopK: 5},
		Generator: GeneratorConfig{
			Type:          "gemini",
			MinIntervalMS: 2000,
			TimeoutSecs:   15,
		},
		Answer: AnswerConfig{ContextChunks: 3, ContextChars: 400, SourceChunks: 3},
		Log:    LogConfig{Level: "info"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if len(cfg.Store.Inputs) == 0 {
		cfg.Store.Inputs = []string{"*.json"}
	}
	if cfg.Scorer.Type == "" {
		cfg.Scorer.Type = "heuristic"
	}
	if cfg.Scorer.TopK == 0 {
		cfg.Scorer.TopK = 5
	}
	if cfg.Generator.Type == "" {
		cfg.Generator.Type = "gemini"
	}
	if cfg.Generator.MinIntervalMS == 0 {
		cfg.Generator.MinIntervalMS = 2000
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 15
	}
	switch cfg.Generator.Type {
	case "gemini":
		if cfg.Generator.Gemini == nil {
			cfg.Generator.Gemini = &GeminiConfig{}
		}
		if cfg.Generator.Gemini.BaseURL == "" {
			cfg.Generator.Gemini.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
		}
		if cfg.Generator.Gemini.APIKeyEnv == "" {
			cfg.Generator.Gemini.APIKeyEnv = "GEMINI_API_KEY"
		}
		if cfg.Generator.Gemini.Model == "" {
			cfg.Generator.Gemini.Model = "gemini-1.5-flash"
		}
	case "openai":
		if cfg.Generator.OpenAI == nil {
			cfg.Generator.OpenAI = &OpenAIConfig{}
		}
		if cfg.Generator.OpenAI.BaseURL == "" {
			cfg.Generator.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Generator.OpenAI.APIKeyEnv == "" {
			cfg.Generator.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Generator.OpenAI.Model == "" {
			cfg.Generator.OpenAI.Model = "gpt-4o-mini"
		}
	}
	if cfg.Answer.ContextChunks == 0 {
		cfg.Answer.ContextChunks = 3
	}
	if cfg.Answer.ContextChars == 0 {
		cfg.Answer.ContextChars = 400
	}
	if cfg.Answer.SourceChunks == 0 {
		cfg.Answer.SourceChunks = 3
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
