package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/theimaginaryfoundation/talklog-tuner/talklog"
	"github.com/theimaginaryfoundation/talklog-tuner/talklog/logging"
)

type Config struct {
	ConfigPath string

	InputPath  string
	OutputPath string
	Sep        string
	Category   string
	MaxGap     time.Duration
	PairMaxGap time.Duration

	JSONLPath    string
	SystemPrompt string
	SchemaOut    string

	Upload bool
	APIKey string

	Overwrite bool

	LogLevel   string
	LogConsole bool
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return errors.New("missing -in")
	}
	if c.OutputPath == "" {
		return errors.New("missing -out")
	}
	if _, err := talklog.ParseSeparator(c.Sep); err != nil {
		return fmt.Errorf("-sep: %w", err)
	}
	if _, err := talklog.ParseCategory(c.Category); err != nil {
		return fmt.Errorf("-category: %w", err)
	}
	if c.MaxGap <= 0 {
		return errors.New("max-gap must be > 0")
	}
	if c.PairMaxGap < 0 {
		return errors.New("pair-max-gap must be >= 0")
	}
	if c.Upload && c.JSONLPath == "" {
		return errors.New("-upload requires -jsonl")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputPath:  filepath.FromSlash("docs/talk/records.tsv"),
		OutputPath: filepath.FromSlash("docs/talk/pairs.tsv"),
		Sep:        `\t`,
		Category:   string(talklog.CategoryText),
		MaxGap:     talklog.DefaultMaxGap,
	}
}

// fileConfig is the YAML form of Config. Nil fields leave the flag value alone.
// The API key is deliberately absent; use -api-key or OPENAI_API_KEY.
type fileConfig struct {
	In           *string `yaml:"in"`
	Out          *string `yaml:"out"`
	Sep          *string `yaml:"sep"`
	Category     *string `yaml:"category"`
	MaxGap       *string `yaml:"max_gap"`
	PairMaxGap   *string `yaml:"pair_max_gap"`
	JSONL        *string `yaml:"jsonl"`
	SystemPrompt *string `yaml:"system_prompt"`
	SchemaOut    *string `yaml:"schema_out"`
	Upload       *bool   `yaml:"upload"`
	Overwrite    *bool   `yaml:"overwrite"`
	LogLevel     *string `yaml:"log_level"`
	LogConsole   *bool   `yaml:"log_console"`
}

func loadFileConfig(path string) (fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return fc, nil
}

// apply copies file values into cfg for every flag that was not given on the command line.
func (fc fileConfig) apply(cfg *Config, explicit map[string]bool) error {
	setString := func(flag string, dst *string, v *string) {
		if v != nil && !explicit[flag] {
			*dst = *v
		}
	}
	setBool := func(flag string, dst *bool, v *bool) {
		if v != nil && !explicit[flag] {
			*dst = *v
		}
	}
	setDuration := func(flag string, dst *time.Duration, v *string) error {
		if v == nil || explicit[flag] {
			return nil
		}
		d, err := time.ParseDuration(*v)
		if err != nil {
			return fmt.Errorf("config %s: %w", flag, err)
		}
		*dst = d
		return nil
	}

	setString("in", &cfg.InputPath, fc.In)
	setString("out", &cfg.OutputPath, fc.Out)
	setString("sep", &cfg.Sep, fc.Sep)
	setString("category", &cfg.Category, fc.Category)
	setString("jsonl", &cfg.JSONLPath, fc.JSONL)
	setString("system-prompt", &cfg.SystemPrompt, fc.SystemPrompt)
	setString("schema-out", &cfg.SchemaOut, fc.SchemaOut)
	setString("log-level", &cfg.LogLevel, fc.LogLevel)
	setBool("upload", &cfg.Upload, fc.Upload)
	setBool("overwrite", &cfg.Overwrite, fc.Overwrite)
	setBool("log-console", &cfg.LogConsole, fc.LogConsole)
	if err := setDuration("max-gap", &cfg.MaxGap, fc.MaxGap); err != nil {
		return err
	}
	return setDuration("pair-max-gap", &cfg.PairMaxGap, fc.PairMaxGap)
}
