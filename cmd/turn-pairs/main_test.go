package main

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("turn-pairs", flag.ContinueOnError)
	cfg, err := parseFlags(fs, nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Sep != `\t` {
		t.Fatalf("Sep=%q, want tab escape", cfg.Sep)
	}
	if cfg.Category != "text" {
		t.Fatalf("Category=%q, want text", cfg.Category)
	}
	if cfg.MaxGap != 30*time.Minute {
		t.Fatalf("MaxGap=%s, want 30m", cfg.MaxGap)
	}
	if cfg.PairMaxGap != 0 {
		t.Fatalf("PairMaxGap=%s, want 0 (inherit)", cfg.PairMaxGap)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestParseFlags_Overrides(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("turn-pairs", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{
		"-in", "r.csv",
		"-out", "p.csv",
		"-sep", ",",
		"-category", "sticker",
		"-max-gap", "10m",
		"-pair-max-gap", "1h",
		"-jsonl", "p.jsonl",
		"-system-prompt", "You are Bob.",
		"-schema-out", "schema.json",
		"-upload",
		"-overwrite",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.Sep != "," || cfg.Category != "sticker" {
		t.Fatalf("sep/category=%q/%q", cfg.Sep, cfg.Category)
	}
	if cfg.MaxGap != 10*time.Minute || cfg.PairMaxGap != time.Hour {
		t.Fatalf("max-gap/pair-max-gap=%s/%s", cfg.MaxGap, cfg.PairMaxGap)
	}
	if cfg.JSONLPath != "p.jsonl" || cfg.SchemaOut != "schema.json" || cfg.SystemPrompt != "You are Bob." {
		t.Fatalf("jsonl/schema/prompt=%q/%q/%q", cfg.JSONLPath, cfg.SchemaOut, cfg.SystemPrompt)
	}
	if !cfg.Upload || !cfg.Overwrite {
		t.Fatalf("upload/overwrite=%v/%v", cfg.Upload, cfg.Overwrite)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseFlags_ConfigFileExplicitFlagsWin(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "turn-pairs.yaml")
	yml := "in: from-file.tsv\n" +
		"out: pairs-from-file.tsv\n" +
		"max_gap: 5m\n" +
		"pair_max_gap: 45m\n" +
		"category: photo\n" +
		"jsonl: ft.jsonl\n" +
		"overwrite: true\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fs := flag.NewFlagSet("turn-pairs", flag.ContinueOnError)
	cfg, err := parseFlags(fs, []string{"-config", path, "-max-gap", "20m", "-out", "cli.tsv"})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}
	if cfg.InputPath != "from-file.tsv" {
		t.Fatalf("InputPath=%q, want file value", cfg.InputPath)
	}
	if cfg.OutputPath != "cli.tsv" {
		t.Fatalf("OutputPath=%q, want flag value", cfg.OutputPath)
	}
	if cfg.MaxGap != 20*time.Minute {
		t.Fatalf("MaxGap=%s, want flag value 20m", cfg.MaxGap)
	}
	if cfg.PairMaxGap != 45*time.Minute {
		t.Fatalf("PairMaxGap=%s, want file value 45m", cfg.PairMaxGap)
	}
	if cfg.Category != "photo" || cfg.JSONLPath != "ft.jsonl" || !cfg.Overwrite {
		t.Fatalf("category/jsonl/overwrite=%q/%q/%v", cfg.Category, cfg.JSONLPath, cfg.Overwrite)
	}
}

func TestParseFlags_ConfigFileErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	fs := flag.NewFlagSet("turn-pairs", flag.ContinueOnError)
	if _, err := parseFlags(fs, []string{"-config", filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing config file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("max_gap: soon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	fs = flag.NewFlagSet("turn-pairs", flag.ContinueOnError)
	if _, err := parseFlags(fs, []string{"-config", bad}); err == nil {
		t.Fatalf("expected error for bad duration")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := defaultConfig()
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]func(c *Config){
		"missing in":       func(c *Config) { c.InputPath = "" },
		"missing out":      func(c *Config) { c.OutputPath = "" },
		"multi-char sep":   func(c *Config) { c.Sep = "ab" },
		"quote sep":        func(c *Config) { c.Sep = `"` },
		"unknown category": func(c *Config) { c.Category = "hologram" },
		"zero max gap":     func(c *Config) { c.MaxGap = 0 },
		"negative pair":    func(c *Config) { c.PairMaxGap = -time.Minute },
		"upload no jsonl":  func(c *Config) { c.Upload = true },
		"bad log level":    func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		c := defaultConfig()
		mutate(&c)
		if err := c.Validate(); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestWriteSchema(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "schema.json")
	if err := writeSchema(path, false); err != nil {
		t.Fatalf("writeSchema: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if len(b) == 0 {
		t.Fatalf("empty schema")
	}
	if err := writeSchema(path, false); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if err := writeSchema(path, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}
