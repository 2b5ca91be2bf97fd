package main

import (
	"errors"
	"path/filepath"

	"github.com/theimaginaryfoundation/talklog-tuner/talklog"
)

var allStages = []string{"convert", "pairs"}

func (c Config) Validate() error {
	if c.TranscriptPath == "" {
		return errors.New("missing -in")
	}
	if c.BaseDir == "" {
		return errors.New("missing -base-dir")
	}
	if c.MaxGap <= 0 {
		return errors.New("max-gap must be > 0")
	}
	if c.PairMaxGap < 0 {
		return errors.New("pair-max-gap must be >= 0")
	}
	if c.OnlyStage != "" && c.FromStage != "" {
		return errors.New("use only one of -only-stage or -from-stage")
	}
	for _, s := range []string{c.OnlyStage, c.FromStage} {
		if s != "" && !isStage(s) {
			return errors.New("unknown stage: " + s)
		}
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		TranscriptPath: filepath.FromSlash("docs/talk/talk.txt"),
		BaseDir:        filepath.FromSlash("docs/talk"),
		Category:       string(talklog.CategoryText),
		MaxGap:         talklog.DefaultMaxGap,
		JSONL:          true,
	}
}

func isStage(s string) bool {
	for _, st := range allStages {
		if st == s {
			return true
		}
	}
	return false
}

// stagePaths are the artifacts each stage reads or writes under BaseDir.
type stagePaths struct {
	Records string
	Pairs   string
	JSONL   string
}

func pathsFor(base string) stagePaths {
	base = filepath.Clean(base)
	return stagePaths{
		Records: filepath.Join(base, "records.tsv"),
		Pairs:   filepath.Join(base, "pairs.tsv"),
		JSONL:   filepath.Join(base, "pairs.jsonl"),
	}
}
