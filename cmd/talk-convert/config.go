package main

import (
	"fmt"
	"path/filepath"

	"github.com/theimaginaryfoundation/talklog-tuner/talklog/logging"
)

type Config struct {
	InputPath   string
	OutputPath  string
	Overwrite   bool
	StrictOrder bool

	LogLevel   string
	LogConsole bool
}

func (c Config) Validate() error {
	if c.InputPath == "" {
		return fmt.Errorf("missing -in")
	}
	if c.OutputPath == "" {
		return fmt.Errorf("missing -out")
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func defaultConfig() Config {
	return Config{
		InputPath:  filepath.FromSlash("docs/talk/talk.txt"),
		OutputPath: filepath.FromSlash("docs/talk/records.tsv"),
	}
}
