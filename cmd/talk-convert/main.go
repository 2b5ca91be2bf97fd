package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/theimaginaryfoundation/talklog-tuner/talklog"
	"github.com/theimaginaryfoundation/talklog-tuner/talklog/logging"
)

func main() {
	cfg, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(2)
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	log := logging.New(os.Stderr, level, cfg.LogConsole)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := talklog.ConvertTranscript(ctx, cfg.InputPath, cfg.OutputPath, talklog.ConvertOptions{
		OverwriteExisting: cfg.Overwrite,
		StrictOrder:       cfg.StrictOrder,
		FileMode:          0o644,
		Logger:            &log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "records=%d date_blocks=%d order_violations=%d out=%s\n",
		res.Records, res.DateBlocks, res.OrderViolations, cfg.OutputPath)
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	// Avoid mutating the global FlagSet if called from tests.
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Path to the exported chat transcript (UTF-8 text)")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Path of the message records file to write (tab separated)")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite an existing output file")
	fs.BoolVar(&cfg.StrictOrder, "strict-order", false, "Fail when message timestamps go backwards instead of warning")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level: debug|info|warn|error (defaults to info, or debug when DEBUG=1)")
	fs.BoolVar(&cfg.LogConsole, "log-console", false, "Human-readable logs instead of JSON lines")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/talk-convert -overwrite")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/talk-convert -in docs/talk/talk.txt -out docs/talk/records.tsv -strict-order")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.InputPath = filepath.Clean(cfg.InputPath)
	cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	return cfg, nil
}
