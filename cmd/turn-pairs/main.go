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
	"github.com/theimaginaryfoundation/talklog-tuner/talklog/fileutils"
	"github.com/theimaginaryfoundation/talklog-tuner/talklog/logging"
	"github.com/theimaginaryfoundation/talklog-tuner/talklog/provider"
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

	sep, _ := talklog.ParseSeparator(cfg.Sep)
	category, _ := talklog.ParseCategory(cfg.Category)

	res, err := talklog.BuildTurnPairs(ctx, cfg.InputPath, cfg.OutputPath, talklog.PairOptions{
		Separator:  sep,
		Category:   category,
		MaxGap:     cfg.MaxGap,
		PairMaxGap: cfg.PairMaxGap,
		JSONLPath:  cfg.JSONLPath,
		FineTune: talklog.FineTuneOptions{
			SystemPrompt: cfg.SystemPrompt,
		},
		OverwriteExisting: cfg.Overwrite,
		FileMode:          0o644,
		Logger:            &log,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if cfg.SchemaOut != "" {
		if err := writeSchema(cfg.SchemaOut, cfg.Overwrite); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		log.Info().Str("path", cfg.SchemaOut).Msg("pair row schema written")
	}

	fileID := ""
	if cfg.Upload {
		client, err := provider.NewClient(cfg.APIKey)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		fileID, err = provider.UploadFineTuneFile(ctx, client, cfg.JSONLPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(1)
		}
		log.Info().Str("file_id", fileID).Str("path", cfg.JSONLPath).Msg("fine-tune file uploaded")
	}

	fmt.Fprintf(os.Stdout, "records=%d turns=%d pairs=%d out=%s", res.Records, res.Turns, res.Pairs, cfg.OutputPath)
	if cfg.JSONLPath != "" {
		fmt.Fprintf(os.Stdout, " jsonl=%s", cfg.JSONLPath)
	}
	if fileID != "" {
		fmt.Fprintf(os.Stdout, " file_id=%s", fileID)
	}
	fmt.Fprintln(os.Stdout)
}

func writeSchema(path string, overwrite bool) error {
	if err := fileutils.EnsureWritable(path, overwrite); err != nil {
		return err
	}
	return fileutils.WriteJSONFileAtomic(path, provider.GenerateSchema[talklog.PairRow](), true)
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()

	// Avoid mutating the global FlagSet if called from tests.
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.ConfigPath, "config", "", "Optional YAML file with flag values (explicit flags win)")
	fs.StringVar(&cfg.InputPath, "in", cfg.InputPath, "Path to the message records file written by talk-convert")
	fs.StringVar(&cfg.OutputPath, "out", cfg.OutputPath, "Path of the turn pairs file to write")
	fs.StringVar(&cfg.Sep, "sep", cfg.Sep, `Field separator of both files: one character, or \t for tab`)
	fs.StringVar(&cfg.Category, "category", cfg.Category, "Message category to merge and pair (text, sticker, photo, ...)")
	fs.DurationVar(&cfg.MaxGap, "max-gap", cfg.MaxGap, "Merge a message into the open turn only if it follows the previous merged message by less than this")
	fs.DurationVar(&cfg.PairMaxGap, "pair-max-gap", 0, "Max time between paired turn starts (0 = same as -max-gap)")
	fs.StringVar(&cfg.JSONLPath, "jsonl", "", "Optional path of an OpenAI chat fine-tuning JSONL file to write")
	fs.StringVar(&cfg.SystemPrompt, "system-prompt", "", "Optional system message prepended to every JSONL example")
	fs.StringVar(&cfg.SchemaOut, "schema-out", "", "Optional path of a JSON schema describing one pair row")
	fs.BoolVar(&cfg.Upload, "upload", false, "Upload the JSONL file to the OpenAI Files API (purpose fine-tune)")
	fs.StringVar(&cfg.APIKey, "api-key", "", "OpenAI API key (defaults to OPENAI_API_KEY)")
	fs.BoolVar(&cfg.Overwrite, "overwrite", false, "Overwrite existing output files")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level: debug|info|warn|error (defaults to info, or debug when DEBUG=1)")
	fs.BoolVar(&cfg.LogConsole, "log-console", false, "Human-readable logs instead of JSON lines")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage:\n  %s [flags]\n\nFlags:\n", filepath.Base(os.Args[0]))
		fs.PrintDefaults()
		fmt.Fprintln(fs.Output(), "\nExamples:")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/turn-pairs -overwrite")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/turn-pairs -in docs/talk/records.tsv -out docs/talk/pairs.tsv -max-gap 10m -jsonl docs/talk/pairs.jsonl")
		fmt.Fprintln(fs.Output(), "  go run ./cmd/turn-pairs -config turn-pairs.yaml -upload")
	}

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.ConfigPath != "" {
		fc, err := loadFileConfig(cfg.ConfigPath)
		if err != nil {
			return Config{}, err
		}
		explicit := make(map[string]bool)
		fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
		if err := fc.apply(&cfg, explicit); err != nil {
			return Config{}, err
		}
	}

	cfg.InputPath = filepath.Clean(cfg.InputPath)
	cfg.OutputPath = filepath.Clean(cfg.OutputPath)
	if cfg.JSONLPath != "" {
		cfg.JSONLPath = filepath.Clean(cfg.JSONLPath)
	}
	if cfg.SchemaOut != "" {
		cfg.SchemaOut = filepath.Clean(cfg.SchemaOut)
	}
	return cfg, nil
}
