package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/theimaginaryfoundation/talklog-tuner/talklog/fileutils"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stages := allStages
	if cfg.OnlyStage != "" {
		stages = []string{cfg.OnlyStage}
	} else if cfg.FromStage != "" {
		stages = stagesFrom(stages, cfg.FromStage)
	}

	paths := pathsFor(cfg.BaseDir)
	for _, stage := range stages {
		args, skip := stageArgs(cfg, paths, stage)
		if skip != "" {
			fmt.Fprintln(os.Stdout, skip)
			continue
		}
		if args == nil {
			fmt.Fprintln(os.Stderr, "unknown stage:", stage)
			os.Exit(2)
		}
		if err := runGo(ctx, args...); err != nil {
			os.Exit(1)
		}
	}
}

type Config struct {
	TranscriptPath string
	BaseDir        string

	Category   string
	MaxGap     time.Duration
	PairMaxGap time.Duration

	JSONL        bool
	SystemPrompt string
	StrictOrder  bool

	FromStage string
	OnlyStage string

	Overwrite bool

	LogLevel   string
	LogConsole bool
}

func parseFlags(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := defaultConfig()
	fs.SetOutput(os.Stderr)

	fs.StringVar(&cfg.TranscriptPath, "in", cfg.TranscriptPath, "Path to the exported chat transcript")
	fs.StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "Directory for records.tsv, pairs.tsv and pairs.jsonl")

	fs.StringVar(&cfg.Category, "category", cfg.Category, "Message category to merge and pair")
	fs.DurationVar(&cfg.MaxGap, "max-gap", cfg.MaxGap, "Turn merge gap")
	fs.DurationVar(&cfg.PairMaxGap, "pair-max-gap", 0, "Pairing gap (0 = same as -max-gap)")

	fs.BoolVar(&cfg.JSONL, "jsonl", cfg.JSONL, "Also write pairs.jsonl for chat fine-tuning")
	fs.StringVar(&cfg.SystemPrompt, "system-prompt", "", "Optional system message for JSONL examples")
	fs.BoolVar(&cfg.StrictOrder, "strict-order", false, "Fail the convert stage on out-of-order timestamps")

	fs.StringVar(&cfg.FromStage, "from-stage", "", "Start at stage: convert|pairs")
	fs.StringVar(&cfg.OnlyStage, "only-stage", "", "Run only one stage: convert|pairs")

	fs.BoolVar(&cfg.Overwrite, "overwrite", cfg.Overwrite, "Overwrite existing outputs (disables skip behavior)")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level passed to every stage")
	fs.BoolVar(&cfg.LogConsole, "log-console", false, "Human-readable logs in every stage")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.FromStage = strings.ToLower(strings.TrimSpace(cfg.FromStage))
	cfg.OnlyStage = strings.ToLower(strings.TrimSpace(cfg.OnlyStage))
	cfg.TranscriptPath = filepath.Clean(cfg.TranscriptPath)
	return cfg, nil
}

// stageArgs builds the go run arguments for one stage. A non-empty skip message means the
// stage's output already exists and overwrite is off. Nil args mean the stage is unknown.
func stageArgs(cfg Config, paths stagePaths, stage string) (args []string, skip string) {
	var common []string
	if cfg.Overwrite {
		common = append(common, "-overwrite")
	}
	if cfg.LogLevel != "" {
		common = append(common, "-log-level", cfg.LogLevel)
	}
	if cfg.LogConsole {
		common = append(common, "-log-console")
	}

	switch stage {
	case "convert":
		if !cfg.Overwrite && fileutils.FileExists(paths.Records) {
			return nil, "skip convert: records already exist"
		}
		args = []string{
			"run", "./cmd/talk-convert",
			"-in", cfg.TranscriptPath,
			"-out", paths.Records,
		}
		if cfg.StrictOrder {
			args = append(args, "-strict-order")
		}
		return append(args, common...), ""
	case "pairs":
		if !cfg.Overwrite && fileutils.FileExists(paths.Pairs) {
			return nil, "skip pairs: pairs already exist"
		}
		args = []string{
			"run", "./cmd/turn-pairs",
			"-in", paths.Records,
			"-out", paths.Pairs,
			"-category", cfg.Category,
			"-max-gap", cfg.MaxGap.String(),
		}
		if cfg.PairMaxGap > 0 {
			args = append(args, "-pair-max-gap", cfg.PairMaxGap.String())
		}
		if cfg.JSONL {
			args = append(args, "-jsonl", paths.JSONL)
			if cfg.SystemPrompt != "" {
				args = append(args, "-system-prompt", cfg.SystemPrompt)
			}
		}
		return append(args, common...), ""
	default:
		return nil, ""
	}
}

func runGo(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = os.Environ()

	start := time.Now()
	err := cmd.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "command failed:", "go "+strings.Join(args, " "))
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		return err
	}
	fmt.Fprintln(os.Stdout, "ok:", "go "+strings.Join(args, " "), "(", time.Since(start).Round(time.Millisecond).String()+")")
	return nil
}

func stagesFrom(stages []string, from string) []string {
	from = strings.ToLower(strings.TrimSpace(from))
	for i, s := range stages {
		if s == from {
			return stages[i:]
		}
	}
	return stages
}
