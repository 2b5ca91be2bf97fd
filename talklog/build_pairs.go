package talklog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/theimaginaryfoundation/talklog-tuner/talklog/fileutils"
)

// PairOptions controls BuildTurnPairs.
type PairOptions struct {
	// Separator delimits fields of both the records input and the pairs output (defaults to tab).
	Separator rune

	// Category is the message category that is merged and paired (defaults to text).
	Category Category

	// MaxGap bounds the time since the previously merged message when building turns.
	MaxGap time.Duration

	// PairMaxGap bounds the time between paired turns. Defaults to MaxGap.
	PairMaxGap time.Duration

	// JSONLPath, when set, also writes the pairs as an OpenAI chat fine-tuning file.
	JSONLPath string
	FineTune  FineTuneOptions

	OverwriteExisting bool

	// FileMode is used when creating output files (defaults to 0o644).
	FileMode fs.FileMode

	// Logger receives progress. Nil discards it.
	Logger *zerolog.Logger
}

const previewRunes = 80

// PairResult contains basic stats from a pairs run.
type PairResult struct {
	Records int
	Turns   int
	Pairs   int
}

// BuildTurnPairs reads a records artifact, merges turns, extracts adjacent pairs, and writes the
// pairs artifact (and optionally the fine-tuning JSONL).
func BuildTurnPairs(ctx context.Context, inputPath, outputPath string, opts PairOptions) (PairResult, error) {
	if ctx == nil {
		return PairResult{}, errors.New("BuildTurnPairs: ctx is nil")
	}
	if inputPath == "" {
		return PairResult{}, errors.New("BuildTurnPairs: inputPath is empty")
	}
	if outputPath == "" {
		return PairResult{}, errors.New("BuildTurnPairs: outputPath is empty")
	}
	if opts.Separator == 0 {
		opts.Separator = DefaultSeparator
	}
	if opts.Category == "" {
		opts.Category = CategoryText
	}
	if opts.MaxGap <= 0 {
		opts.MaxGap = DefaultMaxGap
	}
	if opts.PairMaxGap <= 0 {
		opts.PairMaxGap = opts.MaxGap
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0o644
	}
	log := loggerOrNop(opts.Logger)

	if err := fileutils.EnsureWritable(outputPath, opts.OverwriteExisting); err != nil {
		return PairResult{}, fmt.Errorf("BuildTurnPairs: %w", err)
	}
	if opts.JSONLPath != "" {
		if err := fileutils.EnsureWritable(opts.JSONLPath, opts.OverwriteExisting); err != nil {
			return PairResult{}, fmt.Errorf("BuildTurnPairs: %w", err)
		}
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return PairResult{}, fmt.Errorf("BuildTurnPairs: open input: %w", err)
	}
	records, err := ReadRecords(f, opts.Separator)
	_ = f.Close()
	if err != nil {
		return PairResult{}, fmt.Errorf("BuildTurnPairs: %w", err)
	}
	log.Debug().Int("records", len(records)).Msg("records loaded")

	agg := Aggregator{Category: opts.Category, MaxGap: opts.MaxGap}
	var st AggregateState
	for i, rec := range records {
		if i%10000 == 0 {
			select {
			case <-ctx.Done():
				return PairResult{}, ctx.Err()
			default:
			}
		}
		st = agg.Step(st, rec)
	}
	turns := agg.Finish(st)

	pairs := PairExtractor{Category: opts.Category, MaxGap: opts.PairMaxGap}.ExtractPairs(turns)
	if len(pairs) > 0 {
		log.Debug().
			Str("first", fileutils.Truncate(pairs[0].First.Content, previewRunes)).
			Str("second", fileutils.Truncate(pairs[0].Second.Content, previewRunes)).
			Msg("first pair")
	}

	if err := fileutils.WriteFileAtomicSameDir(outputPath, opts.FileMode, func(w io.Writer) error {
		return WritePairs(w, pairs, opts.Separator)
	}); err != nil {
		return PairResult{}, fmt.Errorf("BuildTurnPairs: write output: %w", err)
	}
	if opts.JSONLPath != "" {
		if err := fileutils.WriteFileAtomicSameDir(opts.JSONLPath, opts.FileMode, func(w io.Writer) error {
			return WriteFineTuneJSONL(w, pairs, opts.FineTune)
		}); err != nil {
			return PairResult{}, fmt.Errorf("BuildTurnPairs: write jsonl: %w", err)
		}
	}

	res := PairResult{Records: len(records), Turns: len(turns), Pairs: len(pairs)}
	log.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Str("category", string(opts.Category)).
		Dur("max_gap", opts.MaxGap).
		Dur("pair_max_gap", opts.PairMaxGap).
		Int("records", res.Records).
		Int("turns", res.Turns).
		Int("pairs", res.Pairs).
		Msg("turn pairs built")
	return res, nil
}
