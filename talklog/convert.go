package talklog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/theimaginaryfoundation/talklog-tuner/talklog/fileutils"
)

// ConvertOptions controls ConvertTranscript.
type ConvertOptions struct {
	// OverwriteExisting controls whether an existing output file may be replaced.
	OverwriteExisting bool

	// StrictOrder turns out-of-order timestamps into an error instead of a warning.
	StrictOrder bool

	// FileMode is used when creating the output file (defaults to 0o644).
	FileMode fs.FileMode

	// Logger receives progress and warnings. Nil discards them.
	Logger *zerolog.Logger
}

// ConvertResult contains basic stats from a convert run.
type ConvertResult struct {
	DateBlocks      int
	Records         int
	OrderViolations int
	ByCategory      map[Category]int
}

// ErrOutOfOrder is returned by ConvertTranscript in strict mode when timestamps go backwards.
var ErrOutOfOrder = errors.New("transcript timestamps are not in chronological order")

// ConvertTranscript reads a chat export and writes the message records artifact.
func ConvertTranscript(ctx context.Context, inputPath, outputPath string, opts ConvertOptions) (ConvertResult, error) {
	if ctx == nil {
		return ConvertResult{}, errors.New("ConvertTranscript: ctx is nil")
	}
	if inputPath == "" {
		return ConvertResult{}, errors.New("ConvertTranscript: inputPath is empty")
	}
	if outputPath == "" {
		return ConvertResult{}, errors.New("ConvertTranscript: outputPath is empty")
	}
	if opts.FileMode == 0 {
		opts.FileMode = 0o644
	}
	log := loggerOrNop(opts.Logger)

	if err := fileutils.EnsureWritable(outputPath, opts.OverwriteExisting); err != nil {
		return ConvertResult{}, fmt.Errorf("ConvertTranscript: %w", err)
	}

	b, err := os.ReadFile(inputPath)
	if err != nil {
		return ConvertResult{}, fmt.Errorf("ConvertTranscript: read input: %w", err)
	}

	res := ConvertResult{ByCategory: make(map[Category]int)}
	var records []MessageRecord
	for _, db := range SplitDateBlocks(string(b)) {
		select {
		case <-ctx.Done():
			return ConvertResult{}, ctx.Err()
		default:
		}

		res.DateBlocks++
		for _, tb := range SplitTimeBlocks(db) {
			rec := BuildRecord(db, tb)
			res.ByCategory[rec.Category]++
			records = append(records, rec)
		}
		log.Debug().Str("date", db.Heading).Int("records_total", len(records)).Msg("date block parsed")
	}
	res.Records = len(records)

	violations := CheckChronology(records)
	res.OrderViolations = len(violations)
	for _, v := range violations {
		log.Warn().
			Int("record", v.Index).
			Time("previous", v.Previous).
			Time("current", v.Current).
			Msg("timestamp goes backwards; turn boundaries around it are unreliable")
	}
	if opts.StrictOrder && len(violations) > 0 {
		return res, fmt.Errorf("ConvertTranscript: %w (%d violations, first: %s)", ErrOutOfOrder, len(violations), violations[0])
	}

	if err := fileutils.WriteFileAtomicSameDir(outputPath, opts.FileMode, func(w io.Writer) error {
		return WriteRecords(w, records)
	}); err != nil {
		return ConvertResult{}, fmt.Errorf("ConvertTranscript: write output: %w", err)
	}

	log.Info().
		Str("input", inputPath).
		Str("output", outputPath).
		Int("date_blocks", res.DateBlocks).
		Int("records", res.Records).
		Msg("transcript converted")
	return res, nil
}

func loggerOrNop(l *zerolog.Logger) *zerolog.Logger {
	if l == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return l
}
