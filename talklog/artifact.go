package talklog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
)

// DefaultSeparator is the field delimiter of both artifacts.
const DefaultSeparator = '\t'

// PairTimestampLayout formats turn timestamps in the pairs artifact.
const PairTimestampLayout = "2006-01-02 15:04:05"

// RecordColumns is the fixed column order of the records artifact.
var RecordColumns = []string{
	"datestr", "timestr", "name", "content", "send_type",
	"year", "month", "day", "weekday", "hour", "minute", "length",
	"param0_key", "param0_val", "param1_key", "param1_val",
}

// PairColumns is the column order of the pairs artifact.
var PairColumns = []string{
	"name", "timestamp", "content", "next_name", "next_timestamp", "next_content",
}

// requiredRecordColumns are the columns ReadRecords cannot do without.
var requiredRecordColumns = []string{"name", "content", "send_type", "year", "month", "day", "hour", "minute"}

// WriteRecords writes the records artifact (header row included), tab separated. The content
// column holds the display-safe rendering.
func WriteRecords(w io.Writer, records []MessageRecord) error {
	cw := csv.NewWriter(w)
	cw.Comma = DefaultSeparator
	if err := cw.Write(RecordColumns); err != nil {
		return fmt.Errorf("WriteRecords: header: %w", err)
	}
	for i, r := range records {
		md := r.Metadata
		if md == nil {
			md = NoMetadata{}
		}
		slots := md.Slots()
		row := []string{
			r.DateHeading, r.TimeHeading, r.Sender, r.DisplayContent, string(r.Category),
			r.Year, r.Month, r.Day, r.Weekday, r.Hour, r.Minute, strconv.Itoa(r.Length),
			slots[0].Key, slots[0].Value, slots[1].Key, slots[1].Value,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("WriteRecords: record %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteRecords: flush: %w", err)
	}
	return nil
}

// ReadRecords parses a records artifact. Columns are located by header name, so extra or
// reordered columns are accepted. The display-safe content becomes both Content and
// DisplayContent of the returned records.
func ReadRecords(r io.Reader, sep rune) ([]MessageRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = sep
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("ReadRecords: empty input (missing header row)")
		}
		return nil, fmt.Errorf("ReadRecords: header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[h] = i
	}
	for _, name := range requiredRecordColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("ReadRecords: missing column %q", name)
		}
	}
	get := func(row []string, name string) string {
		i, ok := col[name]
		if !ok {
			return ""
		}
		return row[i]
	}

	var out []MessageRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ReadRecords: %w", err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := recordFromRow(row, get)
		if err != nil {
			return nil, fmt.Errorf("ReadRecords: line %d: %w", line, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func recordFromRow(row []string, get func([]string, string) string) (MessageRecord, error) {
	for _, name := range []string{"year", "month", "day", "hour", "minute"} {
		if _, err := strconv.Atoi(get(row, name)); err != nil {
			return MessageRecord{}, fmt.Errorf("column %s: %w", name, err)
		}
	}

	cat, err := ParseCategory(get(row, "send_type"))
	if err != nil {
		return MessageRecord{}, err
	}
	md, err := ParseMetadata(cat, [2]MetadataSlot{
		{Key: get(row, "param0_key"), Value: get(row, "param0_val")},
		{Key: get(row, "param1_key"), Value: get(row, "param1_val")},
	})
	if err != nil {
		return MessageRecord{}, err
	}

	content := get(row, "content")
	length := utf8.RuneCountInString(content)
	if s := get(row, "length"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return MessageRecord{}, fmt.Errorf("column length: %w", err)
		}
		length = n
	}

	return MessageRecord{
		DateHeading:    get(row, "datestr"),
		Year:           get(row, "year"),
		Month:          get(row, "month"),
		Day:            get(row, "day"),
		Weekday:        get(row, "weekday"),
		TimeHeading:    get(row, "timestr"),
		Hour:           get(row, "hour"),
		Minute:         get(row, "minute"),
		Sender:         get(row, "name"),
		Content:        content,
		DisplayContent: content,
		Category:       cat,
		Metadata:       md,
		Length:         length,
	}, nil
}

// WritePairs writes the pairs artifact (header row included) with the given separator.
func WritePairs(w io.Writer, pairs []TurnPair, sep rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = sep
	if err := cw.Write(PairColumns); err != nil {
		return fmt.Errorf("WritePairs: header: %w", err)
	}
	for i, p := range pairs {
		row := PairRowFrom(p)
		if err := cw.Write([]string{
			row.Sender, row.Timestamp, row.Content,
			row.NextSender, row.NextTimestamp, row.NextContent,
		}); err != nil {
			return fmt.Errorf("WritePairs: pair %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WritePairs: flush: %w", err)
	}
	return nil
}

// PairRow is the flat rendering of a TurnPair used by the pairs artifact.
type PairRow struct {
	Sender        string `json:"name" jsonschema:"description=Sender of the prompt turn"`
	Timestamp     string `json:"timestamp" jsonschema:"description=Start of the prompt turn (YYYY-MM-DD hh:mm:ss)"`
	Content       string `json:"content" jsonschema:"description=Prompt turn content; messages joined with <pbr>"`
	NextSender    string `json:"next_name" jsonschema:"description=Sender of the response turn"`
	NextTimestamp string `json:"next_timestamp" jsonschema:"description=Start of the response turn (YYYY-MM-DD hh:mm:ss)"`
	NextContent   string `json:"next_content" jsonschema:"description=Response turn content; messages joined with <pbr>"`
}

// PairRowFrom flattens a pair.
func PairRowFrom(p TurnPair) PairRow {
	return PairRow{
		Sender:        p.First.Sender,
		Timestamp:     p.First.Start.Format(PairTimestampLayout),
		Content:       p.First.Content,
		NextSender:    p.Second.Sender,
		NextTimestamp: p.Second.Start.Format(PairTimestampLayout),
		NextContent:   p.Second.Content,
	}
}

// ParseSeparator validates a -sep style argument: exactly one character that can delimit fields.
func ParseSeparator(s string) (rune, error) {
	if s == `\t` {
		return '\t', nil
	}
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("separator must be a single character, got %q", s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("invalid separator %q", s)
	}
	return r, nil
}
