package talklog

import (
	"strings"
	"time"
)

// Placeholder tokens used by the display-safe rendering and by merged turns.
const (
	TabToken            = "<tab>"
	LineBreakToken      = "<br>"
	ParagraphBreakToken = "<pbr>"
)

// MessageRecord is one parsed message with everything the records artifact stores about it.
type MessageRecord struct {
	DateHeading string // 2024/01/31(水)
	Year        string
	Month       string
	Day         string
	Weekday     string

	TimeHeading string // 12:34
	Hour        string
	Minute      string

	Sender string

	// Content is the message as written. Records read back from an artifact only have the
	// display-safe rendering, so there Content == DisplayContent.
	Content        string
	DisplayContent string

	Category Category
	Metadata Metadata
	Length   int
}

// Timestamp is the message time at minute resolution. Exports carry no zone; the wall clock
// is interpreted as UTC so differences stay exact.
func (r MessageRecord) Timestamp() time.Time {
	year, month, day := DateBlock{Year: r.Year, Month: r.Month, Day: r.Day}.Date()
	hour, minute := TimeBlock{Hour: r.Hour, Minute: r.Minute}.Clock()
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

// BuildRecord combines a date block, one of its time blocks, and the classification of the
// time block's content.
func BuildRecord(date DateBlock, tb TimeBlock) MessageRecord {
	sender, content := SplitSender(tb.Payload)
	cc := Classify(content)
	return MessageRecord{
		DateHeading:    date.Heading,
		Year:           date.Year,
		Month:          date.Month,
		Day:            date.Day,
		Weekday:        date.Weekday,
		TimeHeading:    tb.Heading,
		Hour:           tb.Hour,
		Minute:         tb.Minute,
		Sender:         sender,
		Content:        content,
		DisplayContent: DisplaySafe(content),
		Category:       cc.Category,
		Metadata:       cc.Metadata,
		Length:         cc.Length,
	}
}

// ParseTranscript turns a whole export into message records, in transcript order.
func ParseTranscript(text string) []MessageRecord {
	var out []MessageRecord
	for _, db := range SplitDateBlocks(text) {
		for _, tb := range SplitTimeBlocks(db) {
			out = append(out, BuildRecord(db, tb))
		}
	}
	return out
}

// DisplaySafe renders content on a single line with no tabs, so it fits one column of a
// tab-separated file.
func DisplaySafe(content string) string {
	content = strings.ReplaceAll(content, "\t", TabToken)
	return strings.Join(splitDisplayLines(content), LineBreakToken)
}

// RestoreDisplay reverses the placeholder tokens of display-safe and merged-turn content.
// Literal token text that was present in the original message is indistinguishable and gets
// converted too.
func RestoreDisplay(s string) string {
	r := strings.NewReplacer(
		ParagraphBreakToken, "\n\n",
		LineBreakToken, "\n",
		TabToken, "\t",
	)
	return r.Replace(s)
}

// splitDisplayLines splits on every line boundary a reader might render as one: LF, CR, CRLF,
// VT, FF, FS/GS/RS, NEL, and the Unicode line/paragraph separators. A trailing terminator does
// not produce an empty last line.
func splitDisplayLines(s string) []string {
	var (
		lines []string
		start int
	)
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '\r':
			lines = append(lines, string(runes[start:i]))
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			start = i + 1
		case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			lines = append(lines, string(runes[start:i]))
			start = i + 1
		}
	}
	if start < len(runes) {
		lines = append(lines, string(runes[start:]))
	}
	return lines
}
