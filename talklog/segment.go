package talklog

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// 2024/01/31(水)
	dateHeadingRe = regexp.MustCompile(`^(\d{4})/(\d{2})/(\d{2})\(([月火水木金土日])\)$`)
	// 12:34<TAB>...
	timeHeadingRe = regexp.MustCompile(`^(\d{2}):(\d{2})\t`)
)

// DateBlock is the text between one date heading and the next date boundary.
type DateBlock struct {
	Heading string
	Year    string
	Month   string
	Day     string
	Weekday string

	// Lines holds the raw lines after the heading, up to (not including) the next boundary.
	Lines []string
}

// Date returns the numeric year, month, and day of the heading.
func (b DateBlock) Date() (year, month, day int) {
	year, _ = strconv.Atoi(b.Year)
	month, _ = strconv.Atoi(b.Month)
	day, _ = strconv.Atoi(b.Day)
	return year, month, day
}

// TimeBlock is one message inside a DateBlock: the time heading plus its raw payload.
type TimeBlock struct {
	Heading string
	Hour    string
	Minute  string

	// Payload is everything after the heading's tab, up to the next time heading.
	// It may span several lines and is kept verbatim.
	Payload string
}

// Clock returns the numeric hour and minute of the heading.
func (b TimeBlock) Clock() (hour, minute int) {
	hour, _ = strconv.Atoi(b.Hour)
	minute, _ = strconv.Atoi(b.Minute)
	return hour, minute
}

// SplitDateBlocks cuts a transcript into date blocks.
//
// A line opens a new block only when it is a well-formed date heading AND the line right after it
// is a time heading. Anything else (preamble, malformed or empty-day headings) is either skipped,
// before the first block, or absorbed into the block that is currently open.
func SplitDateBlocks(text string) []DateBlock {
	lines := splitRawLines(text)

	var (
		blocks []DateBlock
		cur    *DateBlock
	)
	for i, line := range lines {
		if isDateBoundary(lines, i) {
			if cur != nil {
				blocks = append(blocks, closeDateBlock(*cur))
			}
			m := dateHeadingRe.FindStringSubmatch(line)
			cur = &DateBlock{
				Heading: line,
				Year:    m[1],
				Month:   m[2],
				Day:     m[3],
				Weekday: m[4],
			}
			continue
		}
		if cur != nil {
			cur.Lines = append(cur.Lines, line)
		}
	}
	if cur != nil {
		blocks = append(blocks, closeDateBlock(*cur))
	}
	return blocks
}

// closeDateBlock drops the blank lines that separate a day from the next heading (or end the
// file). They belong to the layout, not to the day's last message.
func closeDateBlock(b DateBlock) DateBlock {
	n := len(b.Lines)
	for n > 0 && b.Lines[n-1] == "" {
		n--
	}
	b.Lines = b.Lines[:n]
	return b
}

// SplitTimeBlocks cuts a date block into messages on HH:MM<TAB> headings.
// Lines that precede the first heading are dropped; SplitDateBlocks never produces any.
func SplitTimeBlocks(block DateBlock) []TimeBlock {
	var (
		out     []TimeBlock
		cur     *TimeBlock
		payload []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Payload = strings.Join(payload, "\n")
		out = append(out, *cur)
	}

	for _, line := range block.Lines {
		m := timeHeadingRe.FindStringSubmatchIndex(line)
		if m == nil {
			if cur != nil {
				payload = append(payload, line)
			}
			continue
		}
		flush()
		cur = &TimeBlock{
			Heading: line[m[2]:m[5]],
			Hour:    line[m[2]:m[3]],
			Minute:  line[m[4]:m[5]],
		}
		payload = append(payload[:0:0], line[m[1]:])
	}
	flush()
	return out
}

func isDateBoundary(lines []string, i int) bool {
	if i+1 >= len(lines) {
		return false
	}
	return dateHeadingRe.MatchString(lines[i]) && timeHeadingRe.MatchString(lines[i+1])
}

// splitRawLines normalizes CRLF/CR line endings and splits on LF.
// Unlike splitDisplayLines it keeps a trailing empty line, so payloads round-trip verbatim.
func splitRawLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
