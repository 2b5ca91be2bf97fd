package talklog

import (
	"strings"
	"time"
)

// DefaultMaxGap is the default gap threshold for both turn merging and turn pairing.
const DefaultMaxGap = 30 * time.Minute

// Turn is one or more consecutive messages from the same sender, merged into a single unit.
type Turn struct {
	Sender   string
	Start    time.Time
	Content  string
	Category Category

	// Messages is the number of records folded into the turn.
	Messages int
}

// Aggregator merges consecutive same-sender messages of one category into turns.
type Aggregator struct {
	// Category is the only category that is ever merged. Defaults to text.
	Category Category
	// MaxGap is the exclusive upper bound on the time since the previously merged message.
	// Defaults to DefaultMaxGap.
	MaxGap time.Duration
}

// AggregateState is the fold state threaded through Aggregator.Step.
type AggregateState struct {
	open       *Turn
	lastMerged time.Time
	done       []Turn
}

// Open returns the turn currently being extended, if any.
func (s AggregateState) Open() (Turn, bool) {
	if s.open == nil {
		return Turn{}, false
	}
	return *s.open, true
}

// Closed returns the turns emitted so far.
func (s AggregateState) Closed() []Turn { return s.done }

func (a Aggregator) withDefaults() Aggregator {
	if a.Category == "" {
		a.Category = CategoryText
	}
	if a.MaxGap <= 0 {
		a.MaxGap = DefaultMaxGap
	}
	return a
}

// Step folds one record into the state and returns the next state. States share their closed
// turns, so a given state should be stepped at most once.
func (a Aggregator) Step(st AggregateState, rec MessageRecord) AggregateState {
	a = a.withDefaults()
	ts := rec.Timestamp()

	if st.open != nil && a.mergeable(*st.open, st.lastMerged, rec, ts) {
		merged := *st.open
		merged.Content = merged.Content + ParagraphBreakToken + rec.Content
		merged.Messages++
		return AggregateState{open: &merged, lastMerged: ts, done: st.done}
	}

	done := st.done
	if st.open != nil {
		done = append(done, *st.open)
	}
	return AggregateState{
		open: &Turn{
			Sender:   rec.Sender,
			Start:    ts,
			Content:  rec.Content,
			Category: rec.Category,
			Messages: 1,
		},
		lastMerged: ts,
		done:       done,
	}
}

func (a Aggregator) mergeable(open Turn, lastMerged time.Time, rec MessageRecord, ts time.Time) bool {
	return rec.Sender == open.Sender &&
		rec.Category == a.Category &&
		open.Category == a.Category &&
		ts.Sub(lastMerged) < a.MaxGap
}

// Finish emits the still-open turn and returns every turn in stream order.
func (a Aggregator) Finish(st AggregateState) []Turn {
	if st.open == nil {
		return st.done
	}
	return append(st.done, *st.open)
}

// Aggregate runs the fold over a whole ordered record stream.
func (a Aggregator) Aggregate(records []MessageRecord) []Turn {
	var st AggregateState
	for _, rec := range records {
		st = a.Step(st, rec)
	}
	return a.Finish(st)
}

// ContentLength is the rune length of a turn's content without its paragraph-break markers.
func (t Turn) ContentLength() int {
	return len([]rune(strings.ReplaceAll(t.Content, ParagraphBreakToken, "")))
}
