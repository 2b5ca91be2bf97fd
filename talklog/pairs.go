package talklog

import "time"

// TurnPair is two adjacent turns from different senders: a candidate prompt/response example.
type TurnPair struct {
	First  Turn
	Second Turn
}

// PairExtractor selects adjacent turn pairs.
type PairExtractor struct {
	// Category both turns must have. Defaults to text.
	Category Category
	// MaxGap is the inclusive upper bound on Second.Start - First.Start. Defaults to DefaultMaxGap.
	MaxGap time.Duration
}

// ExtractPairs returns every qualifying (turns[i], turns[i+1]) in order. A turn may be the
// second half of one pair and the first half of the next.
func (p PairExtractor) ExtractPairs(turns []Turn) []TurnPair {
	if p.Category == "" {
		p.Category = CategoryText
	}
	if p.MaxGap <= 0 {
		p.MaxGap = DefaultMaxGap
	}

	var out []TurnPair
	for i := 0; i+1 < len(turns); i++ {
		cur, next := turns[i], turns[i+1]
		if cur.Category != p.Category || next.Category != p.Category {
			continue
		}
		if cur.Sender == next.Sender {
			continue
		}
		if next.Start.Sub(cur.Start) > p.MaxGap {
			continue
		}
		out = append(out, TurnPair{First: cur, Second: next})
	}
	return out
}
