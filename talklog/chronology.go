package talklog

import (
	"fmt"
	"time"
)

// OrderViolation marks a record whose timestamp is earlier than the one before it.
type OrderViolation struct {
	// Index of the offending record in the checked slice.
	Index    int
	Previous time.Time
	Current  time.Time
}

func (v OrderViolation) String() string {
	return fmt.Sprintf("record %d at %s precedes previous record at %s",
		v.Index, v.Current.Format(PairTimestampLayout), v.Previous.Format(PairTimestampLayout))
}

// CheckChronology reports every place where the record stream goes back in time.
// Turn merging and pairing assume a non-decreasing stream, so these points produce unreliable
// turn boundaries.
func CheckChronology(records []MessageRecord) []OrderViolation {
	var out []OrderViolation
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1].Timestamp(), records[i].Timestamp()
		if cur.Before(prev) {
			out = append(out, OrderViolation{Index: i, Previous: prev, Current: cur})
		}
	}
	return out
}
