package talklog

import (
	"fmt"
	"strconv"
)

// Metadata is the category-specific detail of a message. It is one of NoMetadata,
// CallMetadata, or URLMetadata.
type Metadata interface {
	// Slots renders the metadata into the two generic key/value columns of the records artifact.
	Slots() [2]MetadataSlot

	isMetadata()
}

// MetadataSlot is one param<N>_key/param<N>_val column pair. Empty slots have an empty key.
type MetadataSlot struct {
	Key   string
	Value string
}

const (
	slotCallSeconds    = "call_seconds"
	slotURLCount       = "url_count"
	slotAdjustedLength = "url_adjusted_length"
)

// NoMetadata is carried by categories without details (stickers, photos, ...).
type NoMetadata struct{}

func (NoMetadata) Slots() [2]MetadataSlot { return [2]MetadataSlot{} }
func (NoMetadata) isMetadata()            {}

// CallMetadata is carried by call-start messages.
type CallMetadata struct {
	Seconds int
}

func (m CallMetadata) Slots() [2]MetadataSlot {
	return [2]MetadataSlot{{Key: slotCallSeconds, Value: strconv.Itoa(m.Seconds)}}
}
func (CallMetadata) isMetadata() {}

// URLMetadata is carried by text messages.
type URLMetadata struct {
	Count int
	// AdjustedLength counts each URL as one character.
	AdjustedLength int
}

func (m URLMetadata) Slots() [2]MetadataSlot {
	return [2]MetadataSlot{
		{Key: slotURLCount, Value: strconv.Itoa(m.Count)},
		{Key: slotAdjustedLength, Value: strconv.Itoa(m.AdjustedLength)},
	}
}
func (URLMetadata) isMetadata() {}

// ParseMetadata rebuilds the typed metadata of a category from artifact slots.
// Slots that do not belong to the category are ignored.
func ParseMetadata(cat Category, slots [2]MetadataSlot) (Metadata, error) {
	lookup := func(key string) (int, bool, error) {
		for _, s := range slots {
			if s.Key != key {
				continue
			}
			n, err := strconv.Atoi(s.Value)
			if err != nil {
				return 0, true, fmt.Errorf("metadata %s: %w", key, err)
			}
			return n, true, nil
		}
		return 0, false, nil
	}

	switch cat {
	case CategoryCallStart:
		secs, ok, err := lookup(slotCallSeconds)
		if err != nil {
			return nil, err
		}
		if !ok {
			return NoMetadata{}, nil
		}
		return CallMetadata{Seconds: secs}, nil
	case CategoryText:
		count, okCount, err := lookup(slotURLCount)
		if err != nil {
			return nil, err
		}
		adjusted, okLen, err := lookup(slotAdjustedLength)
		if err != nil {
			return nil, err
		}
		if !okCount && !okLen {
			return NoMetadata{}, nil
		}
		return URLMetadata{Count: count, AdjustedLength: adjusted}, nil
	default:
		return NoMetadata{}, nil
	}
}
