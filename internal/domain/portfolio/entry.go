package portfolio

import (
	"encoding/json"
	"sync"
	"time"
)

// Entry is one record inside a collection: a numeric id plus free-form
// type-specific fields (title, description, dates, an optional embedded
// image, an optional external URL). The id is immutable once assigned;
// every other field is replaceable on edit.
type Entry map[string]any

// ID extracts the numeric entry id. JSON decoding turns numbers into
// float64, so both representations are accepted. Entry ids are millisecond
// timestamps, well within float64's exact-integer range.
func (e Entry) ID() (int64, bool) {
	switch v := e["id"].(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case json.Number:
		id, err := v.Int64()
		return id, err == nil
	}
	return 0, false
}

// Merge returns the superset of the receiver's fields overlaid with the
// incoming ones. The id always survives from the original record.
func (e Entry) Merge(fields map[string]any) Entry {
	out := make(Entry, len(e)+len(fields))
	for k, v := range e {
		out[k] = v
	}
	for k, v := range fields {
		if k == "id" {
			continue
		}
		out[k] = v
	}
	return out
}

// IDGenerator issues monotonically increasing millisecond ids. Two entries
// created within the same millisecond still get distinct ids, which the
// wall-clock-only scheme could not guarantee.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= g.last {
		now = g.last + 1
	}
	g.last = now
	return now
}
