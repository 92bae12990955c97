package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// LocalTimeLayout is accepted for timestamps sent without a zone offset,
// e.g. "2025-01-01T10:00:00". Such values are taken as UTC.
const LocalTimeLayout = "2006-01-02T15:04:05"

// Timestamp is a time.Time whose JSON form tolerates a missing zone offset.
//
// time.Time only unmarshals RFC 3339, but browser forms (datetime-local
// inputs) send values without an offset. Timestamp accepts both and always
// marshals RFC 3339 in UTC. JSON null leaves the zero value, which the
// service layer rejects for required times.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, normalised to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339))
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		ts.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	if s == "" {
		ts.Time = time.Time{}
		return nil
	}

	for _, layout := range []string{time.RFC3339Nano, LocalTimeLayout, "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q: use RFC 3339 or %s", s, LocalTimeLayout)
}
