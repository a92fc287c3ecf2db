package sqlutil

import (
	"encoding/json"
	"time"

	"github.com/sqlc-dev/pqtype"
)

// Helper functions for converting between Go values and nullable column types

// ToNullRawMessage marshals v for a JSONB column. A nil v is stored as NULL.
func ToNullRawMessage(v interface{}) (pqtype.NullRawMessage, error) {
	if v == nil {
		return pqtype.NullRawMessage{Valid: false}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return pqtype.NullRawMessage{}, err
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}, nil
}

// FromNullRawMessage unmarshals a JSONB column into dst. NULL leaves dst untouched.
func FromNullRawMessage(val pqtype.NullRawMessage, dst interface{}) error {
	if !val.Valid || len(val.RawMessage) == 0 {
		return nil
	}
	return json.Unmarshal(val.RawMessage, dst)
}

// ToSeconds converts a duration to whole seconds for INTEGER columns
func ToSeconds(d time.Duration) int {
	return int(d / time.Second)
}

// FromSeconds converts an INTEGER seconds column to a duration
func FromSeconds(sec int) time.Duration {
	return time.Duration(sec) * time.Second
}
