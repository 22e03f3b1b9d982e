package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref is a foreign key that the backend sends either as a bare id or as the
// embedded record. Exactly one of the two forms is held: Expanded != nil means
// the record was embedded, otherwise ID is the reference (empty when absent).
type Ref[T any] struct {
	ID       string
	Expanded *T
}

// RefTo builds a reference by id
func RefTo[T any](id string) Ref[T] {
	return Ref[T]{ID: id}
}

// Expand builds a reference carrying the embedded record
func Expand[T any](id string, record *T) Ref[T] {
	return Ref[T]{ID: id, Expanded: record}
}

// IsZero reports whether the reference points at nothing
func (r Ref[T]) IsZero() bool {
	return r.ID == "" && r.Expanded == nil
}

// IsExpanded reports whether the embedded record is available
func (r Ref[T]) IsExpanded() bool {
	return r.Expanded != nil
}

// Resolve returns the embedded record, or the result of lookup for a bare id.
// lookup may be nil, in which case only embedded records resolve.
func (r Ref[T]) Resolve(lookup func(id string) *T) *T {
	if r.Expanded != nil {
		return r.Expanded
	}
	if r.ID == "" || lookup == nil {
		return nil
	}
	return lookup(r.ID)
}

// MarshalJSON writes the embedded record when present, the id otherwise
func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Expanded != nil {
		return json.Marshal(r.Expanded)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}

// UnmarshalJSON accepts null, a string id or an embedded object
func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*r = Ref[T]{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	switch data[0] {
	case '"':
		return json.Unmarshal(data, &r.ID)
	case '{':
		var probe struct {
			ID      string `json:"id"`
			MongoID string `json:"_id"`
		}
		if err := json.Unmarshal(data, &probe); err != nil {
			return fmt.Errorf("decode reference id: %w", err)
		}
		var record T
		if err := json.Unmarshal(data, &record); err != nil {
			return fmt.Errorf("decode embedded reference: %w", err)
		}
		r.ID = probe.ID
		if r.ID == "" {
			r.ID = probe.MongoID
		}
		r.Expanded = &record
		return nil
	default:
		return fmt.Errorf("reference must be a string, an object or null, got %s", data)
	}
}
