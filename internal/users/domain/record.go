package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Field names with meaning to the profile and settings views.
const (
	FieldSetupCompleted   = "setup_completed"
	FieldName             = "name"
	FieldUsername         = "username"
	FieldAge              = "age"
	FieldCity             = "city"
	FieldRegistrationDate = "registration_date"
	FieldTotalReports     = "total_reports"
	FieldActiveReports    = "active_reports"
	FieldResolvedReports  = "resolved_reports"
	FieldStreamingEnabled = "streaming_enabled"
	FieldUpdatesEnabled   = "updates_enabled"
	FieldChangesEnabled   = "changes_enabled"
	FieldPromoEnabled     = "promo_enabled"
)

// Record is a single user's entry in the store.
// Fields keep their insertion order and their raw JSON encoding, so fields
// this service knows nothing about survive a load/save cycle untouched.
//
// An entry that is not a JSON object is kept as an opaque value: it is
// written back unchanged, but cannot be read or updated.
type Record struct {
	fields *orderedmap.OrderedMap[string, json.RawMessage]
	opaque json.RawMessage
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{fields: orderedmap.New[string, json.RawMessage]()}
}

// Valid reports whether the record is a JSON object.
func (r *Record) Valid() bool {
	return r != nil && r.opaque == nil
}

// Get returns the raw JSON value of a field.
func (r *Record) Get(field string) (json.RawMessage, bool) {
	if r == nil || r.fields == nil {
		return nil, false
	}
	return r.fields.Get(field)
}

// Set stores value under field, replacing any previous value in place.
// New fields are appended after the existing ones.
func (r *Record) Set(field string, value any) error {
	if r.opaque != nil {
		return ErrRecordInvalid
	}
	raw, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("encode field %q: %w", field, err)
	}
	if r.fields == nil {
		r.fields = orderedmap.New[string, json.RawMessage]()
	}
	r.fields.Set(field, raw)
	return nil
}

// Bool reports the boolean value of a field, or def when the field is
// missing or holds something other than a JSON boolean.
func (r *Record) Bool(field string, def bool) bool {
	raw, ok := r.Get(field)
	if !ok {
		return def
	}
	var b *bool
	if err := json.Unmarshal(raw, &b); err != nil || b == nil {
		return def
	}
	return *b
}

// Fields returns field names in insertion order.
func (r *Record) Fields() []string {
	if r == nil || r.fields == nil {
		return nil
	}
	names := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of fields.
func (r *Record) Len() int {
	if r == nil || r.fields == nil {
		return 0
	}
	return r.fields.Len()
}

// MarshalJSON encodes the record as a JSON object in field order. Stored
// values are written byte for byte.
func (r *Record) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("{}"), nil
	}
	if r.opaque != nil {
		return r.opaque, nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	if r.fields != nil {
		first := true
		for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			key, err := encodeValue(pair.Key)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(pair.Value)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the record.
func (r *Record) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return fmt.Errorf("%w: record is not a JSON object", ErrStoreCorrupt)
	}
	fields := orderedmap.New[string, json.RawMessage]()
	if err := fields.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	for pair := fields.Oldest(); pair != nil; pair = pair.Next() {
		var buf bytes.Buffer
		if err := json.Compact(&buf, pair.Value); err != nil {
			return fmt.Errorf("%w: field %q: %v", ErrStoreCorrupt, pair.Key, err)
		}
		pair.Value = buf.Bytes()
	}
	r.fields = fields
	r.opaque = nil
	return nil
}

func opaqueRecord(raw json.RawMessage) (*Record, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}
	return &Record{opaque: buf.Bytes()}, nil
}

// encodeValue produces compact JSON without HTML escaping, so stored text
// stays readable in the file.
func encodeValue(value any) (json.RawMessage, error) {
	if raw, ok := value.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("invalid raw JSON value")
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func isObject(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}
