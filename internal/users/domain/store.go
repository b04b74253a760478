package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Store maps user IDs to records, in file order.
type Store struct {
	records *orderedmap.OrderedMap[string, *Record]
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{records: orderedmap.New[string, *Record]()}
}

// ParseStore decodes a store document. The document must be a JSON object.
// Entries that are not objects are kept opaque and only affect their own user.
func ParseStore(data []byte) (*Store, error) {
	s := NewStore()
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return s, nil
}

// Get looks up a record by exact user ID.
func (s *Store) Get(userID string) (*Record, bool) {
	return s.records.Get(userID)
}

// Ensure returns the record for userID, appending an empty one if absent.
func (s *Store) Ensure(userID string) *Record {
	if rec, ok := s.records.Get(userID); ok {
		return rec
	}
	rec := NewRecord()
	s.records.Set(userID, rec)
	return rec
}

// IDs returns user IDs in file order.
func (s *Store) IDs() []string {
	ids := make([]string, 0, s.records.Len())
	for pair := s.records.Oldest(); pair != nil; pair = pair.Next() {
		ids = append(ids, pair.Key)
	}
	return ids
}

// Len returns the number of records.
func (s *Store) Len() int {
	return s.records.Len()
}

// MarshalJSON encodes the store as a JSON object in file order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for pair := s.records.Oldest(); pair != nil; pair = pair.Next() {
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

		rec, err := pair.Value.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("encode record %q: %w", pair.Key, err)
		}
		buf.Write(rec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIndent encodes the store with two-space indentation.
func (s *Store) MarshalIndent() ([]byte, error) {
	data, err := s.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// UnmarshalJSON decodes a store document, replacing the current contents.
func (s *Store) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		return fmt.Errorf("%w: document is not a JSON object", ErrStoreCorrupt)
	}

	raw := orderedmap.New[string, json.RawMessage]()
	if err := raw.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreCorrupt, err)
	}

	records := orderedmap.New[string, *Record](raw.Len())
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		var (
			rec = NewRecord()
			err error
		)
		if isObject(pair.Value) {
			err = rec.UnmarshalJSON(pair.Value)
		} else {
			rec, err = opaqueRecord(pair.Value)
		}
		if err != nil {
			return fmt.Errorf("user %q: %w", pair.Key, err)
		}
		records.Set(pair.Key, rec)
	}
	s.records = records
	return nil
}
