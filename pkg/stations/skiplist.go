package stations

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"

	"github.com/e-radio/stationctl/pkg/errors"
)

// SkipList is the persisted set of station identifiers a maintenance run
// could not resolve. It is consulted at start so repeated invocations don't
// re-query known-unresolvable records, and saved after each failure and on
// interruption.
type SkipList struct {
	ids map[string]struct{}
}

// NewSkipList returns an empty skip-list.
func NewSkipList() *SkipList {
	return &SkipList{ids: map[string]struct{}{}}
}

// LoadSkipList reads a skip-list file. A missing or malformed file is treated
// as empty, never fatal.
func LoadSkipList(path string) *SkipList {
	s := NewSkipList()
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return s
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Contains reports whether the identifier is in the set.
func (s *SkipList) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Add inserts an identifier into the set.
func (s *SkipList) Add(id string) {
	s.ids[id] = struct{}{}
}

// Discard removes an identifier from the set, if present. Used when a
// previously skipped record becomes resolvable.
func (s *SkipList) Discard(id string) {
	delete(s.ids, id)
}

// Len returns the number of identifiers in the set.
func (s *SkipList) Len() int {
	return len(s.ids)
}

// Save writes the set as a sorted JSON array with a trailing newline.
func (s *SkipList) Save(path string) error {
	ids := make([]string, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ids); err != nil {
		return errors.WrapParse("json", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
