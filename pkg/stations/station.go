// Package stations provides the station dataset codec shared by all
// maintenance commands: the station record, whole-file load/save, and the
// persisted skip-list used for cross-run progress.
package stations

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

// Station is one record of the station dataset. Only the fields the
// maintenance tools touch are modeled; every other key of the source object
// is carried in an opaque field map and written back untouched, so a full
// dataset rewrite never destroys data the tools don't understand.
type Station struct {
	UUID      string
	Name      string
	Slug      string
	State     string
	City      string
	GeoLat    Coordinate
	GeoLong   Coordinate
	Homepage  string
	StreamURL string
	Favicon   string

	// raw holds the original JSON for every key of the record, including
	// the modeled ones, and keys their original document order. MarshalJSON
	// starts from them and overlays only the fields these tools mutate, so
	// a rewrite never reorders a record.
	raw  map[string]json.RawMessage
	keys []string
}

// modeled keys, in the order they are decoded
const (
	keyUUID      = "stationuuid"
	keyName      = "name"
	keySlug      = "slug"
	keyState     = "state"
	keyCity      = "city"
	keyGeoLat    = "geo_lat"
	keyGeoLong   = "geo_long"
	keyHomepage  = "homepage"
	keyStreamURL = "stream_url"
	keyFavicon   = "favicon"
)

// UnmarshalJSON decodes the modeled fields leniently (null and missing both
// read as empty) and retains the raw object for round-tripping.
func (s *Station) UnmarshalJSON(data []byte) error {
	raw := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.raw = raw
	s.keys = objectKeyOrder(data)

	s.UUID = rawString(raw[keyUUID])
	s.Name = rawString(raw[keyName])
	s.Slug = rawString(raw[keySlug])
	s.State = rawString(raw[keyState])
	s.City = rawString(raw[keyCity])
	s.Homepage = rawString(raw[keyHomepage])
	s.StreamURL = rawString(raw[keyStreamURL])
	s.Favicon = rawString(raw[keyFavicon])

	s.GeoLat = Coordinate{raw: raw[keyGeoLat]}
	s.GeoLong = Coordinate{raw: raw[keyGeoLong]}
	return nil
}

// MarshalJSON re-encodes the original object, keys in their original order,
// with the mutable fields (state, city) overlaid in place. A mutable field is
// added to a record that never had it only when it now carries a value, and
// lands at the end.
func (s *Station) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(s.raw)+2)
	order := make([]string, 0, len(s.raw)+2)
	set := func(key string, value json.RawMessage) {
		if _, exists := out[key]; !exists {
			order = append(order, key)
		}
		out[key] = value
	}

	for _, key := range s.keys {
		set(key, s.raw[key])
	}
	if len(out) != len(s.raw) {
		// Keys the order scan missed (duplicates in the source object)
		// still round-trip, appended in stable order.
		rest := make([]string, 0, len(s.raw)-len(out))
		for key := range s.raw {
			if _, exists := out[key]; !exists {
				rest = append(rest, key)
			}
		}
		sort.Strings(rest)
		for _, key := range rest {
			set(key, s.raw[key])
		}
	}

	if s.raw == nil {
		// Record built in code rather than decoded from the dataset.
		setString := func(key, value string) {
			if value == "" {
				return
			}
			encoded, _ := json.Marshal(value)
			set(key, encoded)
		}
		setString(keyUUID, s.UUID)
		setString(keyName, s.Name)
		setString(keySlug, s.Slug)
		setString(keyHomepage, s.Homepage)
		setString(keyStreamURL, s.StreamURL)
		setString(keyFavicon, s.Favicon)
		if s.GeoLat.raw != nil {
			set(keyGeoLat, s.GeoLat.raw)
		}
		if s.GeoLong.raw != nil {
			set(keyGeoLong, s.GeoLong.raw)
		}
	}

	overlay := func(key, value string) {
		if _, exists := out[key]; !exists && value == "" {
			return
		}
		encoded, _ := json.Marshal(value)
		set(key, encoded)
	}
	overlay(keyState, s.State)
	overlay(keyCity, s.City)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(out[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// HasState reports whether the record carries a resolved state value.
func (s *Station) HasState() bool {
	return strings.TrimSpace(s.State) != ""
}

// HasCoordinates reports whether both coordinates are present and non-blank.
func (s *Station) HasCoordinates() bool {
	return s.GeoLat.IsSet() && s.GeoLong.IsSet()
}

// rawString decodes a raw JSON value as a string; null, missing, or
// non-string values read as "".
func rawString(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// objectKeyOrder returns the top-level keys of a JSON object in document
// order; for a duplicated key the first occurrence keeps its position.
func objectKeyOrder(data []byte) []string {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Token(json.Delim('{')) {
		return nil
	}
	var keys []string
	seen := map[string]struct{}{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return keys
		}
		key, ok := tok.(string)
		if !ok {
			return keys
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return keys
		}
		if _, dup := seen[key]; !dup {
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
	}
	return keys
}

// Coordinate is a latitude or longitude as stored in the dataset, which mixes
// JSON numbers, numeric strings, nulls, and absent keys. The original
// encoding is kept verbatim for round-tripping.
type Coordinate struct {
	raw json.RawMessage
}

// UnmarshalJSON keeps the raw encoding.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	c.raw = append(c.raw[:0], data...)
	return nil
}

// MarshalJSON writes the original encoding back, or null when unset.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	if len(c.raw) == 0 {
		return []byte("null"), nil
	}
	return c.raw, nil
}

// IsSet reports whether the coordinate holds a usable value. Absent keys,
// nulls, and blank strings all count as unset.
func (c Coordinate) IsSet() bool {
	if len(c.raw) == 0 || bytes.Equal(c.raw, []byte("null")) {
		return false
	}
	var s string
	if err := json.Unmarshal(c.raw, &s); err == nil {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Float returns the coordinate as a float64.
func (c Coordinate) Float() (float64, error) {
	var n float64
	if err := json.Unmarshal(c.raw, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(c.raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// String renders the coordinate for log lines.
func (c Coordinate) String() string {
	if !c.IsSet() {
		return ""
	}
	var s string
	if err := json.Unmarshal(c.raw, &s); err == nil {
		return s
	}
	return string(c.raw)
}
