package regions

import (
	"encoding/json"
	"os"
	"strings"
)

// CityMap maps normalized city names to canonical region names. It is loaded
// from a read-only JSON object file maintained by hand.
type CityMap map[string]string

// LoadCityMap reads the city→region map. A missing or malformed file behaves
// as an empty map (every lookup misses), never an error. Keys are normalized
// on load; non-string entries are dropped.
func LoadCityMap(path string) CityMap {
	m := CityMap{}
	data, err := os.ReadFile(path)
	if err != nil {
		return m
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return m
	}
	for city, region := range payload {
		name, ok := region.(string)
		if !ok {
			continue
		}
		key := Normalize(city)
		if key == "" {
			continue
		}
		m[key] = strings.TrimSpace(name)
	}
	return m
}

// Lookup resolves a raw city value through normalization.
func (m CityMap) Lookup(city string) (string, bool) {
	region, ok := m[Normalize(city)]
	return region, ok
}
