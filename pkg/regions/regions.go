// Package regions knows the 13 canonical top-level administrative regions of
// Greece, their known name variants, and the text normalization used to match
// free-form address values against them.
package regions

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

//go:embed regions.yaml
var regionsYAML []byte

// Region is one canonical region with its known name variants.
type Region struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

type regionTable struct {
	Regions []Region `yaml:"regions"`
}

var (
	all       []Region
	canonical map[string]struct{}
)

func init() {
	var table regionTable
	if err := yaml.Unmarshal(regionsYAML, &table); err != nil {
		panic(fmt.Sprintf("regions: embedded table is invalid: %v", err))
	}
	all = table.Regions
	canonical = make(map[string]struct{}, len(all))
	for _, r := range all {
		canonical[r.Name] = struct{}{}
	}
}

// All returns the canonical regions in table order.
func All() []Region {
	return all
}

// IsCanonical reports whether the value is exactly one of the 13 canonical
// region names.
func IsCanonical(name string) bool {
	_, ok := canonical[name]
	return ok
}

// Match resolves a free-form address value to a canonical region name.
// The value is normalized and each region's aliases are tried in table
// order; the first alias contained in the value wins.
func Match(value string) (string, bool) {
	normalized := Normalize(value)
	if normalized == "" {
		return "", false
	}
	for _, r := range all {
		for _, alias := range r.Aliases {
			if alias != "" && strings.Contains(normalized, alias) {
				return r.Name, true
			}
		}
	}
	return "", false
}
