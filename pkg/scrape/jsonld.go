package scrape

import (
	"encoding/json"
	"regexp"
	"strings"
)

var jsonldScriptRE = regexp.MustCompile(
	`(?is)<script[^>]*type=["']application/ld\+json["'][^>]*>(.*?)</script>`)

// ExtractJSONLD returns the parsed payload of every application/ld+json
// script block in the page. A block that is not valid JSON as a whole is
// re-split on object boundaries — some pages concatenate several JSON
// objects inside one script tag — and each candidate parsed independently.
func ExtractJSONLD(page string) []any {
	var parsed []any
	for _, match := range jsonldScriptRE.FindAllStringSubmatch(page, -1) {
		block := strings.TrimSpace(match[1])
		if block == "" {
			continue
		}
		var payload any
		if err := json.Unmarshal([]byte(block), &payload); err == nil {
			parsed = append(parsed, payload)
			continue
		}
		for _, candidate := range splitConcatenated(block) {
			candidate = strings.TrimSpace(candidate)
			if candidate == "" {
				continue
			}
			var p any
			if err := json.Unmarshal([]byte(candidate), &p); err == nil {
				parsed = append(parsed, p)
			}
		}
	}
	return parsed
}

// splitConcatenated splits a script body into candidate JSON documents,
// starting a new candidate at each line that opens an object.
func splitConcatenated(block string) []string {
	lines := strings.Split(block, "\n")
	var parts []string
	var current []string
	for _, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "{") && len(current) > 0 {
			parts = append(parts, strings.Join(current, "\n"))
			current = current[:0]
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, "\n"))
	}
	return parts
}

// FlattenObjects reduces arbitrarily nested JSON-LD payloads (objects,
// lists, @graph collections) to the individual objects they contain.
func FlattenObjects(payloads []any) []map[string]any {
	var objects []map[string]any
	for _, payload := range payloads {
		objects = append(objects, flatten(payload)...)
	}
	return objects
}

func flatten(payload any) []map[string]any {
	switch v := payload.(type) {
	case []any:
		var objects []map[string]any
		for _, item := range v {
			objects = append(objects, flatten(item)...)
		}
		return objects
	case map[string]any:
		if graph, ok := v["@graph"].([]any); ok {
			var objects []map[string]any
			for _, item := range graph {
				objects = append(objects, flatten(item)...)
			}
			return objects
		}
		return []map[string]any{v}
	default:
		return nil
	}
}

// addressKeys are tried, in order, on a structured object's address.
var addressKeys = []string{"addressLocality", "addressRegion", "addressArea"}

// areaKeys are the fallbacks when an object has no usable address.
var areaKeys = []string{"areaServed", "contentLocation", "location"}

// PickState returns the first usable place value across the given objects:
// an address sub-field first, then an area object's name or a plain area
// string. Empty when nothing matches.
func PickState(objects []map[string]any) string {
	for _, obj := range objects {
		if addr, ok := obj["address"].(map[string]any); ok {
			for _, key := range addressKeys {
				if s, ok := addr[key].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
		area := firstTruthy(obj, areaKeys)
		switch v := area.(type) {
		case map[string]any:
			if name, ok := v["name"].(string); ok && strings.TrimSpace(name) != "" {
				return strings.TrimSpace(name)
			}
		case string:
			if strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// firstTruthy returns the first key whose value is present and non-empty.
func firstTruthy(obj map[string]any, keys []string) any {
	for _, key := range keys {
		value, ok := obj[key]
		if !ok || value == nil {
			continue
		}
		if s, ok := value.(string); ok && s == "" {
			continue
		}
		if m, ok := value.(map[string]any); ok && len(m) == 0 {
			continue
		}
		return value
	}
	return nil
}
