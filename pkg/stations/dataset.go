package stations

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/e-radio/stationctl/pkg/errors"
)

// Load reads the full dataset array from disk. A missing or unreadable file
// is fatal to the caller (the dataset is the system of record).
func Load(path string) ([]*Station, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var list []*Station
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return list, nil
}

// Save rewrites the full dataset array: 2-space indentation, non-ASCII left
// unescaped, trailing newline. Called after every successful mutation by the
// fillers, once at the end by the deduplicator.
func Save(path string, list []*Station) error {
	data, err := MarshalDataset(list)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// MarshalDataset renders the dataset in its on-disk form.
func MarshalDataset(list []*Station) ([]byte, error) {
	if list == nil {
		list = []*Station{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(list); err != nil {
		return nil, errors.WrapParse("json", "", err)
	}
	return buf.Bytes(), nil
}
