package astc

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DimensionTable maps texture symbol names to their image dimensions. The
// table is community-collected and incomplete; lookups that miss fall to
// the brute-force phase of the search.
type DimensionTable struct {
	entries map[string][2]int
}

// suffixTokens are texture-role suffixes stripped from a name before a
// second table lookup, so "door_diffuse" can match a "door" entry.
var suffixTokens = []string{
	"diffuse", "normal", "specular", "emissive",
	"albedo", "roughness", "metallic", "height",
}

// LoadDimensionTable reads a name-to-dimensions JSON file of the form
// {"name": [width, height], ...}.
func LoadDimensionTable(path string) (*DimensionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dimension table: %w", err)
	}
	var raw map[string][2]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dimension table: %w", err)
	}
	return &DimensionTable{entries: raw}, nil
}

// NewDimensionTable builds a table from an in-memory map.
func NewDimensionTable(entries map[string][2]int) *DimensionTable {
	m := make(map[string][2]int, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return &DimensionTable{entries: m}
}

// Lookup returns the dimensions recorded for name. If the exact name
// misses, role suffixes are stripped (with or without a joining separator)
// and the base name is tried again.
func (t *DimensionTable) Lookup(name string) (width, height int, ok bool) {
	if t == nil || t.entries == nil {
		return 0, 0, false
	}
	if d, found := t.entries[name]; found {
		return d[0], d[1], true
	}
	lower := strings.ToLower(name)
	for _, tok := range suffixTokens {
		if !strings.HasSuffix(lower, tok) {
			continue
		}
		base := name[:len(name)-len(tok)]
		base = strings.TrimRight(base, "_- ")
		if d, found := t.entries[base]; found {
			return d[0], d[1], true
		}
	}
	return 0, 0, false
}

// Len reports how many names the table covers.
func (t *DimensionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
