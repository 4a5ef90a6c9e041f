package astc

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Params records a successful decode configuration for one texture: the
// image dimensions, the block footprint, and the original compressed byte
// size (which re-encoding must reproduce exactly).
type Params struct {
	Width        int `json:"width"`
	Height       int `json:"height"`
	BlockW       int `json:"block_w"`
	BlockH       int `json:"block_h"`
	OriginalSize int `json:"original_size"`
}

// Block returns the footprint part of the parameters.
func (p Params) Block() BlockSize {
	return BlockSize{W: p.BlockW, H: p.BlockH}
}

// ParamStore memoizes search results by texture name so each texture is
// searched at most once per install. Entries are overwrite-only; a newer
// success for the same name replaces the older one.
type ParamStore struct {
	mu      sync.Mutex
	entries map[string]Params
}

// NewParamStore returns an empty store.
func NewParamStore() *ParamStore {
	return &ParamStore{entries: make(map[string]Params)}
}

// Get returns the memoized parameters for name.
func (s *ParamStore) Get(name string) (Params, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.entries[name]
	return p, ok
}

// Put records parameters for name.
func (s *ParamStore) Put(name string, p Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[name] = p
}

// Load merges entries from a JSON snapshot at path. A missing file is not
// an error; the store just starts empty.
func (s *ParamStore) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read param store: %w", err)
	}
	var entries map[string]Params
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse param store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.entries[k] = v
	}
	return nil
}

// Save writes the store as a JSON snapshot at path.
func (s *ParamStore) Save(path string) error {
	s.mu.Lock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode param store: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write param store: %w", err)
	}
	return nil
}
