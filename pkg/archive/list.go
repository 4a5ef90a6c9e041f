package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// PreferredPackage is the package holding most in-game textures; listings
// put it first so it is the default selection.
const PreferredPackage = "48037dc70b0ecab2"

// ListPackages scans <dataDir>/manifests and returns the names of packages
// that are actually loadable: the manifest must carry a valid frame header
// and the package payload must exist next to the manifests directory,
// either as the bare name or as the first split part ("name_0").
//
// The preferred package sorts first; the rest are alphabetical.
func ListPackages(dataDir string) ([]string, error) {
	manifestDir := filepath.Join(dataDir, "manifests")
	entries, err := os.ReadDir(manifestDir)
	if err != nil {
		return nil, fmt.Errorf("scan manifests: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !packageFileExists(dataDir, name) {
			continue
		}
		if !manifestLooksValid(filepath.Join(manifestDir, name)) {
			continue
		}
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if names[i] == PreferredPackage {
			return true
		}
		if names[j] == PreferredPackage {
			return false
		}
		return names[i] < names[j]
	})
	return names, nil
}

func packageFileExists(dataDir, name string) bool {
	for _, candidate := range []string{name, name + "_0"} {
		if st, err := os.Stat(filepath.Join(dataDir, candidate)); err == nil && !st.IsDir() {
			return true
		}
	}
	return false
}

func manifestLooksValid(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	head := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	_, err = ParseFrameHeader(head)
	return err == nil
}
