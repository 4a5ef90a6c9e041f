// Package config persists the editor's folder and tool locations as a JSON
// file. Fields missing from an older file keep their defaults, so upgrades
// never require touching the config by hand.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config holds every path the editor needs to operate.
type Config struct {
	// DataDir is the game's _data directory (packages + manifests).
	DataDir string `json:"data_folder"`

	// ExtractedDir is where extracted packages live.
	ExtractedDir string `json:"extracted_folder"`

	// StagingDir is the modified-files tree handed to the repacker.
	StagingDir string `json:"modified_folder"`

	// OutputDir receives repacked packages.
	OutputDir string `json:"output_folder"`

	// CacheDir holds converted PNG previews.
	CacheDir string `json:"cache_folder"`

	// Tool locations.
	ConverterPath string `json:"texconv_path"`
	EncoderPath   string `json:"astcenc_path"`
	PackerPath    string `json:"packer_path"`
	BridgePath    string `json:"adb_path"`

	// DimensionTablePath points at the name-to-dimensions JSON table.
	DimensionTablePath string `json:"dimension_table_path"`

	// ParamStorePath is the decode-parameter memo snapshot.
	ParamStorePath string `json:"param_store_path"`
}

// Default returns a config rooted under baseDir.
func Default(baseDir string) Config {
	return Config{
		ExtractedDir:       filepath.Join(baseDir, "extracted"),
		StagingDir:         filepath.Join(baseDir, "modified"),
		OutputDir:          filepath.Join(baseDir, "output"),
		CacheDir:           filepath.Join(baseDir, "cache"),
		ConverterPath:      "texconv.exe",
		EncoderPath:        "astcenc",
		BridgePath:         "adb",
		DimensionTablePath: filepath.Join(baseDir, "texture_sizes.json"),
		ParamStorePath:     filepath.Join(baseDir, "decode_params.json"),
	}
}

// Load reads the config at path on top of the defaults for baseDir. A
// missing file is not an error; the defaults are returned as-is.
func Load(path, baseDir string) (Config, error) {
	cfg := Default(baseDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
