package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	base := t.TempDir()
	cfg, err := Load(filepath.Join(base, "config.json"), base)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if cfg.ExtractedDir != filepath.Join(base, "extracted") {
		t.Errorf("Unexpected default extracted dir: %s", cfg.ExtractedDir)
	}
	if cfg.EncoderPath != "astcenc" {
		t.Errorf("Unexpected default encoder path: %s", cfg.EncoderPath)
	}
}

func TestLoadMergesPartialFile(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "config.json")
	partial := `{"data_folder": "/game/_data", "texconv_path": "/tools/texconv.exe"}`
	if err := os.WriteFile(path, []byte(partial), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path, base)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if cfg.DataDir != "/game/_data" {
		t.Errorf("File value lost: %s", cfg.DataDir)
	}
	if cfg.ConverterPath != "/tools/texconv.exe" {
		t.Errorf("File value lost: %s", cfg.ConverterPath)
	}
	// Fields absent from the file keep their defaults.
	if cfg.OutputDir != filepath.Join(base, "output") {
		t.Errorf("Default lost: %s", cfg.OutputDir)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "nested", "config.json")

	cfg := Default(base)
	cfg.DataDir = "/game/_data"
	cfg.PackerPath = "/tools/echoModifyFiles.exe"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Failed to save: %v", err)
	}

	loaded, err := Load(path, base)
	if err != nil {
		t.Fatalf("Failed to load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("Round trip changed the config:\n%+v\n%+v", cfg, loaded)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	base := t.TempDir()
	path := filepath.Join(base, "config.json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, base); err == nil {
		t.Error("Expected error for malformed config")
	}
}
