// Package packer drives the external package extractor/repacker. The
// package container format is the tool's business; this side only prepares
// its inputs and interprets success or failure.
package packer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds one extract or repack run. Full game packages take
// tens of minutes on slow disks.
const DefaultTimeout = 2000 * time.Second

// ErrToolNotFound is returned when no known packer binary is present.
var ErrToolNotFound = errors.New("packer tool not found")

// candidateNames are the binary names the packer has shipped under.
var candidateNames = []string{
	"echoModifyFiles.exe",
	"echoModifyFiles",
	"evrFileTools.exe",
	"evrFileTools",
}

// Find locates a packer binary inside dir.
func Find(dir string) (string, error) {
	for _, name := range candidateNames {
		path := filepath.Join(dir, name)
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrToolNotFound, dir)
}

// Tool runs the packer binary.
type Tool struct {
	// Path locates the packer binary.
	Path string

	// Timeout bounds each run. DefaultTimeout when zero.
	Timeout time.Duration

	Log zerolog.Logger
}

// Extract unpacks packageName from dataDir into outputDir.
func (t *Tool) Extract(ctx context.Context, packageName, dataDir, outputDir string) error {
	args := extractArgs(packageName, dataDir, outputDir)
	return t.run(ctx, args)
}

// Replace rebuilds packageName, overlaying the files under modifiedDir, and
// writes the result into outputDir.
func (t *Tool) Replace(ctx context.Context, packageName, dataDir, modifiedDir, outputDir string) error {
	args := replaceArgs(packageName, dataDir, modifiedDir, outputDir)
	return t.run(ctx, args)
}

func extractArgs(packageName, dataDir, outputDir string) []string {
	return []string{
		"-mode", "extract",
		"-packageName", packageName,
		"-dataDir", dataDir,
		"-outputFolder", outputDir,
	}
}

func replaceArgs(packageName, dataDir, modifiedDir, outputDir string) []string {
	return []string{
		"-mode", "replace",
		"-packageName", packageName,
		"-dataDir", dataDir,
		"-modifiedFolder", modifiedDir,
		"-outputFolder", outputDir,
	}
}

func (t *Tool) run(ctx context.Context, args []string) error {
	timeout := t.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.Path, args...)
	var output strings.Builder
	cmd.Stdout = &output
	cmd.Stderr = &output

	t.Log.Info().Str("tool", t.Path).Strs("args", args).Msg("running packer")
	start := time.Now()
	err := cmd.Run()
	t.Log.Info().Dur("elapsed", time.Since(start)).Err(err).Msg("packer finished")

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("packer timed out after %s", timeout)
		}
		return fmt.Errorf("packer failed: %w: %s", err, strings.TrimSpace(output.String()))
	}
	return nil
}
