// Package device pushes repacked packages to a standalone headset over the
// platform debug bridge.
package device

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// Bridge drives the adb binary.
type Bridge struct {
	// Path locates the adb binary.
	Path string

	Log zerolog.Logger
}

// Check verifies that a device is connected and responsive.
func (b *Bridge) Check(ctx context.Context) error {
	out, err := b.run(ctx, "get-state")
	if err != nil {
		return fmt.Errorf("no device connected: %w", err)
	}
	if strings.TrimSpace(out) != "device" {
		return fmt.Errorf("device not ready: %s", strings.TrimSpace(out))
	}
	return nil
}

// Push copies localPath onto the device at remotePath.
func (b *Bridge) Push(ctx context.Context, localPath, remotePath string) error {
	b.Log.Info().Str("local", localPath).Str("remote", remotePath).Msg("pushing to device")
	if _, err := b.run(ctx, "push", localPath, remotePath); err != nil {
		return fmt.Errorf("push %s: %w", localPath, err)
	}
	return nil
}

func (b *Bridge) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, b.Path, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("adb %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}
