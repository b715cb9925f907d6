// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// =============================================================================
// AUDIO CAPTURE
// =============================================================================

// OpenCapture opens a stream of mono 16 kHz S16LE PCM.
//
// path names a raw PCM file, or "-" for stdin. When path is empty command
// is run and its stdout is used; command is split on whitespace and not
// passed through a shell.
func OpenCapture(ctx context.Context, path, command string) (io.ReadCloser, error) {
	switch path {
	case "-":
		return io.NopCloser(os.Stdin), nil
	case "":
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open capture file: %w", err)
		}
		return f, nil
	}

	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, errors.New("no capture file or command configured")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stderr = io.Discard
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("capture pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start capture %q: %w", args[0], err)
	}
	return &commandCapture{cmd: cmd, stdout: stdout}, nil
}

// commandCapture stops the capture process on Close.
type commandCapture struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	closed bool
}

func (c *commandCapture) Read(p []byte) (int, error) {
	return c.stdout.Read(p)
}

func (c *commandCapture) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
	}
	// Wait closes stdout and reaps the process; a kill shows up as an error.
	_ = c.cmd.Wait()
	return nil
}
