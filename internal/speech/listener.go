// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package speech supplies finalized utterances to the session loop.
//
// Three sources are provided: a line-editing console, a script file with
// one utterance per line, and a Vosk speech-recognition server fed with raw
// PCM audio over a websocket.
package speech

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
)

// Listener yields one finalized utterance per call.
//
// Listen blocks until an utterance is available, the source is exhausted
// (io.EOF) or ctx is done. Close releases the source and is safe to call
// more than once.
type Listener interface {
	Listen(ctx context.Context) (string, error)
	Close() error
}

// =============================================================================
// CONSOLE LISTENER
// =============================================================================

// ConsoleListener reads typed utterances with line editing and history.
type ConsoleListener struct {
	line        *liner.State
	prompt      string
	historyFile string
	closed      bool
}

// NewConsoleListener creates a console listener. complete may be nil.
func NewConsoleListener(prompt, historyFile string, complete func(line string) []string) *ConsoleListener {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	if complete != nil {
		line.SetCompleter(complete)
	}

	c := &ConsoleListener{
		line:        line,
		prompt:      prompt,
		historyFile: historyFile,
	}
	c.loadHistory()
	return c
}

func (c *ConsoleListener) loadHistory() {
	if c.historyFile == "" {
		return
	}
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// Listen prompts until a non-blank line is entered. Ctrl+C and Ctrl+D end
// the input with io.EOF.
func (c *ConsoleListener) Listen(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		input, err := c.line.Prompt(c.prompt)
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				return "", io.EOF
			}
			return "", fmt.Errorf("console: %w", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.line.AppendHistory(input)
		return input, nil
	}
}

// Close saves history and restores the terminal.
func (c *ConsoleListener) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.saveHistory()
	return c.line.Close()
}

func (c *ConsoleListener) saveHistory() {
	if c.historyFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(c.historyFile), 0755); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// =============================================================================
// SCRIPT LISTENER
// =============================================================================

// ScriptListener replays utterances from a text source, one per line.
// Blank lines and lines starting with '#' are skipped.
type ScriptListener struct {
	src     io.ReadCloser
	scanner *bufio.Scanner
	echo    io.Writer
	prompt  string
	line    int
}

// NewScriptListener reads utterances from r. When echo is non-nil every
// utterance is written to it after prompt, so transcripts read like a
// console session.
func NewScriptListener(r io.ReadCloser, echo io.Writer, prompt string) *ScriptListener {
	return &ScriptListener{
		src:     r,
		scanner: bufio.NewScanner(r),
		echo:    echo,
		prompt:  prompt,
	}
}

// OpenScript opens a script file, or stdin for "-".
func OpenScript(path string, echo io.Writer, prompt string) (*ScriptListener, error) {
	if path == "-" {
		return NewScriptListener(io.NopCloser(os.Stdin), echo, prompt), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	return NewScriptListener(f, echo, prompt), nil
}

// Listen returns the next utterance.
func (s *ScriptListener) Listen(ctx context.Context) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return "", fmt.Errorf("script line %d: %w", s.line+1, err)
			}
			return "", io.EOF
		}
		s.line++
		text := strings.TrimSpace(s.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if s.echo != nil {
			fmt.Fprintf(s.echo, "%s%s\n", s.prompt, text)
		}
		return text, nil
	}
}

// Line returns the number of lines consumed so far.
func (s *ScriptListener) Line() int { return s.line }

// Close closes the underlying source.
func (s *ScriptListener) Close() error {
	if s.src == nil {
		return nil
	}
	err := s.src.Close()
	s.src = nil
	return err
}
