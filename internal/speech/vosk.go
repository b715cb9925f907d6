// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// =============================================================================
// VOSK LISTENER
// =============================================================================

const (
	// ChunkSize is the number of PCM bytes sent per websocket frame
	// (4000 samples of 16-bit audio).
	ChunkSize = 8000

	// DefaultSampleRate matches the capture format.
	DefaultSampleRate = 16000

	closeGrace = time.Second
)

// VoskOptions configures DialVosk.
type VoskOptions struct {
	SampleRate int
	ChunkSize  int
	Logger     *zap.Logger
	Dialer     *websocket.Dialer
}

// VoskListener streams audio to a vosk-server and returns its final
// transcripts.
//
// Audio is pumped from inside Listen, so the only goroutine it owns is the
// result reader, which Close joins.
type VoskListener struct {
	conn   *websocket.Conn
	audio  io.ReadCloser
	buf    []byte
	logger *zap.Logger

	results chan string
	done    chan struct{}
	wg      sync.WaitGroup
	readErr error

	eofSent   bool
	closeOnce sync.Once
}

type voskConfig struct {
	Config struct {
		SampleRate int `json:"sample_rate"`
	} `json:"config"`
}

type voskResult struct {
	Text    *string `json:"text"`
	Partial string  `json:"partial"`
}

// DialVosk connects to url and announces the sample rate. The listener owns
// audio from then on and closes it on Close.
func DialVosk(ctx context.Context, url string, audio io.ReadCloser, opts VoskOptions) (*VoskListener, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = ChunkSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}

	conn, _, err := opts.Dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("connect to vosk server %s: %w", url, err)
	}

	var cfg voskConfig
	cfg.Config.SampleRate = opts.SampleRate
	if err := conn.WriteJSON(cfg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send vosk config: %w", err)
	}

	v := &VoskListener{
		conn:    conn,
		audio:   audio,
		buf:     make([]byte, opts.ChunkSize),
		logger:  opts.Logger.Named("vosk"),
		results: make(chan string, 16),
		done:    make(chan struct{}),
	}
	v.wg.Add(1)
	go v.readResults()

	v.logger.Info("connected", zap.String("url", url), zap.Int("sample_rate", opts.SampleRate))
	return v, nil
}

// readResults forwards non-empty final transcripts until the server closes
// the connection or Close is called.
func (v *VoskListener) readResults() {
	defer v.wg.Done()
	defer close(v.results)

	for {
		_, data, err := v.conn.ReadMessage()
		if err != nil {
			select {
			case <-v.done:
			default:
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					v.readErr = fmt.Errorf("vosk: %w", err)
				}
			}
			return
		}

		var res voskResult
		if err := json.Unmarshal(data, &res); err != nil {
			v.logger.Warn("malformed result", zap.ByteString("data", data), zap.Error(err))
			continue
		}
		if res.Text == nil {
			if res.Partial != "" {
				v.logger.Debug("partial", zap.String("text", res.Partial))
			}
			continue
		}
		text := strings.TrimSpace(*res.Text)
		if text == "" {
			continue
		}
		v.logger.Debug("final", zap.String("text", text))

		select {
		case v.results <- text:
		case <-v.done:
			return
		}
	}
}

// Listen pumps audio until the server returns a final transcript.
func (v *VoskListener) Listen(ctx context.Context) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case text, ok := <-v.results:
			if !ok {
				return "", v.endErr()
			}
			return text, nil
		default:
		}

		if v.eofSent {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case text, ok := <-v.results:
				if !ok {
					return "", v.endErr()
				}
				return text, nil
			}
		}

		if err := v.pump(); err != nil {
			return "", err
		}
	}
}

// pump sends one chunk of audio, or the end-of-stream marker once the audio
// is exhausted.
func (v *VoskListener) pump() error {
	n, err := io.ReadFull(v.audio, v.buf)
	if n > 0 {
		if werr := v.conn.WriteMessage(websocket.BinaryMessage, v.buf[:n]); werr != nil {
			return fmt.Errorf("send audio: %w", werr)
		}
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		v.logger.Info("audio exhausted")
		return v.sendEOF()
	default:
		return fmt.Errorf("read audio: %w", err)
	}
}

func (v *VoskListener) sendEOF() error {
	if v.eofSent {
		return nil
	}
	v.eofSent = true
	if err := v.conn.WriteMessage(websocket.TextMessage, []byte(`{"eof" : 1}`)); err != nil {
		return fmt.Errorf("send eof: %w", err)
	}
	return nil
}

func (v *VoskListener) endErr() error {
	if v.readErr != nil {
		return v.readErr
	}
	return io.EOF
}

// Close stops the audio, closes the connection and joins the reader.
func (v *VoskListener) Close() error {
	var err error
	v.closeOnce.Do(func() {
		close(v.done)
		if v.audio != nil {
			err = v.audio.Close()
		}
		_ = v.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGrace))
		if cerr := v.conn.Close(); err == nil {
			err = cerr
		}
		v.wg.Wait()
		v.logger.Info("closed")
	})
	return err
}
