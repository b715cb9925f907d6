// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

// =============================================================================
// SCRIPT LISTENER
// =============================================================================

func TestScriptListener(t *testing.T) {
	script := "# warm-up\ncreate table scores columns name score\n\n   alice  \ntwenty eight\n"
	var echo bytes.Buffer
	l := NewScriptListener(io.NopCloser(strings.NewReader(script)), &echo, "> ")
	defer l.Close()

	ctx := context.Background()
	var got []string
	for {
		text, err := l.Listen(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, text)
	}

	assert.Equal(t, []string{"create table scores columns name score", "alice", "twenty eight"}, got)
	assert.Equal(t, 5, l.Line())
	assert.Equal(t, "> create table scores columns name score\n> alice\n> twenty eight\n", echo.String())
}

func TestScriptListener_Cancelled(t *testing.T) {
	l := NewScriptListener(io.NopCloser(strings.NewReader("undo\n")), nil, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Listen(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, l.Close())
	assert.NoError(t, l.Close(), "second close is a no-op")
}

func TestOpenScript(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.txt")
	require.NoError(t, os.WriteFile(path, []byte("next row\n"), 0600))

	l, err := OpenScript(path, nil, "")
	require.NoError(t, err)
	defer l.Close()

	text, err := l.Listen(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "next row", text)

	_, err = OpenScript(filepath.Join(t.TempDir(), "missing.txt"), nil, "")
	assert.Error(t, err)
}

// =============================================================================
// CAPTURE
// =============================================================================

func TestOpenCapture_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audio.raw")
	pcm := bytes.Repeat([]byte{0x01, 0x00}, 100)
	require.NoError(t, os.WriteFile(path, pcm, 0600))

	rc, err := OpenCapture(context.Background(), path, "")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pcm, data)
}

func TestOpenCapture_Errors(t *testing.T) {
	_, err := OpenCapture(context.Background(), "", "   ")
	assert.Error(t, err)

	_, err = OpenCapture(context.Background(), filepath.Join(t.TempDir(), "none.raw"), "")
	assert.Error(t, err)

	_, err = OpenCapture(context.Background(), "", "voxtable-no-such-recorder -q")
	assert.Error(t, err)
}

// =============================================================================
// VOSK LISTENER
// =============================================================================

// fakeVosk answers the first audio frame with one transcript and the end of
// stream marker with another, then closes the connection.
type fakeVosk struct {
	t          *testing.T
	sampleRate chan int
	audioBytes chan int
}

func (f *fakeVosk) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.t.Errorf("upgrade: %v", err)
		return
	}
	defer conn.Close()

	var cfg voskConfig
	if err := conn.ReadJSON(&cfg); err != nil {
		f.t.Errorf("read config: %v", err)
		return
	}
	f.sampleRate <- cfg.Config.SampleRate

	total := 0
	frames := 0
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if kind == websocket.BinaryMessage {
			total += len(data)
			frames++
			if frames == 1 {
				conn.WriteMessage(websocket.TextMessage, []byte(`{"partial" : "next"}`))
				conn.WriteMessage(websocket.TextMessage, []byte(`{"text" : "next row"}`))
			} else {
				conn.WriteMessage(websocket.TextMessage, []byte(`{"text" : ""}`))
			}
			continue
		}
		var eof struct {
			EOF int `json:"eof"`
		}
		if json.Unmarshal(data, &eof) == nil && eof.EOF == 1 {
			f.audioBytes <- total
			conn.WriteMessage(websocket.TextMessage, []byte(`{"text" : "undo"}`))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestVoskListener(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := &fakeVosk{t: t, sampleRate: make(chan int, 1), audioBytes: make(chan int, 1)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	audio := io.NopCloser(bytes.NewReader(make([]byte, 2*ChunkSize+500)))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := DialVosk(ctx, wsURL(srv), audio, VoskOptions{Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)

	first, err := l.Listen(ctx)
	require.NoError(t, err)
	assert.Equal(t, "next row", first)

	second, err := l.Listen(ctx)
	require.NoError(t, err)
	assert.Equal(t, "undo", second)

	_, err = l.Listen(ctx)
	assert.ErrorIs(t, err, io.EOF)

	assert.Equal(t, DefaultSampleRate, <-fake.sampleRate)
	assert.Equal(t, 2*ChunkSize+500, <-fake.audioBytes)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
}

func TestVoskListener_CloseWhileStreaming(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	fake := &fakeVosk{t: t, sampleRate: make(chan int, 1), audioBytes: make(chan int, 1)}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	// An endless source: the session ends by Close, not by EOF.
	pr, pw := io.Pipe()
	go func() {
		chunk := make([]byte, ChunkSize)
		for {
			if _, err := pw.Write(chunk); err != nil {
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	l, err := DialVosk(ctx, wsURL(srv), pr, VoskOptions{})
	require.NoError(t, err)

	text, err := l.Listen(ctx)
	require.NoError(t, err)
	assert.Equal(t, "next row", text)

	require.NoError(t, l.Close())
}

func TestDialVosk_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(srv)
	srv.Close()

	_, err := DialVosk(context.Background(), url, io.NopCloser(strings.NewReader("")), VoskOptions{})
	assert.Error(t, err)
}
