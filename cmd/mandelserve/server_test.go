package main

import (
	"context"
	"errors"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/gogpu/mandel"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	r := mandel.NewRenderer(mandel.WithWorkers(2), mandel.WithChunkPixels(64))
	s := newServer(r, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(s)
	t.Cleanup(func() {
		srv.Close()
		s.wait()
		r.Close()
	})
	return srv
}

// =============================================================================
// Request resolution
// =============================================================================

func TestRenderRequest_Resolve(t *testing.T) {
	p, err := renderRequest{Width: 64, MaxIter: 50}.resolve()
	if err != nil {
		t.Fatalf("resolve() error = %v", err)
	}
	if p.Name != defaultSet || p.Viewport != mandel.ClassicViewport {
		t.Errorf("preset = %q %+v, want classic", p.Name, p.Viewport)
	}
	if p.Grid.Width != 64 || p.Grid.Height != mandel.ClassicGrid.Height || p.Params.MaxIter != 50 {
		t.Errorf("grid, params = %+v %+v", p.Grid, p.Params)
	}
}

func TestRenderRequest_ResolveRejects(t *testing.T) {
	tests := []struct {
		name string
		req  renderRequest
		want error
	}{
		{"unknown preset", renderRequest{Preset: "nope"}, errUnknownPreset},
		{"too many pixels", renderRequest{Width: 8192, Height: 8192}, mandel.ErrInvalidParameters},
		{"reference grid too large", renderRequest{Preset: "reference"}, mandel.ErrInvalidParameters},
		{"too many iterations", renderRequest{MaxIter: maxIter + 1}, mandel.ErrInvalidParameters},
		{"negative size", renderRequest{Width: -4, Height: -4}, mandel.ErrInvalidParameters},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.req.resolve(); !errors.Is(err, tt.want) {
				t.Errorf("resolve() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// =============================================================================
// /render.png
// =============================================================================

func TestHandleRender_PNG(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/render.png?preset=classic&w=32&h=24&iter=32")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, body %q", resp.StatusCode, body)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 24 {
		t.Errorf("bounds = %v, want 32x24", b)
	}
}

func TestHandleRender_BadRequests(t *testing.T) {
	srv := newTestServer(t)

	for _, query := range []string{
		"w=abc",
		"preset=nope",
		"w=-1&h=10",
		"iter=-1",
		"w=100000&h=100000",
		"iter=1000000",
	} {
		t.Run(query, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/render.png?" + query)
			if err != nil {
				t.Fatalf("GET error = %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestHandleRender_MethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/render.png", "text/plain", strings.NewReader(""))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", resp.StatusCode)
	}
}

// =============================================================================
// /ws
// =============================================================================

func dialWS(t *testing.T, srv *httptest.Server) (context.Context, *websocket.Conn) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = c.CloseNow() })
	return ctx, c
}

func TestWebsocket_ProgressThenDone(t *testing.T) {
	srv := newTestServer(t)
	ctx, c := dialWS(t, srv)

	if err := wsjson.Write(ctx, c, renderRequest{Preset: "classic", Width: 64, Height: 48, MaxIter: 64}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	const total = 64 * 48
	last := 0
	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			t.Fatalf("read: %v", err)
		}

		switch msg.Type {
		case "progress":
			if msg.Total != total {
				t.Errorf("progress total = %d, want %d", msg.Total, total)
			}
			if msg.Done <= last || msg.Done > total {
				t.Errorf("progress done = %d after %d, want increasing and <= %d", msg.Done, last, total)
			}
			last = msg.Done

		case "done":
			if msg.Width != 64 || msg.Height != 48 {
				t.Errorf("done size = %dx%d, want 64x48", msg.Width, msg.Height)
			}
			if msg.Bounded+msg.Escaped != total {
				t.Errorf("bounded + escaped = %d, want %d", msg.Bounded+msg.Escaped, total)
			}
			if msg.Bounded == 0 || msg.Escaped == 0 {
				t.Errorf("classic view has both kinds of pixels, got bounded=%d escaped=%d", msg.Bounded, msg.Escaped)
			}
			return

		default:
			t.Fatalf("unexpected message %+v", msg)
		}
	}
}

func TestWebsocket_RejectedRequest(t *testing.T) {
	srv := newTestServer(t)
	ctx, c := dialWS(t, srv)

	if err := wsjson.Write(ctx, c, renderRequest{Preset: "classic", MaxIter: maxIter + 1}); err != nil {
		t.Fatalf("write request: %v", err)
	}

	var msg wsMessage
	if err := wsjson.Read(ctx, c, &msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != "error" || !strings.Contains(msg.Error, "iterations") {
		t.Errorf("message = %+v, want an iteration limit error", msg)
	}

	_, _, err := c.Read(ctx)
	if got := websocket.CloseStatus(err); got != websocket.StatusPolicyViolation {
		t.Errorf("close status = %v, want StatusPolicyViolation", got)
	}
}

// =============================================================================
// Shutdown
// =============================================================================

func TestServer_WaitRefusesNewRequests(t *testing.T) {
	r := mandel.NewRenderer(mandel.WithWorkers(1))
	defer r.Close()
	s := newServer(r, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.wait()

	for _, target := range []string{"/render.png?w=8&h=8", "/ws"} {
		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("GET %s after wait: status = %d, want 503", target, rec.Code)
		}
	}
}

func TestServer_WaitBlocksForActiveHandlers(t *testing.T) {
	r := mandel.NewRenderer(mandel.WithWorkers(1))
	defer r.Close()
	s := newServer(r, slog.New(slog.NewTextHandler(io.Discard, nil)))

	if !s.begin() {
		t.Fatal("begin() before wait = false, want true")
	}

	done := make(chan struct{})
	go func() {
		s.wait()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("wait() returned while a handler was active")
	case <-time.After(50 * time.Millisecond):
	}

	s.active.Done()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("wait() did not return after the handler finished")
	}
	if s.begin() {
		t.Error("begin() after wait = true, want false")
	}
}
