package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/mandel"
	mimage "github.com/gogpu/mandel/internal/image"
)

// Request limits.
const (
	maxPixels  = 1 << 24
	maxIter    = 100_000
	defaultSet = "classic"

	// requestTimeout bounds the wait for a websocket client's request.
	requestTimeout = 10 * time.Second
)

var errUnknownPreset = errors.New("unknown preset")

// renderRequest selects a preset and optionally overrides its grid and
// iteration budget. Zero fields keep the preset's values.
type renderRequest struct {
	Preset    string  `json:"preset,omitempty"`
	Width     int     `json:"w,omitempty"`
	Height    int     `json:"h,omitempty"`
	MaxIter   int     `json:"iter,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// resolve applies the request to its preset and enforces the server limits.
func (req renderRequest) resolve() (mandel.Preset, error) {
	name := req.Preset
	if name == "" {
		name = defaultSet
	}
	p, ok := mandel.LookupPreset(name)
	if !ok {
		return mandel.Preset{}, fmt.Errorf("%w %q", errUnknownPreset, name)
	}

	if req.Width != 0 {
		p.Grid.Width = req.Width
	}
	if req.Height != 0 {
		p.Grid.Height = req.Height
	}
	if req.MaxIter != 0 {
		p.Params.MaxIter = req.MaxIter
	}
	if req.Threshold != 0 {
		p.Params.EscapeThresholdSquared = req.Threshold
	}

	if err := p.Grid.Validate(); err != nil {
		return mandel.Preset{}, err
	}
	if n := p.Grid.Pixels(); n > maxPixels {
		return mandel.Preset{}, fmt.Errorf("%w: %d pixels exceeds the limit of %d", mandel.ErrInvalidParameters, n, maxPixels)
	}
	if p.Params.MaxIter > maxIter {
		return mandel.Preset{}, fmt.Errorf("%w: %d iterations exceeds the limit of %d", mandel.ErrInvalidParameters, p.Params.MaxIter, maxIter)
	}
	return p, nil
}

// wsMessage is sent from server to client on the websocket. Type is
// "progress", "done" or "error".
type wsMessage struct {
	Type      string  `json:"type"`
	Done      int     `json:"done,omitempty"`
	Total     int     `json:"total,omitempty"`
	Width     int     `json:"w,omitempty"`
	Height    int     `json:"h,omitempty"`
	Bounded   int     `json:"bounded,omitempty"`
	Escaped   int     `json:"escaped,omitempty"`
	ElapsedMS float64 `json:"elapsed_ms,omitempty"`
	Error     string  `json:"error,omitempty"`
}

type server struct {
	r      *mandel.Renderer
	logger *slog.Logger
	mux    *http.ServeMux
	pr     *message.Printer

	// active counts handlers in flight, including hijacked websocket
	// connections that http.Server.Shutdown does not wait for. mu orders
	// every Add before the Wait in wait; after closing is set, begin
	// refuses new work.
	mu      sync.Mutex
	closing bool
	active  sync.WaitGroup
}

func newServer(r *mandel.Renderer, logger *slog.Logger) *server {
	s := &server{
		r:      r,
		logger: logger,
		mux:    http.NewServeMux(),
		pr:     message.NewPrinter(language.English),
	}
	s.mux.HandleFunc("GET /render.png", s.handleRender)
	s.mux.HandleFunc("GET /ws", s.handleWebsocket)
	return s
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// begin registers a handler with the server. It returns false once wait has
// been called; otherwise the caller must call s.active.Done when finished.
func (s *server) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closing {
		return false
	}
	s.active.Add(1)
	return true
}

// wait refuses new requests and blocks until every handler in flight has
// finished.
func (s *server) wait() {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.active.Wait()
}

func (s *server) render(p mandel.Preset, fn mandel.ProgressFunc) (*mandel.Buffer, error) {
	start := time.Now()
	buf, err := s.r.RenderWithProgress(p.Viewport, p.Grid, p.Params, fn)
	if err != nil {
		return nil, err
	}
	s.logger.Info("rendered",
		"preset", p.Name,
		"pixels", s.pr.Sprintf("%d", p.Grid.Pixels()),
		"max_iter", p.Params.MaxIter,
		"elapsed", time.Since(start))
	return buf, nil
}

func badRequest(err error) bool {
	return errors.Is(err, mandel.ErrInvalidParameters) || errors.Is(err, errUnknownPreset)
}

func (s *server) handleRender(w http.ResponseWriter, r *http.Request) {
	if !s.begin() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.active.Done()

	q := r.URL.Query()
	req := renderRequest{Preset: q.Get("preset")}
	for _, f := range []struct {
		key string
		dst *int
	}{{"w", &req.Width}, {"h", &req.Height}, {"iter", &req.MaxIter}} {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid %s: %q", f.key, v), http.StatusBadRequest)
			return
		}
		*f.dst = n
	}

	p, err := req.resolve()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	buf, err := s.render(p, nil)
	if err != nil {
		status := http.StatusInternalServerError
		if badRequest(err) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}

	img, err := s.r.Convert(buf, mandel.SpaceHSV, mandel.SpaceRGB)
	if err != nil {
		s.logger.Error("convert", "err", err)
		http.Error(w, "conversion failed", http.StatusInternalServerError)
		return
	}

	var out bytes.Buffer
	if err := mimage.Encode(&out, img, mimage.FormatPNG); err != nil {
		s.logger.Error("encode", "err", err)
		http.Error(w, "encoding failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", mimage.FormatPNG.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(out.Len()))
	if _, err := out.WriteTo(w); err != nil {
		s.logger.Debug("write response", "err", err)
	}
}

func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	if !s.begin() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.active.Done()

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket accept", "err", err)
		return
	}
	defer func() { _ = c.CloseNow() }()

	ctx := r.Context()
	readCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	var req renderRequest
	err = wsjson.Read(readCtx, c, &req)
	cancel()
	if err != nil {
		s.logger.Debug("websocket read", "err", err)
		return
	}

	p, err := req.resolve()
	if err != nil {
		s.sendError(ctx, c, err)
		return
	}

	if err := s.stream(ctx, c, p); err != nil {
		s.logger.Debug("websocket stream", "err", err)
		return
	}
	_ = c.Close(websocket.StatusNormalClosure, "")
}

// stream renders p and reports progress on c. Progress updates are
// coalesced: a worker never blocks on the connection, and a slow client
// sees fewer updates.
func (s *server) stream(ctx context.Context, c *websocket.Conn, p mandel.Preset) error {
	total := p.Grid.Pixels()
	progress := make(chan int, 1)
	fn := func(done, _ int) {
		select {
		case progress <- done:
		default:
		}
	}

	type result struct {
		buf     *mandel.Buffer
		elapsed time.Duration
		err     error
	}
	resCh := make(chan result, 1)
	go func() {
		start := time.Now()
		buf, err := s.render(p, fn)
		resCh <- result{buf, time.Since(start), err}
	}()

	last := 0
	for {
		select {
		case done := <-progress:
			if done <= last {
				continue
			}
			last = done
			err := wsjson.Write(ctx, c, wsMessage{Type: "progress", Done: done, Total: total})
			if err != nil {
				// Renders cannot be interrupted; let it finish before returning.
				<-resCh
				return fmt.Errorf("write progress: %w", err)
			}

		case res := <-resCh:
			if res.err != nil {
				s.sendError(ctx, c, res.err)
				return nil
			}
			bounded, escaped := res.buf.Stats()
			return wsjson.Write(ctx, c, wsMessage{
				Type:      "done",
				Done:      total,
				Total:     total,
				Width:     res.buf.Width(),
				Height:    res.buf.Height(),
				Bounded:   bounded,
				Escaped:   escaped,
				ElapsedMS: float64(res.elapsed.Microseconds()) / 1000,
			})
		}
	}
}

func (s *server) sendError(ctx context.Context, c *websocket.Conn, err error) {
	if err := wsjson.Write(ctx, c, wsMessage{Type: "error", Error: err.Error()}); err != nil {
		s.logger.Debug("websocket write", "err", err)
		return
	}
	code := websocket.StatusInternalError
	if badRequest(err) {
		code = websocket.StatusPolicyViolation
	}
	_ = c.Close(code, "render rejected")
}
