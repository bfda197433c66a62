// Command mandelserve renders Mandelbrot images over HTTP.
//
// Endpoints:
//
//	GET /render.png?preset=classic&w=640&h=480&iter=256
//	    renders and returns a PNG
//	GET /ws
//	    websocket; the client sends one JSON render request and receives
//	    progress messages followed by a summary
//
// All requests share one renderer and its worker pool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gogpu/mandel"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	workers := flag.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	mandel.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, *workers, logger); err != nil {
		logger.Error("mandelserve", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, addr string, workers int, logger *slog.Logger) error {
	r := mandel.NewRenderer(mandel.WithWorkers(workers))
	s := newServer(r, logger)
	defer func() {
		s.wait()
		r.Close()
	}()

	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Info("listening", "addr", addr, "workers", r.Workers(), "version", mandel.Version)

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
