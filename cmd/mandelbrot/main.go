// Command mandelbrot renders the Mandelbrot set to an image file.
//
// Usage:
//
//	mandelbrot [flags] [output]
//
// The output format follows the file extension (.jpg, .png, .bmp, .tif);
// the default output is mandelbrot.jpg. Without flags the reference render
// is produced: 12800x7200 pixels at 10000 iterations. Plane, grid and
// iteration flags override the selected preset.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/mandel"
	mimage "github.com/gogpu/mandel/internal/image"
)

const defaultOutput = "mandelbrot.jpg"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "mandelbrot: %v\n", err)
		os.Exit(1)
	}
}

// config is a fully resolved command line.
type config struct {
	preset      string
	viewport    mandel.Viewport
	grid        mandel.Grid
	params      mandel.IterationParams
	workers     int
	chunk       int
	quality     int
	supersample int
	caption     bool
	verbose     bool
	version     bool
	output      string
}

// parseConfig parses args on top of the named preset.
func parseConfig(args []string, stderr io.Writer) (config, error) {
	fs := flag.NewFlagSet("mandelbrot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: mandelbrot [flags] [output]\n\npresets: %s\n\nflags:\n",
			strings.Join(mandel.PresetNames(), ", "))
		fs.PrintDefaults()
	}

	var (
		preset      = fs.String("preset", "reference", "named view to start from")
		top         = fs.Float64("top", 0, "imaginary coordinate of the top row")
		left        = fs.Float64("left", 0, "real coordinate of the left column")
		width       = fs.Float64("width", 0, "extent along the real axis")
		height      = fs.Float64("height", 0, "extent along the imaginary axis")
		size        = fs.String("size", "", "image size in pixels, WxH")
		iter        = fs.Int("iter", 0, "maximum iterations per pixel")
		threshold   = fs.Float64("threshold", 0, "squared escape radius")
		workers     = fs.Int("workers", 0, "worker goroutines (0 = GOMAXPROCS)")
		chunk       = fs.Int("chunk", 0, "pixels per scheduled chunk (0 = 4096)")
		quality     = fs.Int("quality", mimage.DefaultJPEGQuality, "JPEG quality 1-100")
		supersample = fs.Int("supersample", 1, "render at N times the size and downscale")
		caption     = fs.Bool("caption", false, "annotate the image with the render parameters")
		verbose     = fs.Bool("v", false, "debug logging")
		version     = fs.Bool("version", false, "print the version and exit")
	)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}
	if fs.NArg() > 1 {
		return config{}, fmt.Errorf("expected at most one output path, got %d arguments", fs.NArg())
	}

	p, ok := mandel.LookupPreset(*preset)
	if !ok {
		return config{}, fmt.Errorf("unknown preset %q (have %s)", *preset, strings.Join(mandel.PresetNames(), ", "))
	}

	cfg := config{
		preset:      p.Name,
		viewport:    p.Viewport,
		grid:        p.Grid,
		params:      p.Params,
		workers:     *workers,
		chunk:       *chunk,
		quality:     *quality,
		supersample: *supersample,
		caption:     *caption,
		verbose:     *verbose,
		version:     *version,
		output:      defaultOutput,
	}
	if fs.NArg() == 1 {
		cfg.output = fs.Arg(0)
	}

	if *size != "" {
		w, h, err := parseSize(*size)
		if err != nil {
			return config{}, err
		}
		cfg.grid = mandel.Grid{Width: w, Height: h}
	}

	// Only flags given explicitly override the preset.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "top":
			cfg.viewport.Top = *top
		case "left":
			cfg.viewport.Left = *left
		case "width":
			cfg.viewport.Width = *width
		case "height":
			cfg.viewport.Height = *height
		case "iter":
			cfg.params.MaxIter = *iter
		case "threshold":
			cfg.params.EscapeThresholdSquared = *threshold
		}
	})

	if cfg.supersample < 1 {
		return config{}, fmt.Errorf("supersample %d must be at least 1", cfg.supersample)
	}
	if _, ok := mimage.FormatFromPath(cfg.output); !ok {
		return config{}, fmt.Errorf("%w: %q", mimage.ErrUnsupportedFormat, cfg.output)
	}
	return cfg, nil
}

// parseSize parses a WxH pixel size such as "640x480".
func parseSize(s string) (w, h int, err error) {
	ws, hs, ok := strings.Cut(s, "x")
	if ok {
		w, err = strconv.Atoi(ws)
		if err == nil {
			h, err = strconv.Atoi(hs)
		}
	}
	if !ok || err != nil {
		return 0, 0, fmt.Errorf("invalid size %q, want WxH", s)
	}
	return w, h, nil
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseConfig(args, stderr)
	if err != nil {
		return err
	}
	if cfg.version {
		_, err := fmt.Fprintf(stdout, "mandelbrot %s\n", mandel.Version)
		return err
	}

	level := slog.LevelInfo
	if cfg.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	mandel.SetLogger(logger)
	defer mandel.SetLogger(nil)

	r := mandel.NewRenderer(mandel.WithWorkers(cfg.workers), mandel.WithChunkPixels(cfg.chunk))
	defer r.Close()

	renderGrid := mandel.Grid{
		Width:  cfg.grid.Width * cfg.supersample,
		Height: cfg.grid.Height * cfg.supersample,
	}

	pr := message.NewPrinter(language.English)
	logger.Info("rendering",
		"preset", cfg.preset,
		"grid", fmt.Sprintf("%dx%d", renderGrid.Width, renderGrid.Height),
		"pixels", pr.Sprintf("%d", renderGrid.Pixels()),
		"max_iter", cfg.params.MaxIter,
		"workers", r.Workers())

	start := time.Now()
	buf, err := r.Render(cfg.viewport, renderGrid, cfg.params)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	elapsed := time.Since(start)

	bounded, escaped := buf.Stats()
	logger.Info("render finished",
		"elapsed_ms", float64(elapsed.Microseconds())/1000,
		"bounded", pr.Sprintf("%d", bounded),
		"escaped", pr.Sprintf("%d", escaped))

	img, err := r.Convert(buf, mandel.SpaceHSV, mandel.SpaceRGB)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	if cfg.supersample > 1 {
		img = mimage.Downscale(img, cfg.grid.Width, cfg.grid.Height)
	}
	if cfg.caption {
		text := captionText(cfg, elapsed)
		size := max(10, float64(cfg.grid.Height)/40)
		if err := mimage.Caption(img, text, size); err != nil {
			return fmt.Errorf("caption: %w", err)
		}
	}

	if err := mimage.Save(img, cfg.output, mimage.WithQuality(cfg.quality)); err != nil {
		return fmt.Errorf("write %s: %w", cfg.output, err)
	}

	logger.Info("saved", "path", cfg.output)
	return nil
}

// captionText describes a render in one line.
func captionText(cfg config, elapsed time.Duration) string {
	v := cfg.viewport
	return fmt.Sprintf("re [%g, %g]  im [%g, %g]  %dx%d  %d iter  %s",
		v.Left, v.Left+v.Width, v.Top, v.Top+v.Height,
		cfg.grid.Width, cfg.grid.Height, cfg.params.MaxIter,
		elapsed.Round(time.Millisecond))
}
