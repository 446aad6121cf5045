package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"sync"
	"time"

	"github.com/MrJamesThe3rd/invoicer/internal/render"
)

var (
	ErrNoSurface      = errors.New("no rendered invoice to export")
	ErrPrintBlocked   = errors.New("print context could not be opened")
	// ErrCanvasTooLarge is returned instead of allocating a bitmap larger
	// than the rasterizer's pixel budget.
	ErrCanvasTooLarge = errors.New("invoice is too large to rasterize")
)

const (
	DefaultSettleDelay = 500 * time.Millisecond
	DefaultScale       = 2
)

type Config struct {
	// SettleDelay is how long a written print document is given to lay
	// out before printing.
	SettleDelay time.Duration
	Scale       float64
}

// Service runs the two export operations on a rendered surface.
type Service struct {
	raster   *Rasterizer
	notifier Notifier
	settle   time.Duration
	now      func() time.Time

	mu        sync.Mutex
	lastStamp int64
}

// NewService creates a new export Service. A nil notifier reports through
// slog only.
func NewService(cfg Config, notifier Notifier) (*Service, error) {
	if cfg.Scale == 0 {
		cfg.Scale = DefaultScale
	}

	if notifier == nil {
		notifier = LogNotifier{}
	}

	raster, err := NewRasterizer(cfg.Scale)
	if err != nil {
		return nil, err
	}

	return &Service{
		raster:   raster,
		notifier: notifier,
		settle:   cfg.SettleDelay,
		now:      time.Now,
	}, nil
}

// Print writes the surface as a standalone document into a fresh print
// context, lets it settle, and prints it. Once opened, the context is always
// closed, whether printing succeeded or not.
func (s *Service) Print(ctx context.Context, surface *render.Surface, printer Printer) error {
	if surface == nil {
		slog.Warn("print requested without a rendered surface")
		return ErrNoSurface
	}

	pc, err := printer.Open(ctx)
	if err != nil {
		slog.Error("failed to open print context", "error", err)
		s.notifier.Failure("Could not open a print window", err)

		return fmt.Errorf("%w: %w", ErrPrintBlocked, err)
	}

	defer func() {
		if err := pc.Close(); err != nil {
			slog.Warn("failed to close print context", "error", err)
		}
	}()

	if err := s.print(ctx, pc, NewPrintDocument(ctx, surface)); err != nil {
		slog.Error("failed to print invoice", "error", err)
		s.notifier.Failure("Failed to print invoice", err)

		return err
	}

	return nil
}

func (s *Service) print(ctx context.Context, pc PrintContext, doc *PrintDocument) error {
	if err := pc.Write(doc); err != nil {
		return fmt.Errorf("writing print document: %w", err)
	}

	timer := time.NewTimer(s.settle)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("waiting for print document: %w", ctx.Err())
	case <-timer.C:
	}

	if err := pc.Print(ctx); err != nil {
		return fmt.Errorf("printing: %w", err)
	}

	return nil
}

// ExportPNG rasterizes the surface and delivers it as
// invoice-<unix-millis>.png. A progress notice is shown for the duration
// and is dismissed on success and on failure. It returns the file name.
func (s *Service) ExportPNG(ctx context.Context, surface *render.Surface, dl Downloader) (string, error) {
	if surface == nil {
		slog.Warn("image export requested without a rendered surface")
		return "", ErrNoSurface
	}

	dismiss := s.notifier.Progress("Exporting invoice image...")

	filename, err := s.exportPNG(ctx, surface, dl)

	dismiss()

	if err != nil {
		slog.Error("failed to export invoice image", "error", err)
		s.notifier.Failure("Failed to export invoice image", err)

		return "", err
	}

	s.notifier.Success("Invoice image downloaded")

	return filename, nil
}

func (s *Service) exportPNG(ctx context.Context, surface *render.Surface, dl Downloader) (string, error) {
	img, err := s.raster.Rasterize(surface)
	if err != nil {
		return "", fmt.Errorf("rasterizing invoice: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}

	filename := fmt.Sprintf("invoice-%d.png", s.stamp())

	if err := dl.Download(ctx, filename, "image/png", buf.Bytes()); err != nil {
		return "", fmt.Errorf("downloading %s: %w", filename, err)
	}

	return filename, nil
}

// stamp returns the current Unix time in milliseconds, bumped when needed
// so that names stay unique within the process.
func (s *Service) stamp() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms := s.now().UnixMilli()
	if ms <= s.lastStamp {
		ms = s.lastStamp + 1
	}

	s.lastStamp = ms

	return ms
}
