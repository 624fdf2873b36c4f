package capture

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
	"time"
)

// Stats summarises capture behaviour for instrumentation.
type Stats struct {
	Captures    uint64
	Failures    uint64
	AvgCapture  time.Duration
	LastCapture time.Time
}

// Source is the frame source used by the perception layer. It validates the
// requested rectangle, delegates to a Grabber and keeps capture statistics.
// Safe for concurrent use.
type Source struct {
	grabber Grabber
	logger  *slog.Logger

	captures     atomic.Uint64
	failures     atomic.Uint64
	captureNanos atomic.Uint64
	lastUnix     atomic.Int64
}

func NewSource(grabber Grabber, logger *slog.Logger) *Source {
	return &Source{grabber: grabber, logger: logger}
}

// Capture returns the pixels of rect. The returned frame's Rect equals rect.
func (s *Source) Capture(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		s.failures.Add(1)
		return nil, ErrEmptyRect
	}
	start := time.Now()
	img, err := s.grabber.Grab(rect)
	if err != nil {
		s.failures.Add(1)
		return nil, err
	}
	s.captureNanos.Add(uint64(time.Since(start).Nanoseconds()))
	s.captures.Add(1)
	s.lastUnix.Store(start.UnixNano())
	return rebase(img, rect), nil
}

// Release hands a frame back for reuse once a check is done with it.
func (s *Source) Release(img *image.RGBA) { RecycleFrame(img) }

func (s *Source) Stats() Stats {
	captures := s.captures.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(s.captureNanos.Load() / captures)
	}
	var last time.Time
	if ns := s.lastUnix.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return Stats{
		Captures:    captures,
		Failures:    s.failures.Load(),
		AvgCapture:  avg,
		LastCapture: last,
	}
}

// LogStats writes capture statistics at debug level every interval until ctx ends.
func (s *Source) LogStats(ctx context.Context, interval time.Duration) {
	if s.logger == nil || interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st := s.Stats()
			s.logger.Debug("capture.stats",
				"captures", st.Captures,
				"failures", st.Failures,
				"avg_capture", st.AvgCapture,
			)
		}
	}
}
