package presenter

import (
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/reel-bot-go/ui/model"
)

// PreviewView shows the annotated region preview.
type PreviewView interface {
	UpdatePreview(img image.Image)
	PreviewReset()
}

// PreviewPresenter captures an annotated region preview off the UI thread
// and hands it to the view on the next tick.
type PreviewPresenter struct {
	model   *model.PreviewModel
	capture func() (image.Image, error)
	view    PreviewView
	logger  *slog.Logger
	busy    atomic.Bool
}

func NewPreviewPresenter(m *model.PreviewModel, capture func() (image.Image, error), view PreviewView, logger *slog.Logger) *PreviewPresenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PreviewPresenter{model: m, capture: capture, view: view, logger: logger}
}

// Request starts a capture unless one is in flight.
func (p *PreviewPresenter) Request() {
	if p == nil || p.capture == nil || p.model == nil {
		return
	}
	if !p.busy.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer p.busy.Store(false)
		img, err := p.capture()
		p.model.Set(img, err)
	}()
}

// Tick forwards a finished capture to the view.
func (p *PreviewPresenter) Tick(time.Time) {
	if p == nil || p.model == nil || p.view == nil {
		return
	}
	img, ok, err := p.model.Take()
	if !ok {
		return
	}
	if err != nil {
		p.logger.Warn("region preview failed", "error", err)
		p.view.PreviewReset()
		return
	}
	p.view.UpdatePreview(img)
}
