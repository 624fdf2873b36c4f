package model

import (
	"image"
	"sync"
)

// PreviewModel holds the most recent region preview. It is written from a
// capture goroutine and drained on the UI thread.
type PreviewModel struct {
	mu      sync.Mutex
	img     image.Image
	err     error
	pending bool
}

func NewPreviewModel() *PreviewModel { return &PreviewModel{} }

// Set stores a new preview result and marks it pending.
func (m *PreviewModel) Set(img image.Image, err error) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.img, m.err, m.pending = img, err, true
	m.mu.Unlock()
}

// Take returns the pending preview once; ok is false when nothing new arrived.
func (m *PreviewModel) Take() (img image.Image, ok bool, err error) {
	if m == nil {
		return nil, false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.pending {
		return nil, false, nil
	}
	m.pending = false
	return m.img, true, m.err
}
