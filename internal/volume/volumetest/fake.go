// Package volumetest provides an in-memory volume.Handle for tests.
package volumetest

import "sync"

// Handle is an in-memory volume.Handle
type Handle struct {
	mu       sync.Mutex
	level    float32
	muted    bool
	released int

	// Err, when set, is returned by every call
	Err error
}

// NewHandle returns a handle at the given level and mute state
func NewHandle(level float32, muted bool) *Handle {
	return &Handle{level: level, muted: muted}
}

func (h *Handle) Level() (float32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return 0, h.Err
	}
	return h.level, nil
}

func (h *Handle) SetLevel(level float32) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return h.Err
	}
	h.level = level
	return nil
}

func (h *Handle) Muted() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return false, h.Err
	}
	return h.muted, nil
}

func (h *Handle) SetMuted(muted bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.Err != nil {
		return h.Err
	}
	h.muted = muted
	return nil
}

func (h *Handle) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released++
}

// Released reports how many times Release was called
func (h *Handle) Released() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}
