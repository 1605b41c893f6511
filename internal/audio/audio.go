// ABOUTME: Audio session and endpoint discovery on top of a platform backend.
// ABOUTME: The Manager resolves targets to volume controllers and lists what is available.

package audio

import (
	"errors"
	"fmt"

	"github.com/777genius/vccli/internal/logging"
	"github.com/777genius/vccli/internal/target"
	"github.com/777genius/vccli/internal/volume"
)

var (
	// ErrNotFound is returned when no session or device matches a target
	ErrNotFound = errors.New("no matching process or device")
	// ErrUnsupported is returned by backends that cannot control volume
	ErrUnsupported = errors.New("volume control is not supported on this platform")
)

// Backend enumerates the audio objects of one platform.
// Every returned controller is owned by the caller and must be released.
type Backend interface {
	Sessions(flow volume.Flow) ([]*volume.Session, error)
	Endpoints(flow volume.Flow) ([]*volume.Endpoint, error)
	DefaultEndpoint(flow volume.Flow) (*volume.Endpoint, error)
	Close() error
}

// Manager resolves targets against a backend
type Manager struct {
	backend Backend
}

// NewManager wraps a backend
func NewManager(b Backend) *Manager {
	return &Manager{backend: b}
}

// Open creates a manager over the platform backend
func Open() (*Manager, error) {
	b, err := newPlatformBackend()
	if err != nil {
		return nil, fmt.Errorf("failed to open audio backend: %w", err)
	}
	return NewManager(b), nil
}

// Close releases the backend
func (m *Manager) Close() error {
	return m.backend.Close()
}

// Resolve returns every controller matched by t, sessions before devices.
func (m *Manager) Resolve(t target.Target, sel target.Selector) ([]volume.Controller, error) {
	var matches []volume.Controller

	if sel.Sessions {
		sessions, err := m.backend.Sessions(sel.Flow)
		if err != nil && !errors.Is(err, ErrUnsupported) {
			return nil, fmt.Errorf("failed to enumerate sessions: %w", err)
		}
		for _, s := range sessions {
			if t.MatchSession(s) {
				logging.Debug("Target %q matched session pid=%d name=%s", t.Raw, s.Info.PID, s.Name())
				matches = append(matches, s)
			} else {
				s.Release()
			}
		}
	}

	if sel.Devices {
		endpoints, err := m.backend.Endpoints(sel.Flow)
		if err != nil {
			ReleaseAll(matches)
			return nil, fmt.Errorf("failed to enumerate devices: %w", err)
		}
		for _, e := range endpoints {
			if t.MatchEndpoint(e) {
				logging.Debug("Target %q matched device id=%s name=%s", t.Raw, e.Info.ID, e.Name())
				matches = append(matches, e)
			} else {
				e.Release()
			}
		}
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: couldn't find a process or device with identifier '%s'", ErrNotFound, t.Raw)
	}
	return matches, nil
}

// Default returns the default device for a flow. All is treated as Render.
func (m *Manager) Default(flow volume.Flow) (*volume.Endpoint, error) {
	if flow == volume.All {
		flow = volume.Render
	}
	e, err := m.backend.DefaultEndpoint(flow)
	if err != nil {
		return nil, fmt.Errorf("failed to get default %s device: %w", flow, err)
	}
	return e, nil
}

// Listing holds everything the backend reported
type Listing struct {
	Sessions []*volume.Session
	Devices  []*volume.Endpoint
}

// Release frees every controller in the listing
func (l *Listing) Release() {
	for _, s := range l.Sessions {
		s.Release()
	}
	for _, e := range l.Devices {
		e.Release()
	}
}

// List returns all sessions and devices allowed by sel.
// Backends that cannot enumerate sessions still list devices.
func (m *Manager) List(sel target.Selector) (*Listing, error) {
	l := &Listing{}
	if sel.Sessions {
		sessions, err := m.backend.Sessions(sel.Flow)
		if err != nil {
			if !errors.Is(err, ErrUnsupported) {
				return nil, fmt.Errorf("failed to enumerate sessions: %w", err)
			}
			logging.Debug("Session listing unavailable: %v", err)
		}
		l.Sessions = sessions
	}
	if sel.Devices {
		endpoints, err := m.backend.Endpoints(sel.Flow)
		if err != nil {
			l.Release()
			return nil, fmt.Errorf("failed to enumerate devices: %w", err)
		}
		l.Devices = endpoints
	}
	return l, nil
}

// ReleaseAll frees a slice of controllers
func ReleaseAll(cs []volume.Controller) {
	for _, c := range cs {
		c.Release()
	}
}

// expandFlow splits All into its concrete directions
func expandFlow(f volume.Flow) []volume.Flow {
	if f == volume.All {
		return []volume.Flow{volume.Render, volume.Capture}
	}
	return []volume.Flow{f}
}
