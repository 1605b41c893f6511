// ABOUTME: Volume controllers for audio sessions and audio endpoints.
// ABOUTME: A Controller hides whether it drives a per-process session or a whole device.

package volume

import (
	"errors"
	"fmt"
)

// ErrLevelOutOfRange is returned when a level outside [0,1] is set
var ErrLevelOutOfRange = errors.New("volume level out of range")

// Flow is the direction of an audio endpoint
type Flow int

const (
	// Render is an output (playback) flow
	Render Flow = iota
	// Capture is an input (recording) flow
	Capture
	// All matches both directions
	All
)

// String returns the user-facing name of the flow
func (f Flow) String() string {
	switch f {
	case Render:
		return "Output"
	case Capture:
		return "Input"
	default:
		return ""
	}
}

// Includes reports whether f covers other
func (f Flow) Includes(other Flow) bool {
	return f == All || f == other
}

// Kind identifies the object behind a controller
type Kind int

const (
	SessionKind Kind = iota
	DeviceKind
)

func (k Kind) String() string {
	if k == DeviceKind {
		return "Device"
	}
	return "Session"
}

// Handle is the platform object a controller drives.
// Levels are scalars in [0,1].
type Handle interface {
	Level() (float32, error)
	SetLevel(level float32) error
	Muted() (bool, error)
	SetMuted(muted bool) error
	Release()
}

// Controller reads and changes the volume of one session or device
type Controller interface {
	Name() string
	Identifier() string
	Flow() Flow
	Kind() Kind

	Level() (float32, error)
	SetLevel(level float32) error
	Muted() (bool, error)
	SetMuted(muted bool) error

	Release()
}

type base struct {
	handle Handle
	name   string
	flow   Flow
}

func (b *base) Name() string { return b.name }
func (b *base) Flow() Flow   { return b.flow }

func (b *base) Level() (float32, error) {
	level, err := b.handle.Level()
	if err != nil {
		return 0, fmt.Errorf("failed to get volume of %s: %w", b.name, err)
	}
	return level, nil
}

func (b *base) SetLevel(level float32) error {
	if level < 0 || level > 1 {
		return fmt.Errorf("%w: %.3f", ErrLevelOutOfRange, level)
	}
	if err := b.handle.SetLevel(level); err != nil {
		return fmt.Errorf("failed to set volume of %s: %w", b.name, err)
	}
	return nil
}

func (b *base) Muted() (bool, error) {
	muted, err := b.handle.Muted()
	if err != nil {
		return false, fmt.Errorf("failed to get mute state of %s: %w", b.name, err)
	}
	return muted, nil
}

func (b *base) SetMuted(muted bool) error {
	if err := b.handle.SetMuted(muted); err != nil {
		return fmt.Errorf("failed to set mute state of %s: %w", b.name, err)
	}
	return nil
}

// Release frees the underlying handle. Safe to call more than once.
func (b *base) Release() {
	if b.handle != nil {
		b.handle.Release()
		b.handle = nil
	}
}

// SessionState mirrors AudioSessionState
type SessionState uint32

const (
	SessionInactive SessionState = iota
	SessionActive
	SessionExpired
)

func (s SessionState) String() string {
	switch s {
	case SessionActive:
		return "Active"
	case SessionExpired:
		return "Expired"
	default:
		return "Inactive"
	}
}

// SessionInfo describes an audio session
type SessionInfo struct {
	PID                uint32
	ProcessName        string
	DisplayName        string
	SessionIdentifier  string
	InstanceIdentifier string
	DeviceID           string
	DeviceName         string
	Flow               Flow
	State              SessionState
	SystemSounds       bool
}

// Session controls the volume of one application's audio session
type Session struct {
	base
	Info SessionInfo
}

// NewSession wraps a session volume handle
func NewSession(h Handle, info SessionInfo) *Session {
	name := info.ProcessName
	if name == "" {
		name = info.DisplayName
	}
	return &Session{
		base: base{handle: h, name: name, flow: info.Flow},
		Info: info,
	}
}

// Identifier returns the PID as a string
func (s *Session) Identifier() string { return fmt.Sprintf("%d", s.Info.PID) }
func (s *Session) Kind() Kind         { return SessionKind }

// EndpointInfo describes an audio device
type EndpointInfo struct {
	ID            string
	Name          string
	Description   string
	InterfaceName string
	Flow          Flow
	IsDefault     bool
}

// Endpoint controls the master volume of an audio device
type Endpoint struct {
	base
	Info EndpointInfo
}

// NewEndpoint wraps an endpoint volume handle
func NewEndpoint(h Handle, info EndpointInfo) *Endpoint {
	return &Endpoint{
		base: base{handle: h, name: info.Name, flow: info.Flow},
		Info: info,
	}
}

// Identifier returns the endpoint ID
func (e *Endpoint) Identifier() string { return e.Info.ID }
func (e *Endpoint) Kind() Kind         { return DeviceKind }
