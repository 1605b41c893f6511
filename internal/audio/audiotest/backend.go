// Package audiotest provides an in-memory audio.Backend.
package audiotest

import (
	"fmt"

	"github.com/777genius/vccli/internal/audio"
	"github.com/777genius/vccli/internal/volume"
	"github.com/777genius/vccli/internal/volume/volumetest"
)

// SessionSpec describes a fake session
type SessionSpec struct {
	Info   volume.SessionInfo
	Handle *volumetest.Handle
}

// DeviceSpec describes a fake device
type DeviceSpec struct {
	Info   volume.EndpointInfo
	Handle *volumetest.Handle
}

// Backend hands out fresh controllers over shared fake handles,
// so state survives across enumerations like real COM objects do.
type Backend struct {
	SessionSpecs []SessionSpec
	DeviceSpecs  []DeviceSpec

	// SessionErr and DeviceErr are returned by the matching enumeration
	SessionErr error
	DeviceErr  error

	Closed bool
}

// Session adds a session and returns its handle
func (b *Backend) Session(info volume.SessionInfo, level float32, muted bool) *volumetest.Handle {
	h := volumetest.NewHandle(level, muted)
	b.SessionSpecs = append(b.SessionSpecs, SessionSpec{Info: info, Handle: h})
	return h
}

// Device adds a device and returns its handle
func (b *Backend) Device(info volume.EndpointInfo, level float32, muted bool) *volumetest.Handle {
	h := volumetest.NewHandle(level, muted)
	b.DeviceSpecs = append(b.DeviceSpecs, DeviceSpec{Info: info, Handle: h})
	return h
}

func (b *Backend) Sessions(flow volume.Flow) ([]*volume.Session, error) {
	if b.SessionErr != nil {
		return nil, b.SessionErr
	}
	var out []*volume.Session
	for _, s := range b.SessionSpecs {
		if flow.Includes(s.Info.Flow) {
			out = append(out, volume.NewSession(s.Handle, s.Info))
		}
	}
	return out, nil
}

func (b *Backend) Endpoints(flow volume.Flow) ([]*volume.Endpoint, error) {
	if b.DeviceErr != nil {
		return nil, b.DeviceErr
	}
	var out []*volume.Endpoint
	for _, d := range b.DeviceSpecs {
		if flow.Includes(d.Info.Flow) {
			out = append(out, volume.NewEndpoint(d.Handle, d.Info))
		}
	}
	return out, nil
}

func (b *Backend) DefaultEndpoint(flow volume.Flow) (*volume.Endpoint, error) {
	for _, d := range b.DeviceSpecs {
		if d.Info.Flow == flow && d.Info.IsDefault {
			return volume.NewEndpoint(d.Handle, d.Info), nil
		}
	}
	return nil, fmt.Errorf("%w: no default %s device", audio.ErrNotFound, flow)
}

func (b *Backend) Close() error {
	b.Closed = true
	return nil
}
