//go:build !windows

// ABOUTME: Fallback backend for platforms without Core Audio.
// ABOUTME: Lists playback and capture devices through malgo; volume control reports ErrUnsupported.

package audio

import (
	"fmt"

	"github.com/gen2brain/malgo"

	"github.com/777genius/vccli/internal/volume"
)

type malgoBackend struct{}

func newPlatformBackend() (Backend, error) {
	return &malgoBackend{}, nil
}

func (b *malgoBackend) Close() error { return nil }

func (b *malgoBackend) Sessions(volume.Flow) ([]*volume.Session, error) {
	return nil, ErrUnsupported
}

func deviceType(f volume.Flow) malgo.DeviceType {
	if f == volume.Capture {
		return malgo.Capture
	}
	return malgo.Playback
}

func (b *malgoBackend) Endpoints(flow volume.Flow) ([]*volume.Endpoint, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to init audio context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	var endpoints []*volume.Endpoint
	for _, f := range expandFlow(flow) {
		devices, err := ctx.Devices(deviceType(f))
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate %s devices: %w", f, err)
		}
		for _, dev := range devices {
			endpoints = append(endpoints, volume.NewEndpoint(unsupportedHandle{}, volume.EndpointInfo{
				ID:        dev.ID.String(),
				Name:      dev.Name(),
				Flow:      f,
				IsDefault: dev.IsDefault != 0,
			}))
		}
	}
	return endpoints, nil
}

func (b *malgoBackend) DefaultEndpoint(flow volume.Flow) (*volume.Endpoint, error) {
	endpoints, err := b.Endpoints(flow)
	if err != nil {
		return nil, err
	}
	for _, e := range endpoints {
		if e.Info.IsDefault {
			return e, nil
		}
	}
	return nil, fmt.Errorf("%w: no default %s device", ErrNotFound, flow)
}

type unsupportedHandle struct{}

func (unsupportedHandle) Level() (float32, error) { return 0, ErrUnsupported }
func (unsupportedHandle) SetLevel(float32) error  { return ErrUnsupported }
func (unsupportedHandle) Muted() (bool, error)    { return false, ErrUnsupported }
func (unsupportedHandle) SetMuted(bool) error     { return ErrUnsupported }
func (unsupportedHandle) Release()                {}
