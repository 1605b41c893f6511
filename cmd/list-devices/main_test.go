package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/777genius/vccli/internal/audio"
	"github.com/777genius/vccli/internal/audio/audiotest"
	"github.com/777genius/vccli/internal/volume"
)

func TestRunListsDevices(t *testing.T) {
	b := &audiotest.Backend{}
	speakers := b.Device(volume.EndpointInfo{ID: "{0.0.0.00000000}.{speakers}", Name: "Speakers", Flow: volume.Render, IsDefault: true}, 0.5, false)
	b.Device(volume.EndpointInfo{ID: "{0.0.0.00000000}.{hdmi}", Name: "HDMI", Flow: volume.Render}, 0.5, false)

	var out bytes.Buffer
	require.NoError(t, run(&out, func() (*audio.Manager, error) { return audio.NewManager(b), nil }))

	assert.Contains(t, out.String(), "Available audio output devices:")
	assert.Contains(t, out.String(), "  0: Speakers (default)\n     {0.0.0.00000000}.{speakers}\n")
	assert.Contains(t, out.String(), "  1: HDMI\n")
	assert.Contains(t, out.String(), "Available audio input devices:\n\n  (none)\n")
	assert.True(t, b.Closed)
	assert.Equal(t, 1, speakers.Released())
}

func TestRunClosesBackendOnListError(t *testing.T) {
	b := &audiotest.Backend{DeviceErr: errors.New("enumeration failed")}

	var out bytes.Buffer
	err := run(&out, func() (*audio.Manager, error) { return audio.NewManager(b), nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enumeration failed")
	assert.True(t, b.Closed)
	assert.Empty(t, out.String())
}

func TestRunOpenError(t *testing.T) {
	err := run(&bytes.Buffer{}, func() (*audio.Manager, error) { return nil, audio.ErrUnsupported })
	assert.ErrorIs(t, err, audio.ErrUnsupported)
}
