package audio_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/777genius/vccli/internal/audio"
	"github.com/777genius/vccli/internal/audio/audiotest"
	"github.com/777genius/vccli/internal/target"
	"github.com/777genius/vccli/internal/volume"
	"github.com/777genius/vccli/internal/volume/volumetest"
)

type fixture struct {
	backend  *audiotest.Backend
	discord  *volumetest.Handle
	chrome1  *volumetest.Handle
	chrome2  *volumetest.Handle
	speakers *volumetest.Handle
	mic      *volumetest.Handle
}

func newFixture() *fixture {
	b := &audiotest.Backend{}
	f := &fixture{backend: b}
	f.discord = b.Session(volume.SessionInfo{PID: 100, ProcessName: "Discord", Flow: volume.Render, DeviceName: "Speakers"}, 0.5, false)
	f.chrome1 = b.Session(volume.SessionInfo{PID: 200, ProcessName: "chrome", Flow: volume.Render}, 0.8, false)
	f.chrome2 = b.Session(volume.SessionInfo{PID: 201, ProcessName: "chrome", Flow: volume.Capture}, 0.8, false)
	f.speakers = b.Device(volume.EndpointInfo{
		ID:        "{0.0.0.00000000}.{b3f8fa53-0004-438e-9003-51a46e139bfc}",
		Name:      "Speakers (Realtek)",
		Flow:      volume.Render,
		IsDefault: true,
	}, 0.3, false)
	f.mic = b.Device(volume.EndpointInfo{
		ID:        "{0.0.1.00000000}.{c1d2e3f4-0004-438e-9003-51a46e139bfc}",
		Name:      "Microphone (USB)",
		Flow:      volume.Capture,
		IsDefault: true,
	}, 0.9, true)
	return f
}

func TestResolveByPID(t *testing.T) {
	f := newFixture()
	m := audio.NewManager(f.backend)

	got, err := m.Resolve(target.Parse("100"), target.Any())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Discord", got[0].Name())
	assert.Equal(t, volume.SessionKind, got[0].Kind())

	// every non-matching controller was released
	assert.Equal(t, 1, f.chrome1.Released())
	assert.Equal(t, 1, f.chrome2.Released())
	assert.Equal(t, 1, f.speakers.Released())
	assert.Equal(t, 0, f.discord.Released())
}

func TestResolveReturnsAllNameMatches(t *testing.T) {
	f := newFixture()
	m := audio.NewManager(f.backend)

	got, err := m.Resolve(target.Parse("chrome.exe"), target.Any())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestResolveHonorsFlow(t *testing.T) {
	f := newFixture()
	m := audio.NewManager(f.backend)

	got, err := m.Resolve(target.Parse("chrome"), target.NewSelector(false, false, false, true))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, volume.Capture, got[0].Flow())
}

func TestResolveDevice(t *testing.T) {
	f := newFixture()
	m := audio.NewManager(f.backend)

	got, err := m.Resolve(target.Parse("b3f8fa53-0004-438e-9003-51a46e139bfc"), target.Any())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, volume.DeviceKind, got[0].Kind())
	assert.Equal(t, "Speakers (Realtek)", got[0].Name())
}

func TestResolveSessionsOnlySkipsDevices(t *testing.T) {
	f := newFixture()
	m := audio.NewManager(f.backend)

	_, err := m.Resolve(target.Parse("Speakers (Realtek)"), target.NewSelector(false, true, false, false))
	require.Error(t, err)
	assert.True(t, errors.Is(err, audio.ErrNotFound))
}

func TestResolveNotFound(t *testing.T) {
	f := newFixture()
	m := audio.NewManager(f.backend)

	_, err := m.Resolve(target.Parse("spotify"), target.Any())
	require.Error(t, err)
	assert.ErrorIs(t, err, audio.ErrNotFound)
	assert.Contains(t, err.Error(), "couldn't find a process or device with identifier 'spotify'")
}

func TestResolveToleratesUnsupportedSessions(t *testing.T) {
	f := newFixture()
	f.backend.SessionErr = audio.ErrUnsupported
	m := audio.NewManager(f.backend)

	got, err := m.Resolve(target.Parse("Microphone (USB)"), target.Any())
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestResolveDeviceErrorReleasesMatches(t *testing.T) {
	f := newFixture()
	f.backend.DeviceErr = errors.New("enumerator gone")
	m := audio.NewManager(f.backend)

	_, err := m.Resolve(target.Parse("Discord"), target.Any())
	require.Error(t, err)
	assert.Equal(t, 1, f.discord.Released())
}

func TestDefault(t *testing.T) {
	f := newFixture()
	m := audio.NewManager(f.backend)

	e, err := m.Default(volume.All)
	require.NoError(t, err)
	assert.Equal(t, "Speakers (Realtek)", e.Name())

	e, err = m.Default(volume.Capture)
	require.NoError(t, err)
	assert.Equal(t, "Microphone (USB)", e.Name())
}

func TestList(t *testing.T) {
	f := newFixture()
	m := audio.NewManager(f.backend)

	l, err := m.List(target.Any())
	require.NoError(t, err)
	assert.Len(t, l.Sessions, 3)
	assert.Len(t, l.Devices, 2)

	l.Release()
	assert.Equal(t, 1, f.discord.Released())
	assert.Equal(t, 1, f.mic.Released())
}

func TestListWithoutSessionSupport(t *testing.T) {
	f := newFixture()
	f.backend.SessionErr = audio.ErrUnsupported
	m := audio.NewManager(f.backend)

	l, err := m.List(target.Any())
	require.NoError(t, err)
	assert.Empty(t, l.Sessions)
	assert.Len(t, l.Devices, 2)
}

func TestClose(t *testing.T) {
	f := newFixture()
	m := audio.NewManager(f.backend)
	require.NoError(t, m.Close())
	assert.True(t, f.backend.Closed)
}
