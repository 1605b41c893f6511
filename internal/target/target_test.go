package target

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/777genius/vccli/internal/volume"
	"github.com/777genius/vccli/internal/volume/volumetest"
)

const speakersID = "{0.0.0.00000000}.{b3f8fa53-0004-438e-9003-51a46e139bfc}"

func session(info volume.SessionInfo) *volume.Session {
	return volume.NewSession(volumetest.NewHandle(1, false), info)
}

func endpoint(info volume.EndpointInfo) *volume.Endpoint {
	return volume.NewEndpoint(volumetest.NewHandle(1, false), info)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		hasPID  bool
		pid     uint32
		hasGUID bool
	}{
		{name: "pid", input: "1234", hasPID: true, pid: 1234},
		{name: "pid with spaces", input: "  88 ", hasPID: true, pid: 88},
		{name: "process name", input: "discord.exe"},
		{name: "bare guid", input: "b3f8fa53-0004-438e-9003-51a46e139bfc", hasGUID: true},
		{name: "braced guid", input: "{b3f8fa53-0004-438e-9003-51a46e139bfc}", hasGUID: true},
		{name: "endpoint id", input: speakersID, hasGUID: true},
		{name: "negative number is a name", input: "-1"},
		{name: "pid overflow is a name", input: "99999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			assert.Equal(t, tt.hasPID, got.HasPID)
			assert.Equal(t, tt.pid, got.PID)
			assert.Equal(t, tt.hasGUID, got.HasGUID)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	assert.True(t, Parse("   ").IsEmpty())
	assert.False(t, Parse("x").IsEmpty())
}

func TestCompareProcessName(t *testing.T) {
	tests := []struct {
		l, r string
		want bool
	}{
		{"Discord.exe", "discord", true},
		{"discord", "DISCORD.EXE", true},
		{"chrome.exe", "chrome.exe", true},
		{"chrome", "firefox", false},
		{"spotify.exe", "spotify.app", true},
		{"", "x", false},
	}

	for _, tt := range tests {
		t.Run(tt.l+"/"+tt.r, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareProcessName(tt.l, tt.r))
		})
	}
}

func TestMatchSession(t *testing.T) {
	s := session(volume.SessionInfo{
		PID:                1234,
		ProcessName:        "Discord",
		DisplayName:        "Discord Voice",
		SessionIdentifier:  `{0.0.0.00000000}.{guid}|\Device\HarddiskVolume3\Discord.exe%b{00000000-0000-0000-0000-000000000000}`,
		InstanceIdentifier: `instance-1`,
	})

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"pid", "1234", true},
		{"other pid", "4321", false},
		{"process name", "discord.exe", true},
		{"display name", "discord voice", true},
		{"session identifier", `{0.0.0.00000000}.{guid}|\Device\HarddiskVolume3\Discord.exe%b{00000000-0000-0000-0000-000000000000}`, true},
		{"instance identifier", "INSTANCE-1", true},
		{"unrelated", "spotify", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input).MatchSession(s))
		})
	}
}

func TestMatchSessionSkipsEmptyFields(t *testing.T) {
	s := session(volume.SessionInfo{PID: 0, SystemSounds: true, DisplayName: "System Sounds"})
	assert.True(t, Parse("0").MatchSession(s))
	assert.True(t, Parse("system sounds").MatchSession(s))
	assert.False(t, Parse("instance").MatchSession(s))
}

func TestMatchEndpoint(t *testing.T) {
	e := endpoint(volume.EndpointInfo{
		ID:          speakersID,
		Name:        "Speakers (Realtek High Definition Audio)",
		Description: "Speakers",
		Flow:        volume.Render,
	})

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"full id", speakersID, true},
		{"full id upper", "{0.0.0.00000000}.{B3F8FA53-0004-438E-9003-51A46E139BFC}", true},
		{"bare guid", "b3f8fa53-0004-438e-9003-51a46e139bfc", true},
		{"braced guid", "{b3f8fa53-0004-438e-9003-51a46e139bfc}", true},
		{"friendly name", "speakers (realtek high definition audio)", true},
		{"description", "Speakers", true},
		{"other guid", "a3f8fa53-0004-438e-9003-51a46e139bfc", false},
		{"pid never matches a device", "1234", false},
		{"partial name", "Realtek", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input).MatchEndpoint(e))
		})
	}
}

func TestNewSelector(t *testing.T) {
	sel := NewSelector(false, false, false, false)
	assert.Equal(t, Any(), sel)

	sel = NewSelector(true, false, false, false)
	assert.True(t, sel.Devices)
	assert.False(t, sel.Sessions)

	sel = NewSelector(false, true, false, true)
	assert.False(t, sel.Devices)
	assert.True(t, sel.Sessions)
	assert.Equal(t, volume.Capture, sel.Flow)

	sel = NewSelector(true, true, true, true)
	assert.Equal(t, Any(), sel)

	sel = NewSelector(false, false, true, false)
	assert.Equal(t, volume.Render, sel.Flow)
}
