package notifier

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/777genius/vccli/internal/config"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

type sent struct {
	title, message, icon string
}

func newRecordingNotifier(cfg *config.Config) (*Notifier, *[]sent) {
	var calls []sent
	n := New(cfg)
	n.send = func(title, message, icon string) error {
		calls = append(calls, sent{title, message, icon})
		return nil
	}
	return n, &calls
}

func TestFormatResults(t *testing.T) {
	tests := []struct {
		name        string
		results     []Result
		wantTitle   string
		wantMessage string
	}{
		{
			name:        "volume only",
			results:     []Result{{Name: "Discord", Volume: intPtr(40)}},
			wantTitle:   "🔊 Discord",
			wantMessage: "Volume 40",
		},
		{
			name:        "volume and mute",
			results:     []Result{{Name: "Speakers", Volume: intPtr(0), Muted: boolPtr(true)}},
			wantTitle:   "🔊 Speakers",
			wantMessage: "Volume 0, Muted",
		},
		{
			name:        "unmuted",
			results:     []Result{{Name: "Speakers", Muted: boolPtr(false)}},
			wantTitle:   "🔊 Speakers",
			wantMessage: "Unmuted",
		},
		{
			name:        "nothing changed",
			results:     []Result{{Name: "chrome"}},
			wantTitle:   "🔊 chrome",
			wantMessage: "unchanged",
		},
		{
			name: "several targets",
			results: []Result{
				{Name: "chrome", Volume: intPtr(20)},
				{Name: "chrome", Volume: intPtr(20), Muted: boolPtr(false)},
			},
			wantTitle:   "🔊 2 targets",
			wantMessage: "chrome: Volume 20\nchrome: Volume 20, Unmuted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, message := FormatResults(tt.results)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantMessage, message)
		})
	}
}

func TestSendResultsEmpty(t *testing.T) {
	n, calls := newRecordingNotifier(config.DefaultConfig())
	require.NoError(t, n.SendResults(nil))
	assert.Empty(t, *calls)
}

func TestSendResultsDropsMissingIcon(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Notify.AppIcon = "/nonexistent/icon.png"
	n, calls := newRecordingNotifier(cfg)

	require.NoError(t, n.SendResults([]Result{{Name: "Discord", Volume: intPtr(10)}}))
	require.Len(t, *calls, 1)
	assert.Equal(t, "", (*calls)[0].icon)
}

func TestSendResultsKeepsExistingIcon(t *testing.T) {
	icon := filepath.Join(t.TempDir(), "icon.png")
	require.NoError(t, os.WriteFile(icon, []byte("png"), 0644))

	cfg := config.DefaultConfig()
	cfg.Notify.AppIcon = icon
	n, calls := newRecordingNotifier(cfg)

	require.NoError(t, n.SendResults([]Result{{Name: "Discord", Muted: boolPtr(true)}}))
	require.Len(t, *calls, 1)
	assert.Equal(t, icon, (*calls)[0].icon)
	assert.Equal(t, "Muted", (*calls)[0].message)
}

func TestSendResultsPropagatesError(t *testing.T) {
	n := New(config.DefaultConfig())
	boom := errors.New("dbus unavailable")
	n.send = func(string, string, string) error { return boom }

	err := n.SendResults([]Result{{Name: "Discord", Volume: intPtr(10)}})
	assert.ErrorIs(t, err, boom)
}
