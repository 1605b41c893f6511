package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/gen2brain/beeep"

	"github.com/777genius/vccli/internal/config"
	"github.com/777genius/vccli/internal/logging"
	"github.com/777genius/vccli/internal/platform"
)

// Result is the state of one controller after vccli touched it
type Result struct {
	Name   string
	Kind   string // "Session" or "Device"
	Volume *int
	Muted  *bool
}

// Notifier sends desktop notifications
type Notifier struct {
	cfg  *config.Config
	send func(title, message, icon string) error
}

// New creates a new notifier
func New(cfg *config.Config) *Notifier {
	return &Notifier{
		cfg:  cfg,
		send: sendWithBeeep,
	}
}

// SendResults shows one notification summarising results.
// Nothing is sent for an empty result set.
func (n *Notifier) SendResults(results []Result) error {
	if len(results) == 0 {
		logging.Debug("No results, skipping notification")
		return nil
	}

	title, message := FormatResults(results)

	appIcon := n.cfg.Notify.AppIcon
	if appIcon != "" && !platform.FileExists(appIcon) {
		logging.Warn("App icon not found: %s, using default", appIcon)
		appIcon = ""
	}

	if err := n.send(title, message, appIcon); err != nil {
		logging.Error("Failed to send desktop notification: %v", err)
		return err
	}
	logging.Debug("Desktop notification sent: title=%s", title)
	return nil
}

// FormatResults builds the notification title and body.
// A single result is named in the title; several are listed one per line.
func FormatResults(results []Result) (title, message string) {
	if len(results) == 1 {
		r := results[0]
		return fmt.Sprintf("🔊 %s", r.Name), describe(r)
	}

	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%s: %s", r.Name, describe(r)))
	}
	return fmt.Sprintf("🔊 %d targets", len(results)), strings.Join(lines, "\n")
}

func describe(r Result) string {
	var parts []string
	if r.Volume != nil {
		parts = append(parts, fmt.Sprintf("Volume %d", *r.Volume))
	}
	if r.Muted != nil {
		if *r.Muted {
			parts = append(parts, "Muted")
		} else {
			parts = append(parts, "Unmuted")
		}
	}
	if len(parts) == 0 {
		return "unchanged"
	}
	return strings.Join(parts, ", ")
}

// sendWithBeeep sends notification via beeep (cross-platform)
func sendWithBeeep(title, message, appIcon string) error {
	// Windows keeps a registry entry per AppName, so it stays fixed there.
	// Elsewhere a unique name stops rapid volume changes from replacing each other.
	originalAppName := beeep.AppName
	if platform.IsWindows() {
		beeep.AppName = "vccli"
	} else {
		beeep.AppName = fmt.Sprintf("vccli-%d", time.Now().UnixNano())
	}
	defer func() {
		beeep.AppName = originalAppName
	}()

	return beeep.Notify(title, message, appIcon)
}
