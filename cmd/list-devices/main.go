// ABOUTME: CLI tool to list audio output and input devices with their identifiers.
// ABOUTME: Used to find device names and GUIDs to pass as a vccli target or profile entry.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/777genius/vccli/internal/audio"
	"github.com/777genius/vccli/internal/errorhandler"
	"github.com/777genius/vccli/internal/target"
	"github.com/777genius/vccli/internal/volume"
)

func main() {
	errorhandler.Init(true, true, true)
	defer errorhandler.HandlePanic()

	if err := run(os.Stdout, audio.Open); err != nil {
		errorhandler.HandleCriticalError(err, "Error listing audio devices")
	}
}

// run prints every device; the backend is closed before it returns
func run(w io.Writer, open func() (*audio.Manager, error)) error {
	mgr, err := open()
	if err != nil {
		return err
	}
	defer mgr.Close()

	listing, err := mgr.List(target.Selector{Devices: true, Flow: volume.All})
	if err != nil {
		return err
	}
	defer listing.Release()

	if len(listing.Devices) == 0 {
		fmt.Fprintln(w, "No audio devices found.")
		return nil
	}

	for _, flow := range []volume.Flow{volume.Render, volume.Capture} {
		fmt.Fprintf(w, "Available audio %s devices:\n", strings.ToLower(flow.String()))
		fmt.Fprintln(w)
		i := 0
		for _, dev := range listing.Devices {
			if dev.Flow() != flow {
				continue
			}
			defaultMarker := ""
			if dev.Info.IsDefault {
				defaultMarker = " (default)"
			}
			fmt.Fprintf(w, "  %d: %s%s\n", i, dev.Name(), defaultMarker)
			fmt.Fprintf(w, "     %s\n", dev.Info.ID)
			i++
		}
		if i == 0 {
			fmt.Fprintln(w, "  (none)")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "To control a device, pass its name or ID as the target:")
	fmt.Fprintln(w, `  vccli "DEVICE_NAME" --device --volume 50`)
	return nil
}
