package target

import "github.com/777genius/vccli/internal/volume"

// Selector narrows which controllers a target may resolve to
type Selector struct {
	Sessions bool
	Devices  bool
	Flow     volume.Flow
}

// Any selects sessions and devices of every flow
func Any() Selector {
	return Selector{Sessions: true, Devices: true, Flow: volume.All}
}

// NewSelector builds a selector from the device/session/flow switches.
// Neither of sessionOnly/deviceOnly set means both kinds are allowed.
func NewSelector(deviceOnly, sessionOnly, output, input bool) Selector {
	sel := Any()
	if deviceOnly != sessionOnly {
		sel.Sessions = sessionOnly
		sel.Devices = deviceOnly
	}
	if output != input {
		if output {
			sel.Flow = volume.Render
		} else {
			sel.Flow = volume.Capture
		}
	}
	return sel
}
