package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/777genius/vccli/internal/audio"
	"github.com/777genius/vccli/internal/target"
	"github.com/777genius/vccli/internal/volume"
)

func (r *runner) list(mgr *audio.Manager) error {
	sel := target.NewSelector(r.opts.Device, r.opts.Session, r.opts.Output, r.opts.Input)
	l, err := mgr.List(sel)
	if err != nil {
		return err
	}
	defer l.Release()

	if sel.Sessions {
		r.listSessions(l.Sessions)
	}
	if sel.Devices {
		if sel.Sessions && !r.quiet {
			fmt.Fprintln(r.env.Stdout)
		}
		r.listDevices(l.Devices)
	}
	return nil
}

func (r *runner) listSessions(sessions []*volume.Session) {
	tw := tabwriter.NewWriter(r.env.Stdout, 0, 4, 2, ' ', 0)
	if !r.quiet {
		fmt.Fprintln(r.env.Stdout, "Sessions:")
		header := "PID\tProcess\tFlow\tVolume\tMuted\tDevice"
		if r.opts.Extended {
			header += "\tIdentifier"
		}
		fmt.Fprintln(tw, header)
	}
	for _, s := range sessions {
		name := s.Name()
		if s.Info.SystemSounds && name == "" {
			name = "System Sounds"
		}
		row := fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s", s.Info.PID, name, s.Flow(), levelCell(s), mutedCell(s), s.Info.DeviceName)
		if r.opts.Extended {
			row += "\t" + s.Info.SessionIdentifier
		}
		fmt.Fprintln(tw, row)
	}
	_ = tw.Flush()
}

func (r *runner) listDevices(devices []*volume.Endpoint) {
	tw := tabwriter.NewWriter(r.env.Stdout, 0, 4, 2, ' ', 0)
	if !r.quiet {
		fmt.Fprintln(r.env.Stdout, "Devices:")
		header := "Flow\tName\tVolume\tMuted\tDefault"
		if r.opts.Extended {
			header += "\tID"
		}
		fmt.Fprintln(tw, header)
	}
	for _, e := range devices {
		def := ""
		if e.Info.IsDefault {
			def = "*"
		}
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", e.Flow(), e.Name(), levelCell(e), mutedCell(e), def)
		if r.opts.Extended {
			row += "\t" + e.Info.ID
		}
		fmt.Fprintln(tw, row)
	}
	_ = tw.Flush()
}

// levelCell shows "-" where the backend cannot read the volume
func levelCell(c volume.Controller) string {
	p, err := volume.Percent(c)
	if err != nil {
		return "-"
	}
	return formatPercent(p)
}

func mutedCell(c volume.Controller) string {
	m, err := c.Muted()
	if err != nil {
		return "-"
	}
	return strconv.FormatBool(m)
}
