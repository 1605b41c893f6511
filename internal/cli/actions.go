package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/777genius/vccli/internal/notifier"
	"github.com/777genius/vccli/internal/term"
	"github.com/777genius/vccli/internal/volume"
)

var errNotBool = errors.New("not a boolean")

// usageError is shown together with the help text
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

// plan is the validated set of getters and setters for one run
type plan struct {
	increment    *float64
	decrement    *float64
	incrementRaw string
	decrementRaw string

	volumeGet bool
	volumeSet *float64

	mute   bool
	unmute bool

	mutedGet bool
	mutedSet *bool
}

func (p *plan) setsSomething() bool {
	return p.increment != nil || p.decrement != nil || p.volumeSet != nil || p.mute || p.unmute || p.mutedSet != nil
}

func conflict(a, b string) error {
	return fmt.Errorf("Conflicting Options Specified:  %s && %s", a, b)
}

func flagPair(pal *term.Palette, short, long string) string {
	return pal.Err(short) + "|" + pal.Err(long)
}

func parseNumber(pal *term.Palette, value string) (float64, error) {
	if !isDigits(value) {
		return 0, fmt.Errorf("Invalid Number Specified:  %s", pal.Err(value))
	}
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid Number Specified:  %s", pal.Err(value))
	}
	return n, nil
}

// buildPlan validates the action flags before any device is touched
func buildPlan(o *Options, pal *term.Palette) (*plan, error) {
	p := &plan{}

	if o.incGiven && o.decGiven {
		return nil, conflict(flagPair(pal, "-I", "--increment"), flagPair(pal, "-D", "--decrement"))
	}
	if o.incGiven {
		n, err := parseNumber(pal, o.Increment)
		if err != nil {
			return nil, err
		}
		p.increment, p.incrementRaw = &n, o.Increment
	}
	if o.decGiven {
		n, err := parseNumber(pal, o.Decrement)
		if err != nil {
			return nil, err
		}
		p.decrement, p.decrementRaw = &n, o.Decrement
	}

	if o.volumeGiven {
		if o.Volume == getValue {
			p.volumeGet = true
		} else {
			n, err := parseNumber(pal, o.Volume)
			if err != nil {
				return nil, err
			}
			n = math.Min(n, 100)
			p.volumeSet = &n
		}
	}

	if o.Mute && o.Unmute {
		return nil, conflict(flagPair(pal, "-M", "--mute"), flagPair(pal, "-U", "--unmute"))
	}
	p.mute, p.unmute = o.Mute, o.Unmute

	if o.isMutedGiven {
		if o.IsMuted == getValue {
			p.mutedGet = true
		} else {
			if o.Mute || o.Unmute {
				return nil, conflict(flagPair(pal, "-m", "--is-muted"),
					"("+flagPair(pal, "-M", "--mute")+" || "+flagPair(pal, "-U", "--unmute")+")")
			}
			state, err := parseBool(o.IsMuted)
			if err != nil {
				return nil, fmt.Errorf("Invalid Argument Specified:  '%s';  Expected a boolean value ('%s'/'%s')!",
					pal.Err(o.IsMuted), pal.Err("true"), pal.Err("false"))
			}
			p.mutedSet = &state
		}
	}
	return p, nil
}

func formatPercent(p float64) string {
	return strconv.Itoa(int(math.Round(p)))
}

// apply runs the plan against one controller: volume first, then mute.
func (r *runner) apply(p *plan, c volume.Controller, prefix string) (notifier.Result, error) {
	res := notifier.Result{Name: c.Name(), Kind: c.Kind().String()}
	pal := r.palette
	setVolume := func(v float64) {
		n := int(math.Round(v))
		res.Volume = &n
	}
	setMuted := func(m bool) {
		res.Muted = &m
	}

	switch {
	case p.increment != nil:
		v, err := volume.Increment(c, *p.increment)
		if err != nil {
			return res, err
		}
		setVolume(v)
		r.say("%sVolume = %s (+%s)\n", prefix, pal.Hi(formatPercent(v)), pal.Hi(p.incrementRaw))
	case p.decrement != nil:
		v, err := volume.Decrement(c, *p.decrement)
		if err != nil {
			return res, err
		}
		setVolume(v)
		r.say("%sVolume = %s (-%s)\n", prefix, pal.Hi(formatPercent(v)), pal.Hi(p.decrementRaw))
	}

	if p.volumeSet != nil {
		v, err := volume.SetPercent(c, *p.volumeSet)
		if err != nil {
			return res, err
		}
		setVolume(v)
		r.say("%sVolume = %s\n", prefix, pal.Hi(formatPercent(v)))
	} else if p.volumeGet {
		v, err := volume.Percent(c)
		if err != nil {
			return res, err
		}
		r.value(prefix+"Volume: ", formatPercent(v))
	}

	switch {
	case p.mute:
		if err := volume.Mute(c); err != nil {
			return res, err
		}
		setMuted(true)
		r.say("%sMuted = %s\n", prefix, pal.Hi("true"))
	case p.unmute:
		if err := volume.Unmute(c); err != nil {
			return res, err
		}
		setMuted(false)
		r.say("%sMuted = %s\n", prefix, pal.Hi("false"))
	}

	if p.mutedSet != nil {
		if err := c.SetMuted(*p.mutedSet); err != nil {
			return res, err
		}
		setMuted(*p.mutedSet)
		r.say("%sMuted = %s\n", prefix, pal.Hi(strconv.FormatBool(*p.mutedSet)))
	} else if p.mutedGet {
		muted, err := c.Muted()
		if err != nil {
			return res, err
		}
		r.value(prefix+"Is Muted: ", strconv.FormatBool(muted))
	}

	return res, nil
}
