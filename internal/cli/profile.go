package cli

import (
	"context"
	"errors"
	"math"
	"strconv"

	"github.com/777genius/vccli/internal/audio"
	"github.com/777genius/vccli/internal/config"
	"github.com/777genius/vccli/internal/logging"
	"github.com/777genius/vccli/internal/notifier"
	"github.com/777genius/vccli/internal/target"
	"github.com/777genius/vccli/internal/volume"
)

// profile applies the named profile once, then again on every config change when --watch is set
func (r *runner) profile(ctx context.Context, mgr *audio.Manager) error {
	if err := r.applyProfile(mgr, r.cfg); err != nil {
		return err
	}
	if !r.opts.Watch {
		return nil
	}

	logging.Info("Watching %s for profile %q", r.cfgPath, r.opts.Profile)
	return config.Watch(ctx, r.cfgPath, func(cfg *config.Config, err error) {
		if err != nil {
			logging.Error("Config reload failed: %v", err)
			return
		}
		r.cfg = cfg
		if err := r.applyProfile(mgr, cfg); err != nil {
			logging.Error("Failed to apply profile %q: %v", r.opts.Profile, err)
		}
	})
}

func (r *runner) applyProfile(mgr *audio.Manager, cfg *config.Config) error {
	entries, err := cfg.Profile(r.opts.Profile)
	if err != nil {
		return err
	}

	var results []notifier.Result
	var controllers []volume.Controller
	defer func() { audio.ReleaseAll(controllers) }()

	for _, e := range entries {
		t := target.Parse(e.Target)
		sel := target.NewSelector(e.Device, e.Session, e.IsOutput(), e.IsInput())
		matched, err := mgr.Resolve(t, sel)
		if errors.Is(err, audio.ErrNotFound) {
			logging.Warn("Profile %q: %v", r.opts.Profile, err)
			continue
		}
		if err != nil {
			return err
		}
		controllers = append(controllers, matched...)

		for _, c := range matched {
			res, err := r.applyEntry(e, c)
			if err != nil {
				return err
			}
			results = append(results, res)
		}
	}

	if len(results) > 0 {
		r.afterChange(controllers, results)
	}
	return nil
}

func (r *runner) applyEntry(e config.ProfileEntry, c volume.Controller) (notifier.Result, error) {
	res := notifier.Result{Name: c.Name(), Kind: c.Kind().String()}
	if e.Volume != nil {
		v, err := volume.SetPercent(c, float64(*e.Volume))
		if err != nil {
			return res, err
		}
		n := int(math.Round(v))
		res.Volume = &n
		r.say("%s: Volume = %s\n", c.Name(), r.palette.Hi(formatPercent(v)))
	}
	if e.Muted != nil {
		if err := c.SetMuted(*e.Muted); err != nil {
			return res, err
		}
		m := *e.Muted
		res.Muted = &m
		r.say("%s: Muted = %s\n", c.Name(), r.palette.Hi(strconv.FormatBool(m)))
	}
	logging.Debug("Profile %q applied to %s %s", r.opts.Profile, c.Kind(), c.Name())
	return res, nil
}
