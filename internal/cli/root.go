// ABOUTME: Root cobra command of vccli: flag parsing, config loading and dispatch.
// ABOUTME: Execute returns the process exit code so main stays a one-liner.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/777genius/vccli/internal/audio"
	"github.com/777genius/vccli/internal/config"
	"github.com/777genius/vccli/internal/logging"
	"github.com/777genius/vccli/internal/notifier"
	"github.com/777genius/vccli/internal/preview"
	"github.com/777genius/vccli/internal/target"
	"github.com/777genius/vccli/internal/term"
	"github.com/777genius/vccli/internal/volume"
)

// Env is everything the command touches outside of its own flags
type Env struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Color   bool
	Version string

	Open    func() (*audio.Manager, error)
	Notify  func(cfg *config.Config, results []notifier.Result) error
	Preview func(device, path string) error
}

// DefaultEnv wires the real console, audio backend, notifier and player
func DefaultEnv(version string) *Env {
	return &Env{
		Stdout:  term.Stdout(),
		Stderr:  term.Stderr(),
		Color:   term.IsTerminal(os.Stdout) && os.Getenv("NO_COLOR") == "",
		Version: version,
		Open:    audio.Open,
		Notify: func(cfg *config.Config, results []notifier.Result) error {
			return notifier.New(cfg).SendResults(results)
		},
		Preview: playPreview,
	}
}

func playPreview(device, path string) error {
	p, err := preview.NewPlayer(device)
	if err != nil {
		return err
	}
	defer p.Close()
	return p.Play(path)
}

type runner struct {
	env     *Env
	opts    *Options
	palette *term.Palette
	cfg     *config.Config
	cfgPath string
	quiet   bool
}

// say prints setter output, which quiet mode suppresses
func (r *runner) say(format string, args ...interface{}) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.env.Stdout, format, args...)
}

// value prints a getter result; quiet mode prints the bare value
func (r *runner) value(label, v string) {
	if r.quiet {
		fmt.Fprintln(r.env.Stdout, v)
		return
	}
	fmt.Fprintf(r.env.Stdout, "%s%s\n", label, r.palette.Hi(v))
}

func newRootCommand(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "vccli [TARGET] [OPTIONS]",
		Short:         "Get or set the volume and mute state of audio sessions and devices",
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE:          r.run,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		printHelp(c.OutOrStdout(), r.env.Version)
	})
	r.opts.bind(cmd.Flags())
	return cmd
}

// Execute runs vccli with args (without the program name) and returns the exit code
func Execute(ctx context.Context, env *Env, args []string) int {
	r := &runner{
		env:     env,
		opts:    &Options{},
		palette: term.NewPalette(env.Color),
	}

	if len(args) == 0 {
		printHelp(env.Stdout, env.Version)
		return 0
	}

	cmd := newRootCommand(r)
	cmd.SetArgs(NormalizeArgs(args))
	cmd.SetOut(env.Stdout)
	cmd.SetErr(env.Stderr)

	// run leaves the logger open so the error below reaches the log file
	defer logging.Close()
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	if r.opts.NoColor {
		r.palette = term.NewPalette(false)
	}
	var ue *usageError
	if errors.As(err, &ue) {
		printHelp(env.Stderr, env.Version)
		fmt.Fprintln(env.Stderr)
	}
	logging.Error("%v", err)
	fmt.Fprintf(env.Stderr, "%s%s\n", r.palette.FatalPrefix(), err)
	return 1
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	r.opts.collect(cmd.Flags())

	if err := r.loadConfig(); err != nil {
		return err
	}
	r.quiet = r.opts.Quiet || r.cfg.Quiet
	r.palette = term.NewPalette(r.env.Color && !r.opts.NoColor && !r.cfg.NoColor)

	logCfg := r.cfg.LoggingConfig()
	if r.opts.LogLevel != "" {
		logCfg.Level = r.opts.LogLevel
	}
	if _, err := logging.InitLogger(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if r.opts.Version {
		if !r.quiet {
			fmt.Fprint(r.env.Stdout, "vccli v")
		}
		fmt.Fprintln(r.env.Stdout, r.env.Version)
		return nil
	}

	p, err := buildPlan(r.opts, r.palette)
	if err != nil {
		return err
	}
	if r.opts.Watch && r.opts.Profile == "" {
		return &usageError{msg: fmt.Sprintf("%s requires %s", flagPair(r.palette, "-w", "--watch"), flagPair(r.palette, "-p", "--profile"))}
	}

	var t target.Target
	if !r.opts.List && r.opts.Profile == "" {
		if t, err = r.target(args); err != nil {
			return err
		}
	} else if len(args) > 0 {
		return r.unexpected(args)
	}

	mgr, err := r.env.Open()
	if err != nil {
		return err
	}
	defer mgr.Close()

	switch {
	case r.opts.List:
		return r.list(mgr)
	case r.opts.Profile != "":
		return r.profile(cmd.Context(), mgr)
	}

	controllers, err := r.resolve(mgr, t)
	if err != nil {
		return err
	}
	defer audio.ReleaseAll(controllers)
	logging.Debug("Resolved %q to %d controller(s)", t.Raw, len(controllers))

	results := make([]notifier.Result, 0, len(controllers))
	for _, c := range controllers {
		prefix := ""
		if len(controllers) > 1 {
			prefix = c.Name() + ": "
		}
		res, err := r.apply(p, c, prefix)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if p.setsSomething() {
		r.afterChange(controllers, results)
	}
	return nil
}

func (r *runner) loadConfig() error {
	config.LoadEnv()

	r.cfgPath = r.opts.ConfigPath
	if r.cfgPath == "" {
		r.cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(r.cfgPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", r.cfgPath, err)
	}
	r.cfg = cfg
	return nil
}

// target validates the positional arguments; an empty target is allowed
// only when -o or -i picks a default device.
func (r *runner) target(args []string) (target.Target, error) {
	if len(args) > 1 {
		return target.Target{}, r.unexpected(args[1:])
	}
	if len(args) == 1 {
		if t := target.Parse(args[0]); !t.IsEmpty() {
			return t, nil
		}
	}
	if r.opts.Output != r.opts.Input {
		return target.Target{}, nil
	}
	return target.Target{}, &usageError{msg: fmt.Sprintf("No Target was Specified!  (Missing '%s' ; See '%s')",
		r.palette.Err("<PID|PNAME>"), r.palette.Err("USAGE"))}
}

func (r *runner) unexpected(args []string) error {
	return &usageError{msg: "Unexpected Arguments:  " + strings.Join(args, ", ")}
}

func (r *runner) resolve(mgr *audio.Manager, t target.Target) ([]volume.Controller, error) {
	sel := target.NewSelector(r.opts.Device, r.opts.Session, r.opts.Output, r.opts.Input)
	if t.IsEmpty() {
		ep, err := mgr.Default(sel.Flow)
		if err != nil {
			return nil, err
		}
		return []volume.Controller{ep}, nil
	}
	return mgr.Resolve(t, sel)
}

// afterChange sends the notification and plays the preview sound.
// Neither can fail the command: the change has already been made.
func (r *runner) afterChange(controllers []volume.Controller, results []notifier.Result) {
	if r.opts.Notify || r.cfg.Notify.Enabled {
		if err := r.env.Notify(r.cfg, results); err != nil {
			logging.Warn("Notification failed: %v", err)
		}
	}

	if !r.opts.previewGiven {
		return
	}
	sound := r.opts.Preview
	if sound == getValue || sound == "" {
		sound = r.cfg.Preview.Sound
	}
	if sound == "" {
		logging.Warn("No preview sound configured")
		return
	}
	for _, device := range previewDevices(controllers) {
		if err := r.env.Preview(device, sound); err != nil {
			logging.Warn("Preview on %q failed: %v", device, err)
		}
	}
}

// previewDevices returns the distinct output devices behind controllers.
// Input controllers are skipped; an empty name stands for the default device.
func previewDevices(controllers []volume.Controller) []string {
	seen := make(map[string]bool)
	var devices []string
	for _, c := range controllers {
		if c.Flow() == volume.Capture {
			continue
		}
		var name string
		switch v := c.(type) {
		case *volume.Endpoint:
			name = v.Info.Name
		case *volume.Session:
			name = v.Info.DeviceName
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		devices = append(devices, name)
	}
	return devices
}

func printHelp(w io.Writer, version string) {
	fmt.Fprintf(w, `vccli v%s
  Commandline utility that can mute/unmute/change the volume of specific processes and devices.

USAGE:
  vccli <PID|PNAME|DEVICE> [OPTIONS]

  Targets can be specified by ProcessID (PID), ProcessName (PNAME), device name, device GUID or endpoint ID.
  When more than one process or device matches, setters apply to every match.

OPTIONS:
  -h, --help                   Shows this help display, then exits.
      --version                Prints the current version number, then exits.
  -q, --quiet                  Show only minimal console output for getters; don't show any console output for setters.
  -n, --no-color               Disables the usage of ANSI color escape sequences in console output.
  -l, --list                   Lists audio sessions and devices, then exits.
  -e, --extended               Includes session identifiers and endpoint IDs in --list.
  -d, --device                 Only matches audio devices.
  -s, --session                Only matches audio sessions.
  -o, --output                 Only matches output; without a target, selects the default output device.
  -i, --input                  Only matches input; without a target, selects the default input device.
  -v, --volume [0-100]         Gets or sets (when a number is specified) the volume of the target.
  -I, --increment <0-100>      Increments the volume of the target by the specified number.
  -D, --decrement <0-100>      Decrements the volume of the target by the specified number.
  -m, --is-muted [true|false]  Gets or sets (when a boolean is specified) the mute state of the target.
  -M, --mute                   Mutes the target.  (Equivalent to '-m=true')
  -U, --unmute                 Unmutes the target.  (Equivalent to '-m=false')
  -p, --profile <NAME>         Applies a named profile from the config file.
  -w, --watch                  With --profile, re-applies the profile whenever the config file changes.
  -N, --notify                 Shows a desktop notification with the result.
      --preview [FILE]         Plays FILE (or the configured sound) on the affected device after a change.
      --config <PATH>          Uses the config file at PATH.
      --log-level <LEVEL>      Sets the log level: debug, info, warn, error.
`, version)
}
