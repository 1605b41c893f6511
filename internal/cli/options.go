package cli

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/777genius/vccli/internal/preview"
)

// getValue marks an optional-value flag given without a value
const getValue = "\x00get"

// Options holds the parsed command line
type Options struct {
	Quiet    bool
	NoColor  bool
	Version  bool
	List     bool
	Extended bool

	Device  bool
	Session bool
	Output  bool
	Input   bool

	Volume    string
	Increment string
	Decrement string
	IsMuted   string
	Mute      bool
	Unmute    bool

	Profile string
	Watch   bool
	Notify  bool
	Preview string

	ConfigPath string
	LogLevel   string

	volumeGiven  bool
	isMutedGiven bool
	previewGiven bool
	incGiven     bool
	decGiven     bool
}

func (o *Options) bind(fs *pflag.FlagSet) {
	fs.BoolVarP(&o.Quiet, "quiet", "q", false, "minimal output")
	fs.BoolVarP(&o.NoColor, "no-color", "n", false, "disable ANSI colors")
	fs.BoolVar(&o.Version, "version", false, "print the version")
	fs.BoolVarP(&o.List, "list", "l", false, "list sessions and devices")
	fs.BoolVarP(&o.Extended, "extended", "e", false, "include identifiers in --list")

	fs.BoolVarP(&o.Device, "device", "d", false, "only match devices")
	fs.BoolVarP(&o.Session, "session", "s", false, "only match sessions")
	fs.BoolVarP(&o.Output, "output", "o", false, "only match output; default output device without a target")
	fs.BoolVarP(&o.Input, "input", "i", false, "only match input; default input device without a target")

	fs.StringVarP(&o.Volume, "volume", "v", "", "get or set the volume [0-100]")
	fs.Lookup("volume").NoOptDefVal = getValue
	fs.StringVarP(&o.Increment, "increment", "I", "", "increment the volume by <0-100>")
	fs.StringVarP(&o.Decrement, "decrement", "D", "", "decrement the volume by <0-100>")
	fs.StringVarP(&o.IsMuted, "is-muted", "m", "", "get or set the mute state [true|false]")
	fs.Lookup("is-muted").NoOptDefVal = getValue
	fs.BoolVarP(&o.Mute, "mute", "M", false, "mute the target")
	fs.BoolVarP(&o.Unmute, "unmute", "U", false, "unmute the target")

	fs.StringVarP(&o.Profile, "profile", "p", "", "apply a profile from the config file")
	fs.BoolVarP(&o.Watch, "watch", "w", false, "re-apply --profile whenever the config file changes")
	fs.BoolVarP(&o.Notify, "notify", "N", false, "show a desktop notification with the result")
	fs.StringVar(&o.Preview, "preview", "", "play a sound on the affected device after changes")
	fs.Lookup("preview").NoOptDefVal = getValue

	fs.StringVar(&o.ConfigPath, "config", "", "config file path")
	fs.StringVar(&o.LogLevel, "log-level", "", "log level: debug, info, warn, error")
}

// collect records which optional flags were present
func (o *Options) collect(fs *pflag.FlagSet) {
	o.volumeGiven = fs.Changed("volume")
	o.isMutedGiven = fs.Changed("is-muted")
	o.previewGiven = fs.Changed("preview")
	o.incGiven = fs.Changed("increment")
	o.decGiven = fs.Changed("decrement")
}

// HasAction reports whether any getter or setter was requested
func (o *Options) HasAction() bool {
	return o.volumeGiven || o.isMutedGiven || o.incGiven || o.decGiven || o.Mute || o.Unmute
}

// NormalizeArgs joins a separated value onto the optional-value flags
// ("-v 50" becomes "--volume=50") when the next token is a valid value for that flag.
// For --preview a valid value is a file name with a playable extension.
// A group of boolean short flags ending in v or m ("-qv 50") is split the same way.
func NormalizeArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			out = append(out, args[i:]...)
			break
		}

		var long string
		var valid func(string) bool
		switch arg {
		case "-v", "--volume":
			long, valid = "--volume", isDigits
		case "-m", "--is-muted":
			long, valid = "--is-muted", isBoolWord
		case "--preview":
			long, valid = "--preview", preview.Supported
		}

		var group string
		if long == "" {
			group, long, valid = splitGroup(arg)
		}

		if long != "" && i+1 < len(args) && valid(args[i+1]) {
			if group != "" {
				out = append(out, group)
			}
			out = append(out, long+"="+args[i+1])
			i++
			continue
		}
		out = append(out, arg)
	}
	return out
}

// boolShorthands are the short flags that take no value
const boolShorthands = "qnledsoiMUNw"

// splitGroup handles a short-flag group ending in v or m ("-qv"): it returns
// the leading boolean flags ("-q") and the optional-value flag.
func splitGroup(arg string) (group, long string, valid func(string) bool) {
	if len(arg) < 3 || arg[0] != '-' || arg[1] == '-' {
		return "", "", nil
	}
	head := arg[1 : len(arg)-1]
	for _, r := range head {
		if !strings.ContainsRune(boolShorthands, r) {
			return "", "", nil
		}
	}
	switch arg[len(arg)-1] {
	case 'v':
		return "-" + head, "--volume", isDigits
	case 'm':
		return "-" + head, "--is-muted", isBoolWord
	}
	return "", "", nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isBoolWord(s string) bool {
	_, err := parseBool(s)
	return err == nil
}

// parseBool accepts true|1|on and false|0|off, case-insensitive
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "on":
		return true, nil
	case "false", "0", "off":
		return false, nil
	}
	return false, errNotBool
}
