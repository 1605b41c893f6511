// ABOUTME: Small OS helpers shared across packages.
// ABOUTME: File checks, environment expansion, and per-user config locations.

package platform

import (
	"os"
	"path/filepath"
	"runtime"
)

// IsWindows reports whether the binary runs on Windows
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// FileExists reports whether path exists and is not a directory
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// ExpandEnv expands ${VAR} and $VAR, plus %VAR% on Windows.
// Unknown variables are left untouched.
func ExpandEnv(s string) string {
	expanded := os.Expand(s, func(name string) string {
		if v, ok := os.LookupEnv(name); ok {
			return v
		}
		return "${" + name + "}"
	})
	if IsWindows() {
		expanded = expandPercent(expanded)
	}
	return expanded
}

func expandPercent(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			out = append(out, s[i])
			continue
		}
		end := -1
		for j := i + 1; j < len(s); j++ {
			if s[j] == '%' {
				end = j
				break
			}
		}
		if end == -1 {
			out = append(out, s[i:]...)
			break
		}
		name := s[i+1 : end]
		if v, ok := os.LookupEnv(name); ok && name != "" {
			out = append(out, v...)
		} else {
			out = append(out, s[i:end+1]...)
		}
		i = end
	}
	return string(out)
}

// ConfigDir returns the per-user directory for vccli files
func ConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "vccli")
}
