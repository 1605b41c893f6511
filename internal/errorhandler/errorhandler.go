// ABOUTME: Global error handling with panic recovery.
// ABOUTME: Critical errors and recovered panics are logged and optionally echoed to stderr.

package errorhandler

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/777genius/vccli/internal/logging"
)

type handler struct {
	logToConsole    bool
	exitOnCritical  bool
	recoveryEnabled bool
	stderr          io.Writer
	exit            func(int)
}

var (
	mu      sync.RWMutex
	current = &handler{recoveryEnabled: true, stderr: os.Stderr, exit: os.Exit}
)

// Init configures the global handler
func Init(logToConsole, exitOnCritical, recoveryEnabled bool) {
	mu.Lock()
	defer mu.Unlock()
	current = &handler{
		logToConsole:    logToConsole,
		exitOnCritical:  exitOnCritical,
		recoveryEnabled: recoveryEnabled,
		stderr:          os.Stderr,
		exit:            os.Exit,
	}
}

func get() *handler {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// HandlePanic recovers a panic in the calling goroutine. Use with defer.
func HandlePanic() {
	h := get()
	if !h.recoveryEnabled {
		return
	}
	if r := recover(); r != nil {
		logging.Error("Recovered from panic: %v\n%s", r, debug.Stack())
		if h.logToConsole {
			fmt.Fprintf(h.stderr, "[FATAL] unexpected error: %v\n", r)
		}
		h.exit(1)
	}
}

// HandleCriticalError logs err with context and exits when configured to
func HandleCriticalError(err error, msg string) {
	if err == nil {
		return
	}
	h := get()
	logging.Error("%s: %v", msg, err)
	if h.logToConsole {
		fmt.Fprintf(h.stderr, "[FATAL] %s: %v\n", msg, err)
	}
	if h.exitOnCritical {
		h.exit(1)
	}
}
