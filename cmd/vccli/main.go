// ABOUTME: Entry point for vccli, the volume control command line.
// ABOUTME: Gets or sets the volume and mute state of audio sessions and devices.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/777genius/vccli/internal/cli"
	"github.com/777genius/vccli/internal/errorhandler"
)

var version = "2.0.0"

func main() {
	// console errors, no exit on critical errors, recover from panics
	errorhandler.Init(true, false, true)
	defer errorhandler.HandlePanic()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.DefaultEnv(version), os.Args[1:])
	stop()
	os.Exit(code)
}
