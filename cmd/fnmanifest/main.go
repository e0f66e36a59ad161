// Command fnmanifest compiles CUE function declarations into a deployment
// descriptor and serves it from the admin endpoint.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/fnmanifest/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()
	os.Exit(cli.GetExitCode(err))
}
