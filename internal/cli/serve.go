package cli

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"github.com/roach88/fnmanifest/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port string // listen port; defaults to ADMIN_PORT, then server.DefaultPort
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <declarations-dir>",
		Short: "Serve the descriptor from the admin endpoint",
		Long: `Compile the declarations and serve the descriptor on localhost:

  GET /__/functions.yaml
  GET /__/functions.json
  GET /__/quitquitquit    stops the server

The port comes from --port, then ADMIN_PORT, then 8081.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Port, "port", "p", "", "listen port (default $ADMIN_PORT or 8081)")

	return cmd
}

func runServe(opts *ServeOptions, dir string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	loadResult, loadErrors := LoadSpecs(dir, LoadModeFailFast, opts.lookup())
	if len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		exitCode := ExitFailure
		if loadResult == nil {
			exitCode = ExitCommandError
		}
		return fail(formatter, exitCode, code, message)
	}

	addr := server.Addr(opts.lookup())
	if opts.Port != "" {
		addr = net.JoinHostPort("localhost", opts.Port)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeGeneric, fmt.Sprintf("listen %s: %v", addr, err))
	}

	fc := loadResult.Context
	if formatter.Format == "json" {
		_ = formatter.Success(map[string]any{"addr": ln.Addr().String(), "functions": len(fc.Functions())})
	} else {
		fmt.Fprintf(formatter.Writer, "Serving %d function(s) on http://%s/__/functions.yaml\n", len(fc.Functions()), ln.Addr())
	}

	if err := server.New(fc).Serve(cmd.Context(), ln); err != nil {
		return WrapExitError(ExitCommandError, "admin server failed", err)
	}
	return nil
}
