package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/fnmanifest/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Function string // optional - one function's endpoint revisions only
}

// HistoryResult holds snapshot history.
type HistoryResult struct {
	Snapshots []store.Snapshot `json:"snapshots"`
}

// FunctionHistoryResult holds the revisions of one function.
type FunctionHistoryResult struct {
	Function  string                   `json:"function"`
	Revisions []store.EndpointRevision `json:"revisions"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded descriptor snapshots",
		Long: `List the descriptor snapshots recorded with compile --record, newest
first. With --function, list the revisions of one function's endpoint
instead: one entry per snapshot in which the endpoint changed.

Examples:
  fnmanifest history --db ./descriptors.db
  fnmanifest history --db ./descriptors.db --limit 5
  fnmanifest history --db ./descriptors.db --function onOrder --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "maximum number of snapshots (0 = all)")
	cmd.Flags().StringVar(&opts.Function, "function", "", "show revisions of one function")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	// store.Open would create a missing database.
	if _, err := os.Stat(opts.Database); errors.Is(err, fs.ErrNotExist) {
		return fail(formatter, ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database))
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStoreFailed, fmt.Sprintf("opening database: %v", err))
	}
	defer st.Close()

	ctx := cmd.Context()
	if opts.Function != "" {
		revs, err := st.EndpointHistory(ctx, opts.Function)
		if err != nil {
			return fail(formatter, ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
		if opts.Limit > 0 && len(revs) > opts.Limit {
			revs = revs[:opts.Limit]
		}
		return outputFunctionHistory(formatter, opts.Function, revs)
	}

	snaps, err := st.List(ctx, opts.Limit)
	if err != nil {
		return fail(formatter, ExitCommandError, ErrCodeStoreFailed, err.Error())
	}
	return outputHistory(formatter, snaps)
}

func outputHistory(formatter *OutputFormatter, snaps []store.Snapshot) error {
	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{Snapshots: snaps})
	}
	if len(snaps) == 0 {
		fmt.Fprintln(formatter.Writer, "No snapshots recorded")
		return nil
	}
	for _, s := range snaps {
		fmt.Fprintf(formatter.Writer, "#%d  %s  %s  %d function(s)  %s\n",
			s.Seq, s.RecordedAt.Format(time.RFC3339), shortHash(s.Hash), s.Functions, s.SpecVersion)
	}
	return nil
}

func outputFunctionHistory(formatter *OutputFormatter, name string, revs []store.EndpointRevision) error {
	if formatter.Format == "json" {
		return formatter.Success(FunctionHistoryResult{Function: name, Revisions: revs})
	}
	if len(revs) == 0 {
		fmt.Fprintf(formatter.Writer, "No revisions recorded for %s\n", name)
		return nil
	}
	fmt.Fprintf(formatter.Writer, "%s: %d revision(s)\n", name, len(revs))
	for _, r := range revs {
		fmt.Fprintf(formatter.Writer, "  #%d  %s  endpoint %s  snapshot %s\n",
			r.Seq, r.RecordedAt.Format(time.RFC3339), shortHash(r.EndpointHash), shortHash(r.SnapshotHash))
	}
	return nil
}

// shortHash abbreviates a content hash for text output.
func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
