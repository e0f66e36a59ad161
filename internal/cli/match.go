package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/fnmanifest/internal/pathpattern"
)

// MatchResult is the output of the match command.
type MatchResult struct {
	Pattern  string            `json:"pattern"`
	Path     string            `json:"path"`
	Segments []string          `json:"segments"`
	Captures map[string]string `json:"captures"`
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match <pattern> <path>",
		Short: "Extract path pattern captures from a concrete path",
		Long: `Apply a trigger path pattern to a concrete event path and print the
captured values, e.g.

  fnmanifest match "users/{uid}/posts/{postId=**}" users/ada/posts/2024/intro`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runMatch(opts *RootOptions, pattern, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	p := pathpattern.Parse(pattern)
	result := MatchResult{
		Pattern:  p.Value(),
		Path:     path,
		Segments: []string{},
		Captures: p.ExtractMatches(path),
	}
	for _, seg := range p.Segments() {
		result.Segments = append(result.Segments, fmt.Sprintf("%s %s", seg.Kind, seg))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	if len(result.Captures) == 0 {
		fmt.Fprintln(formatter.Writer, "no captures")
		return nil
	}
	names := make([]string, 0, len(result.Captures))
	for name := range result.Captures {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		fmt.Fprintf(formatter.Writer, "%s=%s\n", name, result.Captures[name])
	}
	return nil
}
