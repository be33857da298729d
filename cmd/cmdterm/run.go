package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cmdterm/internal/history"
	"cmdterm/internal/syntax"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run [line...]",
		Short: "Execute a single command line and print its output",
		Example: `  cmdterm run pwd
  cmdterm run 'echo hello > greeting.txt'
  cmdterm run nl "create folder reports"
  cmdterm run cat "my file.txt"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := commandLine(args)
			ex := a.newExecutor()
			out := ex.RunOnce(line)
			fmt.Fprint(cmd.OutOrStdout(), out)

			if store := a.openHistory(); store != nil {
				defer store.Close()
				cwd, _ := ex.Context().Dir()
				if err := store.Add(cmd.Context(), history.Entry{
					Source: history.SourceCLI,
					Line:   line,
					Cwd:    cwd,
				}); err != nil {
					a.logger.Warn("record history", zap.Error(err))
				}
			}
			return nil
		},
	}
}

func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit    int
		clearAll bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently executed command lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(a.cfg.HistoryPath, a.cfg.HistoryLimit)
			if err != nil {
				return err
			}
			defer store.Close()

			if clearAll {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "history cleared")
				return nil
			}
			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s  %-4s  %s\n", e.CreatedAt.Format(time.DateTime), e.Source, e.Line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded history")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cmdterm version %s\n", Version)
		},
	}
}

// commandLine rebuilds the line the invoking shell split into args. A
// single argument is taken as a whole line; otherwise each word is quoted
// so spaces survive, leaving redirection operators bare.
func commandLine(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	words := make([]string, len(args))
	for i, arg := range args {
		if arg == syntax.OpTruncate || arg == syntax.OpAppend {
			words[i] = arg
			continue
		}
		words[i] = syntax.Quote(arg)
	}
	return strings.Join(words, " ")
}
