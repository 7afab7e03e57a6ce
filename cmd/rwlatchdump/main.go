// Command rwlatchdump prints every currently-held latch tracked by
// rwlatch.DefaultRegistry, or their aggregate counters: an in-process
// diagnostic, analogous to
// calling rw_lock_list_print_info from a debugger, wired up as a
// standalone binary so it can be invoked from a pprof-style sidecar or
// an operator's shell instead of requiring a debugger attach.
//
// It has nothing to dump on its own - a real caller embeds the rwlatch
// package, and this binary's dump subcommand exists for processes that
// expose rwlatch.DefaultRegistry over some admin interface and want a
// matching CLI to pair with it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/go-innodb/rwlatch/rwlatch"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rwlatchdump",
		Short: "Inspect rwlatch.Latch state tracked by the default registry",
	}
	root.AddCommand(newDumpCmd())
	root.AddCommand(newStatsCmd())
	return root
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump",
		Short: "Print every currently-held latch and its debug records",
		RunE: func(cmd *cobra.Command, args []string) error {
			rwlatch.DefaultRegistry.ListPrintInfo(cmd.OutOrStdout())
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print aggregate spin/round/OS-wait counters across all tracked latches",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := rwlatch.DefaultRegistry.Stats()
			out := cmd.OutOrStdout()
			modes := [3]string{"S", "SX", "X"}
			for i, m := range modes {
				fmt.Fprintf(out, "%-2s  spin_wait=%-8d spin_round=%-8d os_wait=%-8d\n",
					m, s.SpinWaitCount[i], s.SpinRoundCount[i], s.OSWaitCount[i])
			}
			return nil
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
