package main

import (
	"context"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"i18nc-go/packages/i18nc/compilation"
	"i18nc-go/packages/i18nc/virtual"
)

var debounceFlag int

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Compile root and recompile whenever a component or dictionary changes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(rootArg(args))
		if err != nil {
			return err
		}
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		c := compilation.NewCompiler(opts, virtual.NewRegistry(), logger)
		w, err := c.NewWatcher(root, debounce(), func(report *compilation.Report, err error) {
			if err != nil {
				fmt.Fprintf(out, "❌ %v\n", err)
				return
			}
			printReport(out, root, c.OutDir(root), report)
		})
		if err != nil {
			return fmt.Errorf("error creating watcher: %w", err)
		}

		fmt.Fprintf(out, "👀 Watching %s (Ctrl+C to stop)\n", root)
		if err := w.Start(ctx); err != nil {
			return err
		}
		<-ctx.Done()
		w.Stop()
		fmt.Fprintln(out, "👋 Stopped")
		return nil
	},
}

func init() {
	watchCmd.Flags().IntVar(&debounceFlag, "debounce", 0, "Milliseconds to wait for more changes before rebuilding (0 selects the default)")
}

func debounce() time.Duration {
	return time.Duration(debounceFlag) * time.Millisecond
}
