package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"i18nc-go/packages/i18nc/dictionary"
)

var checkCmd = &cobra.Command{
	Use:   "check [root]",
	Short: "Validate every translation dictionary under root",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(rootArg(args))
		if err != nil {
			return err
		}
		return checkProject(cmd.OutOrStdout(), root)
	},
}

func checkProject(out io.Writer, root string) error {
	checker, err := dictionary.NewChecker(opts.FallbackLocale, logger)
	if err != nil {
		return err
	}
	results, err := checker.Check(root)
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(out, "   ❌ %s: %v\n", relative(root, r.Path), r.Err)
		case len(r.Missing) > 0:
			failed++
			fmt.Fprintf(out, "   ⚠️  %s: missing %s\n", relative(root, r.Path), strings.Join(r.Missing, ", "))
		default:
			fmt.Fprintf(out, "   ✓ %s (%d message(s))\n", relative(root, r.Path), r.Messages)
		}
	}
	fmt.Fprintf(out, "Checked %d dictionar(ies), %d with problems\n", len(results), failed)
	if failed > 0 {
		return fmt.Errorf("%d dictionar(ies) failed validation", failed)
	}
	return nil
}
