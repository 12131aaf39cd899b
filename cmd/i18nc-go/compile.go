package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"i18nc-go/packages/i18nc/compilation"
	"i18nc-go/packages/i18nc/virtual"
)

var compileCmd = &cobra.Command{
	Use:   "compile [root]",
	Short: "Rewrite i18n calls under root and write the results to the output directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(rootArg(args))
		if err != nil {
			return err
		}
		c := compilation.NewCompiler(opts, virtual.NewRegistry(), logger)
		_, err = compileProject(cmd.Context(), cmd.OutOrStdout(), c, root)
		return err
	},
}

// compileProject runs one build of root and emits its outputs
func compileProject(ctx context.Context, out io.Writer, c *compilation.Compiler, root string) (*compilation.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fmt.Fprintf(out, "🔨 Compiling %s\n", root)

	report, err := c.Compile(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("error compiling %s: %w", root, err)
	}
	if err := c.Emit(root, report); err != nil {
		return nil, err
	}

	printReport(out, root, c.OutDir(root), report)
	return report, nil
}

func printReport(out io.Writer, root, outDir string, report *compilation.Report) {
	fmt.Fprintf(out, "📂 Scanned %d source file(s)\n", report.Files)
	for _, result := range report.Outputs {
		fmt.Fprintf(out, "   ✓ %s (%d call(s) rewritten)\n", relative(root, result.Path), result.Rewrites)
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintf(out, "   ⚠️  %s\n", d.Message)
	}
	fmt.Fprintf(out, "📁 Output directory: %s\n", outDir)
	fmt.Fprintf(out, "✅ %d call(s) rewritten in %d file(s), %d module(s) generated, %d diagnostic(s) in %v\n",
		report.Rewrites, len(report.Outputs), len(report.Modules), len(report.Diagnostics), report.Duration)
}

func relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
