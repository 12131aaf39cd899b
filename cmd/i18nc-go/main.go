package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"i18nc-go/packages/i18nc/config"
	"i18nc-go/packages/i18nc/core"
)

var (
	// Global flags
	verbose        bool
	configPath     string
	fallbackLocale string
	outDir         string
	permissive     bool

	logger *zap.Logger
	opts   *config.Options
)

var rootCmd = &cobra.Command{
	Use:   "i18nc-go",
	Short: "i18nc-go - fill in useI18n/withI18n translation bundles at build time",
	Long: `i18nc-go rewrites argument-less useI18n() and withI18n() calls in
JavaScript and TypeScript components so that they receive the component's
translation bundle: a stable id, the eagerly imported fallback dictionary and
a lazy loader for every other locale found in the sibling translations/
directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configFile(args))
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("fallback-locale") {
			loaded.FallbackLocale = fallbackLocale
		}
		if cmd.Flags().Changed("out-dir") {
			loaded.OutDir = outDir
		}
		if permissive {
			loaded.StrictLocales = false
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		opts = loaded

		zc := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(opts.LogLevel)
		if err != nil {
			level = zapcore.InfoLevel
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zc.Level = zap.NewAtomicLevelAt(level)
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "i18nc-go %s\n", core.Current())
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default <root>/"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().StringVar(&fallbackLocale, "fallback-locale", config.DefaultFallbackLocale, "Locale bundled eagerly")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out-dir", "o", config.DefaultOutDir, "Output directory, relative to the root")
	rootCmd.PersistentFlags().BoolVar(&permissive, "permissive", false, "Treat every entry of translations/ as a locale")

	rootCmd.AddCommand(compileCmd, watchCmd, checkCmd, versionCmd)
}

// configFile returns the explicit config path or the default one in root
func configFile(args []string) string {
	if configPath != "" {
		return configPath
	}
	return filepath.Join(rootArg(args), config.DefaultFileName)
}

// rootArg returns the project root argument, "." when absent
func rootArg(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return "."
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
