package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFallbackLocale is the locale bundled eagerly when none is configured
	DefaultFallbackLocale = "en"
	// DefaultOutDir is where compile writes rewritten sources, relative to the root
	DefaultOutDir = "dist/i18nc"
	// DefaultFileName is the config file looked up in the project root
	DefaultFileName = "i18nc.yaml"
	// EnvPrefix prefixes every environment override
	EnvPrefix = "I18NC_"
)

// Options configures a build
type Options struct {
	// FallbackLocale is the locale whose dictionary is imported eagerly
	FallbackLocale string `yaml:"fallback_locale" env:"FALLBACK_LOCALE"`
	// StrictLocales keeps only "<locale>.json" dictionaries in a manifest
	StrictLocales bool `yaml:"strict_locales" env:"STRICT_LOCALES"`
	// Concurrency bounds parallel file traversal, 0 means GOMAXPROCS
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`
	// OutDir receives rewritten sources and generated modules
	OutDir string `yaml:"out_dir" env:"OUT_DIR"`
	// LogLevel is a zap level name
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// Extensions lists the source file suffixes to traverse
	Extensions []string `yaml:"extensions" env:"EXTENSIONS" envSeparator:","`
}

// Option is a function that modifies Options
type Option func(*Options)

// Default returns the default options
func Default() *Options {
	return &Options{
		FallbackLocale: DefaultFallbackLocale,
		StrictLocales:  true,
		Concurrency:    0,
		OutDir:         DefaultOutDir,
		LogLevel:       "info",
		Extensions:     []string{".js", ".jsx", ".ts", ".tsx", ".mjs"},
	}
}

// New creates Options from the defaults and opts
func New(opts ...Option) *Options {
	o := Default()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithFallbackLocale sets the fallback locale
func WithFallbackLocale(locale string) Option {
	return func(o *Options) {
		o.FallbackLocale = locale
	}
}

// WithStrictLocales sets whether manifest entries are validated
func WithStrictLocales(strict bool) Option {
	return func(o *Options) {
		o.StrictLocales = strict
	}
}

// WithConcurrency sets the parallel traversal limit
func WithConcurrency(n int) Option {
	return func(o *Options) {
		o.Concurrency = n
	}
}

// WithOutDir sets the output directory
func WithOutDir(dir string) Option {
	return func(o *Options) {
		o.OutDir = dir
	}
}

// Load reads options from a YAML file, falling back to defaults when the
// file does not exist, then applies I18NC_* environment overrides.
func Load(path string) (*Options, error) {
	o := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, o); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// defaults
		default:
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := env.ParseWithOptions(o, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// Validate checks the options and normalizes extensions to a leading dot
func (o *Options) Validate() error {
	if strings.TrimSpace(o.FallbackLocale) == "" {
		return errors.New("fallback locale must not be empty")
	}
	if _, err := language.Parse(o.FallbackLocale); err != nil {
		return fmt.Errorf("invalid fallback locale %q: %w", o.FallbackLocale, err)
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", o.Concurrency)
	}
	for i, ext := range o.Extensions {
		ext = strings.TrimSpace(ext)
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		o.Extensions[i] = ext
	}
	return nil
}

// HasExtension reports whether path ends in one of the configured extensions
func (o *Options) HasExtension(path string) bool {
	for _, ext := range o.Extensions {
		if ext != "" && strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
