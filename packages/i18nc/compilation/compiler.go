// Package compilation runs one build of the rewrite pass over a project: it
// discovers sources, traverses them in parallel inside a fresh build context
// and writes the rewritten files and generated modules to the output
// directory.
package compilation

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"i18nc-go/packages/i18nc/config"
	"i18nc-go/packages/i18nc/host"
	"i18nc-go/packages/i18nc/manifest"
	"i18nc-go/packages/i18nc/rewrite"
	"i18nc-go/packages/i18nc/virtual"
)

// skipDirs are never descended into during discovery
var skipDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	".git":         true,
}

// Report summarizes one build
type Report struct {
	// Files is the number of sources traversed
	Files int
	// Outputs holds the changed files, sorted by path
	Outputs []*host.Result
	// Diagnostics are the non-fatal problems found
	Diagnostics []rewrite.Diagnostic
	// Rewrites is the number of rewritten call sites
	Rewrites int
	// Modules lists the generated module paths registered by the build
	Modules  []string
	Duration time.Duration
}

// Compiler builds projects
type Compiler struct {
	opts        *config.Options
	registry    *virtual.Registry
	transformer *host.Transformer
	logger      *zap.Logger

	mu sync.Mutex
	// emitted holds the files written by the last Emit
	emitted map[string]struct{}
}

// NewCompiler creates a Compiler reading translations from disk. registry
// may be shared between builds of a watch session.
func NewCompiler(opts *config.Options, registry *virtual.Registry, logger *zap.Logger) *Compiler {
	return NewCompilerFS(opts, manifest.OSFileSystem{}, registry, logger)
}

// NewCompilerFS creates a Compiler listing translation directories through fsys
func NewCompilerFS(opts *config.Options, fsys manifest.FileSystem, registry *virtual.Registry, logger *zap.Logger) *Compiler {
	if opts == nil {
		opts = config.Default()
	}
	if registry == nil {
		registry = virtual.NewRegistry()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	plugin := rewrite.New(opts, fsys, registry, logger)
	return &Compiler{
		opts:        opts,
		registry:    registry,
		transformer: host.NewTransformer(plugin, logger),
		logger:      logger,
		emitted:     make(map[string]struct{}),
	}
}

// Registry returns the virtual module registry
func (c *Compiler) Registry() *virtual.Registry {
	return c.registry
}

// OutDir resolves the configured output directory against root
func (c *Compiler) OutDir(root string) string {
	if filepath.IsAbs(c.opts.OutDir) {
		return c.opts.OutDir
	}
	return filepath.Join(root, c.opts.OutDir)
}

// Discover lists the source files under root, skipping dependency, output
// and hidden directories
func (c *Compiler) Discover(root string) ([]string, error) {
	outDir := c.OutDir(root)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			c.logger.Debug("skipping unreadable path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (skipDirs[name] || strings.HasPrefix(name, ".") || path == outDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".d.ts") || !c.opts.HasExtension(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error discovering sources in %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Build traverses files within a new build context. Files are processed in
// parallel; each file runs its import phase before its call phase.
func (c *Compiler) Build(ctx context.Context, files []string) (*Report, error) {
	start := time.Now()
	b := rewrite.NewBuild()

	limit := c.opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	var (
		mu      sync.Mutex
		outputs []*host.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, file := range files {
		file := file
		g.Go(func() error {
			src, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("error reading %s: %w", file, err)
			}
			result, err := c.transformer.Transform(gctx, b, file, src)
			if err != nil {
				return err
			}
			if !result.Changed {
				return nil
			}
			mu.Lock()
			outputs = append(outputs, result)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(outputs, func(i, j int) bool {
		return outputs[i].Path < outputs[j].Path
	})
	report := &Report{
		Files:       len(files),
		Outputs:     outputs,
		Diagnostics: b.Diagnostics(),
		Rewrites:    b.Rewrites(),
		Modules:     b.Modules(),
		Duration:    time.Since(start),
	}
	c.logger.Info("build finished",
		zap.Int("files", report.Files),
		zap.Int("changed", len(report.Outputs)),
		zap.Int("rewrites", report.Rewrites),
		zap.Int("diagnostics", len(report.Diagnostics)),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// Compile discovers and builds every source under root. Generated modules
// that the build no longer registers are dropped from the registry.
func (c *Compiler) Compile(ctx context.Context, root string) (*Report, error) {
	files, err := c.Discover(root)
	if err != nil {
		return nil, err
	}
	report, err := c.Build(ctx, files)
	if err != nil {
		return nil, err
	}
	c.prune(report.Modules)
	return report, nil
}

// prune removes registry modules that are not in live
func (c *Compiler) prune(live []string) {
	keep := make(map[string]struct{}, len(live))
	for _, path := range live {
		keep[path] = struct{}{}
	}
	for _, path := range c.registry.Paths() {
		if _, ok := keep[path]; ok {
			continue
		}
		c.registry.Remove(path)
		c.logger.Debug("removed stale virtual module", zap.String("path", path))
	}
}

// Emit writes the report's changed files, its generated modules and the
// dictionaries next to them under the output directory, mirroring their
// paths relative to root. Files written by the previous Emit that the report
// no longer produces are deleted.
func (c *Compiler) Emit(root string, report *Report) error {
	outDir := c.OutDir(root)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}

	written := make(map[string]struct{})
	emit := func(path string, data []byte) error {
		target, err := c.write(root, outDir, path, data)
		if err != nil {
			return err
		}
		written[target] = struct{}{}
		return nil
	}

	for _, result := range report.Outputs {
		if err := emit(result.Path, result.Source); err != nil {
			return err
		}
	}
	for _, path := range report.Modules {
		source, ok := c.registry.Read(path)
		if !ok {
			continue
		}
		if err := emit(path, []byte(source)); err != nil {
			return err
		}
		dictionaries, err := listDictionaries(filepath.Dir(path))
		if err != nil {
			return err
		}
		for _, dict := range dictionaries {
			data, err := os.ReadFile(dict)
			if err != nil {
				return fmt.Errorf("error reading dictionary %s: %w", dict, err)
			}
			if err := emit(dict, data); err != nil {
				return err
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for target := range c.emitted {
		if _, ok := written[target]; ok {
			continue
		}
		if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("error removing stale output %s: %w", target, err)
		}
		c.logger.Debug("removed stale output", zap.String("path", target))
	}
	c.emitted = written
	return nil
}

// listDictionaries returns the JSON files of a translations directory
func listDictionaries(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != manifest.Extension {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	return files, nil
}

func (c *Compiler) write(root, outDir, path string, data []byte) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%s is outside of %s", path, root)
	}
	target := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("error creating directory for %s: %w", target, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("error writing output file %s: %w", target, err)
	}
	c.logger.Debug("wrote output", zap.String("path", target))
	return target, nil
}
