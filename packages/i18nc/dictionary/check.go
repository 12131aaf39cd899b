// Package dictionary validates the translation dictionaries that the rewrite
// pass wires into components.
package dictionary

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"i18nc-go/packages/i18nc/manifest"
)

// Result is the outcome of checking one dictionary
type Result struct {
	Path   string
	Locale string
	// Messages is the number of messages parsed
	Messages int
	// Missing lists message ids present in the fallback dictionary but not
	// in this one
	Missing []string
	Err     error
}

// OK reports whether the dictionary parsed and covers the fallback
func (r Result) OK() bool {
	return r.Err == nil && len(r.Missing) == 0
}

// Checker parses dictionaries with go-i18n
type Checker struct {
	fallbackLocale string
	bundle         *i18n.Bundle
	logger         *zap.Logger
}

// NewChecker creates a Checker for the given fallback locale
func NewChecker(fallbackLocale string, logger *zap.Logger) (*Checker, error) {
	tag, err := language.Parse(fallbackLocale)
	if err != nil {
		return nil, fmt.Errorf("invalid fallback locale %q: %w", fallbackLocale, err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	return &Checker{
		fallbackLocale: fallbackLocale,
		bundle:         bundle,
		logger:         logger,
	}, nil
}

// ParseFile parses one dictionary; the locale is taken from the file name
func (c *Checker) ParseFile(path string) (*i18n.MessageFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	file, err := c.bundle.ParseMessageFileBytes(data, path)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", path, err)
	}
	return file, nil
}

// CheckDir checks every dictionary of one translations directory against
// its fallback dictionary
func (c *Checker) CheckDir(dir string) []Result {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	fallbackName := manifest.FallbackFileName(c.fallbackLocale)
	var fallbackIDs []string
	if file, err := c.ParseFile(filepath.Join(dir, fallbackName)); err == nil {
		fallbackIDs = messageIDs(file)
	}

	var results []Result
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != manifest.Extension {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		result := Result{Path: path, Locale: manifest.LocaleName(entry.Name())}
		file, err := c.ParseFile(path)
		if err != nil {
			result.Err = err
			results = append(results, result)
			continue
		}
		result.Messages = len(file.Messages)
		if entry.Name() != fallbackName {
			result.Missing = missing(fallbackIDs, messageIDs(file))
		}
		c.logger.Debug("checked dictionary",
			zap.String("path", path),
			zap.Int("messages", result.Messages),
			zap.Int("missing", len(result.Missing)))
		results = append(results, result)
	}
	return results
}

// Check walks root for translations directories and checks each one
func (c *Checker) Check(root string) ([]Result, error) {
	var results []Result
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if d.Name() == "node_modules" || (path != root && d.Name()[0] == '.') {
			return filepath.SkipDir
		}
		if d.Name() == manifest.DirectoryName {
			results = append(results, c.CheckDir(path)...)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return results, nil
}

func messageIDs(file *i18n.MessageFile) []string {
	ids := make([]string, 0, len(file.Messages))
	for _, m := range file.Messages {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	return ids
}

func missing(want, have []string) []string {
	present := make(map[string]struct{}, len(have))
	for _, id := range have {
		present[id] = struct{}{}
	}
	var out []string
	for _, id := range want {
		if _, ok := present[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}
