// Package manifest lists the translation files that sit beside a component
// and splits them into the fallback dictionary and the lazily loaded locales.
package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	// DirectoryName is the component sibling directory holding dictionaries
	DirectoryName = "translations"
	// Extension is the dictionary file suffix
	Extension = ".json"
)

// FileSystem is the directory listing capability supplied by the host.
// fstest.MapFS and OSFileSystem both satisfy it.
type FileSystem interface {
	ReadDir(name string) ([]fs.DirEntry, error)
}

// OSFileSystem reads directories from the real disk
type OSFileSystem struct{}

// ReadDir implements FileSystem
func (OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

// Manifest is the set of dictionaries found for one component directory
type Manifest struct {
	// Dir is the translations directory that was listed
	Dir string
	// FallbackLocale is the configured fallback locale code
	FallbackLocale string
	// Fallback is the fallback dictionary file name, empty when missing
	Fallback string
	// Locales holds the remaining dictionary file names, sorted
	Locales []string
}

// Empty reports whether no dictionary was found at all
func (m *Manifest) Empty() bool {
	return m == nil || (m.Fallback == "" && len(m.Locales) == 0)
}

// HasFallback reports whether the fallback dictionary exists
func (m *Manifest) HasFallback() bool {
	return m != nil && m.Fallback != ""
}

// FallbackPath returns the fallback dictionary path relative to the
// component directory, whether or not the file exists.
func (m *Manifest) FallbackPath() string {
	return filepath.Join(DirectoryName, FallbackFileName(m.FallbackLocale))
}

// LocaleNames returns the non-fallback locale codes in lexicographic order
func (m *Manifest) LocaleNames() []string {
	names := make([]string, 0, len(m.Locales))
	for _, file := range m.Locales {
		names = append(names, LocaleName(file))
	}
	sort.Strings(names)
	return names
}

// FallbackFileName returns the dictionary file name for a locale
func FallbackFileName(locale string) string {
	return locale + Extension
}

// LocaleName strips the extension from a dictionary file name
func LocaleName(file string) string {
	return strings.TrimSuffix(file, filepath.Ext(file))
}

// Resolver builds manifests from directory listings
type Resolver struct {
	fs             FileSystem
	fallbackLocale string
	strict         bool
	logger         *zap.Logger
}

// NewResolver creates a Resolver. In strict mode only entries named
// "<locale>.json" with a parseable BCP 47 locale are kept; otherwise every
// directory entry is taken to be a locale.
func NewResolver(fsys FileSystem, fallbackLocale string, strict bool, logger *zap.Logger) *Resolver {
	if fsys == nil {
		fsys = OSFileSystem{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		fs:             fsys,
		fallbackLocale: fallbackLocale,
		strict:         strict,
		logger:         logger,
	}
}

// List returns the entry names of componentDir/translations. A missing or
// unreadable directory yields an empty list.
func (r *Resolver) List(componentDir string) []string {
	dir := filepath.Join(componentDir, DirectoryName)
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		// no translations directory means nothing to localize
		return nil
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if r.strict && !r.acceptable(entry) {
			r.logger.Debug("ignoring translations entry",
				zap.String("dir", dir),
				zap.String("entry", entry.Name()))
			continue
		}
		names = append(names, entry.Name())
	}
	return names
}

// Resolve lists componentDir's dictionaries and partitions them
func (r *Resolver) Resolve(componentDir string) *Manifest {
	m := &Manifest{
		Dir:            filepath.Join(componentDir, DirectoryName),
		FallbackLocale: r.fallbackLocale,
	}
	fallbackFile := FallbackFileName(r.fallbackLocale)
	for _, name := range r.List(componentDir) {
		if name == fallbackFile {
			m.Fallback = name
			continue
		}
		m.Locales = append(m.Locales, name)
	}
	sort.Strings(m.Locales)
	return m
}

func (r *Resolver) acceptable(entry fs.DirEntry) bool {
	if entry.IsDir() {
		return false
	}
	name := entry.Name()
	if !strings.HasSuffix(name, Extension) {
		return false
	}
	_, err := language.Parse(strings.TrimSuffix(name, Extension))
	return err == nil
}
