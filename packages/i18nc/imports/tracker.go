// Package imports records which local names are bound to the localization
// helpers in each file of a build.
package imports

import (
	"sync"

	"i18nc-go/packages/i18nc/ast"
)

const (
	// UseI18n is the hook export of the localization library
	UseI18n = "useI18n"
	// WithI18n is the higher-order component export of the localization library
	WithI18n = "withI18n"
)

// IsRecognized reports whether exportName is one of the tracked helpers
func IsRecognized(exportName string) bool {
	return exportName == UseI18n || exportName == WithI18n
}

// Bindings maps a recognized export name to its local identifier in one file
type Bindings map[string]string

// Has reports whether local is bound to a recognized export
func (b Bindings) Has(local string) bool {
	for _, name := range b {
		if name == local {
			return true
		}
	}
	return false
}

// Tracker is the per-build import binding map keyed by file path. Files may
// be traversed concurrently; each file only writes its own entry.
type Tracker struct {
	mu    sync.RWMutex
	files map[string]Bindings
}

// NewTracker creates an empty Tracker
func NewTracker() *Tracker {
	return &Tracker{files: make(map[string]Bindings)}
}

// Observe records spec for file when it imports useI18n or withI18n. Other
// specifiers are ignored. A later import of the same export replaces the
// earlier local name.
func (t *Tracker) Observe(file string, spec ast.ImportSpecifier) bool {
	if !IsRecognized(spec.ExportName) || spec.LocalName == "" {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	bindings, ok := t.files[file]
	if !ok {
		bindings = make(Bindings)
		t.files[file] = bindings
	}
	bindings[spec.ExportName] = spec.LocalName
	return true
}

// Lookup returns a copy of file's bindings. ok is false when the file never
// imported a recognized helper.
func (t *Tracker) Lookup(file string) (Bindings, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	bindings, ok := t.files[file]
	if !ok {
		return nil, false
	}
	out := make(Bindings, len(bindings))
	for k, v := range bindings {
		out[k] = v
	}
	return out, true
}
