package rewrite

import (
	"fmt"
	"sort"
	"sync"

	"i18nc-go/packages/i18nc/ast"
	"i18nc-go/packages/i18nc/imports"
)

// Diagnostic is a non-fatal build problem attached to one call site
type Diagnostic struct {
	// File is the component path
	File string
	// Identifier is the matched local helper name
	Identifier string
	// ExpectedPath is the fallback dictionary path relative to the component
	ExpectedPath string
	Message      string
}

// Error implements error so diagnostics can be joined into build reports
func (d Diagnostic) Error() string {
	return d.Message
}

func missingFallback(file, identifier, expected string) Diagnostic {
	return Diagnostic{
		File:         file,
		Identifier:   identifier,
		ExpectedPath: expected,
		Message: fmt.Sprintf("%s\n%s's arguments were not automatically filled in because "+
			"fallback translation file was not found at %s", file, identifier, expected),
	}
}

// Build is the state of one compilation pass. It is created per build and
// dropped afterwards; nothing in it survives into the next build.
//
// Each file is processed in two phases: every import specifier is passed to
// Plugin.ImportSpecifier, then every call expression to Plugin.CallExpression.
// Different files may be processed concurrently.
type Build struct {
	Imports *imports.Tracker

	mu          sync.Mutex
	diagnostics []Diagnostic
	claimed     map[string]map[ast.Span]struct{}
	matching    map[string]bool
	modules     map[string]struct{}
	rewrites    int
}

// NewBuild creates an empty build context
func NewBuild() *Build {
	return &Build{
		Imports:  imports.NewTracker(),
		claimed:  make(map[string]map[ast.Span]struct{}),
		matching: make(map[string]bool),
		modules:  make(map[string]struct{}),
	}
}

// Report records a diagnostic
func (b *Build) Report(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.diagnostics = append(b.diagnostics, d)
}

// Diagnostics returns the recorded diagnostics ordered by file
func (b *Build) Diagnostics() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.diagnostics))
	copy(out, b.diagnostics)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].File < out[j].File
	})
	return out
}

// Rewrites returns the number of call sites rewritten so far
func (b *Build) Rewrites() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rewrites
}

// Modules returns the generated module paths registered during this build,
// sorted
func (b *Build) Modules() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	paths := make([]string, 0, len(b.modules))
	for p := range b.modules {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// BeginCalls marks the end of file's import phase. Import specifiers observed
// for file afterwards are a host ordering bug.
func (b *Build) BeginCalls(file string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.matching[file] = true
}

func (b *Build) inCallPhase(file string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.matching[file]
}

// claim returns false when span in file was already handled in this build,
// so a call reached both directly and through compose is processed once
func (b *Build) claim(file string, span ast.Span) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	spans, ok := b.claimed[file]
	if !ok {
		spans = make(map[ast.Span]struct{})
		b.claimed[file] = spans
	}
	if _, done := spans[span]; done {
		return false
	}
	spans[span] = struct{}{}
	return true
}

func (b *Build) countRewrites(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rewrites += n
}

func (b *Build) addModule(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modules[path] = struct{}{}
}
