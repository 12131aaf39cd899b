// Package host parses JavaScript and TypeScript sources with tree-sitter and
// drives the rewrite plugin over them: import specifiers first, then every
// call expression in source order. Replacements and injected bindings are
// applied to the original text afterwards.
package host

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"go.uber.org/zap"

	"i18nc-go/packages/i18nc/ast"
	"i18nc-go/packages/i18nc/rewrite"
)

// Edit replaces the source covered by Span with Text
type Edit struct {
	Span ast.Span
	Text string
}

// Binding is an injected module-level default import
type Binding struct {
	Name    string
	Request string
}

// Statement renders the binding as an import declaration
func (b Binding) Statement() string {
	return fmt.Sprintf("import %s from '%s';", b.Name, b.Request)
}

// Result is the outcome of transforming one file
type Result struct {
	Path     string
	Source   []byte
	Changed  bool
	Rewrites int
}

// Transformer runs the rewrite plugin over source files
type Transformer struct {
	plugin *rewrite.Plugin
	logger *zap.Logger
}

// NewTransformer creates a Transformer
func NewTransformer(plugin *rewrite.Plugin, logger *zap.Logger) *Transformer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Transformer{plugin: plugin, logger: logger}
}

// LanguageFor picks the tree-sitter grammar for a file extension
func LanguageFor(path string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".mts", ".cts":
		return typescript.GetLanguage()
	case ".tsx":
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// Transform parses src and rewrites its helper calls within build b
func (t *Transformer) Transform(ctx context.Context, b *rewrite.Build, path string, src []byte) (*Result, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(LanguageFor(path))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	defer tree.Close()
	root := tree.RootNode()
	if root.HasError() {
		t.logger.Debug("source has syntax errors, continuing", zap.String("file", path))
	}

	// import declarations are module-level; collect them all before any
	// call is matched
	for i := 0; i < int(root.NamedChildCount()); i++ {
		stmt := root.NamedChild(i)
		if stmt.Type() != nodeImportStatement {
			continue
		}
		for _, spec := range importSpecifiers(stmt, src) {
			if err := t.plugin.ImportSpecifier(b, path, spec); err != nil {
				return nil, err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := newSourceModule(path)
	rewrites := 0
	walkCalls(root, func(n *sitter.Node) {
		rewrites += t.plugin.CallExpression(b, m, &callNode{node: n, src: src})
	})

	result := &Result{Path: path, Source: src, Rewrites: rewrites}
	if len(m.edits) == 0 && len(m.bindings) == 0 {
		return result, nil
	}
	result.Source = Apply(src, m.edits, m.bindings, prologueEnd(root))
	result.Changed = true
	t.logger.Debug("transformed file",
		zap.String("file", path),
		zap.Int("rewrites", rewrites),
		zap.Int("bindings", len(m.bindings)))
	return result, nil
}

// walkCalls visits call expressions in pre-order, so an enclosing compose
// call is seen before the calls among its arguments
func walkCalls(n *sitter.Node, visit func(*sitter.Node)) {
	if n.Type() == nodeCallExpression {
		visit(n)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walkCalls(n.NamedChild(i), visit)
	}
}

// Apply performs edits on src and inserts the bindings' import declarations
// at offset importAt. Overlapping edits keep the one that starts last.
func Apply(src []byte, edits []Edit, bindings []Binding, importAt int) []byte {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Span.Start > sorted[j].Span.Start
	})

	out := append([]byte(nil), src...)
	limit := len(src)
	for _, e := range sorted {
		if e.Span.Start < 0 || e.Span.End > limit || e.Span.Start > e.Span.End {
			continue
		}
		tail := append([]byte(e.Text), out[e.Span.End:]...)
		out = append(out[:e.Span.Start], tail...)
		limit = e.Span.Start
	}

	if len(bindings) == 0 {
		return out
	}
	if importAt < 0 || importAt > limit {
		importAt = 0
	}
	var header strings.Builder
	if importAt > 0 {
		header.WriteString("\n")
	}
	for _, b := range bindings {
		header.WriteString(b.Statement())
		header.WriteString("\n")
	}
	tail := append([]byte(header.String()), out[importAt:]...)
	return append(out[:importAt], tail...)
}

// sourceModule implements rewrite.Module for one parsed file
type sourceModule struct {
	path     string
	edits    []Edit
	bindings []Binding
	names    map[string]struct{}
}

func newSourceModule(path string) *sourceModule {
	return &sourceModule{path: path, names: make(map[string]struct{})}
}

func (m *sourceModule) Resource() string { return m.path }

func (m *sourceModule) Context() string { return filepath.Dir(m.path) }

func (m *sourceModule) Replace(span ast.Span, text string) {
	m.edits = append(m.edits, Edit{Span: span, Text: text})
}

func (m *sourceModule) AddBinding(name, request string) {
	if _, ok := m.names[name]; ok {
		return
	}
	m.names[name] = struct{}{}
	m.bindings = append(m.bindings, Binding{Name: name, Request: request})
}
