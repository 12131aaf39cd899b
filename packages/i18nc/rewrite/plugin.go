// Package rewrite fills in the arguments of argument-less useI18n/withI18n
// calls with a generated translation bundle description.
//
// A call is rewritten when its callee is a local name imported as useI18n or
// withI18n and it has no arguments, either directly:
//
//	const [i18n] = useI18n();
//
// or as an argument of compose:
//
//	export default compose(withI18n(), withRouter())(Header);
//
// The arguments become
//
//	({id: 'Header_z4uwg', fallback: __i18n_en, translations(locale) {...}})
//
// where __i18n_en is the eagerly imported fallback dictionary and translations
// lazily imports the other dictionaries through a generated
// translations/translationFactory.js module.
package rewrite

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"i18nc-go/packages/i18nc/ast"
	"i18nc-go/packages/i18nc/config"
	"i18nc-go/packages/i18nc/idgen"
	"i18nc-go/packages/i18nc/imports"
	"i18nc-go/packages/i18nc/manifest"
	"i18nc-go/packages/i18nc/output"
	"i18nc-go/packages/i18nc/util"
	"i18nc-go/packages/i18nc/virtual"
)

const (
	// ComposeName is the callee whose call arguments are searched for helpers
	ComposeName   = "compose"
	dependencyDir = "node_modules"
)

// ErrImportAfterCalls is returned when a host reports an import specifier for
// a file whose call expressions are already being matched
var ErrImportAfterCalls = errors.New("import specifier observed after call matching started")

// Module is the host's view of the file being compiled
type Module interface {
	// Resource is the path of the file
	Resource() string
	// Context is the directory containing the file
	Context() string
	// Replace substitutes text for the source covered by span
	Replace(span ast.Span, text string)
	// AddBinding adds a module-level `import name from request`. Adding the
	// same name twice keeps one binding.
	AddBinding(name, request string)
}

// Candidate is a call eligible for rewriting
type Candidate struct {
	Call ast.CallExpression
	// Identifier is the tracked local name the call matched
	Identifier string
}

// Plugin matches and rewrites helper calls
type Plugin struct {
	fallbackLocale string
	resolver       *manifest.Resolver
	registrar      *virtual.Registrar
	logger         *zap.Logger
}

// New creates a Plugin. fsys lists translation directories and w receives
// the generated loader modules.
func New(opts *config.Options, fsys manifest.FileSystem, w virtual.Writer, logger *zap.Logger) *Plugin {
	if opts == nil {
		opts = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Plugin{
		fallbackLocale: opts.FallbackLocale,
		resolver:       manifest.NewResolver(fsys, opts.FallbackLocale, opts.StrictLocales, logger),
		registrar:      virtual.NewRegistrar(w, logger),
		logger:         logger,
	}
}

// ImportSpecifier is the import phase hook: it records recognized helper
// bindings for file.
func (p *Plugin) ImportSpecifier(b *Build, file string, spec ast.ImportSpecifier) error {
	if b.inCallPhase(file) {
		return fmt.Errorf("%s: %w", file, ErrImportAfterCalls)
	}
	if b.Imports.Observe(file, spec) {
		p.logger.Debug("tracked i18n import",
			zap.String("file", file),
			zap.String("export", spec.ExportName),
			zap.String("local", spec.LocalName))
	}
	return nil
}

// CallExpression is the call phase hook. It rewrites the eligible calls found
// at call and returns how many were rewritten.
func (p *Plugin) CallExpression(b *Build, m Module, call ast.CallExpression) int {
	file := m.Resource()
	b.BeginCalls(file)

	bindings, ok := b.Imports.Lookup(file)
	if !ok {
		// covers vendored code too: dependencies are only looked at when
		// they import a helper themselves
		return 0
	}
	if isDependency(file) {
		p.logger.Debug("matching calls in dependency", zap.String("file", file))
	}

	var candidates []Candidate
	for _, c := range Candidates(bindings, call) {
		if b.claim(file, c.Call.Span()) {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return 0
	}

	mf := p.resolver.Resolve(m.Context())
	if mf.Empty() {
		return 0
	}

	if !mf.HasFallback() {
		for _, c := range candidates {
			d := missingFallback(file, c.Identifier, mf.FallbackPath())
			b.Report(d)
			p.logger.Warn("fallback translation missing",
				zap.String("file", file),
				zap.String("identifier", c.Identifier),
				zap.String("expected", d.ExpectedPath))
		}
		return 0
	}

	id := idgen.GenerateID(ComponentName(file))

	fallbackBinding := output.FallbackBinding(p.fallbackLocale)
	m.AddBinding(fallbackBinding, util.ToSlash(mf.FallbackPath()))

	b.addModule(p.registrar.Register(m.Context(), output.LoaderSource(output.ChunkName(id))))
	m.AddBinding(output.LoaderBinding, util.ToSlash(filepath.Join(manifest.DirectoryName, output.LoaderFileName)))

	text := output.ArgumentList(output.Arguments{
		ID:              id,
		FallbackBinding: fallbackBinding,
		Locales:         mf.LocaleNames(),
		LoaderBinding:   output.LoaderBinding,
	})
	for _, c := range candidates {
		m.Replace(c.Call.ArgumentsSpan(), text)
		p.logger.Debug("rewrote i18n call",
			zap.String("file", file),
			zap.String("identifier", c.Identifier),
			zap.String("id", id))
	}
	b.countRewrites(len(candidates))
	return len(candidates)
}

// Candidates returns the eligible calls at call given a file's bindings. A
// direct call to a tracked name yields itself; a compose call yields each of
// its arguments that is such a call. Calls with arguments never qualify.
func Candidates(bindings imports.Bindings, call ast.CallExpression) []Candidate {
	name := ast.CalleeName(call)
	if name == "" {
		return nil
	}

	if bindings.Has(name) {
		if len(call.Arguments()) > 0 {
			return nil
		}
		return []Candidate{{Call: call, Identifier: name}}
	}

	if name != ComposeName {
		return nil
	}
	var candidates []Candidate
	for _, arg := range call.Arguments() {
		inner, ok := ast.AsCall(arg)
		if !ok {
			continue
		}
		innerName := ast.CalleeName(inner)
		if innerName == "" || !bindings.Has(innerName) || len(inner.Arguments()) > 0 {
			continue
		}
		candidates = append(candidates, Candidate{Call: inner, Identifier: innerName})
	}
	return candidates
}

// ComponentName returns the file's base name up to its first dot, so
// "src/Header/Header.test.tsx" becomes "Header"
func ComponentName(file string) string {
	base := filepath.Base(file)
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

func isDependency(file string) bool {
	for _, part := range strings.Split(filepath.ToSlash(file), "/") {
		if part == dependencyDir {
			return true
		}
	}
	return false
}
