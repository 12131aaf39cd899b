package rewrite_test

import (
	"testing"
	"testing/fstest"

	"i18nc-go/packages/i18nc/ast"
	"i18nc-go/packages/i18nc/config"
	"i18nc-go/packages/i18nc/imports"
	"i18nc-go/packages/i18nc/output"
	"i18nc-go/packages/i18nc/rewrite"
	"i18nc-go/packages/i18nc/virtual"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const component = "src/Header/Header.tsx"

type replacement struct {
	span ast.Span
	text string
}

type fakeModule struct {
	resource     string
	replacements []replacement
	bindings     map[string]string
}

func newModule(resource string) *fakeModule {
	return &fakeModule{resource: resource, bindings: map[string]string{}}
}

func (m *fakeModule) Resource() string { return m.resource }
func (m *fakeModule) Context() string  { return "src/Header" }
func (m *fakeModule) Replace(span ast.Span, text string) {
	m.replacements = append(m.replacements, replacement{span, text})
}
func (m *fakeModule) AddBinding(name, request string) { m.bindings[name] = request }

func translations(files ...string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, f := range files {
		fsys["src/Header/translations/"+f] = &fstest.MapFile{Data: []byte(`{}`)}
	}
	return fsys
}

// call builds callee(args...) with spans derived from start
func call(callee string, start int, args ...ast.Node) *ast.Call {
	end := start + len(callee) + 2
	for _, a := range args {
		end += a.Span().Len()
	}
	return &ast.Call{
		Fn:     &ast.Ident{Value: callee, At: ast.Span{Start: start, End: start + len(callee)}},
		Args:   args,
		At:     ast.Span{Start: start, End: end},
		ArgsAt: ast.Span{Start: start + len(callee), End: end},
	}
}

func setup(t *testing.T, fsys fstest.MapFS, specs ...ast.ImportSpecifier) (*rewrite.Plugin, *rewrite.Build, *virtual.Registry) {
	t.Helper()
	registry := virtual.NewRegistry()
	plugin := rewrite.New(config.Default(), fsys, registry, nil)
	build := rewrite.NewBuild()
	for _, spec := range specs {
		require.NoError(t, plugin.ImportSpecifier(build, component, spec))
	}
	return plugin, build, registry
}

var useI18nAlias = ast.ImportSpecifier{Source: "@shopify/react-i18n", ExportName: "useI18n", LocalName: "useI18nAlias"}
var withI18nImport = ast.ImportSpecifier{Source: "@shopify/react-i18n", ExportName: "withI18n", LocalName: "withI18n"}

func TestCallExpressionRewritesDirectCall(t *testing.T) {
	plugin, build, registry := setup(t, translations("en.json", "fr.json", "de.json"), useI18nAlias)
	m := newModule(component)
	c := call("useI18nAlias", 10)

	n := plugin.CallExpression(build, m, c)
	require.Equal(t, 1, n)
	require.Len(t, m.replacements, 1)

	expected := output.ArgumentList(output.Arguments{
		ID:              "Header_z4uwg",
		FallbackBinding: "__i18n_en",
		Locales:         []string{"de", "fr"},
		LoaderBinding:   "translationFactory",
	})
	if diff := cmp.Diff(expected, m.replacements[0].text); diff != "" {
		t.Errorf("replacement mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, c.ArgsAt, m.replacements[0].span)
	assert.Equal(t, map[string]string{
		"__i18n_en":          "./translations/en.json",
		"translationFactory": "./translations/translationFactory.js",
	}, m.bindings)

	source, ok := registry.Read("src/Header/translations/translationFactory.js")
	require.True(t, ok)
	assert.Equal(t, output.LoaderSource("Header_z4uwg-i18n"), source)
	assert.Equal(t, 1, build.Rewrites())
	assert.Empty(t, build.Diagnostics())
}

func TestCallExpressionFallbackBinding(t *testing.T) {
	t.Run("should not bind a reserved word", func(t *testing.T) {
		fsys := translations("new.json", "fr.json")
		plugin := rewrite.New(config.New(config.WithFallbackLocale("new")), fsys, virtual.NewRegistry(), nil)
		build := rewrite.NewBuild()
		require.NoError(t, plugin.ImportSpecifier(build, component, useI18nAlias))
		m := newModule(component)

		require.Equal(t, 1, plugin.CallExpression(build, m, call("useI18nAlias", 0)))
		assert.Equal(t, "./translations/new.json", m.bindings["__i18n_new"])
		assert.NotContains(t, m.bindings, "new")
		assert.Contains(t, m.replacements[0].text, "fallback: __i18n_new,")
	})

	t.Run("should leave the component's own names alone", func(t *testing.T) {
		plugin, build, _ := setup(t, translations("en.json"), useI18nAlias)
		m := newModule(component)

		require.Equal(t, 1, plugin.CallExpression(build, m, call("useI18nAlias", 0)))
		assert.NotContains(t, m.bindings, "en")
	})
}

func TestCallExpressionRecordsModules(t *testing.T) {
	plugin, build, _ := setup(t, translations("en.json", "fr.json"), useI18nAlias)
	assert.Empty(t, build.Modules())

	plugin.CallExpression(build, newModule(component), call("useI18nAlias", 0))
	assert.Equal(t, []string{"src/Header/translations/translationFactory.js"}, build.Modules())
}

func TestCallExpressionSkipsCallsWithArguments(t *testing.T) {
	plugin, build, registry := setup(t, translations("en.json", "fr.json"), useI18nAlias)
	m := newModule(component)
	arg := &ast.Expr{At: ast.Span{Start: 13, End: 17}}

	assert.Equal(t, 0, plugin.CallExpression(build, m, call("useI18nAlias", 0, arg)))
	assert.Empty(t, m.replacements)
	assert.Empty(t, m.bindings)
	assert.Equal(t, 0, registry.Len())
}

func TestCallExpressionSkipsFilesWithoutBindings(t *testing.T) {
	plugin, build, registry := setup(t, translations("en.json", "fr.json"))
	m := newModule(component)

	assert.Equal(t, 0, plugin.CallExpression(build, m, call("useI18n", 0)))
	assert.Empty(t, m.replacements)
	assert.Equal(t, 0, registry.Len())
	_, found := build.Imports.Lookup(component)
	assert.False(t, found)
}

func TestCallExpressionSkipsDependenciesWithoutBindings(t *testing.T) {
	plugin, build, _ := setup(t, translations("en.json"))
	m := newModule("node_modules/lib/index.js")
	composed := call("compose", 0, call("useI18n", 8))

	assert.Equal(t, 0, plugin.CallExpression(build, m, composed))
	assert.Empty(t, m.replacements)
}

func TestCallExpressionCompose(t *testing.T) {
	t.Run("should rewrite only tracked sub-calls", func(t *testing.T) {
		plugin, build, _ := setup(t, translations("en.json", "fr.json"), useI18nAlias)
		m := newModule(component)
		inner := call("useI18nAlias", 8)
		composed := call("compose", 0, inner, call("other", 22))

		require.Equal(t, 1, plugin.CallExpression(build, m, composed))
		require.Len(t, m.replacements, 1)
		assert.Equal(t, inner.ArgsAt, m.replacements[0].span)
	})

	t.Run("should rewrite several helpers in one compose", func(t *testing.T) {
		plugin, build, _ := setup(t, translations("en.json", "fr.json"), useI18nAlias, withI18nImport)
		m := newModule(component)
		composed := call("compose", 0, call("withI18n", 8), call("useI18nAlias", 18))

		assert.Equal(t, 2, plugin.CallExpression(build, m, composed))
		assert.Len(t, m.replacements, 2)
		assert.Len(t, m.bindings, 2)
	})

	t.Run("should rewrite a call reached twice only once", func(t *testing.T) {
		plugin, build, _ := setup(t, translations("en.json", "fr.json"), withI18nImport)
		m := newModule(component)
		inner := call("withI18n", 8)
		composed := call("compose", 0, inner)

		assert.Equal(t, 1, plugin.CallExpression(build, m, composed))
		assert.Equal(t, 0, plugin.CallExpression(build, m, inner))
		assert.Len(t, m.replacements, 1)
		assert.Equal(t, 1, build.Rewrites())
	})

	t.Run("should ignore sub-calls with arguments", func(t *testing.T) {
		plugin, build, _ := setup(t, translations("en.json", "fr.json"), withI18nImport)
		m := newModule(component)
		inner := call("withI18n", 8, &ast.Expr{At: ast.Span{Start: 17, End: 20}})

		assert.Equal(t, 0, plugin.CallExpression(build, m, call("compose", 0, inner)))
	})
}

func TestCallExpressionEmptyManifest(t *testing.T) {
	plugin, build, registry := setup(t, fstest.MapFS{}, useI18nAlias)
	m := newModule(component)

	assert.Equal(t, 0, plugin.CallExpression(build, m, call("useI18nAlias", 0)))
	assert.Empty(t, m.replacements)
	assert.Equal(t, 0, registry.Len())
	assert.Empty(t, build.Diagnostics())
}

func TestCallExpressionMissingFallback(t *testing.T) {
	plugin, build, registry := setup(t, translations("fr.json", "de.json"), useI18nAlias)
	m := newModule(component)

	assert.Equal(t, 0, plugin.CallExpression(build, m, call("useI18nAlias", 0)))
	assert.Empty(t, m.replacements)
	assert.Empty(t, m.bindings)
	assert.Equal(t, 0, registry.Len())

	diagnostics := build.Diagnostics()
	require.Len(t, diagnostics, 1)
	d := diagnostics[0]
	assert.Equal(t, component, d.File)
	assert.Equal(t, "useI18nAlias", d.Identifier)
	assert.Equal(t, "translations/en.json", d.ExpectedPath)
	assert.Contains(t, d.Error(), component)
	assert.Contains(t, d.Error(), "en.json")
	assert.Contains(t, d.Error(), "useI18nAlias")
}

func TestCallExpressionIsIdempotentAcrossBuilds(t *testing.T) {
	fsys := translations("en.json", "fr.json", "de.json")
	registry := virtual.NewRegistry()
	plugin := rewrite.New(config.Default(), fsys, registry, nil)

	run := func() (string, string) {
		build := rewrite.NewBuild()
		require.NoError(t, plugin.ImportSpecifier(build, component, useI18nAlias))
		m := newModule(component)
		require.Equal(t, 1, plugin.CallExpression(build, m, call("useI18nAlias", 0)))
		source, _ := registry.Read("src/Header/translations/translationFactory.js")
		return m.replacements[0].text, source
	}

	firstText, firstSource := run()
	secondText, secondSource := run()
	assert.Equal(t, firstText, secondText)
	assert.Equal(t, firstSource, secondSource)
	assert.Equal(t, 1, registry.Len())
}

func TestImportSpecifierAfterCalls(t *testing.T) {
	plugin, build, _ := setup(t, translations("en.json"), useI18nAlias)
	plugin.CallExpression(build, newModule(component), call("other", 0))

	err := plugin.ImportSpecifier(build, component, withI18nImport)
	assert.ErrorIs(t, err, rewrite.ErrImportAfterCalls)
}

func TestCandidates(t *testing.T) {
	bindings := imports.Bindings{imports.UseI18n: "useI18nAlias"}

	t.Run("should ignore untracked callees", func(t *testing.T) {
		assert.Empty(t, rewrite.Candidates(bindings, call("useOther", 0)))
	})

	t.Run("should ignore non identifier callees", func(t *testing.T) {
		c := &ast.Call{Fn: &ast.Expr{At: ast.Span{Start: 0, End: 5}}, At: ast.Span{Start: 0, End: 7}, ArgsAt: ast.Span{Start: 5, End: 7}}
		assert.Empty(t, rewrite.Candidates(bindings, c))
	})

	t.Run("should ignore non call compose arguments", func(t *testing.T) {
		c := call("compose", 0, &ast.Ident{Value: "useI18nAlias", At: ast.Span{Start: 8, End: 20}})
		assert.Empty(t, rewrite.Candidates(bindings, c))
	})

	t.Run("should name the matched identifier", func(t *testing.T) {
		candidates := rewrite.Candidates(bindings, call("compose", 0, call("useI18nAlias", 8), call("other", 22)))
		require.Len(t, candidates, 1)
		assert.Equal(t, "useI18nAlias", candidates[0].Identifier)
	})
}

func TestComponentName(t *testing.T) {
	assert.Equal(t, "Header", rewrite.ComponentName("/src/Header/Header.tsx"))
	assert.Equal(t, "Header", rewrite.ComponentName("/src/Header/Header.test.tsx"))
	assert.Equal(t, "index", rewrite.ComponentName("index"))
}
