package host_test

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"i18nc-go/packages/i18nc/ast"
	"i18nc-go/packages/i18nc/config"
	"i18nc-go/packages/i18nc/host"
	"i18nc-go/packages/i18nc/output"
	"i18nc-go/packages/i18nc/rewrite"
	"i18nc-go/packages/i18nc/virtual"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dictionaries(files ...string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for _, f := range files {
		fsys["src/Header/translations/"+f] = &fstest.MapFile{Data: []byte(`{}`)}
	}
	return fsys
}

func transform(t *testing.T, fsys fstest.MapFS, path, src string) (*host.Result, *rewrite.Build, *virtual.Registry) {
	t.Helper()
	registry := virtual.NewRegistry()
	plugin := rewrite.New(config.Default(), fsys, registry, nil)
	build := rewrite.NewBuild()
	result, err := host.NewTransformer(plugin, nil).Transform(context.Background(), build, path, []byte(src))
	require.NoError(t, err)
	return result, build, registry
}

var headerArguments = output.ArgumentList(output.Arguments{
	ID:              "Header_z4uwg",
	FallbackBinding: "__i18n_en",
	Locales:         []string{"de", "fr"},
	LoaderBinding:   "translationFactory",
})

const injectedImports = "import __i18n_en from './translations/en.json';\n" +
	"import translationFactory from './translations/translationFactory.js';\n"

func TestTransformHook(t *testing.T) {
	src := `import React from 'react';
import {useI18n} from '@shopify/react-i18n';

export default function Header() {
  const [i18n] = useI18n();
  return <h1>{i18n.translate('title')}</h1>;
}
`
	result, build, registry := transform(t, dictionaries("en.json", "fr.json", "de.json"), "src/Header/Header.tsx", src)

	expected := injectedImports + strings.Replace(src, "useI18n();", "useI18n"+headerArguments+";", 1)
	require.True(t, result.Changed)
	assert.Equal(t, 1, result.Rewrites)
	if diff := cmp.Diff(expected, string(result.Source)); diff != "" {
		t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
	}

	loader, ok := registry.Read("src/Header/translations/translationFactory.js")
	require.True(t, ok)
	assert.Equal(t, output.LoaderSource("Header_z4uwg-i18n"), loader)
	assert.Empty(t, build.Diagnostics())
}

func TestTransformAliasedCompose(t *testing.T) {
	src := `import {compose} from 'redux';
import {withI18n as translated} from '@shopify/react-i18n';
import {withRouter} from 'react-router';

function Header() {
  return null;
}

export default compose(translated(), withRouter())(Header);
`
	result, _, _ := transform(t, dictionaries("en.json", "fr.json", "de.json"), "src/Header/Header.js", src)

	expected := injectedImports + strings.Replace(src, "translated()", "translated"+headerArguments, 1)
	assert.Equal(t, 1, result.Rewrites)
	if diff := cmp.Diff(expected, string(result.Source)); diff != "" {
		t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
	}
}

func TestTransformKeepsManualArguments(t *testing.T) {
	src := `import {useI18n} from '@shopify/react-i18n';

export function Header() {
  const [i18n] = useI18n({id: 'Custom'});
  return null;
}
`
	result, _, registry := transform(t, dictionaries("en.json", "fr.json"), "src/Header/Header.tsx", src)

	assert.False(t, result.Changed)
	assert.Equal(t, src, string(result.Source))
	assert.Equal(t, 0, registry.Len())
}

func TestTransformWithoutImports(t *testing.T) {
	src := `function useI18n() {}
export const value = useI18n();
`
	result, build, _ := transform(t, dictionaries("en.json", "fr.json"), "src/Header/Header.ts", src)

	assert.False(t, result.Changed)
	assert.Equal(t, src, string(result.Source))
	_, found := build.Imports.Lookup("src/Header/Header.ts")
	assert.False(t, found)
}

func TestTransformMissingFallback(t *testing.T) {
	src := `import {useI18n} from '@shopify/react-i18n';
export const Header = () => useI18n();
`
	result, build, _ := transform(t, dictionaries("fr.json", "de.json"), "src/Header/Header.tsx", src)

	assert.False(t, result.Changed)
	assert.Equal(t, src, string(result.Source))
	diagnostics := build.Diagnostics()
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0].Error(), "translations/en.json")
	assert.Contains(t, diagnostics[0].Error(), "src/Header/Header.tsx")
}

func TestTransformKeepsDirectives(t *testing.T) {
	src := `'use client';
import {useI18n} from '@shopify/react-i18n';
export const Header = () => useI18n();
`
	result, _, _ := transform(t, dictionaries("en.json", "fr.json", "de.json"), "src/Header/Header.tsx", src)

	expected := "'use client';\n" + injectedImports +
		strings.Replace(strings.TrimPrefix(src, "'use client';"), "useI18n();", "useI18n"+headerArguments+";", 1)
	if diff := cmp.Diff(expected, string(result.Source)); diff != "" {
		t.Errorf("Transform() mismatch (-want +got):\n%s", diff)
	}
}

func TestApply(t *testing.T) {
	t.Run("should apply edits from the end", func(t *testing.T) {
		src := []byte("a(); b();")
		edits := []host.Edit{
			{Span: ast.Span{Start: 1, End: 3}, Text: "(1)"},
			{Span: ast.Span{Start: 6, End: 8}, Text: "(2)"},
		}
		assert.Equal(t, "a(1); b(2);", string(host.Apply(src, edits, nil, 0)))
	})

	t.Run("should drop overlapping edits", func(t *testing.T) {
		src := []byte("abcdef")
		edits := []host.Edit{
			{Span: ast.Span{Start: 0, End: 4}, Text: "X"},
			{Span: ast.Span{Start: 2, End: 6}, Text: "Y"},
		}
		assert.Equal(t, "abY", string(host.Apply(src, edits, nil, 0)))
	})

	t.Run("should insert bindings at the offset", func(t *testing.T) {
		src := []byte("'use strict';\nx();\n")
		bindings := []host.Binding{{Name: "en", Request: "./translations/en.json"}}
		assert.Equal(t,
			"'use strict';\nimport en from './translations/en.json';\n\nx();\n",
			string(host.Apply(src, nil, bindings, 13)))
	})
}
