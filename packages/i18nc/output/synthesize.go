// Package output generates the JavaScript text injected by the rewrite pass:
// the argument object handed to useI18n/withI18n and the lazy translation
// factory module placed beside each component's dictionaries.
package output

import (
	"encoding/json"
	"strings"

	"i18nc-go/packages/i18nc/util"
)

const (
	// LoaderBinding is the module-level name bound to the translation factory
	LoaderBinding = "translationFactory"
	// LoaderFileName is the virtual file name of the translation factory
	LoaderFileName = "translationFactory.js"
	// FallbackPrefix keeps fallback bindings clear of reserved words and of
	// the component's own names
	FallbackPrefix = "__i18n_"
	chunkSuffix    = "-i18n"
)

// FallbackBinding returns the import name of the fallback dictionary, so "en"
// becomes "__i18n_en" and "pt-BR" becomes "__i18n_ptBR"
func FallbackBinding(locale string) string {
	return FallbackPrefix + util.JsIdentifier(locale)
}

// Arguments is the data behind a synthesized call argument
type Arguments struct {
	// ID is the stable component id
	ID string
	// FallbackBinding names the eagerly imported fallback dictionary, empty
	// when there is none
	FallbackBinding string
	// Locales are the lazily loadable locale codes, already sorted
	Locales []string
	// LoaderBinding names the imported translation factory
	LoaderBinding string
}

// ChunkName returns the code-splitting chunk name for a component id
func ChunkName(id string) string {
	return id + chunkSuffix
}

// ObjectLiteral renders the argument object:
//
//	{
//	  id: 'Header_z4uwg',
//	  fallback: __i18n_en,
//	  translations(locale) { ... },
//	}
func ObjectLiteral(args Arguments) string {
	loader := args.LoaderBinding
	if loader == "" {
		loader = LoaderBinding
	}

	e := NewEmitter()
	e.Line("{")
	e.Indent()
	e.Line("id: '%s',", util.EscapeString(args.ID))
	if args.FallbackBinding != "" {
		e.Line("fallback: %s,", args.FallbackBinding)
	}
	e.Line("translations(locale) {")
	e.Indent()
	e.Line("const translations = [%s];", QuoteLocales(args.Locales))
	e.Blank()
	e.Line("if (translations.indexOf(locale) < 0) {")
	e.Indent()
	e.Line("return;")
	e.Dedent()
	e.Line("}")
	e.Blank()
	e.Line("return %s(locale);", loader)
	e.Dedent()
	e.Line("},")
	e.Dedent()
	e.Line("}")
	return strings.TrimSuffix(e.String(), "\n")
}

// ArgumentList renders the replacement for a call's parenthesized argument
// list, a single object literal argument
func ArgumentList(args Arguments) string {
	return "(" + ObjectLiteral(args) + ")"
}

// QuoteLocales JSON-quotes each locale and joins them with ", "
func QuoteLocales(locales []string) string {
	quoted := make([]string, 0, len(locales))
	for _, locale := range locales {
		b, err := json.Marshal(locale)
		if err != nil {
			// strings always marshal
			continue
		}
		quoted = append(quoted, string(b))
	}
	return strings.Join(quoted, ", ")
}

// LoaderSource renders the translation factory module. Its default export
// takes a locale and resolves to that locale's dictionary, loaded from a
// lazily fetched chunk named chunkName.
func LoaderSource(chunkName string) string {
	e := NewEmitter()
	e.Line("export default async function %s(locale) {", LoaderBinding)
	e.Indent()
	e.Line("const dictionary = await import(")
	e.Indent()
	e.Line(`/* webpackChunkName: "%s", webpackMode: "lazy-once" */`, util.EscapeString(chunkName))
	e.Line("`./${locale}.json`")
	e.Dedent()
	e.Line(");")
	e.Line("return dictionary && dictionary.default;")
	e.Dedent()
	e.Line("}")
	return e.String()
}
