// Package i18nc fills in the arguments of useI18n and withI18n calls at build time.
//
// A component that imports one of the helpers from @shopify/react-i18n and calls it
// with no arguments receives a translation bundle: a stable id derived from the
// component's file name, the fallback dictionary imported eagerly, and a
// translations(locale) function that lazily loads any other locale found in the
// component's sibling translations/ directory through a generated loader module.
//
// Main sub-packages:
//
//   - rewrite: the per-build plugin (import tracking, call matching and rewriting)
//   - host: tree-sitter parsing of JavaScript/TypeScript and applying edits
//   - compilation: project discovery, concurrent builds, emitting and watch mode
//   - imports: per-file bindings of the recognized helpers
//   - manifest: locale discovery in translations/ directories
//   - idgen: stable bundle ids
//   - output: argument object and loader module synthesis
//   - virtual: generated module registry
//   - dictionary: go-i18n validation of translation files
//   - config: options loaded from i18nc.yaml and I18NC_* environment variables
//   - core, util, ast: version, string helpers and the node model shared by the above
package i18nc
