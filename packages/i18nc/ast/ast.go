// Package ast holds the narrow view of a JavaScript syntax tree that the
// rewrite pass consumes. Hosts adapt their own node types to these
// interfaces; nothing here depends on a particular parser.
package ast

// Kind classifies the few expression shapes the rewrite pass tells apart
type Kind int

const (
	KindOther Kind = iota
	KindIdentifier
	KindCall
)

func (k Kind) String() string {
	switch k {
	case KindIdentifier:
		return "Identifier"
	case KindCall:
		return "CallExpression"
	default:
		return "Other"
	}
}

// Span is a half-open byte range [Start, End) in the source text
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span
func (s Span) Len() int {
	return s.End - s.Start
}

// Node is any expression position seen by the rewrite pass
type Node interface {
	Kind() Kind
	Span() Span
}

// Identifier is a bare name reference
type Identifier interface {
	Node
	Name() string
}

// CallExpression is a call such as `useI18n()` or `compose(a(), b())`.
// ArgumentsSpan covers the parenthesized argument list including both
// parentheses; replacing it rewrites the call's arguments in place.
type CallExpression interface {
	Node
	Callee() Node
	Arguments() []Node
	ArgumentsSpan() Span
}

// ImportSpecifier is one named binding of an import declaration:
//
//	import {useI18n as useI18nAlias} from '@shopify/react-i18n';
//
// yields Source "@shopify/react-i18n", ExportName "useI18n" and LocalName
// "useI18nAlias".
type ImportSpecifier struct {
	Source     string
	ExportName string
	LocalName  string
}

// Ident is a plain Identifier value
type Ident struct {
	Value string
	At    Span
}

func (i *Ident) Kind() Kind   { return KindIdentifier }
func (i *Ident) Span() Span   { return i.At }
func (i *Ident) Name() string { return i.Value }

// Call is a plain CallExpression value
type Call struct {
	Fn     Node
	Args   []Node
	At     Span
	ArgsAt Span
}

func (c *Call) Kind() Kind          { return KindCall }
func (c *Call) Span() Span          { return c.At }
func (c *Call) Callee() Node        { return c.Fn }
func (c *Call) Arguments() []Node   { return c.Args }
func (c *Call) ArgumentsSpan() Span { return c.ArgsAt }

// Expr is any other expression
type Expr struct {
	At Span
}

func (e *Expr) Kind() Kind { return KindOther }
func (e *Expr) Span() Span { return e.At }

// CalleeName returns the callee's identifier name, or "" when the callee is
// not a bare identifier.
func CalleeName(call CallExpression) string {
	callee := call.Callee()
	if callee == nil || callee.Kind() != KindIdentifier {
		return ""
	}
	ident, ok := callee.(Identifier)
	if !ok {
		return ""
	}
	return ident.Name()
}

// AsCall returns n as a CallExpression when it is one
func AsCall(n Node) (CallExpression, bool) {
	if n == nil || n.Kind() != KindCall {
		return nil, false
	}
	call, ok := n.(CallExpression)
	return call, ok
}
