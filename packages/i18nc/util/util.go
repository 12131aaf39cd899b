package util

import (
	"regexp"
	"strings"
)

var separatorRegexp = regexp.MustCompile(`[-_.\s]+([A-Za-z0-9])`)

var invalidIdentifierRegexp = regexp.MustCompile(`[^A-Za-z0-9_$]`)

// CamelCase converts a dash, underscore or dot separated string to camelCase.
// The first character is lowered and each separated word is capitalized, so
// "pt-BR" becomes "ptBR" and "zh_hant" becomes "zhHant".
func CamelCase(input string) string {
	if input == "" {
		return ""
	}
	out := separatorRegexp.ReplaceAllStringFunc(input, func(match string) string {
		parts := separatorRegexp.FindStringSubmatch(match)
		if len(parts) > 1 {
			return strings.ToUpper(parts[1])
		}
		return match
	})
	return strings.ToLower(out[:1]) + out[1:]
}

// JsIdentifier turns input into a usable JavaScript binding name
func JsIdentifier(input string) string {
	id := invalidIdentifierRegexp.ReplaceAllString(CamelCase(input), "")
	if id == "" {
		return "_"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "_" + id
	}
	return id
}

// EscapeString escapes special characters in a string for a single or double
// quoted JavaScript string literal
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}

// ToSlash converts an OS path into the forward-slash form used in module
// requests, always keeping a leading "./" for relative requests.
func ToSlash(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../") {
		return p
	}
	return "./" + p
}
