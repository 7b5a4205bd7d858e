// Package checker classifies argument literals before their text is trusted
// as a static value. All functions are total: empty input is false.
package checker

import (
	"errors"
	"strconv"
	"strings"
)

const (
	unsafeInQuoted  = "$'\"<>"
	unsafeInDisplay = "\"'$<>{}"
)

// IsSafeQuotedLiteral reports whether text is a quoted string literal without
// interpolation, nested quotes or markup: at least three characters once
// trimmed, the same quote character at both ends and none of $ ' " < > inside.
func IsSafeQuotedLiteral(text string) bool {
	if len(text) < 3 {
		return false
	}
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < 3 {
		return false
	}
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	if first != '\'' && first != '"' {
		return false
	}
	if last != first {
		return false
	}
	return !strings.ContainsAny(trimmed[1:len(trimmed)-1], unsafeInQuoted)
}

// IsConstantValue reports whether text is a safe quoted literal, a number,
// or one of null/true/false in any case.
func IsConstantValue(text string) bool {
	if IsSafeQuotedLiteral(text) {
		return true
	}
	if text == "" {
		return false
	}
	if isNumeric(text) {
		return true
	}
	switch strings.ToLower(text) {
	case "null", "true", "false":
		return true
	}
	return false
}

// IsDisplayableLiteral strips the surrounding quote run and reports whether
// the remaining text can be shown verbatim in a tooltip.
func IsDisplayableLiteral(text string) bool {
	if text == "" {
		return false
	}
	return !strings.ContainsAny(TrimQuotes(text), unsafeInDisplay)
}

// TrimQuotes removes every leading and trailing quote character
func TrimQuotes(text string) string {
	return strings.Trim(text, `"'`)
}

// StripQuotes removes every quote character, wherever it appears
func StripQuotes(text string) string {
	return strings.NewReplacer(`"`, "", `'`, "").Replace(text)
}

func isNumeric(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}
	trimmed = strings.TrimRight(trimmed, "dDfF")
	// INF and NAN are PHP constants, not numeric literals
	switch unsigned := strings.ToLower(strings.TrimLeft(trimmed, "+-")); {
	case strings.HasPrefix(unsigned, "inf"), strings.HasPrefix(unsigned, "nan"):
		return false
	}
	_, err := strconv.ParseFloat(trimmed, 64)
	return err == nil || errors.Is(err, strconv.ErrRange)
}
