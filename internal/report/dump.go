package report

import (
	"strings"

	"github.com/verustcode/rulemap/internal/ruletree"
)

// indentUnit is the indentation used for every dump
const indentUnit = "  "

// readableStripper removes the JSON punctuation from a dump
var readableStripper = strings.NewReplacer(
	"{", "",
	"}", "",
	"[", "",
	"]", "",
	",", "",
	`"`, "",
	"'", "",
)

// FormatJSON renders a value as two-space indented JSON, keys in source order.
func FormatJSON(v *ruletree.Value) string {
	return v.Indent(indentUnit)
}

// ReadableDump renders a value as indented JSON with every bracket, brace,
// comma and quote removed. Indentation survives; the result cannot be parsed
// back.
func ReadableDump(v *ruletree.Value) string {
	return readableStripper.Replace(FormatJSON(v))
}
