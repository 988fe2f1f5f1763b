package convert

import "strings"

// Replacement maps a literal placeholder token to its replacement.
type Replacement struct {
	Token string
	Value string
}

// Vars is the placeholder table applied to every transformed artifact.
var Vars = []Replacement{
	{Token: "${CLAUDE_PLUGIN_ROOT}", Value: "${extensionPath}"},
}

// Substitute replaces every occurrence of each token in table, one entry at
// a time in table order. Overlapping tokens resolve by declaration order.
func Substitute(text string, table []Replacement) string {
	for _, r := range table {
		text = strings.ReplaceAll(text, r.Token, r.Value)
	}
	return text
}
