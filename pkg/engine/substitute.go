package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/olmosoft/beret/pkg/feature"
)

// placeholderRe matches <name> tokens in step text.
var placeholderRe = regexp.MustCompile(`<(\w+)>`)

// UnresolvedPlaceholderError reports a <name> token with no matching entry in
// the active example row. It indicates a malformed outline table, so the step
// must not proceed with the literal token text.
type UnresolvedPlaceholderError struct {
	Name string // the missing key
	Text string // the original step text
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder <%s> in step %q", e.Name, e.Text)
}

// Substitute expands every <name> token in text using the given row. Values
// are substituted literally and never re-scanned, so a <name> inside a value
// is not recursively expanded. Text without tokens passes through unchanged
// (the empty row is the identity case for non-outline scenarios).
func Substitute(text string, row feature.Row) (string, error) {
	idxs := placeholderRe.FindAllStringSubmatchIndex(text, -1)
	if len(idxs) == 0 {
		return text, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range idxs {
		name := text[m[2]:m[3]]
		val, ok := row[name]
		if !ok {
			return "", &UnresolvedPlaceholderError{Name: name, Text: text}
		}
		b.WriteString(text[last:m[0]])
		b.WriteString(val)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}
