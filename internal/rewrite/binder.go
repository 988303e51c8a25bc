package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"logfix/internal/errors"
)

// Binder substitutes template placeholders with argument expressions.
type Binder struct {
	placeholderRe *regexp.Regexp
	auxIdents     map[string]bool
}

// NewBinder creates a binder. placeholderRe must have one capture group
// delimiting the placeholder name inside the matched token.
func NewBinder(placeholderRe *regexp.Regexp, auxIdents []string) *Binder {
	aux := make(map[string]bool, len(auxIdents))
	for _, id := range auxIdents {
		aux[id] = true
	}
	return &Binder{placeholderRe: placeholderRe, auxIdents: aux}
}

// Placeholders returns every placeholder occurrence in template, in order.
func (b *Binder) Placeholders(template string) []Placeholder {
	matches := b.placeholderRe.FindAllStringSubmatch(template, -1)
	out := make([]Placeholder, 0, len(matches))
	for i, m := range matches {
		out = append(out, Placeholder{Name: m[1], Index: i})
	}
	return out
}

// Bind substitutes each placeholder in template (the literal's inner text,
// without quotes) with its positionally bound argument expression and
// returns the substituted text plus the auxiliary argument, if any.
//
// Arguments are consumed in order of first appearance of each distinct
// placeholder name; every occurrence of a name is substituted with the
// same bound argument. If, after binding, exactly one argument remains and
// it is a configured auxiliary identifier, it is returned separately so
// the caller can keep it as a trailing, non-inlined argument. Any other
// leftover makes the binding ambiguous and fails with
// PLACEHOLDER_MISMATCH rather than guessing.
func (b *Binder) Bind(template string, args []Argument) (string, string, error) {
	var names []string
	bound := make(map[string]string)

	for _, m := range b.placeholderRe.FindAllStringSubmatch(template, -1) {
		name := m[1]
		if _, seen := bound[name]; seen {
			continue
		}
		if len(names) >= len(args) {
			return "", "", errors.New(errors.PlaceholderMismatch,
				fmt.Sprintf("template needs more arguments than the call provides (placeholder %q has no argument)", name), nil)
		}
		bound[name] = args[len(names)].Text
		names = append(names, name)
	}

	aux := ""
	leftover := args[len(names):]
	switch len(leftover) {
	case 0:
	case 1:
		if !b.auxIdents[leftover[0].Text] {
			return "", "", errors.New(errors.PlaceholderMismatch,
				fmt.Sprintf("leftover argument %q is not a recognized trailing identifier", leftover[0].Text), nil)
		}
		aux = leftover[0].Text
	default:
		texts := make([]string, len(leftover))
		for i, a := range leftover {
			texts[i] = a.Text
		}
		return "", "", errors.New(errors.PlaceholderMismatch,
			"more than one argument left after binding: "+strings.Join(texts, ", "), nil)
	}

	// Splice each occurrence's name range, keeping the delimiters that
	// surround it, so custom placeholder syntaxes survive substitution.
	var out strings.Builder
	last := 0
	for _, idx := range b.placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		nameStart, nameEnd := idx[2], idx[3]
		name := template[nameStart:nameEnd]
		out.WriteString(template[last:nameStart])
		out.WriteString(bound[name])
		last = nameEnd
	}
	out.WriteString(template[last:])

	return out.String(), aux, nil
}
