package rewrite

import (
	"regexp"
	"sort"
	"strings"
)

// Scanner locates call sites of interest: an occurrence of a configured
// method name followed by a parenthesized argument list whose first
// argument is a plain string literal containing at least one placeholder.
//
// Calls whose first argument is anything else, whose template carries no
// placeholder, or whose template already starts with the interpolation
// marker are not candidates and are passed over silently.
type Scanner struct {
	methods       []string
	placeholderRe *regexp.Regexp
	marker        string
}

// NewScanner creates a scanner for the given method-name set. Longer names
// are tried first so overlapping names cannot shadow each other.
func NewScanner(methods []string, placeholderRe *regexp.Regexp, marker string) *Scanner {
	sorted := make([]string, len(methods))
	copy(sorted, methods)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	return &Scanner{
		methods:       sorted,
		placeholderRe: placeholderRe,
		marker:        marker,
	}
}

// Scan returns every candidate call site in buffer, in buffer order.
// Sites never overlap: scanning resumes after the end of each match.
// A site whose outer argument list never closes on its line is returned
// flagged unparsable so the engine can report it without touching it.
func (s *Scanner) Scan(buffer string) []CallSite {
	var sites []CallSite

	for i := 0; i < len(buffer); {
		method := s.methodAt(buffer, i)
		if method == "" {
			i++
			continue
		}
		site, next, ok := s.parseCall(buffer, i, method)
		if !ok {
			i = next
			continue
		}
		sites = append(sites, site)
		i = next
	}

	return sites
}

// methodAt reports which configured method name starts at offset i as a
// whole identifier, or "" if none does.
func (s *Scanner) methodAt(buffer string, i int) string {
	if i > 0 && isIdentChar(buffer[i-1]) {
		return ""
	}
	for _, m := range s.methods {
		if strings.HasPrefix(buffer[i:], m) {
			end := i + len(m)
			if end < len(buffer) && isIdentChar(buffer[end]) {
				continue
			}
			return m
		}
	}
	return ""
}

// parseCall tries to parse a candidate call beginning at the method name.
// It returns the site, the offset scanning should resume from, and whether
// a site was produced.
func (s *Scanner) parseCall(buffer string, start int, method string) (CallSite, int, bool) {
	skip := start + len(method)

	// Opening parenthesis, possibly after whitespace.
	open := skipSpace(buffer, start+len(method))
	if open >= len(buffer) || buffer[open] != '(' {
		return CallSite{}, skip, false
	}

	// First argument must be a plain string literal.
	lit := skipSpace(buffer, open+1)
	if lit < len(buffer) && strings.HasPrefix(buffer[lit:], s.marker) {
		rest := lit + len(s.marker)
		if rest < len(buffer) && buffer[rest] == '"' {
			// Already interpolated; rewriting is idempotent.
			return CallSite{}, skip, false
		}
	}
	if lit >= len(buffer) || buffer[lit] != '"' {
		return CallSite{}, skip, false
	}

	quoteEnd, terminated := scanStringLiteral(buffer, lit)
	if !terminated {
		partial := buffer[lit+1 : quoteEnd]
		if !s.placeholderRe.MatchString(partial) {
			return CallSite{}, skip, false
		}
		return s.unparsableSite(buffer, start, method, quoteEnd), lineEnd(buffer, quoteEnd), true
	}

	template := buffer[lit : quoteEnd+1]
	if !s.placeholderRe.MatchString(buffer[lit+1 : quoteEnd]) {
		return CallSite{}, skip, false
	}

	// After the template: either the call closes, or a comma introduces
	// the positional arguments. Anything else (concatenation, ternaries)
	// means the first argument is not a plain literal.
	after := skipSpace(buffer, quoteEnd+1)
	if after >= len(buffer) {
		return s.unparsableSite(buffer, start, method, quoteEnd), lineEnd(buffer, quoteEnd), true
	}

	switch buffer[after] {
	case ')':
		return CallSite{
			Start:    start,
			End:      after + 1,
			Method:   method,
			Template: template,
			Trailing: ")",
		}, after + 1, true
	case ',':
	default:
		return CallSite{}, skip, false
	}

	argStart := after + 1
	var t tracker
	for i := argStart; i < len(buffer); i++ {
		c := buffer[i]
		if c == ')' && t.topLevel() {
			return CallSite{
				Start:    start,
				End:      i + 1,
				Method:   method,
				Template: template,
				ArgList:  buffer[argStart:i],
				Trailing: ")",
			}, i + 1, true
		}
		if (c == '\n' || c == '\r') && t.inQuote {
			// A regular string literal cannot span lines; the quote
			// is unterminated and the call boundary is unknowable.
			return s.unparsableSite(buffer, start, method, i), lineEnd(buffer, i), true
		}
		t.step(c)
	}

	return s.unparsableSite(buffer, start, method, len(buffer)), len(buffer), true
}

// unparsableSite builds a site spanning to the end of the offending line.
// The engine reports it and leaves the span byte-for-byte untouched.
func (s *Scanner) unparsableSite(buffer string, start int, method string, failAt int) CallSite {
	return CallSite{
		Start:      start,
		End:        lineEnd(buffer, failAt),
		Method:     method,
		unparsable: true,
	}
}

// scanStringLiteral consumes a double-quoted literal starting at open,
// honoring backslash escapes. It returns the offset of the closing quote
// and true, or the offset scanning stopped at (newline or end of buffer)
// and false when the literal never terminates.
func scanStringLiteral(buffer string, open int) (int, bool) {
	escaped := false
	for i := open + 1; i < len(buffer); i++ {
		c := buffer[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			escaped = true
		case '"':
			return i, true
		case '\n', '\r':
			return i, false
		}
	}
	return len(buffer), false
}

func skipSpace(buffer string, i int) int {
	for i < len(buffer) {
		switch buffer[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func lineEnd(buffer string, i int) int {
	for i < len(buffer) && buffer[i] != '\n' {
		i++
	}
	return i
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
