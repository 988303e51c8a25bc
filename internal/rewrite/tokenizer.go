package rewrite

// tracker is the delimiter state machine shared by argument splitting and
// call-boundary detection. It tracks three pieces of state: parenthesis
// depth, whether the position is inside a quoted string literal, and whether
// the next character is escaped by a backslash inside that literal.
type tracker struct {
	depth   int
	inQuote bool
	escaped bool
}

// step consumes one character and updates the state. It reports false when
// the input is structurally invalid (a closing parenthesis at depth zero).
func (t *tracker) step(c byte) bool {
	if t.escaped {
		t.escaped = false
		return true
	}

	switch c {
	case '\\':
		if t.inQuote {
			t.escaped = true
		}
	case '"':
		t.inQuote = !t.inQuote
	case '(':
		if !t.inQuote {
			t.depth++
		}
	case ')':
		if !t.inQuote {
			if t.depth == 0 {
				return false
			}
			t.depth--
		}
	}
	return true
}

// topLevel reports whether the current position is outside any nested
// parenthesis pair and outside any quoted literal. Commas seen here are
// argument separators.
func (t *tracker) topLevel() bool {
	return t.depth == 0 && !t.inQuote
}

// balanced reports whether the input consumed so far is complete: every
// opened parenthesis closed and every quote terminated. The condition is
// the same as topLevel; the separate name marks end-of-input checks.
func (t *tracker) balanced() bool {
	return t.topLevel()
}
