// Package rewrite implements the template-call rewriting engine: it finds
// diagnostic calls whose first argument is a message template with named
// placeholders, binds the trailing positional arguments to those
// placeholders, and produces a single pre-interpolated call.
//
// The engine is pure: Rewrite never touches the filesystem and always
// produces the same output for the same input buffer, so callers are free
// to run it over many files in parallel.
package rewrite

// Outcome classifies what happened to one call site.
type Outcome string

const (
	// Rewritten means the call was replaced with its interpolated form
	Rewritten Outcome = "REWRITTEN"
	// SkippedUnparsable means the argument list had unbalanced parens or quotes
	SkippedUnparsable Outcome = "SKIPPED_UNPARSABLE"
	// SkippedMismatch means placeholder/argument counts did not line up
	SkippedMismatch Outcome = "SKIPPED_MISMATCH"
	// Unchanged means the rewritten text was identical to the original
	Unchanged Outcome = "UNCHANGED"
)

// CallSite is one located occurrence of a target method invocation.
// Spans are byte offsets into the scanned buffer; End is exclusive and
// points just past the closing parenthesis.
type CallSite struct {
	Start  int
	End    int
	Method string

	// Template is the first argument's string literal, with quotes.
	Template string
	// ArgList is the raw text of the remaining arguments, verbatim,
	// without the leading comma.
	ArgList string
	// Trailing is the closing delimiter text.
	Trailing string

	// unparsable marks a site whose outer argument list never closed
	// (unterminated quote or unbalanced parens up to end of line).
	unparsable bool
}

// Argument is one top-level argument expression, whitespace-trimmed.
type Argument struct {
	Text     string
	Position int
}

// Placeholder is one named placeholder occurrence inside a template.
type Placeholder struct {
	Name  string
	Index int
}

// Result records the outcome for one call site. Replacement is empty
// unless Outcome is Rewritten.
type Result struct {
	Start       int     `json:"start"`
	End         int     `json:"end"`
	Method      string  `json:"method"`
	Outcome     Outcome `json:"outcome"`
	Replacement string  `json:"-"`
	Reason      string  `json:"reason,omitempty"`
}
