package rewrite

import (
	"strings"

	"logfix/internal/errors"
)

// SplitArgs splits the raw text of an argument list into its top-level
// argument expressions. Nested parentheses and quoted literals are opaque:
// a comma only terminates an argument at depth zero outside any quote.
// Each produced argument is whitespace-trimmed; empty segments (as left by
// a trailing comma) are dropped.
//
// On unbalanced input the error carries code UNPARSABLE_EXPRESSION; the
// function never panics.
func SplitArgs(argList string) ([]Argument, error) {
	var (
		t    tracker
		args []Argument
		cur  strings.Builder
	)

	flush := func() {
		text := strings.TrimSpace(cur.String())
		cur.Reset()
		if text != "" {
			args = append(args, Argument{Text: text, Position: len(args)})
		}
	}

	for i := 0; i < len(argList); i++ {
		c := argList[i]
		if c == ',' && t.topLevel() {
			flush()
			continue
		}
		if !t.step(c) {
			return nil, errors.New(errors.UnparsableExpression,
				"unbalanced closing parenthesis in argument list", nil).
				WithDetails(map[string]interface{}{"offset": i})
		}
		cur.WriteByte(c)
	}
	if !t.balanced() {
		return nil, errors.New(errors.UnparsableExpression,
			"argument list ends inside an open parenthesis or quote", nil)
	}
	flush()

	return args, nil
}
