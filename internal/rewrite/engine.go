package rewrite

import (
	"regexp"
	"strings"

	"logfix/internal/errors"
)

// Options parameterizes the engine. The zero value is not usable; use
// DefaultOptions or populate every field.
type Options struct {
	// Methods is the set of method names to scan for.
	Methods []string
	// PlaceholderPattern matches one placeholder token; its first capture
	// group is the placeholder name.
	PlaceholderPattern string
	// AuxiliaryIdents are argument texts recognized as a trailing
	// argument to preserve (error/exception values).
	AuxiliaryIdents []string
	// Marker is prefixed to the template's opening quote on rewrite.
	Marker string
}

// DefaultOptions mirrors the conventions of the target codebase:
// the custom ILogger method family, C# interpolation, and the usual
// exception variable names.
func DefaultOptions() Options {
	return Options{
		Methods:            []string{"LogError", "LogWarning", "LogInfo", "LogDebug", "LogTrace"},
		PlaceholderPattern: `\{([^{}]+)\}`,
		AuxiliaryIdents:    []string{"ex", "exception", "e"},
		Marker:             "$",
	}
}

// Engine orchestrates scanning, splitting, and binding over one buffer.
type Engine struct {
	scanner *Scanner
	binder  *Binder
	marker  string
}

// NewEngine compiles the placeholder pattern and wires up the pipeline.
func NewEngine(opts Options) (*Engine, error) {
	re, err := regexp.Compile(opts.PlaceholderPattern)
	if err != nil {
		return nil, errors.New(errors.ConfigInvalid,
			"invalid placeholder pattern", err)
	}
	if re.NumSubexp() < 1 {
		return nil, errors.New(errors.ConfigInvalid,
			"placeholder pattern needs a capture group for the name", nil)
	}

	return &Engine{
		scanner: NewScanner(opts.Methods, re, opts.Marker),
		binder:  NewBinder(re, opts.AuxiliaryIdents),
		marker:  opts.Marker,
	}, nil
}

// Rewrite processes every candidate call site in buffer and returns the
// new buffer along with one Result per site, in scan order. Sites that
// cannot be split or bound are reported and left byte-for-byte unchanged;
// no text outside a rewritten span is ever touched.
func (e *Engine) Rewrite(buffer string) (string, []Result) {
	sites := e.scanner.Scan(buffer)
	results := make([]Result, 0, len(sites))

	for _, site := range sites {
		results = append(results, e.rewriteSite(buffer, site))
	}

	// Apply right-to-left so earlier replacements never invalidate
	// later offsets.
	out := buffer
	for i := len(results) - 1; i >= 0; i-- {
		r := results[i]
		if r.Outcome != Rewritten {
			continue
		}
		out = out[:r.Start] + r.Replacement + out[r.End:]
	}

	return out, results
}

func (e *Engine) rewriteSite(buffer string, site CallSite) Result {
	res := Result{Start: site.Start, End: site.End, Method: site.Method}

	if site.unparsable {
		res.Outcome = SkippedUnparsable
		res.Reason = "argument list never closes"
		return res
	}

	args, err := SplitArgs(site.ArgList)
	if err != nil {
		res.Outcome = SkippedUnparsable
		res.Reason = err.Error()
		return res
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(site.Template, `"`), `"`)
	substituted, aux, err := e.binder.Bind(inner, args)
	if err != nil {
		res.Outcome = SkippedMismatch
		res.Reason = err.Error()
		return res
	}

	var b strings.Builder
	b.WriteString(site.Method)
	b.WriteByte('(')
	b.WriteString(e.marker)
	b.WriteByte('"')
	b.WriteString(substituted)
	b.WriteByte('"')
	if aux != "" {
		b.WriteString(", ")
		b.WriteString(aux)
	}
	b.WriteString(site.Trailing)

	replacement := b.String()
	if replacement == buffer[site.Start:site.End] {
		res.Outcome = Unchanged
		return res
	}

	res.Outcome = Rewritten
	res.Replacement = replacement
	return res
}

// Tally counts results per outcome.
type Tally struct {
	Rewritten         int `json:"rewritten"`
	SkippedUnparsable int `json:"skippedUnparsable"`
	SkippedMismatch   int `json:"skippedMismatch"`
	Unchanged         int `json:"unchanged"`
}

// TallyResults aggregates a result sequence into per-outcome counts.
func TallyResults(results []Result) Tally {
	var t Tally
	for _, r := range results {
		switch r.Outcome {
		case Rewritten:
			t.Rewritten++
		case SkippedUnparsable:
			t.SkippedUnparsable++
		case SkippedMismatch:
			t.SkippedMismatch++
		case Unchanged:
			t.Unchanged++
		}
	}
	return t
}

// Add merges another tally into t.
func (t *Tally) Add(other Tally) {
	t.Rewritten += other.Rewritten
	t.SkippedUnparsable += other.SkippedUnparsable
	t.SkippedMismatch += other.SkippedMismatch
	t.Unchanged += other.Unchanged
}
