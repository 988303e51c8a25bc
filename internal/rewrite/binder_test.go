package rewrite

import (
	"regexp"
	"testing"

	"logfix/internal/errors"
)

func newTestBinder(t *testing.T) *Binder {
	t.Helper()
	return NewBinder(regexp.MustCompile(`\{([^{}]+)\}`), []string{"ex", "exception", "e"})
}

func TestBind(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []string
		want     string
		wantAux  string
	}{
		{
			name:     "single placeholder with auxiliary",
			template: "Value is {x}",
			args:     []string{"x", "ex"},
			want:     "Value is {x}",
			wantAux:  "ex",
		},
		{
			name:     "two placeholders no auxiliary",
			template: "A={a} B={b}",
			args:     []string{"a", "b"},
			want:     "A={a} B={b}",
			wantAux:  "",
		},
		{
			name:     "expression argument",
			template: "Nested {v}",
			args:     []string{"Compute(a, b)", "ex"},
			want:     "Nested {Compute(a, b)}",
			wantAux:  "ex",
		},
		{
			name:     "repeated placeholder bound once",
			template: "Symbol {s} retried; {s} abandoned",
			args:     []string{"order.Symbol"},
			want:     "Symbol {order.Symbol} retried; {order.Symbol} abandoned",
			wantAux:  "",
		},
		{
			name:     "placeholder names differ from arguments",
			template: "Price {Price} for {Symbol}",
			args:     []string{"quote.Price", "quote.Symbol", "exception"},
			want:     "Price {quote.Price} for {quote.Symbol}",
			wantAux:  "exception",
		},
	}

	b := newTestBinder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]Argument, len(tt.args))
			for i, a := range tt.args {
				args[i] = Argument{Text: a, Position: i}
			}

			got, aux, err := b.Bind(tt.template, args)
			if err != nil {
				t.Fatalf("Bind failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("substituted = %q, want %q", got, tt.want)
			}
			if aux != tt.wantAux {
				t.Errorf("aux = %q, want %q", aux, tt.wantAux)
			}
		})
	}
}

func TestBindFailures(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []string
	}{
		{"more placeholders than arguments", "A={a} B={b}", []string{"a"}},
		{"no arguments at all", "Value {x}", nil},
		{"leftover is not auxiliary", "Value {x}", []string{"x", "retryCount"}},
		{"two leftovers", "Value {x}", []string{"x", "y", "ex"}},
	}

	b := newTestBinder(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := make([]Argument, len(tt.args))
			for i, a := range tt.args {
				args[i] = Argument{Text: a, Position: i}
			}

			_, _, err := b.Bind(tt.template, args)
			if err == nil {
				t.Fatal("Bind should fail")
			}
			if errors.CodeOf(err) != errors.PlaceholderMismatch {
				t.Errorf("error code = %q, want PLACEHOLDER_MISMATCH", errors.CodeOf(err))
			}
		})
	}
}

func TestPlaceholders(t *testing.T) {
	b := newTestBinder(t)

	ph := b.Placeholders("A={a} B={b} again {a}")
	if len(ph) != 3 {
		t.Fatalf("expected 3 occurrences, got %d", len(ph))
	}
	names := []string{"a", "b", "a"}
	for i, want := range names {
		if ph[i].Name != want {
			t.Errorf("placeholder[%d].Name = %q, want %q", i, ph[i].Name, want)
		}
		if ph[i].Index != i {
			t.Errorf("placeholder[%d].Index = %d, want %d", i, ph[i].Index, i)
		}
	}
}
