// Package subst carries the flat find/replace rule family that accompanies
// the template-call rewriter: logger type renames, using-directive swaps,
// and the opt-in financial-precision and nullable-property fixes. Rules
// are data, not code, so teams can ship their own rule files alongside
// the built-in set.
package subst

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"encoding/json"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"logfix/internal/errors"
)

// Rule is one substitution. Literal rules match and replace plain text;
// otherwise Pattern is a regexp and Replace may use $1-style group
// references. Rules run in declaration order, so narrower rules should
// precede catch-alls.
type Rule struct {
	Name    string `toml:"name" yaml:"name" json:"name"`
	Group   string `toml:"group" yaml:"group" json:"group"`
	Pattern string `toml:"pattern" yaml:"pattern" json:"pattern"`
	Replace string `toml:"replace" yaml:"replace" json:"replace"`
	Literal bool   `toml:"literal" yaml:"literal" json:"literal"`

	re *regexp.Regexp
}

// RuleSet is an ordered, compiled collection of rules.
type RuleSet struct {
	Rules []Rule `toml:"rules" yaml:"rules" json:"rules"`
}

// DefaultRules returns the built-in rule set: the logging-migration rules
// applied across the target codebase, plus the opt-in financial-precision
// and nullable-property groups (disabled unless selected via Filter).
// Uninitialized-property rules anchor on end of line, so a declaration that
// already carries an initializer never matches again.
func DefaultRules() *RuleSet {
	rs := &RuleSet{
		Rules: []Rule{
			{
				Name:    "using-directive",
				Group:   "logging",
				Pattern: "using Microsoft.Extensions.Logging;",
				Replace: "using TradingPlatform.Core.Interfaces;",
				Literal: true,
			},
			{
				Name:    "logger-field",
				Group:   "logging",
				Pattern: `private readonly ILogger<\w+> _logger;`,
				Replace: "private readonly ILogger _logger;",
			},
			{
				Name:    "logger-ctor-param",
				Group:   "logging",
				Pattern: `ILogger<\w+> logger`,
				Replace: "ILogger logger",
			},
			{
				Name:    "logger-generic",
				Group:   "logging",
				Pattern: `ILogger<[^>]+>`,
				Replace: "ILogger",
			},
			{
				Name:    "float-collections",
				Group:   "financial",
				Pattern: `<(?:float|double)>`,
				Replace: "<decimal>",
			},
			{
				Name:    "float-dictionaries",
				Group:   "financial",
				Pattern: `Dictionary<([^,>]+),\s*(?:float|double)>`,
				Replace: "Dictionary<$1, decimal>",
			},
			{
				Name:    "float-arrays",
				Group:   "financial",
				Pattern: `\b(?:float|double)\[\]`,
				Replace: "decimal[]",
			},
			{
				Name:    "string-property-init",
				Group:   "nullable",
				Pattern: `(?m)^(\s*public\s+string\s+\w+\s*\{\s*get;\s*(?:set;|init;)\s*\})\s*$`,
				Replace: "$1 = string.Empty;",
			},
			{
				Name:    "collection-property-init",
				Group:   "nullable",
				Pattern: `(?m)^(\s*public\s+(?:List|IList|HashSet|Dictionary|IEnumerable|ICollection)<[^>]+>\s+\w+\s*\{\s*get;\s*(?:set;|init;)\s*\})\s*$`,
				Replace: "$1 = new();",
			},
			{
				Name:    "array-property-init",
				Group:   "nullable",
				Pattern: `(?m)^(\s*public\s+(\w+)\[\]\s+\w+\s*\{\s*get;\s*(?:set;|init;)\s*\})\s*$`,
				Replace: "$1 = Array.Empty<$2>();",
			},
		},
	}
	// Built-ins are static; compilation cannot fail.
	_ = rs.Compile()
	return rs
}

// Load reads a rule file. The format follows the extension: .toml, .yaml
// or .yml, or .json.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New(errors.RulesInvalid, "cannot read rules file", err)
	}

	rs := &RuleSet{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, rs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, rs)
	case ".json":
		err = json.Unmarshal(data, rs)
	default:
		return nil, errors.New(errors.RulesInvalid,
			"unsupported rules file extension: "+filepath.Ext(path), nil)
	}
	if err != nil {
		return nil, errors.New(errors.RulesInvalid, "cannot parse rules file", err)
	}

	if err := rs.Compile(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Compile compiles every non-literal rule's pattern.
func (rs *RuleSet) Compile() error {
	for i := range rs.Rules {
		r := &rs.Rules[i]
		if r.Literal {
			continue
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return errors.New(errors.RulesInvalid,
				"invalid pattern in rule "+r.Name, err)
		}
		r.re = re
	}
	return nil
}

// Filter returns the subset of rules belonging to the given groups.
// Rules without a group are always kept.
func (rs *RuleSet) Filter(groups ...string) *RuleSet {
	want := make(map[string]bool, len(groups))
	for _, g := range groups {
		want[g] = true
	}

	out := &RuleSet{}
	for _, r := range rs.Rules {
		if r.Group == "" || want[r.Group] {
			out.Rules = append(out.Rules, r)
		}
	}
	return out
}

// Apply runs every rule over content in order and returns the new content
// along with the total number of substitutions made.
func (rs *RuleSet) Apply(content string) (string, int) {
	changes := 0
	for _, r := range rs.Rules {
		if r.Literal {
			n := strings.Count(content, r.Pattern)
			if n > 0 {
				content = strings.ReplaceAll(content, r.Pattern, r.Replace)
				changes += n
			}
			continue
		}
		if r.re == nil {
			continue
		}
		n := len(r.re.FindAllStringIndex(content, -1))
		if n > 0 {
			content = r.re.ReplaceAllString(content, r.Replace)
			changes += n
		}
	}
	return content, changes
}
