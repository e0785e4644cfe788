// Package intent maps free-text requests to a research calculator.
package intent

import (
	"strings"

	"github.com/ashutoshrp06/propcalc/internal/types"
)

// Matcher reports whether a lower-cased utterance matches a rule.
type Matcher func(utterance string) bool

// Rule pairs a matcher with the tool it selects.
type Rule struct {
	Tool  types.ToolID
	Match Matcher
}

// anyOf matches when the utterance contains at least one phrase.
func anyOf(phrases ...string) Matcher {
	return func(u string) bool {
		for _, p := range phrases {
			if strings.Contains(u, p) {
				return true
			}
		}
		return false
	}
}

// allOf matches when the utterance contains every phrase.
func allOf(phrases ...string) Matcher {
	return func(u string) bool {
		for _, p := range phrases {
			if !strings.Contains(u, p) {
				return false
			}
		}
		return true
	}
}

// either combines matchers with OR.
func either(ms ...Matcher) Matcher {
	return func(u string) bool {
		for _, m := range ms {
			if m(u) {
				return true
			}
		}
		return false
	}
}

// DefaultRules returns the built-in rules in priority order. An utterance
// that matches several rules resolves to the earliest one.
func DefaultRules() []Rule {
	return []Rule{
		{
			Tool:  types.ToolMarginOfError,
			Match: either(anyOf("margin of error", "moe"), allOf("precision", "sample")),
		},
		{
			Tool:  types.ToolSampleSize,
			Match: anyOf("sample size", "how many respondents", "required sample"),
		},
		{
			Tool:  types.ToolMaxDiff,
			Match: anyOf("maxdiff", "max diff", "best-worst", "best worst"),
		},
		{
			Tool:  types.ToolSurveyLength,
			Match: anyOf("loi", "length of interview", "survey length", "survey duration", "how long"),
		},
		{
			Tool:  types.ToolDemographics,
			Match: anyOf("demograph", "quota", "distribution", "census"),
		},
		{
			Tool:  types.ToolFeasibility,
			Match: anyOf("feasibil", "achievable", "risk", "timeline"),
		},
	}
}

// Classifier evaluates an ordered rule table. It is safe for concurrent use.
type Classifier struct {
	rules []Rule
}

// New returns a classifier over rules. A nil slice uses DefaultRules.
func New(rules []Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the first tool whose rule matches, or false when none does.
func (c *Classifier) Classify(utterance string) (types.ToolID, bool) {
	u := strings.ToLower(utterance)
	if strings.TrimSpace(u) == "" {
		return "", false
	}
	for _, r := range c.rules {
		if r.Match(u) {
			return r.Tool, true
		}
	}
	return "", false
}

// Rules returns a copy of the classifier's rule table.
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

var defaultClassifier = New(nil)

// Classify runs the default rule table.
func Classify(utterance string) (types.ToolID, bool) {
	return defaultClassifier.Classify(utterance)
}
