package rules

import "github.com/starford/virtualta/internal/models"

// Rule maps a trigger to a canned answer and the links that must accompany it.
// A rule with NeedsContext only fires when the question also matched some
// cached document.
type Rule struct {
	ID           string
	Trigger      Trigger
	Answer       string
	Links        []models.Link
	NeedsContext bool
}

// Matcher evaluates an ordered rule list.
type Matcher struct {
	rules []Rule
}

// NewMatcher returns a matcher over a copy of rules. Order is significant.
func NewMatcher(rules []Rule) *Matcher {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Matcher{rules: cp}
}

// Default returns a matcher over the built-in rule list.
func Default() *Matcher {
	return NewMatcher(Builtin())
}

// Match returns the first rule whose trigger holds for in, skipping rules
// that need context when in has none. The boolean is false when no rule
// matches.
func (m *Matcher) Match(in Input) (Rule, bool) {
	for _, r := range m.rules {
		if r.NeedsContext && !in.HasContext {
			continue
		}
		if r.Trigger.Eval(in) {
			return r, true
		}
	}
	return Rule{}, false
}

// Len returns the number of rules.
func (m *Matcher) Len() int { return len(m.rules) }

// IDs returns the rule ids in evaluation order.
func (m *Matcher) IDs() []string {
	out := make([]string, len(m.rules))
	for i, r := range m.rules {
		out[i] = r.ID
	}
	return out
}
