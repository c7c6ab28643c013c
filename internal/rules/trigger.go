// Package rules implements the ordered question-pattern matcher. Rules are
// evaluated in sequence and the first one whose trigger holds wins.
package rules

import (
	"regexp"
	"strings"

	"github.com/starford/virtualta/internal/relevance"
)

// Kind tags the variant held by a Trigger.
type Kind int

// Trigger kinds.
const (
	KindPattern Kind = iota + 1
	KindSubstring
	KindWord
	KindImage
	KindAll
	KindAny
)

// Trigger is a predicate over a question. Exactly the fields that belong to
// Kind are set; the zero Trigger never matches.
type Trigger struct {
	Kind     Kind
	Pattern  *regexp.Regexp
	Values   []string
	Children []Trigger
}

// Input is a question prepared for trigger evaluation. HasContext is set
// when the question overlaps the document cache.
type Input struct {
	Text       string
	Words      map[string]struct{}
	HasImage   bool
	HasContext bool
}

// NewInput lowercases question and indexes its words.
func NewInput(question string, hasImage bool) Input {
	tokens := relevance.Tokens(question)
	words := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		words[t] = struct{}{}
	}
	return Input{Text: relevance.Normalize(question), Words: words, HasImage: hasImage}
}

// Pattern matches when the regular expression matches anywhere in the
// lowercased question.
func Pattern(expr string) Trigger {
	return Trigger{Kind: KindPattern, Pattern: regexp.MustCompile(expr)}
}

// Substring matches when any of subs occurs in the lowercased question, even
// inside a longer word ("gpt" in "gpt4o", "model" in "models").
func Substring(subs ...string) Trigger {
	return Trigger{Kind: KindSubstring, Values: lower(subs)}
}

// Word matches when any of words is a whole word of the question. Values
// containing separators such as "end-term" fall back to substring checks.
func Word(words ...string) Trigger {
	return Trigger{Kind: KindWord, Values: lower(words)}
}

// Image matches when the question carries an image attachment.
func Image() Trigger {
	return Trigger{Kind: KindImage}
}

// All matches when every child matches.
func All(children ...Trigger) Trigger {
	return Trigger{Kind: KindAll, Children: children}
}

// Any matches when at least one child matches.
func Any(children ...Trigger) Trigger {
	return Trigger{Kind: KindAny, Children: children}
}

// Eval reports whether the trigger holds for in.
func (t Trigger) Eval(in Input) bool {
	switch t.Kind {
	case KindPattern:
		return t.Pattern != nil && t.Pattern.MatchString(in.Text)
	case KindSubstring:
		for _, s := range t.Values {
			if s != "" && strings.Contains(in.Text, s) {
				return true
			}
		}
		return false
	case KindWord:
		for _, w := range t.Values {
			if isWord(w) {
				if _, ok := in.Words[w]; ok {
					return true
				}
			} else if w != "" && strings.Contains(in.Text, w) {
				return true
			}
		}
		return false
	case KindImage:
		return in.HasImage
	case KindAll:
		if len(t.Children) == 0 {
			return false
		}
		for _, c := range t.Children {
			if !c.Eval(in) {
				return false
			}
		}
		return true
	case KindAny:
		for _, c := range t.Children {
			if c.Eval(in) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func isWord(s string) bool {
	toks := relevance.Tokens(s)
	return len(toks) == 1 && toks[0] == s
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = relevance.Normalize(s)
	}
	return out
}
