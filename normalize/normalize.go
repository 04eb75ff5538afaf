// Package normalize turns inconsistently formatted supplier text into
// canonical listing attributes. Every function here is pure: inputs are
// never mutated and each stage returns the remaining text alongside the
// extracted value.
package normalize

import (
	"strings"

	"golang.org/x/text/cases"
)

// Sentinel values standing in for unresolved fields instead of errors.
const (
	UnknownStorage = "Unknown Storage"
	UnknownColour  = "Unknown"
)

// MatchPolicy controls how the storage extractor treats ambiguous input
// containing more than one capacity token. Suppliers differ here, so the
// policy is chosen per adapter.
type MatchPolicy int

const (
	// MatchFirst accepts the first token in table order.
	MatchFirst MatchPolicy = iota
	// MatchSingle requires exactly one distinct token to match; anything
	// else keeps the sentinel.
	MatchSingle
)

// ExtractStorage scans text for the given capacity tokens (fixed literals,
// case-insensitive, in table order) and returns the remaining text with the
// matched token removed plus the canonical upper-cased capacity. When no
// token matches — or more than one under MatchSingle — the text is returned
// unchanged with the UnknownStorage sentinel.
func ExtractStorage(text string, tokens []string, policy MatchPolicy) (remaining, value string) {
	var matched []string
	for _, tok := range tokens {
		if indexFold(text, tok) >= 0 {
			matched = append(matched, tok)
			if policy == MatchFirst {
				break
			}
		}
	}

	if len(matched) == 0 || (policy == MatchSingle && len(matched) > 1) {
		return text, UnknownStorage
	}

	tok := matched[0]
	return stripOnce(text, tok), strings.ToUpper(strings.TrimSpace(tok))
}

// StripTokens removes every case-insensitive occurrence of each token from
// text and collapses the leftover whitespace. The result may be empty when
// all tokens are stripped; callers accept that rather than rejecting it.
func StripTokens(text string, tokens ...string) string {
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		for {
			idx := indexFold(text, tok)
			if idx < 0 {
				break
			}
			text = text[:idx] + text[idx+len(tok):]
		}
	}
	return collapse(text)
}

// TranslateGrade maps a supplier condition label to the English grade
// vocabulary. A leading "Grade " prefix is stripped first; unmapped values
// pass through unchanged.
func (r *Ruleset) TranslateGrade(raw string) string {
	grade := strings.TrimSpace(raw)
	grade = strings.TrimPrefix(grade, "Grade ")
	for _, rule := range r.Grades {
		if foldEqual(grade, rule.Match) {
			return rule.To
		}
	}
	return grade
}

// MapColour finds the first colour rule whose key occurs as a substring of
// text and returns the text with that substring stripped plus the canonical
// colour. Rules are checked in declaration order, so longer phrases shadow
// the generic ones they contain. No match leaves the text unchanged and
// yields the Unknown sentinel.
func (r *Ruleset) MapColour(text string) (remaining, colour string) {
	for _, rule := range r.Colours {
		idx := indexFold(text, rule.Match)
		if idx < 0 {
			continue
		}
		return collapse(text[:idx] + text[idx+len(rule.Match):]), rule.To
	}
	return text, UnknownColour
}

// LookupColour maps a standalone colour value (not embedded in model text)
// to the canonical vocabulary via exact, case-folded comparison against
// both the synonym keys and the canonical names. Unmapped values become
// Unknown so the canonical-vocabulary invariant holds.
func (r *Ruleset) LookupColour(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return UnknownColour
	}
	for _, rule := range r.Colours {
		if foldEqual(v, rule.Match) || foldEqual(v, rule.To) {
			return rule.To
		}
	}
	return UnknownColour
}

// ExtractDigits pulls all decimal digits out of free text like ">100" and
// returns them as an int, defaulting to 0 when none are present.
func ExtractDigits(raw string) int {
	n := 0
	seen := false
	for _, ch := range raw {
		if ch < '0' || ch > '9' {
			continue
		}
		seen = true
		n = n*10 + int(ch-'0')
	}
	if !seen {
		return 0
	}
	return n
}

// stripOnce removes the first case-insensitive occurrence of token.
func stripOnce(text, token string) string {
	idx := indexFold(text, token)
	if idx < 0 {
		return text
	}
	return collapse(text[:idx] + text[idx+len(token):])
}

// indexFold reports the byte index of the first case-insensitive occurrence
// of sub in s. Case folding is ASCII-only so byte offsets stay valid for
// stripping; adapters lower-case their text up front, matching how the
// supplier vocabularies are declared.
func indexFold(s, sub string) int {
	return strings.Index(lowerASCII(s), lowerASCII(sub))
}

func lowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// foldEqual compares two strings under full Unicode case folding, so German
// labels like "Weiß" compare equal to "WEISS".
func foldEqual(a, b string) bool {
	folder := cases.Fold()
	return folder.String(a) == folder.String(b)
}

// collapse trims and collapses internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
