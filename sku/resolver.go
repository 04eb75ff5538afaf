// Package sku derives the fixed-width stock-keeping code from canonical
// listing attributes. Everything here is pure and fail-open: unresolvable
// input degrades to an X-sentinel code, never an error.
package sku

import (
	"regexp"
	"strings"
)

// Fallback model codes for makes with dedicated rules.
const (
	appleFallback   = "IPXXXX"
	samsungFallback = "SAXXXX"
)

var (
	iphoneDigits = regexp.MustCompile(`iphone\s*(\d+)`)
	nonAlnum     = regexp.MustCompile(`[^a-z0-9]`)
)

// samsungRules maps galaxy model-name substrings to model codes. Checked in
// order, first match wins, so longer variants belong before their prefixes.
var samsungRules = []codePair{
	{"s24", "SAS24D"},
	{"s22 ultra", "SS22UD"},
	{"s20", "SAS20D"},
}

type codePair struct {
	key  string
	code string
}

// ResolveModelCode maps (make, model name) to a short alphanumeric model
// code. Apple iPhones encode the first digit run after "iphone"; Samsung
// Galaxy models go through the ordered substring rules. Everything else
// falls back to two characters of the make plus three of the stripped model
// name — that code carries no uniqueness guarantee, distinct unmapped
// models may collide.
func ResolveModelCode(makeName, modelName string) string {
	makeLower := strings.ToLower(makeName)
	modelLower := strings.ToLower(modelName)

	if strings.Contains(makeLower, "apple") && strings.Contains(modelLower, "iphone") {
		if m := iphoneDigits.FindStringSubmatch(modelLower); m != nil {
			return "IP" + m[1]
		}
		return appleFallback
	}

	if strings.Contains(makeLower, "samsung") && strings.Contains(modelLower, "galaxy") {
		for _, rule := range samsungRules {
			if strings.Contains(modelLower, rule.key) {
				return rule.code
			}
		}
		return samsungFallback
	}

	makePrefix := makeLower
	if len(makePrefix) > 2 {
		makePrefix = makePrefix[:2]
	}
	modelPrefix := nonAlnum.ReplaceAllString(modelLower, "")
	if len(modelPrefix) > 3 {
		modelPrefix = modelPrefix[:3]
	}
	return strings.ToUpper(makePrefix) + strings.ToUpper(modelPrefix)
}
