package sku

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Width is the fixed SKU length.
const Width = 15

const segmentPrefix = "M-"

var digitRun = regexp.MustCompile(`\d+`)

// colourCodes and gradeCodes are ordered lookup tables, matched by exact
// case-folded comparison. Unmapped values encode as "XX".
var colourCodes = []codePair{
	{"Blue", "BL"},
	{"Black", "BK"},
	{"Midnight", "MN"},
	{"White", "WH"},
	{"Phantom White", "WH"},
	{"Green", "GR"},
}

var gradeCodes = []codePair{
	{"A", "AX"},
	{"A+", "AA"},
	{"B", "BX"},
	{"C", "CX"},
}

// Assemble packs the listing attributes into the fixed 15-character SKU:
// "M-" + model code, X-padding, then capacity + colour + grade codes. When
// the segments overflow the width, the model code is truncated first; a
// still-oversized result is cut to 15 from the left and a short one is
// right-padded with X. Identical inputs always yield an identical SKU.
func Assemble(makeName, modelName, storageCapacity, colour, grade string) string {
	modelCode := ResolveModelCode(makeName, modelName)

	suffix := strings.ToUpper(capacityCode(storageCapacity) +
		lookupCode(colourCodes, colour) +
		lookupCode(gradeCodes, grade))

	modelSegment := segmentPrefix + strings.ToUpper(modelCode)

	padding := ""
	padLen := Width - len(modelSegment) - len(suffix)
	switch {
	case padLen > 0:
		padding = strings.Repeat("X", padLen)
	case padLen < 0:
		maxModelLen := Width - len(segmentPrefix) - len(suffix)
		if maxModelLen < 0 {
			maxModelLen = 0
		}
		if len(modelCode) > maxModelLen {
			modelCode = modelCode[:maxModelLen]
		}
		modelSegment = segmentPrefix + strings.ToUpper(modelCode)
		if n := Width - len(modelSegment) - len(suffix); n > 0 {
			padding = strings.Repeat("X", n)
		}
	}

	out := modelSegment + padding + suffix
	if len(out) > Width {
		out = out[:Width]
	} else if len(out) < Width {
		out += strings.Repeat("X", Width-len(out))
	}
	return strings.ToUpper(out)
}

// capacityCode extracts the numeric part of the storage text. TB capacities
// fall back to "X" when no digits are present, GB and unrecognized units to
// "XXX".
func capacityCode(storage string) string {
	s := strings.ToUpper(strings.TrimSpace(storage))
	switch {
	case strings.Contains(s, "TB"):
		if m := digitRun.FindString(s); m != "" {
			return m
		}
		return "X"
	case strings.Contains(s, "GB"):
		if m := digitRun.FindString(s); m != "" {
			return m
		}
	}
	return "XXX"
}

func lookupCode(table []codePair, value string) string {
	v := strings.TrimSpace(value)
	folder := cases.Fold()
	folded := folder.String(v)
	for _, p := range table {
		if folder.String(p.key) == folded {
			return p.code
		}
	}
	return "XX"
}
