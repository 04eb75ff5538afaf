package sku

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAssembleKnownExample(t *testing.T) {
	// model segment "M-IP12" (6) + suffix "128BLAX" (7) + 2 chars padding.
	got := Assemble("Apple", "iPhone 12", "128GB", "Blue", "A")
	assert.Equal(t, "M-IP12XX128BLAX", got)
}

func TestAssembleLengthInvariant(t *testing.T) {
	inputs := [][5]string{
		{"Apple", "iPhone 12", "128GB", "Blue", "A"},
		{"Apple", "iphone se", "Unknown Storage", "Unknown", ""},
		{"Samsung", "galaxy s22 ultra 5g duos", "512GB", "Phantom White", "A+"},
		{"Huawei", "P30 Pro", "256GB", "Green", "B"},
		{"", "", "", "", ""},
		{"A Very Long Manufacturer Name", "An Extremely Long Model Name Indeed", "1024GB", "Midnight", "C"},
		{"Sony", "Xperia", "123456789012GB", "Black", "A"}, // oversized suffix forces hard truncation
		{"Apple", "iphone 123456789", "64GB", "White", "B"},
	}

	for _, in := range inputs {
		got := Assemble(in[0], in[1], in[2], in[3], in[4])
		assert.Len(t, got, Width, "Assemble(%v)", in)
		assert.Equal(t, strings.ToUpper(got), got, "Assemble(%v) must be upper-case", in)
	}
}

func TestAssembleDeterminism(t *testing.T) {
	first := Assemble("Samsung", "Galaxy S24", "256GB", "Black", "A+")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Assemble("Samsung", "Galaxy S24", "256GB", "Black", "A+"))
	}
}

func TestAssembleCaseNormalization(t *testing.T) {
	a := Assemble("apple", "IPHONE 12", "128gb", "blue", "a")
	b := Assemble("Apple", "iPhone 12", "128GB", "Blue", "A")
	assert.Equal(t, b, a)
}

func TestAssembleFallbackCodes(t *testing.T) {
	got := Assemble("Nokia", "3310", "Unknown Storage", "Chartreuse", "Z")
	// capacity, colour and grade all unresolved: XXX + XX + XX.
	assert.True(t, strings.HasSuffix(got, "XXXXXXX"), "got %q", got)
	assert.Len(t, got, Width)
}

func TestAssembleModelCodeTruncation(t *testing.T) {
	// "M-IPXXXX" (8) + "1024" + "MN" + "CX" (8) exceeds 15, so the model
	// code is cut to 5 characters and the padding disappears.
	got := Assemble("Apple", "iphone se", "1024GB", "Midnight", "C")
	assert.Equal(t, "M-IPXXX1024MNCX", got)
}

func TestCapacityCode(t *testing.T) {
	tests := []struct {
		storage string
		want    string
	}{
		{"128GB", "128"},
		{"1TB", "1"},
		{"64gb", "64"},
		{"TB", "X"},
		{"GB", "XXX"},
		{"Unknown Storage", "XXX"},
		{"", "XXX"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, capacityCode(tt.storage), "capacityCode(%q)", tt.storage)
	}
}

func TestLookupCodeFolding(t *testing.T) {
	assert.Equal(t, "WH", lookupCode(colourCodes, "phantom white"))
	assert.Equal(t, "BK", lookupCode(colourCodes, " BLACK "))
	assert.Equal(t, "XX", lookupCode(colourCodes, "Desert Sand"))
	assert.Equal(t, "AA", lookupCode(gradeCodes, "a+"))
	assert.Equal(t, "XX", lookupCode(gradeCodes, "D"))
}
