package sku

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveModelCodeApple(t *testing.T) {
	tests := []struct {
		makeName  string
		modelName string
		want      string
	}{
		{"Apple", "iphone 13 pro", "IP13"},
		{"apple", "iPhone 12", "IP12"},
		{"Apple Inc.", "IPHONE 8 Plus", "IP8"},
		{"Apple", "iphone15", "IP15"},
		{"Apple", "iphone se", "IPXXXX"}, // no digit run
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveModelCode(tt.makeName, tt.modelName),
			"ResolveModelCode(%q, %q)", tt.makeName, tt.modelName)
	}
}

func TestResolveModelCodeSamsung(t *testing.T) {
	tests := []struct {
		modelName string
		want      string
	}{
		{"Galaxy S24", "SAS24D"},
		{"galaxy s22 ultra 5g duos", "SS22UD"},
		{"Galaxy S20 FE", "SAS20D"},
		{"Galaxy A54", "SAXXXX"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveModelCode("Samsung", tt.modelName),
			"ResolveModelCode(Samsung, %q)", tt.modelName)
	}
}

func TestResolveModelCodeGenericFallback(t *testing.T) {
	tests := []struct {
		makeName  string
		modelName string
		want      string
	}{
		{"Huawei", "P30 Pro", "HUP30"},
		{"Google", "Pixel 7", "GOPIX"},
		{"Xiaomi", "Mi 11", "XIMI1"},
		{"LG", "G8", "LGG8"},
		{"OnePlus", "", "ON"}, // empty model yields just the make prefix
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveModelCode(tt.makeName, tt.modelName),
			"ResolveModelCode(%q, %q)", tt.makeName, tt.modelName)
	}
}

// A samsung model without "galaxy" in the name skips the samsung rules
// entirely and lands on the generic fallback.
func TestResolveModelCodeSamsungWithoutGalaxy(t *testing.T) {
	assert.Equal(t, "SAS22", ResolveModelCode("Samsung", "S22 Ultra"))
}
