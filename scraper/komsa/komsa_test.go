package komsa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricefeed/config"
	"pricefeed/normalize"
	"pricefeed/utils"
)

var testHeaderIdx = map[string]int{
	"item_number":    0,
	"description":    1,
	"stock_count":    2,
	"purchase_price": 3,
	"grade":          4,
	"ean":            5,
	"source":         6,
}

func newTestScraper() *Scraper {
	cfg := &config.Config{KomsaSourceID: "komsa-1", HTTPTimeoutSec: 5}
	return New(cfg, utils.NewLogger(), normalize.Default())
}

func TestAdapt(t *testing.T) {
	s := newTestScraper()

	row := []string{"A-100", "Apple iPhone 13 128GB Mitternacht", ">50", "429,99", "Grade Neuwertig", "0194252099", "shop"}

	l, err := s.adapt(row, testHeaderIdx, "inst-1")
	require.NoError(t, err)

	assert.Equal(t, "komsa-1", l.SourceID)
	assert.Equal(t, "apple", l.Make)
	assert.Equal(t, "iphone 13", l.Model)
	assert.Equal(t, "128GB", l.StorageCapacity)
	assert.Equal(t, "Excellent", l.Grade)
	assert.Equal(t, "Black", l.Colour)
	assert.Equal(t, 429.99, l.PurchasePrice)
	assert.Equal(t, 50, l.StockCount)
	assert.False(t, l.PartialVAT)
	assert.Contains(t, l.MetaData, "Apple iPhone 13 128GB Mitternacht")
}

func TestAdaptAirpodsMapToApple(t *testing.T) {
	s := newTestScraper()

	row := []string{"A-101", "AirPods Pro 2. Generation Weiß", "3", "189,00", "Gut", "", ""}

	l, err := s.adapt(row, testHeaderIdx, "inst-1")
	require.NoError(t, err)

	assert.Equal(t, "apple", l.Make)
	assert.Equal(t, normalize.UnknownStorage, l.StorageCapacity)
	assert.Equal(t, "Good", l.Grade)
	assert.Equal(t, "White", l.Colour)
}

func TestAdaptAmbiguousStorageKeepsSentinel(t *testing.T) {
	s := newTestScraper()

	row := []string{"A-102", "Apple iPhone 12 64GB 128GB Bundle Schwarz", "1", "500,00", "Gut", "", ""}

	l, err := s.adapt(row, testHeaderIdx, "inst-1")
	require.NoError(t, err)

	// Two capacity tokens: the single-match policy keeps the sentinel and
	// leaves both tokens in the model text.
	assert.Equal(t, normalize.UnknownStorage, l.StorageCapacity)
	assert.Contains(t, l.Model, "64gb")
	assert.Contains(t, l.Model, "128gb")
	assert.Equal(t, "Black", l.Colour)
}

func TestAdaptRejectsBadRows(t *testing.T) {
	s := newTestScraper()

	_, err := s.adapt([]string{"A-1", "", "1", "10,00", "Gut", "", ""}, testHeaderIdx, "inst-1")
	assert.Error(t, err, "missing description must be rejected")

	_, err = s.adapt([]string{"A-2", "Apple iPhone 12", "1", "", "Gut", "", ""}, testHeaderIdx, "inst-1")
	assert.Error(t, err, "missing price must be rejected")

	_, err = s.adapt([]string{"A-3", "Apple iPhone 12", "1", "abc", "Gut", "", ""}, testHeaderIdx, "inst-1")
	assert.Error(t, err, "non-numeric price must be rejected")
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{"429,99", 429.99, false},
		{"429.99", 429.99, false},
		{"1.299,00", 1299.00, false},
		{"99", 99, false},
		{"-5", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parsePrice(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, "parsePrice(%q)", tt.raw)
			continue
		}
		require.NoError(t, err, "parsePrice(%q)", tt.raw)
		assert.Equal(t, tt.want, got, "parsePrice(%q)", tt.raw)
	}
}

func TestUnwrapViewerURL(t *testing.T) {
	direct, err := unwrapViewerURL("https://example.com/offers.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/offers.xlsx", direct)

	direct, err = unwrapViewerURL("https://view.officeapps.live.com/op/view.aspx?src=https%3A%2F%2Fmedia.example.com%2Foffers.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/offers.xlsx", direct)

	_, err = unwrapViewerURL("https://view.officeapps.live.com/op/view.aspx")
	assert.Error(t, err)
}
