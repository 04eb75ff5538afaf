package foxway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricefeed/config"
	"pricefeed/normalize"
	"pricefeed/utils"
)

func newTestScraper() *Scraper {
	cfg := &config.Config{FoxwaySourceID: "foxway-1", HTTPTimeoutSec: 5}
	return New(cfg, utils.NewLogger(), normalize.Default())
}

func TestAdapt(t *testing.T) {
	s := newTestScraper()

	raw := json.RawMessage(`{
		"ProductName": "Apple iPhone 12 128GB",
		"Dimension": [
			{"Key": "Color", "Value": "Blau"},
			{"Key": "Appearance", "Value": "Grade A"}
		],
		"Price": 299.5,
		"Quantity": 4
	}`)

	l, err := s.adapt(raw, "apple", true, "inst-1")
	require.NoError(t, err)

	assert.Equal(t, "foxway-1", l.SourceID)
	assert.Equal(t, "apple", l.Make)
	assert.Equal(t, "iPhone 12", l.Model)
	assert.Equal(t, "128GB", l.StorageCapacity)
	assert.Equal(t, "A", l.Grade)
	assert.Equal(t, "Blue", l.Colour)
	assert.True(t, l.PartialVAT)
	assert.Equal(t, 299.5, l.PurchasePrice)
	assert.Equal(t, 4, l.StockCount)
	assert.Equal(t, string(raw), l.MetaData)
	assert.Equal(t, "inst-1", l.ScrapeInstance)
}

func TestAdaptColourFallsBackToFirstDimension(t *testing.T) {
	s := newTestScraper()

	raw := json.RawMessage(`{
		"ProductName": "Samsung Galaxy S22 256GB",
		"Dimension": [
			{"Key": "Finish", "Value": "Phantom Black"},
			{"Key": "appearance", "Value": "Grade B"}
		],
		"Price": 410,
		"Quantity": 1
	}`)

	l, err := s.adapt(raw, "samsung", false, "inst-1")
	require.NoError(t, err)

	// "Phantom Black" is not in the synonym table as an exact value.
	assert.Equal(t, normalize.UnknownColour, l.Colour)
	assert.Equal(t, "B", l.Grade)
	assert.Equal(t, "Galaxy S22", l.Model)
}

func TestAdaptMissingGradeDimension(t *testing.T) {
	s := newTestScraper()

	raw := json.RawMessage(`{"ProductName": "Huawei P30 64GB", "Dimension": [], "Price": 99, "Quantity": 2}`)

	l, err := s.adapt(raw, "huawei", false, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "", l.Grade)
	assert.Equal(t, normalize.UnknownColour, l.Colour)
	assert.Equal(t, "P30", l.Model)
}

func TestAdaptRejectsBadRecords(t *testing.T) {
	s := newTestScraper()

	_, err := s.adapt(json.RawMessage(`{"Price": 10}`), "apple", false, "inst-1")
	assert.Error(t, err, "missing ProductName must be rejected")

	_, err = s.adapt(json.RawMessage(`{"ProductName": "iPhone 12", "Price": -5}`), "apple", false, "inst-1")
	assert.Error(t, err, "negative price must be rejected")

	_, err = s.adapt(json.RawMessage(`not json`), "apple", false, "inst-1")
	assert.Error(t, err)
}

func TestAdaptUnknownStorage(t *testing.T) {
	s := newTestScraper()

	raw := json.RawMessage(`{"ProductName": "Apple Watch Series 7", "Dimension": [], "Price": 150, "Quantity": 1}`)

	l, err := s.adapt(raw, "apple", false, "inst-1")
	require.NoError(t, err)
	assert.Equal(t, normalize.UnknownStorage, l.StorageCapacity)
	assert.Equal(t, "Watch Series 7", l.Model)
}
