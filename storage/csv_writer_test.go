package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricefeed/models"
)

func TestCSVExporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "latest_devices_foxway.csv")

	exporter, err := NewCSVExporter(path)
	require.NoError(t, err)

	ce := true
	listings := []*models.CanonicalListing{
		{
			Make:            "apple",
			Model:           "iPhone 12",
			StorageCapacity: "128GB",
			Grade:           "A",
			Colour:          "Blue",
			PurchasePrice:   299.5,
			StockCount:      4,
			CEMark:          &ce,
			PartialVAT:      true,
		},
		{
			Make:            "samsung",
			Model:           "Galaxy A54",
			StorageCapacity: "Unknown Storage",
			Grade:           "Z",
			Colour:          "Unknown",
			PurchasePrice:   100,
			StockCount:      0,
		},
	}

	require.NoError(t, exporter.Export(listings))
	require.NoError(t, exporter.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportHeader, rows[0])

	first := rows[1]
	assert.Equal(t, "apple", first[0])
	assert.Equal(t, "299.50", first[4])
	assert.Equal(t, "true", first[7], "CE mark rendered when known")
	assert.Equal(t, "true", first[8])
	assert.Equal(t, "M-IP12XX128BLAX", first[9], "SKU derived at export time")

	second := rows[2]
	assert.Equal(t, "", second[7], "unknown CE mark stays empty")
	assert.Len(t, second[9], 15, "fallback inputs still produce a full-width SKU")
}
