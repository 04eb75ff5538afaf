package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"pricefeed/models"
	"pricefeed/sku"
)

// exportHeader is the fixed column order of the tabular projection. The SKU
// column is computed at export time, never stored.
var exportHeader = []string{
	"make", "model", "storage_capacity", "grade", "purchase_price",
	"stock_count", "colour", "ce_mark", "partial_vat", "SKU",
}

// CSVExporter writes the canonical-listing projection to a CSV file.
// It is safe for concurrent use.
type CSVExporter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVExporter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVExporter(path string) (*CSVExporter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVExporter{file: f, writer: w}, nil
}

// Export appends one row per listing, deriving the SKU from the canonical
// attributes on the fly.
func (c *CSVExporter) Export(listings []*models.CanonicalListing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		code := sku.Assemble(l.Make, l.Model, l.StorageCapacity, l.Colour, l.Grade)

		row := []string{
			l.Make,
			l.Model,
			l.StorageCapacity,
			l.Grade,
			strconv.FormatFloat(l.PurchasePrice, 'f', 2, 64),
			strconv.Itoa(l.StockCount),
			l.Colour,
			formatCEMark(l.CEMark),
			strconv.FormatBool(l.PartialVAT),
			code,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVExporter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// formatCEMark renders the tri-state CE mark: empty when unknown.
func formatCEMark(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}
