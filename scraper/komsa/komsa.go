// Package komsa ingests the Komsa trade-in offer list, published as an
// Excel workbook with German column names, sometimes behind an
// officeapps.live.com viewer link.
package komsa

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"pricefeed/config"
	"pricefeed/models"
	"pricefeed/normalize"
	"pricefeed/utils"
)

// columnRenames maps the workbook's German headers to canonical field
// names, the same way the feed is documented by the supplier.
var columnRenames = map[string]string{
	"artikelnummer": "item_number",
	"bezeichnung":   "description",
	"verfügbar":     "stock_count",
	"preis":         "purchase_price",
	"zustand":       "grade",
	"ean":           "ean",
	"shop":          "source",
}

// Scraper fetches and normalizes the Komsa workbook.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	rules  *normalize.Ruleset
	client *http.Client
}

// New creates a ready-to-use Komsa Scraper.
func New(cfg *config.Config, logger *utils.Logger, rules *normalize.Ruleset) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		rules:  rules,
		client: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second},
	}
}

// Scrape downloads the workbook and returns the normalized batch. Rows that
// fail to normalize are logged and skipped; the batch succeeds partially.
func (s *Scraper) Scrape(instance string) (*models.SupplierBatch, error) {
	rows, err := s.fetchRows()
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("komsa: workbook has no data rows")
	}

	headerIdx := make(map[string]int)
	for i, h := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(h))
		if renamed, ok := columnRenames[key]; ok {
			key = renamed
		}
		headerIdx[key] = i
	}

	batch := &models.SupplierBatch{
		SourceID:       s.cfg.KomsaSourceID,
		ScrapeInstance: instance,
	}

	for _, row := range rows[1:] {
		listing, err := s.adapt(row, headerIdx, instance)
		if err != nil {
			batch.Dropped++
			s.logger.Warn("[komsa] dropping row: %v — raw: %v", err, row)
			continue
		}
		batch.Listings = append(batch.Listings, listing)
	}

	s.logger.Info("[komsa] scrape complete — %d listings, %d dropped", len(batch.Listings), batch.Dropped)
	return batch, nil
}

// fetchRows downloads the Excel file and returns the rows of its first
// sheet. Viewer links are unwrapped to the direct file URL first.
func (s *Scraper) fetchRows() ([][]string, error) {
	directURL, err := unwrapViewerURL(s.cfg.KomsaURL)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Get(directURL)
	if err != nil {
		return nil, fmt.Errorf("komsa: fetch workbook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("komsa: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("komsa: read body: %w", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("komsa: open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("komsa: workbook has no sheets")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("komsa: read rows: %w", err)
	}
	return rows, nil
}

// unwrapViewerURL extracts the direct file URL from an
// view.officeapps.live.com link's src parameter.
func unwrapViewerURL(raw string) (string, error) {
	if !strings.Contains(raw, "view.officeapps.live.com") {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("komsa: parse viewer URL: %w", err)
	}
	src := u.Query().Get("src")
	if src == "" {
		return "", fmt.Errorf("komsa: viewer URL has no src parameter")
	}
	return src, nil
}

// adapt turns one workbook row into a canonical listing.
func (s *Scraper) adapt(row []string, headerIdx map[string]int, instance string) (*models.CanonicalListing, error) {
	cell := func(name string) string {
		idx, ok := headerIdx[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	description := cell("description")
	if description == "" {
		return nil, fmt.Errorf("missing description")
	}

	price, err := parsePrice(cell("purchase_price"))
	if err != nil {
		return nil, err
	}

	// The description carries make, model, storage and colour mashed
	// together, so it is lower-cased once and peeled apart stage by stage.
	model := strings.ToLower(description)

	manufacturer := firstWord(model)
	if manufacturer == "airpods" {
		manufacturer = "apple"
	}
	model = normalize.StripTokens(model, manufacturer)

	// Komsa descriptions occasionally quote two capacities; only an
	// unambiguous single match is trusted.
	model, storage := normalize.ExtractStorage(model, spacedTokens(s.rules.StorageTokens), normalize.MatchSingle)

	grade := s.rules.TranslateGrade(cell("grade"))
	model, colour := s.rules.MapColour(model)

	meta, err := json.Marshal(map[string]string{
		"item_number":    cell("item_number"),
		"description":    description,
		"stock_count":    cell("stock_count"),
		"purchase_price": cell("purchase_price"),
		"grade":          cell("grade"),
		"ean":            cell("ean"),
		"source":         cell("source"),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	return &models.CanonicalListing{
		SourceID:        s.cfg.KomsaSourceID,
		Make:            manufacturer,
		Model:           model,
		StorageCapacity: storage,
		Grade:           grade,
		Colour:          colour,
		PartialVAT:      false,
		PurchasePrice:   price,
		StockCount:      normalize.ExtractDigits(cell("stock_count")),
		MetaData:        string(meta),
		ScrapeInstance:  instance,
	}, nil
}

// spacedTokens prefixes each capacity token with a space so matches cannot
// start inside another word ("A1128GB" must not read as 128GB).
func spacedTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = " " + strings.ToLower(t)
	}
	return out
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// parsePrice handles both decimal points and the German decimal comma.
func parsePrice(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing purchase price")
	}
	cleaned := strings.ReplaceAll(raw, " ", "")
	if i := strings.LastIndex(cleaned, ","); i > strings.LastIndex(cleaned, ".") {
		// comma is the decimal separator, dots are thousands
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.Replace(cleaned, ",", ".", 1)
	} else {
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	price, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", raw, err)
	}
	if price < 0 {
		return 0, fmt.Errorf("negative price %q", raw)
	}
	return price, nil
}
