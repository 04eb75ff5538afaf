// Package compa ingests the Compa Recycle buyback API. Each raw line is a
// price matrix: one "best price grade <G>" column per condition grade, so a
// single line can fan out into several canonical listings.
package compa

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"pricefeed/config"
	"pricefeed/models"
	"pricefeed/normalize"
	"pricefeed/utils"
)

var (
	gradeColumn = regexp.MustCompile(`^best price grade (.+)$`)
	storageSpec = regexp.MustCompile(`(?i)(\d+)\s*(Go|GB)`)
)

// Scraper fetches and normalizes the Compa feed.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	rules  *normalize.Ruleset
	client *http.Client
}

// New creates a ready-to-use Compa Scraper.
func New(cfg *config.Config, logger *utils.Logger, rules *normalize.Ruleset) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		rules:  rules,
		client: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second},
	}
}

// Scrape pulls the full buyback list and returns the normalized batch.
// Only apple and samsung lines are ingested; grades priced at zero are
// skipped.
func (s *Scraper) Scrape(instance string) (*models.SupplierBatch, error) {
	lines, err := s.fetchList()
	if err != nil {
		return nil, err
	}

	batch := &models.SupplierBatch{
		SourceID:       s.cfg.CompaSourceID,
		ScrapeInstance: instance,
	}

	for _, raw := range lines {
		listings, err := s.adapt(raw, instance)
		if err != nil {
			batch.Dropped++
			s.logger.Warn("[compa] dropping record: %v — raw: %s", err, string(raw))
			continue
		}
		batch.Listings = append(batch.Listings, listings...)
	}

	s.logger.Info("[compa] scrape complete — %d listings, %d dropped", len(batch.Listings), batch.Dropped)
	return batch, nil
}

func (s *Scraper) fetchList() ([]json.RawMessage, error) {
	req, err := http.NewRequest(http.MethodGet, s.cfg.CompaBaseURL+"/Argus/getList", nil)
	if err != nil {
		return nil, fmt.Errorf("compa: build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("X-PUBLIC-API-KEY", s.cfg.CompaPublicKey)
	req.Header.Set("X-PRIVATE-API-KEY", s.cfg.CompaPrivateKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("compa: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("compa: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("compa: read body: %w", err)
	}

	var parsed struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("compa: decode list: %w", err)
	}
	return parsed.Results, nil
}

// adapt fans one raw line out into one listing per priced grade column.
// Returned listings can be empty when every grade is priced at zero; that
// is not an error.
func (s *Scraper) adapt(raw json.RawMessage, instance string) ([]*models.CanonicalListing, error) {
	// The grade columns are dynamic, so the line is decoded generically.
	var line map[string]any
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, fmt.Errorf("decode line: %w", err)
	}

	// Other manufacturers are out of catalog, not malformed.
	manufacturer := stringField(line, "manufacturer")
	if !strings.EqualFold(manufacturer, "apple") && !strings.EqualFold(manufacturer, "samsung") {
		return nil, nil
	}

	model := stringField(line, "product_model")

	storage := normalize.UnknownStorage
	if m := storageSpec.FindStringSubmatch(stringField(line, "product")); m != nil {
		storage = m[1] + "GB"
	}

	// Deterministic fan-out order regardless of map iteration.
	keys := make([]string, 0, len(line))
	for k := range line {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var listings []*models.CanonicalListing
	for _, key := range keys {
		m := gradeColumn.FindStringSubmatch(key)
		if m == nil {
			continue
		}

		price := floatField(line[key])
		if price <= 0 {
			continue
		}

		grade := s.rules.TranslateGrade(strings.TrimSpace(m[1]))

		listings = append(listings, &models.CanonicalListing{
			SourceID:        s.cfg.CompaSourceID,
			Make:            manufacturer,
			Model:           model,
			StorageCapacity: storage,
			Grade:           grade,
			Colour:          normalize.UnknownColour,
			PartialVAT:      false,
			PurchasePrice:   price,
			StockCount:      0,
			MetaData:        string(raw),
			ScrapeInstance:  instance,
		})
	}
	return listings, nil
}

func stringField(line map[string]any, key string) string {
	if v, ok := line[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// floatField tolerates grade prices arriving as numbers or numeric strings;
// anything else counts as zero and the grade is skipped.
func floatField(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
