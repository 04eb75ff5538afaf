// Package dipli ingests the Dipli recycle marketplace API: a paginated JSON
// feed with prices in minor currency units and capacities that are often
// quoted as bare numbers.
package dipli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pricefeed/config"
	"pricefeed/models"
	"pricefeed/normalize"
	"pricefeed/utils"
)

// bareCapacities are capacity values the feed quotes without a unit; a
// match is normalized by appending GB. Ordered large-to-small so "256"
// is not shadowed by "2".
var bareCapacities = []string{"128", "64", "32", "256", "512", "16", "8", "4", "2"}

type feedLine struct {
	Brand       string `json:"brand"`
	Name        string `json:"name"`
	GroupedName string `json:"grouped_name"`
	Grade       string `json:"grade"`
	Color       struct {
		Name   string `json:"name"`
		NameEn string `json:"name_en"`
	} `json:"color"`
	Stock      int     `json:"stock"`
	FinalPrice float64 `json:"final_price"`
}

type feedPage struct {
	Result []json.RawMessage `json:"result"`
}

// Scraper fetches and normalizes the Dipli feed.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	rules  *normalize.Ruleset
	client *http.Client
}

// New creates a ready-to-use Dipli Scraper.
func New(cfg *config.Config, logger *utils.Logger, rules *normalize.Ruleset) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		rules:  rules,
		client: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second},
	}
}

// Scrape pages through the feed until a short page signals the end, then
// returns the normalized batch.
func (s *Scraper) Scrape(instance string) (*models.SupplierBatch, error) {
	lines, err := s.fetchAll()
	if err != nil {
		return nil, err
	}

	batch := &models.SupplierBatch{
		SourceID:       s.cfg.DipliSourceID,
		ScrapeInstance: instance,
	}

	for _, raw := range lines {
		listing, err := s.adapt(raw, instance)
		if err != nil {
			batch.Dropped++
			s.logger.Warn("[dipli] dropping record: %v — raw: %s", err, string(raw))
			continue
		}
		batch.Listings = append(batch.Listings, listing)
	}

	s.logger.Info("[dipli] scrape complete — %d listings, %d dropped", len(batch.Listings), batch.Dropped)
	return batch, nil
}

func (s *Scraper) fetchAll() ([]json.RawMessage, error) {
	var all []json.RawMessage

	for page := 1; ; page++ {
		results, err := s.fetchPage(page)
		if err != nil {
			return nil, err
		}
		all = append(all, results...)
		if len(results) < s.cfg.PageSize {
			break
		}
	}
	return all, nil
}

func (s *Scraper) fetchPage(page int) ([]json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s?pageSize=%d&page=%d", s.cfg.DipliBaseURL, s.cfg.PageSize, page)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dipli: build request: %w", err)
	}
	req.Header.Set("apikey", s.cfg.DipliAPIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dipli: fetch page %d: %w", page, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dipli: page %d: unexpected status %d", page, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dipli: read page %d: %w", page, err)
	}

	var parsed feedPage
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("dipli: decode page %d: %w", page, err)
	}
	return parsed.Result, nil
}

// adapt turns one feed line into a canonical listing.
func (s *Scraper) adapt(raw json.RawMessage, instance string) (*models.CanonicalListing, error) {
	var line feedLine
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, fmt.Errorf("decode line: %w", err)
	}
	if line.Name == "" {
		return nil, fmt.Errorf("missing name")
	}
	if line.Brand == "" {
		return nil, fmt.Errorf("missing brand")
	}
	if line.FinalPrice < 0 {
		return nil, fmt.Errorf("negative price %.2f", line.FinalPrice)
	}

	storage := s.extractStorage(line.Name, line.GroupedName)

	model := normalize.StripTokens(line.Name, line.Brand)
	if storage != normalize.UnknownStorage {
		model = normalize.StripTokens(model, storageVariants(storage)...)
	}

	grade := s.rules.TranslateGrade(line.Grade)

	colourName := line.Color.NameEn
	if colourName == "" {
		colourName = line.Color.Name
	}
	colour := s.rules.LookupColour(colourName)

	return &models.CanonicalListing{
		SourceID:        s.cfg.DipliSourceID,
		Make:            line.Brand,
		Model:           model,
		StorageCapacity: storage,
		Grade:           grade,
		Colour:          colour,
		PartialVAT:      false,
		PurchasePrice:   line.FinalPrice / 100, // feed quotes minor currency units
		StockCount:      line.Stock,
		MetaData:        string(raw),
		ScrapeInstance:  instance,
	}, nil
}

// extractStorage checks the product name first and the grouped name second,
// accepting the first match. Bare-number matches get GB appended.
func (s *Scraper) extractStorage(name, groupedName string) string {
	tokens := append([]string{}, s.rules.StorageTokens...)
	tokens = append(tokens, bareCapacities...)

	for _, text := range []string{name, groupedName} {
		if _, value := normalize.ExtractStorage(text, tokens, normalize.MatchFirst); value != normalize.UnknownStorage {
			if !strings.HasSuffix(value, "GB") && !strings.HasSuffix(value, "TB") {
				value += "GB"
			}
			return value
		}
	}
	return normalize.UnknownStorage
}

// storageVariants returns the strings to strip from the model name for a
// resolved capacity: the unit form and the bare number.
func storageVariants(storage string) []string {
	variants := []string{storage}
	number := strings.TrimSuffix(strings.TrimSuffix(storage, "GB"), "TB")
	if number != storage {
		variants = append(variants, number)
	}
	return variants
}
