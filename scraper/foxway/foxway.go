// Package foxway ingests the Foxway pricelist API: one JSON call per
// (manufacturer, VAT-margin) pair, normalized into canonical listings.
package foxway

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pricefeed/config"
	"pricefeed/models"
	"pricefeed/normalize"
	"pricefeed/utils"
)

// manufacturerIDs maps the makes we ingest to Foxway catalog IDs.
var manufacturerIDs = []struct {
	name string
	id   int
}{
	{"huawei", 137},
	{"apple", 116},
	{"samsung", 153},
}

var knownMakes = []string{"Apple", "Samsung", "Huawei"}

type dimension struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type priceLine struct {
	ProductName string      `json:"ProductName"`
	Dimension   []dimension `json:"Dimension"`
	Price       float64     `json:"Price"`
	Quantity    int         `json:"Quantity"`
}

// Scraper fetches and normalizes the Foxway feed.
type Scraper struct {
	cfg    *config.Config
	logger *utils.Logger
	rules  *normalize.Ruleset
	client *http.Client
}

// New creates a ready-to-use Foxway Scraper.
func New(cfg *config.Config, logger *utils.Logger, rules *normalize.Ruleset) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		rules:  rules,
		client: &http.Client{Timeout: time.Duration(cfg.HTTPTimeoutSec) * time.Second},
	}
}

// Scrape pulls the pricelist for every manufacturer and VAT setting and
// returns the normalized batch tagged with the given scrape instance.
// A failed call skips that slice of the catalog, not the whole run.
func (s *Scraper) Scrape(instance string) (*models.SupplierBatch, error) {
	batch := &models.SupplierBatch{
		SourceID:       s.cfg.FoxwaySourceID,
		ScrapeInstance: instance,
	}

	for _, m := range manufacturerIDs {
		for _, vatMargin := range []bool{true, false} {
			lines, err := s.fetchPricelist(m.id, vatMargin)
			if err != nil {
				s.logger.Error("[foxway] pricelist %s vat=%t: %v", m.name, vatMargin, err)
				continue
			}

			for _, raw := range lines {
				listing, err := s.adapt(raw, m.name, vatMargin, instance)
				if err != nil {
					batch.Dropped++
					s.logger.Warn("[foxway] dropping record: %v — raw: %s", err, string(raw))
					continue
				}
				batch.Listings = append(batch.Listings, listing)
			}
		}
	}

	s.logger.Info("[foxway] scrape complete — %d listings, %d dropped", len(batch.Listings), batch.Dropped)
	return batch, nil
}

func (s *Scraper) fetchPricelist(manufacturerID int, vatMargin bool) ([]json.RawMessage, error) {
	endpoint := s.cfg.FoxwayBaseURL + "/catalogs/working/pricelist"

	params := url.Values{}
	params.Set("dimensionGroupId", "1")
	params.Set("itemGroupId", "1")
	params.Set("manufacturerId", strconv.Itoa(manufacturerID))
	params.Set("vatMargin", strconv.FormatBool(vatMargin))

	req, err := http.NewRequest(http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("foxway: build request: %w", err)
	}
	req.Header.Set("accept", "text/plain")
	req.Header.Set("X-ApiKey", s.cfg.FoxwayAPIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("foxway: fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("foxway: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("foxway: read body: %w", err)
	}

	var lines []json.RawMessage
	if err := json.Unmarshal(body, &lines); err != nil {
		return nil, fmt.Errorf("foxway: decode pricelist: %w", err)
	}
	return lines, nil
}

// adapt turns one raw pricelist line into a canonical listing. The raw JSON
// is retained verbatim as metadata.
func (s *Scraper) adapt(raw json.RawMessage, manufacturer string, vatMargin bool, instance string) (*models.CanonicalListing, error) {
	var line priceLine
	if err := json.Unmarshal(raw, &line); err != nil {
		return nil, fmt.Errorf("decode line: %w", err)
	}
	if line.ProductName == "" {
		return nil, fmt.Errorf("missing ProductName")
	}
	if line.Price < 0 {
		return nil, fmt.Errorf("negative price %.2f", line.Price)
	}

	_, storage := normalize.ExtractStorage(line.ProductName, s.rules.StorageTokens, normalize.MatchFirst)

	stripTokens := append([]string{}, s.rules.StorageTokens...)
	stripTokens = append(stripTokens, knownMakes...)
	model := normalize.StripTokens(line.ProductName, stripTokens...)

	grade := s.rules.TranslateGrade(s.gradeDimension(line.Dimension))
	colour := s.rules.LookupColour(s.colourDimension(line.Dimension))

	return &models.CanonicalListing{
		SourceID:        s.cfg.FoxwaySourceID,
		Make:            manufacturer,
		Model:           model,
		StorageCapacity: storage,
		Grade:           grade,
		Colour:          colour,
		PartialVAT:      vatMargin,
		PurchasePrice:   line.Price,
		StockCount:      line.Quantity,
		MetaData:        string(raw),
		ScrapeInstance:  instance,
	}, nil
}

// gradeDimension picks the condition value out of the dimension list by
// case-insensitive key match, defaulting to empty when absent.
func (s *Scraper) gradeDimension(dims []dimension) string {
	for _, d := range dims {
		if strings.EqualFold(d.Key, "appearance") {
			return d.Value
		}
	}
	return ""
}

// colourDimension prefers an explicit colour dimension and falls back to
// the first dimension value, which is where the feed usually puts it.
func (s *Scraper) colourDimension(dims []dimension) string {
	for _, d := range dims {
		if strings.EqualFold(d.Key, "color") || strings.EqualFold(d.Key, "colour") {
			return d.Value
		}
	}
	if len(dims) > 0 {
		return dims[0].Value
	}
	return ""
}
