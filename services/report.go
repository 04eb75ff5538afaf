package services

import (
	"fmt"
	"sort"
	"strings"

	"pricefeed/models"
	"pricefeed/normalize"
	"pricefeed/sku"
	"pricefeed/utils"
)

// RunReport summarizes one ingestion run across all sources, including how
// often normalization had to fall back to sentinels.
type RunReport struct {
	TotalListings int
	BySource      map[string]int

	UnknownStorage   int
	UnknownColour    int
	UnresolvedModels int

	PricedListings int
	AveragePrice   float64
	MinPrice       float64
	MaxPrice       float64
	MostExpensive  *models.CanonicalListing

	TotalStock int
}

// ReportService computes and prints run reports.
type ReportService struct {
	logger *utils.Logger
}

func NewReportService(logger *utils.Logger) *ReportService {
	return &ReportService{logger: logger}
}

// Generate computes the report over a set of canonical listings.
func (s *ReportService) Generate(listings []*models.CanonicalListing) *RunReport {
	report := &RunReport{
		BySource: make(map[string]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var priced []*models.CanonicalListing
	for _, l := range listings {
		report.BySource[l.SourceID]++
		report.TotalStock += l.StockCount

		if strings.EqualFold(l.StorageCapacity, normalize.UnknownStorage) {
			report.UnknownStorage++
		}
		if l.Colour == normalize.UnknownColour {
			report.UnknownColour++
		}
		// The generic 2+3 fallback is indistinguishable from a real code,
		// so only the explicit XXXX fallbacks are countable here.
		if strings.HasSuffix(sku.ResolveModelCode(l.Make, l.Model), "XXXX") {
			report.UnresolvedModels++
		}

		if l.PurchasePrice > 0 {
			priced = append(priced, l)
		}
	}

	if len(priced) > 0 {
		report.PricedListings = len(priced)
		report.MinPrice = priced[0].PurchasePrice
		report.MaxPrice = priced[0].PurchasePrice
		report.MostExpensive = priced[0]

		var total float64
		for _, l := range priced {
			total += l.PurchasePrice
			if l.PurchasePrice < report.MinPrice {
				report.MinPrice = l.PurchasePrice
			}
			if l.PurchasePrice > report.MaxPrice {
				report.MaxPrice = l.PurchasePrice
				report.MostExpensive = l
			}
		}
		report.AveragePrice = round2(total / float64(len(priced)))
		report.MinPrice = round2(report.MinPrice)
		report.MaxPrice = round2(report.MaxPrice)
	}

	return report
}

// Print writes the report to stdout in a readable block.
func (s *ReportService) Print(r *RunReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Println()
	fmt.Println(sep)
	fmt.Println("  INGESTION RUN REPORT")
	fmt.Println(sep)
	fmt.Printf("  Total listings:     %d\n", r.TotalListings)

	sources := make([]string, 0, len(r.BySource))
	for src := range r.BySource {
		sources = append(sources, src)
	}
	sort.Strings(sources)
	for _, src := range sources {
		fmt.Printf("    %-16s  %d\n", src, r.BySource[src])
	}

	fmt.Println(thin)
	fmt.Printf("  Unknown storage:    %d\n", r.UnknownStorage)
	fmt.Printf("  Unknown colour:     %d\n", r.UnknownColour)
	fmt.Printf("  Unresolved models:  %d\n", r.UnresolvedModels)
	fmt.Println(thin)

	if r.PricedListings > 0 {
		fmt.Printf("  Priced listings:    %d\n", r.PricedListings)
		fmt.Printf("  Price range:        %.2f – %.2f (avg %.2f)\n",
			r.MinPrice, r.MaxPrice, r.AveragePrice)
		if r.MostExpensive != nil {
			fmt.Printf("  Most expensive:     %s %s (%s) @ %.2f\n",
				r.MostExpensive.Make, r.MostExpensive.Model,
				r.MostExpensive.Grade, r.MostExpensive.PurchasePrice)
		}
	}
	fmt.Printf("  Total stock:        %d\n", r.TotalStock)
	fmt.Println(sep)
	fmt.Println()
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
