package models

import "time"

// CanonicalListing is the normalized device record ready for PostgreSQL
// storage, independent of the supplier format it came from. MetaData holds
// the raw supplier line as JSON, verbatim.
type CanonicalListing struct {
	ID              int64
	SourceID        string
	Make            string
	Model           string
	StorageCapacity string
	Grade           string
	Colour          string
	CEMark          *bool
	PartialVAT      bool
	PurchasePrice   float64
	TradeInPrice    *float64
	StockCount      int
	MetaData        string
	ScrapeInstance  string
	EntryDate       time.Time
}

// SupplierBatch groups the listings produced by one run of a source
// adapter, all tagged with the same scrape instance.
type SupplierBatch struct {
	SourceID       string
	ScrapeInstance string
	Listings       []*CanonicalListing
	Dropped        int
}
