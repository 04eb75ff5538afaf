package storage

import "pricefeed/models"

// ListingWriter is the interface any persistence backend must satisfy.
type ListingWriter interface {
	Write(listings []*models.CanonicalListing) error
	Close() error
}

// ListingReader retrieves stored listings grouped by scrape instance.
type ListingReader interface {
	LatestInstance(sourceID string) (string, error)
	FetchByInstance(instance string) ([]*models.CanonicalListing, error)
}
