package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"pricefeed/models"
)

// fetchPageSize keeps instance fetches bounded; large scrape runs are read
// back page by page.
const fetchPageSize = 1000

// PostgresWriter persists canonical listings to PostgreSQL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, ensures the scrape
// table exists, and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.ensureSchema(); err != nil {
		return nil, fmt.Errorf("postgres: ensure schema: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) ensureSchema() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS raw_product_scrapes (
			id               SERIAL PRIMARY KEY,
			source_id        VARCHAR(64)   NOT NULL,
			make             TEXT          NOT NULL,
			model            TEXT          NOT NULL DEFAULT '',
			storage_capacity TEXT          NOT NULL,
			grade            TEXT          NOT NULL DEFAULT '',
			colour           TEXT          NOT NULL DEFAULT '',
			ce_mark          BOOLEAN,
			partial_vat      BOOLEAN       NOT NULL DEFAULT FALSE,
			purchase_price   NUMERIC(12,2) NOT NULL DEFAULT 0,
			trade_in_price   NUMERIC(12,2),
			stock_count      INTEGER       NOT NULL DEFAULT 0,
			meta_data        TEXT          NOT NULL DEFAULT '',
			scrape_instance  VARCHAR(64),
			entry_date       TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_scrapes_source   ON raw_product_scrapes(source_id);
		CREATE INDEX IF NOT EXISTS idx_scrapes_instance ON raw_product_scrapes(scrape_instance);
		CREATE INDEX IF NOT EXISTS idx_scrapes_entry    ON raw_product_scrapes(entry_date);
	`)
	return err
}

// Write batch-inserts canonical listings. Runs are append-only: each batch
// is distinguished by its scrape instance, never overwritten.
func (pw *PostgresWriter) Write(listings []*models.CanonicalListing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.CanonicalListing) error {
	const cols = 13
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*cols)

	for idx, l := range batch {
		base := idx * cols
		placeholders := make([]string, cols)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			l.SourceID, l.Make, l.Model, strings.ToUpper(l.StorageCapacity),
			l.Grade, l.Colour, l.CEMark, l.PartialVAT, l.PurchasePrice,
			l.TradeInPrice, l.StockCount, l.MetaData, nullable(l.ScrapeInstance))
	}

	query := fmt.Sprintf(`
		INSERT INTO raw_product_scrapes
			(source_id, make, model, storage_capacity, grade, colour,
			 ce_mark, partial_vat, purchase_price, trade_in_price,
			 stock_count, meta_data, scrape_instance)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	if _, err := pw.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

// LatestInstance returns the scrape instance of the most recent run for the
// given source, or an empty string when the source has no runs yet.
func (pw *PostgresWriter) LatestInstance(sourceID string) (string, error) {
	var instance sql.NullString
	err := pw.db.QueryRow(`
		SELECT scrape_instance
		FROM raw_product_scrapes
		WHERE source_id = $1
		ORDER BY entry_date DESC
		LIMIT 1
	`, sourceID).Scan(&instance)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("postgres: latest instance for %q: %w", sourceID, err)
	}
	return instance.String, nil
}

// FetchByInstance retrieves every listing of one scrape run, reading page
// by page until a short page signals the end.
func (pw *PostgresWriter) FetchByInstance(instance string) ([]*models.CanonicalListing, error) {
	var listings []*models.CanonicalListing

	for offset := 0; ; offset += fetchPageSize {
		page, err := pw.fetchPage(instance, offset)
		if err != nil {
			return nil, err
		}
		listings = append(listings, page...)
		if len(page) < fetchPageSize {
			break
		}
	}
	return listings, nil
}

func (pw *PostgresWriter) fetchPage(instance string, offset int) ([]*models.CanonicalListing, error) {
	rows, err := pw.db.Query(`
		SELECT id, source_id, make, model, storage_capacity, grade, colour,
		       ce_mark, partial_vat, purchase_price, trade_in_price,
		       stock_count, meta_data, COALESCE(scrape_instance, ''), entry_date
		FROM raw_product_scrapes
		WHERE scrape_instance = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`, instance, fetchPageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch instance %q: %w", instance, err)
	}
	defer rows.Close()

	var listings []*models.CanonicalListing
	for rows.Next() {
		l := &models.CanonicalListing{}
		if err := rows.Scan(
			&l.ID, &l.SourceID, &l.Make, &l.Model, &l.StorageCapacity,
			&l.Grade, &l.Colour, &l.CEMark, &l.PartialVAT, &l.PurchasePrice,
			&l.TradeInPrice, &l.StockCount, &l.MetaData, &l.ScrapeInstance,
			&l.EntryDate,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
