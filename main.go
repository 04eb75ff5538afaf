package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"pricefeed/config"
	"pricefeed/models"
	"pricefeed/normalize"
	"pricefeed/scraper/compa"
	"pricefeed/scraper/dipli"
	"pricefeed/scraper/foxway"
	"pricefeed/scraper/komsa"
	"pricefeed/services"
	"pricefeed/storage"
	"pricefeed/utils"
)

// supplier couples a source adapter with its identity for the run loop.
type supplier struct {
	name     string
	sourceID string
	enabled  bool
	run      func(instance string) (*models.SupplierBatch, error)
}

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Device price-feed ingestion starting ===")
	logger.Info("Config — concurrency: %d | rate: %dms | export dir: %s",
		cfg.MaxConcurrency, cfg.RateLimitMs, cfg.ExportDir)

	rules := normalize.Default()
	if cfg.RulesPath != "" {
		loaded, err := normalize.Load(cfg.RulesPath)
		if err != nil {
			logger.Error("Failed to load rules from %s: %v", cfg.RulesPath, err)
			os.Exit(1)
		}
		rules = loaded
		logger.Info("Loaded rule overrides from %s", cfg.RulesPath)
	}

	pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		os.Exit(1)
	}
	defer pgWriter.Close()

	suppliers := []supplier{
		{"foxway", cfg.FoxwaySourceID, cfg.FoxwayAPIKey != "", foxway.New(cfg, logger, rules).Scrape},
		{"komsa", cfg.KomsaSourceID, cfg.KomsaURL != "", komsa.New(cfg, logger, rules).Scrape},
		{"dipli", cfg.DipliSourceID, cfg.DipliBaseURL != "", dipli.New(cfg, logger, rules).Scrape},
		{"compa", cfg.CompaSourceID, cfg.CompaBaseURL != "", compa.New(cfg, logger, rules).Scrape},
	}

	var (
		mu  sync.Mutex
		all []*models.CanonicalListing
	)

	pool := utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs)
	for _, sup := range suppliers {
		sup := sup
		if !sup.enabled {
			logger.Warn("Supplier %s is not configured — skipping", sup.name)
			continue
		}

		pool.Submit(func() {
			instance := uuid.New().String()
			logger.Info("[%s] scrape instance %s", sup.name, instance)

			batch, err := sup.run(instance)
			if err != nil {
				logger.Error("[%s] scrape failed: %v", sup.name, err)
				return
			}
			if len(batch.Listings) == 0 {
				logger.Warn("[%s] produced no listings", sup.name)
				return
			}

			if err := pgWriter.Write(batch.Listings); err != nil {
				logger.Error("[%s] PostgreSQL write failed: %v", sup.name, err)
				return
			}
			logger.Info("[%s] stored %d listings (%d dropped)",
				sup.name, len(batch.Listings), batch.Dropped)

			mu.Lock()
			all = append(all, batch.Listings...)
			mu.Unlock()
		})
	}
	pool.Wait()

	if len(all) == 0 {
		logger.Error("No listings were ingested. Exiting.")
		os.Exit(1)
	}

	exportLatest(logger, cfg, pgWriter, suppliers)

	reportSvc := services.NewReportService(logger)
	reportSvc.Print(reportSvc.Generate(all))

	fmt.Printf("  Done. Canonical listings → PostgreSQL | exports → %s\n\n", cfg.ExportDir)
}

// exportLatest writes the most recent run of each source as a CSV with the
// SKU column computed on demand.
func exportLatest(logger *utils.Logger, cfg *config.Config, reader storage.ListingReader, suppliers []supplier) {
	for _, sup := range suppliers {
		if !sup.enabled {
			continue
		}

		instance, err := reader.LatestInstance(sup.sourceID)
		if err != nil {
			logger.Error("[%s] latest instance lookup failed: %v", sup.name, err)
			continue
		}
		if instance == "" {
			logger.Warn("[%s] no stored runs to export", sup.name)
			continue
		}

		devices, err := reader.FetchByInstance(instance)
		if err != nil {
			logger.Error("[%s] fetch for export failed: %v", sup.name, err)
			continue
		}

		path := filepath.Join(cfg.ExportDir, fmt.Sprintf("latest_devices_%s.csv", sup.name))
		exporter, err := storage.NewCSVExporter(path)
		if err != nil {
			logger.Error("[%s] create export file: %v", sup.name, err)
			continue
		}
		if err := exporter.Export(devices); err != nil {
			logger.Error("[%s] CSV export failed: %v", sup.name, err)
		} else {
			logger.Info("[%s] exported %d rows → %s", sup.name, len(devices), path)
		}
		_ = exporter.Close()
	}
}
