package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/MediumMasala/branch-redirect-service/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	ACTIVE_COUNT  = 2000
	RETIRED_COUNT = 100000

	BATCH_SIZE  = 5000
	NUM_WORKERS = 4
)

type DataGenerator struct {
	pool *pgxpool.Pool
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	dbURL := cfg.Database.URL

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	gen := &DataGenerator{pool: pool}

	if err := gen.createTable(ctx); err != nil {
		log.Fatalf("Failed to create table: %v\n", err)
	}

	if err := gen.clearData(ctx); err != nil {
		log.Fatalf("Failed to clear data: %v\n", err)
	}

	if err := gen.insertActiveLinks(ctx); err != nil {
		log.Fatalf("Failed to insert active links: %v\n", err)
	}

	if err := gen.insertRetiredLinksParallel(ctx); err != nil {
		log.Fatalf("Failed to insert retired links: %v\n", err)
	}

	if err := gen.createIndexes(ctx); err != nil {
		log.Fatalf("Failed to create indexes: %v\n", err)
	}

	if err := gen.verifyData(ctx); err != nil {
		log.Printf("Warning: Data verification failed: %v\n", err)
	}
}

func (g *DataGenerator) createTable(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		slug TEXT PRIMARY KEY,
		android_flow_url TEXT NOT NULL,
		ios_whatsapp_base_url TEXT NOT NULL,
		desktop_whatsapp_base_url TEXT NOT NULL,
		default_phone TEXT,
		default_text TEXT,
		og_title TEXT,
		og_description TEXT,
		og_image TEXT,
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	_, err := g.pool.Exec(ctx, query)
	return err
}

func (g *DataGenerator) clearData(ctx context.Context) error {
	_, err := g.pool.Exec(ctx, "TRUNCATE links")
	return err
}

// insertActiveLinks seeds the catalog the service actually loads at startup.
// Fields vary per row so the loader sees every shape a real campaign has:
// missing phones, missing preview copy, bare entries.
func (g *DataGenerator) insertActiveLinks(ctx context.Context) error {
	batch := &pgx.Batch{}

	for i := 1; i <= ACTIVE_COUNT; i++ {
		slug := fmt.Sprintf("promo_%06d", i)

		var phone, text, ogTitle, ogImage interface{}
		if i%7 != 0 {
			phone = fmt.Sprintf("9199%08d", i)
		}
		if i%3 == 0 {
			text = fmt.Sprintf("Campaign %d says hi", i)
		}
		if i%2 == 0 {
			ogTitle = fmt.Sprintf("Offer %d", i)
			ogImage = fmt.Sprintf("https://cdn.example.com/offers/%06d.png", i)
		}

		batch.Queue(
			`INSERT INTO links (slug, android_flow_url, ios_whatsapp_base_url, desktop_whatsapp_base_url,
				default_phone, default_text, og_title, og_image, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, $9)`,
			slug,
			fmt.Sprintf("https://flow.example.com/start?campaign=%06d", i),
			"https://wa.me/",
			"https://web.whatsapp.com/send",
			phone, text, ogTitle, ogImage,
			time.Now().Add(-time.Duration(i)*time.Minute),
		)

		if batch.Len() >= BATCH_SIZE {
			if err := g.sendBatch(ctx, batch); err != nil {
				return err
			}
			batch = &pgx.Batch{}
		}
	}

	if batch.Len() > 0 {
		return g.sendBatch(ctx, batch)
	}

	return nil
}

// insertRetiredLinksParallel fills the table with old campaigns that the
// startup query must skip. This is the bulk of a long-lived catalog.
func (g *DataGenerator) insertRetiredLinksParallel(ctx context.Context) error {
	var wg sync.WaitGroup
	errChan := make(chan error, NUM_WORKERS)
	progressChan := make(chan int, NUM_WORKERS)

	done := make(chan bool)
	go func() {
		total := 0
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case count := <-progressChan:
				total += count
			case <-ticker.C:
				_ = float64(total) / float64(RETIRED_COUNT) * 100
			case <-done:
				return
			}
		}
	}()

	rowsPerWorker := RETIRED_COUNT / NUM_WORKERS

	for workerID := 0; workerID < NUM_WORKERS; workerID++ {
		wg.Add(1)

		start := workerID*rowsPerWorker + 1
		end := start + rowsPerWorker - 1
		if workerID == NUM_WORKERS-1 {
			end = RETIRED_COUNT
		}

		go func(id, start, end int) {
			defer wg.Done()

			if err := g.insertRetiredLinksBatch(ctx, start, end, progressChan); err != nil {
				errChan <- fmt.Errorf("worker %d failed: %w", id, err)
			}
		}(workerID, start, end)
	}

	wg.Wait()
	close(done)
	close(errChan)

	for err := range errChan {
		return err
	}

	return nil
}

func (g *DataGenerator) insertRetiredLinksBatch(ctx context.Context, start, end int, progress chan<- int) error {
	for i := start; i <= end; i += BATCH_SIZE {
		batchEnd := i + BATCH_SIZE - 1
		if batchEnd > end {
			batchEnd = end
		}

		batch := &pgx.Batch{}
		for j := i; j <= batchEnd; j++ {
			slug := fmt.Sprintf("retired_%07d", j)
			batch.Queue(
				`INSERT INTO links (slug, android_flow_url, ios_whatsapp_base_url, desktop_whatsapp_base_url,
					default_phone, is_active, created_at)
				VALUES ($1, $2, $3, $4, $5, false, $6)`,
				slug,
				fmt.Sprintf("https://flow.example.com/start?campaign=old%07d", j),
				"https://wa.me/",
				"https://api.whatsapp.com/send",
				fmt.Sprintf("9188%08d", j),
				time.Now().Add(-time.Duration(j)*time.Hour),
			)
		}

		if err := g.sendBatch(ctx, batch); err != nil {
			return err
		}

		progress <- (batchEnd - i + 1)
	}

	return nil
}

func (g *DataGenerator) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := g.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec failed: %w", err)
		}
	}

	return nil
}

func (g *DataGenerator) createIndexes(ctx context.Context) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_links_is_active ON links (is_active)",
		"CREATE INDEX IF NOT EXISTS idx_links_created_at ON links (created_at)",
	}

	for _, query := range indexes {
		if _, err := g.pool.Exec(ctx, query); err != nil {
			return err
		}
	}

	if _, err := g.pool.Exec(ctx, "ANALYZE links"); err != nil {
		return err
	}

	return nil
}

func (g *DataGenerator) verifyData(ctx context.Context) error {
	var count int64
	err := g.pool.QueryRow(ctx, "SELECT COUNT(*) FROM links").Scan(&count)
	if err != nil {
		return err
	}

	expected := int64(ACTIVE_COUNT + RETIRED_COUNT)
	if count != expected {
		return fmt.Errorf("expected %d rows but got %d", expected, count)
	}

	var active int64
	err = g.pool.QueryRow(ctx, "SELECT COUNT(*) FROM links WHERE is_active = true").Scan(&active)
	if err != nil {
		return err
	}

	if active != int64(ACTIVE_COUNT) {
		return fmt.Errorf("expected %d active rows but got %d", ACTIVE_COUNT, active)
	}

	return nil
}
