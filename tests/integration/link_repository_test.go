//go:build integration
// +build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MediumMasala/branch-redirect-service/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	testpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDatabase(t *testing.T) (*pgxpool.Pool, func()) {
	ctx := context.Background()

	pgContainer, err := testpostgres.Run(ctx,
		"postgres:16-alpine",
		testpostgres.WithDatabase("testdb"),
		testpostgres.WithUsername("testuser"),
		testpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dbPool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = applyMigration(ctx, dbPool)
	require.NoError(t, err)

	cleanup := func() {
		dbPool.Close()
		pgContainer.Terminate(ctx)
	}

	return dbPool, cleanup
}

func applyMigration(ctx context.Context, db *pgxpool.Pool) error {
	migrationPath := filepath.Join("..", "..", "migrations", "0001_create_links_table.up.sql")
	migrationSQL, err := os.ReadFile(migrationPath)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, string(migrationSQL))
	return err
}

func seedLink(t *testing.T, db *pgxpool.Pool, slug string, active bool) {
	t.Helper()

	_, err := db.Exec(context.Background(), `
		INSERT INTO links (slug, android_flow_url, ios_whatsapp_base_url, desktop_whatsapp_base_url,
			default_phone, default_text, og_title, og_description, og_image, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		slug,
		"https://flow.example.com/"+slug,
		"https://wa.me/",
		"https://web.whatsapp.com/send",
		"919999999999",
		"Hello",
		"Title for "+slug,
		"Description for "+slug,
		"https://cdn.example.com/"+slug+".png",
		active,
	)
	require.NoError(t, err)
}

func TestLinkRepository_LoadAll_Success(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	seedLink(t, db, "promo", true)
	seedLink(t, db, "support", true)

	repo := postgres.NewLinkRepository(db)

	links, err := repo.LoadAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, links, 2)

	entry, ok := links.Lookup("promo")
	require.True(t, ok)
	assert.Equal(t, "promo", entry.Slug)
	assert.Equal(t, "https://flow.example.com/promo", entry.AndroidFlowURL)
	assert.Equal(t, "https://wa.me/", entry.IOSWhatsAppBaseURL)
	assert.Equal(t, "https://web.whatsapp.com/send", entry.DesktopWhatsAppBaseURL)
	assert.Equal(t, "919999999999", entry.DefaultPhone)
	assert.Equal(t, "Hello", entry.DefaultText)
	assert.Equal(t, "Title for promo", entry.OGTitle)
	assert.Equal(t, "Description for promo", entry.OGDescription)
	assert.Equal(t, "https://cdn.example.com/promo.png", entry.OGImage)
}

func TestLinkRepository_LoadAll_SkipsInactiveLinks(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	seedLink(t, db, "live", true)
	seedLink(t, db, "retired", false)

	repo := postgres.NewLinkRepository(db)

	links, err := repo.LoadAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, links, 1)

	_, ok := links.Lookup("retired")
	assert.False(t, ok, "Inactive links must not be served")
}

func TestLinkRepository_LoadAll_NullOptionalColumns(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	_, err := db.Exec(context.Background(), `
		INSERT INTO links (slug, android_flow_url, ios_whatsapp_base_url, desktop_whatsapp_base_url)
		VALUES ('bare', 'https://flow.example.com/bare', 'https://wa.me/', 'https://web.whatsapp.com/send')`)
	require.NoError(t, err)

	repo := postgres.NewLinkRepository(db)

	links, err := repo.LoadAll(context.Background())
	require.NoError(t, err)

	entry, ok := links.Lookup("bare")
	require.True(t, ok)
	assert.Empty(t, entry.DefaultPhone)
	assert.Empty(t, entry.DefaultText)
	assert.Empty(t, entry.OGTitle)
	assert.Empty(t, entry.OGDescription)
	assert.Empty(t, entry.OGImage)
}

func TestLinkRepository_LoadAll_EmptyTable(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	repo := postgres.NewLinkRepository(db)

	links, err := repo.LoadAll(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, links)
}

func TestLinkRepository_LoadAll_PreservesSlugCase(t *testing.T) {
	db, cleanup := setupTestDatabase(t)
	defer cleanup()

	seedLink(t, db, "VIP-Promo", true)

	repo := postgres.NewLinkRepository(db)

	links, err := repo.LoadAll(context.Background())
	require.NoError(t, err)

	_, ok := links.Lookup("VIP-Promo")
	assert.True(t, ok)

	_, ok = links.Lookup("vip-promo")
	assert.False(t, ok, "Slug lookup is case sensitive")
}
