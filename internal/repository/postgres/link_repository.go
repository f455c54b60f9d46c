package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MediumMasala/branch-redirect-service/internal/domain"
)

type LinkRepository struct {
	db *pgxpool.Pool
}

func NewLinkRepository(db *pgxpool.Pool) *LinkRepository {
	return &LinkRepository{db: db}
}

// LoadAll reads every active link from the catalog table. The caller loads
// the result once at startup and treats it as read-only afterwards.
func (r *LinkRepository) LoadAll(ctx context.Context) (domain.LinkSet, error) {
	query := `
		SELECT slug, android_flow_url, ios_whatsapp_base_url, desktop_whatsapp_base_url,
			COALESCE(default_phone, ''), COALESCE(default_text, ''),
			COALESCE(og_title, ''), COALESCE(og_description, ''), COALESCE(og_image, '')
		FROM links
		WHERE is_active = true
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	links := make(domain.LinkSet)
	for rows.Next() {
		var entry domain.LinkEntry

		err := rows.Scan(
			&entry.Slug,
			&entry.AndroidFlowURL,
			&entry.IOSWhatsAppBaseURL,
			&entry.DesktopWhatsAppBaseURL,
			&entry.DefaultPhone,
			&entry.DefaultText,
			&entry.OGTitle,
			&entry.OGDescription,
			&entry.OGImage,
		)
		if err != nil {
			return nil, err
		}

		links[entry.Slug] = &entry
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return links, nil
}
