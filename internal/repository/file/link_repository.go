package file

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MediumMasala/branch-redirect-service/internal/domain"
)

type catalog struct {
	Links map[string]*domain.LinkEntry `yaml:"links"`
}

type LinkRepository struct {
	path string
}

func NewLinkRepository(path string) *LinkRepository {
	return &LinkRepository{path: path}
}

// LoadAll parses the YAML catalog. Top-level map keys become the entries'
// slugs, preserving their case exactly as written.
func (r *LinkRepository) LoadAll(ctx context.Context) (domain.LinkSet, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read link catalog: %w", err)
	}

	var doc catalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse link catalog: %w", err)
	}

	links := make(domain.LinkSet, len(doc.Links))
	for slug, entry := range doc.Links {
		if entry == nil {
			entry = &domain.LinkEntry{}
		}
		entry.Slug = slug
		links[slug] = entry
	}

	return links, nil
}
