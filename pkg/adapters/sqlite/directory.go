package sqlite

import (
	"context"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// ListWorkshops implements ports.DirectoryStore.
func (s *Store) ListWorkshops(ctx context.Context) ([]domain.Workshop, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug, name, maps_url FROM workshops ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list workshops: %w", err)
	}
	defer rows.Close()

	var out []domain.Workshop
	for rows.Next() {
		var w domain.Workshop
		if err := rows.Scan(&w.ID, &w.Slug, &w.Name, &w.MapsURL); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// GetWorkshop implements ports.DirectoryStore.
func (s *Store) GetWorkshop(ctx context.Context, id int64) (*domain.Workshop, error) {
	var w domain.Workshop
	err := s.db.QueryRowContext(ctx,
		`SELECT id, slug, name, maps_url FROM workshops WHERE id = ?`, id).
		Scan(&w.ID, &w.Slug, &w.Name, &w.MapsURL)
	if err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

// ListContactMethods implements ports.DirectoryStore.
func (s *Store) ListContactMethods(ctx context.Context) ([]domain.ContactMethod, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug, name FROM contact_methods ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list contact methods: %w", err)
	}
	defer rows.Close()

	var out []domain.ContactMethod
	for rows.Next() {
		var c domain.ContactMethod
		if err := rows.Scan(&c.ID, &c.Slug, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
