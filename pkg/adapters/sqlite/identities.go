package sqlite

import (
	"context"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
)

const identityColumns = `id, external_id, phone, created_at`

func scanIdentity(row rowScanner) (*domain.Identity, error) {
	var (
		ident   domain.Identity
		created string
	)
	if err := row.Scan(&ident.ID, &ident.ExternalID, &ident.Phone, &created); err != nil {
		return nil, notFound(err)
	}
	ident.CreatedAt = parseTime(created)
	return &ident, nil
}

// FindIdentity implements ports.IdentityStore.
func (s *Store) FindIdentity(ctx context.Context, externalID int64) (*domain.Identity, error) {
	return scanIdentity(s.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE external_id = ?`, externalID))
}

// GetIdentity implements ports.IdentityStore.
func (s *Store) GetIdentity(ctx context.Context, id int64) (*domain.Identity, error) {
	return scanIdentity(s.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM identities WHERE id = ?`, id))
}

// CreateIdentity implements ports.IdentityStore.
func (s *Store) CreateIdentity(ctx context.Context, externalID int64, attrs domain.IdentityAttrs) (*domain.Identity, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO identities (external_id, phone, created_at) VALUES (?, ?, ?)`,
		externalID, attrs.Phone, s.stamp())
	if err != nil {
		return nil, fmt.Errorf("sqlite: create identity: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetIdentity(ctx, id)
}

// ListIdentities implements ports.IdentityStore.
func (s *Store) ListIdentities(ctx context.Context) ([]domain.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+identityColumns+` FROM identities ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list identities: %w", err)
	}
	defer rows.Close()

	var out []domain.Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ident)
	}
	return out, rows.Err()
}
