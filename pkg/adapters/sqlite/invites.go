package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/wayfinder/pkg/domain"
	"github.com/google/uuid"
)

const inviteColumns = `id, operator_id, phone, activations, activations_limit, created_at`

func scanInvite(row rowScanner) (*domain.Invite, error) {
	var (
		inv     domain.Invite
		created string
	)
	if err := row.Scan(&inv.ID, &inv.OperatorID, &inv.Data.Phone, &inv.Activations, &inv.ActivationsLimit, &created); err != nil {
		return nil, notFound(err)
	}
	inv.CreatedAt = parseTime(created)
	return &inv, nil
}

// CreateInvite implements ports.InviteStore. The identifier is a random UUID
// so that links cannot be guessed.
func (s *Store) CreateInvite(ctx context.Context, operatorID int64, attrs domain.IdentityAttrs, limit int) (*domain.Invite, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invites (id, operator_id, phone, activations, activations_limit, created_at) VALUES (?, ?, ?, 0, ?, ?)`,
		id, operatorID, attrs.Phone, limit, s.stamp())
	if err != nil {
		return nil, fmt.Errorf("sqlite: create invite: %w", err)
	}
	return s.FindInvite(ctx, id)
}

// FindInvite implements ports.InviteStore.
func (s *Store) FindInvite(ctx context.Context, id string) (*domain.Invite, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	return scanInvite(s.db.QueryRowContext(ctx, `SELECT `+inviteColumns+` FROM invites WHERE id = ?`, id))
}

// ConsumeInvite implements ports.InviteStore.
func (s *Store) ConsumeInvite(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE invites SET activations = activations + 1 WHERE id = ? AND activations < activations_limit`, id)
	if err != nil {
		return fmt.Errorf("sqlite: consume invite: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListInvites implements ports.InviteStore.
func (s *Store) ListInvites(ctx context.Context, since time.Time) ([]domain.Invite, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+inviteColumns+` FROM invites WHERE created_at >= ? ORDER BY created_at`, formatTime(since))
	if err != nil {
		return nil, fmt.Errorf("sqlite: list invites: %w", err)
	}
	defer rows.Close()

	var out []domain.Invite
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}
