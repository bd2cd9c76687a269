package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// CreateReview implements ports.ReviewStore. A second review of the same
// workshop by the same identity violates a unique constraint.
func (s *Store) CreateReview(ctx context.Context, review domain.Review) (*domain.Review, error) {
	created := s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reviews (identity_id, workshop_id, text, rating, created_at) VALUES (?, ?, ?, ?, ?)`,
		review.IdentityID, review.WorkshopID, review.Text, review.Rating, formatTime(created))
	if err != nil {
		return nil, fmt.Errorf("sqlite: create review: %w", err)
	}
	if review.ID, err = res.LastInsertId(); err != nil {
		return nil, err
	}
	review.CreatedAt = parseTime(formatTime(created))
	return &review, nil
}

// HasReview implements ports.ReviewStore.
func (s *Store) HasReview(ctx context.Context, identityID, workshopID int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM reviews WHERE identity_id = ? AND workshop_id = ?`, identityID, workshopID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("sqlite: has review: %w", err)
	}
	return true, nil
}
