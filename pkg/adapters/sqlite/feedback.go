package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aretw0/wayfinder/pkg/domain"
)

const feedbackColumns = `id, identity_id, workshop_id, operator_id, contact_method_id, reason, taken_at, completed_at, created_at`

func scanFeedback(row rowScanner) (*domain.FeedbackRequest, error) {
	var (
		req               domain.FeedbackRequest
		operator, contact sql.NullInt64
		reason            sql.NullString
		taken, completed  sql.NullString
		created           string
	)
	err := row.Scan(&req.ID, &req.IdentityID, &req.WorkshopID, &operator, &contact,
		&reason, &taken, &completed, &created)
	if err != nil {
		return nil, notFound(err)
	}
	req.OperatorID = nullInt(operator)
	req.ContactMethodID = nullInt(contact)
	req.Reason = nullString(reason)
	req.TakenAt = parseNullTime(taken)
	req.CompletedAt = parseNullTime(completed)
	req.CreatedAt = parseTime(created)
	return &req, nil
}

// CreateFeedback implements ports.FeedbackStore. A non-nil OperatorID
// reserves the request for that operator.
func (s *Store) CreateFeedback(ctx context.Context, req domain.FeedbackRequest) (*domain.FeedbackRequest, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback_requests (identity_id, workshop_id, operator_id, contact_method_id, reason, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		req.IdentityID, req.WorkshopID, req.OperatorID, req.ContactMethodID, req.Reason, s.stamp())
	if err != nil {
		return nil, fmt.Errorf("sqlite: create feedback: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetFeedback(ctx, id)
}

// GetFeedback implements ports.FeedbackStore.
func (s *Store) GetFeedback(ctx context.Context, id int64) (*domain.FeedbackRequest, error) {
	return scanFeedback(s.db.QueryRowContext(ctx,
		`SELECT `+feedbackColumns+` FROM feedback_requests WHERE id = ?`, id))
}

// ListFeedback implements ports.FeedbackStore. Results are ordered by creation.
func (s *Store) ListFeedback(ctx context.Context, f domain.FeedbackFilter) ([]domain.FeedbackRequest, error) {
	var (
		where []string
		args  []any
	)
	if f.IdentityID != 0 {
		where = append(where, "identity_id = ?")
		args = append(args, f.IdentityID)
	}
	if f.WorkshopID != 0 {
		where = append(where, "workshop_id = ?")
		args = append(args, f.WorkshopID)
	}
	if f.OperatorID != 0 {
		where = append(where, "operator_id = ?")
		args = append(args, f.OperatorID)
	}
	if f.OpenOnly {
		where = append(where, "completed_at IS NULL")
	}
	if f.CompletedOnly {
		where = append(where, "completed_at IS NOT NULL")
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, formatTime(f.Since))
	}

	query := `SELECT ` + feedbackColumns + ` FROM feedback_requests`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list feedback: %w", err)
	}
	defer rows.Close()

	var out []domain.FeedbackRequest
	for rows.Next() {
		req, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *req)
	}
	return out, rows.Err()
}

// TakeFeedback implements ports.FeedbackStore.
func (s *Store) TakeFeedback(ctx context.Context, id, operatorID int64) (*domain.FeedbackRequest, error) {
	return s.claim(ctx, id, operatorID, `
		UPDATE feedback_requests SET operator_id = ?1, taken_at = ?2
		WHERE id = ?3 AND (operator_id IS NULL OR operator_id = ?1)`)
}

// CompleteFeedback implements ports.FeedbackStore.
func (s *Store) CompleteFeedback(ctx context.Context, id, operatorID int64) (*domain.FeedbackRequest, error) {
	return s.claim(ctx, id, operatorID, `
		UPDATE feedback_requests SET operator_id = ?1, taken_at = COALESCE(taken_at, ?2), completed_at = ?2
		WHERE id = ?3 AND (operator_id IS NULL OR operator_id = ?1)`)
}

// claim runs an ownership-guarded update bound as (operator, now, id). Zero
// affected rows means the request is missing or held by someone else.
func (s *Store) claim(ctx context.Context, id, operatorID int64, stmt string) (*domain.FeedbackRequest, error) {
	res, err := s.db.ExecContext(ctx, stmt, operatorID, s.stamp(), id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update feedback %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		if _, err := s.GetFeedback(ctx, id); err != nil {
			return nil, err
		}
		return nil, domain.ErrAlreadyTaken
	}
	return s.GetFeedback(ctx, id)
}
