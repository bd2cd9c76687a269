package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
)

const operatorSelect = `
	SELECT o.id, o.identity_id, o.role_id, o.workshop_id, o.full_name, i.external_id, o.created_at
	FROM operators o
	JOIN identities i ON i.id = o.identity_id`

func scanOperator(row rowScanner) (*domain.OperatorProfile, error) {
	var (
		op       domain.OperatorProfile
		workshop sql.NullInt64
		created  string
	)
	if err := row.Scan(&op.ID, &op.IdentityID, &op.RoleID, &workshop, &op.FullName, &op.ExternalID, &created); err != nil {
		return nil, notFound(err)
	}
	op.WorkshopID = workshop.Int64
	op.CreatedAt = parseTime(created)
	return &op, nil
}

// FindOperatorProfile implements ports.OperatorStore.
func (s *Store) FindOperatorProfile(ctx context.Context, identityID int64) (*domain.OperatorProfile, error) {
	return scanOperator(s.db.QueryRowContext(ctx, operatorSelect+` WHERE o.identity_id = ?`, identityID))
}

// GetOperator implements ports.OperatorStore.
func (s *Store) GetOperator(ctx context.Context, id int64) (*domain.OperatorProfile, error) {
	return scanOperator(s.db.QueryRowContext(ctx, operatorSelect+` WHERE o.id = ?`, id))
}

// PermissionsOf implements ports.OperatorStore.
func (s *Store) PermissionsOf(ctx context.Context, roleID int64) (domain.Permissions, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.slug FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = ?`, roleID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: permissions of role %d: %w", roleID, err)
	}
	defer rows.Close()

	perms := domain.Permissions{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		perms[slug] = struct{}{}
	}
	return perms, rows.Err()
}

// ListOperators implements ports.OperatorStore.
func (s *Store) ListOperators(ctx context.Context, workshopID int64, roleSlug string) ([]domain.OperatorProfile, error) {
	rows, err := s.db.QueryContext(ctx, operatorSelect+`
		JOIN roles r ON r.id = o.role_id
		WHERE (? = 0 OR o.workshop_id = ?) AND (? = '' OR r.slug = ?)
		ORDER BY o.id`, workshopID, workshopID, roleSlug, roleSlug)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list operators: %w", err)
	}
	defer rows.Close()

	var out []domain.OperatorProfile
	for rows.Next() {
		op, err := scanOperator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *op)
	}
	return out, rows.Err()
}
