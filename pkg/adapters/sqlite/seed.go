package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// ApplySeed upserts reference data in one transaction. Records are matched
// by slug (roles, workshops, contact methods) or external ID (operators), so
// applying the same seed twice is a no-op. A role's permission set is
// replaced by the seeded one.
func (s *Store) ApplySeed(ctx context.Context, seed domain.Seed) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	roles := make(map[string]int64, len(seed.Roles))
	for _, r := range seed.Roles {
		id, err := upsertSlug(ctx, tx, `
			INSERT INTO roles (slug, name) VALUES (?, ?)
			ON CONFLICT(slug) DO UPDATE SET name = excluded.name`, "roles", r.Slug, r.Name)
		if err != nil {
			return fmt.Errorf("sqlite: seed role %q: %w", r.Slug, err)
		}
		roles[r.Slug] = id
		if err := grant(ctx, tx, id, r.Permissions); err != nil {
			return fmt.Errorf("sqlite: seed role %q permissions: %w", r.Slug, err)
		}
	}

	workshops := make(map[string]int64, len(seed.Workshops))
	for _, w := range seed.Workshops {
		id, err := upsertSlug(ctx, tx, `
			INSERT INTO workshops (slug, name, maps_url) VALUES (?, ?, ?)
			ON CONFLICT(slug) DO UPDATE SET name = excluded.name, maps_url = excluded.maps_url`,
			"workshops", w.Slug, w.Name, w.MapsURL)
		if err != nil {
			return fmt.Errorf("sqlite: seed workshop %q: %w", w.Slug, err)
		}
		workshops[w.Slug] = id
	}

	for _, c := range seed.ContactMethods {
		if _, err := upsertSlug(ctx, tx, `
			INSERT INTO contact_methods (slug, name) VALUES (?, ?)
			ON CONFLICT(slug) DO UPDATE SET name = excluded.name`, "contact_methods", c.Slug, c.Name); err != nil {
			return fmt.Errorf("sqlite: seed contact method %q: %w", c.Slug, err)
		}
	}

	now := s.stamp()
	for _, o := range seed.Operators {
		roleID, ok := roles[o.Role]
		if !ok {
			if roleID, err = lookupSlug(ctx, tx, "roles", o.Role); err != nil {
				return fmt.Errorf("sqlite: seed operator %q: role %q: %w", o.FullName, o.Role, err)
			}
		}
		var workshopID sql.NullInt64
		if o.Workshop != "" {
			id, ok := workshops[o.Workshop]
			if !ok {
				if id, err = lookupSlug(ctx, tx, "workshops", o.Workshop); err != nil {
					return fmt.Errorf("sqlite: seed operator %q: workshop %q: %w", o.FullName, o.Workshop, err)
				}
			}
			workshopID = sql.NullInt64{Int64: id, Valid: true}
		}

		if _, err = tx.ExecContext(ctx, `
			INSERT INTO identities (external_id, phone, created_at) VALUES (?, ?, ?)
			ON CONFLICT(external_id) DO UPDATE SET phone = excluded.phone`,
			o.ExternalID, o.Phone, now); err != nil {
			return fmt.Errorf("sqlite: seed operator %q identity: %w", o.FullName, err)
		}
		var identityID int64
		if err = tx.QueryRowContext(ctx, `SELECT id FROM identities WHERE external_id = ?`, o.ExternalID).Scan(&identityID); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO operators (identity_id, role_id, workshop_id, full_name, created_at) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(identity_id) DO UPDATE SET
				role_id = excluded.role_id, workshop_id = excluded.workshop_id, full_name = excluded.full_name`,
			identityID, roleID, workshopID, o.FullName, now); err != nil {
			return fmt.Errorf("sqlite: seed operator %q: %w", o.FullName, err)
		}
	}

	return tx.Commit()
}

func upsertSlug(ctx context.Context, tx *sql.Tx, stmt, table, slug string, args ...any) (int64, error) {
	if _, err := tx.ExecContext(ctx, stmt, append([]any{slug}, args...)...); err != nil {
		return 0, err
	}
	return lookupSlug(ctx, tx, table, slug)
}

// lookupSlug resolves an ID by slug. table is always a constant from this file.
func lookupSlug(ctx context.Context, tx *sql.Tx, table, slug string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM `+table+` WHERE slug = ?`, slug).Scan(&id)
	return id, notFound(err)
}

func grant(ctx context.Context, tx *sql.Tx, roleID int64, perms []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = ?`, roleID); err != nil {
		return err
	}
	for _, p := range perms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO permissions (slug) VALUES (?) ON CONFLICT(slug) DO NOTHING`, p); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO role_permissions (role_id, permission_id)
			SELECT ?, id FROM permissions WHERE slug = ?`, roleID, p); err != nil {
			return err
		}
	}
	return nil
}
