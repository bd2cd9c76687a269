package memory

import (
	"fmt"

	"github.com/aretw0/wayfinder/pkg/domain"
)

// ApplySeed loads reference data into r. Operators must reference roles
// and workshops declared in the same seed.
func (r *Records) ApplySeed(seed domain.Seed) error {
	roles := make(map[string]int64, len(seed.Roles))
	for _, sr := range seed.Roles {
		roles[sr.Slug] = r.AddRole(sr.Slug, sr.Name, sr.Permissions...).ID
	}
	workshops := make(map[string]int64, len(seed.Workshops))
	for _, w := range seed.Workshops {
		workshops[w.Slug] = r.AddWorkshop(w).ID
	}
	for _, c := range seed.ContactMethods {
		r.AddContactMethod(c)
	}
	for _, so := range seed.Operators {
		roleID, ok := roles[so.Role]
		if !ok {
			return fmt.Errorf("memory: operator %q: unknown role %q", so.FullName, so.Role)
		}
		var workshopID int64
		if so.Workshop != "" {
			if workshopID, ok = workshops[so.Workshop]; !ok {
				return fmt.Errorf("memory: operator %q: unknown workshop %q", so.FullName, so.Workshop)
			}
		}
		op := r.AddOperator(so.ExternalID, so.FullName, roleID, workshopID)
		if so.Phone != "" {
			r.mu.Lock()
			ident := r.identities[op.IdentityID]
			ident.Phone = so.Phone
			r.identities[op.IdentityID] = ident
			r.mu.Unlock()
		}
	}
	return nil
}
