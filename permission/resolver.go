package permission

import "errors"

// Resolver answers permission and hierarchy questions for a set of roles.
// All methods are pure reads over a frozen registry and table, safe for
// concurrent use from any goroutine.
//
// Every method fails closed: an unknown role contributes nothing, an
// unknown permission is denied, and a hierarchy comparison involving an
// unknown role is false.
type Resolver struct {
	registry *Registry
	table    *Table
}

// NewResolver creates a [Resolver] over the given registry and table.
func NewResolver(registry *Registry, table *Table) (*Resolver, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}
	if table == nil {
		return nil, errors.New("table cannot be nil")
	}

	return &Resolver{registry: registry, table: table}, nil
}

// EffectiveMask returns the union of the permission masks of all given
// roles. Unknown roles are skipped.
func (r *Resolver) EffectiveMask(roles []string) Mask {
	out := r.registry.newMask()
	for _, role := range roles {
		if mask, ok := r.table.RoleMask(role); ok {
			out.Or(mask)
		}
	}
	return out
}

// EffectivePermissions returns the names of all permissions granted by the
// union of the given roles, in ascending bit order. An empty or entirely
// unknown role set yields an empty slice, never nil semantics the caller
// has to special-case.
func (r *Resolver) EffectivePermissions(roles []string) []string {
	mask := r.EffectiveMask(roles)

	out := make([]string, 0, r.registry.Count())
	for bit := 0; bit < r.registry.maxBits; bit++ {
		if !mask.Has(bit) {
			continue
		}
		if name, ok := r.registry.Name(bit); ok {
			out = append(out, name)
		}
	}

	return out
}

// Can reports whether any of the given roles grants the named permission.
// Unknown permissions and unknown roles are denied.
func (r *Resolver) Can(roles []string, permission string) bool {
	bit, ok := r.registry.Bit(permission)
	if !ok {
		return false
	}

	for _, role := range roles {
		mask, ok := r.table.RoleMask(role)
		if !ok {
			continue
		}
		if mask.Has(bit) {
			return true
		}
	}

	return false
}

// IsSenior reports whether roleA sits strictly above roleB in the role
// hierarchy. Equal levels are not senior. If either role is unregistered
// the comparison is false.
func (r *Resolver) IsSenior(roleA, roleB string) bool {
	levelA, okA := r.table.Level(roleA)
	levelB, okB := r.table.Level(roleB)
	if !okA || !okB {
		return false
	}
	return levelA > levelB
}

// MaxLevel returns the highest hierarchy level among the given roles, or
// false if none of them is registered.
func (r *Resolver) MaxLevel(roles []string) (int, bool) {
	best := 0
	found := false
	for _, role := range roles {
		level, ok := r.table.Level(role)
		if !ok {
			continue
		}
		if !found || level > best {
			best = level
			found = true
		}
	}
	return best, found
}

// IsProtectedRole reports whether the named role must not be deleted.
func (r *Resolver) IsProtectedRole(name string) bool {
	return r.table.Protected(name)
}
