package permission

import (
	"errors"
	"sync"
)

type roleEntry struct {
	mask  Mask
	level int
}

// Table is the static role definition table: role name to permission mask,
// hierarchy level, and protected flag. Roles are registered at startup and
// the table is frozen before first use; all reads after Freeze are lock-free
// in practice (RLock on an uncontended mutex).
type Table struct {
	registry *Registry

	mu        sync.RWMutex
	roles     map[string]roleEntry
	protected map[string]bool
	frozen    bool
}

// NewTable creates an empty role [Table] bound to the given registry.
func NewTable(registry *Registry) (*Table, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}

	return &Table{
		registry:  registry,
		roles:     make(map[string]roleEntry),
		protected: make(map[string]bool),
	}, nil
}

// RegisterRole defines a role with a hierarchy level and a set of permission
// names. Every permission must already be registered; an unknown permission
// fails the whole registration so misconfigured roles are caught at startup
// rather than silently granting less than intended.
func (t *Table) RegisterRole(name string, level int, permissions []string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return errors.New("role table frozen")
	}

	if name == "" {
		return errors.New("role name cannot be empty")
	}

	if _, exists := t.roles[name]; exists {
		return errors.New("role already registered")
	}

	mask := t.registry.newMask()
	for _, perm := range permissions {
		bit, ok := t.registry.Bit(perm)
		if !ok {
			return errors.New("unknown permission: " + perm)
		}
		mask.Set(bit)
	}

	t.roles[name] = roleEntry{mask: mask, level: level}

	return nil
}

// MarkProtected flags a role name as protected from deletion. The name does
// not have to be registered: deployments can protect roles that only exist
// server-side.
func (t *Table) MarkProtected(name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.frozen {
		return errors.New("role table frozen")
	}

	if name == "" {
		return errors.New("role name cannot be empty")
	}

	t.protected[name] = true

	return nil
}

// Freeze prevents further role registrations.
func (t *Table) Freeze() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frozen = true
}

// RoleMask returns a copy of the permission mask for the named role,
// or false if the role is not registered.
func (t *Table) RoleMask(name string) (Mask, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.roles[name]
	if !ok {
		return nil, false
	}

	return entry.mask.Clone(), true
}

// Level returns the hierarchy level for the named role, or false if the
// role is not registered.
func (t *Table) Level(name string) (int, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.roles[name]
	if !ok {
		return 0, false
	}

	return entry.level, true
}

// Protected reports whether the named role is flagged as protected.
func (t *Table) Protected(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.protected[name]
}

// Roles returns the names of all registered roles in unspecified order.
func (t *Table) Roles() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.roles))
	for name := range t.roles {
		names = append(names, name)
	}

	return names
}
