package service

import (
	"sync"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

// RoleBoard holds the local, non-authoritative role counts and the per-role
// in-flight flags. All mutation goes through its methods.
type RoleBoard struct {
	mu       sync.Mutex
	counts   map[domain.Role]uint64
	inFlight map[domain.Role]bool
}

// NewRoleBoard returns a board with every role at zero.
func NewRoleBoard() *RoleBoard {
	b := &RoleBoard{
		counts:   make(map[domain.Role]uint64, len(domain.Roles)),
		inFlight: make(map[domain.Role]bool, len(domain.Roles)),
	}
	for _, r := range domain.Roles {
		b.counts[r] = 0
	}
	return b
}

// Begin marks role as having an operation in flight. It returns false if one
// is already running; otherwise done must be called to clear the flag.
func (b *RoleBoard) Begin(role domain.Role) (done func(), ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.inFlight[role] {
		return nil, false
	}
	b.inFlight[role] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.inFlight, role)
			b.mu.Unlock()
		})
	}, true
}

// Adjust adds delta to the count of role, clamping at zero. It returns the
// delta actually applied and the new count; passing -applied later restores
// the previous value exactly.
func (b *RoleBoard) Adjust(role domain.Role, delta int64) (applied int64, count uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cur := b.counts[role]
	if delta < 0 && uint64(-delta) > cur {
		delta = -int64(cur)
	}
	next := uint64(int64(cur) + delta)
	b.counts[role] = next
	return delta, next
}

// Count returns the current count of role.
func (b *RoleBoard) Count(role domain.Role) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts[role]
}

// Replace overwrites the counts of the roles present in counts. Roles with
// an operation in flight are skipped: their count carries an optimistic delta
// that the operation itself will either commit or roll back.
func (b *RoleBoard) Replace(counts map[domain.Role]uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for r, c := range counts {
		if b.inFlight[r] {
			continue
		}
		b.counts[r] = c
	}
}

// Set overwrites the count of role regardless of its in-flight flag. Only
// the holder of the role's in-flight flag may call it.
func (b *RoleBoard) Set(role domain.Role, count uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts[role] = count
}

// Snapshot returns every role's count and in-flight flag in display order.
func (b *RoleBoard) Snapshot() []domain.RoleCount {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]domain.RoleCount, 0, len(domain.Roles))
	for _, r := range domain.Roles {
		out = append(out, domain.RoleCount{
			Role:     r,
			Title:    r.Title(),
			Count:    b.counts[r],
			InFlight: b.inFlight[r],
		})
	}
	return out
}
