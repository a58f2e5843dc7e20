package ports

import (
	"context"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

// RoleRegistry is the remote, authoritative role store (the RolesManager
// contract). Invoke blocks until the state-changing call is confirmed or fails.
type RoleRegistry interface {
	Invoke(ctx context.Context, function string, args ...any) (*domain.TxResult, error)
	RoleMemberCount(ctx context.Context, roleID [32]byte) (uint64, error)
	HasAdminRole(ctx context.Context, address string) (bool, error)
	HasRole(ctx context.Context, role domain.Role, address string) (bool, error)
	RolesForAddress(ctx context.Context, address string) ([]string, error)
}

// NameResolver maps a human-readable name to an address. Unregistered names
// resolve to domain.ZeroAddress rather than an error.
type NameResolver interface {
	ResolveName(ctx context.Context, name string) (string, error)
}

// RoleLock serializes operations on one role across service replicas.
// Acquire returns domain.ErrOperationInFlight when another holder exists.
type RoleLock interface {
	Acquire(ctx context.Context, role domain.Role) (release func(), err error)
}
