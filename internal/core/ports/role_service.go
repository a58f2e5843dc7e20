package ports

import (
	"context"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

// AssignInput is the DTO passed from the transport layer to RoleService.Assign.
type AssignInput struct {
	Role       string
	Identifier string
	Actor      string
}

// RevokeInput is the DTO for RoleService.Revoke.
type RevokeInput struct {
	Role       string
	Identifier string
	Reason     string
	Actor      string
}

// RoleChangeResult describes a confirmed assign or revoke.
type RoleChangeResult struct {
	OperationID     string
	Kind            domain.OperationKind
	Role            domain.Role
	Identifier      string
	Address         string
	Tx              domain.TxResult
	OptimisticCount uint64
	Count           uint64
	// ClearInput tells the caller to reset the identifier field for the role.
	ClearInput bool
	Message    string
}

// PrincipalRoles is the result of a role check.
type PrincipalRoles struct {
	Identifier string
	Address    string
	Roles      []string
}

// ListOperationsResult is a page of audit records.
type ListOperationsResult struct {
	Items      []*domain.RoleOperation
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// RoleService defines the role administration use cases.
type RoleService interface {
	Assign(ctx context.Context, in AssignInput) (*RoleChangeResult, error)
	Revoke(ctx context.Context, in RevokeInput) (*RoleChangeResult, error)
	Counts() []domain.RoleCount
	RefreshCounts(ctx context.Context) ([]domain.RoleCount, error)
	CheckRoles(ctx context.Context, identifier string) (*PrincipalRoles, error)
	Portal(ctx context.Context, identifier string) (string, error)
	IsAdmin(ctx context.Context, address string) (bool, error)
	ListOperations(ctx context.Context, filter ListOperationsFilter) (*ListOperationsResult, error)
}
