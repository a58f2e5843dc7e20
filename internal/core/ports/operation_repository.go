package ports

import (
	"context"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

// ListOperationsFilter carries the query parameters for the audit log.
type ListOperationsFilter struct {
	Kind  domain.OperationKind // optional
	Role  domain.Role          // optional
	Page  int                  // 1-based
	Limit int                  // capped at 100 by the service
}

// OperationRepository persists the role operation audit log.
type OperationRepository interface {
	Insert(ctx context.Context, op *domain.RoleOperation) error
	List(ctx context.Context, filter ListOperationsFilter) ([]*domain.RoleOperation, int64, error)
}

// OperationRecorder accepts finished operations for asynchronous auditing.
type OperationRecorder interface {
	Record(op domain.RoleOperation)
}
