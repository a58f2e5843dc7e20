package ports

import (
	"context"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, username, password, role, wallet string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
}
