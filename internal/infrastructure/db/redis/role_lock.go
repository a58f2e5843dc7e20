package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

const defaultLockTTL = 3 * time.Minute

// releaseScript deletes the lock only if it still holds our token, so a lock
// that expired and was taken by another replica is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RoleLock extends the per-role in-flight rule across service replicas.
// Key format: roles:inflight:<ROLE>
type RoleLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRoleLock creates a RoleLock. ttl bounds how long a crashed holder can
// block a role and should exceed the transaction confirmation timeout.
func NewRoleLock(client *redis.Client, ttl time.Duration) *RoleLock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RoleLock{client: client, ttl: ttl}
}

// Acquire takes the lock for role. It returns domain.ErrOperationInFlight if
// another holder has it.
func (l *RoleLock) Acquire(ctx context.Context, role domain.Role) (func(), error) {
	key := l.key(role)
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("role lock: %w", err)
	}
	if !ok {
		return nil, domain.ErrOperationInFlight
	}

	return func() {
		// Detached from ctx: the caller's context may already be done.
		relCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		_ = releaseScript.Run(relCtx, l.client, []string{key}, token).Err()
	}, nil
}

func (l *RoleLock) key(role domain.Role) string {
	return fmt.Sprintf("roles:inflight:%s", role)
}
