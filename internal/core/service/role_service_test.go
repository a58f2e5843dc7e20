package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mineralchain/roles-admin/internal/core/domain"
	"github.com/mineralchain/roles-admin/internal/core/ports"
)

const (
	aliceAddr = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	bobAddr   = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

// ---------------------------------------------------------------------------
// Stub registry
// ---------------------------------------------------------------------------

// stubRegistry keeps role membership in memory and behaves like the
// deployed roles manager for the functions the service calls.
type stubRegistry struct {
	mu        sync.Mutex
	members   map[domain.Role]map[string]bool
	admins    map[string]bool
	extra     map[domain.Role]uint64 // members added outside this service
	invokeErr error                  // if set, Invoke returns this error
	countErr  map[domain.Role]error  // per-role RoleMemberCount failure
	readErr   error                  // if set, every read call fails
	calls     []string

	// observe is called from Invoke before anything else, used to inspect
	// intermediate state while the remote call is pending.
	observe func()
}

func newStubRegistry() *stubRegistry {
	return &stubRegistry{
		members:  make(map[domain.Role]map[string]bool),
		admins:   make(map[string]bool),
		extra:    make(map[domain.Role]uint64),
		countErr: make(map[domain.Role]error),
	}
}

func (r *stubRegistry) grant(role domain.Role, addr string) {
	if r.members[role] == nil {
		r.members[role] = make(map[string]bool)
	}
	r.members[role][strings.ToLower(addr)] = true
}

func roleForFunction(fn string) (domain.Role, bool) {
	for _, role := range domain.Roles {
		if fn == role.AssignFunction() || fn == role.RevokeFunction() {
			return role, true
		}
	}
	return "", false
}

func (r *stubRegistry) Invoke(_ context.Context, function string, args ...any) (*domain.TxResult, error) {
	if r.observe != nil {
		r.observe()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, function)
	if r.invokeErr != nil {
		return nil, r.invokeErr
	}
	role, ok := roleForFunction(function)
	if !ok {
		return nil, errors.New("unknown function " + function)
	}
	addr := strings.ToLower(args[0].(common.Address).Hex())
	if strings.HasPrefix(function, "assign") {
		if r.members[role][addr] {
			return nil, &domain.RemoteError{Code: "RolesManager__AlreadyHasRole"}
		}
		r.grant(role, addr)
	} else {
		if !r.members[role][addr] {
			return nil, &domain.RemoteError{Code: "RolesManager__RoleNotFound"}
		}
		delete(r.members[role], addr)
	}
	return &domain.TxResult{Hash: "0xabc", BlockNumber: 7, GasUsed: 21000}, nil
}

func (r *stubRegistry) RoleMemberCount(_ context.Context, id [32]byte) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.readErr != nil {
		return 0, r.readErr
	}
	for _, role := range domain.Roles {
		if role.ID() == id {
			if err := r.countErr[role]; err != nil {
				return 0, err
			}
			return uint64(len(r.members[role])) + r.extra[role], nil
		}
	}
	return 0, errors.New("unknown role id")
}

func (r *stubRegistry) HasAdminRole(_ context.Context, addr string) (bool, error) {
	if r.readErr != nil {
		return false, r.readErr
	}
	return r.admins[strings.ToLower(addr)], nil
}

func (r *stubRegistry) HasRole(_ context.Context, role domain.Role, addr string) (bool, error) {
	if r.readErr != nil {
		return false, r.readErr
	}
	return r.members[role][strings.ToLower(addr)], nil
}

func (r *stubRegistry) RolesForAddress(_ context.Context, addr string) ([]string, error) {
	if r.readErr != nil {
		return nil, r.readErr
	}
	var out []string
	for _, role := range domain.Roles {
		if r.members[role][strings.ToLower(addr)] {
			out = append(out, string(role))
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Stub resolver and recorder
// ---------------------------------------------------------------------------

type stubResolver struct {
	names map[string]string
	err   error
	calls int
}

func (r *stubResolver) ResolveName(_ context.Context, name string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}
	if addr, ok := r.names[name]; ok {
		return addr, nil
	}
	return domain.ZeroAddress, nil
}

type captureRecorder struct {
	mu  sync.Mutex
	ops []domain.RoleOperation
}

func (c *captureRecorder) Record(op domain.RoleOperation) {
	c.mu.Lock()
	c.ops = append(c.ops, op)
	c.mu.Unlock()
}

func (c *captureRecorder) last(t *testing.T) domain.RoleOperation {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.ops)
	return c.ops[len(c.ops)-1]
}

type fixture struct {
	svc      *RoleService
	registry *stubRegistry
	resolver *stubResolver
	board    *RoleBoard
	recorder *captureRecorder
}

func newFixture() *fixture {
	reg := newStubRegistry()
	res := &stubResolver{names: map[string]string{}}
	board := NewRoleBoard()
	rec := &captureRecorder{}
	svc := NewRoleService(reg, res, board, zerolog.Nop(), RoleServiceOptions{Recorder: rec})
	return &fixture{svc: svc, registry: reg, resolver: res, board: board, recorder: rec}
}

// ---------------------------------------------------------------------------
// Assign / Revoke
// ---------------------------------------------------------------------------

func TestAssign_AddressSuccess(t *testing.T) {
	f := newFixture()
	f.registry.extra[domain.RoleAuditor] = 3
	f.board.Replace(map[domain.Role]uint64{domain.RoleAuditor: 3})

	var pending uint64
	f.registry.observe = func() { pending = f.board.Count(domain.RoleAuditor) }

	res, err := f.svc.Assign(context.Background(), ports.AssignInput{
		Role:       "AUDITOR",
		Identifier: "  " + aliceAddr + " ",
		Actor:      "ops",
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(4), pending, "count must be raised before the remote call returns")
	assert.Equal(t, uint64(4), res.OptimisticCount)
	assert.Equal(t, uint64(4), res.Count)
	assert.Equal(t, aliceAddr, res.Address)
	assert.True(t, res.ClearInput)
	assert.Equal(t, "Auditor role assigned successfully to "+aliceAddr, res.Message)
	assert.Equal(t, "0xabc", res.Tx.Hash)
	assert.Equal(t, []string{"assignAuditor"}, f.registry.calls)
	assert.Zero(t, f.resolver.calls, "addresses are never resolved")

	op := f.recorder.last(t)
	assert.Equal(t, domain.OutcomeConfirmed, op.Outcome)
	assert.Equal(t, "ops", op.Actor)
	assert.Equal(t, "0xabc", op.TxHash)
}

func TestAssign_RemoteFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.board.Replace(map[domain.Role]uint64{domain.RoleAuditor: 3})
	f.registry.invokeErr = errors.New("execution reverted: RolesManager__AlreadyHasRole")

	_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "AUDITOR", Identifier: aliceAddr})
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrRemoteRejected)
	assert.Equal(t, "Auditor role already assigned to address", err.(*domain.OperationError).Message)
	assert.Equal(t, uint64(3), f.board.Count(domain.RoleAuditor))

	op := f.recorder.last(t)
	assert.Equal(t, domain.OutcomeRolledBack, op.Outcome)
	assert.Equal(t, "remote_rejected", op.ErrorKind)
}

func TestAssign_NameResolvesToZero(t *testing.T) {
	f := newFixture()
	f.board.Replace(map[domain.Role]uint64{domain.RoleMiner: 2})

	_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: "alice.base"})

	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.Equal(t, "Base name not found or not registered", err.(*domain.OperationError).Message)
	assert.Equal(t, uint64(2), f.board.Count(domain.RoleMiner))
	assert.Empty(t, f.registry.calls, "no remote call after a failed resolution")
	assert.Equal(t, 1, f.resolver.calls)
}

func TestAssign_NameResolverError(t *testing.T) {
	f := newFixture()
	f.resolver.err = errors.New("rpc down")

	_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: "alice.base"})

	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.Equal(t, "Error resolving Base name", err.(*domain.OperationError).Message)
	assert.Empty(t, f.registry.calls)
}

func TestAssign_NameResolvesToMalformedAddress(t *testing.T) {
	f := newFixture()
	f.board.Replace(map[domain.Role]uint64{domain.RoleMiner: 2})
	f.resolver.names["alice.base"] = "0x1234"

	_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: "alice.base"})

	assert.ErrorIs(t, err, domain.ErrResolution)
	assert.Equal(t, "Failed to resolve Base name to an address", err.(*domain.OperationError).Message)
	assert.Equal(t, uint64(2), f.board.Count(domain.RoleMiner))
	assert.Empty(t, f.registry.calls)
	assert.Equal(t, domain.OutcomeRejected, f.recorder.last(t).Outcome)
}

func TestAssign_NameResolvesToAddress(t *testing.T) {
	f := newFixture()
	f.resolver.names["alice.base"] = strings.ToLower(aliceAddr)

	res, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "REFINER", Identifier: "alice.base"})
	require.NoError(t, err)

	assert.Equal(t, aliceAddr, res.Address)
	assert.Equal(t, "alice.base", res.Identifier)
	assert.Equal(t, "Refiner role assigned successfully to alice.base", res.Message)
	assert.Equal(t, 1, f.resolver.calls)
}

func TestAssign_InvalidInput(t *testing.T) {
	cases := []struct {
		name       string
		role       string
		identifier string
	}{
		{"empty identifier", "MINER", "   "},
		{"garbage identifier", "MINER", "not-an-address"},
		{"short address", "MINER", "0x1234"},
		{"bare suffix", "MINER", ".base"},
		{"name with space", "MINER", "ali ce.base"},
		{"unknown role", "JANITOR", aliceAddr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: tc.role, Identifier: tc.identifier})
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, f.registry.calls)
			assert.Zero(t, f.resolver.calls)
			for _, rc := range f.board.Snapshot() {
				assert.Zero(t, rc.Count)
			}
		})
	}
}

func TestRevoke_RequiresReason(t *testing.T) {
	f := newFixture()
	f.board.Replace(map[domain.Role]uint64{domain.RoleBuyer: 5})

	_, err := f.svc.Revoke(context.Background(), ports.RevokeInput{Role: "BUYER", Identifier: aliceAddr, Reason: "  "})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Please provide a revocation reason", err.(*domain.OperationError).Message)
	assert.Equal(t, uint64(5), f.board.Count(domain.RoleBuyer))
	assert.Empty(t, f.registry.calls)
}

func TestRevoke_NotFoundRollsBack(t *testing.T) {
	f := newFixture()
	f.board.Replace(map[domain.Role]uint64{domain.RoleBuyer: 5})

	_, err := f.svc.Revoke(context.Background(), ports.RevokeInput{Role: "BUYER", Identifier: aliceAddr, Reason: "left"})

	assert.ErrorIs(t, err, domain.ErrRemoteRejected)
	assert.Equal(t, domain.ReasonNotFound, err.(*domain.OperationError).Reason)
	assert.Equal(t, "Buyer role not found for address", err.(*domain.OperationError).Message)
	assert.Equal(t, uint64(5), f.board.Count(domain.RoleBuyer))
}

func TestRevoke_RollbackFromZeroStaysZero(t *testing.T) {
	f := newFixture()
	f.registry.invokeErr = errors.New("boom")

	_, err := f.svc.Revoke(context.Background(), ports.RevokeInput{Role: "INSPECTOR", Identifier: aliceAddr, Reason: "r"})

	assert.ErrorIs(t, err, domain.ErrUnknown)
	assert.Equal(t, uint64(0), f.board.Count(domain.RoleInspector))
}

func TestAssignThenRevoke_RoundTrip(t *testing.T) {
	f := newFixture()
	f.registry.extra[domain.RoleTransporter] = 2
	_, err := f.svc.RefreshCounts(context.Background())
	require.NoError(t, err)

	_, err = f.svc.Assign(context.Background(), ports.AssignInput{Role: "TRANSPORTER", Identifier: bobAddr})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), f.board.Count(domain.RoleTransporter))

	res, err := f.svc.Revoke(context.Background(), ports.RevokeInput{Role: "TRANSPORTER", Identifier: bobAddr, Reason: "contract ended"})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Count)
	assert.Equal(t, "Transporter role revoked successfully from "+bobAddr, res.Message)
	assert.Equal(t, []string{"assignTransporter", "revokeTransporter"}, f.registry.calls)
}

func TestAssign_RejectsConcurrentOperationOnSameRole(t *testing.T) {
	f := newFixture()

	entered := make(chan struct{})
	release := make(chan struct{})
	f.registry.observe = func() {
		close(entered)
		<-release
	}

	errc := make(chan error, 1)
	go func() {
		_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: aliceAddr})
		errc <- err
	}()
	<-entered

	_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: bobAddr})
	assert.ErrorIs(t, err, domain.ErrOperationInFlight)

	f.registry.observe = nil
	// A different role is not blocked.
	_, err = f.svc.Assign(context.Background(), ports.AssignInput{Role: "BUYER", Identifier: bobAddr})
	assert.NoError(t, err)

	close(release)
	require.NoError(t, <-errc)

	// Flag cleared once the first operation finished.
	_, err = f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: bobAddr})
	assert.NoError(t, err)
}

func TestAssign_ReconcilesWithRegistry(t *testing.T) {
	f := newFixture()
	f.board.Replace(map[domain.Role]uint64{domain.RoleMiner: 3})
	// The registry really has 9 members; the confirmed value wins.
	f.registry.extra[domain.RoleMiner] = 8

	res, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: aliceAddr})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), res.OptimisticCount)
	assert.Equal(t, uint64(9), res.Count)
}

func TestAssign_RollbackSurvivesConcurrentRefresh(t *testing.T) {
	f := newFixture()
	f.registry.extra[domain.RoleMiner] = 3
	f.board.Replace(map[domain.Role]uint64{domain.RoleMiner: 3})
	f.registry.invokeErr = errors.New("User rejected the request")

	entered := make(chan struct{})
	release := make(chan struct{})
	f.registry.observe = func() {
		close(entered)
		<-release
	}

	errc := make(chan error, 1)
	go func() {
		_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: aliceAddr})
		errc <- err
	}()
	<-entered

	_, err := f.svc.RefreshCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(4), f.board.Count(domain.RoleMiner), "refresh must not touch a role in flight")

	close(release)
	assert.ErrorIs(t, <-errc, domain.ErrUserCancelled)
	assert.Equal(t, uint64(3), f.board.Count(domain.RoleMiner))
}

func TestAssign_OtherRoleConfirmationKeepsPendingDelta(t *testing.T) {
	f := newFixture()
	f.registry.extra[domain.RoleMiner] = 3
	f.board.Replace(map[domain.Role]uint64{domain.RoleMiner: 3})

	entered := make(chan struct{})
	release := make(chan struct{})
	var invokes atomic.Int32
	f.registry.observe = func() {
		if invokes.Add(1) == 1 {
			close(entered)
			<-release
		}
	}

	errc := make(chan error, 1)
	go func() {
		_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: aliceAddr})
		errc <- err
	}()
	<-entered

	// Buyer confirms and reconciles every settled role while Miner is pending.
	_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "BUYER", Identifier: bobAddr})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), f.board.Count(domain.RoleBuyer))
	assert.Equal(t, uint64(4), f.board.Count(domain.RoleMiner))

	close(release)
	require.NoError(t, <-errc)
	assert.Equal(t, uint64(4), f.board.Count(domain.RoleMiner))
}

type stubLock struct {
	err      error
	released int
}

func (l *stubLock) Acquire(context.Context, domain.Role) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	return func() { l.released++ }, nil
}

func TestAssign_DistributedLock(t *testing.T) {
	t.Run("held elsewhere", func(t *testing.T) {
		f := newFixture()
		f.svc.lock = &stubLock{err: domain.ErrOperationInFlight}
		_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: aliceAddr})
		assert.ErrorIs(t, err, domain.ErrOperationInFlight)
		assert.Empty(t, f.registry.calls)
	})

	t.Run("lock backend down", func(t *testing.T) {
		f := newFixture()
		f.svc.lock = &stubLock{err: errors.New("connection refused")}
		_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: aliceAddr})
		assert.NoError(t, err)
	})

	t.Run("released", func(t *testing.T) {
		f := newFixture()
		lock := &stubLock{}
		f.svc.lock = lock
		_, err := f.svc.Assign(context.Background(), ports.AssignInput{Role: "MINER", Identifier: aliceAddr})
		require.NoError(t, err)
		assert.Equal(t, 1, lock.released)
	})
}

// ---------------------------------------------------------------------------
// Counts
// ---------------------------------------------------------------------------

func TestRefreshCounts_KeepsPreviousOnPartialFailure(t *testing.T) {
	f := newFixture()
	f.board.Replace(map[domain.Role]uint64{domain.RoleMiner: 7, domain.RoleBuyer: 1})
	f.registry.extra[domain.RoleBuyer] = 4
	f.registry.countErr[domain.RoleMiner] = errors.New("timeout")

	counts, err := f.svc.RefreshCounts(context.Background())
	require.NoError(t, err)

	byRole := map[domain.Role]uint64{}
	for _, c := range counts {
		byRole[c.Role] = c.Count
	}
	assert.Equal(t, uint64(7), byRole[domain.RoleMiner])
	assert.Equal(t, uint64(4), byRole[domain.RoleBuyer])
	assert.Len(t, counts, len(domain.Roles))
}

func TestRefreshCounts_AllFail(t *testing.T) {
	f := newFixture()
	f.board.Replace(map[domain.Role]uint64{domain.RoleMiner: 7})
	f.registry.readErr = errors.New("node offline")

	_, err := f.svc.RefreshCounts(context.Background())
	assert.ErrorIs(t, err, domain.ErrUnknown)
	assert.Equal(t, uint64(7), f.board.Count(domain.RoleMiner))
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

func TestCheckRoles(t *testing.T) {
	f := newFixture()
	f.registry.grant(domain.RoleMiner, aliceAddr)
	f.registry.grant(domain.RoleBuyer, aliceAddr)

	got, err := f.svc.CheckRoles(context.Background(), aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, []string{"MINER", "BUYER"}, got.Roles)

	got, err = f.svc.CheckRoles(context.Background(), bobAddr)
	require.NoError(t, err)
	assert.Empty(t, got.Roles)
	assert.NotNil(t, got.Roles)
}

func TestPortal(t *testing.T) {
	f := newFixture()
	f.registry.admins[strings.ToLower(aliceAddr)] = true
	f.registry.grant(domain.RoleMiner, aliceAddr)
	f.registry.grant(domain.RoleBuyer, bobAddr)
	f.registry.grant(domain.RoleInspector, bobAddr)

	p, err := f.svc.Portal(context.Background(), aliceAddr)
	require.NoError(t, err)
	assert.Equal(t, "/admin", p)

	p, err = f.svc.Portal(context.Background(), bobAddr)
	require.NoError(t, err)
	assert.Equal(t, "/inspector", p, "inspector outranks buyer")

	_, err = f.svc.Portal(context.Background(), "0x0000000000000000000000000000000000000001")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestIsAdmin(t *testing.T) {
	f := newFixture()
	f.registry.admins[strings.ToLower(aliceAddr)] = true

	ok, err := f.svc.IsAdmin(context.Background(), aliceAddr)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = f.svc.IsAdmin(context.Background(), "alice.base")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

type stubOperationRepo struct {
	last  ports.ListOperationsFilter
	items []*domain.RoleOperation
}

func (r *stubOperationRepo) Insert(context.Context, *domain.RoleOperation) error { return nil }

func (r *stubOperationRepo) List(_ context.Context, f ports.ListOperationsFilter) ([]*domain.RoleOperation, int64, error) {
	r.last = f
	return r.items, int64(len(r.items)), nil
}

func TestListOperations_ClampsPaging(t *testing.T) {
	f := newFixture()
	repo := &stubOperationRepo{items: make([]*domain.RoleOperation, 45)}
	f.svc.ops = repo

	res, err := f.svc.ListOperations(context.Background(), ports.ListOperationsFilter{Page: 0, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.last.Page)
	assert.Equal(t, 100, repo.last.Limit)
	assert.Equal(t, 1, res.TotalPages)

	res, err = f.svc.ListOperations(context.Background(), ports.ListOperationsFilter{})
	require.NoError(t, err)
	assert.Equal(t, 20, res.Limit)
	assert.Equal(t, 3, res.TotalPages)
}

func TestListOperations_NoRepository(t *testing.T) {
	f := newFixture()
	_, err := f.svc.ListOperations(context.Background(), ports.ListOperationsFilter{})
	assert.Error(t, err)
}
