package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mineralchain/roles-admin/internal/api/metrics"
	"github.com/mineralchain/roles-admin/internal/core/domain"
	"github.com/mineralchain/roles-admin/internal/core/ports"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

var errOperationsUnavailable = errors.New("operation log is not configured")

// RoleServiceOptions carries the optional collaborators of RoleService.
type RoleServiceOptions struct {
	// NameSuffix is the reserved suffix of resolvable names. Defaults to ".base".
	NameSuffix string
	// Lock extends the per-role in-flight rule across replicas.
	Lock ports.RoleLock
	// Recorder receives every finished operation for auditing.
	Recorder ports.OperationRecorder
	// Operations backs ListOperations.
	Operations ports.OperationRepository
}

// RoleService runs the role assignment and revocation workflow: validate,
// resolve, apply an optimistic count change, call the registry, then either
// reconcile with the registry or roll the change back.
type RoleService struct {
	registry ports.RoleRegistry
	resolver ports.NameResolver
	board    *RoleBoard
	suffix   string
	lock     ports.RoleLock
	recorder ports.OperationRecorder
	ops      ports.OperationRepository
	logger   zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewRoleService(
	registry ports.RoleRegistry,
	resolver ports.NameResolver,
	board *RoleBoard,
	logger zerolog.Logger,
	opts RoleServiceOptions,
) *RoleService {
	if board == nil {
		board = NewRoleBoard()
	}
	suffix := opts.NameSuffix
	if suffix == "" {
		suffix = domain.DefaultNameSuffix
	}
	return &RoleService{
		registry: registry,
		resolver: resolver,
		board:    board,
		suffix:   suffix,
		lock:     opts.Lock,
		recorder: opts.Recorder,
		ops:      opts.Operations,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    func() string { return uuid.NewString() },
	}
}

// change is the normalized input shared by Assign and Revoke.
type change struct {
	kind       domain.OperationKind
	role       string
	identifier string
	reason     string
	actor      string
}

// Assign grants a role to an address or resolvable name.
func (s *RoleService) Assign(ctx context.Context, in ports.AssignInput) (*ports.RoleChangeResult, error) {
	return s.run(ctx, change{
		kind:       domain.OpAssign,
		role:       in.Role,
		identifier: in.Identifier,
		actor:      in.Actor,
	})
}

// Revoke removes a role from an address or resolvable name. A non-empty
// reason is required.
func (s *RoleService) Revoke(ctx context.Context, in ports.RevokeInput) (*ports.RoleChangeResult, error) {
	return s.run(ctx, change{
		kind:       domain.OpRevoke,
		role:       in.Role,
		identifier: in.Identifier,
		reason:     in.Reason,
		actor:      in.Actor,
	})
}

func (s *RoleService) run(ctx context.Context, c change) (*ports.RoleChangeResult, error) {
	started := s.now()

	// 1. Validate input before touching any state.
	role, ok := domain.ParseRole(c.role)
	if !ok {
		return nil, domain.NewValidationError(fmt.Sprintf("Unknown role %q", c.role))
	}
	identifier := strings.TrimSpace(c.identifier)
	if identifier == "" {
		return nil, domain.NewValidationError("Please enter a valid Ethereum address or Base name")
	}
	reason := strings.TrimSpace(c.reason)
	if c.kind == domain.OpRevoke && reason == "" {
		return nil, domain.NewValidationError("Please provide a revocation reason")
	}

	// 2. One operation per role at a time.
	done, ok := s.board.Begin(role)
	if !ok {
		return nil, &domain.OperationError{
			Kind:    domain.ErrOperationInFlight,
			Message: fmt.Sprintf("Another %s operation is already in progress", role.Title()),
		}
	}
	defer done()
	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, role)
		switch {
		case errors.Is(err, domain.ErrOperationInFlight):
			return nil, &domain.OperationError{
				Kind:    domain.ErrOperationInFlight,
				Message: fmt.Sprintf("Another %s operation is already in progress", role.Title()),
				Err:     err,
			}
		case err != nil:
			s.logger.Warn().Err(err).Str("role", string(role)).Msg("role lock unavailable, relying on local flag")
		default:
			defer release()
		}
	}

	op := domain.RoleOperation{
		ID:         s.newID(),
		Kind:       c.kind,
		Role:       role,
		Identifier: identifier,
		Reason:     reason,
		Actor:      c.actor,
		StartedAt:  started,
	}
	log := s.logger.With().
		Str("op_id", op.ID).
		Str("op", string(c.kind)).
		Str("role", string(role)).
		Str("identifier", identifier).
		Logger()

	// 3. Classify and resolve. No optimistic change happens before this succeeds.
	address, err := s.resolve(ctx, identifier)
	if err != nil {
		s.finish(&op, domain.OutcomeRejected, err, "")
		log.Info().Err(err).Msg("role operation rejected")
		return nil, err
	}
	op.Address = address
	log = log.With().Str("address", address).Logger()

	// 4. Optimistic update.
	delta := int64(1)
	function := role.AssignFunction()
	args := []any{common.HexToAddress(address)}
	if c.kind == domain.OpRevoke {
		delta = -1
		function = role.RevokeFunction()
		args = append(args, reason)
	}
	applied, optimistic := s.board.Adjust(role, delta)
	s.publishCount(role)

	// 5. Remote state-changing call.
	callStart := time.Now()
	tx, err := s.registry.Invoke(ctx, function, args...)
	metrics.RemoteCallDuration.WithLabelValues(function).Observe(time.Since(callStart).Seconds())

	if err != nil {
		// 6. Compensate: undo exactly what was applied.
		s.board.Adjust(role, -applied)
		s.publishCount(role)
		metrics.RollbacksTotal.WithLabelValues(string(c.kind), string(role)).Inc()

		opErr := classifyRemote(c.kind, role, err)
		s.finish(&op, domain.OutcomeRolledBack, opErr, "")
		log.Warn().Err(err).Str("kind", domain.ErrorKind(opErr)).Msg("role operation failed, optimistic count rolled back")
		return nil, opErr
	}

	// 7. Commit and reconcile with the registry.
	verb := "assigned successfully to"
	if c.kind == domain.OpRevoke {
		verb = "revoked successfully from"
	}
	message := fmt.Sprintf("%s role %s %s", role.Title(), verb, identifier)
	op.Message = message

	if _, err := s.refreshCounts(ctx, role); err != nil {
		log.Warn().Err(err).Msg("count reconciliation failed, keeping optimistic counts")
	}

	s.finish(&op, domain.OutcomeConfirmed, nil, tx.Hash)
	log.Info().Str("tx", tx.Hash).Msg(message)

	return &ports.RoleChangeResult{
		OperationID:     op.ID,
		Kind:            c.kind,
		Role:            role,
		Identifier:      identifier,
		Address:         address,
		Tx:              *tx,
		OptimisticCount: optimistic,
		Count:           s.board.Count(role),
		ClearInput:      true,
		Message:         message,
	}, nil
}

// resolve classifies raw and returns the canonical address it designates.
func (s *RoleService) resolve(ctx context.Context, raw string) (string, error) {
	switch domain.Classify(raw, s.suffix) {
	case domain.KindAddress:
		return domain.CanonicalAddress(raw), nil
	case domain.KindName:
		addr, err := s.resolver.ResolveName(ctx, raw)
		if err != nil {
			metrics.NameResolutionsTotal.WithLabelValues("error").Inc()
			return "", domain.NewResolutionError("Error resolving Base name", err)
		}
		addr = strings.TrimSpace(addr)
		if domain.IsZeroAddress(addr) {
			metrics.NameResolutionsTotal.WithLabelValues("not_registered").Inc()
			return "", domain.NewResolutionError("Base name not found or not registered", nil)
		}
		if !domain.IsAddress(addr) {
			metrics.NameResolutionsTotal.WithLabelValues("invalid").Inc()
			return "", domain.NewResolutionError("Failed to resolve Base name to an address", nil)
		}
		metrics.NameResolutionsTotal.WithLabelValues("ok").Inc()
		return domain.CanonicalAddress(addr), nil
	default:
		return "", domain.NewValidationError("Please enter a valid Ethereum address or Base name")
	}
}

// finish stamps op and hands it to the recorder.
func (s *RoleService) finish(op *domain.RoleOperation, outcome domain.OperationOutcome, err error, txHash string) {
	op.Outcome = outcome
	op.TxHash = txHash
	op.FinishedAt = s.now()
	if err != nil {
		op.ErrorKind = domain.ErrorKind(err)
		var opErr *domain.OperationError
		if errors.As(err, &opErr) {
			op.Message = opErr.Message
		} else {
			op.Message = err.Error()
		}
	}
	metrics.OperationsTotal.WithLabelValues(string(op.Kind), string(op.Role), string(outcome)).Inc()
	if s.recorder != nil {
		s.recorder.Record(*op)
	}
}

func (s *RoleService) publishCount(role domain.Role) {
	metrics.RoleCount.WithLabelValues(string(role)).Set(float64(s.board.Count(role)))
}

// Counts returns the local role counts.
func (s *RoleService) Counts() []domain.RoleCount {
	return s.board.Snapshot()
}

// RefreshCounts reads every role's member count from the registry. A role
// whose read fails keeps its previous value; an error is returned only when
// every read failed. Roles with an operation in flight keep their local count.
func (s *RoleService) RefreshCounts(ctx context.Context) ([]domain.RoleCount, error) {
	return s.refreshCounts(ctx, "")
}

// refreshCounts is RefreshCounts run by the holder of owner's in-flight flag,
// which commits the fresh count of owner as well.
func (s *RoleService) refreshCounts(ctx context.Context, owner domain.Role) ([]domain.RoleCount, error) {
	type result struct {
		count uint64
		err   error
	}
	results := make([]result, len(domain.Roles))

	var wg sync.WaitGroup
	for i, r := range domain.Roles {
		wg.Add(1)
		go func(i int, r domain.Role) {
			defer wg.Done()
			n, err := s.registry.RoleMemberCount(ctx, r.ID())
			results[i] = result{count: n, err: err}
		}(i, r)
	}
	wg.Wait()

	fresh := make(map[domain.Role]uint64, len(domain.Roles))
	var errs []error
	for i, r := range domain.Roles {
		if results[i].err != nil {
			s.logger.Warn().Err(results[i].err).Str("role", string(r)).Msg("failed to fetch role member count")
			errs = append(errs, fmt.Errorf("%s: %w", r, results[i].err))
			continue
		}
		fresh[r] = results[i].count
	}
	if n, ok := fresh[owner]; ok {
		s.board.Set(owner, n)
	}
	s.board.Replace(fresh)
	for r := range fresh {
		s.publishCount(r)
	}

	if len(errs) == len(domain.Roles) {
		return s.board.Snapshot(), readError("Failed to fetch role counts", errors.Join(errs...))
	}
	return s.board.Snapshot(), nil
}

// CheckRoles resolves identifier and lists the roles it holds.
func (s *RoleService) CheckRoles(ctx context.Context, identifier string) (*ports.PrincipalRoles, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, domain.NewValidationError("Please enter a valid Ethereum address or Base name")
	}
	address, err := s.resolve(ctx, identifier)
	if err != nil {
		return nil, err
	}
	roles, err := s.registry.RolesForAddress(ctx, address)
	if err != nil {
		return nil, readError("Failed to fetch roles for address", err)
	}
	if roles == nil {
		roles = []string{}
	}
	return &ports.PrincipalRoles{Identifier: identifier, Address: address, Roles: roles}, nil
}

// Portal returns the landing route for the wallet designated by identifier.
func (s *RoleService) Portal(ctx context.Context, identifier string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", domain.NewValidationError("Please enter a valid Ethereum address or Base name")
	}
	address, err := s.resolve(ctx, identifier)
	if err != nil {
		return "", err
	}

	isAdmin, err := s.registry.HasAdminRole(ctx, address)
	if err != nil {
		return "", readError("Failed to check wallet roles", err)
	}
	if isAdmin {
		return domain.PortalAdmin, nil
	}
	for _, r := range domain.PortalOrder {
		has, err := s.registry.HasRole(ctx, r, address)
		if err != nil {
			return "", readError("Failed to check wallet roles", err)
		}
		if has {
			return r.Portal(), nil
		}
	}
	return "", fmt.Errorf("%w: connected wallet doesn't have any assigned roles", domain.ErrForbidden)
}

// IsAdmin reports whether address holds the registry's admin role.
func (s *RoleService) IsAdmin(ctx context.Context, address string) (bool, error) {
	address = strings.TrimSpace(address)
	if !domain.IsAddress(address) {
		return false, domain.NewValidationError("Invalid wallet address")
	}
	ok, err := s.registry.HasAdminRole(ctx, address)
	if err != nil {
		return false, readError("Failed to check admin role", err)
	}
	return ok, nil
}

// ListOperations returns a page of the audit log, newest first.
func (s *RoleService) ListOperations(ctx context.Context, f ports.ListOperationsFilter) (*ports.ListOperationsResult, error) {
	if s.ops == nil {
		return nil, errOperationsUnavailable
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}

	items, total, err := s.ops.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}

	pages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &ports.ListOperationsResult{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: pages,
	}, nil
}
