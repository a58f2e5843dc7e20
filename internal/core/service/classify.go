package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

type remoteRule struct {
	needles []string
	kind    error
	reason  string
}

// remoteRules are matched in order against the decoded error code first and
// the lower-cased error text second.
var remoteRules = []remoteRule{
	{needles: []string{"user rejected", "user denied"}, kind: domain.ErrUserCancelled},
	{needles: []string{"caller is missing role", "accesscontrolunauthorizedaccount", "unauthorized", "missingrole", "notadmin"}, kind: domain.ErrUnauthorized},
	{needles: []string{"notfound", "not found", "doesnothaverole", "notassigned"}, kind: domain.ErrRemoteRejected, reason: domain.ReasonNotFound},
	{needles: []string{"already"}, kind: domain.ErrRemoteRejected, reason: domain.ReasonAlreadyAssigned},
}

func matchRule(text string) (remoteRule, bool) {
	text = strings.ToLower(text)
	for _, r := range remoteRules {
		for _, n := range r.needles {
			if strings.Contains(text, n) {
				return r, true
			}
		}
	}
	return remoteRule{}, false
}

// classifyRemote turns a failed remote call into the workflow taxonomy.
func classifyRemote(kind domain.OperationKind, role domain.Role, err error) *domain.OperationError {
	if errors.Is(err, context.Canceled) {
		return &domain.OperationError{Kind: domain.ErrUserCancelled, Message: "Operation cancelled before confirmation", Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.OperationError{Kind: domain.ErrUnknown, Message: "Timed out waiting for transaction confirmation", Err: err}
	}

	rule, ok := remoteRule{}, false
	var re *domain.RemoteError
	if errors.As(err, &re) && re.Code != "" {
		rule, ok = matchRule(re.Code)
	}
	if !ok {
		rule, ok = matchRule(err.Error())
	}
	if !ok {
		return &domain.OperationError{Kind: domain.ErrUnknown, Message: fmt.Sprintf("Failed to %s role", kind), Err: err}
	}
	return &domain.OperationError{
		Kind:    rule.kind,
		Reason:  rule.reason,
		Message: remoteMessage(rule, kind, role),
		Err:     err,
	}
}

func remoteMessage(r remoteRule, kind domain.OperationKind, role domain.Role) string {
	switch {
	case r.kind == domain.ErrUserCancelled:
		return "Transaction rejected by user"
	case r.kind == domain.ErrUnauthorized:
		return "Caller lacks admin privileges"
	case r.reason == domain.ReasonNotFound && kind == domain.OpRevoke:
		return fmt.Sprintf("%s role not found for address", role.Title())
	case r.reason == domain.ReasonNotFound:
		return "Address or name not found"
	case kind == domain.OpRevoke:
		return fmt.Sprintf("%s role already revoked for address", role.Title())
	default:
		return fmt.Sprintf("%s role already assigned to address", role.Title())
	}
}

// readError wraps a failed remote read.
func readError(msg string, err error) *domain.OperationError {
	if errors.Is(err, context.Canceled) {
		return &domain.OperationError{Kind: domain.ErrUserCancelled, Message: msg, Err: err}
	}
	return &domain.OperationError{Kind: domain.ErrUnknown, Message: msg, Err: err}
}
