package domain

import "time"

// OperationKind distinguishes grants from revocations.
type OperationKind string

const (
	OpAssign OperationKind = "assign"
	OpRevoke OperationKind = "revoke"
)

// OperationOutcome is the final state of a role operation.
type OperationOutcome string

const (
	// OutcomeConfirmed: the remote call succeeded.
	OutcomeConfirmed OperationOutcome = "confirmed"
	// OutcomeRolledBack: the optimistic change was applied and then reverted.
	OutcomeRolledBack OperationOutcome = "rolled_back"
	// OutcomeRejected: the operation failed before any optimistic change.
	OutcomeRejected OperationOutcome = "rejected"
)

// TxResult is what a confirmed remote state-changing call returns.
type TxResult struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}

// RoleOperation is the audit record of one assign or revoke attempt.
type RoleOperation struct {
	ID         string           `json:"id" bson:"_id"`
	Kind       OperationKind    `json:"kind" bson:"kind"`
	Role       Role             `json:"role" bson:"role"`
	Identifier string           `json:"identifier" bson:"identifier"`
	Address    string           `json:"address,omitempty" bson:"address,omitempty"`
	Reason     string           `json:"reason,omitempty" bson:"reason,omitempty"`
	Actor      string           `json:"actor,omitempty" bson:"actor,omitempty"`
	Outcome    OperationOutcome `json:"outcome" bson:"outcome"`
	ErrorKind  string           `json:"error_kind,omitempty" bson:"error_kind,omitempty"`
	Message    string           `json:"message" bson:"message"`
	TxHash     string           `json:"tx_hash,omitempty" bson:"tx_hash,omitempty"`
	StartedAt  time.Time        `json:"started_at" bson:"started_at"`
	FinishedAt time.Time        `json:"finished_at" bson:"finished_at"`
}
