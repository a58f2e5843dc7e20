package handler

import (
	"time"

	"github.com/mineralchain/roles-admin/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// --- Request types ---

type assignRequest struct {
	Identifier string `json:"identifier" validate:"required,max=256"`
}

type revokeRequest struct {
	Identifier string `json:"identifier" validate:"required,max=256"`
	Reason     string `json:"reason"     validate:"required,max=500"`
}

type listOperationsQuery struct {
	Kind  string `query:"kind"  validate:"omitempty,oneof=assign revoke"`
	Role  string `query:"role"`
	Page  int    `query:"page"  validate:"omitempty,min=1"`
	Limit int    `query:"limit" validate:"omitempty,min=1"`
}

// --- Response types ---

type txResponse struct {
	Hash        string `json:"hash"`
	BlockNumber uint64 `json:"block_number"`
	GasUsed     uint64 `json:"gas_used"`
}

type roleChangeResponse struct {
	OperationID     string     `json:"operation_id"`
	Operation       string     `json:"operation"`
	Role            string     `json:"role"`
	Identifier      string     `json:"identifier"`
	Address         string     `json:"address"`
	Message         string     `json:"message"`
	Count           uint64     `json:"count"`
	OptimisticCount uint64     `json:"optimistic_count"`
	ClearInput      bool       `json:"clear_input"`
	Transaction     txResponse `json:"transaction"`
	Links           roleLinks  `json:"_links"`
}

type roleLinks struct {
	Counts     string `json:"counts"`
	Operations string `json:"operations"`
}

type roleCountsResponse struct {
	Roles []domain.RoleCount `json:"roles"`
}

type principalRolesResponse struct {
	Identifier string   `json:"identifier"`
	Address    string   `json:"address"`
	Roles      []string `json:"roles"`
}

type portalResponse struct {
	Identifier string `json:"identifier"`
	Portal     string `json:"portal"`
}

type operationItem struct {
	ID         string    `json:"id"`
	Operation  string    `json:"operation"`
	Role       string    `json:"role"`
	Identifier string    `json:"identifier"`
	Address    string    `json:"address,omitempty"`
	Reason     string    `json:"reason,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	Outcome    string    `json:"outcome"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	Message    string    `json:"message"`
	TxHash     string    `json:"tx_hash,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

type listOperationsResponse struct {
	Data       []operationItem `json:"data"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int64           `json:"total"`
	TotalPages int             `json:"total_pages"`
}
