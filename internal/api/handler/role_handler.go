package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mineralchain/roles-admin/internal/core/domain"
	"github.com/mineralchain/roles-admin/internal/core/ports"
)

// RoleHandler exposes the role administration workflow over HTTP. Failures
// are returned to the central error handler, which maps them to status codes.
type RoleHandler struct {
	service ports.RoleService
}

func NewRoleHandler(service ports.RoleService) *RoleHandler {
	return &RoleHandler{service: service}
}

// Assign handles POST /v1/roles/:role/assign.
//
// @Summary      Assign a role
// @Description  Grants the role to an address or registered name. The local count is raised before the transaction is sent and rolled back if it fails.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string         true  "Role (MINER, REFINER, TRANSPORTER, AUDITOR, INSPECTOR, BUYER)"
// @Param        body  body      assignRequest  true  "Target address or name"
// @Success      200   {object}  roleChangeResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/roles/{role}/assign [post]
func (h *RoleHandler) Assign(c echo.Context) error {
	var req assignRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return domain.NewValidationError(err.Error())
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	res, err := h.service.Assign(c.Request().Context(), ports.AssignInput{
		Role:       c.Param("role"),
		Identifier: req.Identifier,
		Actor:      actor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleChangeResponse(res))
}

// Revoke handles POST /v1/roles/:role/revoke.
//
// @Summary      Revoke a role
// @Description  Removes the role from an address or registered name. A reason is required.
// @Tags         roles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        role  path      string         true  "Role (MINER, REFINER, TRANSPORTER, AUDITOR, INSPECTOR, BUYER)"
// @Param        body  body      revokeRequest  true  "Target and revocation reason"
// @Success      200   {object}  roleChangeResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /v1/roles/{role}/revoke [post]
func (h *RoleHandler) Revoke(c echo.Context) error {
	var req revokeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return domain.NewValidationError(err.Error())
	}
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}

	res, err := h.service.Revoke(c.Request().Context(), ports.RevokeInput{
		Role:       c.Param("role"),
		Identifier: req.Identifier,
		Reason:     req.Reason,
		Actor:      actor,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleChangeResponse(res))
}

// Counts handles GET /v1/roles/counts.
//
// @Summary      Local role counts
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  roleCountsResponse
// @Router       /v1/roles/counts [get]
func (h *RoleHandler) Counts(c echo.Context) error {
	return c.JSON(http.StatusOK, roleCountsResponse{Roles: h.service.Counts()})
}

// RefreshCounts handles POST /v1/roles/counts/refresh.
//
// @Summary      Re-read role counts from the registry
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  roleCountsResponse
// @Failure      502  {object}  errorResponse
// @Router       /v1/roles/counts/refresh [post]
func (h *RoleHandler) RefreshCounts(c echo.Context) error {
	counts, err := h.service.RefreshCounts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roleCountsResponse{Roles: counts})
}

// CheckRoles handles GET /v1/principals/:identifier/roles.
//
// @Summary      Roles held by an address or name
// @Tags         principals
// @Produce      json
// @Security     BearerAuth
// @Param        identifier  path      string  true  "Address or registered name"
// @Success      200         {object}  principalRolesResponse
// @Failure      400         {object}  errorResponse
// @Failure      422         {object}  errorResponse
// @Router       /v1/principals/{identifier}/roles [get]
func (h *RoleHandler) CheckRoles(c echo.Context) error {
	res, err := h.service.CheckRoles(c.Request().Context(), c.Param("identifier"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, principalRolesResponse{
		Identifier: res.Identifier,
		Address:    res.Address,
		Roles:      res.Roles,
	})
}

// Portal handles GET /v1/principals/:identifier/portal.
//
// @Summary      Landing portal for a wallet
// @Tags         principals
// @Produce      json
// @Security     BearerAuth
// @Param        identifier  path      string  true  "Address or registered name"
// @Success      200         {object}  portalResponse
// @Failure      403         {object}  errorResponse
// @Router       /v1/principals/{identifier}/portal [get]
func (h *RoleHandler) Portal(c echo.Context) error {
	identifier := c.Param("identifier")
	portal, err := h.service.Portal(c.Request().Context(), identifier)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, portalResponse{Identifier: identifier, Portal: portal})
}

// ListOperations handles GET /v1/roles/operations.
//
// @Summary      Role operation history
// @Tags         roles
// @Produce      json
// @Security     BearerAuth
// @Param        kind   query     string  false  "assign or revoke"
// @Param        role   query     string  false  "Role filter"
// @Param        page   query     int     false  "Page (default 1)"
// @Param        limit  query     int     false  "Page size (default 20, max 100)"
// @Success      200    {object}  listOperationsResponse
// @Failure      400    {object}  errorResponse
// @Router       /v1/roles/operations [get]
func (h *RoleHandler) ListOperations(c echo.Context) error {
	var q listOperationsQuery
	if err := c.Bind(&q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query")
	}
	if err := c.Validate(&q); err != nil {
		return domain.NewValidationError(err.Error())
	}

	filter := ports.ListOperationsFilter{
		Kind:  domain.OperationKind(q.Kind),
		Page:  q.Page,
		Limit: q.Limit,
	}
	if q.Role != "" {
		role, ok := domain.ParseRole(q.Role)
		if !ok {
			return domain.NewValidationError("role must be one of: MINER REFINER TRANSPORTER AUDITOR INSPECTOR BUYER")
		}
		filter.Role = role
	}

	res, err := h.service.ListOperations(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	items := make([]operationItem, 0, len(res.Items))
	for _, op := range res.Items {
		items = append(items, operationItem{
			ID:         op.ID,
			Operation:  string(op.Kind),
			Role:       string(op.Role),
			Identifier: op.Identifier,
			Address:    op.Address,
			Reason:     op.Reason,
			Actor:      op.Actor,
			Outcome:    string(op.Outcome),
			ErrorKind:  op.ErrorKind,
			Message:    op.Message,
			TxHash:     op.TxHash,
			StartedAt:  op.StartedAt,
			FinishedAt: op.FinishedAt,
		})
	}

	return c.JSON(http.StatusOK, listOperationsResponse{
		Data:       items,
		Page:       res.Page,
		Limit:      res.Limit,
		Total:      res.Total,
		TotalPages: res.TotalPages,
	})
}

func toRoleChangeResponse(res *ports.RoleChangeResult) roleChangeResponse {
	return roleChangeResponse{
		OperationID:     res.OperationID,
		Operation:       string(res.Kind),
		Role:            string(res.Role),
		Identifier:      res.Identifier,
		Address:         res.Address,
		Message:         res.Message,
		Count:           res.Count,
		OptimisticCount: res.OptimisticCount,
		ClearInput:      res.ClearInput,
		Transaction: txResponse{
			Hash:        res.Tx.Hash,
			BlockNumber: res.Tx.BlockNumber,
			GasUsed:     res.Tx.GasUsed,
		},
		Links: roleLinks{
			Counts:     "/v1/roles/counts",
			Operations: "/v1/roles/operations?role=" + string(res.Role),
		},
	}
}
