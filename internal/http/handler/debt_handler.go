package handler

import (
	"fmt"
	"net/http"

	"github.com/sandeepkv93/debt-ledger-service/internal/http/response"
	"github.com/sandeepkv93/debt-ledger-service/internal/observability"
	"github.com/sandeepkv93/debt-ledger-service/internal/service"
)

type DebtHandler struct {
	debts      service.DebtServiceInterface
	statements service.StatementServiceInterface
}

// NewDebtHandler wires the debt endpoints. statements may be nil when
// object storage is disabled.
func NewDebtHandler(debts service.DebtServiceInterface, statements service.StatementServiceInterface) *DebtHandler {
	return &DebtHandler{debts: debts, statements: statements}
}

type createDebtRequest struct {
	ContactID   uint    `json:"contact_id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	IsMyDebt    bool    `json:"is_my_debt"`
}

type updateDebtRequest struct {
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
	IsPaid      *bool    `json:"is_paid"`
	IsMyDebt    *bool    `json:"is_my_debt"`
}

func (h *DebtHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	var req createDebtRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	debt, err := h.debts.Create(r.Context(), uid, service.DebtInput{
		ContactID:   req.ContactID,
		Amount:      req.Amount,
		Description: req.Description,
		IsMyDebt:    req.IsMyDebt,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to create debt")
		return
	}
	response.JSON(w, r, http.StatusCreated, "Debt created successfully", debt)
}

func (h *DebtHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	filter, err := parseDebtFilter(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	page, err := parsePageRequest(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	res, err := h.debts.List(r.Context(), uid, filter, page)
	if err != nil {
		writeServiceError(w, r, err, "failed to list debts")
		return
	}
	data := paginatedData("debts", res, map[string]any{
		"filters": map[string]any{
			"is_paid":    filter.IsPaid,
			"is_my_debt": filter.IsMyDebt,
			"contact_id": filter.ContactID,
		},
	})
	response.JSON(w, r, http.StatusOK, fmt.Sprintf("Retrieved %d debts", len(res.Items)), data)
}

func (h *DebtHandler) Overview(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	overview, err := h.debts.Overview(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err, "failed to load overview")
		return
	}
	response.JSON(w, r, http.StatusOK, "Debt overview retrieved successfully", overview)
}

func (h *DebtHandler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debt")
	if !ok {
		return
	}
	debt, err := h.debts.Get(r.Context(), uid, id)
	if err != nil {
		writeServiceError(w, r, err, "failed to load debt")
		return
	}
	response.JSON(w, r, http.StatusOK, "Debt retrieved successfully", debt)
}

func (h *DebtHandler) Update(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debt")
	if !ok {
		return
	}
	var req updateDebtRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, r, err.Error())
		return
	}
	debt, err := h.debts.Update(r.Context(), uid, id, service.DebtPatch{
		Amount:      req.Amount,
		Description: req.Description,
		IsPaid:      req.IsPaid,
		IsMyDebt:    req.IsMyDebt,
	})
	if err != nil {
		writeServiceError(w, r, err, "failed to update debt")
		return
	}
	response.JSON(w, r, http.StatusOK, "Debt updated successfully", debt)
}

func (h *DebtHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debt")
	if !ok {
		return
	}
	debt, err := h.debts.MarkPaid(r.Context(), uid, id)
	if err != nil {
		writeServiceError(w, r, err, "failed to mark debt as paid")
		return
	}
	response.JSON(w, r, http.StatusOK, "Debt marked as paid", debt)
}

func (h *DebtHandler) Delete(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "debt")
	if !ok {
		return
	}
	debt, err := h.debts.Get(r.Context(), uid, id)
	if err != nil {
		writeServiceError(w, r, err, "failed to delete debt")
		return
	}
	if err := h.debts.Delete(r.Context(), uid, id); err != nil {
		writeServiceError(w, r, err, "failed to delete debt")
		return
	}
	response.JSON(w, r, http.StatusOK, "Debt deleted successfully", map[string]any{"deleted_debt": debt})
}

func (h *DebtHandler) ExportStatement(w http.ResponseWriter, r *http.Request) {
	uid, ok := currentUserID(w, r)
	if !ok {
		return
	}
	if h.statements == nil {
		writeServiceError(w, r, service.ErrStorageDisabled, "statement export unavailable")
		return
	}
	filter, err := parseDebtFilter(r)
	if err != nil {
		badRequest(w, r, err.Error())
		return
	}
	stmt, err := h.statements.Generate(r.Context(), uid, filter)
	if err != nil {
		writeServiceError(w, r, err, "failed to export statement")
		return
	}
	observability.Audit(r, "ledger.statement.success", "user_id", uid, "object_key", stmt.ObjectKey)
	response.JSON(w, r, http.StatusCreated, "Statement generated successfully", stmt)
}
