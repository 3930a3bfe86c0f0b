package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mkarayel/loan-ledger/internal/domain"
	"github.com/mkarayel/loan-ledger/internal/service"
	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
	"github.com/mkarayel/loan-ledger/pkg/response"
)

type LedgerHandler struct {
	service   *service.LedgerService
	validator *validator.Validate
}

func NewLedgerHandler(service *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		service:   service,
		validator: NewValidator(),
	}
}

func (h *LedgerHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	loan, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, loan)
}

func (h *LedgerHandler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListLoans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *LedgerHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, err)
		return
	}

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loan)
}

func (h *LedgerHandler) PostEntry(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, err)
		return
	}

	var req domain.PostEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	entry, err := h.service.PostEntry(r.Context(), loanID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, entry)
}

func (h *LedgerHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.service.ListEntries(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, entries)
}

func (h *LedgerHandler) Preview(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, err)
		return
	}

	preview, err := h.service.Preview(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, preview)
}

func (h *LedgerHandler) Audit(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, err)
		return
	}

	audit, err := h.service.Audit(r.Context(), loanID)
	if err != nil {
		// An inconsistent loan still returns the replay details so the
		// operator can see both sides of the mismatch.
		var be *apperrors.BusinessError
		if audit != nil && errors.As(err, &be) && be.Code == apperrors.ErrCodeIntegrity {
			response.ErrorWithCode(w, http.StatusInternalServerError, be.Code, be.Message, nil, audit)
			return
		}
		writeError(w, err)
		return
	}

	response.Success(w, audit)
}
