package handler

import (
	"net/http"

	"github.com/mkarayel/loan-ledger/internal/service"
	"github.com/mkarayel/loan-ledger/pkg/response"
)

type RecycleHandler struct {
	service *service.RecycleService
}

func NewRecycleHandler(service *service.RecycleService) *RecycleHandler {
	return &RecycleHandler{service: service}
}

func (h *RecycleHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, err)
		return
	}

	counts, err := h.service.DeleteLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, counts)
}

func (h *RecycleHandler) RestoreLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, err)
		return
	}

	counts, err := h.service.RestoreLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, counts)
}

func (h *RecycleHandler) PurgeLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, err)
		return
	}

	counts, err := h.service.PurgeLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, counts)
}

func (h *RecycleHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryId")
	if err != nil {
		writeError(w, err)
		return
	}

	counts, err := h.service.DeleteEntry(r.Context(), entryID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, counts)
}

func (h *RecycleHandler) RestoreEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryId")
	if err != nil {
		writeError(w, err)
		return
	}

	counts, err := h.service.RestoreEntry(r.Context(), entryID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, counts)
}

func (h *RecycleHandler) PurgeEntry(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathUUID(r, "entryId")
	if err != nil {
		writeError(w, err)
		return
	}

	counts, err := h.service.PurgeEntry(r.Context(), entryID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, counts)
}

func (h *RecycleHandler) EmptyBin(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")

	counts, err := h.service.EmptyBin(r.Context(), scope)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, counts)
}

func (h *RecycleHandler) ListBinLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.service.ListBinLoans(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, loans)
}

func (h *RecycleHandler) ListBinEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.ListBinEntries(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, entries)
}
