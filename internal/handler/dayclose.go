package handler

import (
	"encoding/json"
	"net/http"

	"github.com/mkarayel/loan-ledger/internal/domain"
	"github.com/mkarayel/loan-ledger/internal/service"
	"github.com/mkarayel/loan-ledger/pkg/response"
)

type DayCloseHandler struct {
	service *service.DayCloseService
}

func NewDayCloseHandler(service *service.DayCloseService) *DayCloseHandler {
	return &DayCloseHandler{service: service}
}

func (h *DayCloseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDayCloseRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.BadRequest(w, "invalid request body", err)
			return
		}
	}

	dc, err := h.service.Close(r.Context(), req.Note)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, dc)
}

func (h *DayCloseHandler) Latest(w http.ResponseWriter, r *http.Request) {
	dc, err := h.service.Latest(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if dc == nil {
		response.NotFound(w, "no day close recorded yet")
		return
	}

	response.Success(w, dc)
}
