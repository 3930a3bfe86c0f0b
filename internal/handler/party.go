package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/mkarayel/loan-ledger/internal/domain"
	"github.com/mkarayel/loan-ledger/internal/service"
	"github.com/mkarayel/loan-ledger/pkg/response"
)

type PartyHandler struct {
	service   *service.PartyService
	validator *validator.Validate
}

func NewPartyHandler(service *service.PartyService) *PartyHandler {
	return &PartyHandler{
		service:   service,
		validator: NewValidator(),
	}
}

func (h *PartyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePartyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	party, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Created(w, party)
}

func (h *PartyHandler) List(w http.ResponseWriter, r *http.Request) {
	parties, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, parties)
}

func (h *PartyHandler) Get(w http.ResponseWriter, r *http.Request) {
	partyID, err := pathUUID(r, "partyId")
	if err != nil {
		writeError(w, err)
		return
	}

	party, err := h.service.Get(r.Context(), partyID)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, party)
}

func (h *PartyHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	partyID, err := pathUUID(r, "partyId")
	if err != nil {
		writeError(w, err)
		return
	}

	var req domain.UpdatePartyContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}

	party, err := h.service.UpdateContact(r.Context(), partyID, &req)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, party)
}
