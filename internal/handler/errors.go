package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	apperrors "github.com/mkarayel/loan-ledger/pkg/errors"
	"github.com/mkarayel/loan-ledger/pkg/response"
)

// writeError maps the error taxonomy onto HTTP statuses: validation 400,
// missing or wrong-state rows 404, concurrent conflicts 409 (retryable),
// integrity and storage failures 500.
func writeError(w http.ResponseWriter, err error) {
	var be *apperrors.BusinessError
	if !errors.As(err, &be) {
		response.InternalServerError(w, "internal error", err)
		return
	}

	response.ErrorWithCode(w, statusForCode(be.Code), be.Code, be.Message, nil, nil)
}

func statusForCode(code string) int {
	switch code {
	case apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeLoanNotFound,
		apperrors.ErrCodeEntryNotFound,
		apperrors.ErrCodePartyNotFound,
		apperrors.ErrCodeLoanAlreadyInBin,
		apperrors.ErrCodeLoanNotInBin,
		apperrors.ErrCodeEntryAlreadyInBin,
		apperrors.ErrCodeEntryNotInBin,
		apperrors.ErrCodeLoanInBin:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperrors.WrapValidation(name + " must be a valid UUID")
	}
	return id, nil
}
