package handler

import (
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter mounts all API routes.
func NewRouter(
	ledger *LedgerHandler,
	party *PartyHandler,
	recycle *RecycleHandler,
	dayClose *DayCloseHandler,
	health *HealthHandler,
	logger *zap.Logger,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(RequestLogging(logger))

	router.HandleFunc("/health", health.Health).Methods("GET")
	router.HandleFunc("/health/ready", health.Ready).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/parties", party.Create).Methods("POST")
	api.HandleFunc("/parties", party.List).Methods("GET")
	api.HandleFunc("/parties/{partyId}", party.Get).Methods("GET")
	api.HandleFunc("/parties/{partyId}", party.UpdateContact).Methods("PUT")

	api.HandleFunc("/loans", ledger.CreateLoan).Methods("POST")
	api.HandleFunc("/loans", ledger.ListLoans).Methods("GET")
	api.HandleFunc("/loans/{loanId}", ledger.GetLoan).Methods("GET")
	api.HandleFunc("/loans/{loanId}/entries", ledger.PostEntry).Methods("POST")
	api.HandleFunc("/loans/{loanId}/entries", ledger.ListEntries).Methods("GET")
	api.HandleFunc("/loans/{loanId}/preview", ledger.Preview).Methods("GET")
	api.HandleFunc("/loans/{loanId}/audit", ledger.Audit).Methods("GET")

	api.HandleFunc("/loans/{loanId}", recycle.DeleteLoan).Methods("DELETE")
	api.HandleFunc("/loans/{loanId}/restore", recycle.RestoreLoan).Methods("POST")
	api.HandleFunc("/loans/{loanId}/permanent", recycle.PurgeLoan).Methods("DELETE")
	api.HandleFunc("/entries/{entryId}", recycle.DeleteEntry).Methods("DELETE")
	api.HandleFunc("/entries/{entryId}/restore", recycle.RestoreEntry).Methods("POST")
	api.HandleFunc("/entries/{entryId}/permanent", recycle.PurgeEntry).Methods("DELETE")
	api.HandleFunc("/bin/loans", recycle.ListBinLoans).Methods("GET")
	api.HandleFunc("/bin/entries", recycle.ListBinEntries).Methods("GET")
	api.HandleFunc("/bin", recycle.EmptyBin).Methods("DELETE")

	api.HandleFunc("/day-closes", dayClose.Create).Methods("POST")
	api.HandleFunc("/day-closes/latest", dayClose.Latest).Methods("GET")

	return router
}
