package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrValidation        = errors.New("validation failed")
	ErrLoanNotFound      = errors.New("loan not found")
	ErrEntryNotFound     = errors.New("entry not found")
	ErrPartyNotFound     = errors.New("party not found")
	ErrLoanAlreadyInBin  = errors.New("loan is already in the recycle bin")
	ErrLoanNotInBin      = errors.New("loan is not in the recycle bin")
	ErrEntryAlreadyInBin = errors.New("entry is already in the recycle bin")
	ErrEntryNotInBin     = errors.New("entry is not in the recycle bin")
	ErrLoanInBin         = errors.New("parent loan is in the recycle bin")
	ErrConflict          = errors.New("concurrent update conflict")
	ErrIntegrity         = errors.New("ledger integrity violated")
)

// BusinessError represents a business logic error
type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

// NewBusinessError creates a new business error
func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeLoanNotFound      = "LOAN_NOT_FOUND"
	ErrCodeEntryNotFound     = "ENTRY_NOT_FOUND"
	ErrCodePartyNotFound     = "PARTY_NOT_FOUND"
	ErrCodeLoanAlreadyInBin  = "LOAN_ALREADY_IN_BIN"
	ErrCodeLoanNotInBin      = "LOAN_NOT_IN_BIN"
	ErrCodeEntryAlreadyInBin = "ENTRY_ALREADY_IN_BIN"
	ErrCodeEntryNotInBin     = "ENTRY_NOT_IN_BIN"
	ErrCodeLoanInBin         = "LOAN_IN_BIN"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeIntegrity         = "INTEGRITY_ERROR"
	ErrCodeDatabaseError     = "DATABASE_ERROR"
	ErrCodeCacheError        = "CACHE_ERROR"
)

// Wrap common errors with business context
func WrapValidation(message string) *BusinessError {
	return NewBusinessError(ErrCodeValidation, message, ErrValidation)
}

func WrapLoanNotFound(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotFound,
		fmt.Sprintf("Loan with ID %s not found", loanID),
		ErrLoanNotFound,
	)
}

func WrapEntryNotFound(entryID string) *BusinessError {
	return NewBusinessError(
		ErrCodeEntryNotFound,
		fmt.Sprintf("Entry with ID %s not found", entryID),
		ErrEntryNotFound,
	)
}

func WrapPartyNotFound(partyID string) *BusinessError {
	return NewBusinessError(
		ErrCodePartyNotFound,
		fmt.Sprintf("Party with ID %s not found", partyID),
		ErrPartyNotFound,
	)
}

func WrapLoanAlreadyInBin(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanAlreadyInBin,
		fmt.Sprintf("Loan with ID %s is already in the recycle bin", loanID),
		ErrLoanAlreadyInBin,
	)
}

func WrapLoanNotInBin(loanID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanNotInBin,
		fmt.Sprintf("Loan with ID %s is not in the recycle bin", loanID),
		ErrLoanNotInBin,
	)
}

func WrapEntryAlreadyInBin(entryID string) *BusinessError {
	return NewBusinessError(
		ErrCodeEntryAlreadyInBin,
		fmt.Sprintf("Entry with ID %s is already in the recycle bin", entryID),
		ErrEntryAlreadyInBin,
	)
}

func WrapEntryNotInBin(entryID string) *BusinessError {
	return NewBusinessError(
		ErrCodeEntryNotInBin,
		fmt.Sprintf("Entry with ID %s is not in the recycle bin", entryID),
		ErrEntryNotInBin,
	)
}

func WrapLoanInBin(entryID string) *BusinessError {
	return NewBusinessError(
		ErrCodeLoanInBin,
		fmt.Sprintf("Parent loan of entry %s is in the recycle bin", entryID),
		ErrLoanInBin,
	)
}

func WrapConflict(loanID string, err error) *BusinessError {
	return NewBusinessError(
		ErrCodeConflict,
		fmt.Sprintf("Concurrent update on loan %s, retry the operation", loanID),
		err,
	)
}

func WrapIntegrity(loanID, detail string) *BusinessError {
	return NewBusinessError(
		ErrCodeIntegrity,
		fmt.Sprintf("Loan %s failed an integrity check: %s", loanID, detail),
		ErrIntegrity,
	)
}

func WrapDatabaseError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *BusinessError {
	return NewBusinessError(
		ErrCodeCacheError,
		"Cache operation failed",
		err,
	)
}
