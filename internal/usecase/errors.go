package usecase

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeConfiguration = "CONFIGURATION_ERROR"
	CodeConflict      = "CONFLICT_ERROR"
	CodeNotFound      = "LEAD_NOT_FOUND"
	CodeRepository    = "REPOSITORY_ERROR"
)

// DomainError is a rejection decided by the engine itself. Nothing was written.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

// TechnicalError wraps a collaborator failure together with the operation
// that was being attempted, so the caller can retry it as a whole.
type TechnicalError struct {
	Code    string
	Message string
	Op      string
	LeadID  string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newValidationError(errs []ValidationError) *DomainError {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field+" ("+e.Message+")")
	}
	return &DomainError{
		Code:    CodeValidation,
		Message: "validation failed: " + strings.Join(parts, ", "),
		Fields:  errs,
	}
}

func newRepositoryError(op, leadID string, err error) *TechnicalError {
	return &TechnicalError{
		Code:    CodeRepository,
		Message: "repository failure during " + op,
		Op:      op,
		LeadID:  leadID,
		Err:     err,
	}
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func hasDomainCode(err error, code string) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Code == code
}

func IsValidationError(err error) bool    { return hasDomainCode(err, CodeValidation) }
func IsConfigurationError(err error) bool { return hasDomainCode(err, CodeConfiguration) }
func IsConflictError(err error) bool      { return hasDomainCode(err, CodeConflict) }
func IsNotFoundError(err error) bool      { return hasDomainCode(err, CodeNotFound) }

func IsRepositoryError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te) && te.Code == CodeRepository
}
