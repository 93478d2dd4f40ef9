package usecase

import (
	"net/mail"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/xavierca1/dealer-leads/internal/entity"
)

func ValidateLeadFields(f LeadFields, models []string) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(f.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if utf8.RuneCountInString(f.Name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if strings.TrimSpace(f.Phone) == "" {
		errors = append(errors, ValidationError{"phone", "is required"})
	}

	if strings.TrimSpace(f.Email) != "" {
		if _, err := mail.ParseAddress(f.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	if f.ModelInterest == "" {
		errors = append(errors, ValidationError{"model_interest", "is required"})
	} else if !slices.Contains(models, f.ModelInterest) {
		errors = append(errors, ValidationError{"model_interest", "is not in the model catalog"})
	}

	if f.Source == "" {
		errors = append(errors, ValidationError{"source", "is required"})
	} else if !entity.Source(f.Source).Valid() {
		errors = append(errors, ValidationError{"source", "is not a known source"})
	}

	return errors
}

func validateStatus(status string) *DomainError {
	if !entity.Status(status).Valid() {
		return newValidationError([]ValidationError{{"status", "is not a funnel status"}})
	}
	return nil
}

func validateComment(text string) *DomainError {
	if strings.TrimSpace(text) == "" {
		return newValidationError([]ValidationError{{"text", "is required"}})
	}
	return nil
}
