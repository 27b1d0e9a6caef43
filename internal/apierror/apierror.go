// Package apierror holds the JSON bodies of failed HTTP calls. Handlers never
// serialize a raw error; the till shows Detail to the cashier as is.
package apierror

// validationDetail heads every field-level rejection.
const validationDetail = "Erreur de validation"

// APIError is the body of every non-2xx answer: {"detail": "..."}.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError adds a field → failed-rule map, e.g. {"stock": "min"}.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

// NewValidation always returns a non-nil Fields map so the front end can
// index it without a null check.
func NewValidation(fields map[string]string) *ValidationError {
	if fields == nil {
		fields = map[string]string{}
	}
	return &ValidationError{Detail: validationDetail, Fields: fields}
}
