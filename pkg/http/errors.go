package http

import (
	"fmt"
	"net/http"
)

// Error codes surfaced in AppError.Code.
const (
	CodeInvalidSubject = "ERR_INVALID_SUBJECT"
	CodeRateLimited    = "ERR_RATE_LIMITED"
)

// AppError is an error the API reports to clients as-is, with its own status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil || e.Err.Error() == e.Message {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

// WithParam attaches a detail such as retry_after_seconds.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = map[string]interface{}{}
	}
	e.Params[key] = value
	return e
}

// InvalidSubjectError reports a rejected symbol or company name. err stays
// reachable through errors.Is.
func InvalidSubjectError(field string, err error) *AppError {
	return &AppError{
		Code:    CodeInvalidSubject,
		Message: err.Error(),
		Field:   field,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// TooManyRequestsError is returned once a client exhausts its request budget.
func TooManyRequestsError(message string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: message, Status: http.StatusTooManyRequests}
}
