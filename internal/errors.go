package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "VALIDATION_ERROR"
	ErrorTypeDuplicate      ErrorType = "DUPLICATE_ERROR"
	ErrorTypeAuthentication ErrorType = "AUTHENTICATION_ERROR"
	ErrorTypeAuthorization  ErrorType = "AUTHORIZATION_ERROR"
	ErrorTypeNotFound       ErrorType = "NOT_FOUND"
	ErrorTypeRateLimited    ErrorType = "RATE_LIMITED"
	ErrorTypeIntegration    ErrorType = "INTEGRATION_FAILURE"
	ErrorTypeInternal       ErrorType = "INTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidBody      ErrorCode = "INVALID_BODY"
	ErrCodeInvalidRole      ErrorCode = "INVALID_ROLE"
	ErrCodeInvalidGender    ErrorCode = "INVALID_GENDER"
	ErrCodeWrongPassword    ErrorCode = "WRONG_PASSWORD"
	ErrCodeOverCapacity     ErrorCode = "OVER_CAPACITY"

	ErrCodeDuplicatePending   ErrorCode = "REGISTRATION_PENDING"
	ErrCodeAlreadyRegistered  ErrorCode = "ALREADY_REGISTERED"
	ErrCodeDuplicateAccount   ErrorCode = "ACCOUNT_EXISTS"
	ErrCodeDuplicateHostel    ErrorCode = "HOSTEL_EXISTS"
	ErrCodeRegistrationExists ErrorCode = "REGISTRATION_EXISTS"
	ErrCodeDuplicateInvoice   ErrorCode = "INVOICE_EXISTS"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeRoleMismatch       ErrorCode = "ROLE_MISMATCH"
	ErrCodeInvalidSession     ErrorCode = "INVALID_SESSION"
	ErrCodeNoToken            ErrorCode = "NO_TOKEN"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTooManyAttempts    ErrorCode = "TOO_MANY_ATTEMPTS"

	ErrCodeForbidden       ErrorCode = "FORBIDDEN"
	ErrCodeGenderScope     ErrorCode = "GENDER_SCOPE"
	ErrCodeHostelScope     ErrorCode = "HOSTEL_SCOPE"
	ErrCodeGuestWindow     ErrorCode = "GUEST_WINDOW_CLOSED"
	ErrCodeMissingIdentity ErrorCode = "AUTHENTICATION_REQUIRED"

	ErrCodeRegistrationNotFound ErrorCode = "REGISTRATION_NOT_FOUND"
	ErrCodeInvoiceNotFound      ErrorCode = "INVOICE_NOT_FOUND"
	ErrCodeHostelNotFound       ErrorCode = "HOSTEL_NOT_FOUND"
	ErrCodeAccountNotFound      ErrorCode = "ACCOUNT_NOT_FOUND"

	ErrCodeInvoiceGeneration ErrorCode = "INVOICE_GENERATION_FAILED"
	ErrCodeInternal          ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on Type and Code so copies made by WithCause still compare equal to their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy; sentinels are shared across goroutines.
func (e *AppError) WithCause(cause error) *AppError {
	cp := *e
	cp.Cause = cause
	return &cp
}

func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func (e *AppError) WithMessage(message string) *AppError {
	cp := *e
	cp.Message = message
	return &cp
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewDuplicateError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeDuplicate,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewRateLimitError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

// NewIntegrationError describes a failed side step. It is logged, never written to a client.
func NewIntegrationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeIntegration,
		Code:       ErrCodeInvoiceGeneration,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

var (
	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrRoleMismatch       = NewUnauthorizedError("Account does not match the requested login type", ErrCodeRoleMismatch)
	ErrInvalidSession     = NewUnauthorizedError("Session is no longer valid", ErrCodeInvalidSession)
	ErrNoToken            = NewUnauthorizedError("Access denied. No token provided.", ErrCodeNoToken)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrMissingIdentity    = NewUnauthorizedError("Authentication required", ErrCodeMissingIdentity)
	ErrTooManyAttempts    = NewRateLimitError("Too many login attempts. Try again later.", ErrCodeTooManyAttempts)

	ErrForbidden   = NewForbiddenError("Access denied. Insufficient permissions.", ErrCodeForbidden)
	ErrGenderScope = NewForbiddenError("Access denied. You cannot manage this gender.", ErrCodeGenderScope)
	ErrHostelScope = NewForbiddenError("Access denied. You are not assigned to this hostel.", ErrCodeHostelScope)
	ErrGuestWindow = NewForbiddenError("Authentication required to access this invoice", ErrCodeGuestWindow)

	ErrDuplicatePending  = NewDuplicateError("A registration for this email is already pending payment", ErrCodeDuplicatePending)
	ErrAlreadyRegistered = NewDuplicateError("A student with this email is already registered", ErrCodeAlreadyRegistered)
	ErrDuplicateAccount  = NewDuplicateError("An account with these details already exists", ErrCodeDuplicateAccount)
	ErrDuplicateHostel   = NewDuplicateError("A hostel with this code already exists", ErrCodeDuplicateHostel)
	ErrDuplicateInvoice  = NewDuplicateError("An invoice with this number already exists", ErrCodeDuplicateInvoice)

	ErrRegistrationNotFound = NewNotFoundError("Registration not found or expired", ErrCodeRegistrationNotFound)
	ErrInvoiceNotFound      = NewNotFoundError("Invoice not found", ErrCodeInvoiceNotFound)
	ErrHostelNotFound       = NewNotFoundError("Hostel not found", ErrCodeHostelNotFound)
	ErrAccountNotFound      = NewNotFoundError("Account not found", ErrCodeAccountNotFound)

	ErrWrongPassword = NewValidationError("Current password is incorrect", ErrCodeWrongPassword)
	ErrOverCapacity  = NewValidationError("Occupancy cannot exceed capacity", ErrCodeOverCapacity)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// AsAppError folds any error into an AppError, wrapping unknown ones as internal.
func AsAppError(err error) *AppError {
	if appErr, ok := IsAppError(err); ok {
		return appErr
	}
	return NewInternalError("Internal server error", err)
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
