package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes exposed to clients.
const (
	ErrCodeInvalidRequest     = "ERR_INVALID_REQUEST"
	ErrCodeMissingField       = "ERR_MISSING_FIELD"
	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"
	ErrCodeSessionExpired     = "ERR_SESSION_EXPIRED"
	ErrCodeAccountLocked      = "ERR_ACCOUNT_LOCKED"
	ErrCodeAccountInactive    = "ERR_ACCOUNT_INACTIVE"
	ErrCodeEmailExists        = "ERR_EMAIL_EXISTS"
	ErrCodeWeakPassword       = "ERR_WEAK_PASSWORD"
	ErrCodeInvalidCode        = "ERR_INVALID_CODE"
	ErrCodeBookUnavailable    = "ERR_BOOK_UNAVAILABLE"
	ErrCodeLoanReturned       = "ERR_LOAN_RETURNED"
	ErrCodeLoanLimit          = "ERR_LOAN_LIMIT"
	ErrCodeAccountNotFound    = "ERR_ACCOUNT_NOT_FOUND"
	ErrCodeBookNotFound       = "ERR_BOOK_NOT_FOUND"
	ErrCodeLoanNotFound       = "ERR_LOAN_NOT_FOUND"
	ErrCodeArchiveNotFound    = "ERR_ARCHIVE_NOT_FOUND"
	ErrCodeInternalError      = "ERR_INTERNAL_ERROR"
)

// APIError 统一的API错误结构
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError 创建API错误
func NewAPIError(code, message string) *APIError {
	return &APIError{Code: code, Message: message}
}

// WithDetails 添加错误详情
func (e *APIError) WithDetails(details map[string]interface{}) *APIError {
	e.Details = details
	return e
}

func BadRequest(message string) *APIError {
	return NewAPIError(ErrCodeInvalidRequest, message)
}

func Unauthorized(message string) *APIError {
	return NewAPIError(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *APIError {
	return NewAPIError(ErrCodeForbidden, message)
}

func NotFound(code, message string) *APIError {
	return NewAPIError(code, message)
}

func InternalError(message string) *APIError {
	return NewAPIError(ErrCodeInternalError, message)
}

func MissingField(field string) *APIError {
	return NewAPIError(ErrCodeMissingField, fmt.Sprintf("missing required field: %s", field)).
		WithDetails(map[string]interface{}{"field": field})
}

// statusFor maps error codes onto HTTP statuses.
func statusFor(code string) int {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeMissingField, ErrCodeWeakPassword,
		ErrCodeInvalidCode, ErrCodeEmailExists, ErrCodeBookUnavailable,
		ErrCodeLoanReturned, ErrCodeLoanLimit:
		return http.StatusBadRequest
	case ErrCodeUnauthorized, ErrCodeInvalidCredentials, ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case ErrCodeForbidden, ErrCodeAccountLocked, ErrCodeAccountInactive:
		return http.StatusForbidden
	case ErrCodeAccountNotFound, ErrCodeBookNotFound, ErrCodeLoanNotFound, ErrCodeArchiveNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes an APIError with its mapped status. Plain errors
// become 500s without leaking the underlying message.
func respondError(c *gin.Context, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = InternalError("internal server error")
	}
	c.JSON(statusFor(apiErr.Code), apiErr)
}
