// Package errors provides the service error taxonomy shared by the core
// services and the HTTP adapter.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Kinds of malformed input. Every ServiceError produced by the core wraps one
// of these so callers can branch with errors.Is.
var (
	// ErrInvalidEncoding means base58/base64 decoding failed.
	ErrInvalidEncoding = stderrors.New("invalid encoding")

	// ErrInvalidLength means decoded bytes have the wrong size for their role.
	ErrInvalidLength = stderrors.New("invalid length")

	// ErrInvalidKeyMaterial means the bytes decode but do not form a valid key.
	ErrInvalidKeyMaterial = stderrors.New("invalid key material")
)

// ErrorCode is a stable machine-readable error identifier.
type ErrorCode string

const (
	CodeInvalidEncoding          ErrorCode = "INVALID_ENCODING"
	CodeInvalidKeyLength         ErrorCode = "INVALID_KEY_LENGTH"
	CodeInvalidKeyMaterial       ErrorCode = "INVALID_KEY_MATERIAL"
	CodeInvalidPublicKey         ErrorCode = "INVALID_PUBLIC_KEY"
	CodeInvalidSignatureEncoding ErrorCode = "INVALID_SIGNATURE_ENCODING"
	CodeInvalidAccount           ErrorCode = "INVALID_ACCOUNT"
	CodeInvalidRequest           ErrorCode = "INVALID_REQUEST"
	CodeUnauthorized             ErrorCode = "UNAUTHORIZED"
	CodeInvalidToken             ErrorCode = "INVALID_TOKEN"
	CodeRateLimitExceeded        ErrorCode = "RATE_LIMIT_EXCEEDED"
	CodeInternal                 ErrorCode = "INTERNAL_ERROR"
)

// ServiceError is a structured failure that maps onto the response envelope.
type ServiceError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// WithDetails attaches a detail key and returns the same error.
func (e *ServiceError) WithDetails(key string, value any) *ServiceError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

func newError(code ErrorCode, status int, message string, err error) *ServiceError {
	return &ServiceError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// kind joins a taxonomy kind with an underlying cause.
func kind(k error, cause error) error {
	switch {
	case cause == nil:
		return k
	case stderrors.Is(cause, k):
		return cause
	default:
		return fmt.Errorf("%w: %w", k, cause)
	}
}

// InvalidEncoding reports a value that is not valid base58/base64.
func InvalidEncoding(message string, err error) *ServiceError {
	return newError(CodeInvalidEncoding, http.StatusBadRequest, message, kind(ErrInvalidEncoding, err))
}

// InvalidKeyLength reports a key whose encoded or decoded size is wrong.
func InvalidKeyLength(message string, err error) *ServiceError {
	return newError(CodeInvalidKeyLength, http.StatusBadRequest, message, kind(ErrInvalidLength, err))
}

// InvalidKeyMaterial reports key bytes that do not form a usable keypair.
func InvalidKeyMaterial(message string, err error) *ServiceError {
	return newError(CodeInvalidKeyMaterial, http.StatusBadRequest, message, kind(ErrInvalidKeyMaterial, err))
}

// InvalidPublicKey reports a malformed public key; err carries the kind.
func InvalidPublicKey(err error) *ServiceError {
	return newError(CodeInvalidPublicKey, http.StatusBadRequest, "Invalid public key", err)
}

// InvalidSignatureEncoding reports a signature that is not 64 base64 bytes;
// err carries the kind.
func InvalidSignatureEncoding(err error) *ServiceError {
	return newError(CodeInvalidSignatureEncoding, http.StatusBadRequest, "Invalid signature encoding", err)
}

// InvalidAccount reports a malformed account identifier in the named field.
func InvalidAccount(field, message string, err error) *ServiceError {
	return newError(CodeInvalidAccount, http.StatusBadRequest, message, err).WithDetails("field", field)
}

// InvalidRequest reports a request body that could not be decoded.
func InvalidRequest(message string, err error) *ServiceError {
	return newError(CodeInvalidRequest, http.StatusBadRequest, message, err)
}

func Unauthorized(message string) *ServiceError {
	if message == "" {
		message = "Unauthorized"
	}
	return newError(CodeUnauthorized, http.StatusUnauthorized, message, nil)
}

func InvalidToken(err error) *ServiceError {
	return newError(CodeInvalidToken, http.StatusUnauthorized, "Invalid or expired token", err)
}

func RateLimitExceeded(limit int, window string) *ServiceError {
	return newError(CodeRateLimitExceeded, http.StatusTooManyRequests, "Rate limit exceeded", nil).
		WithDetails("limit", limit).
		WithDetails("window", window)
}

func Internal(message string, err error) *ServiceError {
	return newError(CodeInternal, http.StatusInternalServerError, message, err)
}

// GetServiceError returns the first ServiceError in err's chain, or nil.
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if stderrors.As(err, &serviceErr) {
		return serviceErr
	}
	return nil
}

// Is, As and New re-export the standard helpers so callers need one import.
var (
	Is  = stderrors.Is
	As  = stderrors.As
	New = stderrors.New
)
