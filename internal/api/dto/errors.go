package dto

// APIError represents a structured error response.
// All error responses from the API use this format for consistency.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeNotFound       = "not_found"
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInternalError  = "internal_error"
	ErrCodeValidation     = "validation_error"
	ErrCodeConflict       = "conflict"
	ErrCodeUnavailable    = "store_unavailable"
	ErrCodePartialCommit  = "partial_commit"
	ErrCodeMissingOwner   = "missing_owner"
	ErrCodeImportRejected = "import_rejected"
)

// NewAPIError creates a new APIError with the given code and message.
func NewAPIError(code, message string) APIError {
	return APIError{
		Code:    code,
		Message: message,
	}
}

// NotFoundError creates a not found error response.
func NotFoundError(resource string) APIError {
	return NewAPIError(ErrCodeNotFound, resource+" not found")
}

// BadRequestError creates a bad request error response.
func BadRequestError(message string) APIError {
	return NewAPIError(ErrCodeBadRequest, message)
}

// InternalError creates an internal server error response.
func InternalError() APIError {
	return NewAPIError(ErrCodeInternalError, "an internal error occurred")
}

// ValidationError creates a validation error response.
func ValidationError(message string) APIError {
	return NewAPIError(ErrCodeValidation, message)
}

// ConflictError reports a target that changed state underneath the request.
func ConflictError(message string) APIError {
	return NewAPIError(ErrCodeConflict, message)
}

// UnavailableError reports a transient storage failure.
func UnavailableError() APIError {
	return NewAPIError(ErrCodeUnavailable, "transaction store unavailable, retry later")
}

// PartialCommitError reports a pairing left half-applied.
func PartialCommitError(message string) APIError {
	return NewAPIError(ErrCodePartialCommit, message)
}

// MissingOwnerError is returned when a request carries no owner header.
func MissingOwnerError(header string) APIError {
	return NewAPIError(ErrCodeMissingOwner, header+" header is required")
}
