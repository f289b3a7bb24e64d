package apperror

import (
	"errors"
	"net/http"

	"github.com/baikalhq/groupware/internal/domain"
)

// AppError is a structured application error carrying the HTTP status a
// handler should answer with.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

const (
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodePreconditionFailed = "PRECONDITION_FAILED"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeBadRequest         = "BAD_REQUEST"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeInternalError      = "INTERNAL_ERROR"
)

func NewNotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Status: http.StatusNotFound}
}

func NewInvalidTransition(message string) *AppError {
	return &AppError{Code: CodeInvalidTransition, Message: message, Status: http.StatusConflict}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Status: http.StatusForbidden}
}

func NewPreconditionFailed(message string) *AppError {
	return &AppError{Code: CodePreconditionFailed, Message: message, Status: http.StatusUnprocessableEntity}
}

func NewValidation(message string) *AppError {
	return &AppError{Code: CodeValidationError, Message: message, Status: http.StatusBadRequest}
}

func NewBadRequest(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message, Status: http.StatusBadRequest}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: CodeConflict, Message: message, Status: http.StatusConflict}
}

func NewRateLimited(message string) *AppError {
	return &AppError{Code: CodeRateLimited, Message: message, Status: http.StatusTooManyRequests}
}

func NewInternal(message string) *AppError {
	return &AppError{Code: CodeInternalError, Message: message, Status: http.StatusInternalServerError}
}

// FromError maps domain errors onto the error taxonomy. Unknown errors become
// an internal error so handler responses never leak wrapped detail.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var transition *domain.TransitionError
	if errors.As(err, &transition) {
		return NewInvalidTransition(transition.Error())
	}

	switch {
	case errors.Is(err, domain.ErrApprovalNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrNoticeNotFound),
		errors.Is(err, domain.ErrScheduleNotFound):
		return NewNotFound(err.Error())
	case errors.Is(err, domain.ErrNotAuthor),
		errors.Is(err, domain.ErrNotApprover),
		errors.Is(err, domain.ErrNotYourTurn):
		return NewUnauthorized(err.Error())
	case errors.Is(err, domain.ErrNoApprovalLines):
		return NewPreconditionFailed(err.Error())
	case errors.Is(err, domain.ErrInvalidDecision),
		errors.Is(err, domain.ErrTitleRequired),
		errors.Is(err, domain.ErrContentRequired):
		return NewValidation(err.Error())
	case errors.Is(err, domain.ErrEmailTaken):
		return NewConflict(err.Error())
	default:
		return NewInternal("an unexpected error occurred")
	}
}
