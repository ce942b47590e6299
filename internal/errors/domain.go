package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Kind classifies a domain failure. The core library reports every
// failure as a *DomainError carrying one of these kinds; handlers map
// them onto HTTP responses with RespondWithDomainError.
type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindForbidden          Kind = "FORBIDDEN"
	KindConflict           Kind = "CONFLICT"
	KindStorageUnavailable Kind = "STORAGE_UNAVAILABLE"
	KindQuotaExceeded      Kind = "QUOTA_EXCEEDED"
)

// DomainError is a typed failure with a human-readable reason. Deny
// reasons are specific ("not a teacher of this subject"), never generic,
// so the calling layer can render actionable messages.
type DomainError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func NotFoundf(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindNotFound, Reason: fmt.Sprintf(format, args...)}
}

func Forbiddenf(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindForbidden, Reason: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindConflict, Reason: fmt.Sprintf(format, args...)}
}

func StorageUnavailable(reason string, err error) *DomainError {
	return &DomainError{Kind: KindStorageUnavailable, Reason: reason, Err: err}
}

func QuotaExceededf(format string, args ...any) *DomainError {
	return &DomainError{Kind: KindQuotaExceeded, Reason: fmt.Sprintf(format, args...)}
}

// IsKind reports whether err is a *DomainError of the given kind.
func IsKind(err error, kind Kind) bool {
	var de *DomainError
	return errors.As(err, &de) && de.Kind == kind
}

// RespondWithDomainError maps a domain failure onto an HTTP response.
// Unknown errors become a 500 without leaking internals.
func RespondWithDomainError(c *gin.Context, err error) {
	var de *DomainError
	if !errors.As(err, &de) {
		InternalError(c, "")
		return
	}

	switch de.Kind {
	case KindNotFound:
		NotFound(c, de.Reason)
	case KindForbidden:
		Forbidden(c, de.Reason)
	case KindConflict:
		Conflict(c, de.Reason)
	case KindStorageUnavailable:
		ServiceUnavailable(c, de.Reason)
	case KindQuotaExceeded:
		RespondWithError(c, http.StatusRequestEntityTooLarge, NewAPIError(string(KindQuotaExceeded), de.Reason))
	default:
		InternalError(c, "")
	}
}
