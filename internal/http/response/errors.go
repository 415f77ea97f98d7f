package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/havenlane/leasehold-backend/internal/domain/aggregates"
)

// errInternal replaces causes on 500 responses so datastore details never
// reach the client.
var errInternal = errors.New("internal server error")

// RespondDomainError maps aggregate error codes onto HTTP statuses. Unknown
// errors surface as 500 without leaking internals.
func RespondDomainError(c *gin.Context, err error) {
	code, ok := domainagg.CodeOf(err)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "internal", errInternal)
		return
	}
	switch code {
	case domainagg.CodeValidation:
		RespondError(c, http.StatusBadRequest, string(code), err)
	case domainagg.CodeForbidden:
		RespondError(c, http.StatusForbidden, string(code), err)
	case domainagg.CodeNotFound:
		RespondError(c, http.StatusNotFound, string(code), err)
	case domainagg.CodeConflict, domainagg.CodeInvariantViolation:
		RespondError(c, http.StatusConflict, string(code), err)
	case domainagg.CodePreconditionFailed:
		RespondError(c, http.StatusUnprocessableEntity, string(code), err)
	case domainagg.CodeRetryable:
		RespondError(c, http.StatusServiceUnavailable, string(code), err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", errInternal)
	}
}
