package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/lifecycle"
	"github.com/bookhaven/bookhaven/internal/objects"
	"github.com/bookhaven/bookhaven/internal/policy"
	"github.com/bookhaven/bookhaven/internal/storage"
)

// JSONError returns a JSON error response and adds the error to gin
// context for access logging.
func JSONError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.JSON(status, objects.ErrorResponse{
		Error: objects.Error{
			Type:    http.StatusText(status),
			Message: err.Error(),
		},
	})
}

// RespondError maps domain errors onto HTTP statuses: missing
// authentication is 401, missing permission 403, a lifecycle state
// violation 422, a missing row 404. Everything unrecognized is a 500.
func RespondError(c *gin.Context, err error) {
	var (
		authErr       *authz.AuthenticationError
		permErr       *authz.PermissionError
		validationErr *lifecycle.ValidationError
	)

	switch {
	case errors.As(err, &authErr):
		JSONError(c, http.StatusUnauthorized, err)
	case errors.As(err, &permErr), errors.Is(err, policy.ErrDenied):
		JSONError(c, http.StatusForbidden, err)
	case errors.As(err, &validationErr):
		JSONError(c, http.StatusUnprocessableEntity, err)
	case errors.Is(err, storage.ErrNotFound):
		JSONError(c, http.StatusNotFound, err)
	case errors.Is(err, storage.ErrStaleState):
		JSONError(c, http.StatusConflict, err)
	default:
		JSONError(c, http.StatusInternalServerError, err)
	}
}
