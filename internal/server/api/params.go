package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/bookhaven/internal/contexts"
	"github.com/bookhaven/bookhaven/internal/server/middleware"
)

// pathID parses the :id path parameter. Responds 400 and returns false
// on garbage.
func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		JSONError(c, http.StatusBadRequest, errors.New("invalid id"))
		return 0, false
	}

	return id, true
}

// libraryScope returns the tenant scope set by the library middleware.
// Responds 400 when the header was not sent.
func libraryScope(c *gin.Context) (int, bool) {
	libraryID, ok := contexts.GetLibraryID(c.Request.Context())
	if !ok {
		JSONError(c, http.StatusBadRequest,
			errors.New("missing "+middleware.LibraryHeader+" header"))
		return 0, false
	}

	return libraryID, true
}

// includeDeleted reports whether the listing should widen to the audit
// scope.
func includeDeleted(c *gin.Context) bool {
	return c.Query("include_deleted") == "true"
}
