package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/contexts"
	"github.com/bookhaven/bookhaven/internal/server/biz"
)

// ExtractBearerToken pulls the bearer token from the Authorization
// header.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errors.New("missing Authorization header")
	}

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", errors.New("Authorization header must be of the form 'Bearer <token>'")
	}

	return token, nil
}

// WithJWTAuth authenticates the session token, then attaches the user
// and the user principal to the request context. Everything behind this
// middleware can assume an authenticated actor.
func WithJWTAuth(auth *biz.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := ExtractBearerToken(c.Request)
		if err != nil {
			AbortWithError(c, http.StatusUnauthorized, err)
			return
		}

		user, err := auth.AuthenticateJWTToken(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, biz.ErrInvalidJWT) || errors.Is(err, biz.ErrUserDisabled) {
				AbortWithError(c, http.StatusUnauthorized, errors.New("invalid token"))
			} else {
				AbortWithError(c, http.StatusInternalServerError, errors.New("failed to validate token"))
			}

			return
		}

		ctx := contexts.WithUser(c.Request.Context(), user)
		ctx = authz.NewUserContext(ctx, user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// LibraryHeader selects the library a tenant-scoped request operates on.
const LibraryHeader = "X-Library-ID"

// WithLibraryID reads the library header into the request context. The
// header is optional at this layer; handlers that need a tenant scope
// fail their own way when it is absent.
func WithLibraryID() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(LibraryHeader)
		if header == "" {
			c.Next()
			return
		}

		var libraryID int
		if _, err := fmt.Sscanf(header, "%d", &libraryID); err != nil || libraryID <= 0 {
			AbortWithError(c, http.StatusBadRequest, fmt.Errorf("invalid %s header: %q", LibraryHeader, header))
			return
		}

		ctx := contexts.WithLibraryID(c.Request.Context(), libraryID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
