package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/bookhaven/internal/authz"
	"github.com/bookhaven/bookhaven/internal/lifecycle"
	"github.com/bookhaven/bookhaven/internal/objects"
	"github.com/bookhaven/bookhaven/internal/policy"
	"github.com/bookhaven/bookhaven/internal/storage"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{
			name:   "authentication",
			err:    &authz.AuthenticationError{Reason: "no session"},
			status: http.StatusUnauthorized,
		},
		{
			name:   "permission",
			err:    &authz.PermissionError{Permission: "books:delete", UserID: 7, LibraryID: 3},
			status: http.StatusForbidden,
		},
		{
			name:   "policy denial",
			err:    policy.ErrDenied,
			status: http.StatusForbidden,
		},
		{
			name:   "wrapped policy denial",
			err:    errors.Join(errors.New("delete member"), policy.ErrDenied),
			status: http.StatusForbidden,
		},
		{
			name:   "lifecycle state",
			err:    &lifecycle.ValidationError{Resource: lifecycle.ResourceMember, Action: "delete", Reason: "record is already deleted"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "not found",
			err:    storage.ErrNotFound,
			status: http.StatusNotFound,
		},
		{
			name:   "stale transition",
			err:    storage.ErrStaleState,
			status: http.StatusConflict,
		},
		{
			name:   "unrecognized",
			err:    errors.New("kaboom"),
			status: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			RespondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)

			var body objects.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, http.StatusText(tt.status), body.Error.Type)
			assert.NotEmpty(t, body.Error.Message)
		})
	}
}
