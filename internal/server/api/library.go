package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/server/biz"
	"github.com/bookhaven/bookhaven/internal/storage"
)

type LibraryHandlersParams struct {
	fx.In

	LibraryService *biz.LibraryService
}

func NewLibraryHandlers(params LibraryHandlersParams) *LibraryHandlers {
	return &LibraryHandlers{LibraryService: params.LibraryService}
}

type LibraryHandlers struct {
	LibraryService *biz.LibraryService
}

type CreateLibraryRequest struct {
	Name     string                   `json:"name" binding:"required"`
	Code     string                   `json:"code" binding:"required"`
	Settings *storage.LibrarySettings `json:"settings"`
}

// Create provisions a library with the caller as founding owner.
func (h *LibraryHandlers) Create(c *gin.Context) {
	var req CreateLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	settings := storage.LibrarySettings{LoanPeriodDays: 21, MaxLoans: 5, AllowHolds: true}
	if req.Settings != nil {
		settings = *req.Settings
	}

	library, err := h.LibraryService.Create(c.Request.Context(), req.Name, req.Code, settings)
	if err != nil {
		if errors.Is(err, biz.ErrLibraryCodeRequired) {
			JSONError(c, http.StatusBadRequest, err)
			return
		}

		RespondError(c, err)

		return
	}

	c.JSON(http.StatusCreated, library)
}

// List returns the libraries the caller staffs.
func (h *LibraryHandlers) List(c *gin.Context) {
	libraries, err := h.LibraryService.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"libraries": libraries})
}

// Get returns one library.
func (h *LibraryHandlers) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	library, err := h.LibraryService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, library)
}

// UpdateSettings replaces the library's settings blob.
func (h *LibraryHandlers) UpdateSettings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var settings storage.LibrarySettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	if err := h.LibraryService.UpdateSettings(c.Request.Context(), id, settings); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
