package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/server/biz"
	"github.com/bookhaven/bookhaven/internal/storage"
)

type CopyHandlersParams struct {
	fx.In

	CopyService *biz.CopyService
}

func NewCopyHandlers(params CopyHandlersParams) *CopyHandlers {
	return &CopyHandlers{CopyService: params.CopyService}
}

type CopyHandlers struct {
	CopyService *biz.CopyService
}

type CopyRequest struct {
	Title   string `json:"title"   binding:"required"`
	Barcode string `json:"barcode" binding:"required"`
}

// Create adds an inventory copy to the scoped library.
func (h *CopyHandlers) Create(c *gin.Context) {
	libraryID, ok := libraryScope(c)
	if !ok {
		return
	}

	var req CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	copy := &storage.BookCopy{
		LibraryID: libraryID,
		Title:     req.Title,
		Barcode:   req.Barcode,
		Status:    storage.CopyStatusAvailable,
	}

	if err := h.CopyService.Create(c.Request.Context(), copy); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, copy)
}

// List returns the scoped library's inventory.
func (h *CopyHandlers) List(c *gin.Context) {
	libraryID, ok := libraryScope(c)
	if !ok {
		return
	}

	copies, err := h.CopyService.List(c.Request.Context(), libraryID, includeDeleted(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"copies": copies})
}

// Get returns one inventory copy.
func (h *CopyHandlers) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	copy, err := h.CopyService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, copy)
}

// Update edits an inventory copy.
func (h *CopyHandlers) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req CopyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	copy, err := h.CopyService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	copy.Title = req.Title
	copy.Barcode = req.Barcode

	if err := h.CopyService.Update(c.Request.Context(), copy); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, copy)
}

// Checkout checks a copy out at the circulation desk.
func (h *CopyHandlers) Checkout(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.CopyService.Checkout(c.Request.Context(), id); err != nil {
		if errors.Is(err, biz.ErrCopyUnavailable) {
			JSONError(c, http.StatusConflict, err)
			return
		}

		RespondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// Checkin returns a checked-out copy.
func (h *CopyHandlers) Checkin(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.CopyService.Checkin(c.Request.Context(), id); err != nil {
		if errors.Is(err, biz.ErrCopyNotCheckedOut) {
			JSONError(c, http.StatusConflict, err)
			return
		}

		RespondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// Delete soft-deletes an inventory copy.
func (h *CopyHandlers) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.CopyService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Restore reactivates a soft-deleted inventory copy.
func (h *CopyHandlers) Restore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.CopyService.Restore(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
