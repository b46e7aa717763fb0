package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/server/biz"
	"github.com/bookhaven/bookhaven/internal/storage"
)

type MemberHandlersParams struct {
	fx.In

	MemberService *biz.MemberService
}

func NewMemberHandlers(params MemberHandlersParams) *MemberHandlers {
	return &MemberHandlers{MemberService: params.MemberService}
}

type MemberHandlers struct {
	MemberService *biz.MemberService
}

type MemberRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"  binding:"required"`
	Email     string `json:"email"     binding:"omitempty,email"`
}

// Create registers a patron in the scoped library.
func (h *MemberHandlers) Create(c *gin.Context) {
	libraryID, ok := libraryScope(c)
	if !ok {
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	member := &storage.Member{
		LibraryID: libraryID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	}

	if err := h.MemberService.Create(c.Request.Context(), member); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// List returns the scoped library's patrons.
func (h *MemberHandlers) List(c *gin.Context) {
	libraryID, ok := libraryScope(c)
	if !ok {
		return
	}

	members, err := h.MemberService.List(c.Request.Context(), libraryID, includeDeleted(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"members": members})
}

// Get returns one patron record.
func (h *MemberHandlers) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	member, err := h.MemberService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// Update edits a patron record.
func (h *MemberHandlers) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req MemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	member, err := h.MemberService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	member.FirstName = req.FirstName
	member.LastName = req.LastName
	member.Email = req.Email

	if err := h.MemberService.Update(c.Request.Context(), member); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, member)
}

// Delete soft-deletes a patron record.
func (h *MemberHandlers) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.MemberService.Delete(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Restore reactivates a soft-deleted patron record.
func (h *MemberHandlers) Restore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.MemberService.Restore(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
