package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/server/biz"
)

type StaffHandlersParams struct {
	fx.In

	StaffService *biz.StaffService
}

func NewStaffHandlers(params StaffHandlersParams) *StaffHandlers {
	return &StaffHandlers{StaffService: params.StaffService}
}

type StaffHandlers struct {
	StaffService *biz.StaffService
}

type InviteStaffRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"  binding:"required"`
}

// Invite creates an invited membership in the scoped library.
func (h *StaffHandlers) Invite(c *gin.Context) {
	libraryID, ok := libraryScope(c)
	if !ok {
		return
	}

	var req InviteStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	staff, err := h.StaffService.Invite(c.Request.Context(), libraryID, req.Email, req.Role)
	if err != nil {
		switch {
		case errors.Is(err, biz.ErrInvalidRole), errors.Is(err, biz.ErrAlreadyStaffed):
			JSONError(c, http.StatusBadRequest, err)
		case errors.Is(err, biz.ErrUserNotFound):
			JSONError(c, http.StatusNotFound, err)
		default:
			RespondError(c, err)
		}

		return
	}

	c.JSON(http.StatusCreated, staff)
}

// List returns the scoped library's staff.
func (h *StaffHandlers) List(c *gin.Context) {
	libraryID, ok := libraryScope(c)
	if !ok {
		return
	}

	staff, err := h.StaffService.List(c.Request.Context(), libraryID, includeDeleted(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// Get returns one staff record.
func (h *StaffHandlers) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	staff, err := h.StaffService.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, staff)
}

// AcceptInvite activates the caller's own invitation.
func (h *StaffHandlers) AcceptInvite(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.StaffService.AcceptInvite(c.Request.Context(), id); err != nil {
		if errors.Is(err, biz.ErrNotOwnInvitation) {
			JSONError(c, http.StatusForbidden, err)
			return
		}

		RespondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

type UpdateStaffRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole changes a staff member's role.
func (h *StaffHandlers) UpdateRole(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStaffRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	if err := h.StaffService.UpdateRole(c.Request.Context(), id, req.Role); err != nil {
		if errors.Is(err, biz.ErrInvalidRole) {
			JSONError(c, http.StatusBadRequest, err)
			return
		}

		RespondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

type UpdateStaffPermissionsRequest struct {
	CustomPermissions []string `json:"customPermissions"`
	DeniedPermissions []string `json:"deniedPermissions"`
}

// UpdatePermissions replaces a staff member's permission overrides.
func (h *StaffHandlers) UpdatePermissions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStaffPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, errors.New("invalid request format"))
		return
	}

	err := h.StaffService.UpdatePermissions(c.Request.Context(), id, req.CustomPermissions, req.DeniedPermissions)
	if err != nil {
		if errors.Is(err, biz.ErrUnknownPermTag) {
			JSONError(c, http.StatusBadRequest, err)
			return
		}

		RespondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// Remove soft-deletes a staff record.
func (h *StaffHandlers) Remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.StaffService.Remove(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Restore reactivates a soft-deleted staff record.
func (h *StaffHandlers) Restore(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.StaffService.Restore(c.Request.Context(), id); err != nil {
		RespondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
