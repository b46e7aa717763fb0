package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/objects"
	"github.com/bookhaven/bookhaven/internal/permissions"
)

type PermissionHandlersParams struct {
	fx.In
}

func NewPermissionHandlers(_ PermissionHandlersParams) *PermissionHandlers {
	return &PermissionHandlers{}
}

type PermissionHandlers struct{}

// Catalog returns the permission catalog grouped by category, for the
// permission-override editor.
func (h *PermissionHandlers) Catalog(c *gin.Context) {
	categories := permissions.AllCategories()

	out := make([]objects.PermissionCategory, 0, len(categories))

	for _, category := range categories {
		entry := objects.PermissionCategory{
			Name:  category.Name,
			Label: category.Label,
		}

		for _, p := range category.Permissions {
			entry.Permissions = append(entry.Permissions, objects.PermissionInfo{
				Permission:  string(p.Permission),
				Description: p.Description,
			})
		}

		out = append(out, entry)
	}

	c.JSON(http.StatusOK, gin.H{"categories": out})
}

// Roles returns the role list with each role's default permissions.
func (h *PermissionHandlers) Roles(c *gin.Context) {
	type roleInfo struct {
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}

	roles := permissions.AllRoles()

	out := make([]roleInfo, 0, len(roles))

	for _, role := range roles {
		defaults := permissions.DefaultPermissions(role)

		perms := make([]string, len(defaults))
		for i, p := range defaults {
			perms[i] = string(p)
		}

		out = append(out, roleInfo{Role: string(role), Permissions: perms})
	}

	c.JSON(http.StatusOK, gin.H{"roles": out})
}
