package server

import (
	"github.com/gin-contrib/cors"
	"go.uber.org/fx"

	"github.com/bookhaven/bookhaven/internal/server/api"
	"github.com/bookhaven/bookhaven/internal/server/biz"
	"github.com/bookhaven/bookhaven/internal/server/middleware"
)

type Handlers struct {
	fx.In

	System     *api.SystemHandlers
	Auth       *api.AuthHandlers
	Permission *api.PermissionHandlers
	Library    *api.LibraryHandlers
	Staff      *api.StaffHandlers
	Member     *api.MemberHandlers
	Copy       *api.CopyHandlers
}

type Services struct {
	fx.In

	AuthService *biz.AuthService
}

func SetupRoutes(server *Server, handlers Handlers, services Services) {
	server.Use(middleware.AccessLog())
	server.Use(middleware.WithTracing())

	if server.Config.CORS.Enabled {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = server.Config.CORS.AllowedOrigins
		corsConfig.AllowMethods = server.Config.CORS.AllowedMethods
		corsConfig.AllowHeaders = server.Config.CORS.AllowedHeaders
		corsConfig.ExposeHeaders = server.Config.CORS.ExposedHeaders
		corsConfig.AllowCredentials = server.Config.CORS.AllowCredentials
		corsConfig.MaxAge = server.Config.CORS.MaxAge

		corsHandler := cors.New(corsConfig)
		server.Use(corsHandler)
		server.OPTIONS("*any", corsHandler)
	}

	publicGroup := server.Group("", middleware.WithTimeout(server.Config.RequestTimeout))
	{
		// Health check endpoint - no authentication required
		publicGroup.GET("/health", handlers.System.Health)
	}

	unSecureAdminGroup := server.Group("/admin", middleware.WithTimeout(server.Config.RequestTimeout))
	{
		// Account creation and login - DO NOT AUTH
		unSecureAdminGroup.POST("/auth/signup", handlers.Auth.SignUp)
		unSecureAdminGroup.POST("/auth/signin", handlers.Auth.SignIn)
	}

	adminGroup := server.Group("/admin",
		middleware.WithTimeout(server.Config.RequestTimeout),
		middleware.WithJWTAuth(services.AuthService),
		middleware.WithLibraryID(),
	)
	{
		adminGroup.GET("/me", handlers.Auth.Me)

		adminGroup.GET("/permissions/catalog", handlers.Permission.Catalog)
		adminGroup.GET("/permissions/roles", handlers.Permission.Roles)

		adminGroup.POST("/libraries", handlers.Library.Create)
		adminGroup.GET("/libraries", handlers.Library.List)
		adminGroup.GET("/libraries/:id", handlers.Library.Get)
		adminGroup.PUT("/libraries/:id/settings", handlers.Library.UpdateSettings)

		adminGroup.POST("/staff", handlers.Staff.Invite)
		adminGroup.GET("/staff", handlers.Staff.List)
		adminGroup.GET("/staff/:id", handlers.Staff.Get)
		adminGroup.POST("/staff/:id/accept", handlers.Staff.AcceptInvite)
		adminGroup.PUT("/staff/:id/role", handlers.Staff.UpdateRole)
		adminGroup.PUT("/staff/:id/permissions", handlers.Staff.UpdatePermissions)
		adminGroup.DELETE("/staff/:id", handlers.Staff.Remove)
		adminGroup.POST("/staff/:id/restore", handlers.Staff.Restore)

		adminGroup.POST("/members", handlers.Member.Create)
		adminGroup.GET("/members", handlers.Member.List)
		adminGroup.GET("/members/:id", handlers.Member.Get)
		adminGroup.PUT("/members/:id", handlers.Member.Update)
		adminGroup.DELETE("/members/:id", handlers.Member.Delete)
		adminGroup.POST("/members/:id/restore", handlers.Member.Restore)

		adminGroup.POST("/copies", handlers.Copy.Create)
		adminGroup.GET("/copies", handlers.Copy.List)
		adminGroup.GET("/copies/:id", handlers.Copy.Get)
		adminGroup.PUT("/copies/:id", handlers.Copy.Update)
		adminGroup.POST("/copies/:id/checkout", handlers.Copy.Checkout)
		adminGroup.POST("/copies/:id/checkin", handlers.Copy.Checkin)
		adminGroup.DELETE("/copies/:id", handlers.Copy.Delete)
		adminGroup.POST("/copies/:id/restore", handlers.Copy.Restore)
	}
}
