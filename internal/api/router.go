// Package api assembles the gin router from the individual handlers.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	adminapi "github.com/hackboard/hackboard/internal/api/admin"
	authapi "github.com/hackboard/hackboard/internal/api/auth"
	certapi "github.com/hackboard/hackboard/internal/api/certificates"
	filesapi "github.com/hackboard/hackboard/internal/api/files"
	hackapi "github.com/hackboard/hackboard/internal/api/hackathons"
	"github.com/hackboard/hackboard/internal/api/middleware"
	"github.com/hackboard/hackboard/internal/repository"
	"github.com/hackboard/hackboard/pkg/logger"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *authapi.Handler
	Hackathons    *hackapi.Handler
	Certificates  *certapi.Handler
	Admin         *adminapi.Handler
	Files         *filesapi.Handler
	Authenticator middleware.Authenticator
	DB            *repository.DB
	Log           *logger.Logger
}

// NewRouter builds the HTTP routing table.
func NewRouter(h *Handlers, environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", func(c *gin.Context) {
		if err := h.DB.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	authRequired := middleware.RequireAuth(h.Authenticator, h.Log)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", authRequired, h.Auth.Logout)
	}

	hackathons := v1.Group("/hackathons")
	{
		hackathons.GET("", h.Hackathons.List)
		hackathons.GET("/:id", h.Hackathons.Get)
		hackathons.POST("", authRequired, middleware.RequireOrganizer(), h.Hackathons.Create)

		// Template management and bulk generation require ownership, which
		// the certificates handler checks against the authenticated caller.
		hackathons.GET("/:id/certificate-template", h.Certificates.GetTemplate)
		hackathons.POST("/:id/certificate-template", authRequired, middleware.RequireOrganizer(), h.Certificates.UploadTemplate)
		hackathons.PUT("/:id/certificate-template/positions", authRequired, middleware.RequireOrganizer(), h.Certificates.SetPositions)
		hackathons.POST("/:id/certificates/bulk-generate", authRequired, middleware.RequireOrganizer(), h.Certificates.BulkGenerate)
		hackathons.GET("/:id/certificates", authRequired, middleware.RequireOrganizer(), h.Certificates.ListForEvent)
	}

	certificates := v1.Group("/certificates")
	{
		certificates.GET("/retrieve", h.Certificates.Retrieve)
		certificates.GET("/verify/:certificate_id", h.Certificates.Verify)
	}

	v1.GET("/admin/stats", authRequired, middleware.RequireAdmin(), h.Admin.Overview)

	v1.GET("/files/*key", h.Files.Serve)

	return router
}
