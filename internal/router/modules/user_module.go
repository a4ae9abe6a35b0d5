package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamnest/streamnest/internal/container"
	handlers "github.com/streamnest/streamnest/internal/interface/http"
	"github.com/streamnest/streamnest/internal/interface/middleware"
	"github.com/streamnest/streamnest/pkg/helpers"
)

// UserModule wires account and profile routes.
// Public: GET /api/profile/:id
// Protected: GET /api/profile, POST /api/picture, the credential update
// endpoints, DELETE /api/userdelete and GET /api/users/search.

type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	publicLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/profile/:id", publicLimiter, m.Handler.PublicProfile)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	// Softer per-IP limiter plus a per-user one across all protected routes
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.POST("/picture", m.Handler.UploadPicture)
		auth.PUT("/usernameupdate", m.Handler.ChangeUsername)
		auth.PUT("/emailupdate", m.Handler.ChangeEmail)
		auth.PUT("/passwordupdate", m.Handler.ChangePassword)
		auth.DELETE("/userdelete", m.Handler.Delete)
		// Ranked search via Elasticsearch
		auth.GET("/users/search", m.Handler.SearchRanked)
	}
}
