package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamnest/streamnest/internal/container"
	handlers "github.com/streamnest/streamnest/internal/interface/http"
	"github.com/streamnest/streamnest/internal/interface/middleware"
	"github.com/streamnest/streamnest/pkg/helpers"
)

// FollowModule wires the follow graph routes.
// Public: GET /api/most_followed
// Protected: POST /api/follow/:id, DELETE /api/unfollow/:id, the follower
// listing for any user and the caller's own following listing.

type FollowModule struct {
	Handler *handlers.FollowHandler
	JWT     *helpers.JWTManager
}

func NewFollowModule(h *handlers.FollowHandler, jwt *helpers.JWTManager) *FollowModule {
	return &FollowModule{Handler: h, JWT: jwt}
}

func (m *FollowModule) Register(rg *gin.RouterGroup) {
	publicLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	rg.GET("/most_followed", publicLimiter, m.Handler.MostFollowed)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/follow/:id", m.Handler.Follow)
		auth.DELETE("/unfollow/:id", m.Handler.Unfollow)
		auth.GET("/users/:id/followers", m.Handler.Followers)
		auth.GET("/following", m.Handler.Following)
		auth.GET("/isfollowing/:id", m.Handler.IsFollowing)
	}
}
