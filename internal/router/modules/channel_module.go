package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamnest/streamnest/internal/container"
	handlers "github.com/streamnest/streamnest/internal/interface/http"
	"github.com/streamnest/streamnest/internal/interface/middleware"
	"github.com/streamnest/streamnest/pkg/helpers"
)

// ChannelModule wires channel, stream lifecycle and directory routes.
// Public: GET /api/channel/:id, GET /api/streams/live, POST /api/search and
// the stream key authenticated POST /api/stream/start, POST /api/stream/end.
// Protected: PUT /api/channel, POST /api/channel/key and the owner's
// keyless POST /api/channel/stream/end.

type ChannelModule struct {
	Handler *handlers.ChannelHandler
	JWT     *helpers.JWTManager
}

func NewChannelModule(h *handlers.ChannelHandler, jwt *helpers.JWTManager) *ChannelModule {
	return &ChannelModule{Handler: h, JWT: jwt}
}

func (m *ChannelModule) Register(rg *gin.RouterGroup) {
	publicLimiter := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), nil)
	// Stream transitions come from streaming software, not browsers. Keep a
	// tighter per-IP budget there.
	streamLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.GET("/channel/:id", publicLimiter, m.Handler.Show)
	rg.GET("/streams/live", publicLimiter, m.Handler.ListLive)
	rg.POST("/search", publicLimiter, m.Handler.Search)
	rg.POST("/stream/start", streamLimiter, m.Handler.StartStream)
	rg.POST("/stream/end", streamLimiter, m.Handler.EndStream)

	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.PUT("/channel", m.Handler.Update)
		auth.POST("/channel/key", m.Handler.RegenerateKey)
		auth.POST("/channel/stream/end", m.Handler.EndOwnStream)
	}
}
