package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/streamnest/streamnest/internal/container"
	handlers "github.com/streamnest/streamnest/internal/interface/http"
	"github.com/streamnest/streamnest/internal/interface/middleware"
	"github.com/streamnest/streamnest/pkg/helpers"
)

// ChatModule wires the chat routes, all protected.

type ChatModule struct {
	Handler *handlers.ChatHandler
	JWT     *helpers.JWTManager
}

func NewChatModule(h *handlers.ChatHandler, jwt *helpers.JWTManager) *ChatModule {
	return &ChatModule{Handler: h, JWT: jwt}
}

func (m *ChatModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/messages", m.Handler.Send)
		auth.GET("/messages/:id", m.Handler.History)
	}
}
