package router

import (
	"github.com/streamnest/streamnest/internal/application"
	"github.com/streamnest/streamnest/internal/container"
	pginfra "github.com/streamnest/streamnest/internal/infrastructure/postgres"
	handlers "github.com/streamnest/streamnest/internal/interface/http"
	"github.com/streamnest/streamnest/internal/router/modules"
)

// InitModules builds every repository, service and handler from the container
// singletons and registers the feature modules with the router registry.
// Called once during application startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	follows := pginfra.NewFollowRepository(pool)
	channels := pginfra.NewChannelRepository(pool)
	messages := pginfra.NewMessageRepository(pool)
	audit := pginfra.NewAuditRepository(pool)

	userSvc := &application.UserService{
		Repo:         users,
		JWT:          container.GetJWT(),
		GCS:          container.GetGCS(),
		GCSBucket:    cfg.GCSBucket,
		Redis:        container.GetRedis(),
		Logger:       logger,
		ES:           container.GetES(),
		ESUsersIndex: cfg.ESUsersIndex,
		Mail:         container.GetEmailPub(),
		MailEnabled:  cfg.MailSendEnabled,
	}
	followSvc := &application.FollowService{
		Users:   users,
		Follows: follows,
		Audit:   audit,
		Logger:  logger,
	}
	channelSvc := &application.ChannelService{
		Channels:       channels,
		Users:          users,
		GCS:            container.GetGCS(),
		GCSBucket:      cfg.GCSBucket,
		Logger:         logger,
		KeyMaxAttempts: cfg.StreamKeyMaxAttempts,
	}
	dirSvc := &application.DirectoryService{Users: users, Channels: channels}
	chatSvc := &application.ChatService{
		Users:    users,
		Messages: messages,
		Pub:      container.GetChatPub(),
		Logger:   logger,
	}

	authHandler := handlers.NewAuthHandler(userSvc, audit, logger, cfg.CookieDomain, cfg.CookieSecure)
	userHandler := handlers.NewUserHandler(userSvc, logger, cfg.CookieDomain, cfg.CookieSecure)
	followHandler := handlers.NewFollowHandler(followSvc, dirSvc, logger)
	channelHandler := handlers.NewChannelHandler(channelSvc, dirSvc, logger)
	chatHandler := handlers.NewChatHandler(chatSvc, logger)

	jwt := container.GetJWT()
	r.Add(modules.NewAuthModule(authHandler, jwt))
	r.Add(modules.NewUserModule(userHandler, jwt))
	r.Add(modules.NewFollowModule(followHandler, jwt))
	r.Add(modules.NewChannelModule(channelHandler, jwt))
	r.Add(modules.NewChatModule(chatHandler, jwt))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
