package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adskoe96/adsk-chat/internal/auth"
	"github.com/adskoe96/adsk-chat/internal/config"
	"github.com/adskoe96/adsk-chat/internal/core"
	"github.com/adskoe96/adsk-chat/internal/store"
)

// NewServer builds the HTTP server: the WebSocket endpoint plus, in accounts
// mode, the REST account API.
func NewServer(hub *core.Hub, authService *auth.Service, accounts store.AccountStore, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/ws", gin.WrapH(NewWSHandler(hub, authService, logger)))

	if hub.Mode() == core.ModeAccounts {
		handlers := NewAPIHandlers(authService, accounts, logger)

		api := router.Group("/api")
		api.POST("/register", handlers.Register)
		api.POST("/login", handlers.Login)

		authed := api.Group("", AuthMiddleware(authService, logger))
		authed.GET("/me", handlers.Me)
		authed.PUT("/me", handlers.UpdateProfile)
		authed.PUT("/me/avatar", handlers.UpdateAvatar)
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
