package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/ai-tarot/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestIDMiddleware(),
		requestLogger(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(handler.logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/cards", handler.Catalog)

		rd := api.Group("/reading")
		rd.GET("", handler.Snapshot)
		rd.POST("/begin", handler.BeginReading)
		rd.POST("/continue", handler.ContinueToQuestions)
		rd.PUT("/detail", handler.SetReadingDetail)
		rd.POST("/answers", handler.AdvanceQuestion)
		rd.POST("/back", handler.RetreatQuestion)
		rd.POST("/hand", handler.DrawRandomHand)
		rd.POST("/selection/toggle", handler.ToggleCard)
		rd.POST("/selection/submit", handler.SubmitManualSelection)
		rd.POST("/interpretation", handler.RequestInterpretation)
		rd.DELETE("/error", handler.DismissError)
		rd.POST("/reset", handler.Reset)
		rd.POST("/save", handler.SaveReading)

		auth := api.Group("/auth")
		auth.POST("/login", handler.Login)
		auth.POST("/register", handler.Register)
		auth.POST("/logout", handler.Logout)
		auth.GET("/status", handler.AuthStatus)

		api.GET("/profile", handler.Profile)
		api.GET("/readings", handler.ListReadings)
		api.GET("/readings/:id", handler.GetReading)
		api.DELETE("/readings/:id", handler.DeleteReading)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
