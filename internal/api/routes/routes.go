package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yoockh/studycounsel/internal/api/handlers"
	"github.com/yoockh/studycounsel/internal/api/middleware"
)

type Deps struct {
	Counselor *handlers.CounselorHandler
	Plan      *handlers.PlanHandler
	Profile   *handlers.ProfileHandler
	Chat      *handlers.ChatHandler
	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.POST("/chat", d.Chat.Ask)

	auth := api.Group("/")
	auth.Use(middleware.Identity())

	auth.GET("/profile", d.Profile.Me)
	auth.PUT("/profile", d.Profile.Update)

	counselor := auth.Group("/counselor")
	counselor.POST("/sessions", d.Counselor.CreateSession)
	counselor.GET("/sessions", d.Counselor.ListSessions)
	counselor.GET("/sessions/:session_id", d.Counselor.GetSession)
	counselor.GET("/sessions/:session_id/messages", d.Counselor.ListMessages)
	counselor.POST("/sessions/:session_id/message", d.Counselor.SendMessage)

	counselor.GET("/plan", d.Plan.Get)
	counselor.POST("/plan/update", d.Plan.Update)
}
