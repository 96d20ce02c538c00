package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Topics   *TopicHandler
	Progress *ProgressHandler
	Sessions *SessionHandler
	Feed     *FeedHandler
	Content  *ContentHandler
	Reset    *ResetHandler
}

// NewRouter assembles the gin engine with all API routes.
func NewRouter(h Handlers, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	api.POST("/topics", h.Topics.Create)
	api.GET("/topics", h.Topics.List)
	api.GET("/topics/:id", h.Topics.Get)
	api.PUT("/topics/:id", h.Topics.Update)
	api.DELETE("/topics/:id", h.Topics.Delete)
	api.POST("/topics/:id/subtopics", h.Topics.CreateSubtopic)
	api.GET("/topics/:id/subtopics", h.Topics.ListSubtopics)
	api.GET("/subtopics/:id", h.Topics.GetSubtopic)
	api.PUT("/subtopics/:id", h.Topics.UpdateSubtopic)
	api.DELETE("/subtopics/:id", h.Topics.DeleteSubtopic)

	api.POST("/subscriptions", h.Topics.Subscribe)
	api.GET("/subscriptions", h.Topics.ListSubscriptions)
	api.PUT("/subscriptions/:topicID", h.Topics.UpdateSubscription)

	api.GET("/progress/subtopics/:id", h.Progress.GetSubtopicProgress)
	api.POST("/progress/subtopics/:id/performance", h.Progress.RecordPerformance)
	api.GET("/progress/topics/:id", h.Progress.GetTopicProgress)
	api.GET("/progress/topics/:id/summary", h.Progress.GetTopicSummary)
	api.GET("/reviews/due", h.Progress.GetDueReviews)

	api.POST("/sessions", h.Sessions.Start)
	api.POST("/sessions/:id/complete", h.Sessions.Complete)
	api.GET("/sessions", h.Sessions.List)

	api.POST("/feed/generate", h.Feed.Generate)
	api.GET("/feed/today", h.Feed.Today)
	api.POST("/feed/:id/complete", h.Feed.Complete)
	api.GET("/feed/history", h.Feed.History)
	api.GET("/feed/streak", h.Feed.Streak)

	api.POST("/subtopics/:id/content", h.Content.Generate)
	api.GET("/subtopics/:id/content", h.Content.List)
	api.GET("/content/:id", h.Content.Get)

	api.DELETE("/account/data", h.Reset.Reset)

	return r
}

// requestLogger logs each request with method, path, status and latency.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
