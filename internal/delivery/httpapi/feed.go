package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thestackdev/loop/internal/service"
)

type FeedHandler struct {
	svc         *service.FeedService
	historyDays int
}

func NewFeedHandler(svc *service.FeedService, historyDays int) *FeedHandler {
	if historyDays <= 0 {
		historyDays = 30
	}
	return &FeedHandler{svc: svc, historyDays: historyDays}
}

// POST /api/feed/generate
//
// Idempotent: repeated calls on the same day return the same entry. A 200
// with a null feed means there is nothing eligible to study today.
func (h *FeedHandler) Generate(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	feed, err := h.svc.GenerateDailyFeed(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	if feed == nil {
		c.JSON(http.StatusOK, gin.H{"feed": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"feed": toFeedResponse(feed)})
}

// GET /api/feed/today
func (h *FeedHandler) Today(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	feed, err := h.svc.TodayFeed(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}
	if feed == nil {
		c.JSON(http.StatusOK, gin.H{"feed": nil})
		return
	}

	c.JSON(http.StatusOK, gin.H{"feed": toFeedResponse(feed)})
}

// POST /api/feed/:id/complete
func (h *FeedHandler) Complete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	feedID, ok := pathID(c, "id")
	if !ok {
		return
	}

	feed, err := h.svc.MarkFeedCompleted(c.Request.Context(), uid, feedID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feed": toFeedResponse(feed)})
}

// GET /api/feed/history
func (h *FeedHandler) History(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	days := h.historyDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid days"})
			return
		}
		days = n
	}

	feeds, err := h.svc.History(c.Request.Context(), uid, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"feeds": toFeedResponses(feeds)})
}

// GET /api/feed/streak
func (h *FeedHandler) Streak(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	streak, err := h.svc.Streak(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"streak_days": streak})
}
