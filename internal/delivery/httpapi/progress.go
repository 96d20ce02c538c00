package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/service"
)

type ProgressHandler struct {
	svc *service.ProgressService
}

func NewProgressHandler(svc *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{svc: svc}
}

// GET /api/progress/subtopics/:id
func (h *ProgressHandler) GetSubtopicProgress(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	subtopicID, ok := pathID(c, "id")
	if !ok {
		return
	}

	progress, err := h.svc.GetOrCreate(c.Request.Context(), uid, subtopicID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProgressResponse(progress))
}

type recordPerformanceRequest struct {
	Performance entities.SessionPerformance `json:"performance" binding:"required"`
}

// POST /api/progress/subtopics/:id/performance
//
// Records a performance result directly, outside a session. The session
// endpoints are the usual path; this exists for backfill and clients that
// track study time themselves.
func (h *ProgressHandler) RecordPerformance(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	subtopicID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req recordPerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	progress, err := h.svc.RecordPerformance(c.Request.Context(), uid, subtopicID, req.Performance, 0)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toProgressResponse(progress))
}

// GET /api/progress/topics/:id
func (h *ProgressHandler) GetTopicProgress(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	topicID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.svc.GetByTopic(c.Request.Context(), uid, topicID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"progress": toProgressResponses(list)})
}

// GET /api/progress/topics/:id/summary
func (h *ProgressHandler) GetTopicSummary(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	topicID, ok := pathID(c, "id")
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), uid, topicID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

// GET /api/reviews/due
func (h *ProgressHandler) GetDueReviews(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	due, err := h.svc.DueReviews(c.Request.Context(), uid, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"due_reviews": toProgressResponses(due)})
}
