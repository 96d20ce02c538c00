package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/service"
)

type SessionHandler struct {
	svc *service.SessionService
}

func NewSessionHandler(svc *service.SessionService) *SessionHandler {
	return &SessionHandler{svc: svc}
}

type startSessionRequest struct {
	SubtopicID  uuid.UUID `json:"subtopic_id" binding:"required"`
	SessionType string    `json:"session_type" binding:"required"`
}

// POST /api/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req startSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.svc.Start(c.Request.Context(), uid, req.SubtopicID, entities.SessionType(req.SessionType))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSessionResponse(session))
}

type completeSessionRequest struct {
	Performance entities.SessionPerformance `json:"performance" binding:"required"`
}

// POST /api/sessions/:id/complete
//
// Closes the session and returns both the updated session and the progress
// record with its new review schedule.
func (h *SessionHandler) Complete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	sessionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req completeSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, progress, err := h.svc.Complete(c.Request.Context(), uid, sessionID, req.Performance)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session":  toSessionResponse(session),
		"progress": toProgressResponse(progress),
	})
}

// GET /api/sessions
func (h *SessionHandler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}

	sessions, err := h.svc.GetByUser(c.Request.Context(), uid, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"sessions": toSessionResponses(sessions)})
}
