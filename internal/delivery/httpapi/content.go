package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/service"
)

type ContentHandler struct {
	svc *service.ContentService
}

func NewContentHandler(svc *service.ContentService) *ContentHandler {
	return &ContentHandler{svc: svc}
}

type generateContentRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// POST /api/subtopics/:id/content
func (h *ContentHandler) Generate(c *gin.Context) {
	subtopicID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req generateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content, err := h.svc.Generate(c.Request.Context(), subtopicID, entities.ContentType(req.ContentType))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toContentResponse(content))
}

// GET /api/content/:id
func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	content, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toContentResponse(content))
}

// GET /api/subtopics/:id/content
func (h *ContentHandler) List(c *gin.Context) {
	subtopicID, ok := pathID(c, "id")
	if !ok {
		return
	}

	list, err := h.svc.GetBySubtopic(c.Request.Context(), subtopicID, entities.ContentType(c.Query("type")))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": toContentResponses(list)})
}
