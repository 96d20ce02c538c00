package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/service"
)

type TopicHandler struct {
	svc *service.TopicService
}

func NewTopicHandler(svc *service.TopicService) *TopicHandler {
	return &TopicHandler{svc: svc}
}

type createTopicRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category" binding:"required"`
	ImportanceLevel string  `json:"importance_level"`
	IconEmoji       *string `json:"icon_emoji"`
}

// POST /api/topics
func (h *TopicHandler) Create(c *gin.Context) {
	var req createTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topic := &entities.Topic{
		ID:              uuid.New(),
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		ImportanceLevel: req.ImportanceLevel,
		IconEmoji:       req.IconEmoji,
		IsActive:        true,
	}
	if err := h.svc.CreateTopic(c.Request.Context(), topic); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTopicResponse(topic))
}

// GET /api/topics
func (h *TopicHandler) List(c *gin.Context) {
	activeOnly := c.Query("include_inactive") != "true"
	topics, err := h.svc.ListTopics(c.Request.Context(), c.Query("category"), activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"topics": toTopicResponses(topics)})
}

// GET /api/topics/:id
func (h *TopicHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	topic, err := h.svc.GetTopic(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTopicResponse(topic))
}

type updateTopicRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category" binding:"required"`
	ImportanceLevel string  `json:"importance_level"`
	IconEmoji       *string `json:"icon_emoji"`
	IsActive        bool    `json:"is_active"`
}

// PUT /api/topics/:id
func (h *TopicHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateTopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	topic := &entities.Topic{
		ID:              id,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		ImportanceLevel: req.ImportanceLevel,
		IconEmoji:       req.IconEmoji,
		IsActive:        req.IsActive,
	}
	if err := h.svc.UpdateTopic(c.Request.Context(), topic); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTopicResponse(topic))
}

// DELETE /api/topics/:id
func (h *TopicHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteTopic(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type createSubtopicRequest struct {
	Name                 string      `json:"name" binding:"required"`
	Description          string      `json:"description"`
	OrderIndex           int         `json:"order_index" binding:"required"`
	EstimatedTimeMinutes int         `json:"estimated_time_minutes"`
	Prerequisites        []uuid.UUID `json:"prerequisites"`
	DifficultyLevel      int         `json:"difficulty_level"`
}

// POST /api/topics/:id/subtopics
func (h *TopicHandler) CreateSubtopic(c *gin.Context) {
	topicID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req createSubtopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subtopic := &entities.Subtopic{
		ID:                   uuid.New(),
		TopicID:              topicID,
		Name:                 req.Name,
		Description:          req.Description,
		OrderIndex:           req.OrderIndex,
		EstimatedTimeMinutes: req.EstimatedTimeMinutes,
		Prerequisites:        req.Prerequisites,
		DifficultyLevel:      req.DifficultyLevel,
		IsActive:             true,
	}
	if err := h.svc.CreateSubtopic(c.Request.Context(), subtopic); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSubtopicResponse(subtopic))
}

// GET /api/topics/:id/subtopics
func (h *TopicHandler) ListSubtopics(c *gin.Context) {
	topicID, ok := pathID(c, "id")
	if !ok {
		return
	}

	activeOnly := c.Query("include_inactive") != "true"
	subtopics, err := h.svc.ListSubtopics(c.Request.Context(), topicID, activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"subtopics": toSubtopicResponses(subtopics)})
}

// GET /api/subtopics/:id
func (h *TopicHandler) GetSubtopic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	subtopic, err := h.svc.GetSubtopic(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubtopicResponse(subtopic))
}

type updateSubtopicRequest struct {
	Name                 string      `json:"name" binding:"required"`
	Description          string      `json:"description"`
	OrderIndex           int         `json:"order_index" binding:"required"`
	EstimatedTimeMinutes int         `json:"estimated_time_minutes"`
	Prerequisites        []uuid.UUID `json:"prerequisites"`
	DifficultyLevel      int         `json:"difficulty_level"`
	IsActive             bool        `json:"is_active"`
}

// PUT /api/subtopics/:id
func (h *TopicHandler) UpdateSubtopic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req updateSubtopicRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subtopic, err := h.svc.GetSubtopic(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	subtopic.Name = req.Name
	subtopic.Description = req.Description
	subtopic.OrderIndex = req.OrderIndex
	subtopic.EstimatedTimeMinutes = req.EstimatedTimeMinutes
	subtopic.Prerequisites = req.Prerequisites
	subtopic.DifficultyLevel = req.DifficultyLevel
	subtopic.IsActive = req.IsActive

	if err := h.svc.UpdateSubtopic(c.Request.Context(), subtopic); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubtopicResponse(subtopic))
}

// DELETE /api/subtopics/:id
func (h *TopicHandler) DeleteSubtopic(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteSubtopic(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

type subscribeRequest struct {
	TopicID  uuid.UUID `json:"topic_id" binding:"required"`
	Priority int       `json:"priority"`
}

// POST /api/subscriptions
func (h *TopicHandler) Subscribe(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ut, err := h.svc.Subscribe(c.Request.Context(), uid, req.TopicID, req.Priority)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toSubscriptionResponse(ut))
}

// GET /api/subscriptions
func (h *TopicHandler) ListSubscriptions(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	activeOnly := c.Query("include_inactive") != "true"
	subs, err := h.svc.ListSubscriptions(c.Request.Context(), uid, activeOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]subscriptionResponse, 0, len(subs))
	for _, ut := range subs {
		out = append(out, toSubscriptionResponse(ut))
	}
	c.JSON(http.StatusOK, gin.H{"subscriptions": out})
}

type updateSubscriptionRequest struct {
	Priority int  `json:"priority"`
	IsActive bool `json:"is_active"`
}

// PUT /api/subscriptions/:topicID
func (h *TopicHandler) UpdateSubscription(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	topicID, ok := pathID(c, "topicID")
	if !ok {
		return
	}

	var req updateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ut, err := h.svc.UpdateSubscription(c.Request.Context(), uid, topicID, req.Priority, req.IsActive)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSubscriptionResponse(ut))
}
