package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/infra/postgres/repository"
	"github.com/thestackdev/loop/internal/service"
)

// userIDHeader identifies the acting user. Authentication is handled upstream
// of this service; the gateway injects the verified id.
const userIDHeader = "X-User-ID"

// userID extracts the acting user's id from the request, writing the error
// response itself when the header is missing or malformed.
func userID(c *gin.Context) (uuid.UUID, bool) {
	raw := c.GetHeader(userIDHeader)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + userIDHeader + " header"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid " + userIDHeader + " header"})
		return uuid.Nil, false
	}
	return id, true
}

// pathID parses a uuid path parameter, writing the error response on failure.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// respondError maps service and repository errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrTopicNotFound),
		errors.Is(err, repository.ErrSubtopicNotFound),
		errors.Is(err, repository.ErrSubscriptionNotFound),
		errors.Is(err, repository.ErrProgressNotFound),
		errors.Is(err, repository.ErrFeedNotFound),
		errors.Is(err, repository.ErrSessionNotFound),
		errors.Is(err, repository.ErrContentNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrTopicExists),
		errors.Is(err, repository.ErrSubtopicOrderTaken),
		errors.Is(err, repository.ErrAlreadySubscribed),
		errors.Is(err, service.ErrSessionCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidScore),
		errors.Is(err, service.ErrInvalidSessionType),
		errors.Is(err, service.ErrInvalidContentType),
		errors.Is(err, service.ErrPrerequisiteMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
