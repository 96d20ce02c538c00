package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thestackdev/loop/internal/service"
)

type ResetHandler struct {
	svc *service.ResetService
}

func NewResetHandler(svc *service.ResetService) *ResetHandler {
	return &ResetHandler{svc: svc}
}

// DELETE /api/account/data
//
// Wipes the caller's progress, sessions and feed history and deactivates
// their subscriptions. Irreversible.
func (h *ResetHandler) Reset(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}

	if err := h.svc.ResetUser(c.Request.Context(), uid); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
