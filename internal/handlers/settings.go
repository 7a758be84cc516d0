package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/services"
	"github.com/readwave/readwave-backend/internal/sse"
)

type SettingsHandler struct {
	log      *logger.Logger
	settings services.SettingsService
	hub      *sse.SSEHub
}

func NewSettingsHandler(log *logger.Logger, settings services.SettingsService, hub *sse.SSEHub) *SettingsHandler {
	return &SettingsHandler{
		log:      log.With("handler", "SettingsHandler"),
		settings: settings,
		hub:      hub,
	}
}

// GET /api/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	RespondOK(c, h.settings.Get(c.Request.Context(), userID))
}

// PUT /api/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var body map[string]bool
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	updated := h.settings.Update(c.Request.Context(), userID, body)
	h.hub.Broadcast(sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   sse.SSEEventSettingsUpdated,
		Data:    updated,
	})
	RespondOK(c, updated)
}
