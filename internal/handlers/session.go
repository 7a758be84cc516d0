package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/readwave/readwave-backend/internal/logger"
	"github.com/readwave/readwave-backend/internal/reader"
	"github.com/readwave/readwave-backend/internal/requestdata"
	"github.com/readwave/readwave-backend/internal/services"
)

type SessionHandler struct {
	log      *logger.Logger
	sessions services.ReadingSessionService
}

func NewSessionHandler(log *logger.Logger, sessions services.ReadingSessionService) *SessionHandler {
	return &SessionHandler{
		log:      log.With("handler", "SessionHandler"),
		sessions: sessions,
	}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusForbidden, "forbidden", fmt.Errorf("not authenticated"))
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// POST /api/books/:id/session
func (h *SessionHandler) StartSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	bookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_book_id", err)
		return
	}
	state, err := h.sessions.Start(c.Request.Context(), userID, bookID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "session_start_failed", err)
		return
	}
	RespondOK(c, state)
}

// GET /api/session/state
func (h *SessionHandler) GetState(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	state, err := h.sessions.State(userID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	RespondOK(c, state)
}

// POST /api/session/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var body struct {
		Direction        string `json:"direction"`
		KeepAudioPlaying bool   `json:"keep_audio_playing"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	var dir reader.Direction
	switch body.Direction {
	case "forward":
		dir = reader.Forward
	case "backward":
		dir = reader.Backward
	default:
		RespondError(c, http.StatusBadRequest, "invalid_direction", fmt.Errorf("direction must be forward or backward"))
		return
	}
	if err := h.sessions.Navigate(userID, dir, body.KeepAudioPlaying); err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	state, err := h.sessions.State(userID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	RespondOK(c, state)
}

// POST /api/session/segment
func (h *SessionHandler) JumpToSegment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var body struct {
		Index int `json:"index"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.sessions.JumpToSegment(c.Request.Context(), userID, body.Index); err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	state, err := h.sessions.State(userID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	RespondOK(c, state)
}

// POST /api/session/answer
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var body struct {
		QuestionID string `json:"question_id"`
		Answer     string `json:"answer"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	questionID := uuid.Nil
	if body.QuestionID != "" {
		var err error
		if questionID, err = uuid.Parse(body.QuestionID); err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_question_id", err)
			return
		}
	}
	if err := h.sessions.Answer(userID, questionID, body.Answer); err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	state, err := h.sessions.State(userID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	RespondOK(c, state)
}

// POST /api/session/tick
func (h *SessionHandler) Tick(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	var body struct {
		Position float64 `json:"position"`
		Ended    bool    `json:"ended"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.sessions.Tick(userID, body.Position, body.Ended); err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/session/audio/play
func (h *SessionHandler) PlayAudio(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.sessions.PlayAudio(userID); err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/session/audio/pause
func (h *SessionHandler) PauseAudio(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.sessions.PauseAudio(userID); err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DELETE /api/session
func (h *SessionHandler) EndSession(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	if err := h.sessions.End(userID); err != nil {
		RespondError(c, http.StatusNotFound, "no_active_session", err)
		return
	}
	c.Status(http.StatusNoContent)
}
