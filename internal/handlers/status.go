package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"profile-pulse-backend/internal/models"
	"profile-pulse-backend/internal/supabase"
)

type StatusHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewStatusHandler(dbClient *supabase.DatabaseClient) *StatusHandler {
	return &StatusHandler{dbClient: dbClient}
}

// GetStatus godoc
// @Summary     Get session status
// @Description Returns the session's current phase and overall progress.
// @Description Progress runs 0 to 80 while photos upload and 80 to 100 while
// @Description the analysis runs.
// @Tags        sessions
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.StatusResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/status [get]
func (h *StatusHandler) GetStatus(c *gin.Context) {
	if !databaseAvailable(c, h.dbClient) {
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}

	session, err := h.dbClient.GetSession(sessionID, userID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "session not found",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.StatusResponse{
		SessionID: session.ID.String(),
		Status:    session.Status,
		Progress:  session.Progress,
		UpdatedAt: session.UpdatedAt,
	})
}
