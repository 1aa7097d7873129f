package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"profile-pulse-backend/internal/middleware"
	"profile-pulse-backend/internal/models"
	"profile-pulse-backend/internal/services"
	"profile-pulse-backend/internal/supabase"
)

// BusyChecker reports whether an analysis run is in flight for a session.
// Mutating handlers consult it so a replace or delete cannot race the
// pipeline's writes to the same rows and staged files.
type BusyChecker interface {
	Busy(sessionID uuid.UUID) bool
}

type SessionsHandler struct {
	dbClient      *supabase.DatabaseClient
	storageClient *supabase.StorageClient
	staging       *services.Staging
	busy          BusyChecker
}

func NewSessionsHandler(dbClient *supabase.DatabaseClient, storageClient *supabase.StorageClient, staging *services.Staging, busy BusyChecker) *SessionsHandler {
	return &SessionsHandler{
		dbClient:      dbClient,
		storageClient: storageClient,
		staging:       staging,
		busy:          busy,
	}
}

func databaseAvailable(c *gin.Context, dbClient *supabase.DatabaseClient) bool {
	if dbClient != nil {
		return true
	}
	c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Error: "database not available"})
	return false
}

func sessionBusy(c *gin.Context, busy BusyChecker, sessionID uuid.UUID) bool {
	if busy == nil || !busy.Busy(sessionID) {
		return false
	}
	c.JSON(http.StatusConflict, models.ErrorResponse{
		Error:   "session is busy",
		Message: "an analysis is running for this session; wait for it to finish",
	})
	return true
}

func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	userIDStr, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(userIDStr.(string))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid user id"})
		return uuid.Nil, false
	}
	return userID, true
}

func sessionIDParam(c *gin.Context) (uuid.UUID, bool) {
	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid session id"})
		return uuid.Nil, false
	}
	return sessionID, true
}

func photoResponses(photos []models.SessionPhoto) []models.PhotoResponse {
	out := make([]models.PhotoResponse, len(photos))
	for i, p := range photos {
		out[i] = models.PhotoResponse{
			ID:        p.ID.String(),
			Position:  p.Position,
			Filename:  p.Filename,
			Status:    p.Status,
			Progress:  p.Progress,
			RemoteURL: p.StorageURL.String,
			FileSize:  p.FileSize.Int64,
			LastError: p.LastError.String,
		}
	}
	return out
}

// CreateSession godoc
// @Summary     Create a feedback session
// @Description Creates an empty photo-feedback session owned by the caller
// @Tags        sessions
// @Produce     json
// @Security    Bearer
// @Success     201 {object} models.SessionResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions [post]
func (h *SessionsHandler) CreateSession(c *gin.Context) {
	if !databaseAvailable(c, h.dbClient) {
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	session, err := h.dbClient.CreateSession(uuid.New(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create session",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, models.SessionResponse{
		ID:        session.ID.String(),
		Status:    session.Status,
		Progress:  session.Progress,
		Photos:    []models.PhotoResponse{},
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	})
}

// ListSessions godoc
// @Summary     List the caller's sessions
// @Tags        sessions
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.SessionListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /sessions [get]
func (h *SessionsHandler) ListSessions(c *gin.Context) {
	if !databaseAvailable(c, h.dbClient) {
		return
	}

	userID, ok := requestUserID(c)
	if !ok {
		return
	}

	sessions, err := h.dbClient.ListSessions(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list sessions",
			Message: err.Error(),
		})
		return
	}

	summaries := make([]models.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		count, _ := h.dbClient.CountPhotos(s.ID)
		summaries = append(summaries, models.SessionSummary{
			ID:         s.ID.String(),
			Status:     s.Status,
			Progress:   s.Progress,
			PhotoCount: count,
			CreatedAt:  s.CreatedAt,
			UpdatedAt:  s.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, models.SessionListResponse{Sessions: summaries})
}

// GetSession godoc
// @Summary     Get one session with its photos
// @Tags        sessions
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.SessionResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id} [get]
func (h *SessionsHandler) GetSession(c *gin.Context) {
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

	photos, err := h.dbClient.ListPhotos(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to list photos",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.SessionResponse{
		ID:           session.ID.String(),
		Status:       session.Status,
		Progress:     session.Progress,
		Photos:       photoResponses(photos),
		ErrorMessage: session.ErrorMessage.String,
		CreatedAt:    session.CreatedAt,
		UpdatedAt:    session.UpdatedAt,
	})
}

// DeleteSession godoc
// @Summary     Delete a session (start over)
// @Description Discards the session, its staged photos, and uploaded objects
// @Tags        sessions
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     204
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /sessions/{session_id} [delete]
func (h *SessionsHandler) DeleteSession(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	if sessionBusy(c, h.busy, sessionID) {
		return
	}
	if !databaseAvailable(c, h.dbClient) {
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

	// Cleanup is best-effort; losing an orphaned object is acceptable,
	// losing the delete is not.
	if err := h.storageClient.DeletePrefix("photos/" + session.ID.String()); err != nil {
		log.Printf("Warning: failed to delete stored photos for session %s: %v", session.ID, err)
	}
	if err := h.staging.RemoveSession(session.ID); err != nil {
		log.Printf("Warning: failed to clear staging for session %s: %v", session.ID, err)
	}

	if err := h.dbClient.DeleteSession(session.ID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete session",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
