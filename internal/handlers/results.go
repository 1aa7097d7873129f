package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"profile-pulse-backend/internal/feedback"
	"profile-pulse-backend/internal/models"
	"profile-pulse-backend/internal/supabase"
)

type ResultsHandler struct {
	dbClient *supabase.DatabaseClient
}

func NewResultsHandler(dbClient *supabase.DatabaseClient) *ResultsHandler {
	return &ResultsHandler{dbClient: dbClient}
}

// GetResult godoc
// @Summary     Get the analysis result for a session
// @Description Returns the normalized result of the most recent completed
// @Description analysis: the category score breakdown, the overall grade,
// @Description and the feedback split into per-photo sections.
// @Tags        results
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {object} models.ResultResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/result [get]
func (h *ResultsHandler) GetResult(c *gin.Context) {
	result, ok := h.loadResult(c)
	if !ok {
		return
	}

	var categories []feedback.CategoryScore
	if len(result.Scores) > 0 {
		if err := json.Unmarshal(result.Scores, &categories); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "failed to decode stored scores",
				Message: err.Error(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, models.ResultResponse{
		SessionID:  result.SessionID.String(),
		Categories: categories,
		Average:    result.Average,
		Letter:     result.Letter,
		Tone:       result.Tone,
		Sections:   feedback.SplitSections(result.Feedback),
	})
}

// ExportResult godoc
// @Summary     Export the feedback as plain text
// @Description Renders the stored feedback as a downloadable text file. Each
// @Description photo section becomes a titled block; a result with a single
// @Description section is exported without a heading.
// @Tags        results
// @Produce     plain
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Success     200 {string} string "Plain text export"
// @Failure     404 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/result/export [get]
func (h *ResultsHandler) ExportResult(c *gin.Context) {
	result, ok := h.loadResult(c)
	if !ok {
		return
	}

	text := feedback.FormatExport(feedback.SplitSections(result.Feedback))
	filename := fmt.Sprintf("results-%d.txt", time.Now().Unix())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

func (h *ResultsHandler) loadResult(c *gin.Context) (*models.SessionResult, bool) {
	if !databaseAvailable(c, h.dbClient) {
		return nil, false
	}

	userID, ok := requestUserID(c)
	if !ok {
		return nil, false
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return nil, false
	}

	if _, err := h.dbClient.GetSession(sessionID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "session not found",
			Message: err.Error(),
		})
		return nil, false
	}

	result, err := h.dbClient.GetResult(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "no result for session",
			Message: err.Error(),
		})
		return nil, false
	}
	return result, true
}
