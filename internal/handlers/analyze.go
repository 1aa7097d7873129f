package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"profile-pulse-backend/internal/models"
	"profile-pulse-backend/internal/services"
	"profile-pulse-backend/internal/supabase"
)

type AnalyzeHandler struct {
	dbClient        *supabase.DatabaseClient
	analysisService *services.AnalysisService
}

func NewAnalyzeHandler(dbClient *supabase.DatabaseClient, analysisService *services.AnalysisService) *AnalyzeHandler {
	return &AnalyzeHandler{
		dbClient:        dbClient,
		analysisService: analysisService,
	}
}

// Analyze godoc
// @Summary     Upload all pending photos and analyze them
// @Description Runs the full pipeline for the session: every photo not yet
// @Description uploaded is pushed to storage sequentially, then the uploaded
// @Description URLs are sent to the analysis service and the response is
// @Description normalized into a category breakdown and per-photo feedback
// @Description sections. Photos that already uploaded on a previous attempt
// @Description are skipped, so retrying after a failure only redoes the
// @Description missing work. A photo whose upload fails is marked failed and
// @Description does not abort the rest of the batch.
// @Tags        analyze
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Param       request body models.AnalyzeRequest false "Optional prompt override"
// @Success     200 {object} models.ResultResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/analyze [post]
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	if !databaseAvailable(c, h.dbClient) {
		return
	}
	if h.analysisService == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "analysis unavailable",
			Message: "the server has no database configured",
		})
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

	var req models.AnalyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid request body",
				Message: err.Error(),
			})
			return
		}
	}

	outcome, err := h.analysisService.Run(session, req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSessionBusy):
			c.JSON(http.StatusConflict, models.ErrorResponse{
				Error:   "session is busy",
				Message: err.Error(),
			})
		case errors.Is(err, services.ErrNoPhotos):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "session has no photos",
				Message: err.Error(),
			})
		case errors.Is(err, services.ErrNoUploads):
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "no uploads completed",
				Message: "every photo failed to upload; fix the failed photos and try again",
			})
		default:
			c.JSON(http.StatusBadGateway, models.ErrorResponse{
				Error:   "analysis failed",
				Message: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, models.ResultResponse{
		SessionID:  session.ID.String(),
		Categories: outcome.Categories,
		Average:    outcome.Summary.Average,
		Letter:     outcome.Summary.Letter,
		Tone:       string(outcome.Summary.Tone),
		Sections:   outcome.Sections,
	})
}
