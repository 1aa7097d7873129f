package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"profile-pulse-backend/internal/models"
	"profile-pulse-backend/internal/services"
	"profile-pulse-backend/internal/supabase"
)

type PhotosHandler struct {
	dbClient *supabase.DatabaseClient
	staging  *services.Staging
	busy     BusyChecker
}

func NewPhotosHandler(dbClient *supabase.DatabaseClient, staging *services.Staging, busy BusyChecker) *PhotosHandler {
	return &PhotosHandler{
		dbClient: dbClient,
		staging:  staging,
		busy:     busy,
	}
}

func multipartPhotos(c *gin.Context) ([]*multipart.FileHeader, bool) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return nil, false
	}

	form := c.Request.MultipartForm
	if form == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: "multipart form is nil",
		})
		return nil, false
	}

	// Try multiple common field names
	var files []*multipart.FileHeader
	fieldNames := []string{"photos", "photo", "images", "image", "files", "file"}
	for _, fieldName := range fieldNames {
		if f := form.File[fieldName]; len(f) > 0 {
			files = f
			break
		}
	}

	if len(files) == 0 {
		availableFields := make([]string, 0, len(form.File))
		for fieldName := range form.File {
			availableFields = append(availableFields, fieldName)
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "no files uploaded",
			Message: fmt.Sprintf("please provide files with one of these field names: %v. Available fields in request: %v", fieldNames, availableFields),
		})
		return nil, false
	}

	return files, true
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read file data: %w", err)
	}
	return data, nil
}

// AddPhotos godoc
// @Summary     Add photos to a session
// @Description Accepts up to 6 images per session. Each image is optimized
// @Description on receipt (longest side capped at 1280px, JPEG re-encode)
// @Description and staged for upload; if optimization fails the original is
// @Description staged unchanged. Requests that would exceed capacity are
// @Description rejected, not truncated.
// @Tags        photos
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Param       photos formData file true "Images (multiple files allowed)"
// @Success     200 {object} models.AddPhotosResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/photos [post]
func (h *PhotosHandler) AddPhotos(c *gin.Context) {
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

	files, ok := multipartPhotos(c)
	if !ok {
		return
	}

	count, err := h.dbClient.CountPhotos(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to count photos",
			Message: err.Error(),
		})
		return
	}
	if count+len(files) > models.MaxSessionPhotos {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "too many photos",
			Message: fmt.Sprintf("session holds %d of %d photos; adding %d would exceed capacity", count, models.MaxSessionPhotos, len(files)),
		})
		return
	}

	position, err := h.dbClient.NextPhotoPosition(session.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to assign photo position",
			Message: err.Error(),
		})
		return
	}

	added := make([]models.SessionPhoto, 0, len(files))
	stageErrors := make([]string, 0)
	for _, file := range files {
		data, err := readUpload(file)
		if err != nil {
			stageErrors = append(stageErrors, fmt.Sprintf("%s: %v", file.Filename, err))
			continue
		}

		photoID := uuid.New()
		originalPath, stagedPath, stagedSize, err := h.staging.StorePhoto(session.ID, photoID, data)
		if err != nil {
			stageErrors = append(stageErrors, fmt.Sprintf("%s: %v", file.Filename, err))
			continue
		}

		photo := &models.SessionPhoto{
			ID:           photoID,
			SessionID:    session.ID,
			UserID:       userID,
			Position:     position,
			Filename:     file.Filename,
			OriginalPath: originalPath,
			StagedPath:   stagedPath,
			Status:       models.PhotoStatusReady,
		}
		photo.FileSize.Int64 = stagedSize
		photo.FileSize.Valid = true

		if err := h.dbClient.CreatePhoto(photo); err != nil {
			h.staging.RemovePhoto(originalPath, stagedPath)
			stageErrors = append(stageErrors, fmt.Sprintf("%s: %v", file.Filename, err))
			continue
		}

		added = append(added, *photo)
		position++
	}

	c.JSON(http.StatusOK, models.AddPhotosResponse{
		SessionID: session.ID.String(),
		Photos:    photoResponses(added),
		Errors:    stageErrors,
	})
}

// ReplacePhoto godoc
// @Summary     Replace one photo in a session
// @Description Swaps the image behind an existing slot. The slot returns to
// @Description the ready state and any previously assigned storage URL is
// @Description cleared; the next analyze run re-uploads it.
// @Tags        photos
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Param       photo_id path string true "Photo ID (UUID)"
// @Param       photo formData file true "Replacement image"
// @Success     200 {object} models.PhotoResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/photos/{photo_id} [put]
func (h *PhotosHandler) ReplacePhoto(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	photoID, err := uuid.Parse(c.Param("photo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid photo id"})
		return
	}
	if sessionBusy(c, h.busy, sessionID) {
		return
	}
	if !databaseAvailable(c, h.dbClient) {
		return
	}

	if _, err := h.dbClient.GetSession(sessionID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "session not found",
			Message: err.Error(),
		})
		return
	}

	photo, err := h.dbClient.GetPhoto(photoID, sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "photo not found",
			Message: err.Error(),
		})
		return
	}

	files, ok := multipartPhotos(c)
	if !ok {
		return
	}
	if len(files) != 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "expected exactly one file",
			Message: fmt.Sprintf("got %d files", len(files)),
		})
		return
	}

	data, err := readUpload(files[0])
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to read file",
			Message: err.Error(),
		})
		return
	}

	h.staging.RemovePhoto(photo.OriginalPath, photo.StagedPath)

	originalPath, stagedPath, stagedSize, err := h.staging.StorePhoto(sessionID, photo.ID, data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to stage photo",
			Message: err.Error(),
		})
		return
	}

	photo.Filename = files[0].Filename
	photo.OriginalPath = originalPath
	photo.StagedPath = stagedPath
	photo.FileSize.Int64 = stagedSize
	photo.FileSize.Valid = true

	if err := h.dbClient.ReplacePhoto(photo); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to replace photo",
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.PhotoResponse{
		ID:       photo.ID.String(),
		Position: photo.Position,
		Filename: photo.Filename,
		Status:   models.PhotoStatusReady,
		Progress: 0,
		FileSize: stagedSize,
	})
}

// DeletePhoto godoc
// @Summary     Remove one photo from a session
// @Tags        photos
// @Produce     json
// @Security    Bearer
// @Param       session_id path string true "Session ID (UUID)"
// @Param       photo_id path string true "Photo ID (UUID)"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /sessions/{session_id}/photos/{photo_id} [delete]
func (h *PhotosHandler) DeletePhoto(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(c)
	if !ok {
		return
	}
	photoID, err := uuid.Parse(c.Param("photo_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid photo id"})
		return
	}
	if sessionBusy(c, h.busy, sessionID) {
		return
	}
	if !databaseAvailable(c, h.dbClient) {
		return
	}

	if _, err := h.dbClient.GetSession(sessionID, userID); err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "session not found",
			Message: err.Error(),
		})
		return
	}

	photo, err := h.dbClient.GetPhoto(photoID, sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "photo not found",
			Message: err.Error(),
		})
		return
	}

	h.staging.RemovePhoto(photo.OriginalPath, photo.StagedPath)

	if err := h.dbClient.DeletePhoto(photo.ID); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to delete photo",
			Message: err.Error(),
		})
		return
	}

	c.Status(http.StatusNoContent)
}
