package supabase

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"profile-pulse-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (d *DatabaseClient) CreateSession(sessionID, userID uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := d.db.QueryRow(`
		INSERT INTO sessions (id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, status, progress, error_message, created_at, updated_at
	`, sessionID, userID, models.SessionStatusIdle).Scan(
		&session.ID, &session.UserID, &session.Status,
		&session.Progress, &session.ErrorMessage, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &session, nil
}

func (d *DatabaseClient) GetSession(sessionID, userID uuid.UUID) (*models.Session, error) {
	var session models.Session
	err := d.db.QueryRow(`
		SELECT id, user_id, status, progress, error_message, created_at, updated_at
		FROM sessions
		WHERE id = $1 AND user_id = $2
	`, sessionID, userID).Scan(
		&session.ID, &session.UserID, &session.Status,
		&session.Progress, &session.ErrorMessage, &session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

func (d *DatabaseClient) ListSessions(userID uuid.UUID) ([]models.Session, error) {
	rows, err := d.db.Query(`
		SELECT id, user_id, status, progress, error_message, created_at, updated_at
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var session models.Session
		err := rows.Scan(
			&session.ID, &session.UserID, &session.Status,
			&session.Progress, &session.ErrorMessage, &session.CreatedAt, &session.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

func (d *DatabaseClient) UpdateSessionStatus(sessionID uuid.UUID, status string, progress int) error {
	_, err := d.db.Exec(`
		UPDATE sessions
		SET status = $1, progress = $2, error_message = NULL, updated_at = NOW()
		WHERE id = $3
	`, status, progress, sessionID)
	return err
}

func (d *DatabaseClient) UpdateSessionError(sessionID uuid.UUID, errorMsg string) error {
	_, err := d.db.Exec(`
		UPDATE sessions
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2
	`, errorMsg, sessionID)
	return err
}

func (d *DatabaseClient) DeleteSession(sessionID, userID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM sessions
		WHERE id = $1 AND user_id = $2
	`, sessionID, userID)
	return err
}

func (d *DatabaseClient) CreatePhoto(photo *models.SessionPhoto) error {
	_, err := d.db.Exec(`
		INSERT INTO session_photos (id, session_id, user_id, position, filename, original_path, staged_path, status, progress, mime_type, file_size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, photo.ID, photo.SessionID, photo.UserID, photo.Position, photo.Filename,
		photo.OriginalPath, photo.StagedPath, photo.Status, photo.Progress,
		photo.MimeType, photo.FileSize)
	return err
}

func (d *DatabaseClient) GetPhoto(photoID, sessionID uuid.UUID) (*models.SessionPhoto, error) {
	var photo models.SessionPhoto
	err := d.db.QueryRow(`
		SELECT id, session_id, user_id, position, filename, original_path, staged_path, status, progress, storage_path, storage_url, mime_type, file_size, last_error, created_at, updated_at
		FROM session_photos
		WHERE id = $1 AND session_id = $2
	`, photoID, sessionID).Scan(
		&photo.ID, &photo.SessionID, &photo.UserID, &photo.Position, &photo.Filename,
		&photo.OriginalPath, &photo.StagedPath, &photo.Status, &photo.Progress,
		&photo.StoragePath, &photo.StorageURL, &photo.MimeType, &photo.FileSize,
		&photo.LastError, &photo.CreatedAt, &photo.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return &photo, nil
}

// ListPhotos returns a session's photos in submission order. Pipeline batches
// depend on this ordering for deterministic progress and section numbering.
func (d *DatabaseClient) ListPhotos(sessionID uuid.UUID) ([]models.SessionPhoto, error) {
	rows, err := d.db.Query(`
		SELECT id, session_id, user_id, position, filename, original_path, staged_path, status, progress, storage_path, storage_url, mime_type, file_size, last_error, created_at, updated_at
		FROM session_photos
		WHERE session_id = $1
		ORDER BY position ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []models.SessionPhoto
	for rows.Next() {
		var photo models.SessionPhoto
		err := rows.Scan(
			&photo.ID, &photo.SessionID, &photo.UserID, &photo.Position, &photo.Filename,
			&photo.OriginalPath, &photo.StagedPath, &photo.Status, &photo.Progress,
			&photo.StoragePath, &photo.StorageURL, &photo.MimeType, &photo.FileSize,
			&photo.LastError, &photo.CreatedAt, &photo.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	return photos, nil
}

func (d *DatabaseClient) CountPhotos(sessionID uuid.UUID) (int, error) {
	var count int
	err := d.db.QueryRow(`
		SELECT COUNT(*) FROM session_photos WHERE session_id = $1
	`, sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

func (d *DatabaseClient) NextPhotoPosition(sessionID uuid.UUID) (int, error) {
	var next int
	err := d.db.QueryRow(`
		SELECT COALESCE(MAX(position), -1) + 1 FROM session_photos WHERE session_id = $1
	`, sessionID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to compute photo position: %w", err)
	}
	return next, nil
}

// SavePhotoState persists the pipeline's view of one asset after a status or
// progress change.
func (d *DatabaseClient) SavePhotoState(asset *models.PhotoAsset) error {
	_, err := d.db.Exec(`
		UPDATE session_photos
		SET status = $1, progress = $2,
		    storage_path = NULLIF($3, ''), storage_url = NULLIF($4, ''),
		    mime_type = NULLIF($5, ''), last_error = NULLIF($6, ''),
		    updated_at = NOW()
		WHERE id = $7
	`, asset.Status, asset.Progress, asset.StoragePath, asset.RemoteURL,
		asset.MimeType, asset.LastError, asset.ID)
	return err
}

// ReplacePhoto swaps the staged image behind an existing slot and resets its
// upload state.
func (d *DatabaseClient) ReplacePhoto(photo *models.SessionPhoto) error {
	_, err := d.db.Exec(`
		UPDATE session_photos
		SET filename = $1, original_path = $2, staged_path = $3, file_size = $4,
		    status = $5, progress = 0, storage_path = NULL, storage_url = NULL,
		    last_error = NULL, updated_at = NOW()
		WHERE id = $6
	`, photo.Filename, photo.OriginalPath, photo.StagedPath, photo.FileSize,
		models.PhotoStatusReady, photo.ID)
	return err
}

func (d *DatabaseClient) DeletePhoto(photoID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM session_photos
		WHERE id = $1
	`, photoID)
	return err
}

// SaveResult replaces any previous result for the session; results are
// recomputed from scratch, never patched.
func (d *DatabaseClient) SaveResult(result *models.SessionResult) error {
	_, err := d.db.Exec(`
		INSERT INTO session_results (id, session_id, feedback, scores, average, letter, tone)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE
		SET feedback = EXCLUDED.feedback, scores = EXCLUDED.scores,
		    average = EXCLUDED.average, letter = EXCLUDED.letter,
		    tone = EXCLUDED.tone, created_at = NOW()
	`, result.ID, result.SessionID, result.Feedback, []byte(result.Scores),
		result.Average, result.Letter, result.Tone)
	return err
}

func (d *DatabaseClient) GetResult(sessionID uuid.UUID) (*models.SessionResult, error) {
	var result models.SessionResult
	var scores []byte
	err := d.db.QueryRow(`
		SELECT id, session_id, feedback, scores, average, letter, tone, created_at
		FROM session_results
		WHERE session_id = $1
	`, sessionID).Scan(
		&result.ID, &result.SessionID, &result.Feedback, &scores,
		&result.Average, &result.Letter, &result.Tone, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}
	result.Scores = scores

	return &result, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
