package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session statuses.
const (
	SessionStatusIdle      = "idle"
	SessionStatusUploading = "uploading"
	SessionStatusAnalyzing = "analyzing"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
)

type Session struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Status       string
	Progress     int
	ErrorMessage sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SessionPhoto struct {
	ID           uuid.UUID
	SessionID    uuid.UUID
	UserID       uuid.UUID
	Position     int
	Filename     string
	OriginalPath string
	StagedPath   string
	Status       string
	Progress     float64
	StoragePath  sql.NullString
	StorageURL   sql.NullString
	MimeType     sql.NullString
	FileSize     sql.NullInt64
	LastError    sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type SessionResult struct {
	ID        uuid.UUID
	SessionID uuid.UUID
	Feedback  string
	Scores    json.RawMessage
	Average   float64
	Letter    string
	Tone      string
	CreatedAt time.Time
}

// Asset converts a stored photo row into the runtime pipeline type.
func (p *SessionPhoto) Asset() *PhotoAsset {
	return &PhotoAsset{
		ID:           p.ID,
		Position:     p.Position,
		Filename:     p.Filename,
		OriginalPath: p.OriginalPath,
		StagedPath:   p.StagedPath,
		Status:       p.Status,
		Progress:     p.Progress,
		RemoteURL:    p.StorageURL.String,
		StoragePath:  p.StoragePath.String,
		MimeType:     p.MimeType.String,
		FileSize:     p.FileSize.Int64,
		LastError:    p.LastError.String,
	}
}
