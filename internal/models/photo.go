package models

import "github.com/google/uuid"

// MaxSessionPhotos is the fixed capacity of one feedback session. Historical
// clients shipped with 5 or 6; the service standardizes on 6. Requests past
// capacity are rejected, never truncated.
const MaxSessionPhotos = 6

// Photo asset statuses.
const (
	PhotoStatusReady     = "ready"
	PhotoStatusUploading = "uploading"
	PhotoStatusUploaded  = "uploaded"
	PhotoStatusFailed    = "failed"
)

// PhotoAsset is one user-submitted image moving through the
// prepare/upload/analyze pipeline. At most one upload is ever in flight per
// asset; Progress is monotonically non-decreasing within an attempt and reset
// to 0 only when a new attempt starts.
type PhotoAsset struct {
	ID           uuid.UUID
	Position     int
	Filename     string
	OriginalPath string
	StagedPath   string
	Status       string
	Progress     float64
	RemoteURL    string
	StoragePath  string
	MimeType     string
	FileSize     int64
	LastError    string
}

// StartUpload marks the beginning of a new upload attempt.
func (a *PhotoAsset) StartUpload() {
	a.Status = PhotoStatusUploading
	a.Progress = 0
	a.LastError = ""
}

// FinishUpload records a successful durable write. The remote URL is assigned
// exactly once per attempt and progress is forced to completion.
func (a *PhotoAsset) FinishUpload(storagePath, remoteURL string) {
	a.Status = PhotoStatusUploaded
	a.StoragePath = storagePath
	a.RemoteURL = remoteURL
	a.Progress = 1
}

// FailUpload records a failed durable write without touching other assets.
func (a *PhotoAsset) FailUpload(err error) {
	a.Status = PhotoStatusFailed
	a.LastError = err.Error()
}

// Replace returns the asset to the ready state after the user swaps the
// underlying image. Any previously assigned remote URL no longer describes
// the asset and is cleared.
func (a *PhotoAsset) Replace(filename, originalPath, stagedPath string, size int64) {
	a.Filename = filename
	a.OriginalPath = originalPath
	a.StagedPath = stagedPath
	a.FileSize = size
	a.Status = PhotoStatusReady
	a.Progress = 0
	a.RemoteURL = ""
	a.StoragePath = ""
	a.LastError = ""
}
