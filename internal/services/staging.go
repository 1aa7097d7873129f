package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"profile-pulse-backend/internal/imaging"
)

// ReadTimeout bounds reading a staged file into memory before upload.
const ReadTimeout = 30 * time.Second

// Staging holds picked photos on local disk between intake and upload: the
// untouched original plus the prepared (resized, re-encoded) copy the
// pipeline actually uploads. One directory per session.
type Staging struct {
	root    string
	timeout time.Duration
}

func NewStaging(root string) *Staging {
	return &Staging{root: root, timeout: ReadTimeout}
}

// StorePhoto writes the original bytes and the prepared encoding for one
// photo. Preparation failure is not an error; the prepared copy is then the
// original bytes.
func (s *Staging) StorePhoto(sessionID, photoID uuid.UUID, raw []byte) (originalPath, stagedPath string, stagedSize int64, err error) {
	dir := filepath.Join(s.root, sessionID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", 0, fmt.Errorf("failed to create staging dir: %w", err)
	}

	originalPath = filepath.Join(dir, photoID.String()+".orig")
	if err := os.WriteFile(originalPath, raw, 0o644); err != nil {
		return "", "", 0, fmt.Errorf("failed to stage original: %w", err)
	}

	prepared := imaging.Prepare(raw)
	stagedPath = filepath.Join(dir, photoID.String()+".jpg")
	if err := os.WriteFile(stagedPath, prepared, 0o644); err != nil {
		return "", "", 0, fmt.Errorf("failed to stage prepared photo: %w", err)
	}

	return originalPath, stagedPath, int64(len(prepared)), nil
}

// RemovePhoto discards both staged copies for one photo. Best effort.
func (s *Staging) RemovePhoto(originalPath, stagedPath string) {
	if originalPath != "" {
		os.Remove(originalPath)
	}
	if stagedPath != "" && stagedPath != originalPath {
		os.Remove(stagedPath)
	}
}

// RemoveSession discards the whole staging directory for a session.
func (s *Staging) RemoveSession(sessionID uuid.UUID) error {
	return os.RemoveAll(filepath.Join(s.root, sessionID.String()))
}

// ReadFile loads a staged file fully into memory, bounded by ReadTimeout so
// the upload batch fails the item with a descriptive error instead of
// hanging.
func (s *Staging) ReadFile(path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	type readResult struct {
		data []byte
		err  error
	}
	ch := make(chan readResult, 1)
	go func() {
		data, err := os.ReadFile(path)
		ch <- readResult{data: data, err: err}
	}()

	select {
	case r := <-ch:
		return r.data, r.err
	case <-ctx.Done():
		return nil, fmt.Errorf("timed out reading %s after %s", path, s.timeout)
	}
}
