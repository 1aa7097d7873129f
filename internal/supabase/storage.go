package supabase

import (
	"bytes"
	"fmt"
	"io"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient wraps Supabase Storage as the durable blob store for prepared
// photos. Objects are publicly retrievable once written.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceRoleKey, bucket string) (*StorageClient, error) {
	baseURL := supabaseURL
	if len(baseURL) > 0 && baseURL[len(baseURL)-1] == '/' {
		baseURL = baseURL[:len(baseURL)-1]
	}
	client := storage.NewClient(baseURL+"/storage/v1", serviceRoleKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// progressReader reports the fraction of bytes consumed by the transport.
// Fractions are non-decreasing; the final 1.0 tick is forced by the caller
// once the retrieval URL is resolved, so rounding here never strands a
// progress bar short of completion.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress func(float64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 && p.onProgress != nil {
		p.read += int64(n)
		frac := float64(p.read) / float64(p.total)
		if frac > 1 {
			frac = 1
		}
		p.onProgress(frac)
	}
	return n, err
}

// Upload writes the payload under objectPath and returns the storage path and
// public URL. onProgress, when non-nil, receives fractional transfer progress
// in [0,1] including a final forced 1.0.
func (s *StorageClient) Upload(objectPath string, data []byte, contentType string, onProgress func(float64)) (string, string, error) {
	upsert := true
	reader := &progressReader{
		r:          bytes.NewReader(data),
		total:      int64(len(data)),
		onProgress: onProgress,
	}

	_, err := s.client.UploadFile(s.bucket, objectPath, reader, storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload file: %w", err)
	}

	publicURL := s.GetPublicURL(objectPath)
	if onProgress != nil {
		onProgress(1)
	}

	return objectPath, publicURL, nil
}

func (s *StorageClient) GetPublicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}

func (s *StorageClient) DeleteFile(objectPath string) error {
	_, err := s.client.RemoveFile(s.bucket, []string{objectPath})
	return err
}

// DeletePrefix removes every object under a session's namespace. Used by the
// start-over flow; failures are the caller's to ignore.
func (s *StorageClient) DeletePrefix(prefix string) error {
	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list files: %w", err)
	}

	if len(files) > 0 {
		paths := make([]string, len(files))
		for i, file := range files {
			paths[i] = file.Name
		}
		if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
			return fmt.Errorf("failed to delete files: %w", err)
		}
	}

	return nil
}
