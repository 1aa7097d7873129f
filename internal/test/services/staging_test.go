package services_test

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"profile-pulse-backend/internal/services"
)

func TestStaging_StorePhoto_UndecodableFallsBackToOriginal(t *testing.T) {
	staging := services.NewStaging(t.TempDir())
	sessionID := uuid.New()
	photoID := uuid.New()
	raw := []byte("not an image")

	originalPath, stagedPath, stagedSize, err := staging.StorePhoto(sessionID, photoID, raw)
	require.NoError(t, err)

	original, err := os.ReadFile(originalPath)
	require.NoError(t, err)
	staged, err := os.ReadFile(stagedPath)
	require.NoError(t, err)

	assert.Equal(t, raw, original)
	assert.Equal(t, raw, staged)
	assert.Equal(t, int64(len(raw)), stagedSize)
}

func TestStaging_ReadFile(t *testing.T) {
	staging := services.NewStaging(t.TempDir())
	sessionID := uuid.New()
	photoID := uuid.New()

	_, stagedPath, _, err := staging.StorePhoto(sessionID, photoID, []byte("payload"))
	require.NoError(t, err)

	data, err := staging.ReadFile(stagedPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), data)
}

func TestStaging_ReadFile_Missing(t *testing.T) {
	staging := services.NewStaging(t.TempDir())

	_, err := staging.ReadFile("/does/not/exist.jpg")
	assert.Error(t, err)
}

func TestStaging_RemoveSession(t *testing.T) {
	root := t.TempDir()
	staging := services.NewStaging(root)
	sessionID := uuid.New()

	_, stagedPath, _, err := staging.StorePhoto(sessionID, uuid.New(), []byte("payload"))
	require.NoError(t, err)

	require.NoError(t, staging.RemoveSession(sessionID))

	_, err = os.Stat(stagedPath)
	assert.True(t, os.IsNotExist(err))
}

func TestStaging_RemovePhoto(t *testing.T) {
	staging := services.NewStaging(t.TempDir())

	originalPath, stagedPath, _, err := staging.StorePhoto(uuid.New(), uuid.New(), []byte("payload"))
	require.NoError(t, err)

	staging.RemovePhoto(originalPath, stagedPath)

	_, err = os.Stat(originalPath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(stagedPath)
	assert.True(t, os.IsNotExist(err))
}
