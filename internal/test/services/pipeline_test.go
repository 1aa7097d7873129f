package services_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"profile-pulse-backend/internal/gemini"
	"profile-pulse-backend/internal/models"
	"profile-pulse-backend/internal/services"
)

// fakeStore records uploads and can fail selected object paths.
type fakeStore struct {
	uploads  []string
	failPath map[string]bool
}

func (s *fakeStore) Upload(objectPath string, data []byte, contentType string, onProgress func(float64)) (string, string, error) {
	if onProgress != nil {
		onProgress(0.5)
	}
	if s.failPath[objectPath] {
		return "", "", errors.New("storage unavailable")
	}
	s.uploads = append(s.uploads, objectPath)
	if onProgress != nil {
		onProgress(1)
	}
	return objectPath, "https://cdn.test/" + objectPath, nil
}

// failNthStore fails the nth upload attempt regardless of path.
type failNthStore struct {
	fakeStore
	calls   int
	failOn  int
	failErr error
}

func (s *failNthStore) Upload(objectPath string, data []byte, contentType string, onProgress func(float64)) (string, string, error) {
	s.calls++
	if s.calls == s.failOn {
		return "", "", s.failErr
	}
	return s.fakeStore.Upload(objectPath, data, contentType, onProgress)
}

// fakeAnalyzer answers per-image and batch calls without a network.
type fakeAnalyzer struct {
	batchResp *gemini.BatchAnalyzeResponse
	analyzed  []string
	emptyText bool
	err       error
}

func (a *fakeAnalyzer) Analyze(imageURL, prompt string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.analyzed = append(a.analyzed, imageURL)
	if a.emptyText {
		return "", nil
	}
	return "Generic advice for " + imageURL, nil
}

func (a *fakeAnalyzer) AnalyzeBatch(imageURLs []string, prompt string) (*gemini.BatchAnalyzeResponse, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.analyzed = append(a.analyzed, imageURLs...)
	return a.batchResp, nil
}

func (a *fakeAnalyzer) RetryWithBackoff(fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}

// fakeFiles serves staged bytes from memory.
type fakeFiles struct {
	data map[string][]byte
}

func (f *fakeFiles) ReadFile(path string) ([]byte, error) {
	if b, ok := f.data[path]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("no such staged file: %s", path)
}

// recordingSink captures progress for assertions.
type recordingSink struct {
	overall []float64
	phases  []string
}

func (s *recordingSink) PhotoUpdated(asset *models.PhotoAsset) {}

func (s *recordingSink) OverallProgress(phase string, fraction float64) {
	s.phases = append(s.phases, phase)
	s.overall = append(s.overall, fraction)
}

func newAssets(files *fakeFiles, n int) []*models.PhotoAsset {
	assets := make([]*models.PhotoAsset, n)
	for i := 0; i < n; i++ {
		path := fmt.Sprintf("/staged/photo-%d.jpg", i)
		files.data[path] = []byte(fmt.Sprintf("jpeg-bytes-%d", i))
		assets[i] = &models.PhotoAsset{
			ID:         uuid.New(),
			Position:   i,
			Filename:   fmt.Sprintf("photo-%d.jpg", i),
			StagedPath: path,
			Status:     models.PhotoStatusReady,
		}
	}
	return assets
}

func TestPipeline_UploadAll_FailureIsolated(t *testing.T) {
	files := &fakeFiles{data: map[string][]byte{}}
	assets := newAssets(files, 3)
	store := &failNthStore{failOn: 2, failErr: errors.New("storage unavailable")}

	pipeline := services.NewPipeline(store, &fakeAnalyzer{}, files, "prompt", false)
	uploaded := pipeline.UploadAll(assets, "photos/s1", nil)

	assert.Equal(t, 2, uploaded)
	assert.Equal(t, models.PhotoStatusUploaded, assets[0].Status)
	assert.Equal(t, models.PhotoStatusFailed, assets[1].Status)
	assert.Equal(t, "storage unavailable", assets[1].LastError)
	assert.Equal(t, models.PhotoStatusUploaded, assets[2].Status)
}

func TestPipeline_UploadAll_SkipsAlreadyUploaded(t *testing.T) {
	files := &fakeFiles{data: map[string][]byte{}}
	assets := newAssets(files, 3)
	assets[0].FinishUpload("photos/s1/existing.jpg", "https://cdn.test/existing.jpg")

	store := &fakeStore{}
	pipeline := services.NewPipeline(store, &fakeAnalyzer{}, files, "prompt", false)
	uploaded := pipeline.UploadAll(assets, "photos/s1", nil)

	assert.Equal(t, 3, uploaded)
	// Only the two pending assets hit the store.
	assert.Len(t, store.uploads, 2)
	assert.Equal(t, "https://cdn.test/existing.jpg", assets[0].RemoteURL)
}

func TestPipeline_UploadAll_MissingStagedFileFails(t *testing.T) {
	files := &fakeFiles{data: map[string][]byte{}}
	assets := newAssets(files, 2)
	assets[1].StagedPath = "/staged/gone.jpg"

	store := &fakeStore{}
	pipeline := services.NewPipeline(store, &fakeAnalyzer{}, files, "prompt", false)
	uploaded := pipeline.UploadAll(assets, "photos/s1", nil)

	assert.Equal(t, 1, uploaded)
	assert.Equal(t, models.PhotoStatusFailed, assets[1].Status)
	assert.Contains(t, assets[1].LastError, "failed to read staged photo")
}

func TestPipeline_Run_PerImage(t *testing.T) {
	files := &fakeFiles{data: map[string][]byte{}}
	assets := newAssets(files, 3)
	analyzer := &fakeAnalyzer{}

	pipeline := services.NewPipeline(&fakeStore{}, analyzer, files, "prompt", false)
	outcome, err := pipeline.Run(assets, "photos/s1", "", nil)

	require.NoError(t, err)
	assert.Len(t, analyzer.analyzed, 3)
	assert.Len(t, outcome.Sections, 3)
	assert.Equal(t, "Photo 1", outcome.Sections[0].Title)
	assert.Equal(t, "Photo 3", outcome.Sections[2].Title)
	// Scores come from canonical defaults in per-image mode.
	assert.NotEmpty(t, outcome.Categories)
	assert.NotEmpty(t, outcome.Summary.Letter)
}

func TestPipeline_Run_PerImage_EmptyResultPlaceholder(t *testing.T) {
	files := &fakeFiles{data: map[string][]byte{}}
	assets := newAssets(files, 1)
	analyzer := &fakeAnalyzer{emptyText: true}

	pipeline := services.NewPipeline(&fakeStore{}, analyzer, files, "prompt", false)
	outcome, err := pipeline.Run(assets, "photos/s1", "", nil)

	require.NoError(t, err)
	require.Len(t, outcome.Sections, 1)
	assert.Equal(t, "No feedback.", outcome.Sections[0].Body)
}

func TestPipeline_Run_Batch(t *testing.T) {
	files := &fakeFiles{data: map[string][]byte{}}
	assets := newAssets(files, 2)
	analyzer := &fakeAnalyzer{
		batchResp: &gemini.BatchAnalyzeResponse{
			Result: "Photo 1:\nFirst.\n\nPhoto 2:\nSecond.",
			Scores: []byte(`[{"label":"Bio Clarity","score":9}]`),
		},
	}

	pipeline := services.NewPipeline(&fakeStore{}, analyzer, files, "prompt", true)
	outcome, err := pipeline.Run(assets, "photos/s1", "", nil)

	require.NoError(t, err)
	assert.Len(t, outcome.Sections, 2)

	byLabel := map[string]float64{}
	for _, c := range outcome.Categories {
		byLabel[c.Label] = c.Score
	}
	assert.Equal(t, 9.0, byLabel["Bio Clarity"])
}

// storeFunc adapts a function to the ObjectStore interface.
type storeFunc func(objectPath string, data []byte, contentType string, onProgress func(float64)) (string, string, error)

func (f storeFunc) Upload(objectPath string, data []byte, contentType string, onProgress func(float64)) (string, string, error) {
	return f(objectPath, data, contentType, onProgress)
}

func TestPipeline_Run_NoUploads(t *testing.T) {
	files := &fakeFiles{data: map[string][]byte{}}
	assets := newAssets(files, 2)
	alwaysFail := storeFunc(func(objectPath string, data []byte, contentType string, onProgress func(float64)) (string, string, error) {
		return "", "", errors.New("storage unavailable")
	})

	pipeline := services.NewPipeline(alwaysFail, &fakeAnalyzer{}, files, "prompt", false)
	_, err := pipeline.Run(assets, "photos/s1", "", nil)

	assert.ErrorIs(t, err, services.ErrNoUploads)
	assert.Equal(t, models.PhotoStatusFailed, assets[0].Status)
	assert.Equal(t, models.PhotoStatusFailed, assets[1].Status)
}

func TestPipeline_Run_AnalyzerFailurePropagates(t *testing.T) {
	files := &fakeFiles{data: map[string][]byte{}}
	assets := newAssets(files, 1)
	analyzer := &fakeAnalyzer{err: errors.New("backend exploded")}

	pipeline := services.NewPipeline(&fakeStore{}, analyzer, files, "prompt", false)
	_, err := pipeline.Run(assets, "photos/s1", "", nil)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "backend exploded")
	// The upload still completed; retrying later skips it.
	assert.Equal(t, models.PhotoStatusUploaded, assets[0].Status)
}

func TestPipeline_Run_ProgressPhases(t *testing.T) {
	files := &fakeFiles{data: map[string][]byte{}}
	assets := newAssets(files, 2)
	sink := &recordingSink{}

	pipeline := services.NewPipeline(&fakeStore{}, &fakeAnalyzer{}, files, "prompt", false)
	_, err := pipeline.Run(assets, "photos/s1", "", sink)
	require.NoError(t, err)

	// Progress never regresses and ends at 1.0.
	last := -1.0
	for _, f := range sink.overall {
		assert.GreaterOrEqual(t, f, last)
		last = f
	}
	assert.Equal(t, 1.0, sink.overall[len(sink.overall)-1])

	// Upload phase stays within its 80% share; analysis owns the rest.
	sawAnalyzing := false
	for i, phase := range sink.phases {
		if phase == services.PhaseUploading {
			assert.False(t, sawAnalyzing, "upload tick after analysis started")
			assert.LessOrEqual(t, sink.overall[i], 0.8)
		} else {
			sawAnalyzing = true
			assert.GreaterOrEqual(t, sink.overall[i], 0.8)
		}
	}
	assert.True(t, sawAnalyzing)
}
