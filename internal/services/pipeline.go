package services

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"profile-pulse-backend/internal/feedback"
	"profile-pulse-backend/internal/gemini"
	"profile-pulse-backend/internal/models"
)

// Overall pipeline progress is one signal covering both phases: uploads own
// [0, 0.8] and analysis owns [0.8, 1.0], so the bar never regresses when the
// phase flips.
const uploadPhaseShare = 0.8

// Pipeline phases, also used as session statuses.
const (
	PhaseUploading = models.SessionStatusUploading
	PhaseAnalyzing = models.SessionStatusAnalyzing
)

// ErrNoUploads means no photo survived the upload phase, so there is nothing
// to send to the analysis service.
var ErrNoUploads = errors.New("no uploads completed")

// ObjectStore is the durable blob store collaborator.
type ObjectStore interface {
	Upload(objectPath string, data []byte, contentType string, onProgress func(float64)) (storagePath, publicURL string, err error)
}

// Analyzer is the remote analysis collaborator.
type Analyzer interface {
	Analyze(imageURL, prompt string) (string, error)
	AnalyzeBatch(imageURLs []string, prompt string) (*gemini.BatchAnalyzeResponse, error)
	RetryWithBackoff(fn func() error, maxRetries int) error
}

// FileSource reads staged photo bytes. Implementations bound the read so a
// wedged filesystem fails the item instead of hanging the batch.
type FileSource interface {
	ReadFile(path string) ([]byte, error)
}

// ProgressSink observes pipeline progress. All methods may be called many
// times; a nil sink is valid.
type ProgressSink interface {
	PhotoUpdated(asset *models.PhotoAsset)
	OverallProgress(phase string, fraction float64)
}

// Outcome is what the pipeline hands to the presentation boundary: the
// normalized category breakdown and the per-photo feedback sections.
type Outcome struct {
	Feedback   string
	Sections   []feedback.Section
	Categories []feedback.CategoryScore
	Summary    feedback.GradeSummary
}

// Pipeline runs the upload-analyze-normalize flow over one session's assets.
type Pipeline struct {
	store     ObjectStore
	analyzer  Analyzer
	files     FileSource
	prompt    string
	batchMode bool
}

func NewPipeline(store ObjectStore, analyzer Analyzer, files FileSource, prompt string, batchMode bool) *Pipeline {
	return &Pipeline{
		store:     store,
		analyzer:  analyzer,
		files:     files,
		prompt:    prompt,
		batchMode: batchMode,
	}
}

// Run uploads every pending asset, then analyzes the uploaded URLs.
// Individual upload failures are recorded on their assets and do not abort
// the batch; Run only fails when nothing uploaded or the analysis call
// itself fails. promptOverride replaces the configured prompt when non-empty.
func (p *Pipeline) Run(assets []*models.PhotoAsset, prefix, promptOverride string, sink ProgressSink) (*Outcome, error) {
	p.UploadAll(assets, prefix, sink)

	urls := make([]string, 0, len(assets))
	for _, a := range assets {
		if a.Status == models.PhotoStatusUploaded && a.RemoteURL != "" {
			urls = append(urls, a.RemoteURL)
		}
	}
	if len(urls) == 0 {
		return nil, ErrNoUploads
	}

	prompt := p.prompt
	if promptOverride != "" {
		prompt = promptOverride
	}
	return p.analyze(urls, prompt, sink)
}

// UploadAll pushes assets to the object store sequentially, in slice order.
// Sequential processing keeps overall progress deterministic and isolates one
// item's failure from the rest. Assets already uploaded are skipped, which
// makes re-running a partially failed batch idempotent. Returns the number of
// assets in the uploaded state afterward.
func (p *Pipeline) UploadAll(assets []*models.PhotoAsset, prefix string, sink ProgressSink) int {
	notifyOverall(sink, PhaseUploading, overallUploadProgress(assets))

	uploaded := 0
	for _, asset := range assets {
		if asset.Status == models.PhotoStatusUploaded {
			uploaded++
			continue
		}
		if err := p.uploadOne(asset, prefix, assets, sink); err == nil {
			uploaded++
		}
	}

	notifyOverall(sink, PhaseUploading, overallUploadProgress(assets))
	return uploaded
}

func (p *Pipeline) uploadOne(asset *models.PhotoAsset, prefix string, batch []*models.PhotoAsset, sink ProgressSink) error {
	asset.StartUpload()
	notifyPhoto(sink, asset)

	data, err := p.files.ReadFile(asset.StagedPath)
	if err != nil {
		asset.FailUpload(fmt.Errorf("failed to read staged photo: %w", err))
		notifyPhoto(sink, asset)
		return err
	}

	contentType, ext := sniffContentType(data)
	asset.MimeType = contentType
	objectPath := prefix + "/" + uuid.New().String() + ext

	storagePath, publicURL, err := p.store.Upload(objectPath, data, contentType, func(frac float64) {
		// Transport ticks are forwarded verbatim but never backward.
		if frac > asset.Progress {
			asset.Progress = frac
			notifyPhoto(sink, asset)
			notifyOverall(sink, PhaseUploading, overallUploadProgress(batch))
		}
	})
	if err != nil {
		asset.FailUpload(err)
		notifyPhoto(sink, asset)
		return err
	}

	asset.FinishUpload(storagePath, publicURL)
	notifyPhoto(sink, asset)
	notifyOverall(sink, PhaseUploading, overallUploadProgress(batch))
	return nil
}

func (p *Pipeline) analyze(urls []string, prompt string, sink ProgressSink) (*Outcome, error) {
	notifyOverall(sink, PhaseAnalyzing, uploadPhaseShare)

	var feedbackText string
	var scoresJSON string

	if p.batchMode {
		var resp *gemini.BatchAnalyzeResponse
		err := p.analyzer.RetryWithBackoff(func() error {
			var aerr error
			resp, aerr = p.analyzer.AnalyzeBatch(urls, prompt)
			return aerr
		}, 3)
		if err != nil {
			return nil, err
		}
		feedbackText = resp.Result
		scoresJSON = string(resp.Scores)
		notifyOverall(sink, PhaseAnalyzing, 1)
	} else {
		results := make([]string, 0, len(urls))
		for i, url := range urls {
			var text string
			err := p.analyzer.RetryWithBackoff(func() error {
				var aerr error
				text, aerr = p.analyzer.Analyze(url, prompt)
				return aerr
			}, 3)
			if err != nil {
				return nil, err
			}
			if text == "" {
				text = "No feedback."
			}
			results = append(results, fmt.Sprintf("Photo %d:\n%s", i+1, text))
			notifyOverall(sink, PhaseAnalyzing, uploadPhaseShare+(1-uploadPhaseShare)*float64(i+1)/float64(len(urls)))
		}
		feedbackText = joinSections(results)
	}

	categories := feedback.MergeScores(feedback.CanonicalCategories(), scoresJSON)
	return &Outcome{
		Feedback:   feedbackText,
		Sections:   feedback.SplitSections(feedbackText),
		Categories: categories,
		Summary:    feedback.Grade(categories),
	}, nil
}

func joinSections(results []string) string {
	out := ""
	for i, r := range results {
		if i > 0 {
			out += "\n\n"
		}
		out += r
	}
	return out
}

// sniffContentType derives the payload's content type from its bytes and the
// matching file extension for the object name. Undetectable payloads fall
// back to JPEG, which is what the preparation stage emits.
func sniffContentType(data []byte) (contentType, ext string) {
	m := mimetype.Detect(data)
	if m.Extension() == "" || m.String() == "application/octet-stream" {
		return "image/jpeg", ".jpg"
	}
	return m.String(), m.Extension()
}

func overallUploadProgress(assets []*models.PhotoAsset) float64 {
	if len(assets) == 0 {
		return 0
	}
	var sum float64
	for _, a := range assets {
		sum += a.Progress
	}
	avg := sum / float64(len(assets))
	if avg > 1 {
		avg = 1
	}
	return avg * uploadPhaseShare
}

func notifyPhoto(sink ProgressSink, asset *models.PhotoAsset) {
	if sink != nil {
		sink.PhotoUpdated(asset)
	}
}

func notifyOverall(sink ProgressSink, phase string, fraction float64) {
	if sink != nil {
		sink.OverallProgress(phase, fraction)
	}
}
