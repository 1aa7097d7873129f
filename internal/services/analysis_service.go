package services

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
	"profile-pulse-backend/internal/models"
	"profile-pulse-backend/internal/supabase"
)

// ErrSessionBusy means an analyze run is already in flight for the session.
// Two runs never overlap on the same photo collection.
var ErrSessionBusy = errors.New("an analysis is already running for this session")

// ErrNoPhotos means the session has nothing to analyze.
var ErrNoPhotos = errors.New("session has no photos")

// SessionStore is the persistence collaborator for a run's state transitions.
type SessionStore interface {
	ListPhotos(sessionID uuid.UUID) ([]models.SessionPhoto, error)
	UpdateSessionStatus(sessionID uuid.UUID, status string, progress int) error
	UpdateSessionError(sessionID uuid.UUID, errorMsg string) error
	SavePhotoState(asset *models.PhotoAsset) error
	SaveResult(result *models.SessionResult) error
}

// AnalysisService drives the pipeline for a session and persists every state
// transition, so clients can follow progress and a crashed run leaves
// truthful per-photo state behind.
type AnalysisService struct {
	pipeline *Pipeline
	db       SessionStore
	realtime *supabase.RealtimeClient

	mu   sync.Mutex
	busy map[uuid.UUID]bool
}

func NewAnalysisService(pipeline *Pipeline, db SessionStore, realtime *supabase.RealtimeClient) *AnalysisService {
	return &AnalysisService{
		pipeline: pipeline,
		db:       db,
		realtime: realtime,
		busy:     make(map[uuid.UUID]bool),
	}
}

func (s *AnalysisService) acquire(sessionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[sessionID] {
		return false
	}
	s.busy[sessionID] = true
	return true
}

func (s *AnalysisService) release(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, sessionID)
}

// Busy reports whether a run is in flight for the session.
func (s *AnalysisService) Busy(sessionID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy[sessionID]
}

// Run executes the full pipeline for a session. Already-uploaded photos are
// not re-uploaded, so retrying after a failure only redoes the missing work.
// On failure the session is marked failed but stays retryable.
func (s *AnalysisService) Run(session *models.Session, promptOverride string) (*Outcome, error) {
	if !s.acquire(session.ID) {
		return nil, ErrSessionBusy
	}
	defer s.release(session.ID)

	photos, err := s.db.ListPhotos(session.ID)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, ErrNoPhotos
	}

	assets := make([]*models.PhotoAsset, len(photos))
	for i := range photos {
		assets[i] = photos[i].Asset()
	}

	s.realtime.PublishSessionEvent(session.ID, "upload_started",
		supabase.UploadStartedPayload(session.ID, len(assets)))
	if err := s.db.UpdateSessionStatus(session.ID, models.SessionStatusUploading, 0); err != nil {
		log.Printf("Warning: failed to mark session %s uploading: %v", session.ID, err)
	}

	sink := newSessionSink(s.db, s.realtime, session.ID)
	outcome, err := s.pipeline.Run(assets, "photos/"+session.ID.String(), promptOverride, sink)
	if err != nil {
		if dbErr := s.db.UpdateSessionError(session.ID, err.Error()); dbErr != nil {
			log.Printf("Warning: failed to mark session %s failed: %v", session.ID, dbErr)
		}
		s.realtime.PublishSessionEvent(session.ID, "analysis_failed",
			supabase.AnalysisFailedPayload(session.ID, err.Error()))
		return nil, err
	}

	scoresJSON, err := json.Marshal(outcome.Categories)
	if err != nil {
		return nil, err
	}
	result := &models.SessionResult{
		ID:        uuid.New(),
		SessionID: session.ID,
		Feedback:  outcome.Feedback,
		Scores:    scoresJSON,
		Average:   outcome.Summary.Average,
		Letter:    outcome.Summary.Letter,
		Tone:      string(outcome.Summary.Tone),
	}
	if err := s.db.SaveResult(result); err != nil {
		if dbErr := s.db.UpdateSessionError(session.ID, err.Error()); dbErr != nil {
			log.Printf("Warning: failed to mark session %s failed: %v", session.ID, dbErr)
		}
		return nil, err
	}

	if err := s.db.UpdateSessionStatus(session.ID, models.SessionStatusCompleted, 100); err != nil {
		log.Printf("Warning: failed to mark session %s completed: %v", session.ID, err)
	}
	s.realtime.PublishSessionEvent(session.ID, "analysis_completed",
		supabase.AnalysisCompletedPayload(session.ID, outcome.Summary.Letter, outcome.Summary.Average))

	return outcome, nil
}

// sessionSink persists pipeline progress. Photo rows are written on every
// status change but progress ticks are throttled to whole-percent steps to
// keep chatty transports from hammering the database.
type sessionSink struct {
	db        SessionStore
	realtime  *supabase.RealtimeClient
	sessionID uuid.UUID

	lastPhotoPct map[uuid.UUID]int
	lastStatus   map[uuid.UUID]string
	lastOverall  int
	lastPhase    string
}

func newSessionSink(db SessionStore, realtime *supabase.RealtimeClient, sessionID uuid.UUID) *sessionSink {
	return &sessionSink{
		db:           db,
		realtime:     realtime,
		sessionID:    sessionID,
		lastPhotoPct: make(map[uuid.UUID]int),
		lastStatus:   make(map[uuid.UUID]string),
		lastOverall:  -1,
	}
}

func (k *sessionSink) PhotoUpdated(asset *models.PhotoAsset) {
	pct := int(asset.Progress * 100)
	if k.lastStatus[asset.ID] == asset.Status && k.lastPhotoPct[asset.ID] == pct {
		return
	}
	k.lastStatus[asset.ID] = asset.Status
	k.lastPhotoPct[asset.ID] = pct
	if err := k.db.SavePhotoState(asset); err != nil {
		log.Printf("Warning: failed to persist photo %s state: %v", asset.ID, err)
	}
}

func (k *sessionSink) OverallProgress(phase string, fraction float64) {
	if phase == PhaseAnalyzing && k.lastPhase != PhaseAnalyzing {
		k.realtime.PublishSessionEvent(k.sessionID, "analysis_started",
			supabase.AnalysisStartedPayload(k.sessionID))
	}
	k.lastPhase = phase

	pct := int(fraction * 100)
	if pct == k.lastOverall {
		return
	}
	k.lastOverall = pct
	k.db.UpdateSessionStatus(k.sessionID, phase, pct)
	if phase == PhaseUploading {
		k.realtime.PublishSessionEvent(k.sessionID, "upload_progress",
			supabase.UploadProgressPayload(k.sessionID, pct))
	}
}
