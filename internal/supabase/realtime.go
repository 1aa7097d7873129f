package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

// RealtimeClient publishes session lifecycle events so clients can drive a
// progress bar without polling.
type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Go client has no direct Realtime publish; session row updates
	// trigger Realtime automatically, so this stays a hook for explicit
	// events via the Realtime REST API.
	return nil
}

func (r *RealtimeClient) PublishSessionEvent(sessionID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("session:%s", sessionID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads

func UploadStartedPayload(sessionID uuid.UUID, photoCount int) map[string]interface{} {
	return map[string]interface{}{
		"session_id":  sessionID.String(),
		"status":      "uploading",
		"photo_count": photoCount,
	}
}

func UploadProgressPayload(sessionID uuid.UUID, progress int) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID.String(),
		"status":     "uploading",
		"progress":   progress,
	}
}

func AnalysisStartedPayload(sessionID uuid.UUID) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID.String(),
		"status":     "analyzing",
	}
}

func AnalysisCompletedPayload(sessionID uuid.UUID, letter string, average float64) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID.String(),
		"status":     "completed",
		"progress":   100,
		"letter":     letter,
		"average":    average,
	}
}

func AnalysisFailedPayload(sessionID uuid.UUID, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"session_id": sessionID.String(),
		"status":     "failed",
		"error":      errorMsg,
	}
}
