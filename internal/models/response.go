package models

import (
	"time"

	"profile-pulse-backend/internal/feedback"
)

type SessionResponse struct {
	ID           string          `json:"session_id"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	Photos       []PhotoResponse `json:"photos"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

type SessionSummary struct {
	ID         string    `json:"session_id"`
	Status     string    `json:"status"`
	Progress   int       `json:"progress"`
	PhotoCount int       `json:"photo_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type PhotoResponse struct {
	ID        string  `json:"photo_id"`
	Position  int     `json:"position"`
	Filename  string  `json:"filename"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	RemoteURL string  `json:"remote_url,omitempty"`
	FileSize  int64   `json:"file_size,omitempty"`
	LastError string  `json:"last_error,omitempty"`
}

type AddPhotosResponse struct {
	SessionID string          `json:"session_id"`
	Photos    []PhotoResponse `json:"photos"`
	Errors    []string        `json:"errors,omitempty"`
}

type StatusResponse struct {
	SessionID string    `json:"session_id"`
	Status    string    `json:"status"`
	Progress  int       `json:"progress"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ResultResponse struct {
	SessionID  string                   `json:"session_id"`
	Categories []feedback.CategoryScore `json:"categories"`
	Average    float64                  `json:"average"`
	Letter     string                   `json:"letter"`
	Tone       string                   `json:"tone"`
	Sections   []feedback.Section       `json:"sections"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
