package models

type AnalyzeRequest struct {
	// Optional override for the feedback prompt sent to the analysis service.
	Prompt string `json:"prompt,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
