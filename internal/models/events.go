package models

import "github.com/google/uuid"

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	AnalysisID uuid.UUID `json:"analysis_id"`
	Step       int       `json:"step"`
	StepName   string    `json:"step_name"`
}

type CompletedEvent struct {
	AnalysisID   uuid.UUID `json:"analysis_id"`
	AnalysisType string    `json:"analysis_type"`
	DurationMS   int64     `json:"duration_ms"`
}

type ErrorEvent struct {
	AnalysisID   uuid.UUID `json:"analysis_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}
