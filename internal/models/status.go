package models

import "time"

// 업로드 진행 단계
type Stage string

const (
	StageConverting Stage = "converting"
	StageUploading  Stage = "uploading"
	StageAnalyzing  Stage = "analyzing"
	StageCompleted  Stage = "completed"
	StageFailed     Stage = "failed"
)

// StatusMessages are the user-facing texts shown for each stage.
var StatusMessages = map[Stage]string{
	StageConverting: "Converting to image...",
	StageUploading:  "Creating resume record...",
	StageAnalyzing:  "Analyzing resume...",
	StageCompleted:  "Analysis complete, redirecting...",
	StageFailed:     "Error: Failed to process resume",
}

// StatusUpdate is published while an upload moves through the pipeline.
type StatusUpdate struct {
	UploadID  string    `json:"upload_id"`
	ResumeID  string    `json:"resume_id,omitempty"`
	UserID    string    `json:"user_id"`
	Stage     Stage     `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
