package models

import "time"

// Resume is an uploaded resume with its rendered preview. Feedback is nil
// until the analysis has been stored.
type Resume struct {
	ID             string    `json:"id"`
	UserID         string    `json:"userId"`
	CompanyName    *string   `json:"companyName,omitempty"`
	JobTitle       *string   `json:"jobTitle,omitempty"`
	JobDescription *string   `json:"jobDescription,omitempty"`
	ResumePath     string    `json:"resumePath"`
	ImagePath      string    `json:"imagePath"`
	OverallScore   *int      `json:"overallScore,omitempty"`
	Feedback       *Feedback `json:"feedback,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewResume holds the fields written when a resume row is created.
type NewResume struct {
	UserID         string
	CompanyName    string
	JobTitle       string
	JobDescription string
	ResumePath     string
	ImagePath      string
}
