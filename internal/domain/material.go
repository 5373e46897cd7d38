package domain

import "time"

// StudyMaterial is a downloadable resource for a test-preparation track.
type StudyMaterial struct {
	ID          string
	Title       string
	Description string
	Category    string
	FileID      string
	FileURL     string
	FileName    string
	UploadedBy  string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
