package model

import "time"

// SystemConfig is the singleton configuration row holding the active
// academic term. It is read once at startup and never written by this system.
type SystemConfig struct {
	CurrentYear     string `json:"current_year"`
	CurrentSemester string `json:"current_semester"`
}

// Class is one grade/section offering. Many rows; grouped by grade to
// populate the dependent section dropdown.
type Class struct {
	GradeLevel  string `json:"grade_level"`
	SectionName string `json:"section_name"`
}

// Submission represents one student's project upload.
// This is a pure domain model with no database-specific dependencies or tags.
// Rows are created exactly once per successful submission and never updated
// or deleted by this system.
type Submission struct {
	ID           string    `json:"id"`
	StudentName  string    `json:"student_name"`
	ProjectTitle string    `json:"project_title"`
	FileURL      string    `json:"file_url"`
	GradeLevel   string    `json:"grade_level"`
	Section      string    `json:"section"`
	Year         string    `json:"year"`
	Semester     string    `json:"semester"`
	SubmittedAt  time.Time `json:"timestamp"`
}
