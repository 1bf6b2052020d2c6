package dto

import "github.com/noah-isme/edubuild-api/internal/models"

// ProjectRequest is the full project payload used for both create and update.
type ProjectRequest struct {
	Title            string   `json:"title" validate:"required,max=200"`
	Description      string   `json:"description" validate:"required"`
	Image            string   `json:"image" validate:"omitempty,max=2048"`
	Budget           float64  `json:"budget" validate:"gte=0"`
	ClassLevel       string   `json:"classLevel" validate:"required,oneof=6-8 9-10 11-12"`
	Subject          string   `json:"subject" validate:"required,oneof=Physics Chemistry Biology Mathematics Engineering"`
	Materials        []string `json:"materials" validate:"dive,required"`
	Steps            []string `json:"steps" validate:"dive,required"`
	LearningOutcomes []string `json:"learningOutcomes" validate:"dive,required"`
	Difficulty       string   `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	VideoURL         string   `json:"videoUrl" validate:"omitempty,url"`
}

// ProjectStatusRequest moves a project through moderation.
type ProjectStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved rejected"`
}

// ProjectQuery holds catalogue query string filters.
type ProjectQuery struct {
	Budget     *float64
	ClassLevel string
	Subject    string
}

// RecommendationQuery describes a teacher's stated preferences.
type RecommendationQuery struct {
	Budget     float64 `validate:"gte=0"`
	ClassLevel string
	Subject    string
}

// ScoredProject pairs a project with its recommendation score.
type ScoredProject struct {
	Project models.Project `json:"project"`
	Score   float64        `json:"score"`
}

// ExportFormat names a catalogue export encoding.
type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatPDF  ExportFormat = "pdf"
)

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// RequestMeta carries caller details recorded in the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}
