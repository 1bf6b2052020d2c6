package models

import (
	"time"

	"github.com/lib/pq"
)

// ProjectStatus is the moderation state gating project visibility.
type ProjectStatus string

const (
	ProjectStatusPending  ProjectStatus = "pending"
	ProjectStatusApproved ProjectStatus = "approved"
	ProjectStatusRejected ProjectStatus = "rejected"
)

// Valid reports whether s is one of the moderation states.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectStatusPending, ProjectStatusApproved, ProjectStatusRejected:
		return true
	}
	return false
}

// Class levels accepted for projects.
const (
	ClassLevelMiddle = "6-8"
	ClassLevelLower  = "9-10"
	ClassLevelUpper  = "11-12"
)

// Subjects accepted for projects.
const (
	SubjectPhysics     = "Physics"
	SubjectChemistry   = "Chemistry"
	SubjectBiology     = "Biology"
	SubjectMathematics = "Mathematics"
	SubjectEngineering = "Engineering"
)

// Difficulty levels shared by projects and feedback.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Project is a STEM project guide.
type Project struct {
	ID               string         `db:"id" json:"id"`
	Title            string         `db:"title" json:"title"`
	Description      string         `db:"description" json:"description"`
	Image            string         `db:"image" json:"image"`
	Budget           float64        `db:"budget" json:"budget"`
	ClassLevel       string         `db:"class_level" json:"classLevel"`
	Subject          string         `db:"subject" json:"subject"`
	Materials        pq.StringArray `db:"materials" json:"materials"`
	Steps            pq.StringArray `db:"steps" json:"steps"`
	LearningOutcomes pq.StringArray `db:"learning_outcomes" json:"learningOutcomes"`
	Difficulty       string         `db:"difficulty" json:"difficulty"`
	Rating           float64        `db:"rating" json:"rating"`
	CreatedBy        *string        `db:"created_by" json:"createdBy"`
	VideoURL         string         `db:"video_url" json:"videoUrl"`
	Status           ProjectStatus  `db:"status" json:"status"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// OwnedBy reports whether userID created the project.
func (p *Project) OwnedBy(userID string) bool {
	return p != nil && p.CreatedBy != nil && userID != "" && *p.CreatedBy == userID
}

// ProjectFilter captures catalogue listing criteria.
type ProjectFilter struct {
	MaxBudget  *float64
	ClassLevel string
	Subject    string
	Status     *ProjectStatus
	CreatedBy  string
}
