package dto

// FeedbackRequest submits a rating and comment for a project.
type FeedbackRequest struct {
	ProjectID  string `json:"projectId" validate:"required,uuid"`
	Rating     *int   `json:"rating" validate:"omitempty,min=1,max=5"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=Easy Medium Hard"`
	Feedback   string `json:"feedback" validate:"max=5000"`
	UserName   string `json:"userName" validate:"max=120"`
	SchoolName string `json:"schoolName" validate:"max=200"`
}
