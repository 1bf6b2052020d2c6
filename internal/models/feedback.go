package models

import "time"

// Feedback is a rating and comment left on a project.
type Feedback struct {
	ID         string    `db:"id" json:"id"`
	ProjectID  string    `db:"project_id" json:"projectId"`
	UserID     string    `db:"user_id" json:"userId"`
	UserName   string    `db:"user_name" json:"userName"`
	SchoolName string    `db:"school_name" json:"schoolName"`
	Difficulty *string   `db:"difficulty" json:"difficulty"`
	Feedback   string    `db:"feedback" json:"feedback"`
	Rating     *int      `db:"rating" json:"rating"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
