package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edubuild-api/internal/models"
)

// FeedbackRepository provides database access for project feedback.
type FeedbackRepository struct {
	db *sqlx.DB
}

// NewFeedbackRepository creates a new FeedbackRepository.
func NewFeedbackRepository(db *sqlx.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts a feedback row.
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.Feedback) error {
	if fb.ID == "" {
		fb.ID = uuid.NewString()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO feedbacks (id, project_id, user_id, user_name, school_name, difficulty, feedback, rating, created_at) VALUES (:id, :project_id, :user_id, :user_name, :school_name, :difficulty, :feedback, :rating, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fb); err != nil {
		return fmt.Errorf("create feedback: %w", err)
	}
	return nil
}

// ListByProject returns every feedback for a project, newest first.
func (r *FeedbackRepository) ListByProject(ctx context.Context, projectID string) ([]models.Feedback, error) {
	const query = `SELECT id, project_id, user_id, user_name, school_name, difficulty, feedback, rating, created_at FROM feedbacks WHERE project_id = $1 ORDER BY created_at DESC`
	items := []models.Feedback{}
	if err := r.db.SelectContext(ctx, &items, query, projectID); err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}
	return items, nil
}

// RatingsByProject returns the rating column of every feedback row for a
// project; rows without a rating yield nil entries.
func (r *FeedbackRepository) RatingsByProject(ctx context.Context, projectID string) ([]*int, error) {
	const query = `SELECT rating FROM feedbacks WHERE project_id = $1`
	var raw []sql.NullInt64
	if err := r.db.SelectContext(ctx, &raw, query, projectID); err != nil {
		return nil, fmt.Errorf("list feedback ratings: %w", err)
	}
	ratings := make([]*int, len(raw))
	for i, v := range raw {
		if v.Valid {
			n := int(v.Int64)
			ratings[i] = &n
		}
	}
	return ratings, nil
}
