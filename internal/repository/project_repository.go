package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edubuild-api/internal/models"
)

const projectColumns = `id, title, description, image, budget, class_level, subject, materials, steps, learning_outcomes, difficulty, rating, created_by, video_url, status, created_at, updated_at`

// ProjectRepository provides database access for project guides.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// List returns projects matching filter, newest first.
func (r *ProjectRepository) List(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	var conditions []string
	var args []interface{}

	if filter.MaxBudget != nil {
		args = append(args, *filter.MaxBudget)
		conditions = append(conditions, fmt.Sprintf("budget <= $%d", len(args)))
	}
	if filter.ClassLevel != "" {
		args = append(args, filter.ClassLevel)
		conditions = append(conditions, fmt.Sprintf("class_level = $%d", len(args)))
	}
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		conditions = append(conditions, fmt.Sprintf("subject = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CreatedBy != "" {
		args = append(args, filter.CreatedBy)
		conditions = append(conditions, fmt.Sprintf("created_by = $%d", len(args)))
	}

	query := `SELECT ` + projectColumns + ` FROM projects WHERE 1=1`
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	projects := []models.Project{}
	if err := r.db.SelectContext(ctx, &projects, query, args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// FindByID returns a project by identifier.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*models.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 LIMIT 1`
	var project models.Project
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find project by id: %w", err)
	}
	return &project, nil
}

// Count returns the number of stored projects.
func (r *ProjectRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM projects`); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return total, nil
}

// Create inserts a project, filling identifier and timestamps.
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	normaliseArrays(project)

	const query = `INSERT INTO projects (id, title, description, image, budget, class_level, subject, materials, steps, learning_outcomes, difficulty, rating, created_by, video_url, status, created_at, updated_at) VALUES (:id, :title, :description, :image, :budget, :class_level, :subject, :materials, :steps, :learning_outcomes, :difficulty, :rating, :created_by, :video_url, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, project); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a project. Status is left to the
// moderation queries; the stored status is read back into project.
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	project.UpdatedAt = time.Now().UTC()
	normaliseArrays(project)

	const named = `UPDATE projects SET title = :title, description = :description, image = :image, budget = :budget, class_level = :class_level, subject = :subject, materials = :materials, steps = :steps, learning_outcomes = :learning_outcomes, difficulty = :difficulty, video_url = :video_url, updated_at = :updated_at WHERE id = :id RETURNING status`
	query, args, err := sqlx.Named(named, project)
	if err != nil {
		return fmt.Errorf("bind project update: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, r.db.Rebind(query), args...).Scan(&project.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update project: %w", err)
	}
	return nil
}

// ResubmitForReview moves a project back to pending only while it still has
// status from. It reports false when the row changed in between.
func (r *ProjectRepository) ResubmitForReview(ctx context.Context, id string, from models.ProjectStatus) (bool, error) {
	const query = `UPDATE projects SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := r.db.ExecContext(ctx, query, id, from, models.ProjectStatusPending, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("resubmit project: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// UpdateStatus sets the moderation status of a project.
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id string, status models.ProjectStatus) error {
	const query = `UPDATE projects SET status = $2, updated_at = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update project status: %w", err)
	}
	return expectAffected(res)
}

// UpdateRating stores a recomputed aggregate rating.
func (r *ProjectRepository) UpdateRating(ctx context.Context, id string, rating float64) error {
	const query = `UPDATE projects SET rating = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, rating); err != nil {
		return fmt.Errorf("update project rating: %w", err)
	}
	return nil
}

// Delete removes a project row.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return expectAffected(res)
}

func normaliseArrays(p *models.Project) {
	if p.Materials == nil {
		p.Materials = []string{}
	}
	if p.Steps == nil {
		p.Steps = []string{}
	}
	if p.LearningOutcomes == nil {
		p.LearningOutcomes = []string{}
	}
}

// expectAffected maps a zero-row write to sql.ErrNoRows.
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
