// Package seed loads the sample project catalogue shipped with the API.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/edubuild-api/internal/models"
)

//go:embed projects.json
var projectsJSON []byte

type projectStore interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, project *models.Project) error
}

// Samples returns the bundled sample projects, approved and unowned.
func Samples() ([]models.Project, error) {
	var projects []models.Project
	if err := json.Unmarshal(projectsJSON, &projects); err != nil {
		return nil, fmt.Errorf("decode sample projects: %w", err)
	}
	for i := range projects {
		projects[i].Status = models.ProjectStatusApproved
		if projects[i].Difficulty == "" {
			projects[i].Difficulty = models.DifficultyMedium
		}
	}
	return projects, nil
}

// Projects inserts the sample catalogue when the projects table is
// empty. It returns the number of rows inserted.
func Projects(ctx context.Context, store projectStore, ownerID *string, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	existing, err := store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	if existing > 0 {
		logger.Info("projects already present, skipping seed", zap.Int("count", existing))
		return 0, nil
	}

	projects, err := Samples()
	if err != nil {
		return 0, err
	}

	inserted := 0
	for i := range projects {
		project := projects[i]
		project.CreatedBy = ownerID
		if err := store.Create(ctx, &project); err != nil {
			return inserted, fmt.Errorf("insert %q: %w", project.Title, err)
		}
		inserted++
		logger.Info("seeded project", zap.String("title", project.Title))
	}
	return inserted, nil
}
