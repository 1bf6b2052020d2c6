package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/models"
)

type fakeStore struct {
	count   int
	created []models.Project
	failOn  int
}

func (f *fakeStore) Count(ctx context.Context) (int, error) {
	return f.count, nil
}

func (f *fakeStore) Create(ctx context.Context, project *models.Project) error {
	if f.failOn > 0 && len(f.created)+1 == f.failOn {
		return errors.New("insert failed")
	}
	f.created = append(f.created, *project)
	return nil
}

func TestSamplesAreValid(t *testing.T) {
	projects, err := Samples()
	require.NoError(t, err)
	require.NotEmpty(t, projects)

	validate := validator.New()
	for _, p := range projects {
		req := dto.ProjectRequest{
			Title:            p.Title,
			Description:      p.Description,
			Image:            p.Image,
			Budget:           p.Budget,
			ClassLevel:       p.ClassLevel,
			Subject:          p.Subject,
			Materials:        p.Materials,
			Steps:            p.Steps,
			LearningOutcomes: p.LearningOutcomes,
			Difficulty:       p.Difficulty,
			VideoURL:         p.VideoURL,
		}
		assert.NoError(t, validate.Struct(req), p.Title)
		assert.Equal(t, models.ProjectStatusApproved, p.Status)
	}
	assert.Equal(t, "Balloon-Powered Car", projects[0].Title)
	assert.Equal(t, 4.8, projects[0].Rating)
}

func TestProjectsInsertsIntoEmptyTable(t *testing.T) {
	store := &fakeStore{}
	owner := "admin-1"

	n, err := Projects(context.Background(), store, &owner, nil)
	require.NoError(t, err)

	all, _ := Samples()
	assert.Equal(t, len(all), n)
	require.Len(t, store.created, len(all))
	require.NotNil(t, store.created[0].CreatedBy)
	assert.Equal(t, "admin-1", *store.created[0].CreatedBy)
}

func TestProjectsSkipsWhenPopulated(t *testing.T) {
	store := &fakeStore{count: 3}

	n, err := Projects(context.Background(), store, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.created)
}

func TestProjectsReportsPartialFailure(t *testing.T) {
	store := &fakeStore{failOn: 2}

	n, err := Projects(context.Background(), store, nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, n)
}
