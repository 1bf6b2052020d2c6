package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edubuild-api/internal/models"
)

func TestCreateFeedback(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	mock.ExpectExec("INSERT INTO feedbacks").WillReturnResult(sqlmock.NewResult(1, 1))

	rating := 5
	fb := &models.Feedback{ProjectID: "p1", UserID: "u1", UserName: "Ada", Rating: &rating}
	require.NoError(t, repo.Create(context.Background(), fb))
	assert.NotEmpty(t, fb.ID)
	assert.False(t, fb.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListFeedbackNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "project_id", "user_id", "user_name", "school_name", "difficulty", "feedback", "rating", "created_at"}).
		AddRow("f2", "p1", "u1", "Ada", "Lincoln", "Easy", "fun", 5, now).
		AddRow("f1", "p1", "u2", "Bob", "", nil, "", nil, now.Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("FROM feedbacks WHERE project_id = $1 ORDER BY created_at DESC")).
		WithArgs("p1").
		WillReturnRows(rows)

	items, err := repo.ListByProject(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "f2", items[0].ID)
	require.NotNil(t, items[0].Rating)
	assert.Equal(t, 5, *items[0].Rating)
	assert.Nil(t, items[1].Rating)
	assert.Nil(t, items[1].Difficulty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingsByProjectKeepsNulls(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewFeedbackRepository(db)

	rows := sqlmock.NewRows([]string{"rating"}).AddRow(5).AddRow(nil).AddRow(3)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT rating FROM feedbacks WHERE project_id = $1")).
		WithArgs("p1").
		WillReturnRows(rows)

	ratings, err := repo.RatingsByProject(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, ratings, 3)
	assert.Equal(t, 5, *ratings[0])
	assert.Nil(t, ratings[1])
	assert.Equal(t, 3, *ratings[2])
	assert.NoError(t, mock.ExpectationsWereMet())
}
