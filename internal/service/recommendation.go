package service

import (
	"sort"

	"github.com/noah-isme/edubuild-api/internal/dto"
	"github.com/noah-isme/edubuild-api/internal/models"
)

// MaxRecommendations caps the number of projects Recommend returns.
const MaxRecommendations = 3

// Score weights.
const (
	scoreWithinBudget     = 10
	scoreWithinHalfBudget = 5
	scoreClassMatch       = 10
	scoreSubjectMatch     = 10
)

// RecommendationScore rates project against a budget ceiling, class level
// and subject. The project's rating is added as a tie breaker.
func RecommendationScore(project models.Project, budget float64, classLevel, subject string) float64 {
	var score float64
	if project.Budget <= budget {
		score += scoreWithinBudget
	}
	if project.Budget <= budget/2 {
		score += scoreWithinHalfBudget
	}
	if classLevel != "" && project.ClassLevel == classLevel {
		score += scoreClassMatch
	}
	if subject != "" && project.Subject == subject {
		score += scoreSubjectMatch
	}
	return score + project.Rating
}

// Recommend returns at most MaxRecommendations projects ordered by score,
// highest first. Equal scores keep their input order. The input slice is not
// modified.
func Recommend(projects []models.Project, budget float64, classLevel, subject string) []dto.ScoredProject {
	scored := make([]dto.ScoredProject, len(projects))
	for i, p := range projects {
		scored[i] = dto.ScoredProject{Project: p, Score: RecommendationScore(p, budget, classLevel, subject)}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > MaxRecommendations {
		scored = scored[:MaxRecommendations]
	}
	return scored
}
