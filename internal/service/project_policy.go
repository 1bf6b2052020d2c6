package service

import "github.com/noah-isme/edubuild-api/internal/models"

// canModerate reports whether the caller may change moderation status and
// see every project.
func canModerate(claims *models.JWTClaims) bool {
	return claims.IsAdmin()
}

// canModify reports whether the caller may edit or delete project.
func canModify(claims *models.JWTClaims, project *models.Project) bool {
	if claims == nil || project == nil {
		return false
	}
	return project.OwnedBy(claims.UserID) || canModerate(claims)
}

// canView reports whether the caller may read project.
func canView(claims *models.JWTClaims, project *models.Project) bool {
	if project == nil {
		return false
	}
	return project.Status == models.ProjectStatusApproved || canModify(claims, project)
}
