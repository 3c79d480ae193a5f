package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/srisai/college-api/internal/middleware"
	"github.com/srisai/college-api/internal/models"
	"github.com/srisai/college-api/internal/service"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// actorTeacherID resolves the teacher profile id for teacher-role callers.
// Admins act unscoped, so an empty id is returned for them.
func actorTeacherID(ctx context.Context, teachers *service.TeacherService, claims *models.JWTClaims) (string, error) {
	if claims == nil || claims.Role != models.RoleTeacher {
		return "", nil
	}
	teacher, err := teachers.GetByEmail(ctx, claims.Email)
	if err != nil {
		return "", err
	}
	return teacher.ID, nil
}
