package middleware

import (
	"strconv"

	"github.com/classhub/school-management-api/internal/access"
	apierrors "github.com/classhub/school-management-api/internal/errors"
	"github.com/classhub/school-management-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireSchoolAccess checks that the user is an accepted member of the
// school named in the URL. The decision is delegated to the access
// engine; services re-check stricter scopes themselves.
func RequireSchoolAccess(engine *access.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		schoolID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid school ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if err := engine.Decide(access.Actor{UserID: userID}, access.Scope{SchoolID: schoolID}); err != nil {
			// Return 404 for denied members too, to avoid leaking
			// school existence.
			if apierrors.IsKind(err, apierrors.KindForbidden) || apierrors.IsKind(err, apierrors.KindNotFound) {
				apierrors.NotFound(c, "School not found")
			} else {
				apierrors.InternalError(c, "")
			}
			c.Abort()
			return
		}

		c.Set("school_id", schoolID)
		c.Next()
	}
}

// RequireSchoolAdmin checks that the user holds the ADMIN role in the
// school. Must run after RequireSchoolAccess.
func RequireSchoolAdmin(engine *access.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		schoolID, ok := GetSchoolID(c)
		if !ok {
			apierrors.Forbidden(c, "School access required")
			c.Abort()
			return
		}

		userID, _ := GetUserID(c)
		if err := engine.Decide(access.Actor{UserID: userID}, access.Scope{
			SchoolID: schoolID,
			MinRole:  models.RoleAdmin,
		}); err != nil {
			apierrors.Forbidden(c, "Only school admins can perform this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetSchoolID retrieves the school ID stored by RequireSchoolAccess.
func GetSchoolID(c *gin.Context) (uint64, bool) {
	v, exists := c.Get("school_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
