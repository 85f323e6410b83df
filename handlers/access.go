package handlers

import (
	"brandconnect/middleware"
	"brandconnect/models"
	"brandconnect/services/errs"
	"brandconnect/utils"

	"github.com/gin-gonic/gin"
)

func isAdmin(c *gin.Context) bool {
	return models.Role(middleware.Role(c)) == models.RoleAdmin
}

// requireParty writes 403 and returns false unless the caller is one of
// the given parties or an admin.
func requireParty(c *gin.Context, parties ...string) bool {
	if isAdmin(c) {
		return true
	}
	caller := middleware.UserID(c)
	for _, p := range parties {
		if p != "" && p == caller {
			return true
		}
	}
	utils.RespondError(c, errs.Forbidden("caller is not a party to this resource"))
	return false
}

// bindJSON binds the body or writes a 400.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, errs.Validation("invalid request body: %v", err))
		return false
	}
	return true
}
