package routes

import (
	"civic-issues-be/controllers"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the staff-only routes
func AdminRoutes(api *gin.RouterGroup, ac *controllers.AdminController, requireAdmin gin.HandlerFunc) {
	admin := api.Group("/admin", requireAdmin)
	{
		admin.GET("/dashboard", ac.Dashboard)
		admin.GET("/issues", ac.GetAllIssues)
		admin.GET("/issues/export", ac.ExportIssues)
		admin.GET("/issues/:id", ac.GetIssue)
		admin.PUT("/issues/:id", ac.UpdateIssue)
		admin.DELETE("/issues/:id", ac.DeleteIssue)
	}
}
