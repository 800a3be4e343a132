package routes

import (
	"civic-issues-be/controllers"

	"github.com/gin-gonic/gin"
)

// IssueRoutes sets up the public issue routes
func IssueRoutes(api *gin.RouterGroup, ic *controllers.IssueController, limiter gin.HandlerFunc) {
	issues := api.Group("/issues")
	{
		issues.POST("", limiter, ic.CreateIssue)
		issues.GET("", ic.GetAllIssues)
		issues.GET("/map", ic.IssueMap)
		issues.GET("/search/:query", ic.SearchIssues)
		issues.GET("/:id", ic.GetIssue)
	}
}
