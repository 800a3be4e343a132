package routes

import (
	"civic-issues-be/controllers"
	"civic-issues-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes. Registration needs a staff
// token unless openRegistration is set.
func AuthRoutes(api *gin.RouterGroup, ac *controllers.AuthController, requireAdmin gin.HandlerFunc, openRegistration bool) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", ac.LoginAdmin)
		auth.POST("/register", middlewares.RequireAuthUnless(openRegistration, requireAdmin), ac.RegisterAdmin)
		auth.POST("/logout", ac.LogoutAdmin)
		auth.GET("/me", requireAdmin, ac.GetMe)
	}
}
