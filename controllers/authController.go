package controllers

import (
	"net/http"
	"time"

	"civic-issues-be/middlewares"
	"civic-issues-be/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	loginMessages = map[string]string{
		"email":    "Please include a valid email",
		"password": "Password is required",
	}
	registerMessages = map[string]string{
		"name":     "Name is required",
		"email":    "Please include a valid email",
		"password": "Password must be at least 6 characters",
	}
)

// AuthController serves administrator login, registration and profile.
type AuthController struct {
	auth         *services.AuthService
	log          *zap.Logger
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthController(auth *services.AuthService, tokenTTL time.Duration, secureCookie bool, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, log: log, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

func (ac *AuthController) setTokenCookie(c *gin.Context, token string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.TokenCookie,
		Value:    token,
		MaxAge:   maxAge,
		Path:     "/",
		Secure:   ac.secureCookie,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// LoginAdmin exchanges credentials for a signed token.
func (ac *AuthController) LoginAdmin(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		validationFailed(c, bindingErrors(err, loginMessages))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	session, err := ac.auth.Login(ctx, input.Email, input.Password)
	if err != nil {
		respondError(c, ac.log, err, "Admin not found")
		return
	}

	ac.setTokenCookie(c, session.Token, int(ac.tokenTTL.Seconds()))
	c.JSON(http.StatusOK, gin.H{"token": session.Token, "admin": session.Admin})
}

// RegisterAdmin creates a staff account with the admin role.
func (ac *AuthController) RegisterAdmin(c *gin.Context) {
	var input struct {
		Name       string `json:"name" binding:"required"`
		Email      string `json:"email" binding:"required,email"`
		Password   string `json:"password" binding:"required,min=6"`
		Department string `json:"department"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		validationFailed(c, bindingErrors(err, registerMessages))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	session, err := ac.auth.Register(ctx, services.Registration{
		Name:       input.Name,
		Email:      input.Email,
		Password:   input.Password,
		Department: input.Department,
	})
	if err != nil {
		respondError(c, ac.log, err, "Admin not found")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"token": session.Token, "admin": session.Admin})
}

// GetMe retrieves the authenticated administrator's profile
func (ac *AuthController) GetMe(c *gin.Context) {
	identity, ok := middlewares.CurrentAdmin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "No token, authorization denied"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := ac.auth.Me(ctx, identity.ID)
	if err != nil {
		respondError(c, ac.log, err, "Admin not found")
		return
	}
	c.JSON(http.StatusOK, profile)
}

// LogoutAdmin clears the auth cookie. Bearer and header tokens simply
// expire.
func (ac *AuthController) LogoutAdmin(c *gin.Context) {
	ac.setTokenCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
