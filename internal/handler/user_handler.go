package handler

import (
	"net/http"
	"time"

	"dashboard/internal/middleware"
	"dashboard/internal/service"
	"dashboard/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	requireAuth gin.HandlerFunc
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

// NewUserHandler sets up the routing dependencies for session endpoints
func NewUserHandler(userService service.UserService, requireAuth gin.HandlerFunc, accessTTL, refreshTTL time.Duration) *UserHandler {
	return &UserHandler{userService: userService, requireAuth: requireAuth, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	// Public routes
	router.POST("/login", h.Login)
	router.POST("/refresh", h.RefreshToken)
	router.POST("/logout", h.Logout)

	router.GET("/me", h.requireAuth, h.GetMe)
	router.GET("/api/users", h.requireAuth, h.ListUsers)
}

// Login handles POST /login to authenticate and return a JWT token
// @Summary      Login user
// @Description  Authenticates a seeded user by username and password, returning access and refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginUserRequest   true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Router       /login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	tokenRes, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	// Set tokens as HttpOnly cookies
	middleware.SetTokenCookies(c, tokenRes.AccessToken, tokenRes.RefreshToken, h.accessTTL, h.refreshTTL)

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// RefreshToken handles POST /refresh to issue new access and refresh tokens
// @Summary      Refresh token
// @Description  Rotates a valid refresh token into a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshTokenRequest   false  "Refresh Token (cookie takes precedence)"
// @Success      200      {object}  response.Response{data=service.TokenResponse}
// @Failure      401      {object}  response.Response
// @Router       /refresh [post]
func (h *UserHandler) RefreshToken(c *gin.Context) {
	tokenRes, err := h.userService.Refresh(c.Request.Context(), refreshTokenFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}

	middleware.SetTokenCookies(c, tokenRes.AccessToken, tokenRes.RefreshToken, h.accessTTL, h.refreshTTL)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, tokenRes))
}

// Logout handles POST /logout
// @Summary      Logout
// @Description  Revokes the refresh session and clears the auth cookies
// @Tags         auth
// @Produce      json
// @Success      200      {object}  response.Response
// @Router       /logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.userService.Logout(c.Request.Context(), refreshTokenFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	middleware.ClearTokenCookies(c)
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "logged out"}))
}

// Try reading refresh_token from cookie first, fallback to body
func refreshTokenFrom(c *gin.Context) string {
	if token, err := c.Cookie("refresh_token"); err == nil && token != "" {
		return token
	}
	var req service.RefreshTokenRequest
	_ = c.ShouldBindJSON(&req)
	return req.RefreshToken
}

// GetMe handles GET /me to return current authenticated user based on JWT
// @Summary      Get current user
// @Description  Get the currently authenticated user with the derived role
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	user, err := h.userService.Me(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ListUsers handles GET /api/users
// @Summary      List users
// @Description  Lists the seeded organisation members
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=[]service.UserResponse}
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, users))
}
