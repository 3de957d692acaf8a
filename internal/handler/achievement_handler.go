package handler

import (
	"net/http"

	"dashboard/internal/service"
	"dashboard/pkg/response"

	"github.com/gin-gonic/gin"
)

type AchievementHandler struct {
	achievementService service.AchievementService
	requireAuth        gin.HandlerFunc
}

func NewAchievementHandler(achievementService service.AchievementService, requireAuth gin.HandlerFunc) *AchievementHandler {
	return &AchievementHandler{achievementService: achievementService, requireAuth: requireAuth}
}

func (h *AchievementHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/achievements")
	group.Use(h.requireAuth)
	{
		group.POST("", h.Create)
		group.GET("", h.List)
	}
}

// Create records a company achievement
// @Summary      Add achievement
// @Tags         achievements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateAchievementRequest  true  "Achievement"
// @Success      201      {object}  response.Response{data=service.AchievementResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/achievements [post]
func (h *AchievementHandler) Create(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	var req service.CreateAchievementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	a, err := h.achievementService.Add(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, a))
}

// List returns achievements, most recent date first
// @Summary      List achievements
// @Tags         achievements
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.AchievementResponse}
// @Router       /api/achievements [get]
func (h *AchievementHandler) List(c *gin.Context) {
	list, err := h.achievementService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}
