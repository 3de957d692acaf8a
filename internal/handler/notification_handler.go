package handler

import (
	"net/http"

	"dashboard/internal/apperror"
	"dashboard/internal/service"
	"dashboard/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NotificationHandler struct {
	notificationService service.NotificationService
	requireAuth         gin.HandlerFunc
}

func NewNotificationHandler(notificationService service.NotificationService, requireAuth gin.HandlerFunc) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService, requireAuth: requireAuth}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/notifications")
	group.Use(h.requireAuth)
	{
		group.GET("/unseen", h.Unseen)
		group.PUT("/:id/seen", h.MarkSeen)
	}
}

type UnseenResponse struct {
	Count         int                            `json:"count"`
	Notifications []service.NotificationResponse `json:"notifications"`
}

// Unseen returns the caller's unseen notifications and the badge count
// @Summary      Unseen notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=UnseenResponse}
// @Router       /api/notifications/unseen [get]
func (h *NotificationHandler) Unseen(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}

	notifications, err := h.notificationService.UnseenFor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, UnseenResponse{
		Count:         len(notifications),
		Notifications: notifications,
	}))
}

// MarkSeen marks one of the caller's notifications as seen
// @Summary      Mark notification seen
// @Description  Idempotent: marking an already seen notification succeeds.
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/notifications/{id}/seen [put]
func (h *NotificationHandler) MarkSeen(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperror.Validation("invalid notification id %q", c.Param("id")))
		return
	}

	if err := h.notificationService.MarkSeen(c.Request.Context(), id, notificationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"id": notificationID, "seen": true}))
}
