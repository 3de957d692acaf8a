package handler

import (
	"net/http"

	"dashboard/internal/repository"
	"dashboard/internal/service"
	"dashboard/pkg/pagination"
	"dashboard/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	requireAuth  gin.HandlerFunc
}

func NewAuditHandler(auditService service.AuditService, requireAuth gin.HandlerFunc) *AuditHandler {
	return &AuditHandler{auditService: auditService, requireAuth: requireAuth}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	group.Use(h.requireAuth)
	{
		group.GET("", h.GetAuditLogs)
	}
}

type AuditLogPage struct {
	Logs []service.AuditLogResponse `json:"logs"`
	pagination.Meta
}

// GetAuditLogs returns one page of the audit trail
// @Summary      Get audit logs
// @Description  Paginated audit trail, newest first. Approver only.
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Number of items per page (default 20)"
// @Param        username  query  string  false  "Only entries by this user"
// @Param        action    query  string  false  "Only entries with this action"
// @Success      200    {object}  response.Response{data=AuditLogPage}
// @Failure      403    {object}  response.Response
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), id, repository.AuditFilter{
		Username: c.Query("username"),
		Action:   c.Query("action"),
		Page:     params.Page,
		Limit:    params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, AuditLogPage{Logs: logs, Meta: params.WithTotal(total)}))
}
