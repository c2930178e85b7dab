package handler

import (
	"net/http"

	"repairshop/internal/middleware"
	"repairshop/internal/model"
	"repairshop/internal/service"
	"repairshop/pkg/pagination"
	"repairshop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type AuditHandler struct {
	auditService service.AuditService
	logger       *logrus.Logger
}

func NewAuditHandler(auditService service.AuditService, logger *logrus.Logger) *AuditHandler {
	return &AuditHandler{auditService: auditService, logger: logger}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit")
	group.Use(middleware.RequireRole(model.TypeAdmin)) // Protect history logs
	{
		group.GET("/logs", h.GetAuditLogs)
	}
}

// GetAuditLogs retrieves paginated ledger audit records, newest first
// @Summary      Get audit logs
// @Description  Lists ledger and role changes with the acting user's email
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action        query     string  false  "Action filter"
// @Param        page          query     int     false  "Page number (default 1)"
// @Param        itemsPerPage  query     int     false  "Number of items per page (default 20)"
// @Success      200           {object}  response.Response{data=object}
// @Router       /audit/logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), c.Query("action"), params.Page, params.Limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(response.MsgAuditLogsFetched, map[string]interface{}{
		"logs":         logs,
		"total":        total,
		"page":         params.Page,
		"itemsPerPage": params.Limit,
	}))
}
