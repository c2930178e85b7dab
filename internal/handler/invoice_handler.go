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

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logger         *logrus.Logger
}

func NewInvoiceHandler(invoiceService service.InvoiceService, logger *logrus.Logger) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService, logger: logger}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/invoice")
	invoices.Use(middleware.RequireRole(model.TypePartner, model.TypeEmployee))
	{
		invoices.GET("/all", h.ListInvoices)
	}
}

// ListInvoices lists the invoices of the caller's tenant
// @Summary      List invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status        query     bool  false  "Paid filter"
// @Param        page          query     int   false  "Page number"
// @Param        itemsPerPage  query     int   false  "Items per page"
// @Success      200           {object}  response.Response{data=service.InvoiceListResponse}
// @Failure      400           {object}  response.Response
// @Router       /invoice/all [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	params, ok := pagination.ParseOptional(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, response.MsgDataMissing))
		return
	}
	status, ok := parseBoolQuery(c, "status")
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, response.MsgDataMissing))
		return
	}

	list, err := h.invoiceService.ListInvoices(c.Request.Context(), caller.OwnerID(), service.InvoiceFilter{
		Status:       status,
		Page:         params.Page,
		ItemsPerPage: params.Limit,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgInvoicesFetched, list))
}
