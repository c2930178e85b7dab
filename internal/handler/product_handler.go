package handler

import (
	"net/http"

	"repairshop/internal/middleware"
	"repairshop/internal/model"
	"repairshop/internal/service"
	"repairshop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProductHandler moves repaired products through the ticket lifecycle
type ProductHandler struct {
	ticketService service.TicketService
	logger        *logrus.Logger
}

func NewProductHandler(ticketService service.TicketService, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{ticketService: ticketService, logger: logger}
}

func (h *ProductHandler) RegisterRoutes(router *gin.RouterGroup) {
	products := router.Group("/product")
	products.Use(middleware.RequireRole(model.TypePartner, model.TypeEmployee))
	{
		products.PATCH("/update-status/:id", h.UpdateStatus)
	}
}

// UpdateStatus changes a product status; closedSuccess issues the invoice
// @Summary      Update product status
// @Tags         products
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                                 true  "Product ID"
// @Param        payload  body      service.UpdateProductStatusRequest  true  "New status"
// @Success      200      {object}  response.Response{data=service.ProductStatusResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /product/update-status/{id} [patch]
func (h *ProductHandler) UpdateStatus(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateProductStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.ticketService.UpdateStatus(c.Request.Context(), caller, id, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgProductUpdated, res))
}
