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

type MovementHandler struct {
	movementService service.MovementService
	logger          *logrus.Logger
}

func NewMovementHandler(movementService service.MovementService, logger *logrus.Logger) *MovementHandler {
	return &MovementHandler{movementService: movementService, logger: logger}
}

func (h *MovementHandler) RegisterRoutes(router *gin.RouterGroup) {
	movements := router.Group("/movement")
	movements.Use(middleware.RequireRole(model.TypePartner, model.TypeEmployee))
	{
		movements.POST("/create", h.CreateMovement)
		movements.GET("/all/:id", h.GetAllMovements)
	}
}

// CreateMovement settles an invoice into a register
// @Summary      Create movement
// @Tags         movements
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateMovementRequest  true  "Movement"
// @Success      200      {object}  response.Response{data=service.MovementResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /movement/create [post]
func (h *MovementHandler) CreateMovement(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req service.CreateMovementRequest
	if !bindJSON(c, &req) {
		return
	}

	movement, err := h.movementService.CreateMovement(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgMovementAdded, movement))
}

// GetAllMovements lists the movements of one register
// @Summary      List movements
// @Tags         movements
// @Security     BearerAuth
// @Produce      json
// @Param        id            path      int  true   "Register ID"
// @Param        page          query     int  false  "Page number"
// @Param        itemsPerPage  query     int  false  "Items per page"
// @Success      200           {object}  response.Response{data=service.MovementListResponse}
// @Failure      404           {object}  response.Response
// @Router       /movement/all/{id} [get]
func (h *MovementHandler) GetAllMovements(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	params, ok := pagination.ParseOptional(c)
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, response.MsgDataMissing))
		return
	}

	list, err := h.movementService.GetAllMovements(c.Request.Context(), caller, id, params.Page, params.Limit)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgMovementsFetched, list))
}
