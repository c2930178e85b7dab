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

type CashRegisterHandler struct {
	registerService service.CashRegisterService
	logger          *logrus.Logger
}

func NewCashRegisterHandler(registerService service.CashRegisterService, logger *logrus.Logger) *CashRegisterHandler {
	return &CashRegisterHandler{registerService: registerService, logger: logger}
}

func (h *CashRegisterHandler) RegisterRoutes(router *gin.RouterGroup) {
	registers := router.Group("/cash-register")
	registers.Use(middleware.RequireRole(model.TypePartner, model.TypeEmployee))
	{
		registers.POST("/create", h.CreateCashRegister)
		registers.GET("/all", h.GetAllCashRegister)
		registers.PATCH("/update/:id", h.UpdateCashRegister)
		registers.DELETE("/delete/:id", h.DeleteCashRegister)
	}
}

// CreateCashRegister opens a secondary register for the caller's tenant
// @Summary      Create cash register
// @Tags         cash-registers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCashRegisterRequest  true  "Register"
// @Success      200      {object}  response.Response{data=service.CashRegisterResponse}
// @Failure      400      {object}  response.Response
// @Router       /cash-register/create [post]
func (h *CashRegisterHandler) CreateCashRegister(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req service.CreateCashRegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	register, err := h.registerService.CreateCashRegister(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgCashRegisterAdded, register))
}

// GetAllCashRegister lists the tenant's registers
// @Summary      List cash registers
// @Tags         cash-registers
// @Security     BearerAuth
// @Produce      json
// @Param        page           query     int     false  "Page number"
// @Param        itemsPerPage   query     int     false  "Items per page"
// @Param        status         query     bool    false  "Filter on status"
// @Param        isMain         query     bool    false  "Filter on main flag"
// @Param        searchKeyword  query     string  false  "Name contains, at least 2 characters"
// @Success      200            {object}  response.Response{data=service.CashRegisterListResponse}
// @Failure      400            {object}  response.Response
// @Router       /cash-register/all [get]
func (h *CashRegisterHandler) GetAllCashRegister(c *gin.Context) {
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
	isMain, ok := parseBoolQuery(c, "isMain")
	if !ok {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, response.MsgDataMissing))
		return
	}

	query := service.ListCashRegistersQuery{
		Status:        status,
		IsMain:        isMain,
		SearchKeyword: c.Query("searchKeyword"),
	}
	if params.Enabled {
		query.Page = params.Page
		query.ItemsPerPage = params.Limit
	}

	list, err := h.registerService.GetAllCashRegister(c.Request.Context(), caller.OwnerID(), query)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgCashRegistersFetched, list))
}

// UpdateCashRegister patches a register. Deactivating a secondary register
// sweeps its balance into the main register.
// @Summary      Update cash register
// @Tags         cash-registers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                                true  "Register ID"
// @Param        payload  body      service.UpdateCashRegisterRequest  true  "Patch"
// @Success      200      {object}  response.Response{data=service.CashRegisterResponse}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /cash-register/update/{id} [patch]
func (h *CashRegisterHandler) UpdateCashRegister(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateCashRegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	register, err := h.registerService.UpdateCashRegister(c.Request.Context(), caller, id, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgCashRegisterUpdated, register))
}

// DeleteCashRegister removes a secondary register
// @Summary      Delete cash register
// @Tags         cash-registers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Register ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /cash-register/delete/{id} [delete]
func (h *CashRegisterHandler) DeleteCashRegister(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.registerService.DeleteCashRegister(c.Request.Context(), caller, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgCashRegisterDeleted, nil))
}
