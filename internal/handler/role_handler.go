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

type RoleHandler struct {
	roleService service.RoleService
	logger      *logrus.Logger
}

func NewRoleHandler(roleService service.RoleService, logger *logrus.Logger) *RoleHandler {
	return &RoleHandler{roleService: roleService, logger: logger}
}

func (h *RoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	roles := router.Group("/role")
	roles.Use(middleware.RequireRole(model.TypePartner, model.TypeEmployee))
	{
		roles.POST("/create-role", h.CreateRole)
		roles.GET("/all-roles", h.GetAllRoles)
		roles.DELETE("/delete-role/:id", h.DeleteRole)
		roles.PATCH("/update-role/:id", h.UpdateRole)
	}
}

// CreateRole creates a tenant role together with its permission assignments
// @Summary      Create role
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateRoleRequest  true  "Role with its menu tree"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Router       /role/create-role [post]
func (h *RoleHandler) CreateRole(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req service.CreateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.CreateRole(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgRoleAdded, role))
}

// GetAllRoles lists the live roles of the caller's tenant
// @Summary      List roles
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Router       /role/all-roles [get]
func (h *RoleHandler) GetAllRoles(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}

	roles, err := h.roleService.GetAllRoles(c.Request.Context(), caller.OwnerID())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgRolesFetched, roles))
}

// DeleteRole soft-deletes a role of the caller's tenant
// @Summary      Delete role
// @Tags         roles
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Role ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /role/delete-role/{id} [delete]
func (h *RoleHandler) DeleteRole(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.roleService.DeleteRole(c.Request.Context(), caller, id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgRoleDeleted, nil))
}

// UpdateRole toggles the checked flag of the submitted buttons
// @Summary      Update role permissions
// @Tags         roles
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Role ID"
// @Param        payload  body      service.UpdateRoleRequest  true  "Menu tree with checked flags"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Failure      404      {object}  response.Response
// @Router       /role/update-role/{id} [patch]
func (h *RoleHandler) UpdateRole(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), caller, id, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgRoleUpdated, role))
}
