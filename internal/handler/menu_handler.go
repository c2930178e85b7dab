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

// MenuHandler serves the menu catalog and the resolved permission trees
type MenuHandler struct {
	menuService service.MenuService
	roleService service.RoleService
	logger      *logrus.Logger
}

func NewMenuHandler(menuService service.MenuService, roleService service.RoleService, logger *logrus.Logger) *MenuHandler {
	return &MenuHandler{menuService: menuService, roleService: roleService, logger: logger}
}

func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	menus := router.Group("/menu")
	{
		admin := middleware.RequireRole(model.TypeAdmin)
		menus.POST("/create-menu", admin, h.CreateMenus)
		menus.PATCH("/update-menu/:id", admin, h.UpdateMenu)
		menus.DELETE("/delete-menu/:id", admin, h.DeleteMenu)
		menus.GET("/all-menus", admin, h.GetAllMenus)

		tenant := middleware.RequireRole(model.TypePartner, model.TypeEmployee)
		menus.GET("/all-menus-partner", tenant, h.GetAllMenusPartner)
		menus.GET("/all-menus-role/:id", tenant, h.GetAllMenusRole)

		menus.GET("/permessions", middleware.RequireRole(model.TypeEmployee), h.GetPermissions)
	}
}

// CreateMenus adds menus with their buttons, all or nothing
// @Summary      Create menus
// @Tags         menus
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateMenusRequest  true  "Menus to create"
// @Success      200      {object}  response.Response{data=[]service.MenuResponse}
// @Failure      400      {object}  response.Response
// @Router       /menu/create-menu [post]
func (h *MenuHandler) CreateMenus(c *gin.Context) {
	var req service.CreateMenusRequest
	if !bindJSON(c, &req) {
		return
	}

	menus, err := h.menuService.CreateMenus(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgMenuAdded, menus))
}

// UpdateMenu renames a menu and upserts or removes its buttons
// @Summary      Update menu
// @Tags         menus
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                        true  "Menu ID"
// @Param        payload  body      service.UpdateMenuRequest  true  "Menu patch"
// @Success      200      {object}  response.Response{data=service.MenuResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /menu/update-menu/{id} [patch]
func (h *MenuHandler) UpdateMenu(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateMenuRequest
	if !bindJSON(c, &req) {
		return
	}

	menu, err := h.menuService.UpdateMenu(c.Request.Context(), id, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgMenuUpdated, menu))
}

// DeleteMenu removes a menu; its buttons cascade
// @Summary      Delete menu
// @Tags         menus
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Menu ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /menu/delete-menu/{id} [delete]
func (h *MenuHandler) DeleteMenu(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.menuService.DeleteMenu(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgMenuDeleted, nil))
}

// GetAllMenus returns the raw catalog
// @Summary      List menus
// @Tags         menus
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.MenuResponse}
// @Router       /menu/all-menus [get]
func (h *MenuHandler) GetAllMenus(c *gin.Context) {
	menus, err := h.menuService.GetAllMenus(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgMenusFetched, menus))
}

// GetAllMenusPartner returns the catalog as an unchecked permission tree
// @Summary      List menus for role editing
// @Tags         menus
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.MenuPermission}
// @Router       /menu/all-menus-partner [get]
func (h *MenuHandler) GetAllMenusPartner(c *gin.Context) {
	menus, err := h.menuService.GetAllMenusPartner(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgMenusFetched, menus))
}

// GetAllMenusRole resolves the permission tree of one tenant role
// @Summary      Role permission tree
// @Tags         menus
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Role ID"
// @Success      200  {object}  response.Response{data=[]service.MenuPermission}
// @Failure      401  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /menu/all-menus-role/{id} [get]
func (h *MenuHandler) GetAllMenusRole(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	menus, err := h.roleService.GetAllMenusRole(c.Request.Context(), caller, id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgMenusFetched, menus))
}

// GetPermissions resolves the permission tree of the calling employee
// @Summary      Current user permissions
// @Tags         menus
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.MenuPermission}
// @Failure      404  {object}  response.Response
// @Router       /menu/permessions [get]
func (h *MenuHandler) GetPermissions(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}

	menus, err := h.roleService.GetPermissions(c.Request.Context(), caller.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgPermissionsFetched, menus))
}
