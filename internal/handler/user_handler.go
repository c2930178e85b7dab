package handler

import (
	"net/http"
	"time"

	"repairshop/internal/middleware"
	"repairshop/internal/model"
	"repairshop/internal/service"
	"repairshop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type UserHandler struct {
	userService service.UserService
	tokenTTL    time.Duration
	release     bool
	logger      *logrus.Logger
}

// NewUserHandler sets up the routing dependencies for auth and user endpoints
func NewUserHandler(userService service.UserService, tokenTTL time.Duration, release bool, logger *logrus.Logger) *UserHandler {
	return &UserHandler{userService: userService, tokenTTL: tokenTTL, release: release, logger: logger}
}

// RegisterPublicRoutes binds the endpoints reachable without a token
func (h *UserHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/auth/login", h.Login)
}

// RegisterRoutes binds the endpoints behind authentication
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/auth/me", h.GetMe)
	router.POST("/user/create-employee", middleware.RequireRole(model.TypePartner), h.CreateEmployee)
}

// Login authenticates with email or phone and sets the access token cookie
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Router       /auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	middleware.SetTokenCookie(c, res.Token, h.tokenTTL, h.release)
	c.JSON(http.StatusOK, response.Success(response.MsgLoginSuccess, res))
}

// GetMe returns the authenticated user
// @Summary      Current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.UserResponse}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}

	user, err := h.userService.Me(c.Request.Context(), caller.ID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgUserFetched, user))
}

// CreateEmployee adds an employee to the partner's shop
// @Summary      Create employee
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateEmployeeRequest  true  "Employee"
// @Success      200      {object}  response.Response{data=service.UserResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /user/create-employee [post]
func (h *UserHandler) CreateEmployee(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req service.CreateEmployeeRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.userService.CreateEmployee(c.Request.Context(), caller, req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgEmployeeAdded, user))
}
