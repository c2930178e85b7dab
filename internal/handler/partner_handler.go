package handler

import (
	"net/http"

	"repairshop/internal/service"
	"repairshop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type PartnerHandler struct {
	partnerService service.PartnerService
	logger         *logrus.Logger
}

func NewPartnerHandler(partnerService service.PartnerService, logger *logrus.Logger) *PartnerHandler {
	return &PartnerHandler{partnerService: partnerService, logger: logger}
}

// RegisterRoutes binds the public onboarding endpoint
func (h *PartnerHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/auth/register", h.RegisterPartner)
}

// RegisterPartner creates a shop owner account and its main cash register
// @Summary      Register partner
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RegisterPartnerRequest  true  "Partner"
// @Success      200      {object}  response.Response{data=service.PartnerResponse}
// @Failure      400      {object}  response.Response
// @Router       /auth/register [post]
func (h *PartnerHandler) RegisterPartner(c *gin.Context) {
	var req service.RegisterPartnerRequest
	if !bindJSON(c, &req) {
		return
	}

	partner, err := h.partnerService.RegisterPartner(c.Request.Context(), req)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgPartnerAdded, partner))
}
