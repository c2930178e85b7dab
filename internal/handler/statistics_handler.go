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

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	logger            *logrus.Logger
}

func NewStatisticsHandler(statisticsService service.StatisticsService, logger *logrus.Logger) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, logger: logger}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statsGroup := router.Group("/statistics")
	{
		statsGroup.GET("/ledger", middleware.RequireRole(model.TypePartner, model.TypeEmployee), h.GetLedgerStatistics)
	}
}

// @Summary      Get ledger statistics
// @Description  Register counts, main balance and total balance of the caller's tenant
// @Tags         Statistics
// @Produce      json
// @Success      200 {object} response.Response{data=model.LedgerStatistics}
// @Failure      401 {object} response.Response "Unauthorized"
// @Failure      500 {object} response.Response "Internal server error"
// @Security     BearerAuth
// @Router       /statistics/ledger [get]
func (h *StatisticsHandler) GetLedgerStatistics(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}

	stats, err := h.statisticsService.GetLedgerStatistics(c.Request.Context(), caller.OwnerID())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(response.MsgStatisticsFetched, stats))
}
