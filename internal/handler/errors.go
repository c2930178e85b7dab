package handler

import (
	"errors"
	"net/http"
	"strconv"

	"repairshop/internal/middleware"
	"repairshop/internal/model"
	"repairshop/internal/service"
	"repairshop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps a domain error kind to its HTTP status
func statusFor(err error) (int, bool) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
		return http.StatusBadRequest, true
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, true
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, true
	case errors.Is(err, service.ErrForbidden), errors.Is(err, service.ErrDependency):
		return http.StatusForbidden, true
	}
	return 0, false
}

// writeError answers with the domain message, or with an opaque 500 after
// logging anything that is not a business outcome.
func writeError(c *gin.Context, logger *logrus.Logger, err error) {
	var domainErr *service.DomainError
	if errors.As(err, &domainErr) {
		if status, ok := statusFor(domainErr); ok {
			c.JSON(status, response.Error(status, domainErr.Message))
			return
		}
	}

	logger.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
	}).WithError(err).Error("request failed")
	c.JSON(http.StatusInternalServerError, response.ServerError())
}

// parseID reads a positive numeric path parameter, answering 400 invalidId otherwise
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, response.MsgInvalidID))
		return 0, false
	}
	return uint(id), true
}

// bindJSON decodes and validates the body, answering 400 dataMissing on failure
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, response.MsgDataMissing))
		return false
	}
	return true
}

func currentIdentity(c *gin.Context) (model.Identity, bool) {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, response.MsgNoToken))
	}
	return identity, ok
}

// parseBoolQuery accepts only the literals "true" and "false"
func parseBoolQuery(c *gin.Context, name string) (*bool, bool) {
	raw, present := c.GetQuery(name)
	if !present {
		return nil, true
	}
	switch raw {
	case "true":
		v := true
		return &v, true
	case "false":
		v := false
		return &v, true
	}
	return nil, false
}
