package handler

import (
	"repairshop/internal/websocket"

	"github.com/gin-gonic/gin"
)

// WsHandler upgrades authenticated clients onto the presence hub
type WsHandler struct {
	hub *websocket.Hub
}

func NewWsHandler(hub *websocket.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

func (h *WsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/ws", h.Serve)
}

func (h *WsHandler) Serve(c *gin.Context) {
	caller, ok := currentIdentity(c)
	if !ok {
		return
	}
	websocket.ServeWs(h.hub, c, caller.ID)
}
