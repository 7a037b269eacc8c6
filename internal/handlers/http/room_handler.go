package http

import (
	"net/http"

	"videonet/internal/core/ports"

	"github.com/gin-gonic/gin"
)

// RoomHandler exposes read-only diagnostics over the signaling state plus
// the global quality parameter consumed by the compression collaborator.
type RoomHandler struct {
	registry ports.ConnectionRegistry
	presence ports.PresenceService
	quality  ports.QualityService
}

func NewRoomHandler(registry ports.ConnectionRegistry, presence ports.PresenceService, quality ports.QualityService) *RoomHandler {
	return &RoomHandler{
		registry: registry,
		presence: presence,
		quality:  quality,
	}
}

func (h *RoomHandler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api/v1")
	{
		api.GET("/rooms", h.ListRooms)
		api.GET("/quality", h.GetQuality)
	}
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms":       h.presence.ListRooms(),
		"connections": h.registry.Count(),
	})
}

func (h *RoomHandler) GetQuality(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"quality": h.quality.Get(),
	})
}
