package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"videonet/internal/core/domain"
	"videonet/internal/core/services"
	"videonet/internal/infrastructure/signal"
)

func newRoomRouter(t *testing.T) (*gin.Engine, *services.Registry, *services.Quality) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	logger := zap.NewNop().Sugar()
	registry := services.NewRegistry()
	quality := services.NewQuality()
	hub := signal.NewHub(8, signal.NopMetrics{}, logger)
	presence := services.NewPresence(registry, hub, logger)

	router := gin.New()
	NewRoomHandler(registry, presence, quality).SetupRoutes(router)
	return router, registry, quality
}

func TestRoomHandler_ListRooms(t *testing.T) {
	router, registry, _ := newRoomRouter(t)

	registry.Register("a")
	registry.Register("b")
	registry.Join("a", "standup", nil)
	registry.Join("b", "standup", nil)
	registry.Join("b", "retro", nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rooms       []domain.RoomInfo `json:"rooms"`
		Connections int               `json:"connections"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, 2, resp.Connections)
	require.Len(t, resp.Rooms, 2)
	assert.Equal(t, domain.RoomID("retro"), resp.Rooms[0].ID)
	assert.Equal(t, 1, resp.Rooms[0].MemberCount)
	assert.Equal(t, domain.RoomID("standup"), resp.Rooms[1].ID)
	assert.Equal(t, 2, resp.Rooms[1].MemberCount)
}

func TestRoomHandler_GetQuality(t *testing.T) {
	router, _, quality := newRoomRouter(t)
	require.NoError(t, quality.Set(80))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/quality", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 80, resp["quality"])
}
