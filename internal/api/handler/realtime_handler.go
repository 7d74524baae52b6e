package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/citizenconnect/complaint-portal/internal/infrastructure/realtime"
)

// RealtimeHandler upgrades GET /ws to a websocket connection on the hub.
type RealtimeHandler struct {
	hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

// Connect opens a realtime connection. Clients announce themselves with a
// {"event":"registerUser","data":"<userId>"} frame.
//
// @Summary      Realtime events
// @Tags         realtime
// @Success      101
// @Router       /ws [get]
func (h *RealtimeHandler) Connect(c echo.Context) error {
	err := h.hub.ServeWS(c.Response(), c.Request())
	if errors.Is(err, realtime.ErrHubClosed) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Server shutting down")
	}
	// Upgrade failures have already been answered by the upgrader.
	return nil
}
