package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RoomHandlers provides HTTP handlers for room inspection endpoints.
type RoomHandlers struct {
	hub Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// RoomResponse represents an occupied room in API responses.
type RoomResponse struct {
	Name  string   `json:"name"`
	Users []string `json:"users"`
	Count int      `json:"count"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ListRooms handles listing occupied rooms.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "rooms unavailable"})
		return
	}

	response := make([]RoomResponse, 0, len(rooms))
	for _, r := range roomsToProto(rooms) {
		response = append(response, RoomResponse{
			Name:  r.Name,
			Users: r.Users,
			Count: len(r.Users),
		})
	}

	h.log.Debug().Int("room_count", len(response)).Msg("rooms listed successfully")
	c.JSON(http.StatusOK, response)
}
