package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/gin-gonic/gin"
)

type roomHandlers struct {
	rooms core.RoomManager
}

type createRoomRequest struct {
	Name string `json:"name" binding:"required"`
}

func roomInfo(room core.RoomService) core.RoomInfo {
	return core.RoomInfo{ID: room.Room().ID, Name: room.Room().Name, MemberCount: room.MemberCount()}
}

// GET /api/rooms
func (h *roomHandlers) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.rooms.List()})
}

// POST /api/rooms
func (h *roomHandlers) create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, core.Errorf(core.KindInvalidArgument, "missing or invalid name"))
		return
	}
	room, err := h.rooms.CreateRoom(req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, roomInfo(room))
}

// GET /api/rooms/:id
func (h *roomHandlers) get(c *gin.Context) {
	room, ok := h.rooms.GetRoom(domain.RoomID(c.Param("id")))
	if !ok {
		writeError(c, core.Errorf(core.KindRoomNotFound, "room %s does not exist", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, roomInfo(room))
}

// GET /api/rooms/:id/members
func (h *roomHandlers) members(c *gin.Context) {
	room, ok := h.rooms.GetRoom(domain.RoomID(c.Param("id")))
	if !ok {
		writeError(c, core.Errorf(core.KindRoomNotFound, "room %s does not exist", c.Param("id")))
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": room.MembersSnapshot()})
}

func writeError(c *gin.Context, err error) {
	kind := core.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case core.KindInvalidArgument, core.KindBadPayload:
		status = http.StatusBadRequest
	case core.KindUnauthenticated:
		status = http.StatusUnauthorized
	case core.KindRoomNotFound:
		status = http.StatusNotFound
	case core.KindRateLimited:
		status = http.StatusTooManyRequests
	}
	detail := err.Error()
	var e *core.Error
	if errors.As(err, &e) && e.Detail != "" {
		detail = e.Detail
	}
	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"kind": kind, "detail": detail}})
}
