package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/INIRU/Tinklepaw-sub002/internal/service"
)

// PanelHandler exposes the manual room primitives: create, rename, relimit,
// lock, region, invite, delete, plus runtime configuration. These drive the
// same stores and channel API as the automatic flow.
type PanelHandler struct {
	rooms *service.RoomControlService
}

// NewPanelHandler creates the handler.
func NewPanelHandler(rooms *service.RoomControlService) *PanelHandler {
	if rooms == nil {
		panic("RoomControlService cannot be nil for PanelHandler")
	}
	return &PanelHandler{rooms: rooms}
}

// CreateRoomRequest asks for a room on behalf of an owner.
type CreateRoomRequest struct {
	OwnerID     string `json:"owner_id" binding:"required"`
	DisplayName string `json:"display_name"`
	UserLimit   *int   `json:"user_limit"` // nil = use the owner's template
}

// CreateRoomResponse reports the created room.
type CreateRoomResponse struct {
	ChannelID  string `json:"channel_id"`
	OwnerID    string `json:"owner_id"`
	CategoryID string `json:"category_id,omitempty"`
}

// CreateRoom handles POST /api/rooms.
func (h *PanelHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: owner_id is required")
		return
	}
	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.OwnerID
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), req.OwnerID, displayName, req.UserLimit)
	if err != nil {
		h.writeError(c, err, "create room")
		return
	}
	SuccessResponse(c, http.StatusOK, CreateRoomResponse{
		ChannelID:  room.ChannelID,
		OwnerID:    room.OwnerID,
		CategoryID: room.CategoryID,
	})
}

// UpdateRoomRequest patches a room's display settings.
type UpdateRoomRequest struct {
	Name      *string `json:"name"`
	UserLimit *int    `json:"user_limit"`
	RTCRegion *string `json:"rtc_region"`
}

// UpdateRoom handles PATCH /api/rooms/:channelId.
func (h *PanelHandler) UpdateRoom(c *gin.Context) {
	channelID := c.Param("channelId")
	var req UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx := c.Request.Context()
	if req.Name != nil {
		if err := h.rooms.Rename(ctx, channelID, *req.Name); err != nil {
			h.writeError(c, err, "rename room")
			return
		}
	}
	if req.UserLimit != nil {
		if err := h.rooms.SetUserLimit(ctx, channelID, *req.UserLimit); err != nil {
			h.writeError(c, err, "set user limit")
			return
		}
	}
	if req.RTCRegion != nil {
		if err := h.rooms.SetRegion(ctx, channelID, *req.RTCRegion); err != nil {
			h.writeError(c, err, "set region")
			return
		}
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Room updated"})
}

// LockRequest toggles the room's lock state.
type LockRequest struct {
	Locked *bool `json:"locked" binding:"required"`
}

// SetLock handles POST /api/rooms/:channelId/lock.
func (h *PanelHandler) SetLock(c *gin.Context) {
	var req LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: locked is required")
		return
	}
	if err := h.rooms.SetLock(c.Request.Context(), c.Param("channelId"), *req.Locked); err != nil {
		h.writeError(c, err, "set lock")
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Lock state updated"})
}

// InviteRequest grants one member connect access.
type InviteRequest struct {
	MemberID string `json:"member_id" binding:"required"`
}

// Invite handles POST /api/rooms/:channelId/invite.
func (h *PanelHandler) Invite(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input: member_id is required")
		return
	}
	if err := h.rooms.Invite(c.Request.Context(), c.Param("channelId"), req.MemberID); err != nil {
		h.writeError(c, err, "invite member")
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Member invited"})
}

// DeleteRoom handles DELETE /api/rooms/:channelId.
func (h *PanelHandler) DeleteRoom(c *gin.Context) {
	if err := h.rooms.DeleteRoom(c.Request.Context(), c.Param("channelId")); err != nil {
		h.writeError(c, err, "delete room")
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Room deleted"})
}

// ConfigResponse mirrors the runtime configuration.
type ConfigResponse struct {
	TriggerChannelID   string `json:"trigger_channel_id"`
	OverrideCategoryID string `json:"override_category_id"`
}

// GetConfig handles GET /api/config.
func (h *PanelHandler) GetConfig(c *gin.Context) {
	cfg, err := h.rooms.Config(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "load config")
		return
	}
	SuccessResponse(c, http.StatusOK, ConfigResponse{
		TriggerChannelID:   cfg.TriggerChannelID,
		OverrideCategoryID: cfg.OverrideCategoryID,
	})
}

// UpdateConfigRequest replaces the runtime configuration.
type UpdateConfigRequest struct {
	TriggerChannelID   string `json:"trigger_channel_id"`
	OverrideCategoryID string `json:"override_category_id"`
}

// UpdateConfig handles PUT /api/config.
func (h *PanelHandler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := h.rooms.UpdateConfig(c.Request.Context(), req.TriggerChannelID, req.OverrideCategoryID); err != nil {
		h.writeError(c, err, "update config")
		return
	}
	SuccessResponse(c, http.StatusOK, gin.H{"message": "Config updated"})
}

func (h *PanelHandler) writeError(c *gin.Context, err error, op string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		ErrorResponse(c, http.StatusBadRequest, "Invalid input")
	case errors.Is(err, service.ErrRoomNotTracked), errors.Is(err, service.ErrRoomNotFound):
		ErrorResponse(c, http.StatusNotFound, "Channel is not a tracked voice room")
	case errors.Is(err, service.ErrCreationInProgress):
		ErrorResponse(c, http.StatusConflict, "Room creation already in progress for this owner")
	default:
		logrus.WithError(err).Errorf("Handler.Panel: Failed to %s", op)
		ErrorResponse(c, http.StatusInternalServerError, "Internal server error")
	}
}
