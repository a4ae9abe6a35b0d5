package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/streamnest/streamnest/internal/application"
	"github.com/streamnest/streamnest/internal/domain/entity"
	"github.com/streamnest/streamnest/pkg/response"
	"github.com/streamnest/streamnest/pkg/validation"
)

type ChannelHandler struct {
	Svc       *application.ChannelService
	Directory *application.DirectoryService
	Logger    *logrus.Logger
}

func NewChannelHandler(svc *application.ChannelService, dir *application.DirectoryService, logger *logrus.Logger) *ChannelHandler {
	return &ChannelHandler{Svc: svc, Directory: dir, Logger: logger}
}

type updateChannelRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=255"`
	Description *string `json:"description"`
}

type startStreamRequest struct {
	StreamKey   string  `form:"stream_key" json:"stream_key" binding:"required"`
	Title       *string `form:"title" json:"title"`
	Description *string `form:"description" json:"description"`
	Category    *string `form:"category" json:"category"`
}

type endStreamRequest struct {
	StreamKey string `json:"stream_key" binding:"required"`
}

type searchRequest struct {
	Query string `json:"query" binding:"required"`
}

// Show GET /api/channel/:id returns the channel plus its owner's card.
func (h *ChannelHandler) Show(c *gin.Context) {
	page, err := h.Svc.GetPage(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"channel": channelJSON(page.Channel),
		"user":    cardJSON(page.Owner),
	}, "channel", nil)
}

// Update PUT /api/channel is a nullable patch; absent fields stay as they are.
func (h *ChannelHandler) Update(c *gin.Context) {
	var req updateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ch, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), entity.ChannelPatch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"channel": channelJSON(ch)}, "channel updated", nil)
}

// RegenerateKey POST /api/channel/key is owner only (enforced by auth scope:
// the key is always regenerated for the caller's own channel).
func (h *ChannelHandler) RegenerateKey(c *gin.Context) {
	ch, err := h.Svc.RegenerateStreamKey(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stream_key": ch.StreamKey}, "stream key regenerated", nil)
}

// StartStream POST /api/stream/start authenticates by stream key, not
// token; the streaming software is the caller. Accepts multipart (with an
// optional thumbnail file) or plain JSON.
func (h *ChannelHandler) StartStream(c *gin.Context) {
	var req startStreamRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	in := application.StartStreamInput{
		StreamKey: req.StreamKey,
		Patch: entity.StreamPatch{
			Title:       req.Title,
			Description: req.Description,
			Category:    req.Category,
		},
	}
	if file, err := c.FormFile("thumbnail"); err == nil && file != nil {
		src, err := file.Open()
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "cannot read thumbnail", nil)
			return
		}
		defer func() { _ = src.Close() }()
		in.Thumbnail = src
		in.Filename = file.Filename
		in.MIMEType = file.Header.Get("Content-Type")
	}

	ch, stream, err := h.Svc.StartStream(c.Request.Context(), in)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"channel": channelJSON(ch),
		"stream": gin.H{
			"id":         stream.ID,
			"title":      stream.Title,
			"start_time": stream.StartTime,
			"is_live":    stream.IsLive,
		},
	}, "stream started", nil)
}

// EndStream POST /api/stream/end is idempotent: ending an offline channel is
// a success no-op.
func (h *ChannelHandler) EndStream(c *gin.Context) {
	var req endStreamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	ch, err := h.Svc.EndStreamByKey(c.Request.Context(), req.StreamKey)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"channel": channelJSON(ch)}, "stream ended", nil)
}

// EndOwnStream POST /api/channel/stream/end takes the caller's own channel
// offline without the stream key. Like EndStream it is an idempotent no-op
// on an offline channel.
func (h *ChannelHandler) EndOwnStream(c *gin.Context) {
	ch, err := h.Svc.EndStreamByUserID(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"channel": channelJSON(ch)}, "stream ended", nil)
}

// ListLive GET /api/streams/live
func (h *ChannelHandler) ListLive(c *gin.Context) {
	channels, err := h.Directory.ListLiveChannels(c.Request.Context())
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to list live channels", nil)
		return
	}
	out := make([]gin.H, 0, len(channels))
	for i := range channels {
		out = append(out, channelJSON(&channels[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"channels": out}, "live channels", nil)
}

// Search POST /api/search is a literal, case-insensitive substring match on
// usernames.
func (h *ChannelHandler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	users, err := h.Directory.Search(c.Request.Context(), req.Query)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": cardsJSON(users)}, "search results", nil)
}
