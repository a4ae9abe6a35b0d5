package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/streamnest/streamnest/internal/application"
	"github.com/streamnest/streamnest/pkg/response"
)

type FollowHandler struct {
	Svc       *application.FollowService
	Directory *application.DirectoryService
	Logger    *logrus.Logger
}

func NewFollowHandler(svc *application.FollowService, dir *application.DirectoryService, logger *logrus.Logger) *FollowHandler {
	return &FollowHandler{Svc: svc, Directory: dir, Logger: logger}
}

// Follow POST /api/follow/:id
func (h *FollowHandler) Follow(c *gin.Context) {
	if err := h.Svc.Follow(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"following": true}, "followed successfully", nil)
}

// Unfollow DELETE /api/unfollow/:id
func (h *FollowHandler) Unfollow(c *gin.Context) {
	if err := h.Svc.Unfollow(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"following": false}, "unfollowed successfully", nil)
}

// Followers GET /api/users/:id/followers
func (h *FollowHandler) Followers(c *gin.Context) {
	users, err := h.Svc.ListFollowers(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"followers": cardsJSON(users)}, "followers", nil)
}

// Following GET /api/following lists who the caller follows. The listing is
// scoped to the session identity; there is no way to read another user's.
func (h *FollowHandler) Following(c *gin.Context) {
	users, err := h.Svc.ListFollowing(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"following": cardsJSON(users)}, "following", nil)
}

// IsFollowing GET /api/isfollowing/:id
func (h *FollowHandler) IsFollowing(c *gin.Context) {
	following, err := h.Svc.IsFollowing(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"is_following": following}, "follow state", nil)
}

// MostFollowed GET /api/most_followed?limit=
func (h *FollowHandler) MostFollowed(c *gin.Context) {
	limit := application.DefaultMostFollowedLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	users, err := h.Directory.MostFollowed(c.Request.Context(), limit)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "failed to rank users", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": cardsJSON(users)}, "most followed", nil)
}
