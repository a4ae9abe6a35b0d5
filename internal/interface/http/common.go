package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/streamnest/streamnest/internal/application"
	"github.com/streamnest/streamnest/internal/domain/entity"
)

func clientIP(c *gin.Context) string {
	if ip := c.GetString("real_ip"); ip != "" {
		return ip
	}
	return c.ClientIP()
}

// statusFor maps service errors onto HTTP statuses. Anything unmapped is an
// internal error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrUserNotFound),
		errors.Is(err, application.ErrChannelNotFound),
		errors.Is(err, application.ErrUnknownStreamKey),
		errors.Is(err, application.ErrNotFollowing):
		return http.StatusNotFound
	case errors.Is(err, application.ErrDuplicateUsername),
		errors.Is(err, application.ErrDuplicateEmail),
		errors.Is(err, application.ErrAlreadyFollowing),
		errors.Is(err, application.ErrAlreadyLive):
		return http.StatusConflict
	case errors.Is(err, application.ErrSelfFollow),
		errors.Is(err, application.ErrWrongCurrentValue),
		errors.Is(err, application.ErrBirthdayInFuture):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// userJSON is the public identity shape; the credential hash never leaves
// the handler layer.
func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"username":        u.Username,
		"email":           u.Email,
		"birthday":        u.Birthday.Format("2006-01-02"),
		"follower_count":  u.FollowerCount,
		"profile_picture": u.ProfilePicture,
		"about":           u.About,
		"created_at":      u.CreatedAt,
		"updated_at":      u.UpdatedAt,
	}
}

// cardJSON is the reduced shape used in follower lists and rankings.
func cardJSON(u *entity.User) gin.H {
	return gin.H{
		"id":              u.ID,
		"username":        u.Username,
		"follower_count":  u.FollowerCount,
		"profile_picture": u.ProfilePicture,
	}
}

func cardsJSON(users []entity.User) []gin.H {
	out := make([]gin.H, 0, len(users))
	for i := range users {
		out = append(out, cardJSON(&users[i]))
	}
	return out
}

// channelJSON omits the stream key; it is only ever returned to the owner via
// the key endpoint.
func channelJSON(ch *entity.Channel) gin.H {
	return gin.H{
		"id":                 ch.ID,
		"user_id":            ch.UserID,
		"title":              ch.Title,
		"description":        ch.Description,
		"is_live":            ch.IsLive,
		"stream_title":       ch.StreamTitle,
		"stream_description": ch.StreamDescription,
		"stream_category":    ch.StreamCategory,
		"thumbnail":          ch.Thumbnail,
		"created_at":         ch.CreatedAt,
		"updated_at":         ch.UpdatedAt,
	}
}
