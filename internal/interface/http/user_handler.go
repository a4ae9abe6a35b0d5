package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/streamnest/streamnest/internal/application"
	"github.com/streamnest/streamnest/pkg/helpers"
	"github.com/streamnest/streamnest/pkg/response"
	"github.com/streamnest/streamnest/pkg/validation"
)

type UserHandler struct {
	Svc     *application.UserService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type changeUsernameRequest struct {
	Username    string `json:"username" binding:"required,max=255"`
	NewUsername string `json:"new_username" binding:"required,max=255"`
}

type changeEmailRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	NewEmail string `json:"new_email" binding:"required,email,max=255"`
}

type changePasswordRequest struct {
	Password    string `json:"password" binding:"required,pwd"`
	NewPassword string `json:"new_password" binding:"required,pwd"`
}

// GetProfile GET /api/profile
func (h *UserHandler) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "profile", nil)
}

// PublicProfile GET /api/profile/:id returns the public channel card.
func (h *UserHandler) PublicProfile(c *gin.Context) {
	u, err := h.Svc.GetProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, cardJSON(u), "channel card", nil)
}

// ChangeUsername PUT /api/usernameupdate renames the caller. The claimed
// current username must still match before the rename is applied.
func (h *UserHandler) ChangeUsername(c *gin.Context) {
	var req changeUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.ChangeUsername(c.Request.Context(), c.GetString("userID"), req.Username, req.NewUsername)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "username updated", nil)
}

// ChangeEmail PUT /api/emailupdate
func (h *UserHandler) ChangeEmail(c *gin.Context) {
	var req changeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.ChangeEmail(c.Request.Context(), c.GetString("userID"), req.Email, req.NewEmail)
	if err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success(c, http.StatusOK, userJSON(u), "email updated", nil)
}

// ChangePassword PUT /api/passwordupdate
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ChangePassword(c.Request.Context(), c.GetString("userID"), req.Password, req.NewPassword); err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"updated": true}, "password updated", nil)
}

// Delete DELETE /api/userdelete cascades edges, channel, sessions and
// messages, then invalidates the session. A second attempt with the same
// token fails with 401 at the auth middleware, not a silent no-op here.
func (h *UserHandler) Delete(c *gin.Context) {
	uid := c.GetString("userID")
	if err := h.Svc.Delete(c.Request.Context(), uid); err != nil {
		response.Error[any](c, statusFor(err), err.Error(), nil)
		return
	}
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}

// UploadPicture POST /api/picture stores a multipart upload, replacing and
// deleting the previous image.
func (h *UserHandler) UploadPicture(c *gin.Context) {
	file, err := c.FormFile("profile_picture")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "profile_picture file is required", nil)
		return
	}
	src, err := file.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read upload", nil)
		return
	}
	defer func() { _ = src.Close() }()

	contentType := file.Header.Get("Content-Type")
	url, err := h.Svc.UploadProfilePicture(c.Request.Context(), c.GetString("userID"), src, file.Filename, contentType)
	if err != nil {
		response.Error[any](c, statusFor(err), "failed to upload picture", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"url": url}, "profile picture updated", nil)
}

// SearchRanked GET /api/users/search?q= runs a relevance-ranked search on the
// Elasticsearch profile index, for authenticated callers.
func (h *UserHandler) SearchRanked(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "q is required", nil)
		return
	}
	hits, err := h.Svc.SearchUsersRanked(c.Request.Context(), q, 10)
	if err != nil {
		response.Error[any](c, http.StatusInternalServerError, "search failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"users": hits}, "search results", nil)
}
