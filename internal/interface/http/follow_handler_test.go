package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamnest/streamnest/internal/application"
	"github.com/streamnest/streamnest/internal/domain/entity"
	repo "github.com/streamnest/streamnest/internal/domain/repository"
)

// recordingFollowRepo records which user id the following listing was
// scoped to.
type recordingFollowRepo struct {
	listedFollowing string
}

func (r *recordingFollowRepo) Insert(context.Context, string, string) error { return nil }
func (r *recordingFollowRepo) Delete(context.Context, string, string) error { return nil }
func (r *recordingFollowRepo) Exists(context.Context, string, string) (bool, error) {
	return false, nil
}
func (r *recordingFollowRepo) ListFollowers(context.Context, string) ([]entity.User, error) {
	return nil, nil
}
func (r *recordingFollowRepo) ListFollowing(_ context.Context, userID string) ([]entity.User, error) {
	r.listedFollowing = userID
	return []entity.User{{ID: userID, Username: "alice"}}, nil
}

var _ repo.FollowRepository = (*recordingFollowRepo)(nil)

// The following listing is always the session user's own, regardless of
// anything else in the request.
func TestFollowingScopedToSessionIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	follows := &recordingFollowRepo{}
	h := NewFollowHandler(&application.FollowService{Follows: follows}, nil, nil)

	r := gin.New()
	r.GET("/api/following", func(c *gin.Context) { c.Set("userID", "user-0001") }, h.Following)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/following?id=user-0002", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-0001", follows.listedFollowing)
}
