package application

import (
	"context"

	"github.com/streamnest/streamnest/internal/domain/entity"
	repo "github.com/streamnest/streamnest/internal/domain/repository"
)

// DefaultMostFollowedLimit matches the home page carousel size.
const DefaultMostFollowedLimit = 8

// DirectoryService answers the read-only aggregate queries: most-followed
// ranking, substring search, and the live-channel listing. It never mutates
// anything.
type DirectoryService struct {
	Users    repo.UserRepository
	Channels repo.ChannelRepository
}

// Search matches the query as a literal, case-insensitive substring of the
// username. Punctuation in the query matches itself, never as a pattern.
// No match is an empty slice, not an error.
func (s *DirectoryService) Search(ctx context.Context, query string) ([]entity.User, error) {
	if query == "" {
		return []entity.User{}, nil
	}
	return s.Users.SearchByUsername(ctx, query)
}

// MostFollowed returns up to limit users by descending follower count, ties
// broken by id ascending for a stable order.
func (s *DirectoryService) MostFollowed(ctx context.Context, limit int) ([]entity.User, error) {
	if limit <= 0 {
		limit = DefaultMostFollowedLimit
	}
	return s.Users.MostFollowed(ctx, limit)
}

// ListLiveChannels returns every channel currently live, thumbnails resolved.
func (s *DirectoryService) ListLiveChannels(ctx context.Context) ([]entity.Channel, error) {
	return s.Channels.ListLive(ctx)
}
