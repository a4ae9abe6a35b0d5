package repository

import (
	"context"

	"github.com/streamnest/streamnest/internal/domain/entity"
)

// ChannelRepository persists channels and their stream sessions.
//
// SetStreamKey reports ErrDuplicateKey when the key collides with another
// channel (global uniqueness is enforced by the storage layer, not by a
// check-then-insert). StartStream transitions the channel to live by stream
// key inside one transaction: it reports ErrAlreadyLive when the flag is
// already set, force-closes any dangling live session rows first, opens a new
// session and applies the metadata patch. EndStream* are idempotent no-ops
// when the channel is already offline.
type ChannelRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.Channel, error)
	GetByStreamKey(ctx context.Context, key string) (*entity.Channel, error)
	UpdateProfile(ctx context.Context, userID string, patch entity.ChannelPatch) (*entity.Channel, error)
	SetStreamKey(ctx context.Context, userID, key string) (*entity.Channel, error)
	StartStream(ctx context.Context, key string, patch entity.StreamPatch, thumbnail *string) (*entity.Channel, *entity.Stream, error)
	EndStreamByKey(ctx context.Context, key string) (*entity.Channel, error)
	EndStreamByUserID(ctx context.Context, userID string) (*entity.Channel, error)
	ListLive(ctx context.Context) ([]entity.Channel, error)
}
