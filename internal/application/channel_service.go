package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/streamnest/streamnest/internal/domain/entity"
	repo "github.com/streamnest/streamnest/internal/domain/repository"
	"github.com/streamnest/streamnest/pkg/helpers"
)

// ChannelService owns channel metadata, stream keys, and the live/offline
// state machine. It is the only component that mutates is_live and session
// rows.
type ChannelService struct {
	Channels       repo.ChannelRepository
	Users          repo.UserRepository
	GCS            *storage.Client
	GCSBucket      string
	Logger         *logrus.Logger
	KeyMaxAttempts int
}

// ChannelPage is the public channel payload: the channel plus its owner.
type ChannelPage struct {
	Channel *entity.Channel
	Owner   *entity.User
}

func (s *ChannelService) GetPage(ctx context.Context, userID string) (*ChannelPage, error) {
	owner, err := s.Users.GetByID(ctx, userID)
	if err != nil || owner == nil {
		return nil, ErrUserNotFound
	}
	ch, err := s.Channels.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return &ChannelPage{Channel: ch, Owner: owner}, nil
}

// UpdateProfile applies a nullable patch; absent fields are left untouched.
func (s *ChannelService) UpdateProfile(ctx context.Context, userID string, patch entity.ChannelPatch) (*entity.Channel, error) {
	ch, err := s.Channels.UpdateProfile(ctx, userID, patch)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrChannelNotFound
	}
	return ch, err
}

// RegenerateStreamKey generates random keys until the storage layer accepts
// one as unique, with a bounded attempt count. Collisions are vanishingly
// rare at this key size, so exhaustion indicates something badly wrong and
// fails closed.
func (s *ChannelService) RegenerateStreamKey(ctx context.Context, userID string) (*entity.Channel, error) {
	attempts := s.KeyMaxAttempts
	if attempts <= 0 {
		attempts = 5
	}
	for i := 0; i < attempts; i++ {
		key, err := helpers.GenStreamKey()
		if err != nil {
			return nil, err
		}
		ch, err := s.Channels.SetStreamKey(ctx, userID, key)
		switch {
		case err == nil:
			return ch, nil
		case errors.Is(err, repo.ErrDuplicateKey):
			if s.Logger != nil {
				s.Logger.WithField("user_id", userID).Warn("stream key collision, retrying")
			}
			continue
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrChannelNotFound
		default:
			return nil, err
		}
	}
	return nil, ErrKeyGenerationExhausted
}

type StartStreamInput struct {
	StreamKey string
	Patch     entity.StreamPatch
	Thumbnail io.Reader
	Filename  string
	MIMEType  string
}

// StartStream transitions the channel to live. The thumbnail upload happens
// before the transaction and the stale object is deleted after it, so no
// network call ever runs while row locks are held.
func (s *ChannelService) StartStream(ctx context.Context, in StartStreamInput) (*entity.Channel, *entity.Stream, error) {
	prev, err := s.Channels.GetByStreamKey(ctx, in.StreamKey)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrUnknownStreamKey
		}
		return nil, nil, err
	}

	var thumbURL *string
	if in.Thumbnail != nil {
		url, err := s.uploadThumbnail(ctx, prev.UserID, in)
		if err != nil {
			return nil, nil, err
		}
		thumbURL = &url
	}

	ch, stream, err := s.Channels.StartStream(ctx, in.StreamKey, in.Patch, thumbURL)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			err = ErrUnknownStreamKey
		case errors.Is(err, repo.ErrAlreadyLive):
			err = ErrAlreadyLive
		}
		// The fresh upload is unreferenced on failure; remove it.
		if thumbURL != nil {
			s.deleteObject(ctx, *thumbURL)
		}
		return nil, nil, err
	}

	if thumbURL != nil && prev.Thumbnail != "" && prev.Thumbnail != *thumbURL {
		s.deleteObject(ctx, prev.Thumbnail)
	}
	return ch, stream, nil
}

// EndStreamByKey takes the channel offline and closes the open session.
// Repeated calls from a flaky streaming client are accepted as no-ops.
func (s *ChannelService) EndStreamByKey(ctx context.Context, streamKey string) (*entity.Channel, error) {
	ch, err := s.Channels.EndStreamByKey(ctx, streamKey)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUnknownStreamKey
	}
	return ch, err
}

func (s *ChannelService) EndStreamByUserID(ctx context.Context, userID string) (*entity.Channel, error) {
	ch, err := s.Channels.EndStreamByUserID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrChannelNotFound
	}
	return ch, err
}

func (s *ChannelService) uploadThumbnail(ctx context.Context, userID string, in StartStreamInput) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("object store not configured")
	}
	ext := strings.ToLower(filepath.Ext(in.Filename))
	objectPath := "thumbnails/" + userID + "/" + uuid.NewString() + ext
	return helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, in.MIMEType, in.Thumbnail)
}

func (s *ChannelService) deleteObject(ctx context.Context, url string) {
	if s.GCS == nil || s.GCSBucket == "" {
		return
	}
	path := helpers.ObjectPathFromURL(s.GCSBucket, url)
	if path == "" {
		return
	}
	if err := helpers.DeleteObject(ctx, s.GCS, s.GCSBucket, path); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("object", path).Warn("failed to delete thumbnail")
	}
}
