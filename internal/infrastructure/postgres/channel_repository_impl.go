package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamnest/streamnest/internal/domain/entity"
	repo "github.com/streamnest/streamnest/internal/domain/repository"
)

const channelColumns = `id, user_id, COALESCE(stream_key, ''), COALESCE(title, ''), COALESCE(description, ''), is_live, COALESCE(stream_title, ''), COALESCE(stream_description, ''), COALESCE(stream_category, ''), COALESCE(thumbnail, ''), created_at, updated_at`

type ChannelRepository struct {
	pool *pgxpool.Pool
}

func NewChannelRepository(pool *pgxpool.Pool) *ChannelRepository {
	return &ChannelRepository{pool: pool}
}

func scanChannel(row pgx.Row) (*entity.Channel, error) {
	ch := &entity.Channel{}
	if err := row.Scan(&ch.ID, &ch.UserID, &ch.StreamKey, &ch.Title, &ch.Description,
		&ch.IsLive, &ch.StreamTitle, &ch.StreamDescription, &ch.StreamCategory,
		&ch.Thumbnail, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return ch, nil
}

func (r *ChannelRepository) GetByUserID(ctx context.Context, userID string) (*entity.Channel, error) {
	return scanChannel(r.pool.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE user_id = $1`, userID))
}

func (r *ChannelRepository) GetByStreamKey(ctx context.Context, key string) (*entity.Channel, error) {
	if key == "" {
		return nil, repo.ErrNotFound
	}
	return scanChannel(r.pool.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE stream_key = $1`, key))
}

// UpdateProfile applies a nullable patch: nil fields keep their stored value.
func (r *ChannelRepository) UpdateProfile(ctx context.Context, userID string, patch entity.ChannelPatch) (*entity.Channel, error) {
	return scanChannel(r.pool.QueryRow(ctx, `
		UPDATE channels SET
			title       = COALESCE($1, title),
			description = COALESCE($2, description),
			updated_at  = now()
		WHERE user_id = $3
		RETURNING `+channelColumns,
		patch.Title, patch.Description, userID))
}

// SetStreamKey assigns a freshly generated key. The unique index on
// stream_key arbitrates collisions across concurrent callers; a collision is
// reported as ErrDuplicateKey so the caller can retry with a new key.
func (r *ChannelRepository) SetStreamKey(ctx context.Context, userID, key string) (*entity.Channel, error) {
	ch, err := scanChannel(r.pool.QueryRow(ctx, `
		UPDATE channels SET stream_key = $1, updated_at = now()
		WHERE user_id = $2
		RETURNING `+channelColumns,
		key, userID))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repo.ErrDuplicateKey
		}
		return nil, fmt.Errorf("set stream key: %w", err)
	}
	return ch, nil
}

// StartStream flips the channel live by stream key. The row is locked for the
// duration of the transaction so two concurrent starts serialize: the first
// wins, the second observes is_live and gets ErrAlreadyLive. Any dangling
// live session rows from a crashed broadcast are force-closed before the new
// session opens.
func (r *ChannelRepository) StartStream(ctx context.Context, key string, patch entity.StreamPatch, thumbnail *string) (*entity.Channel, *entity.Stream, error) {
	if key == "" {
		return nil, nil, repo.ErrNotFound
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin: %w", err)
	}
	defer safeRollback(ctx, tx)

	ch, err := scanChannel(tx.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE stream_key = $1 FOR UPDATE`, key))
	if err != nil {
		return nil, nil, err
	}
	if ch.IsLive {
		return nil, nil, repo.ErrAlreadyLive
	}

	if _, err := tx.Exec(ctx, `
		UPDATE streams SET is_live = false, end_time = now()
		WHERE channel_id = $1 AND is_live
	`, ch.ID); err != nil {
		return nil, nil, fmt.Errorf("close stale sessions: %w", err)
	}

	ch, err = scanChannel(tx.QueryRow(ctx, `
		UPDATE channels SET
			is_live            = true,
			stream_title       = COALESCE($1, stream_title),
			stream_description = COALESCE($2, stream_description),
			stream_category    = COALESCE($3, stream_category),
			thumbnail          = COALESCE($4, thumbnail),
			updated_at         = now()
		WHERE id = $5
		RETURNING `+channelColumns,
		patch.Title, patch.Description, patch.Category, thumbnail, ch.ID))
	if err != nil {
		return nil, nil, fmt.Errorf("set live: %w", err)
	}

	s := &entity.Stream{ChannelID: ch.ID, Title: ch.StreamTitle, IsLive: true}
	if err := tx.QueryRow(ctx, `
		INSERT INTO streams (channel_id, title, start_time, is_live)
		VALUES ($1, $2, now(), true)
		RETURNING id, start_time, created_at
	`, ch.ID, ch.StreamTitle).Scan(&s.ID, &s.StartTime, &s.CreatedAt); err != nil {
		return nil, nil, fmt.Errorf("open session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return ch, s, nil
}

// EndStreamByKey takes the channel offline. Ending an already-offline channel
// is a no-op success.
func (r *ChannelRepository) EndStreamByKey(ctx context.Context, key string) (*entity.Channel, error) {
	if key == "" {
		return nil, repo.ErrNotFound
	}
	return r.endStream(ctx, `stream_key = $1`, key)
}

func (r *ChannelRepository) EndStreamByUserID(ctx context.Context, userID string) (*entity.Channel, error) {
	return r.endStream(ctx, `user_id = $1`, userID)
}

func (r *ChannelRepository) endStream(ctx context.Context, where string, arg any) (*entity.Channel, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer safeRollback(ctx, tx)

	ch, err := scanChannel(tx.QueryRow(ctx,
		`SELECT `+channelColumns+` FROM channels WHERE `+where+` FOR UPDATE`, arg))
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE streams SET is_live = false, end_time = now()
		WHERE channel_id = $1 AND is_live
	`, ch.ID); err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}
	if ch.IsLive {
		ch, err = scanChannel(tx.QueryRow(ctx, `
			UPDATE channels SET is_live = false, updated_at = now()
			WHERE id = $1
			RETURNING `+channelColumns, ch.ID))
		if err != nil {
			return nil, fmt.Errorf("set offline: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return ch, nil
}

func (r *ChannelRepository) ListLive(ctx context.Context) ([]entity.Channel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+channelColumns+` FROM channels
		WHERE is_live
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list live: %w", err)
	}
	defer rows.Close()

	out := []entity.Channel{}
	for rows.Next() {
		var ch entity.Channel
		if err := rows.Scan(&ch.ID, &ch.UserID, &ch.StreamKey, &ch.Title, &ch.Description,
			&ch.IsLive, &ch.StreamTitle, &ch.StreamDescription, &ch.StreamCategory,
			&ch.Thumbnail, &ch.CreatedAt, &ch.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

var _ repo.ChannelRepository = (*ChannelRepository)(nil)
