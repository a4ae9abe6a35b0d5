package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamnest/streamnest/internal/domain/entity"
	repo "github.com/streamnest/streamnest/internal/domain/repository"
)

type FollowRepository struct {
	pool *pgxpool.Pool
}

func NewFollowRepository(pool *pgxpool.Pool) *FollowRepository {
	return &FollowRepository{pool: pool}
}

// Insert creates the edge and increments the target's follower counter in one
// transaction. The primary key on (follower_id, following_id) arbitrates
// concurrent inserts: exactly one wins, the rest get ErrAlreadyFollowing and
// no counter movement.
func (r *FollowRepository) Insert(ctx context.Context, followerID, followingID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer safeRollback(ctx, tx)

	res, err := tx.Exec(ctx, `
		INSERT INTO follows (follower_id, following_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, following_id) DO NOTHING
	`, followerID, followingID)
	if err != nil {
		return fmt.Errorf("insert edge: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrAlreadyFollowing
	}

	if _, err := tx.Exec(ctx, `
		UPDATE users SET follower_count = follower_count + 1 WHERE id = $1
	`, followingID); err != nil {
		return fmt.Errorf("increment follower count: %w", err)
	}

	return tx.Commit(ctx)
}

// Delete removes the edge and decrements the counter in one transaction.
// A decrement that would go negative means the counter had already diverged
// from the edge set: it is clamped at zero, the edge removal is committed, and
// ErrCounterUnderflow is returned for the caller to surface.
func (r *FollowRepository) Delete(ctx context.Context, followerID, followingID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer safeRollback(ctx, tx)

	res, err := tx.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 AND following_id = $2
	`, followerID, followingID)
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFollowing
	}

	dec, err := tx.Exec(ctx, `
		UPDATE users SET follower_count = follower_count - 1
		WHERE id = $1 AND follower_count > 0
	`, followingID)
	if err != nil {
		return fmt.Errorf("decrement follower count: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}
	if dec.RowsAffected() == 0 {
		return repo.ErrCounterUnderflow
	}
	return nil
}

func (r *FollowRepository) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2
		)
	`, followerID, followingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("edge exists: %w", err)
	}
	return exists, nil
}

func (r *FollowRepository) ListFollowers(ctx context.Context, userID string) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+qualifiedUserColumns+`
		FROM users u
		JOIN follows f ON f.follower_id = u.id
		WHERE f.following_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list followers: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *FollowRepository) ListFollowing(ctx context.Context, userID string) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+qualifiedUserColumns+`
		FROM users u
		JOIN follows f ON f.following_id = u.id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list following: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

const qualifiedUserColumns = `u.id, u.username, u.email, u.password_hash, u.birthday, u.follower_count, u.profile_picture, u.about, u.created_at, u.updated_at`

var _ repo.FollowRepository = (*FollowRepository)(nil)
