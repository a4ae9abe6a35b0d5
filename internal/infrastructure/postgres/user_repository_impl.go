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

const userColumns = `id, username, email, password_hash, birthday, follower_count, profile_picture, about, created_at, updated_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Birthday,
		&u.FollowerCount, &u.ProfilePicture, &u.About, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

// Create inserts the user and their channel in one transaction, so the 1:1
// user/channel invariant holds from the first committed state.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer safeRollback(ctx, tx)

	row := tx.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, birthday, profile_picture, about)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, follower_count, created_at, updated_at
	`, u.Username, u.Email, u.Password, u.Birthday, u.ProfilePicture, u.About)
	if err := row.Scan(&u.ID, &u.FollowerCount, &u.CreatedAt, &u.UpdatedAt); err != nil {
		switch {
		case uniqueViolationOn(err, "users_username_key"):
			return repo.ErrDuplicateUsername
		case uniqueViolationOn(err, "users_email_key"):
			return repo.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO channels (user_id) VALUES ($1)`, u.ID); err != nil {
		return fmt.Errorf("insert channel: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// ChangeUsername is a compare-and-set: the claimed current value and the
// mutation are one statement, so a stale client view cannot clobber a
// concurrent rename.
func (r *UserRepository) ChangeUsername(ctx context.Context, id, current, next string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET username = $1, updated_at = now()
		WHERE id = $2 AND username = $3
	`, next, id, current)
	if err != nil {
		if uniqueViolationOn(err, "users_username_key") {
			return repo.ErrDuplicateUsername
		}
		return fmt.Errorf("change username: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrStaleValue
	}
	return nil
}

func (r *UserRepository) ChangeEmail(ctx context.Context, id, current, next string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET email = $1, updated_at = now()
		WHERE id = $2 AND email = $3
	`, next, id, current)
	if err != nil {
		if uniqueViolationOn(err, "users_email_key") {
			return repo.ErrDuplicateEmail
		}
		return fmt.Errorf("change email: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrStaleValue
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, hash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateProfilePicture(ctx context.Context, id, path string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET profile_picture = $1, updated_at = now() WHERE id = $2
	`, path, id)
	if err != nil {
		return fmt.Errorf("update profile picture: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// Delete removes the user and everything hanging off them in one transaction.
// Order matters: follower counters of users they followed are decremented
// before the outgoing edges disappear, then edges, sessions, channel,
// messages, and finally the user row.
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer safeRollback(ctx, tx)

	if _, err := tx.Exec(ctx, `
		UPDATE users u SET follower_count = u.follower_count - 1
		FROM follows f
		WHERE f.follower_id = $1 AND f.following_id = u.id AND u.follower_count > 0
	`, id); err != nil {
		return fmt.Errorf("decrement follower counts: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM follows WHERE follower_id = $1 OR following_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM streams WHERE channel_id IN (SELECT id FROM channels WHERE user_id = $1)
	`, id); err != nil {
		return fmt.Errorf("delete streams: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM channels WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		DELETE FROM messages WHERE sender_id = $1 OR receiver_id = $1
	`, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	res, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	return tx.Commit(ctx)
}

// MostFollowed orders by follower_count descending with id ascending as the
// deterministic tie break.
func (r *UserRepository) MostFollowed(ctx context.Context, limit int) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY follower_count DESC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("most followed: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// SearchByUsername matches the substring literally and case-insensitively;
// LIKE metacharacters in the query are escaped, not interpreted.
func (r *UserRepository) SearchByUsername(ctx context.Context, substring string) ([]entity.User, error) {
	pattern := "%" + escapeLike(substring) + "%"
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE username ILIKE $1 ESCAPE '\'
		ORDER BY username ASC
	`, pattern)
	if err != nil {
		return nil, fmt.Errorf("search users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]entity.User, error) {
	out := []entity.User{}
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Birthday,
			&u.FollowerCount, &u.ProfilePicture, &u.About, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var _ repo.UserRepository = (*UserRepository)(nil)
