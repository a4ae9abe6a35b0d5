package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/streamnest/streamnest/internal/domain/entity"
	repo "github.com/streamnest/streamnest/internal/domain/repository"
)

// In-memory repository implementations used across the service tests. They
// mirror the transactional guarantees of the Postgres layer under a single
// mutex: edge writes and counter movements are atomic, uniqueness is enforced,
// and sentinel errors match what the real implementations return.

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) add(username, email string, followerCount int) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	u := &entity.User{
		ID:            fmt.Sprintf("user-%04d", r.seq),
		Username:      username,
		Email:         email,
		Birthday:      time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		FollowerCount: followerCount,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	r.users[u.ID] = u
	return copyUser(u)
}

func copyUser(u *entity.User) *entity.User {
	cp := *u
	return &cp
}

func (r *memUserRepo) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.users {
		if e.Username == u.Username {
			return repo.ErrDuplicateUsername
		}
		if e.Email == u.Email {
			return repo.ErrDuplicateEmail
		}
	}
	r.seq++
	u.ID = fmt.Sprintf("user-%04d", r.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = copyUser(u)
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyUser(u), nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memUserRepo) ChangeUsername(_ context.Context, id, current, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID != id && u.Username == next {
			return repo.ErrDuplicateUsername
		}
	}
	u, ok := r.users[id]
	if !ok || u.Username != current {
		return repo.ErrStaleValue
	}
	u.Username = next
	u.UpdatedAt = time.Now()
	return nil
}

func (r *memUserRepo) ChangeEmail(_ context.Context, id, current, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID != id && u.Email == next {
			return repo.ErrDuplicateEmail
		}
	}
	u, ok := r.users[id]
	if !ok || u.Email != current {
		return repo.ErrStaleValue
	}
	u.Email = next
	u.UpdatedAt = time.Now()
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (r *memUserRepo) UpdateProfilePicture(_ context.Context, id, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.ProfilePicture = path
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) MostFollowed(_ context.Context, limit int) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FollowerCount != out[j].FollowerCount {
			return out[i].FollowerCount > out[j].FollowerCount
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memUserRepo) SearchByUsername(_ context.Context, substring string) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	needle := strings.ToLower(substring)
	out := []entity.User{}
	for _, u := range r.users {
		if strings.Contains(strings.ToLower(u.Username), needle) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *memUserRepo) setFollowerCount(id string, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.FollowerCount = n
	}
}

func (r *memUserRepo) followerCount(id string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u.FollowerCount
	}
	return -1
}

var _ repo.UserRepository = (*memUserRepo)(nil)

type followEdge struct {
	follower  string
	following string
	createdAt time.Time
}

// memFollowRepo keeps the edge set and the follower counters of its linked
// memUserRepo consistent under one mutex, matching the single-transaction
// behavior of the Postgres implementation.
type memFollowRepo struct {
	mu    sync.Mutex
	users *memUserRepo
	edges []followEdge
}

func newMemFollowRepo(users *memUserRepo) *memFollowRepo {
	return &memFollowRepo{users: users}
}

func (r *memFollowRepo) find(followerID, followingID string) int {
	for i, e := range r.edges {
		if e.follower == followerID && e.following == followingID {
			return i
		}
	}
	return -1
}

func (r *memFollowRepo) Insert(_ context.Context, followerID, followingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.find(followerID, followingID) >= 0 {
		return repo.ErrAlreadyFollowing
	}
	r.edges = append(r.edges, followEdge{follower: followerID, following: followingID, createdAt: time.Now()})
	r.users.mu.Lock()
	if u, ok := r.users.users[followingID]; ok {
		u.FollowerCount++
	}
	r.users.mu.Unlock()
	return nil
}

func (r *memFollowRepo) Delete(_ context.Context, followerID, followingID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(followerID, followingID)
	if i < 0 {
		return repo.ErrNotFollowing
	}
	r.edges = append(r.edges[:i], r.edges[i+1:]...)
	r.users.mu.Lock()
	defer r.users.mu.Unlock()
	if u, ok := r.users.users[followingID]; ok {
		if u.FollowerCount <= 0 {
			return repo.ErrCounterUnderflow
		}
		u.FollowerCount--
	}
	return nil
}

func (r *memFollowRepo) Exists(_ context.Context, followerID, followingID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(followerID, followingID) >= 0, nil
}

func (r *memFollowRepo) ListFollowers(ctx context.Context, userID string) ([]entity.User, error) {
	r.mu.Lock()
	ids := []string{}
	for i := len(r.edges) - 1; i >= 0; i-- {
		if r.edges[i].following == userID {
			ids = append(ids, r.edges[i].follower)
		}
	}
	r.mu.Unlock()
	return r.resolve(ctx, ids)
}

func (r *memFollowRepo) ListFollowing(ctx context.Context, userID string) ([]entity.User, error) {
	r.mu.Lock()
	ids := []string{}
	for i := len(r.edges) - 1; i >= 0; i-- {
		if r.edges[i].follower == userID {
			ids = append(ids, r.edges[i].following)
		}
	}
	r.mu.Unlock()
	return r.resolve(ctx, ids)
}

func (r *memFollowRepo) resolve(ctx context.Context, ids []string) ([]entity.User, error) {
	out := []entity.User{}
	for _, id := range ids {
		if u, err := r.users.GetByID(ctx, id); err == nil {
			out = append(out, *u)
		}
	}
	return out, nil
}

var _ repo.FollowRepository = (*memFollowRepo)(nil)

type memChannelRepo struct {
	mu       sync.Mutex
	seq      int
	channels map[string]*entity.Channel // keyed by user id
	streams  []*entity.Stream

	// forceDupKey makes every SetStreamKey fail as a collision; setKeyCalls
	// counts attempts.
	forceDupKey bool
	setKeyCalls int
}

func newMemChannelRepo() *memChannelRepo {
	return &memChannelRepo{channels: map[string]*entity.Channel{}}
}

func (r *memChannelRepo) add(userID string) *entity.Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ch := &entity.Channel{
		ID:        fmt.Sprintf("chan-%04d", r.seq),
		UserID:    userID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.channels[userID] = ch
	return copyChannel(ch)
}

func copyChannel(ch *entity.Channel) *entity.Channel {
	cp := *ch
	return &cp
}

func (r *memChannelRepo) GetByUserID(_ context.Context, userID string) (*entity.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyChannel(ch), nil
}

func (r *memChannelRepo) GetByStreamKey(_ context.Context, key string) (*entity.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key == "" {
		return nil, repo.ErrNotFound
	}
	for _, ch := range r.channels {
		if ch.StreamKey == key {
			return copyChannel(ch), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memChannelRepo) UpdateProfile(_ context.Context, userID string, patch entity.ChannelPatch) (*entity.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if patch.Title != nil {
		ch.Title = *patch.Title
	}
	if patch.Description != nil {
		ch.Description = *patch.Description
	}
	ch.UpdatedAt = time.Now()
	return copyChannel(ch), nil
}

func (r *memChannelRepo) SetStreamKey(_ context.Context, userID, key string) (*entity.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setKeyCalls++
	if r.forceDupKey {
		return nil, repo.ErrDuplicateKey
	}
	ch, ok := r.channels[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	for _, other := range r.channels {
		if other.UserID != userID && other.StreamKey == key {
			return nil, repo.ErrDuplicateKey
		}
	}
	ch.StreamKey = key
	ch.UpdatedAt = time.Now()
	return copyChannel(ch), nil
}

func (r *memChannelRepo) StartStream(_ context.Context, key string, patch entity.StreamPatch, thumbnail *string) (*entity.Channel, *entity.Stream, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ch *entity.Channel
	for _, c := range r.channels {
		if c.StreamKey == key && key != "" {
			ch = c
			break
		}
	}
	if ch == nil {
		return nil, nil, repo.ErrNotFound
	}
	if ch.IsLive {
		return nil, nil, repo.ErrAlreadyLive
	}
	r.closeSessions(ch.ID)
	if patch.Title != nil {
		ch.StreamTitle = *patch.Title
	}
	if patch.Description != nil {
		ch.StreamDescription = *patch.Description
	}
	if patch.Category != nil {
		ch.StreamCategory = *patch.Category
	}
	if thumbnail != nil {
		ch.Thumbnail = *thumbnail
	}
	ch.IsLive = true
	ch.UpdatedAt = time.Now()

	r.seq++
	s := &entity.Stream{
		ID:        fmt.Sprintf("stream-%04d", r.seq),
		ChannelID: ch.ID,
		Title:     ch.StreamTitle,
		StartTime: time.Now(),
		IsLive:    true,
		CreatedAt: time.Now(),
	}
	r.streams = append(r.streams, s)
	cp := *s
	return copyChannel(ch), &cp, nil
}

func (r *memChannelRepo) closeSessions(channelID string) {
	now := time.Now()
	for _, s := range r.streams {
		if s.ChannelID == channelID && s.IsLive {
			s.IsLive = false
			s.EndTime = &now
		}
	}
}

func (r *memChannelRepo) EndStreamByKey(_ context.Context, key string) (*entity.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if key == "" {
		return nil, repo.ErrNotFound
	}
	for _, ch := range r.channels {
		if ch.StreamKey == key {
			return r.end(ch), nil
		}
	}
	return nil, repo.ErrNotFound
}

func (r *memChannelRepo) EndStreamByUserID(_ context.Context, userID string) (*entity.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return r.end(ch), nil
}

func (r *memChannelRepo) end(ch *entity.Channel) *entity.Channel {
	r.closeSessions(ch.ID)
	if ch.IsLive {
		ch.IsLive = false
		ch.UpdatedAt = time.Now()
	}
	return copyChannel(ch)
}

func (r *memChannelRepo) ListLive(_ context.Context) ([]entity.Channel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []entity.Channel{}
	for _, ch := range r.channels {
		if ch.IsLive {
			out = append(out, *ch)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memChannelRepo) liveSessions(channelID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.streams {
		if s.ChannelID == channelID && s.IsLive {
			n++
		}
	}
	return n
}

var _ repo.ChannelRepository = (*memChannelRepo)(nil)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []repo.AuditEntry
}

func (r *memAuditRepo) Insert(_ context.Context, e repo.AuditEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *memAuditRepo) all() []repo.AuditEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]repo.AuditEntry{}, r.entries...)
}

var _ repo.AuditRepository = (*memAuditRepo)(nil)

type memMessageRepo struct {
	mu        sync.Mutex
	seq       int
	msgs      []entity.Message
	lastLimit int
}

func (r *memMessageRepo) Create(_ context.Context, m *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	m.ID = fmt.Sprintf("msg-%04d", r.seq)
	m.CreatedAt = time.Now()
	r.msgs = append(r.msgs, *m)
	return nil
}

func (r *memMessageRepo) ListBetween(_ context.Context, userA, userB string, limit int) ([]entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastLimit = limit
	out := []entity.Message{}
	for i := len(r.msgs) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.msgs[i]
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repo.MessageRepository = (*memMessageRepo)(nil)
