package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used for tests and local development
// without a database. It mirrors the Postgres store's semantics,
// including the conditional status transition.
type MemoryStore struct {
	mu       sync.RWMutex
	posts    map[string]Post
	accounts map[string]SocialAccount
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		posts:    make(map[string]Post),
		accounts: make(map[string]SocialAccount),
		now:      time.Now,
	}
}

func (s *MemoryStore) ListPosts(ctx context.Context) ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, clonePost(p))
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *MemoryStore) GetPost(ctx context.Context, id string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	return clonePost(p), nil
}

func (s *MemoryStore) CreatePost(ctx context.Context, post Post) (Post, error) {
	if err := post.Validate(); err != nil {
		return Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post.ID = uuid.NewString()
	if post.Status == "" {
		post.Status = StatusDraft
	}
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}
	post.CreatedAt = s.now().UTC()
	s.posts[post.ID] = clonePost(post)
	return post, nil
}

func (s *MemoryStore) UpdatePost(ctx context.Context, id string, update PostUpdate) (Post, error) {
	if update.Status != nil {
		if _, err := ParseStatus(string(*update.Status)); err != nil {
			return Post{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		return Post{}, ErrNotFound
	}
	if update.Content != nil {
		p.Content = *update.Content
	}
	if update.Hashtags != nil {
		p.Hashtags = append([]string(nil), *update.Hashtags...)
	}
	if update.ImageURL != nil {
		p.ImageURL = *update.ImageURL
	}
	if update.ImagePrompt != nil {
		p.ImagePrompt = *update.ImagePrompt
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.ScheduledAt != nil {
		t := *update.ScheduledAt
		p.ScheduledAt = &t
	}
	if update.EngagementScore != nil {
		score := *update.EngagementScore
		p.EngagementScore = &score
	}
	s.posts[id] = clonePost(p)
	return clonePost(p), nil
}

func (s *MemoryStore) DeletePost(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		return ErrNotFound
	}
	delete(s.posts, id)
	return nil
}

func (s *MemoryStore) FindDue(ctx context.Context, now time.Time, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []Post
	for _, p := range s.posts {
		if p.Due(now) {
			due = append(due, clonePost(p))
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].ScheduledAt.Before(*due[j].ScheduledAt)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (s *MemoryStore) TransitionStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	s.posts[id] = p
	return true, nil
}

func (s *MemoryStore) ListAccounts(ctx context.Context) ([]SocialAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	accounts := make([]SocialAccount, 0, len(s.accounts))
	for _, platform := range Platforms {
		for _, a := range s.accounts {
			if a.Platform == platform {
				accounts = append(accounts, a)
			}
		}
	}
	return accounts, nil
}

func (s *MemoryStore) SeedAccounts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, platform := range Platforms {
		if s.findByPlatform(platform) == nil {
			id := uuid.NewString()
			s.accounts[id] = SocialAccount{ID: id, Platform: platform}
		}
	}
	return nil
}

func (s *MemoryStore) AccountByPlatform(ctx context.Context, platform Platform) (SocialAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if a := s.findByPlatform(platform); a != nil {
		return *a, nil
	}
	return SocialAccount{}, ErrNotFound
}

func (s *MemoryStore) ConnectAccount(ctx context.Context, id, handle, token string) (SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return SocialAccount{}, ErrNotFound
	}
	now := s.now().UTC()
	a.Connected = true
	a.Handle = handle
	a.AccessToken = token
	a.LastSync = &now
	s.accounts[id] = a
	return a, nil
}

func (s *MemoryStore) DisconnectAccount(ctx context.Context, id string) (SocialAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return SocialAccount{}, ErrNotFound
	}
	a.Connected = false
	a.AccessToken = ""
	s.accounts[id] = a
	return a, nil
}

func (s *MemoryStore) ConnectedAccount(ctx context.Context, platform Platform) (*SocialAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.findByPlatform(platform)
	if a == nil || !a.Connected {
		return nil, nil
	}
	return a, nil
}

// findByPlatform returns a copy; callers hold the lock.
func (s *MemoryStore) findByPlatform(platform Platform) *SocialAccount {
	for _, a := range s.accounts {
		if a.Platform == platform {
			account := a
			return &account
		}
	}
	return nil
}

func clonePost(p Post) Post {
	p.Hashtags = append([]string(nil), p.Hashtags...)
	if p.ScheduledAt != nil {
		t := *p.ScheduledAt
		p.ScheduledAt = &t
	}
	if p.EngagementScore != nil {
		score := *p.EngagementScore
		p.EngagementScore = &score
	}
	return p
}
