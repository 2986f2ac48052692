package content

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a record id does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrValidation is returned when a record fails field validation.
	ErrValidation = errors.New("validation failed")
)

// Store is the content record store. Two implementations exist: the
// Postgres store used in production and an in-memory store used for
// tests and local development (selected by STORE_DRIVER).
type Store interface {
	ListPosts(ctx context.Context) ([]Post, error)
	GetPost(ctx context.Context, id string) (Post, error)
	CreatePost(ctx context.Context, post Post) (Post, error)
	UpdatePost(ctx context.Context, id string, update PostUpdate) (Post, error)
	DeletePost(ctx context.Context, id string) error

	// FindDue returns posts with status Scheduled whose scheduled time is
	// at or before now, oldest first, capped at limit.
	FindDue(ctx context.Context, now time.Time, limit int) ([]Post, error)

	// TransitionStatus atomically moves a post from an expected status to
	// a new one. It reports false when the post was not in the expected
	// status (or does not exist), leaving the record untouched.
	TransitionStatus(ctx context.Context, id string, from, to Status) (bool, error)

	ListAccounts(ctx context.Context) ([]SocialAccount, error)
	SeedAccounts(ctx context.Context) error
	AccountByPlatform(ctx context.Context, platform Platform) (SocialAccount, error)
	ConnectAccount(ctx context.Context, id, handle, token string) (SocialAccount, error)
	DisconnectAccount(ctx context.Context, id string) (SocialAccount, error)

	// ConnectedAccount returns the connected account for a platform, or
	// nil when the platform has no connected account.
	ConnectedAccount(ctx context.Context, platform Platform) (*SocialAccount, error)
}
