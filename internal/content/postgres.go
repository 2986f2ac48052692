package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

// PostgresStore persists posts and accounts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const postColumns = `id, platform, content, hashtags, image_url, image_prompt, status, scheduled_at, engagement_score, created_at`

func (s *PostgresStore) ListPosts(ctx context.Context) ([]Post, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) GetPost(ctx context.Context, id string) (Post, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE id = $1
	`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	return p, err
}

func (s *PostgresStore) CreatePost(ctx context.Context, post Post) (Post, error) {
	if err := post.Validate(); err != nil {
		return Post{}, err
	}

	status := post.Status
	if status == "" {
		status = StatusDraft
	}
	hashtags := post.Hashtags
	if hashtags == nil {
		hashtags = []string{}
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO posts (platform, content, hashtags, image_url, image_prompt, status, scheduled_at, engagement_score)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+postColumns+`
	`,
		string(post.Platform),
		post.Content,
		pq.Array(hashtags),
		post.ImageURL,
		post.ImagePrompt,
		string(status),
		post.ScheduledAt,
		post.EngagementScore,
	)
	created, err := scanPost(row)
	if err != nil {
		return Post{}, fmt.Errorf("insert post: %w", err)
	}
	return created, nil
}

func (s *PostgresStore) UpdatePost(ctx context.Context, id string, update PostUpdate) (Post, error) {
	set := make([]string, 0, 7)
	args := make([]interface{}, 0, 8)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if update.Content != nil {
		set = append(set, "content = "+arg(*update.Content))
	}
	if update.Hashtags != nil {
		set = append(set, "hashtags = "+arg(pq.Array(*update.Hashtags)))
	}
	if update.ImageURL != nil {
		set = append(set, "image_url = "+arg(*update.ImageURL))
	}
	if update.ImagePrompt != nil {
		set = append(set, "image_prompt = "+arg(*update.ImagePrompt))
	}
	if update.Status != nil {
		if _, err := ParseStatus(string(*update.Status)); err != nil {
			return Post{}, err
		}
		set = append(set, "status = "+arg(string(*update.Status)))
	}
	if update.ScheduledAt != nil {
		set = append(set, "scheduled_at = "+arg(*update.ScheduledAt))
	}
	if update.EngagementScore != nil {
		set = append(set, "engagement_score = "+arg(*update.EngagementScore))
	}

	if len(set) == 0 {
		return s.GetPost(ctx, id)
	}

	query := "UPDATE posts SET " + strings.Join(set, ", ") + " WHERE id = " + arg(id) + " RETURNING " + postColumns
	row := s.db.QueryRowContext(ctx, query, args...)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Post{}, ErrNotFound
	}
	if err != nil {
		return Post{}, fmt.Errorf("update post: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) DeletePost(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindDue(ctx context.Context, now time.Time, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE status = $1 AND scheduled_at IS NOT NULL AND scheduled_at <= $2
		ORDER BY scheduled_at
		LIMIT $3
	`, string(StatusScheduled), now, limit)
	if err != nil {
		return nil, fmt.Errorf("find due posts: %w", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due posts: %w", err)
	}
	return posts, nil
}

func (s *PostgresStore) TransitionStatus(ctx context.Context, id string, from, to Status) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE posts SET status = $1 WHERE id = $2 AND status = $3
	`, string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("transition post status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("transition post status: %w", err)
	}
	return n == 1, nil
}

const accountColumns = `id, platform, handle, avatar, connected, access_token, last_sync`

func (s *PostgresStore) ListAccounts(ctx context.Context) ([]SocialAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+accountColumns+`
		FROM social_accounts
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []SocialAccount
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (s *PostgresStore) SeedAccounts(ctx context.Context) error {
	for _, platform := range Platforms {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO social_accounts (platform)
			VALUES ($1)
			ON CONFLICT (platform) DO NOTHING
		`, string(platform))
		if err != nil {
			return fmt.Errorf("seed account %s: %w", platform, err)
		}
	}
	return nil
}

func (s *PostgresStore) AccountByPlatform(ctx context.Context, platform Platform) (SocialAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM social_accounts
		WHERE platform = $1
	`, string(platform))
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SocialAccount{}, ErrNotFound
	}
	return a, err
}

func (s *PostgresStore) ConnectAccount(ctx context.Context, id, handle, token string) (SocialAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE social_accounts
		SET connected = TRUE, handle = $2, access_token = $3, last_sync = NOW()
		WHERE id = $1
		RETURNING `+accountColumns+`
	`, id, handle, token)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SocialAccount{}, ErrNotFound
	}
	if err != nil {
		return SocialAccount{}, fmt.Errorf("connect account: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) DisconnectAccount(ctx context.Context, id string) (SocialAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE social_accounts
		SET connected = FALSE, access_token = ''
		WHERE id = $1
		RETURNING `+accountColumns+`
	`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SocialAccount{}, ErrNotFound
	}
	if err != nil {
		return SocialAccount{}, fmt.Errorf("disconnect account: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) ConnectedAccount(ctx context.Context, platform Platform) (*SocialAccount, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM social_accounts
		WHERE platform = $1 AND connected = TRUE
	`, string(platform))
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPost(r rowScanner) (Post, error) {
	var post Post
	var platform, status string
	var hashtags pq.StringArray
	var imageURL, imagePrompt sql.NullString
	var scheduledAt sql.NullTime
	var engagementScore sql.NullInt64
	if err := r.Scan(
		&post.ID,
		&platform,
		&post.Content,
		&hashtags,
		&imageURL,
		&imagePrompt,
		&status,
		&scheduledAt,
		&engagementScore,
		&post.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, err
		}
		return Post{}, fmt.Errorf("scan post: %w", err)
	}
	post.Platform = Platform(platform)
	post.Status = Status(status)
	post.Hashtags = []string(hashtags)
	if post.Hashtags == nil {
		post.Hashtags = []string{}
	}
	if imageURL.Valid {
		post.ImageURL = imageURL.String
	}
	if imagePrompt.Valid {
		post.ImagePrompt = imagePrompt.String
	}
	if scheduledAt.Valid {
		t := scheduledAt.Time
		post.ScheduledAt = &t
	}
	if engagementScore.Valid {
		score := int(engagementScore.Int64)
		post.EngagementScore = &score
	}
	return post, nil
}

func scanAccount(r rowScanner) (SocialAccount, error) {
	var account SocialAccount
	var platform string
	var lastSync sql.NullTime
	if err := r.Scan(
		&account.ID,
		&platform,
		&account.Handle,
		&account.Avatar,
		&account.Connected,
		&account.AccessToken,
		&lastSync,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return SocialAccount{}, err
		}
		return SocialAccount{}, fmt.Errorf("scan account: %w", err)
	}
	account.Platform = Platform(platform)
	if lastSync.Valid {
		t := lastSync.Time
		account.LastSync = &t
	}
	return account, nil
}
