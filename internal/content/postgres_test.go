package content

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func postRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "platform", "content", "hashtags", "image_url", "image_prompt",
		"status", "scheduled_at", "engagement_score", "created_at",
	})
}

func accountRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "platform", "handle", "avatar", "connected", "access_token", "last_sync",
	})
}

func TestPostgresGetPost(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM posts").
		WithArgs("post-1").
		WillReturnRows(postRows().AddRow(
			"post-1", "Twitter", "hello", "{#go}", "", "",
			"Draft", nil, nil, created,
		))

	store := NewPostgresStore(db)
	post, err := store.GetPost(context.Background(), "post-1")
	if err != nil {
		t.Fatalf("get post: %v", err)
	}
	if post.Platform != PlatformTwitter {
		t.Fatalf("unexpected platform %s", post.Platform)
	}
	if len(post.Hashtags) != 1 || post.Hashtags[0] != "#go" {
		t.Fatalf("unexpected hashtags %v", post.Hashtags)
	}
	if post.ScheduledAt != nil {
		t.Fatalf("expected nil scheduledDate, got %v", post.ScheduledAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresGetPostNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM posts").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	store := NewPostgresStore(db)
	if _, err := store.GetPost(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresFindDue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	due := now.Add(-5 * time.Minute)
	mock.ExpectQuery("FROM posts").
		WithArgs("Scheduled", now, 50).
		WillReturnRows(postRows().AddRow(
			"post-2", "LinkedIn", "due now", "{}", "", "",
			"Scheduled", due, nil, now.Add(-time.Hour),
		))

	store := NewPostgresStore(db)
	posts, err := store.FindDue(context.Background(), now, 50)
	if err != nil {
		t.Fatalf("find due: %v", err)
	}
	if len(posts) != 1 || posts[0].ID != "post-2" {
		t.Fatalf("unexpected due posts: %v", posts)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresTransitionStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE posts SET status").
		WithArgs("Published", "post-3", "Scheduled").
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresStore(db)
	changed, err := store.TransitionStatus(context.Background(), "post-3", StatusScheduled, StatusPublished)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if !changed {
		t.Fatal("expected transition to report changed")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresTransitionStatusLost(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("UPDATE posts SET status").
		WithArgs("Published", "post-4", "Scheduled").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPostgresStore(db)
	changed, err := store.TransitionStatus(context.Background(), "post-4", StatusScheduled, StatusPublished)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if changed {
		t.Fatal("expected transition to report unchanged")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresDeletePostNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("DELETE FROM posts").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	store := NewPostgresStore(db)
	if err := store.DeletePost(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresConnectedAccountNone(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM social_accounts").
		WithArgs("Twitter").
		WillReturnRows(accountRows())

	store := NewPostgresStore(db)
	account, err := store.ConnectedAccount(context.Background(), PlatformTwitter)
	if err != nil {
		t.Fatalf("connected account: %v", err)
	}
	if account != nil {
		t.Fatalf("expected nil account, got %v", account)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresConnectedAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	sync := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM social_accounts").
		WithArgs("LinkedIn").
		WillReturnRows(accountRows().AddRow(
			"acct-1", "LinkedIn", "@brand", "", true, "mock_token_abc", sync,
		))

	store := NewPostgresStore(db)
	account, err := store.ConnectedAccount(context.Background(), PlatformLinkedIn)
	if err != nil {
		t.Fatalf("connected account: %v", err)
	}
	if account == nil || account.AccessToken != "mock_token_abc" {
		t.Fatalf("unexpected account: %v", account)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
