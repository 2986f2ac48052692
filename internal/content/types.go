package content

import (
	"fmt"
	"time"
)

// Platform identifies a social network a post targets.
type Platform string

const (
	PlatformInstagram Platform = "Instagram"
	PlatformTwitter   Platform = "Twitter"
	PlatformLinkedIn  Platform = "LinkedIn"
	PlatformFacebook  Platform = "Facebook"
)

// Platforms lists every supported platform in seed order.
var Platforms = []Platform{
	PlatformInstagram,
	PlatformTwitter,
	PlatformLinkedIn,
	PlatformFacebook,
}

// ParsePlatform validates a platform name from user input.
func ParsePlatform(s string) (Platform, error) {
	for _, p := range Platforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown platform %q", ErrValidation, s)
}

// Status is a post's lifecycle state. Draft and Scheduled are
// user-controlled; Published and Failed are terminal and set only by the
// publish loop.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusScheduled Status = "Scheduled"
	StatusPublished Status = "Published"
	StatusFailed    Status = "Failed"
)

// ParseStatus validates a status value from user input.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusScheduled, StatusPublished, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// Terminal reports whether a status can no longer change.
func (s Status) Terminal() bool {
	return s == StatusPublished || s == StatusFailed
}

// Post is a persisted social media post. JSON field names match the
// documents the web client exchanges.
type Post struct {
	ID              string     `json:"id"`
	Platform        Platform   `json:"platform"`
	Content         string     `json:"content"`
	Hashtags        []string   `json:"hashtags"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	ImagePrompt     string     `json:"imagePrompt,omitempty"`
	Status          Status     `json:"status"`
	ScheduledAt     *time.Time `json:"scheduledDate,omitempty"`
	EngagementScore *int       `json:"engagementScore,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Due reports whether the publish loop should pick the post up.
func (p Post) Due(now time.Time) bool {
	return p.Status == StatusScheduled && p.ScheduledAt != nil && !p.ScheduledAt.After(now)
}

// PostUpdate is a partial update; nil fields are left untouched.
type PostUpdate struct {
	Content         *string
	Hashtags        *[]string
	ImageURL        *string
	ImagePrompt     *string
	Status          *Status
	ScheduledAt     *time.Time
	EngagementScore *int
}

// SocialAccount is a per-platform connection record. At most one account
// exists per platform.
type SocialAccount struct {
	ID          string     `json:"id"`
	Platform    Platform   `json:"platform"`
	Handle      string     `json:"handle"`
	Avatar      string     `json:"avatar,omitempty"`
	Connected   bool       `json:"connected"`
	AccessToken string     `json:"accessToken,omitempty"`
	LastSync    *time.Time `json:"lastSync,omitempty"`
}

// Validate checks the fields required to persist a new post.
func (p Post) Validate() error {
	if p.Platform == "" {
		return fmt.Errorf("%w: platform is required", ErrValidation)
	}
	if _, err := ParsePlatform(string(p.Platform)); err != nil {
		return err
	}
	if p.Content == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	if p.Status != "" {
		if _, err := ParseStatus(string(p.Status)); err != nil {
			return err
		}
	}
	if p.Status == StatusScheduled && p.ScheduledAt == nil {
		return fmt.Errorf("%w: scheduledDate is required for scheduled posts", ErrValidation)
	}
	return nil
}
