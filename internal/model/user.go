package model

import "time"

// User is a registered account. Accounts come from two places: GitHub
// OAuth (GitHubID set, PasswordHash empty) or local email/password
// registration (GitHubID zero, PasswordHash set).
//
// We generate our own internal string ID (xid) so primary keys are
// consistent with Snippet and not tied to a third party's numbering
// scheme. Email may be empty for GitHub users — GitHub only returns it
// when the user has made it public.
type User struct {
	ID        string    `json:"id"        db:"id"`
	GitHubID  int64     `json:"githubId,omitempty" db:"github_id"`
	Login     string    `json:"login"     db:"login"`
	Email     string    `json:"email"     db:"email"`
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// PasswordHash is never serialized to JSON.
	PasswordHash string `json:"-" db:"password_hash"`
}
