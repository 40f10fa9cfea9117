package models

import "time"

// Identity is the principal owned by the external auth provider. Read-only
// on our side; we never persist it.
type Identity struct {
	ID       string           `json:"id"`
	Metadata IdentityMetadata `json:"user_metadata"`
}

// IdentityMetadata carries the provider-supplied claims we care about.
type IdentityMetadata struct {
	UserName          string `json:"user_name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	AvatarURL         string `json:"avatar_url,omitempty"`
}

// GithubUsername extracts the username claim. GitHub OAuth sets user_name;
// some providers only fill preferred_username.
func (i Identity) GithubUsername() string {
	if i.Metadata.UserName != "" {
		return i.Metadata.UserName
	}
	return i.Metadata.PreferredUsername
}

// Session is an authenticated provider session.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	User        Identity  `json:"user"`
}
