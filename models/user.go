package models

import (
	"time"
)

// User is the application profile, exactly one per authenticated identity.
// ID always equals the auth provider's user UUID; it is never generated
// locally.
type User struct {
	ID             string    `gorm:"primaryKey;type:uuid" json:"id"`
	GithubUsername string    `gorm:"uniqueIndex;not null" json:"github_username"`
	WalletAddress  *string   `gorm:"type:varchar(128)" json:"wallet_address,omitempty"`
	AvatarURL      *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	XP             int64     `gorm:"default:0" json:"xp"` // non-negative, only ever increased
	Streak         int       `gorm:"default:0" json:"streak"`
	JoinedAt       time.Time `gorm:"autoCreateTime" json:"joined_at"`
	LastActive     time.Time `gorm:"autoUpdateTime" json:"last_active"`
}
