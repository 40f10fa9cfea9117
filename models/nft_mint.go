package models

import "time"

// NFTMint records a badge minted for a profile, usually as a quest reward.
type NFTMint struct {
	ID      string  `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  string  `gorm:"type:uuid;index;not null" json:"user_id"`
	QuestID *string `gorm:"type:uuid;index" json:"quest_id,omitempty"`
	NFTSlug string  `gorm:"not null" json:"nft_slug"`
	TxHash  *string `json:"tx_hash,omitempty"`

	MintedAt time.Time `gorm:"autoCreateTime" json:"minted_at"`

	Quest *Quest `gorm:"foreignKey:QuestID" json:"quest,omitempty"`
}
