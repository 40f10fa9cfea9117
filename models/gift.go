package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// GiftType is what a peer-to-peer gift carries.
type GiftType string

const (
	GiftTypeTON    GiftType = "ton"
	GiftTypeJetton GiftType = "jetton"
	GiftTypeNFT    GiftType = "nft"
)

const (
	GiftStatusSent      = "sent"
	GiftStatusDelivered = "delivered"
)

// Gift is a peer-to-peer transfer record. Amount is set for ton/jetton
// gifts, NFTSlug for nft gifts; the on-chain transfer itself happens outside
// this system and is only referenced by TxHash.
type Gift struct {
	ID         string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	SenderID   string           `gorm:"type:uuid;index;not null" json:"sender_id"`
	ReceiverID string           `gorm:"type:uuid;index;not null" json:"receiver_id"`
	GiftType   GiftType         `gorm:"type:varchar(16);not null" json:"gift_type"`
	Amount     *decimal.Decimal `gorm:"type:numeric(20,9)" json:"amount,omitempty"`
	NFTSlug    *string          `json:"nft_slug,omitempty"`
	Message    *string          `gorm:"type:text" json:"message,omitempty"`
	TxHash     *string          `json:"tx_hash,omitempty"`
	Status     string           `gorm:"type:varchar(16);default:'sent'" json:"status"`
	CreatedAt  time.Time        `gorm:"autoCreateTime" json:"created_at"`
}
