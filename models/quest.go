package models

import "time"

// RewardType says what an approved quest pays out.
type RewardType string

const (
	RewardTypeNFT    RewardType = "nft"
	RewardTypeJetton RewardType = "jetton"
	RewardTypeXPOnly RewardType = "xp_only"
)

// ProofType is the kind of artifact a submission must carry.
type ProofType string

const (
	ProofTypeTxHash      ProofType = "tx_hash"
	ProofTypePRURL       ProofType = "pr_url"
	ProofTypeManualInput ProofType = "manual_input"
)

// Quest is a catalog entry. Immutable from the client's perspective.
type Quest struct {
	ID          string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	RewardXP    int64      `gorm:"not null" json:"reward_xp"`
	RewardType  RewardType `gorm:"type:varchar(16);not null" json:"reward_type"`
	NFTSlug     *string    `json:"nft_slug,omitempty"`
	ProofType   ProofType  `gorm:"type:varchar(16);not null" json:"proof_type"`
	Category    string     `gorm:"index" json:"category"`
	Difficulty  string     `json:"difficulty"`
	IsActive    bool       `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// SubmissionStatus is the review state of a quest proof.
type SubmissionStatus string

const (
	SubmissionPending  SubmissionStatus = "pending"
	SubmissionApproved SubmissionStatus = "approved"
	SubmissionRejected SubmissionStatus = "rejected"
)

// SubmissionNotStarted is the synthetic status for a quest the profile never
// submitted to. It only appears in derived rows, never in the table.
const SubmissionNotStarted = "not_started"

// QuestSubmission joins a profile and a quest with a proof artifact and its
// review outcome. The backend enforces at most one pending submission per
// (user, quest).
type QuestSubmission struct {
	ID            string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID        string           `gorm:"type:uuid;index;not null" json:"user_id"`
	QuestID       string           `gorm:"type:uuid;index;not null" json:"quest_id"`
	Proof         string           `gorm:"type:text;not null" json:"proof"`
	Status        SubmissionStatus `gorm:"type:varchar(16);default:'pending';index" json:"status"`
	SubmittedAt   time.Time        `gorm:"autoCreateTime" json:"submitted_at"`
	ReviewedAt    *time.Time       `json:"reviewed_at,omitempty"`
	ReviewerNotes *string          `gorm:"type:text" json:"reviewer_notes,omitempty"`

	// Set once the reward worker has credited XP (and minted, for nft
	// quests). Approved rows with a NULL RewardedAt are the fulfillment
	// queue.
	RewardedAt *time.Time `gorm:"index" json:"rewarded_at,omitempty"`

	Quest *Quest `gorm:"foreignKey:QuestID" json:"quest,omitempty"`
}

// UserQuest is the derived per-profile quest row: catalog fields plus the
// profile's most recent submission status (SubmissionNotStarted when none).
type UserQuest struct {
	QuestID          string     `json:"quest_id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	RewardXP         int64      `json:"reward_xp"`
	RewardType       RewardType `json:"reward_type"`
	ProofType        ProofType  `json:"proof_type"`
	Category         string     `json:"category"`
	Difficulty       string     `json:"difficulty"`
	SubmissionStatus string     `json:"submission_status"`
}
