package store

import (
	"context"
	"errors"
	"fmt"

	"devquest-hub/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means the row does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is a unique-constraint violation, e.g. two racing
	// profile creations for the same username.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidProfileID flags a malformed id caught before any network
	// dispatch. Seeing it means caller-side state is broken.
	ErrInvalidProfileID = errors.New("invalid profile id")

	// ErrAlreadySubmitted means the profile already has a pending or
	// approved submission for the quest.
	ErrAlreadySubmitted = errors.New("quest already submitted")

	// ErrBackendUnavailable is returned by the null store for writes.
	ErrBackendUnavailable = errors.New("backend store unavailable")
)

// ValidateProfileID requires a 36-character hyphenated hex UUID. Anything
// else is rejected before a query is built.
func ValidateProfileID(id string) error {
	if len(id) != 36 {
		return fmt.Errorf("%w: %q", ErrInvalidProfileID, id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidProfileID, id)
	}
	return nil
}

// ProfilePatch is a partial profile update; nil fields are left untouched.
type ProfilePatch struct {
	WalletAddress *string
	AvatarURL     *string
}

// Store is the data-access contract for the managed backend. Reads return
// empty collections rather than partial data on miss; writes fail loudly.
type Store interface {
	GetUserProfile(ctx context.Context, githubUsername string) (*models.User, error)
	// CreateUser inserts a profile whose id is the authenticated identity's
	// UUID. Fails with ErrDuplicateKey when the username is taken.
	CreateUser(ctx context.Context, id, githubUsername string, avatarURL *string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error)

	GetAllQuests(ctx context.Context) ([]models.Quest, error)
	GetUserQuests(ctx context.Context, profileID string) ([]models.UserQuest, error)
	SubmitQuestProof(ctx context.Context, profileID, questID, proof string) (*models.QuestSubmission, error)
	GetQuestSubmissions(ctx context.Context, profileID string) ([]models.QuestSubmission, error)

	GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardRow, error)

	SendGift(ctx context.Context, gift *models.Gift) (*models.Gift, error)
	GetUserGifts(ctx context.Context, profileID string) ([]models.Gift, error)
	GetUserNFTs(ctx context.Context, profileID string) ([]models.NFTMint, error)
}
