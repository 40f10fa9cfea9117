package store

import (
	"context"
	"log"

	"devquest-hub/models"
)

// NullStore is the Store used when no DATABASE_URL is configured, e.g. in a
// preview sandbox. Reads log and return empty collections, writes fail with
// ErrBackendUnavailable. Malformed ids are still rejected first, the same as
// against the real backend.
type NullStore struct{}

func NewNullStore() *NullStore {
	return &NullStore{}
}

func (n *NullStore) skip(op string) {
	log.Printf("🔸 %s ignored: backend store is not configured", op)
}

func (n *NullStore) GetUserProfile(ctx context.Context, githubUsername string) (*models.User, error) {
	n.skip("GetUserProfile")
	return nil, ErrNotFound
}

func (n *NullStore) CreateUser(ctx context.Context, id, githubUsername string, avatarURL *string) (*models.User, error) {
	if err := ValidateProfileID(id); err != nil {
		return nil, err
	}
	n.skip("CreateUser")
	return nil, ErrBackendUnavailable
}

func (n *NullStore) UpdateUserProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error) {
	if err := ValidateProfileID(id); err != nil {
		return nil, err
	}
	n.skip("UpdateUserProfile")
	return nil, ErrBackendUnavailable
}

func (n *NullStore) GetAllQuests(ctx context.Context) ([]models.Quest, error) {
	n.skip("GetAllQuests")
	return []models.Quest{}, nil
}

func (n *NullStore) GetUserQuests(ctx context.Context, profileID string) ([]models.UserQuest, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}
	n.skip("GetUserQuests")
	return []models.UserQuest{}, nil
}

func (n *NullStore) SubmitQuestProof(ctx context.Context, profileID, questID, proof string) (*models.QuestSubmission, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}
	n.skip("SubmitQuestProof")
	return nil, ErrBackendUnavailable
}

func (n *NullStore) GetQuestSubmissions(ctx context.Context, profileID string) ([]models.QuestSubmission, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}
	n.skip("GetQuestSubmissions")
	return []models.QuestSubmission{}, nil
}

func (n *NullStore) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardRow, error) {
	n.skip("GetLeaderboard")
	return []models.LeaderboardRow{}, nil
}

func (n *NullStore) SendGift(ctx context.Context, gift *models.Gift) (*models.Gift, error) {
	if err := ValidateProfileID(gift.SenderID); err != nil {
		return nil, err
	}
	if err := ValidateProfileID(gift.ReceiverID); err != nil {
		return nil, err
	}
	n.skip("SendGift")
	return nil, ErrBackendUnavailable
}

func (n *NullStore) GetUserGifts(ctx context.Context, profileID string) ([]models.Gift, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}
	n.skip("GetUserGifts")
	return []models.Gift{}, nil
}

func (n *NullStore) GetUserNFTs(ctx context.Context, profileID string) ([]models.NFTMint, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}
	n.skip("GetUserNFTs")
	return []models.NFTMint{}, nil
}
