package store

import (
	"context"
	"errors"
	"fmt"

	"devquest-hub/models"

	"gorm.io/gorm"
)

// SQLStore is the Postgres-backed Store. Open gorm with TranslateError so
// unique-constraint violations surface as gorm.ErrDuplicatedKey.
type SQLStore struct {
	DB *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{DB: db}
}

// outstandingSubmissionIndex rejects a second pending or approved submission
// for the same (profile, quest) at the database level. Rejected submissions
// are excluded so a resubmission stays possible.
const outstandingSubmissionIndex = `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_submission_outstanding
	ON quest_submissions (user_id, quest_id)
	WHERE status IN ('pending', 'approved')`

// Migrate creates the schema plus the partial unique index guarding
// submission uniqueness. The index is the real enforcement; the
// in-transaction count in SubmitQuestProof only exists to answer with a
// friendly error before the insert is attempted.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Quest{},
		&models.QuestSubmission{},
		&models.NFTMint{},
		&models.Gift{},
	); err != nil {
		return err
	}
	return db.Exec(outstandingSubmissionIndex).Error
}

func (s *SQLStore) GetUserProfile(ctx context.Context, githubUsername string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("github_username = ?", githubUsername).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: profile %q", ErrNotFound, githubUsername)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLStore) CreateUser(ctx context.Context, id, githubUsername string, avatarURL *string) (*models.User, error) {
	if err := ValidateProfileID(id); err != nil {
		return nil, err
	}
	user := models.User{
		ID:             id,
		GithubUsername: githubUsername,
		AvatarURL:      avatarURL,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: profile %q", ErrDuplicateKey, githubUsername)
		}
		return nil, err
	}
	return &user, nil
}

func (s *SQLStore) UpdateUserProfile(ctx context.Context, id string, patch ProfilePatch) (*models.User, error) {
	if err := ValidateProfileID(id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.WalletAddress != nil {
		updates["wallet_address"] = *patch.WalletAddress
	}
	if patch.AvatarURL != nil {
		updates["avatar_url"] = *patch.AvatarURL
	}

	var user models.User
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: profile %s", ErrNotFound, id)
			}
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&user).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *SQLStore) GetAllQuests(ctx context.Context) ([]models.Quest, error) {
	var quests []models.Quest
	err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&quests).Error
	return quests, err
}

// GetUserQuests joins every active quest with the profile's most recent
// submission status, 'not_started' when none exists.
func (s *SQLStore) GetUserQuests(ctx context.Context, profileID string) ([]models.UserQuest, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}

	var rows []models.UserQuest
	err := s.DB.WithContext(ctx).Raw(`
		SELECT q.id AS quest_id, q.title, q.description, q.reward_xp,
		       q.reward_type, q.proof_type, q.category, q.difficulty,
		       COALESCE(s.status, 'not_started') AS submission_status
		FROM quests q
		LEFT JOIN LATERAL (
			SELECT qs.status
			FROM quest_submissions qs
			WHERE qs.quest_id = q.id AND qs.user_id = ?
			ORDER BY qs.submitted_at DESC
			LIMIT 1
		) s ON true
		WHERE q.is_active
		ORDER BY q.created_at DESC
	`, profileID).Scan(&rows).Error
	return rows, err
}

// submissionCreateError translates a failed submission insert. A
// duplicate-key violation means the partial unique index caught a concurrent
// submission the in-transaction count could not see under READ COMMITTED.
func submissionCreateError(err error, questID string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: quest %s", ErrAlreadySubmitted, questID)
	}
	return err
}

// SubmitQuestProof records a pending submission. At most one outstanding
// submission per (profile, quest); a rejected one may be replaced. The
// partial unique index backs the count check against concurrent inserts.
func (s *SQLStore) SubmitQuestProof(ctx context.Context, profileID, questID, proof string) (*models.QuestSubmission, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}

	var sub models.QuestSubmission
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quest models.Quest
		if err := tx.Where("id = ? AND is_active = ?", questID, true).First(&quest).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: quest %s", ErrNotFound, questID)
			}
			return err
		}

		var outstanding int64
		if err := tx.Model(&models.QuestSubmission{}).
			Where("user_id = ? AND quest_id = ? AND status IN ?",
				profileID, questID,
				[]models.SubmissionStatus{models.SubmissionPending, models.SubmissionApproved}).
			Count(&outstanding).Error; err != nil {
			return err
		}
		if outstanding > 0 {
			return fmt.Errorf("%w: quest %s", ErrAlreadySubmitted, questID)
		}

		sub = models.QuestSubmission{
			UserID:  profileID,
			QuestID: questID,
			Proof:   proof,
			Status:  models.SubmissionPending,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return submissionCreateError(err, questID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *SQLStore) GetQuestSubmissions(ctx context.Context, profileID string) ([]models.QuestSubmission, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}
	var subs []models.QuestSubmission
	err := s.DB.WithContext(ctx).
		Preload("Quest").
		Where("user_id = ?", profileID).
		Order("submitted_at DESC").
		Find(&subs).Error
	return subs, err
}

// clampLeaderboardLimit keeps the page size in [1, 100], defaulting to 10
// when the caller passes nothing usable.
func clampLeaderboardLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}

// GetLeaderboard returns profiles ordered by XP descending. Metric-specific
// re-sorting is a presentation concern and happens in the progression
// engine.
func (s *SQLStore) GetLeaderboard(ctx context.Context, limit int) ([]models.LeaderboardRow, error) {
	limit = clampLeaderboardLimit(limit)
	var rows []models.LeaderboardRow
	err := s.DB.WithContext(ctx).Raw(`
		SELECT u.id AS user_id, u.github_username, u.avatar_url, u.xp, u.streak,
		       (SELECT COUNT(*) FROM quest_submissions qs
		        WHERE qs.user_id = u.id AND qs.status = 'approved') AS quest_count,
		       (SELECT COUNT(*) FROM nft_mints nm
		        WHERE nm.user_id = u.id) AS nft_count
		FROM users u
		ORDER BY u.xp DESC
		LIMIT ?
	`, limit).Scan(&rows).Error
	return rows, err
}

func (s *SQLStore) SendGift(ctx context.Context, gift *models.Gift) (*models.Gift, error) {
	if err := ValidateProfileID(gift.SenderID); err != nil {
		return nil, err
	}
	if err := ValidateProfileID(gift.ReceiverID); err != nil {
		return nil, err
	}
	if gift.Status == "" {
		gift.Status = models.GiftStatusSent
	}
	if err := s.DB.WithContext(ctx).Create(gift).Error; err != nil {
		return nil, err
	}
	return gift, nil
}

func (s *SQLStore) GetUserGifts(ctx context.Context, profileID string) ([]models.Gift, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}
	var gifts []models.Gift
	err := s.DB.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", profileID, profileID).
		Order("created_at DESC").
		Find(&gifts).Error
	return gifts, err
}

func (s *SQLStore) GetUserNFTs(ctx context.Context, profileID string) ([]models.NFTMint, error) {
	if err := ValidateProfileID(profileID); err != nil {
		return nil, err
	}
	var mints []models.NFTMint
	err := s.DB.WithContext(ctx).
		Preload("Quest").
		Where("user_id = ?", profileID).
		Order("minted_at DESC").
		Find(&mints).Error
	return mints, err
}
