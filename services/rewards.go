package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"devquest-hub/models"
	"devquest-hub/store"

	"github.com/go-co-op/gocron/v2"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// streakWindow is how long a streak survives without an approved
// submission.
const streakWindow = 48 * time.Hour

var ErrSubmissionNotPending = errors.New("submission is not pending review")

// errSubmissionNotFound wraps the store's not-found sentinel so handlers can
// answer 404 instead of a generic failure.
func errSubmissionNotFound(id string) error {
	return fmt.Errorf("%w: submission %s", store.ErrNotFound, id)
}

// RewardService reviews submissions and fulfills the rewards of approved
// ones: XP credit, streak bump and an NFT badge mint for nft-reward quests.
type RewardService struct {
	DB *gorm.DB
}

func NewRewardService(db *gorm.DB) *RewardService {
	return &RewardService{DB: db}
}

// Review records the outcome of a manual proof review. Fulfillment of an
// approval happens asynchronously via the reward worker.
func (s *RewardService) Review(submissionID string, approve bool, notes *string) (*models.QuestSubmission, error) {
	var sub models.QuestSubmission
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", submissionID).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errSubmissionNotFound(submissionID)
			}
			return err
		}
		if sub.Status != models.SubmissionPending {
			return fmt.Errorf("%w: %s", ErrSubmissionNotPending, submissionID)
		}

		now := time.Now()
		sub.ReviewedAt = &now
		sub.ReviewerNotes = notes
		if approve {
			sub.Status = models.SubmissionApproved
		} else {
			sub.Status = models.SubmissionRejected
		}
		return tx.Save(&sub).Error
	})
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// PendingFulfillments returns approved submissions whose reward has not been
// credited yet, oldest review first.
func (s *RewardService) PendingFulfillments(limit int) ([]models.QuestSubmission, error) {
	var subs []models.QuestSubmission
	err := s.DB.Preload("Quest").
		Where("status = ? AND rewarded_at IS NULL", models.SubmissionApproved).
		Order("reviewed_at ASC").
		Limit(limit).
		Find(&subs).Error
	return subs, err
}

// Fulfill credits a single approved submission atomically: XP is added to
// the profile (never subtracted), the streak advances, and nft-reward quests
// get a badge mint. RewardedAt marks the row done so a crash between worker
// ticks cannot double-award.
func (s *RewardService) Fulfill(sub *models.QuestSubmission) error {
	if sub.Quest == nil {
		return fmt.Errorf("submission %s loaded without quest", sub.ID)
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Where("id = ?", sub.UserID).First(&user).Error; err != nil {
			return fmt.Errorf("profile not found for submission %s", sub.ID)
		}

		now := time.Now()
		user.XP += sub.Quest.RewardXP
		user.Streak = NextStreak(user.Streak, user.LastActive, now)
		user.LastActive = now
		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		if sub.Quest.RewardType == models.RewardTypeNFT {
			mint := models.NFTMint{
				UserID:  sub.UserID,
				QuestID: &sub.QuestID,
				NFTSlug: NFTSlugFor(sub.Quest),
			}
			if err := tx.Create(&mint).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.QuestSubmission{}).
			Where("id = ?", sub.ID).
			Update("rewarded_at", now).Error; err != nil {
			return err
		}

		log.Printf("🎮 Reward fulfilled: %s +%d XP for %q (xp=%d, streak=%d)",
			user.GithubUsername, sub.Quest.RewardXP, sub.Quest.Title, user.XP, user.Streak)
		return nil
	})
}

// NFTSlugFor picks the badge slug for a quest, deriving one from the title
// when the catalog has none.
func NFTSlugFor(q *models.Quest) string {
	if q.NFTSlug != nil && *q.NFTSlug != "" {
		return *q.NFTSlug
	}
	return slug.Make(q.Title)
}

// NextStreak applies the calendar-day streak rule: same-day activity keeps
// the streak, activity within the window extends it, anything later starts
// over at 1.
func NextStreak(current int, lastActive, now time.Time) int {
	if current <= 0 || lastActive.IsZero() {
		return 1
	}
	ly, lm, ld := lastActive.Date()
	ny, nm, nd := now.Date()
	if ly == ny && lm == nm && ld == nd {
		return current
	}
	if now.Sub(lastActive) <= streakWindow {
		return current + 1
	}
	return 1
}

// StartStreakScheduler zeroes streaks that have gone cold. Runs hourly.
func (s *RewardService) StartStreakScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-streakWindow)
			res := s.DB.Model(&models.User{}).
				Where("streak > 0 AND last_active < ?", cutoff).
				Update("streak", 0)
			if res.Error != nil {
				log.Printf("[Scheduler] streak sweep failed: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("✅ Reset %d cold streak(s)", res.RowsAffected)
			}
		}),
	)
}
