package services

import (
	"sort"
	"strings"

	"devquest-hub/models"
)

// XPPerLevel is the fixed cost of one level. The curve is flat: every level
// costs the same.
const XPPerLevel = 200

// Level derives the level for a total XP amount. Negative XP never occurs
// under normal operation; clamp it to level 0 anyway.
func Level(xp int64) int {
	if xp < 0 {
		return 0
	}
	return int(xp / XPPerLevel)
}

// LevelProgress is the XP-bar state for a profile.
type LevelProgress struct {
	Level      int     `json:"level"`
	ProgressXP int64   `json:"progress_xp"`
	NeededXP   int64   `json:"needed_xp"`
	Percentage float64 `json:"percentage"`
}

// ProgressForXP computes fill within the current level. Percentage is always
// in [0, 100): crossing a boundary re-expresses the bar as 0% of the next
// level.
func ProgressForXP(xp int64) LevelProgress {
	if xp < 0 {
		xp = 0
	}
	level := Level(xp)
	levelFloor := int64(level) * XPPerLevel
	levelCeil := int64(level+1) * XPPerLevel
	progress := xp - levelFloor
	needed := levelCeil - levelFloor
	return LevelProgress{
		Level:      level,
		ProgressXP: progress,
		NeededXP:   needed,
		Percentage: 100 * float64(progress) / float64(needed),
	}
}

// DisplayStatus is the derived per-quest view state. Never persisted.
type DisplayStatus string

const (
	QuestAvailable  DisplayStatus = "available"
	QuestInProgress DisplayStatus = "in_progress"
	QuestCompleted  DisplayStatus = "completed"
	QuestLocked     DisplayStatus = "locked"
)

// DisplayStatusFor maps the latest submission status for a quest to its
// display state and progress percentage. A rejected submission reverts the
// quest to available so the user can resubmit; the rejection itself stays in
// the submission history only.
func DisplayStatusFor(submissionStatus string) (DisplayStatus, int) {
	switch models.SubmissionStatus(submissionStatus) {
	case models.SubmissionPending:
		return QuestInProgress, 50
	case models.SubmissionApproved:
		return QuestCompleted, 100
	default:
		return QuestAvailable, 0
	}
}

// ActiveQuestPicks selects the dashboard's quest shortlist: quests not yet
// approved, in the order the backend returned them, capped at limit. No sort
// is applied here.
func ActiveQuestPicks(quests []models.UserQuest, limit int) []models.UserQuest {
	picks := make([]models.UserQuest, 0, limit)
	for _, q := range quests {
		if q.SubmissionStatus != models.SubmissionNotStarted &&
			q.SubmissionStatus != string(models.SubmissionPending) {
			continue
		}
		picks = append(picks, q)
		if len(picks) == limit {
			break
		}
	}
	return picks
}

// FilterQuests keeps quests whose title or description contains the query,
// case-insensitively. An empty query keeps everything.
func FilterQuests(quests []models.Quest, query string) []models.Quest {
	q := strings.ToLower(strings.TrimSpace(query))
	filtered := make([]models.Quest, 0, len(quests))
	for _, quest := range quests {
		if q == "" ||
			strings.Contains(strings.ToLower(quest.Title), q) ||
			strings.Contains(strings.ToLower(quest.Description), q) {
			filtered = append(filtered, quest)
		}
	}
	return filtered
}

// LeaderboardMetric selects the leaderboard ranking key.
type LeaderboardMetric string

const (
	MetricXP     LeaderboardMetric = "xp"
	MetricQuests LeaderboardMetric = "quest_count"
	MetricStreak LeaderboardMetric = "streak"
	MetricNFTs   LeaderboardMetric = "nft_count"
)

// SortLeaderboard returns the rows sorted descending by the metric. The sort
// is stable so ties keep the backend's order across renders. Unknown metrics
// fall back to XP.
func SortLeaderboard(rows []models.LeaderboardRow, metric LeaderboardMetric) []models.LeaderboardRow {
	key := func(r models.LeaderboardRow) int64 {
		switch metric {
		case MetricQuests:
			return r.QuestCount
		case MetricStreak:
			return r.Streak
		case MetricNFTs:
			return r.NFTCount
		default:
			return r.XP
		}
	}

	sorted := make([]models.LeaderboardRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(sorted[i]) > key(sorted[j])
	})
	return sorted
}
