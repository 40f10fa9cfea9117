package models

// LeaderboardRow is the aggregate a leaderboard query returns per profile.
// QuestCount counts approved submissions, NFTCount minted badges.
type LeaderboardRow struct {
	UserID         string  `json:"user_id"`
	GithubUsername string  `json:"github_username"`
	AvatarURL      *string `json:"avatar_url,omitempty"`
	XP             int64   `json:"xp"`
	QuestCount     int64   `json:"quest_count"`
	Streak         int64   `json:"streak"`
	NFTCount       int64   `json:"nft_count"`
}
