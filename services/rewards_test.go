package services

import (
	"errors"
	"testing"
	"time"

	"devquest-hub/models"
	"devquest-hub/store"
)

func TestReviewNotFoundErrorIsTyped(t *testing.T) {
	err := errSubmissionNotFound("missing-id")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("err=%v, want it to wrap store.ErrNotFound", err)
	}
}

func TestNextStreak(t *testing.T) {
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		current    int
		lastActive time.Time
		want       int
	}{
		{"first activity", 0, time.Time{}, 1},
		{"zero streak with history", 0, now.Add(-2 * time.Hour), 1},
		{"same day keeps streak", 4, now.Add(-3 * time.Hour), 4},
		{"next day extends", 4, now.Add(-24 * time.Hour), 5},
		{"edge of window extends", 4, now.Add(-47 * time.Hour), 5},
		{"beyond window restarts", 9, now.Add(-72 * time.Hour), 1},
	}
	for _, tt := range tests {
		if got := NextStreak(tt.current, tt.lastActive, now); got != tt.want {
			t.Errorf("%s: NextStreak(%d, %v)=%d, want %d", tt.name, tt.current, tt.lastActive, got, tt.want)
		}
	}
}

func TestNFTSlugFor(t *testing.T) {
	explicit := "genesis-badge"
	q := &models.Quest{Title: "Deploy Your First Contract", NFTSlug: &explicit}
	if got := NFTSlugFor(q); got != "genesis-badge" {
		t.Fatalf("NFTSlugFor kept=%q, want explicit slug", got)
	}

	q = &models.Quest{Title: "Deploy Your First Contract"}
	if got := NFTSlugFor(q); got != "deploy-your-first-contract" {
		t.Fatalf("NFTSlugFor derived=%q", got)
	}

	empty := ""
	q = &models.Quest{Title: "Open a PR", NFTSlug: &empty}
	if got := NFTSlugFor(q); got != "open-a-pr" {
		t.Fatalf("NFTSlugFor with empty slug=%q", got)
	}
}
