package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"devquest-hub/models"

	"gorm.io/gorm"
)

var (
	_ Store = (*SQLStore)(nil)
	_ Store = (*NullStore)(nil)
)

const validID = "550e8400-e29b-41d4-a716-446655440000"

func TestValidateProfileID(t *testing.T) {
	tests := []struct {
		id string
		ok bool
	}{
		{validID, true},
		{strings.ToUpper(validID), true},
		{"abc", false},
		{"", false},
		{strings.Repeat("z", 36), false},
		// Right length, wrong shape.
		{"550e8400e29b41d4a716446655440000----", false},
		// uuid.Parse accepts the urn form, but it is not 36 chars.
		{"urn:uuid:550e8400-e29b-41d4-a716-446655440000", false},
	}
	for _, tt := range tests {
		err := ValidateProfileID(tt.id)
		if tt.ok && err != nil {
			t.Errorf("ValidateProfileID(%q)=%v, want nil", tt.id, err)
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("ValidateProfileID(%q)=nil, want error", tt.id)
			} else if !errors.Is(err, ErrInvalidProfileID) {
				t.Errorf("ValidateProfileID(%q)=%v, want ErrInvalidProfileID", tt.id, err)
			}
		}
	}
}

func TestSubmissionCreateErrorMapsDuplicateToAlreadySubmitted(t *testing.T) {
	// Two concurrent submissions can both pass the count check; the loser's
	// insert hits the partial unique index and must surface as the same
	// error a sequential duplicate would get.
	err := submissionCreateError(gorm.ErrDuplicatedKey, validID)
	if !errors.Is(err, ErrAlreadySubmitted) {
		t.Fatalf("duplicate insert err=%v, want ErrAlreadySubmitted", err)
	}

	other := errors.New("connection reset")
	if got := submissionCreateError(other, validID); got != other {
		t.Fatalf("unrelated err=%v, want passthrough", got)
	}
}

func TestOutstandingSubmissionIndexShape(t *testing.T) {
	for _, want := range []string{"UNIQUE", "user_id", "quest_id", "'pending'", "'approved'"} {
		if !strings.Contains(outstandingSubmissionIndex, want) {
			t.Fatalf("index statement missing %q", want)
		}
	}
	// Rejected submissions never block a resubmission.
	if strings.Contains(outstandingSubmissionIndex, "'rejected'") {
		t.Fatal("index must not cover rejected submissions")
	}
}

func TestClampLeaderboardLimit(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 10},
		{-5, 10},
		{1, 1},
		{10, 10},
		{100, 100},
		{500, 100},
	}
	for _, tt := range tests {
		if got := clampLeaderboardLimit(tt.in); got != tt.want {
			t.Errorf("clampLeaderboardLimit(%d)=%d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNullStoreRejectsMalformedIDsBeforeDispatch(t *testing.T) {
	n := NewNullStore()
	ctx := context.Background()

	if _, err := n.GetUserQuests(ctx, "abc"); !errors.Is(err, ErrInvalidProfileID) {
		t.Fatalf("GetUserQuests err=%v, want ErrInvalidProfileID", err)
	}
	if _, err := n.GetQuestSubmissions(ctx, "abc"); !errors.Is(err, ErrInvalidProfileID) {
		t.Fatalf("GetQuestSubmissions err=%v, want ErrInvalidProfileID", err)
	}
	if _, err := n.SubmitQuestProof(ctx, "abc", validID, "proof"); !errors.Is(err, ErrInvalidProfileID) {
		t.Fatalf("SubmitQuestProof err=%v, want ErrInvalidProfileID", err)
	}
}

func TestNullStoreReadsReturnEmpty(t *testing.T) {
	n := NewNullStore()
	ctx := context.Background()

	quests, err := n.GetAllQuests(ctx)
	if err != nil || len(quests) != 0 {
		t.Fatalf("GetAllQuests=(%v, %v), want empty", quests, err)
	}
	rows, err := n.GetUserQuests(ctx, validID)
	if err != nil || len(rows) != 0 {
		t.Fatalf("GetUserQuests=(%v, %v), want empty", rows, err)
	}
	board, err := n.GetLeaderboard(ctx, 10)
	if err != nil || len(board) != 0 {
		t.Fatalf("GetLeaderboard=(%v, %v), want empty", board, err)
	}
	if _, err := n.GetUserProfile(ctx, "alice"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetUserProfile err=%v, want ErrNotFound", err)
	}
}

func TestNullStoreWritesFail(t *testing.T) {
	n := NewNullStore()
	ctx := context.Background()

	if _, err := n.CreateUser(ctx, validID, "alice", nil); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("CreateUser err=%v, want ErrBackendUnavailable", err)
	}
	if _, err := n.SubmitQuestProof(ctx, validID, validID, "proof"); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("SubmitQuestProof err=%v, want ErrBackendUnavailable", err)
	}
	gift := &models.Gift{SenderID: validID, ReceiverID: strings.ToUpper(validID)}
	if _, err := n.SendGift(ctx, gift); !errors.Is(err, ErrBackendUnavailable) {
		t.Fatalf("SendGift err=%v, want ErrBackendUnavailable", err)
	}
}
