package workers

import (
	"context"
	"log"
	"time"

	"devquest-hub/services"
)

// PollRewards drains the reward fulfillment queue on an interval: approved
// submissions that have not been credited yet get their XP, streak and NFT
// mint applied. A failed fulfillment stays in the queue and is retried next
// tick.
func PollRewards(ctx context.Context, rewards *services.RewardService, pollInterval time.Duration) {
	log.Println("Starting reward fulfillment polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Reward polling stopped.")
			return
		case <-ticker.C:
			subs, err := rewards.PendingFulfillments(50)
			if err != nil {
				log.Printf("❌ Error fetching pending fulfillments: %v", err)
				continue
			}
			if len(subs) == 0 {
				continue
			}

			log.Printf("📥 %d approved submission(s) awaiting fulfillment.", len(subs))
			fulfilled := 0
			for i := range subs {
				if err := rewards.Fulfill(&subs[i]); err != nil {
					log.Printf("❌ Failed to fulfill submission %s: %v", subs[i].ID, err)
					continue
				}
				fulfilled++
			}
			if fulfilled > 0 {
				log.Printf("✅ Fulfilled %d reward(s).", fulfilled)
			}
		}
	}
}
