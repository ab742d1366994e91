package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

// RotationWorker drives the daily rollover: it periodically re-runs the
// topic engine's date check so a new day's topics regenerate without waiting
// for a request, and rolls the challenge of the day over with them.
type RotationWorker struct {
	topics    *TopicService
	challenge *ChallengeService
	interval  time.Duration
}

// NewRotationWorker creates a rotation worker. A non-positive interval
// defaults to one minute.
func NewRotationWorker(topics *TopicService, challenge *ChallengeService, interval time.Duration) *RotationWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &RotationWorker{
		topics:    topics,
		challenge: challenge,
		interval:  interval,
	}
}

// Start runs the rotation loop until the context is cancelled.
func (w *RotationWorker) Start(ctx context.Context) {
	logger.Log.Info("rotation worker starting", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			logger.Log.Info("rotation worker stopping")
			return
		}
	}
}

// tick re-checks the rotation date. DailyTopics is a no-op while the cached
// generation date still matches today, so ticking every minute is cheap.
func (w *RotationWorker) tick(ctx context.Context) {
	w.topics.DailyTopics(ctx)
	w.challenge.Current()
}
