package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// FeedScheduler pre-generates the daily feed for every active user shortly
// after UTC midnight so the morning request is a cheap read. Generation is
// idempotent, so a user who opens the app before the job runs simply gets
// the entry created on demand.
type FeedScheduler struct {
	feeds         *FeedService
	userTopicRepo UserTopicRepository
	spec          string
	logger        *zap.Logger
}

func NewFeedScheduler(feeds *FeedService, userTopicRepo UserTopicRepository, cronSpec string, logger *zap.Logger) *FeedScheduler {
	if cronSpec == "" {
		cronSpec = "5 0 * * *"
	}
	return &FeedScheduler{
		feeds:         feeds,
		userTopicRepo: userTopicRepo,
		spec:          cronSpec,
		logger:        logger,
	}
}

// Start runs the scheduling loop until ctx is cancelled.
func (s *FeedScheduler) Start(ctx context.Context) {
	s.logger.Info("feed scheduler started", zap.String("cron", s.spec))

	c := cron.New(cron.WithLocation(time.UTC))

	_, err := c.AddFunc(s.spec, func() {
		s.logger.Info("cron triggered: generating daily feeds")
		if err := s.generateAll(ctx); err != nil {
			s.logger.Error("failed to generate daily feeds", zap.Error(err))
		}
	})
	if err != nil {
		s.logger.Error("failed to add cron job", zap.Error(err))
		return
	}

	c.Start()

	<-ctx.Done()

	c.Stop()
	s.logger.Info("feed scheduler stopped")
}

// generateAll creates today's feed for every user with an active
// subscription, with bounded concurrency.
func (s *FeedScheduler) generateAll(ctx context.Context) error {
	userIDs, err := s.userTopicRepo.ActiveUserIDs(ctx)
	if err != nil {
		return err
	}

	const maxConcurrent = 10
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	generated := 0

	for _, userID := range userIDs {
		userID := userID
		wg.Add(1)
		sem <- struct{}{}

		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := s.feeds.GenerateDailyFeed(ctx, userID); err != nil {
				s.logger.Error("failed to generate feed",
					zap.String("user_id", userID.String()),
					zap.Error(err))
				return
			}
			mu.Lock()
			generated++
			mu.Unlock()
		}()
	}

	wg.Wait()

	s.logger.Info("daily feeds generated",
		zap.Int("users", len(userIDs)),
		zap.Int("generated", generated),
	)

	return nil
}
