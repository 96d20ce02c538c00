package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres/repository"
)

// dueReviewLimit caps how many overdue records the selector considers per
// call; the single most overdue of these wins.
const dueReviewLimit = 5

// FeedService builds the daily learning feed: it picks the next subtopic a
// user should study and records it as the entry for the current UTC calendar
// date, at most once per user per day.
type FeedService struct {
	feedRepo      FeedRepository
	userTopicRepo UserTopicRepository
	subtopicRepo  SubtopicRepository
	progressRepo  ProgressRepository

	now func() time.Time
}

func NewFeedService(
	feedRepo FeedRepository,
	userTopicRepo UserTopicRepository,
	subtopicRepo SubtopicRepository,
	progressRepo ProgressRepository,
) *FeedService {
	return &FeedService{
		feedRepo:      feedRepo,
		userTopicRepo: userTopicRepo,
		subtopicRepo:  subtopicRepo,
		progressRepo:  progressRepo,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// GenerateDailyFeed returns today's feed entry for the user, creating it if
// needed. The call is idempotent for a given (user, date): an existing entry
// is returned unchanged without re-running selection. When the user has no
// active subscriptions, or no subtopic is eligible, it returns nil without
// error.
func (s *FeedService) GenerateDailyFeed(ctx context.Context, userID uuid.UUID) (*entities.DailyFeed, error) {
	now := s.now()
	today := entities.FeedDateUTC(now)

	existing, err := s.feedRepo.GetForDate(ctx, userID, today)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrFeedNotFound) {
		return nil, err
	}

	subscriptions, err := s.userTopicRepo.GetByUser(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	if len(subscriptions) == 0 {
		return nil, nil
	}

	subtopic, err := s.SelectNext(ctx, userID, subscriptions)
	if err != nil {
		return nil, err
	}
	if subtopic == nil {
		return nil, nil
	}

	feed := &entities.DailyFeed{
		ID:         uuid.New(),
		UserID:     userID,
		SubtopicID: subtopic.ID,
		FeedDate:   today,
		CreatedAt:  now,
	}

	if err := s.feedRepo.Create(ctx, feed); err != nil {
		// A concurrent call won the (user, date) uniqueness race. The entry
		// it created is the feed for today; return it instead of failing.
		if errors.Is(err, repository.ErrFeedExists) {
			return s.feedRepo.GetForDate(ctx, userID, today)
		}
		return nil, err
	}

	if err := s.ensureProgress(ctx, userID, subtopic.ID); err != nil {
		return nil, err
	}

	return feed, nil
}

// ensureProgress lazily creates the not-started progress record on first
// exposure to a subtopic.
func (s *FeedService) ensureProgress(ctx context.Context, userID, subtopicID uuid.UUID) error {
	_, err := s.progressRepo.Get(ctx, userID, subtopicID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrProgressNotFound) {
		return err
	}
	return s.progressRepo.Upsert(ctx, entities.NewUserSubtopicProgress(userID, subtopicID))
}

// SelectNext picks the single subtopic the user should study next.
//
// Due reviews win over everything: if any reviewable progress record is past
// its next-review time, the most overdue one is returned and topic
// continuation is not considered at all. Otherwise the user's subscriptions
// are scanned in priority order and the first topic that yields an eligible
// subtopic decides. A nil result means there is nothing to learn today.
func (s *FeedService) SelectNext(ctx context.Context, userID uuid.UUID, subscriptions []*entities.UserTopic) (*entities.Subtopic, error) {
	due, err := s.progressRepo.GetDueReviews(ctx, userID, dueReviewLimit)
	if err != nil {
		return nil, err
	}
	if len(due) > 0 {
		return s.subtopicRepo.GetByID(ctx, mostOverdue(due).SubtopicID)
	}

	for _, sub := range subscriptions {
		subtopic, err := s.nextSubtopicInTopic(ctx, userID, sub.TopicID)
		if err != nil {
			return nil, err
		}
		if subtopic != nil {
			return subtopic, nil
		}
	}

	return nil, nil
}

// mostOverdue returns the record with the smallest next-review time, breaking
// ties by subtopic id so selection stays deterministic.
func mostOverdue(due []*entities.UserSubtopicProgress) *entities.UserSubtopicProgress {
	best := due[0]
	for _, p := range due[1:] {
		if p.NextReviewAt == nil {
			continue
		}
		if best.NextReviewAt == nil {
			best = p
			continue
		}
		switch {
		case p.NextReviewAt.Before(*best.NextReviewAt):
			best = p
		case p.NextReviewAt.Equal(*best.NextReviewAt) &&
			strings.Compare(p.SubtopicID.String(), best.SubtopicID.String()) < 0:
			best = p
		}
	}
	return best
}

// nextSubtopicInTopic scans a topic's active subtopics in progression order
// and returns the first one the user should work on: either a fresh subtopic
// whose prerequisites are all mastered, or a started-but-unfinished one. A
// subtopic with unmet prerequisites is skipped without blocking later ones.
func (s *FeedService) nextSubtopicInTopic(ctx context.Context, userID, topicID uuid.UUID) (*entities.Subtopic, error) {
	subtopics, err := s.subtopicRepo.GetByTopic(ctx, topicID, true)
	if err != nil {
		return nil, err
	}
	if len(subtopics) == 0 {
		return nil, nil
	}

	progressList, err := s.progressRepo.GetByTopic(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}

	progressMap := make(map[uuid.UUID]*entities.UserSubtopicProgress, len(progressList))
	for _, p := range progressList {
		progressMap[p.SubtopicID] = p
	}

	for _, subtopic := range subtopics {
		progress, started := progressMap[subtopic.ID]
		if !started {
			if prerequisitesMet(subtopic, progressMap) {
				return subtopic, nil
			}
			continue
		}
		if !progress.MasteryLevel.IsMastered() && progress.CompletedAt == nil {
			return subtopic, nil
		}
	}

	return nil, nil
}

// prerequisitesMet checks every prerequisite has a mastered progress record.
// A missing record counts as not met.
func prerequisitesMet(subtopic *entities.Subtopic, progressMap map[uuid.UUID]*entities.UserSubtopicProgress) bool {
	for _, prereqID := range subtopic.Prerequisites {
		progress, ok := progressMap[prereqID]
		if !ok || !progress.MasteryLevel.IsMastered() {
			return false
		}
	}
	return true
}

// TodayFeed returns the user's feed entry for the current date, if any.
func (s *FeedService) TodayFeed(ctx context.Context, userID uuid.UUID) (*entities.DailyFeed, error) {
	feed, err := s.feedRepo.GetForDate(ctx, userID, s.now())
	if errors.Is(err, repository.ErrFeedNotFound) {
		return nil, nil
	}
	return feed, err
}

// MarkFeedCompleted sets the completion flag on the user's feed entry.
// Completing an already-completed entry succeeds without change. Entries that
// do not exist or belong to another user report not found.
func (s *FeedService) MarkFeedCompleted(ctx context.Context, userID, feedID uuid.UUID) (*entities.DailyFeed, error) {
	feed, err := s.feedRepo.GetByID(ctx, feedID)
	if err != nil {
		return nil, err
	}
	if feed.UserID != userID {
		return nil, repository.ErrFeedNotFound
	}
	if feed.IsCompleted {
		return feed, nil
	}

	return s.feedRepo.MarkCompleted(ctx, feedID, s.now())
}

// History returns the user's feed entries for the last N days.
func (s *FeedService) History(ctx context.Context, userID uuid.UUID, days int) ([]*entities.DailyFeed, error) {
	return s.feedRepo.History(ctx, userID, days)
}

// Streak returns the user's run of consecutive completed feed days.
func (s *FeedService) Streak(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.feedRepo.Streak(ctx, userID)
}
