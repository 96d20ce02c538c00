package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres/repository"
)

// In-memory repository fakes. They mirror the postgres implementations'
// contracts, including sentinel errors and ordering, closely enough for the
// service tests.

type fakeTopicRepo struct {
	topics map[uuid.UUID]*entities.Topic
}

func newFakeTopicRepo() *fakeTopicRepo {
	return &fakeTopicRepo{topics: map[uuid.UUID]*entities.Topic{}}
}

func (f *fakeTopicRepo) Create(_ context.Context, t *entities.Topic) error {
	f.topics[t.ID] = t
	return nil
}

func (f *fakeTopicRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Topic, error) {
	t, ok := f.topics[id]
	if !ok {
		return nil, repository.ErrTopicNotFound
	}
	return t, nil
}

func (f *fakeTopicRepo) List(_ context.Context, category string, activeOnly bool) ([]*entities.Topic, error) {
	var out []*entities.Topic
	for _, t := range f.topics {
		if category != "" && t.Category != category {
			continue
		}
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTopicRepo) Update(_ context.Context, t *entities.Topic) error {
	if _, ok := f.topics[t.ID]; !ok {
		return repository.ErrTopicNotFound
	}
	f.topics[t.ID] = t
	return nil
}

func (f *fakeTopicRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.topics[id]; !ok {
		return repository.ErrTopicNotFound
	}
	delete(f.topics, id)
	return nil
}

type fakeSubtopicRepo struct {
	subtopics map[uuid.UUID]*entities.Subtopic
}

func newFakeSubtopicRepo() *fakeSubtopicRepo {
	return &fakeSubtopicRepo{subtopics: map[uuid.UUID]*entities.Subtopic{}}
}

func (f *fakeSubtopicRepo) Create(_ context.Context, s *entities.Subtopic) error {
	f.subtopics[s.ID] = s
	return nil
}

func (f *fakeSubtopicRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.Subtopic, error) {
	s, ok := f.subtopics[id]
	if !ok {
		return nil, repository.ErrSubtopicNotFound
	}
	return s, nil
}

func (f *fakeSubtopicRepo) GetByTopic(_ context.Context, topicID uuid.UUID, activeOnly bool) ([]*entities.Subtopic, error) {
	var out []*entities.Subtopic
	for _, s := range f.subtopics {
		if s.TopicID != topicID {
			continue
		}
		if activeOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (f *fakeSubtopicRepo) Update(_ context.Context, s *entities.Subtopic) error {
	if _, ok := f.subtopics[s.ID]; !ok {
		return repository.ErrSubtopicNotFound
	}
	f.subtopics[s.ID] = s
	return nil
}

func (f *fakeSubtopicRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.subtopics[id]; !ok {
		return repository.ErrSubtopicNotFound
	}
	delete(f.subtopics, id)
	return nil
}

type fakeUserTopicRepo struct {
	subs map[uuid.UUID]*entities.UserTopic
}

func newFakeUserTopicRepo() *fakeUserTopicRepo {
	return &fakeUserTopicRepo{subs: map[uuid.UUID]*entities.UserTopic{}}
}

func (f *fakeUserTopicRepo) Create(_ context.Context, ut *entities.UserTopic) error {
	for _, existing := range f.subs {
		if existing.UserID == ut.UserID && existing.TopicID == ut.TopicID {
			return repository.ErrAlreadySubscribed
		}
	}
	f.subs[ut.ID] = ut
	return nil
}

func (f *fakeUserTopicRepo) Get(_ context.Context, userID, topicID uuid.UUID) (*entities.UserTopic, error) {
	for _, ut := range f.subs {
		if ut.UserID == userID && ut.TopicID == topicID {
			return ut, nil
		}
	}
	return nil, repository.ErrSubscriptionNotFound
}

func (f *fakeUserTopicRepo) GetByUser(_ context.Context, userID uuid.UUID, activeOnly bool) ([]*entities.UserTopic, error) {
	var out []*entities.UserTopic
	for _, ut := range f.subs {
		if ut.UserID != userID {
			continue
		}
		if activeOnly && !ut.IsActive {
			continue
		}
		out = append(out, ut)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PriorityOrder < out[j].PriorityOrder })
	return out, nil
}

func (f *fakeUserTopicRepo) Update(_ context.Context, ut *entities.UserTopic) error {
	if _, ok := f.subs[ut.ID]; !ok {
		return repository.ErrSubscriptionNotFound
	}
	f.subs[ut.ID] = ut
	return nil
}

func (f *fakeUserTopicRepo) ActiveUserIDs(_ context.Context) ([]uuid.UUID, error) {
	seen := map[uuid.UUID]struct{}{}
	var out []uuid.UUID
	for _, ut := range f.subs {
		if !ut.IsActive {
			continue
		}
		if _, ok := seen[ut.UserID]; ok {
			continue
		}
		seen[ut.UserID] = struct{}{}
		out = append(out, ut.UserID)
	}
	return out, nil
}

type progressKey struct {
	userID     uuid.UUID
	subtopicID uuid.UUID
}

type fakeProgressRepo struct {
	records   map[progressKey]*entities.UserSubtopicProgress
	subtopics *fakeSubtopicRepo // for topic lookups in GetByTopic
	now       func() time.Time
}

func newFakeProgressRepo(subtopics *fakeSubtopicRepo) *fakeProgressRepo {
	return &fakeProgressRepo{
		records:   map[progressKey]*entities.UserSubtopicProgress{},
		subtopics: subtopics,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (f *fakeProgressRepo) Upsert(_ context.Context, p *entities.UserSubtopicProgress) error {
	cp := *p
	f.records[progressKey{p.UserID, p.SubtopicID}] = &cp
	return nil
}

func (f *fakeProgressRepo) Get(_ context.Context, userID, subtopicID uuid.UUID) (*entities.UserSubtopicProgress, error) {
	p, ok := f.records[progressKey{userID, subtopicID}]
	if !ok {
		return nil, repository.ErrProgressNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProgressRepo) GetByTopic(_ context.Context, userID, topicID uuid.UUID) ([]*entities.UserSubtopicProgress, error) {
	var out []*entities.UserSubtopicProgress
	for key, p := range f.records {
		if key.userID != userID {
			continue
		}
		subtopic, ok := f.subtopics.subtopics[key.subtopicID]
		if !ok || subtopic.TopicID != topicID {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return f.subtopics.subtopics[out[i].SubtopicID].OrderIndex < f.subtopics.subtopics[out[j].SubtopicID].OrderIndex
	})
	return out, nil
}

func (f *fakeProgressRepo) GetDueReviews(_ context.Context, userID uuid.UUID, limit int) ([]*entities.UserSubtopicProgress, error) {
	now := f.now()
	var out []*entities.UserSubtopicProgress
	for key, p := range f.records {
		if key.userID != userID {
			continue
		}
		if !p.MasteryLevel.Reviewable() {
			continue
		}
		if p.NextReviewAt == nil || p.NextReviewAt.After(now) {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NextReviewAt.Equal(*out[j].NextReviewAt) {
			return out[i].SubtopicID.String() < out[j].SubtopicID.String()
		}
		return out[i].NextReviewAt.Before(*out[j].NextReviewAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeProgressRepo) CountDue(ctx context.Context, userID uuid.UUID) (int, error) {
	due, err := f.GetDueReviews(ctx, userID, 0)
	return len(due), err
}

type fakeFeedRepo struct {
	feeds map[uuid.UUID]*entities.DailyFeed
}

func newFakeFeedRepo() *fakeFeedRepo {
	return &fakeFeedRepo{feeds: map[uuid.UUID]*entities.DailyFeed{}}
}

func (f *fakeFeedRepo) Create(_ context.Context, feed *entities.DailyFeed) error {
	for _, existing := range f.feeds {
		if existing.UserID == feed.UserID && existing.FeedDate.Equal(feed.FeedDate) {
			return repository.ErrFeedExists
		}
	}
	cp := *feed
	f.feeds[feed.ID] = &cp
	return nil
}

func (f *fakeFeedRepo) GetForDate(_ context.Context, userID uuid.UUID, date time.Time) (*entities.DailyFeed, error) {
	day := entities.FeedDateUTC(date)
	for _, feed := range f.feeds {
		if feed.UserID == userID && feed.FeedDate.Equal(day) {
			cp := *feed
			return &cp, nil
		}
	}
	return nil, repository.ErrFeedNotFound
}

func (f *fakeFeedRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.DailyFeed, error) {
	feed, ok := f.feeds[id]
	if !ok {
		return nil, repository.ErrFeedNotFound
	}
	cp := *feed
	return &cp, nil
}

func (f *fakeFeedRepo) History(_ context.Context, userID uuid.UUID, days int) ([]*entities.DailyFeed, error) {
	var out []*entities.DailyFeed
	for _, feed := range f.feeds {
		if feed.UserID == userID {
			cp := *feed
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FeedDate.After(out[j].FeedDate) })
	return out, nil
}

func (f *fakeFeedRepo) MarkCompleted(_ context.Context, id uuid.UUID, completedAt time.Time) (*entities.DailyFeed, error) {
	feed, ok := f.feeds[id]
	if !ok {
		return nil, repository.ErrFeedNotFound
	}
	feed.IsCompleted = true
	if feed.CompletedAt == nil {
		feed.CompletedAt = &completedAt
	}
	cp := *feed
	return &cp, nil
}

func (f *fakeFeedRepo) Streak(_ context.Context, userID uuid.UUID) (int, error) {
	var completed []time.Time
	for _, feed := range f.feeds {
		if feed.UserID == userID && feed.IsCompleted {
			completed = append(completed, feed.FeedDate)
		}
	}
	sort.Slice(completed, func(i, j int) bool { return completed[i].After(completed[j]) })
	streak := 0
	for i, day := range completed {
		if !day.Equal(completed[0].Add(-time.Duration(i) * 24 * time.Hour)) {
			break
		}
		streak++
	}
	return streak, nil
}

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*entities.LearningSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: map[uuid.UUID]*entities.LearningSession{}}
}

func (f *fakeSessionRepo) Create(_ context.Context, s *entities.LearningSession) error {
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.LearningSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionRepo) Update(_ context.Context, s *entities.LearningSession) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return repository.ErrSessionNotFound
	}
	cp := *s
	f.sessions[s.ID] = &cp
	return nil
}

func (f *fakeSessionRepo) GetByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entities.LearningSession, error) {
	var out []*entities.LearningSession
	for _, s := range f.sessions {
		if s.UserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeContentRepo struct {
	content map[uuid.UUID]*entities.GeneratedContent
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{content: map[uuid.UUID]*entities.GeneratedContent{}}
}

func (f *fakeContentRepo) Create(_ context.Context, c *entities.GeneratedContent) error {
	cp := *c
	f.content[c.ID] = &cp
	return nil
}

func (f *fakeContentRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.GeneratedContent, error) {
	c, ok := f.content[id]
	if !ok {
		return nil, repository.ErrContentNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeContentRepo) GetBySubtopic(_ context.Context, subtopicID uuid.UUID, contentType entities.ContentType) ([]*entities.GeneratedContent, error) {
	var out []*entities.GeneratedContent
	for _, c := range f.content {
		if c.SubtopicID != subtopicID {
			continue
		}
		if contentType != "" && c.ContentType != contentType {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}
