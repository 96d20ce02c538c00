package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres/repository"
)

// ErrPrerequisiteMissing reports a subtopic prerequisite that does not belong
// to the same topic.
var ErrPrerequisiteMissing = errors.New("prerequisite subtopic not found in topic")

// TopicService manages the learning catalog (topics and their subtopics) and
// user subscriptions.
type TopicService struct {
	topicRepo     TopicRepository
	subtopicRepo  SubtopicRepository
	userTopicRepo UserTopicRepository
}

func NewTopicService(topicRepo TopicRepository, subtopicRepo SubtopicRepository, userTopicRepo UserTopicRepository) *TopicService {
	return &TopicService{
		topicRepo:     topicRepo,
		subtopicRepo:  subtopicRepo,
		userTopicRepo: userTopicRepo,
	}
}

func (s *TopicService) CreateTopic(ctx context.Context, topic *entities.Topic) error {
	return s.topicRepo.Create(ctx, topic)
}

func (s *TopicService) GetTopic(ctx context.Context, id uuid.UUID) (*entities.Topic, error) {
	return s.topicRepo.GetByID(ctx, id)
}

func (s *TopicService) ListTopics(ctx context.Context, category string, activeOnly bool) ([]*entities.Topic, error) {
	return s.topicRepo.List(ctx, category, activeOnly)
}

func (s *TopicService) UpdateTopic(ctx context.Context, topic *entities.Topic) error {
	return s.topicRepo.Update(ctx, topic)
}

func (s *TopicService) DeleteTopic(ctx context.Context, id uuid.UUID) error {
	return s.topicRepo.Delete(ctx, id)
}

// CreateSubtopic adds a subtopic to an existing topic. Prerequisites must
// reference subtopics of the same topic.
func (s *TopicService) CreateSubtopic(ctx context.Context, subtopic *entities.Subtopic) error {
	if _, err := s.topicRepo.GetByID(ctx, subtopic.TopicID); err != nil {
		return fmt.Errorf("get topic: %w", err)
	}

	if len(subtopic.Prerequisites) > 0 {
		siblings, err := s.subtopicRepo.GetByTopic(ctx, subtopic.TopicID, false)
		if err != nil {
			return fmt.Errorf("get subtopics: %w", err)
		}
		known := make(map[uuid.UUID]struct{}, len(siblings))
		for _, sib := range siblings {
			known[sib.ID] = struct{}{}
		}
		for _, prereq := range subtopic.Prerequisites {
			if _, ok := known[prereq]; !ok {
				return fmt.Errorf("%w: %s", ErrPrerequisiteMissing, prereq)
			}
		}
	}

	return s.subtopicRepo.Create(ctx, subtopic)
}

func (s *TopicService) GetSubtopic(ctx context.Context, id uuid.UUID) (*entities.Subtopic, error) {
	return s.subtopicRepo.GetByID(ctx, id)
}

func (s *TopicService) ListSubtopics(ctx context.Context, topicID uuid.UUID, activeOnly bool) ([]*entities.Subtopic, error) {
	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}
	return s.subtopicRepo.GetByTopic(ctx, topicID, activeOnly)
}

func (s *TopicService) UpdateSubtopic(ctx context.Context, subtopic *entities.Subtopic) error {
	return s.subtopicRepo.Update(ctx, subtopic)
}

func (s *TopicService) DeleteSubtopic(ctx context.Context, id uuid.UUID) error {
	return s.subtopicRepo.Delete(ctx, id)
}

// Subscribe enrolls a user in a topic. Re-subscribing to a deactivated
// subscription reactivates it instead of failing on the unique constraint.
func (s *TopicService) Subscribe(ctx context.Context, userID, topicID uuid.UUID, priority int) (*entities.UserTopic, error) {
	if _, err := s.topicRepo.GetByID(ctx, topicID); err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}

	existing, err := s.userTopicRepo.Get(ctx, userID, topicID)
	switch {
	case err == nil:
		if existing.IsActive {
			return nil, repository.ErrAlreadySubscribed
		}
		existing.IsActive = true
		existing.PriorityOrder = priority
		if err := s.userTopicRepo.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("reactivate subscription: %w", err)
		}
		return existing, nil
	case !errors.Is(err, repository.ErrSubscriptionNotFound):
		return nil, err
	}

	ut := entities.NewUserTopic(userID, topicID, priority)
	if err := s.userTopicRepo.Create(ctx, ut); err != nil {
		return nil, fmt.Errorf("create subscription: %w", err)
	}
	return ut, nil
}

// ListSubscriptions returns the user's subscriptions in priority order.
func (s *TopicService) ListSubscriptions(ctx context.Context, userID uuid.UUID, activeOnly bool) ([]*entities.UserTopic, error) {
	return s.userTopicRepo.GetByUser(ctx, userID, activeOnly)
}

// UpdateSubscription changes the priority or active flag of a subscription.
func (s *TopicService) UpdateSubscription(ctx context.Context, userID, topicID uuid.UUID, priority int, active bool) (*entities.UserTopic, error) {
	ut, err := s.userTopicRepo.Get(ctx, userID, topicID)
	if err != nil {
		return nil, err
	}

	ut.PriorityOrder = priority
	ut.IsActive = active
	if err := s.userTopicRepo.Update(ctx, ut); err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}
	return ut, nil
}
