package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres/repository"
)

func newTopicFixture(t *testing.T) (*TopicService, *fakeTopicRepo, *fakeSubtopicRepo) {
	t.Helper()
	topics := newFakeTopicRepo()
	subtopics := newFakeSubtopicRepo()
	userTopics := newFakeUserTopicRepo()
	return NewTopicService(topics, subtopics, userTopics), topics, subtopics
}

func addTopic(f *fakeTopicRepo) *entities.Topic {
	topic := &entities.Topic{ID: uuid.New(), Name: "Go", Category: "programming", IsActive: true}
	f.topics[topic.ID] = topic
	return topic
}

func TestTopicService_CreateSubtopic(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown topic fails", func(t *testing.T) {
		svc, _, _ := newTopicFixture(t)
		err := svc.CreateSubtopic(ctx, &entities.Subtopic{ID: uuid.New(), TopicID: uuid.New()})
		assert.ErrorIs(t, err, repository.ErrTopicNotFound)
	})

	t.Run("prerequisite must belong to the topic", func(t *testing.T) {
		svc, topics, _ := newTopicFixture(t)
		topic := addTopic(topics)

		err := svc.CreateSubtopic(ctx, &entities.Subtopic{
			ID:            uuid.New(),
			TopicID:       topic.ID,
			OrderIndex:    1,
			Prerequisites: []uuid.UUID{uuid.New()},
		})
		assert.ErrorIs(t, err, ErrPrerequisiteMissing)
	})

	t.Run("valid prerequisite chain", func(t *testing.T) {
		svc, topics, _ := newTopicFixture(t)
		topic := addTopic(topics)

		first := &entities.Subtopic{ID: uuid.New(), TopicID: topic.ID, OrderIndex: 1, IsActive: true}
		require.NoError(t, svc.CreateSubtopic(ctx, first))

		second := &entities.Subtopic{
			ID: uuid.New(), TopicID: topic.ID, OrderIndex: 2, IsActive: true,
			Prerequisites: []uuid.UUID{first.ID},
		}
		assert.NoError(t, svc.CreateSubtopic(ctx, second))
	})
}

func TestTopicService_SubtopicLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("get returns the stored subtopic", func(t *testing.T) {
		svc, topics, _ := newTopicFixture(t)
		topic := addTopic(topics)

		created := &entities.Subtopic{ID: uuid.New(), TopicID: topic.ID, Name: "Goroutines", OrderIndex: 1, IsActive: true}
		require.NoError(t, svc.CreateSubtopic(ctx, created))

		got, err := svc.GetSubtopic(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Goroutines", got.Name)

		_, err = svc.GetSubtopic(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrSubtopicNotFound)
	})

	t.Run("update persists the changes", func(t *testing.T) {
		svc, topics, subtopics := newTopicFixture(t)
		topic := addTopic(topics)

		subtopic := &entities.Subtopic{ID: uuid.New(), TopicID: topic.ID, Name: "Channels", OrderIndex: 1, IsActive: true}
		require.NoError(t, svc.CreateSubtopic(ctx, subtopic))

		subtopic.Name = "Buffered channels"
		subtopic.OrderIndex = 4
		require.NoError(t, svc.UpdateSubtopic(ctx, subtopic))

		stored := subtopics.subtopics[subtopic.ID]
		assert.Equal(t, "Buffered channels", stored.Name)
		assert.Equal(t, 4, stored.OrderIndex)

		err := svc.UpdateSubtopic(ctx, &entities.Subtopic{ID: uuid.New()})
		assert.ErrorIs(t, err, repository.ErrSubtopicNotFound)
	})

	t.Run("delete removes the subtopic", func(t *testing.T) {
		svc, topics, _ := newTopicFixture(t)
		topic := addTopic(topics)

		subtopic := &entities.Subtopic{ID: uuid.New(), TopicID: topic.ID, OrderIndex: 1, IsActive: true}
		require.NoError(t, svc.CreateSubtopic(ctx, subtopic))

		require.NoError(t, svc.DeleteSubtopic(ctx, subtopic.ID))
		_, err := svc.GetSubtopic(ctx, subtopic.ID)
		assert.ErrorIs(t, err, repository.ErrSubtopicNotFound)

		err = svc.DeleteSubtopic(ctx, subtopic.ID)
		assert.ErrorIs(t, err, repository.ErrSubtopicNotFound)
	})
}

func TestTopicService_Subscribe(t *testing.T) {
	ctx := context.Background()

	t.Run("subscribes once", func(t *testing.T) {
		svc, topics, _ := newTopicFixture(t)
		topic := addTopic(topics)
		userID := uuid.New()

		ut, err := svc.Subscribe(ctx, userID, topic.ID, 1)
		require.NoError(t, err)
		assert.True(t, ut.IsActive)
		assert.Equal(t, 1, ut.PriorityOrder)

		_, err = svc.Subscribe(ctx, userID, topic.ID, 1)
		assert.ErrorIs(t, err, repository.ErrAlreadySubscribed)
	})

	t.Run("reactivates a cancelled subscription", func(t *testing.T) {
		svc, topics, _ := newTopicFixture(t)
		topic := addTopic(topics)
		userID := uuid.New()

		ut, err := svc.Subscribe(ctx, userID, topic.ID, 1)
		require.NoError(t, err)

		_, err = svc.UpdateSubscription(ctx, userID, topic.ID, 1, false)
		require.NoError(t, err)

		again, err := svc.Subscribe(ctx, userID, topic.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, ut.ID, again.ID)
		assert.True(t, again.IsActive)
		assert.Equal(t, 3, again.PriorityOrder)
	})

	t.Run("unknown topic fails", func(t *testing.T) {
		svc, _, _ := newTopicFixture(t)
		_, err := svc.Subscribe(ctx, uuid.New(), uuid.New(), 1)
		assert.ErrorIs(t, err, repository.ErrTopicNotFound)
	})
}
