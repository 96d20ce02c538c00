package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/thestackdev/loop/internal/domain/entities"
	"github.com/thestackdev/loop/internal/infra/postgres/repository"
)

type fakeCompleter struct {
	response string
	err      error
	calls    int
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.response}},
		},
	}, nil
}

type contentFixture struct {
	svc       *ContentService
	content   *fakeContentRepo
	completer *fakeCompleter
	subtopic  *entities.Subtopic
}

func newContentFixture(t *testing.T, completer *fakeCompleter) *contentFixture {
	t.Helper()

	topics := newFakeTopicRepo()
	subtopics := newFakeSubtopicRepo()
	content := newFakeContentRepo()

	topic := &entities.Topic{ID: uuid.New(), Name: "Spanish", Category: "language", IsActive: true}
	topics.topics[topic.ID] = topic
	subtopic := &entities.Subtopic{
		ID: uuid.New(), TopicID: topic.ID, Name: "Subjunctive mood",
		OrderIndex: 1, DifficultyLevel: 3, IsActive: true,
	}
	subtopics.subtopics[subtopic.ID] = subtopic

	var client ChatCompleter
	if completer != nil {
		client = completer
	}
	svc := NewContentService(content, subtopics, topics, client, "gpt-4o-mini", zap.NewNop())

	return &contentFixture{svc: svc, content: content, completer: completer, subtopic: subtopic}
}

func TestContentService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("stores model output", func(t *testing.T) {
		f := newContentFixture(t, &fakeCompleter{
			response: `{"title": "Subjunctive", "body_markdown": "...", "key_points": [], "estimated_read_minutes": 4}`,
		})

		got, err := f.svc.Generate(ctx, f.subtopic.ID, entities.ContentArticle)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4o-mini", got.AIModel)
		assert.Equal(t, 3, got.DifficultyLevel)
		assert.JSONEq(t, `{"title": "Subjunctive", "body_markdown": "...", "key_points": [], "estimated_read_minutes": 4}`, string(got.Payload))
		assert.Len(t, f.content.content, 1)
	})

	t.Run("strips markdown fences", func(t *testing.T) {
		f := newContentFixture(t, &fakeCompleter{
			response: "```json\n{\"cards\": []}\n```",
		})

		got, err := f.svc.Generate(ctx, f.subtopic.ID, entities.ContentFlashcard)
		require.NoError(t, err)
		assert.JSONEq(t, `{"cards": []}`, string(got.Payload))
	})

	t.Run("falls back to mock on API error", func(t *testing.T) {
		f := newContentFixture(t, &fakeCompleter{err: errors.New("rate limited")})

		got, err := f.svc.Generate(ctx, f.subtopic.ID, entities.ContentQuiz)
		require.NoError(t, err)
		assert.Equal(t, "mock", got.AIModel)

		var doc map[string]any
		require.NoError(t, json.Unmarshal(got.Payload, &doc))
		assert.Contains(t, doc, "questions")
	})

	t.Run("falls back to mock on malformed JSON", func(t *testing.T) {
		f := newContentFixture(t, &fakeCompleter{response: "sorry, I cannot do that"})

		got, err := f.svc.Generate(ctx, f.subtopic.ID, entities.ContentMnemonic)
		require.NoError(t, err)
		assert.Equal(t, "mock", got.AIModel)
	})

	t.Run("no client serves mock without calling out", func(t *testing.T) {
		f := newContentFixture(t, nil)

		got, err := f.svc.Generate(ctx, f.subtopic.ID, entities.ContentArticle)
		require.NoError(t, err)
		assert.Equal(t, "mock", got.AIModel)
	})

	t.Run("rejects unknown content type", func(t *testing.T) {
		f := newContentFixture(t, nil)
		_, err := f.svc.Generate(ctx, f.subtopic.ID, entities.ContentType("podcast"))
		assert.ErrorIs(t, err, ErrInvalidContentType)
	})
}

func TestContentService_GetByID(t *testing.T) {
	ctx := context.Background()
	f := newContentFixture(t, nil)

	created, err := f.svc.Generate(ctx, f.subtopic.ID, entities.ContentFlashcard)
	require.NoError(t, err)

	got, err := f.svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, entities.ContentFlashcard, got.ContentType)

	_, err = f.svc.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, repository.ErrContentNotFound)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare object", in: `{"a": 1}`, want: `{"a": 1}`},
		{name: "fenced", in: "```json\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "fenced without language", in: "```\n{\"a\": 1}\n```", want: `{"a": 1}`},
		{name: "surrounding prose", in: "Here you go: {\"a\": 1} hope it helps", want: `{"a": 1}`},
		{name: "no object", in: "nope", wantErr: true},
		{name: "broken object", in: `{"a": `, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractJSON(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}
