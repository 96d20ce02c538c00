package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/thestackdev/loop/internal/domain/entities"
)

// ErrInvalidContentType reports an unknown content type on generation.
var ErrInvalidContentType = errors.New("invalid content type")

// ChatCompleter is the slice of the OpenAI client the content service uses.
// Kept narrow so tests can substitute a canned responder.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// ContentService generates learning material for subtopics through the OpenAI
// chat API and persists the results. When no API client is configured, or a
// response cannot be parsed, it falls back to deterministic placeholder
// content so the feed never arrives empty.
type ContentService struct {
	contentRepo  ContentRepository
	subtopicRepo SubtopicRepository
	topicRepo    TopicRepository

	client ChatCompleter
	model  string
	logger *zap.Logger
}

func NewContentService(
	contentRepo ContentRepository,
	subtopicRepo SubtopicRepository,
	topicRepo TopicRepository,
	client ChatCompleter,
	model string,
	logger *zap.Logger,
) *ContentService {
	return &ContentService{
		contentRepo:  contentRepo,
		subtopicRepo: subtopicRepo,
		topicRepo:    topicRepo,
		client:       client,
		model:        model,
		logger:       logger,
	}
}

// Generate produces one piece of content for a subtopic and stores it. The
// existing active content of the same type, if any, is left in place; the
// caller decides which version to serve.
func (s *ContentService) Generate(ctx context.Context, subtopicID uuid.UUID, contentType entities.ContentType) (*entities.GeneratedContent, error) {
	if !contentType.Valid() {
		return nil, ErrInvalidContentType
	}

	subtopic, err := s.subtopicRepo.GetByID(ctx, subtopicID)
	if err != nil {
		return nil, fmt.Errorf("get subtopic: %w", err)
	}
	topic, err := s.topicRepo.GetByID(ctx, subtopic.TopicID)
	if err != nil {
		return nil, fmt.Errorf("get topic: %w", err)
	}

	payload, model := s.generatePayload(ctx, topic, subtopic, contentType)

	content := entities.NewGeneratedContent(subtopicID, contentType, payload, subtopic.DifficultyLevel, model)
	if err := s.contentRepo.Create(ctx, content); err != nil {
		return nil, fmt.Errorf("save content: %w", err)
	}

	return content, nil
}

// GetBySubtopic returns stored content for a subtopic, optionally filtered by
// type (empty type matches all).
func (s *ContentService) GetBySubtopic(ctx context.Context, subtopicID uuid.UUID, contentType entities.ContentType) ([]*entities.GeneratedContent, error) {
	if contentType != "" && !contentType.Valid() {
		return nil, ErrInvalidContentType
	}
	return s.contentRepo.GetBySubtopic(ctx, subtopicID, contentType)
}

// GetByID returns a single stored content item.
func (s *ContentService) GetByID(ctx context.Context, id uuid.UUID) (*entities.GeneratedContent, error) {
	return s.contentRepo.GetByID(ctx, id)
}

// generatePayload asks the model for a JSON document and falls back to the
// static mock on any failure.
func (s *ContentService) generatePayload(
	ctx context.Context,
	topic *entities.Topic,
	subtopic *entities.Subtopic,
	contentType entities.ContentType,
) (json.RawMessage, string) {
	if s.client == nil {
		return mockPayload(topic, subtopic, contentType), mockModelName
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(topic, subtopic, contentType)},
		},
		Temperature: 0.7,
	})
	if err != nil {
		s.logger.Warn("content generation failed, using mock",
			zap.String("subtopic_id", subtopic.ID.String()),
			zap.String("content_type", string(contentType)),
			zap.Error(err),
		)
		return mockPayload(topic, subtopic, contentType), mockModelName
	}
	if len(resp.Choices) == 0 {
		s.logger.Warn("content generation returned no choices, using mock",
			zap.String("subtopic_id", subtopic.ID.String()),
		)
		return mockPayload(topic, subtopic, contentType), mockModelName
	}

	payload, err := extractJSON(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("content generation returned malformed JSON, using mock",
			zap.String("subtopic_id", subtopic.ID.String()),
			zap.Error(err),
		)
		return mockPayload(topic, subtopic, contentType), mockModelName
	}

	return payload, s.model
}

const systemPrompt = "You are an expert educator who produces structured learning material. " +
	"Always answer with a single JSON object and nothing else."

func userPrompt(topic *entities.Topic, subtopic *entities.Subtopic, contentType entities.ContentType) string {
	base := fmt.Sprintf(
		"Topic: %s\nSubtopic: %s\nDescription: %s\nDifficulty: %d/5\n\n",
		topic.Name, subtopic.Name, subtopic.Description, subtopic.DifficultyLevel,
	)

	switch contentType {
	case entities.ContentArticle:
		return base + `Write a concise learning article. Respond with JSON: ` +
			`{"title": string, "body_markdown": string, "key_points": [string], "estimated_read_minutes": number}`
	case entities.ContentFlashcard:
		return base + `Create 8 flashcards. Respond with JSON: ` +
			`{"cards": [{"front": string, "back": string}]}`
	case entities.ContentQuiz:
		return base + `Create a 5 question multiple-choice quiz. Respond with JSON: ` +
			`{"questions": [{"question": string, "options": [string], "correct_index": number, "explanation": string}]}`
	case entities.ContentMnemonic:
		return base + `Create a memorable mnemonic for the hardest part of this subtopic. Respond with JSON: ` +
			`{"mnemonic": string, "explanation": string}`
	}
	return base
}

// extractJSON pulls the first JSON object out of a model response, tolerating
// markdown code fences around it.
func extractJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		if i := strings.LastIndex(text, "```"); i >= 0 {
			text = text[:i]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, errors.New("no JSON object in response")
	}
	raw := json.RawMessage(text[start : end+1])

	var probe map[string]any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	return raw, nil
}
