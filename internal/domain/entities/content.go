package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContentType is the kind of generated learning material.
type ContentType string

const (
	ContentArticle   ContentType = "article"
	ContentFlashcard ContentType = "flashcard"
	ContentQuiz      ContentType = "quiz"
	ContentMnemonic  ContentType = "mnemonic"
)

// Valid reports whether t is one of the known content types.
func (t ContentType) Valid() bool {
	switch t {
	case ContentArticle, ContentFlashcard, ContentQuiz, ContentMnemonic:
		return true
	}
	return false
}

// GeneratedContent is one AI-generated piece of material for a subtopic.
// Payload is the type-specific document (article body, card list, questions).
type GeneratedContent struct {
	ID              uuid.UUID
	SubtopicID      uuid.UUID
	ContentType     ContentType
	Payload         json.RawMessage
	DifficultyLevel int
	Version         int
	AIModel         string
	IsActive        bool
	CreatedAt       time.Time
}

// NewGeneratedContent wraps a payload produced for a subtopic.
func NewGeneratedContent(subtopicID uuid.UUID, contentType ContentType, payload json.RawMessage, difficulty int, model string) *GeneratedContent {
	return &GeneratedContent{
		ID:              uuid.New(),
		SubtopicID:      subtopicID,
		ContentType:     contentType,
		Payload:         payload,
		DifficultyLevel: difficulty,
		Version:         1,
		AIModel:         model,
		IsActive:        true,
		CreatedAt:       time.Now().UTC(),
	}
}
