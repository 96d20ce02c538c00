package service

import (
	"encoding/json"
	"fmt"

	"github.com/thestackdev/loop/internal/domain/entities"
)

// mockModelName marks content produced by the static fallback rather than an
// actual model call.
const mockModelName = "mock"

// mockPayload builds deterministic placeholder content so development and
// tests work without an OpenAI key.
func mockPayload(topic *entities.Topic, subtopic *entities.Subtopic, contentType entities.ContentType) json.RawMessage {
	var doc any

	switch contentType {
	case entities.ContentArticle:
		doc = map[string]any{
			"title": subtopic.Name,
			"body_markdown": fmt.Sprintf(
				"# %s\n\nAn introduction to %s within %s.\n\n%s",
				subtopic.Name, subtopic.Name, topic.Name, subtopic.Description,
			),
			"key_points":             []string{subtopic.Name + " fundamentals"},
			"estimated_read_minutes": 5,
		}
	case entities.ContentFlashcard:
		doc = map[string]any{
			"cards": []map[string]string{
				{
					"front": fmt.Sprintf("What is %s?", subtopic.Name),
					"back":  subtopic.Description,
				},
			},
		}
	case entities.ContentQuiz:
		doc = map[string]any{
			"questions": []map[string]any{
				{
					"question":      fmt.Sprintf("Which topic does %s belong to?", subtopic.Name),
					"options":       []string{topic.Name, "None of the above"},
					"correct_index": 0,
					"explanation":   fmt.Sprintf("%s is part of %s.", subtopic.Name, topic.Name),
				},
			},
		}
	case entities.ContentMnemonic:
		doc = map[string]any{
			"mnemonic":    fmt.Sprintf("Remember %s by its first letters.", subtopic.Name),
			"explanation": subtopic.Description,
		}
	default:
		doc = map[string]any{}
	}

	payload, _ := json.Marshal(doc)
	return payload
}
