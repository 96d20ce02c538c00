package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionPerformance_Score(t *testing.T) {
	tests := []struct {
		name string
		perf SessionPerformance
		want float64
	}{
		{
			name: "everything perfect",
			perf: SessionPerformance{ArticleCompleted: true, FlashcardSuccessRate: 1, QuizScore: 1},
			want: 1.0,
		},
		{
			name: "nothing done",
			perf: SessionPerformance{},
			want: 0.0,
		},
		{
			name: "reading only",
			perf: SessionPerformance{ArticleCompleted: true},
			want: 0.3,
		},
		{
			name: "flashcards only",
			perf: SessionPerformance{FlashcardSuccessRate: 0.5},
			want: 0.2,
		},
		{
			name: "quiz only",
			perf: SessionPerformance{QuizScore: 0.8},
			want: 0.24,
		},
		{
			// A skipped component caps the score; the sum is not re-normalized.
			name: "perfect flashcards and quiz without reading",
			perf: SessionPerformance{FlashcardSuccessRate: 1, QuizScore: 1},
			want: 0.7,
		},
		{
			name: "mixed session",
			perf: SessionPerformance{ArticleCompleted: true, FlashcardSuccessRate: 0.9, QuizScore: 0.8},
			want: 0.3 + 0.36 + 0.24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.perf.Score(), 1e-9)
		})
	}
}

func TestSessionPerformance_Valid(t *testing.T) {
	assert.True(t, SessionPerformance{}.Valid())
	assert.True(t, SessionPerformance{FlashcardSuccessRate: 1, QuizScore: 1}.Valid())
	assert.False(t, SessionPerformance{FlashcardSuccessRate: 1.01}.Valid())
	assert.False(t, SessionPerformance{FlashcardSuccessRate: -0.1}.Valid())
	assert.False(t, SessionPerformance{QuizScore: 2}.Valid())
	assert.False(t, SessionPerformance{QuizScore: -1}.Valid())
}

func TestSessionType_Valid(t *testing.T) {
	assert.True(t, SessionReading.Valid())
	assert.True(t, SessionReview.Valid())
	assert.False(t, SessionType("cramming").Valid())
	assert.False(t, SessionType("").Valid())
}
