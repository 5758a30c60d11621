package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestGeminiSchema(t *testing.T) {
	s := geminiSchema(questionSchema().Definition)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.ElementsMatch(t, []string{"question_text", "choices", "answer_index"}, s.Required)

	choices := s.Properties["choices"]
	require.NotNil(t, choices)
	assert.Equal(t, genai.TypeArray, choices.Type)
	assert.Equal(t, genai.TypeString, choices.Items.Type)
	assert.Equal(t, int64(4), *choices.MinItems)
	assert.Equal(t, int64(4), *choices.MaxItems)

	answer := s.Properties["answer_index"]
	assert.Equal(t, genai.TypeInteger, answer.Type)
	assert.Equal(t, 3.0, *answer.Maximum)
}

func TestGeminiSchema_Enum(t *testing.T) {
	s := geminiSchema(map[string]any{"type": "string", "enum": []any{"easy", "hard"}, "description": "level"})
	assert.Equal(t, []string{"easy", "hard"}, s.Enum)
	assert.Equal(t, "level", s.Description)
}

func TestGemini_Generate(t *testing.T) {
	content := `{"question_text":"q","choices":["a","b","c","d"],"answer_index":1}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{{
				"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": content}}},
				"finishReason": "STOP",
			}},
			"usageMetadata": map[string]any{"promptTokenCount": 50, "candidatesTokenCount": 20, "totalTokenCount": 70},
		})
	}))
	t.Cleanup(srv.Close)

	p, err := newGemini(context.Background(), Config{APIKey: "k", Model: "gemini-flash", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-flash", p.ModelID())

	resp, err := p.Generate(context.Background(), Request{
		System:   "You write exam questions.",
		Messages: []Message{{Role: RoleUser, Content: "One question."}},
		Schema:   questionSchema(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, content, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 50, OutputTokens: 20}, resp.Usage)
}

func TestGemini_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 429, "message": "quota", "status": "RESOURCE_EXHAUSTED"}})
	}))
	t.Cleanup(srv.Close)

	p, err := newGemini(context.Background(), Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrRateLimited)
}
