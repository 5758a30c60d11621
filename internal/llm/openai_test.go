package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chatServer answers chat completions with reply and keeps the last
// request body.
func chatServer(t *testing.T, status int, reply any) (string, *map[string]any) {
	t.Helper()
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(reply)
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/v1", &got
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1,
		"model": "gpt-4.1-mini-2025-04-14",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 90, "completion_tokens": 30, "total_tokens": 120},
	}
}

func TestOpenAI_Generate(t *testing.T) {
	content := `{"question_text":"2+2?","choices":["1","2","3","4"],"answer_index":3}`
	url, got := chatServer(t, http.StatusOK, chatCompletion(content, "stop"))
	p := newOpenAI(Config{APIKey: "k", Model: "gpt-mini", BaseURL: url})
	assert.Equal(t, "gpt-4.1-mini", p.ModelID())

	resp, err := p.Generate(context.Background(), Request{
		System:    "You write exam questions.",
		Messages:  []Message{{Role: RoleUser, Content: "One question."}},
		Schema:    questionSchema(),
		MaxTokens: 256,
	})
	require.NoError(t, err)
	assert.JSONEq(t, content, string(resp.Content))
	assert.Equal(t, Usage{InputTokens: 90, OutputTokens: 30}, resp.Usage)
	assert.Equal(t, "gpt-4.1-mini-2025-04-14", resp.Model)

	body := *got
	assert.Equal(t, "gpt-4.1-mini", body["model"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	format := body["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "single-question", format["json_schema"].(map[string]any)["name"])
}

func TestOpenAI_SchemaMismatch(t *testing.T) {
	url, _ := chatServer(t, http.StatusOK, chatCompletion(`{"question_text":"2+2?"}`, "stop"))
	p := newOpenAI(Config{APIKey: "k", BaseURL: url})
	_, err := p.Generate(context.Background(), Request{Schema: questionSchema()})
	assert.ErrorIs(t, err, ErrBadOutput)
}

func TestOpenAI_LengthIsTruncation(t *testing.T) {
	url, _ := chatServer(t, http.StatusOK, chatCompletion(`{"question_te`, "length"))
	p := newOpenAI(Config{APIKey: "k", BaseURL: url})
	_, err := p.Generate(context.Background(), Request{Schema: questionSchema()})
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestOpenAI_Errors(t *testing.T) {
	errBody := map[string]any{"error": map[string]any{"message": "nope", "type": "x"}}
	for status, kind := range map[int]error{
		http.StatusTooManyRequests:     ErrRateLimited,
		http.StatusUnauthorized:        ErrAuth,
		http.StatusNotFound:            ErrRejected,
		http.StatusInternalServerError: ErrUnavailable,
	} {
		url, _ := chatServer(t, status, errBody)
		p := newOpenAI(Config{APIKey: "k", BaseURL: url})
		_, err := p.Generate(context.Background(), Request{})
		assert.ErrorIs(t, err, kind, "status %d", status)
	}
}

func TestOpenRouter(t *testing.T) {
	p := newOpenRouter(Config{APIKey: "k"})
	assert.Equal(t, ProviderOpenRouter, p.Name())
	assert.Equal(t, "google/gemini-2.5-flash", p.ModelID())

	p = newOpenRouter(Config{APIKey: "k", Model: "anthropic/claude-haiku-4.5"})
	assert.Equal(t, "anthropic/claude-haiku-4.5", p.ModelID())

	content := `{"question_text":"q","choices":["a","b","c","d"],"answer_index":0}`
	url, got := chatServer(t, http.StatusOK, chatCompletion(content, "stop"))
	p = newOpenRouter(Config{APIKey: "k", Model: "claude-haiku", BaseURL: url})
	_, err := p.Generate(context.Background(), Request{Schema: questionSchema()})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-haiku-4.5", (*got)["model"])
}
