package llm

import (
	"context"
	"encoding/json"
	"errors"

	openai "github.com/sashabaranov/go-openai"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// openAIProvider serves OpenAI and OpenAI-compatible APIs. OpenRouter is
// the same client pointed at its base URL.
type openAIProvider struct {
	name   string
	client *openai.Client
	model  string
}

func newOpenAI(cfg Config) *openAIProvider {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &openAIProvider{
		name:   ProviderOpenAI,
		client: openai.NewClientWithConfig(oc),
		model:  ResolveModel(ProviderOpenAI, cfg.Model),
	}
}

func newOpenRouter(cfg Config) *openAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = openRouterBaseURL
	}
	p := newOpenAI(cfg)
	p.name = ProviderOpenRouter
	p.model = ResolveModel(ProviderOpenRouter, cfg.Model)
	return p
}

func (p *openAIProvider) Name() string    { return p.name }
func (p *openAIProvider) ModelID() string { return p.model }

func (p *openAIProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	chat := openai.ChatCompletionRequest{
		Model:               p.model,
		MaxCompletionTokens: req.MaxTokens,
		Temperature:         float32(req.Temperature),
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{
			Role: openai.ChatMessageRoleSystem, Content: req.System,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	if req.Schema != nil {
		def, err := json.Marshal(req.Schema.Definition)
		if err != nil {
			return nil, err
		}
		chat.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Schema.Name,
				Description: req.Schema.Description,
				Schema:      json.RawMessage(def),
				Strict:      true,
			},
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			return nil, httpError(p.name, apiErr.HTTPStatusCode, nil, err)
		case errors.As(err, &reqErr):
			return nil, httpError(p.name, reqErr.HTTPStatusCode, nil, err)
		}
		return nil, httpError(p.name, 0, nil, err)
	}
	if len(resp.Choices) == 0 {
		return nil, &Error{Provider: p.name, Kind: ErrBadOutput, Err: errors.New("reply has no choices")}
	}

	choice := resp.Choices[0]
	stop := StopEnd
	if choice.FinishReason == openai.FinishReasonLength {
		stop = StopMaxTokens
	}
	usage := Usage{InputTokens: resp.Usage.PromptTokens, OutputTokens: resp.Usage.CompletionTokens}
	return complete(p.name, req, json.RawMessage(choice.Message.Content), stop, usage, resp.Model)
}
