package llm

import "strings"

// Model is a model examly can generate banks with.
type Model struct {
	Provider string
	Alias    string
	ID       string
	Cost     ModelCost
}

// ModelCost is the price in USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost is the USD price of a request with the given token counts.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1_000_000
}

// Models lists the selectable models. The first model of each provider is
// its default: fast and cheap enough for batches of exam questions.
var Models = []Model{
	{ProviderAnthropic, "claude-haiku", "claude-haiku-4-5-20251001", ModelCost{1, 5}},
	{ProviderAnthropic, "claude-sonnet", "claude-sonnet-4-5-20250929", ModelCost{3, 15}},
	{ProviderOpenAI, "gpt-mini", "gpt-4.1-mini", ModelCost{0.4, 1.6}},
	{ProviderOpenAI, "gpt", "gpt-4.1", ModelCost{2, 8}},
	{ProviderGemini, "gemini-flash", "gemini-2.5-flash", ModelCost{0.3, 2.5}},
	{ProviderGemini, "gemini-pro", "gemini-2.5-pro", ModelCost{1.25, 10}},
	{ProviderOpenRouter, "gemini-flash", "google/gemini-2.5-flash", ModelCost{0.3, 2.5}},
	{ProviderOpenRouter, "claude-haiku", "anthropic/claude-haiku-4.5", ModelCost{1, 5}},
}

// DefaultModel returns the default model ID of provider.
func DefaultModel(provider string) string {
	for _, m := range Models {
		if m.Provider == provider {
			return m.ID
		}
	}
	return ""
}

// ResolveModel maps an alias of provider to its model ID. Anything else is
// taken as a model ID.
func ResolveModel(provider, name string) string {
	if name == "" {
		return DefaultModel(provider)
	}
	for _, m := range Models {
		if m.Provider == provider && m.Alias == name {
			return m.ID
		}
	}
	return name
}

// LookupCost returns the price of modelID, or nil if unknown. Dated
// snapshots reported by providers ("gpt-4.1-mini-2025-04-14") match their
// base model.
func LookupCost(modelID string) *ModelCost {
	var best *Model
	for i := range Models {
		m := &Models[i]
		if m.ID == modelID {
			c := m.Cost
			return &c
		}
		if strings.HasPrefix(modelID, m.ID+"-") && (best == nil || len(m.ID) > len(best.ID)) {
			best = m
		}
	}
	if best == nil {
		return nil
	}
	c := best.Cost
	return &c
}
