package llm

import "strings"

// ModelCost is USD per million tokens. Local models cost nothing and are
// flagged so reports can say so.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
	Local         bool
}

// Cost returns the USD cost of a call.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)*c.InputPerMTok/1_000_000 +
		float64(outputTokens)*c.OutputPerMTok/1_000_000
}

// modelCosts covers the models the provider settings resolve to.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5-20251001": {InputPerMTok: 1, OutputPerMTok: 5},
	"claude-sonnet-4-20250514":  {InputPerMTok: 3, OutputPerMTok: 15},
	"gpt-4o":                    {InputPerMTok: 2.5, OutputPerMTok: 10},
	"gpt-4o-mini":               {InputPerMTok: 0.15, OutputPerMTok: 0.6},
	"gemini-2.0-flash":          {InputPerMTok: 0.1, OutputPerMTok: 0.4},
	"gemini-2.5-pro":            {InputPerMTok: 1.25, OutputPerMTok: 10},
	"gemini-2.0-flash-exp":      {},
}

// LookupCost prices a model as recorded in LLM events, or returns nil
// when it is unknown. It accepts friendly names ("claude-haiku"),
// OpenRouter IDs ("openai/gpt-4o-mini", ":free" variants) and Ollama
// tags ("qwen3:latest"), which are local.
func LookupCost(model string) *ModelCost {
	for _, m := range []map[string]string{anthropicModels, openaiModels, geminiModels} {
		model = resolveModel(model, m)
	}
	if c, ok := modelCosts[model]; ok {
		return &c
	}

	vendor, id, routed := strings.Cut(model, "/")
	if routed {
		if strings.HasSuffix(id, ":free") {
			return &ModelCost{}
		}
		if c, ok := modelCosts[id]; ok {
			return &c
		}
		return nil
	}

	if name, tag, ok := strings.Cut(vendor, ":"); ok && name != "" && tag != "" {
		return &ModelCost{Local: true}
	}
	return nil
}
