package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model     string
		wantUSD   float64 // for 1M input + 1M output tokens
		wantLocal bool
		unknown   bool
	}{
		{model: "claude-haiku-4-5-20251001", wantUSD: 6},
		{model: "claude-haiku", wantUSD: 6},
		{model: "claude-sonnet", wantUSD: 18},
		{model: "gpt-4o-mini", wantUSD: 0.75},
		{model: "gemini-flash", wantUSD: 0.5},
		{model: "gemini-2.5-pro", wantUSD: 11.25},
		{model: "openai/gpt-4o-mini", wantUSD: 0.75},
		{model: "meta-llama/llama-3.3-70b-instruct:free", wantUSD: 0},
		{model: "google/gemini-2.0-flash-exp", wantUSD: 0},
		{model: "qwen3:latest", wantLocal: true},
		{model: "llama3.1:8b", wantLocal: true},
		{model: "mock", unknown: true},
		{model: "mistralai/mistral-large", unknown: true},
		{model: ":latest", unknown: true},
	}
	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			c := LookupCost(tt.model)
			if tt.unknown {
				if c != nil {
					t.Fatalf("expected no price, got %+v", c)
				}
				return
			}
			if c == nil {
				t.Fatal("expected a price")
			}
			if c.Local != tt.wantLocal {
				t.Errorf("Local = %v", c.Local)
			}
			if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-tt.wantUSD) > 1e-9 {
				t.Errorf("Cost = %v, want %v", got, tt.wantUSD)
			}
		})
	}
}
