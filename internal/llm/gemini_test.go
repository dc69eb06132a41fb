package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "gm-test", Model: "gemini-flash", BaseURL: server.URL})
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func geminiReply(text, finish string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{{
			"content":      map[string]any{"role": "model", "parts": []map[string]any{{"text": text}}},
			"finishReason": finish,
		}},
		"usageMetadata": map[string]any{"promptTokenCount": 380, "candidatesTokenCount": 150, "totalTokenCount": 530},
	}
}

func TestGeminiProvider_GeneratesProblem(t *testing.T) {
	var path string
	var body map[string]any
	p := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiReply(problemReply, "STOP"))
	})

	resp, err := p.Generate(context.Background(), problemRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != problemReply || resp.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Usage.InputTokens != 380 || resp.Usage.OutputTokens != 150 || resp.StopReason != StopEnd {
		t.Fatalf("usage = %+v, stop = %q", resp.Usage, resp.StopReason)
	}

	if !strings.HasSuffix(path, "/models/gemini-2.0-flash:generateContent") {
		t.Errorf("path = %s", path)
	}
	raw, _ := json.Marshal(body)
	for _, want := range []string{"chemistry-math course", "Topic: bond_angles", "propertyOrdering", "application/json"} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("request missing %q: %s", want, raw)
		}
	}
}

func TestGeminiProvider_RateLimit(t *testing.T) {
	p := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	})

	_, err := p.Generate(context.Background(), gradeRequest())
	var rl *ErrRateLimit
	if !errors.As(err, &rl) || rl.Provider != "gemini" {
		t.Fatalf("expected gemini ErrRateLimit, got %T (%v)", err, err)
	}
}

func TestGeminiProvider_BadKeyIsRefused(t *testing.T) {
	p := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	})

	_, err := p.Generate(context.Background(), gradeRequest())
	if Reason(err) != ReasonRefused {
		t.Fatalf("Reason = %q (%v)", Reason(err), err)
	}
}

func TestGeminiProvider_TruncatedGrade(t *testing.T) {
	p := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(geminiReply(`{"correct": false, "feedback": "Oxygen has`, "MAX_TOKENS"))
	})

	_, err := p.Generate(context.Background(), gradeRequest())
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %T (%v)", err, err)
	}
}

func TestGeminiSchema_ChemGrade(t *testing.T) {
	s := geminiSchema(gradeSchema().Definition)

	if s.Type != genai.TypeObject {
		t.Fatalf("type = %s", s.Type)
	}
	if s.Properties["correct"].Type != genai.TypeBoolean || s.Properties["hint"].Type != genai.TypeString {
		t.Fatalf("properties = %+v", s.Properties)
	}
	want := []string{"correct", "feedback", "worked_example", "hint"}
	if !slices.Equal(s.Required, want) || !slices.Equal(s.PropertyOrdering, want) {
		t.Fatalf("required = %v, ordering = %v", s.Required, s.PropertyOrdering)
	}
}

func TestGeminiSchema_NestedAndEnum(t *testing.T) {
	s := geminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"primitive": map[string]any{"type": "string", "enum": []any{"DIRECTION", "RATE"}},
			"hints": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string", "description": "One hint"},
			},
			"difficulty": map[string]any{"type": "integer"},
		},
	})

	if !slices.Equal(s.Properties["primitive"].Enum, []string{"DIRECTION", "RATE"}) {
		t.Errorf("enum = %v", s.Properties["primitive"].Enum)
	}
	if items := s.Properties["hints"].Items; items == nil || items.Type != genai.TypeString || items.Description != "One hint" {
		t.Errorf("items = %+v", items)
	}
	if s.Properties["difficulty"].Type != genai.TypeInteger {
		t.Errorf("difficulty type = %s", s.Properties["difficulty"].Type)
	}
	if len(s.PropertyOrdering) != 0 {
		t.Errorf("ordering without required = %v", s.PropertyOrdering)
	}
}

func TestNewGeminiProvider(t *testing.T) {
	if _, err := NewGeminiProvider(context.Background(), GeminiConfig{Model: "gemini-flash"}); err == nil {
		t.Fatal("expected error without API key")
	}
	p, err := NewGeminiProvider(context.Background(), GeminiConfig{APIKey: "gm-test", Model: "gemini-pro"})
	if err != nil {
		t.Fatal(err)
	}
	if p.ModelID() != "gemini-2.5-pro" {
		t.Fatalf("model = %q", p.ModelID())
	}
}
