package providers

import (
	"testing"

	"docqa/internal/config"
)

func TestNewManagerDefaultsToMock(t *testing.T) {
	m, err := NewManager(config.Config{EmbedDim: 8})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	embed, llm := m.Refs()
	if embed != "mock" || llm != "mock" {
		t.Fatalf("expected mock defaults, got %s / %s", embed, llm)
	}
	if m.Embedder() == nil || m.Answerer() == nil {
		t.Fatal("expected both providers to be built")
	}
}

func TestNewManagerRejectsEmbedIncapableProvider(t *testing.T) {
	_, err := NewManager(config.Config{EmbedProvider: "groq", LLMProvider: "mock"})
	if err == nil {
		t.Fatal("groq cannot embed; expected an error")
	}
}

func TestNewManagerRejectsCompletionIncapableProvider(t *testing.T) {
	_, err := NewManager(config.Config{EmbedProvider: "mock", LLMProvider: "ollama"})
	if err == nil {
		t.Fatal("ollama answerer is not supported; expected an error")
	}
}

func TestNewManagerOpenAIBothRoles(t *testing.T) {
	m, err := NewManager(config.Config{EmbedProvider: "openai", LLMProvider: "openai:research", EmbedDim: 1536})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	if m.Embedder() == nil || m.Answerer() == nil {
		t.Fatal("expected openai to serve both roles")
	}
}
