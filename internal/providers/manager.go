package providers

import (
	"fmt"
	"strings"

	"docqa/internal/config"
)

// Manager resolves the configured embedding and completion providers once at
// startup. There is exactly one of each; provider failures propagate to the
// caller instead of failing over.
type Manager struct {
	embedRef ProviderRef
	llmRef   ProviderRef
	embedder Embedder
	answerer Answerer
}

func NewManager(cfg config.Config) (*Manager, error) {
	m := &Manager{
		embedRef: ParseProviderRef(cfg.EmbedProvider),
		llmRef:   ParseProviderRef(cfg.LLMProvider),
	}

	switch strings.ToLower(m.embedRef.Name) {
	case "mock":
		m.embedder = NewMockProvider(cfg.EmbedDim)
	case "openai":
		m.embedder = NewOpenAIProvider(m.embedRef.KeyAlias)
	case "ollama":
		m.embedder = NewOllamaEmbeddingProvider(m.embedRef.KeyAlias, cfg.EmbedDim)
	default:
		return nil, fmt.Errorf("provider %s does not support embeddings", m.embedRef.Raw)
	}

	switch strings.ToLower(m.llmRef.Name) {
	case "mock":
		m.answerer = NewMockProvider(cfg.EmbedDim)
	case "openai":
		m.answerer = NewOpenAIProvider(m.llmRef.KeyAlias)
	case "groq":
		m.answerer = NewGroqProvider(m.llmRef.KeyAlias)
	default:
		return nil, fmt.Errorf("provider %s does not support completions", m.llmRef.Raw)
	}
	return m, nil
}

func (m *Manager) Embedder() Embedder { return m.embedder }
func (m *Manager) Answerer() Answerer { return m.answerer }

// Refs reports the raw provider selectors for startup logging.
func (m *Manager) Refs() (embed, llm string) {
	return m.embedRef.Raw, m.llmRef.Raw
}
