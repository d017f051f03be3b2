package providers

import "strings"

// ProviderRef is a parsed provider selector: a bare name ("openai") or a
// name with a key alias or model hint ("openai:research", "ollama:nomic").
type ProviderRef struct {
	Raw      string
	Name     string
	KeyAlias string
}

func ParseProviderRef(raw string) ProviderRef {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ProviderRef{Raw: "mock", Name: "mock"}
	}
	ref := ProviderRef{Raw: raw}
	if strings.Contains(raw, ":") {
		x := strings.SplitN(raw, ":", 2)
		ref.Name = strings.TrimSpace(x[0])
		ref.KeyAlias = strings.TrimSpace(x[1])
	} else {
		ref.Name = raw
	}
	return ref
}
