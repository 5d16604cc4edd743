// internal/llm/normalize.go
package llm

import (
	"encoding/json"

	"github.com/kaptinlin/jsonrepair"
)

const (
	FallbackCommitSummary = "Failed to generate summary"
	FallbackDailySummary  = "Failed to generate daily summary"
)

// ExtractText pulls the plain-text answer out of a provider response. Shapes
// are tried in order: a "content" array whose first "text" block wins, a
// "content" string, a "text" string, then a bare string. Byte payloads are
// decoded as JSON first. Anything else yields fallback.
func ExtractText(raw RawResponse, fallback string) string {
	switch v := raw.(type) {
	case nil:
		return fallback
	case string:
		if v == "" {
			return fallback
		}
		return v
	case json.RawMessage:
		return extractFromJSON(v, fallback)
	case []byte:
		return extractFromJSON(v, fallback)
	case map[string]any:
		return extractFromObject(v, fallback)
	default:
		return fallback
	}
}

func extractFromObject(obj map[string]any, fallback string) string {
	if content, ok := obj["content"]; ok && content != nil {
		switch c := content.(type) {
		case []any:
			for _, block := range c {
				b, ok := block.(map[string]any)
				if !ok || b["type"] != "text" {
					continue
				}
				if text, ok := b["text"].(string); ok {
					return text
				}
				// Only the first text block is considered.
				break
			}
			return fallback
		case []map[string]any:
			for _, b := range c {
				if b["type"] != "text" {
					continue
				}
				if text, ok := b["text"].(string); ok {
					return text
				}
				break
			}
			return fallback
		case string:
			if c != "" {
				return c
			}
		}
	}

	if text, ok := obj["text"].(string); ok {
		return text
	}
	return fallback
}

func extractFromJSON(data []byte, fallback string) string {
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(data))
		if repairErr != nil {
			return fallback
		}
		if err := json.Unmarshal([]byte(repaired), &decoded); err != nil {
			return fallback
		}
	}

	switch v := decoded.(type) {
	case string:
		return ExtractText(v, fallback)
	case map[string]any:
		return extractFromObject(v, fallback)
	default:
		return fallback
	}
}
