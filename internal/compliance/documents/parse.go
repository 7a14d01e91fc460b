package documents

import (
	"encoding/json"
	"strings"

	"github.com/gartstein/isocompliance/internal/compliance/models"
)

// ParseResult is the outcome of extracting drafts from generated text.
// Exactly one of Drafts (non-empty) or Reason is set.
type ParseResult struct {
	Drafts []models.DocumentDraft
	Reason string
}

// Parsed reports whether usable drafts were found.
func (p ParseResult) Parsed() bool {
	return len(p.Drafts) > 0
}

func unparseable(reason string) ParseResult {
	return ParseResult{Reason: reason}
}

// ParseDrafts pulls a JSON array of {type, content} objects out of free text.
// The array spans from the first '[' to the last ']', so surrounding prose or
// markdown fences are ignored. Entries missing a type or content are dropped.
func ParseDrafts(text string) ParseResult {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start == -1 || end == -1 || end < start {
		return unparseable("no JSON array in response")
	}

	var raw []models.DocumentDraft
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return unparseable("invalid JSON: " + err.Error())
	}

	drafts := make([]models.DocumentDraft, 0, len(raw))
	for _, d := range raw {
		d.Type = strings.TrimSpace(d.Type)
		if d.Type == "" || strings.TrimSpace(d.Content) == "" {
			continue
		}
		drafts = append(drafts, d)
	}
	if len(drafts) == 0 {
		return unparseable("no usable documents in array")
	}
	return ParseResult{Drafts: drafts}
}
