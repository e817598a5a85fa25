package vector

import (
	"fmt"
	"reflect"
	"strings"

	json "github.com/goccy/go-json"
)

// Filter restricts the candidate set of Search before scoring.
type Filter struct {
	// Metadata must be contained in the document metadata JSON: every key is
	// present with an equal value, nested objects and arrays are matched by
	// containment.
	Metadata map[string]any

	// Text is matched as a case-insensitive substring of Document.Content.
	Text string
}

// IsZero reports whether the filter accepts every document.
func (f Filter) IsZero() bool {
	return len(f.Metadata) == 0 && strings.TrimSpace(f.Text) == ""
}

type matcher struct {
	meta map[string]any
	text string
}

func (f Filter) matcher() (*matcher, error) {
	m := &matcher{text: strings.ToLower(strings.TrimSpace(f.Text))}
	if len(f.Metadata) == 0 {
		return m, nil
	}
	// round-trip through JSON so filter values compare like decoded metadata
	data, err := json.Marshal(f.Metadata)
	if err != nil {
		return nil, fmt.Errorf("vector: metadata filter: %w", err)
	}
	if err := json.Unmarshal(data, &m.meta); err != nil {
		return nil, fmt.Errorf("vector: metadata filter: %w", err)
	}
	return m, nil
}

func (m *matcher) match(d *Document) bool {
	if m.text != "" && !strings.Contains(strings.ToLower(d.Content), m.text) {
		return false
	}
	if len(m.meta) == 0 {
		return true
	}
	if d.Metadata == "" {
		return false
	}
	var meta any
	if err := json.Unmarshal([]byte(d.Metadata), &meta); err != nil {
		return false
	}
	return contains(meta, m.meta)
}

func contains(have, want any) bool {
	switch w := want.(type) {
	case map[string]any:
		h, ok := have.(map[string]any)
		if !ok {
			return false
		}
		for k, v := range w {
			hv, ok := h[k]
			if !ok || !contains(hv, v) {
				return false
			}
		}
		return true
	case []any:
		h, ok := have.([]any)
		if !ok {
			return false
		}
		for _, v := range w {
			found := false
			for _, hv := range h {
				if contains(hv, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(have, want)
	}
}
