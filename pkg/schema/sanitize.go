package schema

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy
)

// SanitizeText strips any markup from author-supplied display text (schema
// names, labels, options) and trims surrounding whitespace.
func SanitizeText(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	cleaned := textSanitizer().Sanitize(trimmed)
	return strings.TrimSpace(html.UnescapeString(cleaned))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		textPolicy = bluemonday.StrictPolicy()
	})
	return textPolicy
}

// Sanitized returns a copy of the schema with display text stripped of
// markup. Ids, formulas and values are left untouched.
func (s FormSchema) Sanitized() FormSchema {
	out := s.Clone()
	out.Name = SanitizeText(out.Name)
	for i := range out.Fields {
		f := &out.Fields[i]
		f.Label = SanitizeText(f.Label)
		if len(f.Options) == 0 {
			continue
		}
		options := f.Options[:0]
		for _, opt := range f.Options {
			if cleaned := SanitizeText(opt); cleaned != "" {
				options = append(options, cleaned)
			}
		}
		f.Options = options
	}
	return out
}
