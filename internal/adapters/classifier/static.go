package classifier

import (
	"context"
	"strings"

	"github.com/chironhq/chiron/internal/domain/model"
)

// defaultKeywordSubjects maps lowercase keywords to subjects for the static
// classifier. Intentionally coarse; the Gemini classifier is the production
// path and this table backs local development and tests.
var defaultKeywordSubjects = map[string]string{
	"algebra":     "Mathematics",
	"calculus":    "Mathematics",
	"math":        "Mathematics",
	"statistics":  "Statistics",
	"probability": "Statistics",
	"physics":     "Physics",
	"mechanics":   "Physics",
	"chemistry":   "Chemistry",
	"biology":     "Biology",
	"python":      "Programming",
	"golang":      "Programming",
	"programming": "Programming",
	"algorithm":   "Programming",
	"database":    "Databases",
	"sql":         "Databases",
	"network":     "Networking",
	"frontend":    "Web Development",
	"backend":     "Web Development",
	"javascript":  "Web Development",
	"design":      "Design",
	"marketing":   "Marketing",
	"finance":     "Finance",
	"accounting":  "Finance",
}

// Static is a deterministic keyword classifier. Each keyword hit adds one
// unit of weight to its subject; the result is normalized. Text with no
// keyword hits classifies as General.
type Static struct {
	keywords map[string]string
}

// NewStatic creates a static classifier. A nil table uses the default one.
func NewStatic(keywords map[string]string) *Static {
	if keywords == nil {
		keywords = defaultKeywordSubjects
	}
	return &Static{keywords: keywords}
}

// Classify scans the text for known keywords.
func (s *Static) Classify(_ context.Context, text string) ([]model.SubjectWeight, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	hits := make(map[string]float64)
	for _, word := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if subject, ok := s.keywords[word]; ok {
			hits[subject]++
		}
	}
	if len(hits) == 0 {
		return GeneralBreakdown(), nil
	}
	return Normalize(fromMap(hits)), nil
}
