package pipeline

import (
	"strings"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

// keywordRule assigns category when any keyword occurs in the source.
type keywordRule struct {
	category model.Category
	keywords []string
}

// Classifier tags candidates by the source they were extracted from. It
// looks only at the source identifier, so the same source always yields the
// same category.
type Classifier struct {
	rules    []keywordRule
	fallback model.Category
}

// NewClassifier builds a Classifier from the configured categories, checked
// in declaration order. Sources matching no keyword get defaultCategory.
func NewClassifier(categories []config.CategoryConfig, defaultCategory string) *Classifier {
	c := &Classifier{fallback: model.Category(defaultCategory)}
	for _, cat := range categories {
		if len(cat.SourceKeywords) == 0 {
			continue
		}
		rule := keywordRule{category: model.Category(cat.Name)}
		for _, kw := range cat.SourceKeywords {
			if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
				rule.keywords = append(rule.keywords, kw)
			}
		}
		c.rules = append(c.rules, rule)
	}
	return c
}

// Classify returns the category for a candidate found at source. The
// candidate itself is not consulted.
func (c *Classifier) Classify(_ model.CompanyCandidate, source string) model.Category {
	src := strings.ToLower(source)
	for _, rule := range c.rules {
		for _, kw := range rule.keywords {
			if strings.Contains(src, kw) {
				return rule.category
			}
		}
	}
	return c.fallback
}
