package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/model"
)

func defaultClassifier() *Classifier {
	return NewClassifier(config.DefaultCategories(), string(model.CategoryNEB2B))
}

func TestClassifier_Classify(t *testing.T) {
	c := defaultClassifier()
	cand := model.CompanyCandidate{Name: "Acme", Website: "https://acme.com"}

	tests := []struct {
		source string
		want   model.Category
	}{
		{"https://hr-insights.com/vendors", model.CategoryHR},
		{"hr-directory.com/list", model.CategoryHR},
		{"https://www.PAYROLL-partners.io/members", model.CategoryHR},
		{"https://newengland-biz.org", model.CategoryNEB2B},
		{"https://bostonchamber.com/directory", model.CategoryNEB2B},
		{"", model.CategoryNEB2B},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(cand, tt.source))
		})
	}
}

func TestClassifier_DependsOnlyOnSource(t *testing.T) {
	c := defaultClassifier()
	src := "https://hr-insights.com"

	a := c.Classify(model.CompanyCandidate{Name: "Acme", Website: "https://acme.com"}, src)
	b := c.Classify(model.CompanyCandidate{Name: "Payroll Pros", Website: "https://payroll.com"}, src)
	assert.Equal(t, a, b)
	assert.Equal(t, a, c.Classify(model.CompanyCandidate{}, src))

	generic := c.Classify(model.CompanyCandidate{Name: "HR Experts", Website: "https://hr-experts.com"}, "https://newengland-biz.org")
	assert.Equal(t, model.CategoryNEB2B, generic, "candidate fields are ignored")
}

func TestClassifier_DeclarationOrder(t *testing.T) {
	c := NewClassifier([]config.CategoryConfig{
		{Name: "FIRST", SourceKeywords: []string{"shared"}},
		{Name: "SECOND", SourceKeywords: []string{"shared", " Other "}},
		{Name: "FALLBACK"},
	}, "FALLBACK")

	assert.Equal(t, model.Category("FIRST"), c.Classify(model.CompanyCandidate{}, "https://shared.org"))
	assert.Equal(t, model.Category("SECOND"), c.Classify(model.CompanyCandidate{}, "https://OTHER.org"))
	assert.Equal(t, model.Category("FALLBACK"), c.Classify(model.CompanyCandidate{}, "https://none.org"))
}
