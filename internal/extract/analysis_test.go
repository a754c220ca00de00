package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		email string
		pain  string
	}{
		{
			name:  "email then labeled section",
			text:  "Email: info@acme-hr.com\nPain Points: scaling support staff",
			email: "info@acme-hr.com",
			pain:  "scaling support staff",
		},
		{
			name:  "section terminated by contact label",
			text:  "Challenges:\n- slow onboarding\n- manual payroll\nContact: ops@beacon.io",
			email: "ops@beacon.io",
			pain:  "slow onboarding\nmanual payroll",
		},
		{
			name:  "final answer label and bullets",
			text:  "Final Answer: Pain Points:\n* legacy tooling\n* churn\nConclusion: reach out",
			email: "",
			pain:  "legacy tooling\nchurn",
		},
		{
			name:  "no label, text after email",
			text:  "Reach them at sales@north.co - they struggle with lead routing across regions",
			email: "sales@north.co",
			pain:  "they struggle with lead routing across regions",
		},
		{
			name:  "no label, no email",
			text:  "  Hiring managers cannot keep up with applicant volume.  ",
			email: "",
			pain:  "Hiring managers cannot keep up with applicant volume.",
		},
		{
			name:  "email only yields sentinel",
			text:  "info@acme-hr.com",
			email: "info@acme-hr.com",
			pain:  model.NoPainPoints,
		},
		{
			name:  "empty text yields sentinel",
			text:  "",
			email: "",
			pain:  model.NoPainPoints,
		},
		{
			name:  "placeholder emails rejected",
			text:  "Email: john@example.com, qa@test.io, bugs@sentry.io\nPain Points: none found yet really",
			email: "",
			pain:  "none found yet really",
		},
		{
			name:  "first valid email wins",
			text:  "Contacts: noreply@yourdomain.com, hello@acme.com, team@acme.com\nIssues: cash flow",
			email: "hello@acme.com",
			pain:  "cash flow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAnalysis(tt.text)
			assert.Equal(t, tt.email, got.Email)
			assert.Equal(t, tt.pain, got.PainPoints)
		})
	}
}

func TestParseAnalysis_ResidualAfterEmailLabel(t *testing.T) {
	// The labeled section is empty, so the residual text wins over the sentinel.
	got := ParseAnalysis("Pain Points:\nEmail: hi@acme.com")
	assert.Equal(t, "hi@acme.com", got.Email)
	assert.Equal(t, "Pain Points:\nEmail:", got.PainPoints)
}

func TestParseAnalysis_Idempotent(t *testing.T) {
	text := "Email: info@acme-hr.com\nPain Points: scaling support staff"
	assert.Equal(t, ParseAnalysis(text), ParseAnalysis(text))
}

func TestFindEmails(t *testing.T) {
	text := "a@b.com, A@B.COM, a@b.com, err@error.net, x@nodot, c@d.org"
	assert.Equal(t, []string{"a@b.com", "A@B.COM", "c@d.org"}, FindEmails(text))
	assert.Empty(t, FindEmails("nothing here"))
}
