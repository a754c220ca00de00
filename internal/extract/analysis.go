package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,7}\b`)

	// painSectionRe captures the body of a labeled pain-points section up to
	// the next contact/conclusion label or end of text.
	painSectionRe = regexp.MustCompile(`(?is)(?:Pain Points?|Challenges?|Issues?|Analysis|Opportunities)(?:\s*:|\s*\n)(.*?)(?:Email:|Contact:|Conclusion:|\z)`)

	painLabelRe = regexp.MustCompile(`(?i)^(?:Pain Points?|Challenges?|Issues?|Analysis|Opportunities)(?:\s*:|\s*\n)`)
	bulletRe    = regexp.MustCompile(`(?m)^[\s*-]+`)
)

// placeholderTokens mark emails that are samples, errors or vendor noise.
var placeholderTokens = []string{
	"example.com", "test", "error", "yourdomain.com", "email@", "sentry.io",
}

// residualMinLen is the length above which leftover text is kept in place
// of the no-pain-points sentinel.
const residualMinLen = 10

// FindEmails returns the plausible contact emails in text, in order of
// appearance and without duplicates.
func FindEmails(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range emailRe.FindAllString(text, -1) {
		if !validEmail(m) || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 0 || !strings.Contains(email[at+1:], ".") {
		return false
	}
	lower := strings.ToLower(email)
	for _, tok := range placeholderTokens {
		if strings.Contains(lower, tok) {
			return false
		}
	}
	return true
}

// ParseAnalysis pulls the contact email and pain-points narrative out of an
// analysis or review response. It never fails: when no narrative can be
// found it returns the residual text or the NoPainPoints sentinel.
func ParseAnalysis(text string) model.AnalysisResult {
	text = StripFinalAnswer(text)

	var email string
	if emails := FindEmails(text); len(emails) > 0 {
		email = emails[0]
	}

	var painPoints string
	if m := painSectionRe.FindStringSubmatch(text); m != nil {
		painPoints = cleanBullets(m[1])
	} else if email != "" {
		after := text[strings.Index(text, email)+len(email):]
		after = painLabelRe.ReplaceAllString(strings.TrimSpace(after), "")
		painPoints = cleanBullets(after)
	} else {
		painPoints = strings.TrimSpace(text)
	}

	if email != "" && painPoints == email {
		painPoints = ""
	}

	if painPoints == "" {
		residual := strings.TrimSpace(text)
		if email != "" {
			residual = strings.TrimSpace(strings.ReplaceAll(text, email, ""))
		}
		if utf8.RuneCountInString(residual) > residualMinLen {
			painPoints = residual
		} else {
			painPoints = model.NoPainPoints
		}
		zap.L().Debug("extract: no labeled pain points, using fallback",
			zap.Bool("sentinel", painPoints == model.NoPainPoints),
		)
	}

	return model.AnalysisResult{Email: email, PainPoints: painPoints}
}

func cleanBullets(s string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(s, ""))
}
