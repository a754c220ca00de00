// Package extract derives typed records from free-form generated text:
// URL lists, company name/website pairs, and email + pain-point analyses.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// assetExtensions are URL suffixes that never point at a readable page.
var assetExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".css", ".js", ".svg", ".webp", ".pdf",
}

var urlRe = regexp.MustCompile(`https?://[^\s'"\]\[<>]+`)

// urlTrimChars are stripped from both ends of regex-matched URLs.
const urlTrimChars = `.,)("`

// TextExtractor parses generated text into URL and company lists.
// It is safe for concurrent use.
type TextExtractor struct {
	validate *validator.Validate
}

// NewTextExtractor creates a TextExtractor.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{validate: validator.New()}
}

// ExtractURLs returns the page URLs found in text. A strict list parse is
// preferred; when it fails or yields nothing valid, the raw text is scanned
// for http(s) substrings. Never returns an error: unparseable text yields an
// empty slice.
func (e *TextExtractor) ExtractURLs(text string) (urls []string) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("extract: url extraction panicked", zap.Any("panic", r))
			urls = nil
		}
	}()

	if strings.TrimSpace(text) == "" {
		zap.L().Warn("extract: url extraction received empty text")
		return nil
	}

	cleaned := cleanListText(text)
	items, err := decodeList(cleaned)
	if err == nil {
		var strict []string
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				continue
			}
			strict = append(strict, strings.TrimSpace(s))
		}
		strict = filterURLs(strict)
		if len(strict) > 0 {
			zap.L().Info("extract: parsed url list", zap.String("method", "strict"), zap.Int("urls", len(strict)))
			return strict
		}
		zap.L().Debug("extract: strict url list had no valid entries")
	} else {
		zap.L().Info("extract: strict url parse failed, scanning text", zap.Error(err))
	}

	matches := urlRe.FindAllString(text, -1)
	for i, m := range matches {
		matches[i] = strings.Trim(m, urlTrimChars)
	}
	found := filterURLs(matches)
	zap.L().Info("extract: parsed url list", zap.String("method", "scan"), zap.Int("urls", len(found)))
	return found
}

// ExtractCompanies returns the name/website pairs in text. Only the strict
// list-of-mappings parse is attempted; free text is too loose for a safe
// pattern fallback. Entries failing validation are dropped whole.
func (e *TextExtractor) ExtractCompanies(text string) (companies []model.CompanyCandidate) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("extract: company extraction panicked", zap.Any("panic", r))
			companies = nil
		}
	}()

	if strings.TrimSpace(text) == "" {
		zap.L().Warn("extract: company extraction received empty text")
		return nil
	}

	items, err := decodeList(cleanListText(text))
	if err != nil {
		zap.L().Info("extract: could not parse company list", zap.Error(err))
		return nil
	}

	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name, nameOK := fields["name"].(string)
		website, siteOK := fields["website"].(string)
		if !nameOK || !siteOK {
			continue
		}
		c := model.CompanyCandidate{
			Name:    strings.TrimSpace(name),
			Website: strings.TrimSpace(website),
		}
		if err := e.validate.Struct(c); err != nil {
			zap.L().Debug("extract: dropping invalid company",
				zap.String("name", c.Name),
				zap.String("website", c.Website),
				zap.Error(err),
			)
			continue
		}
		companies = append(companies, c)
	}

	if len(companies) == 0 {
		zap.L().Info("extract: company list had no valid entries", zap.Int("items", len(items)))
		return nil
	}
	zap.L().Info("extract: parsed company list", zap.Int("companies", len(companies)))
	return companies
}

// decodeList parses text as a single flow-style list literal. Both JSON
// arrays and single-quoted literal lists are accepted. Only quoted scalars
// decode as strings: bare words such as None or True never pass for a name
// or website.
func decodeList(text string) ([]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(normalizeEscapes(text)), &doc); err != nil {
		return nil, eris.Wrap(err, "extract: decode list")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, eris.New("extract: empty document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.SequenceNode {
		return nil, eris.Errorf("extract: expected a list, got %s", root.Tag)
	}
	return literalValue(root).([]any), nil
}

// bareWord is an unquoted scalar that is not a number or a constant.
type bareWord string

func literalValue(n *yaml.Node) any {
	switch n.Kind {
	case yaml.SequenceNode:
		out := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			out = append(out, literalValue(c))
		}
		return out
	case yaml.MappingNode:
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			m[n.Content[i].Value] = literalValue(n.Content[i+1])
		}
		return m
	case yaml.ScalarNode:
		if n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
			return n.Value
		}
		return plainScalar(n.Value)
	}
	return nil
}

func plainScalar(v string) any {
	switch v {
	case "None", "null", "~", "":
		return nil
	case "True", "true":
		return true
	case "False", "false":
		return false
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return bareWord(v)
}

// normalizeEscapes rewrites backslash escapes of literal-list strings into
// forms YAML accepts: inside single quotes \' becomes '' and \\ becomes a
// single backslash; inside double quotes \' becomes a bare apostrophe.
func normalizeEscapes(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	var quote byte
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case quote == 0:
			if ch == '\'' || ch == '"' {
				quote = ch
			}
			b.WriteByte(ch)
		case ch == '\\' && i+1 < len(text):
			next := text[i+1]
			i++
			switch {
			case quote == '\'' && next == '\'':
				b.WriteString("''")
			case quote == '\'' && (next == '\\' || next == '"'):
				b.WriteByte(next)
			case quote == '"' && next == '\'':
				b.WriteByte('\'')
			default:
				b.WriteByte(ch)
				b.WriteByte(next)
			}
		case ch == quote:
			quote = 0
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// filterURLs keeps absolute http(s) URLs that are not static assets,
// deduplicated in first-seen order.
func filterURLs(candidates []string) []string {
	seen := make(map[string]bool, len(candidates))
	var out []string
	for _, u := range candidates {
		if !isPageURL(u) || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func isPageURL(u string) bool {
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	for _, ext := range assetExtensions {
		if strings.HasSuffix(lower, ext) {
			return false
		}
	}
	return true
}

// cleanListText removes a leading "final answer" label and code fences.
func cleanListText(text string) string {
	text = StripFinalAnswer(text)
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Drop a language tag such as ```python or ```json.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			tag := strings.TrimSpace(text[:idx])
			if len(tag) < 20 && !strings.ContainsAny(tag, " [{") {
				text = text[idx+1:]
			}
		}
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// StripFinalAnswer removes a leading "Final Answer:" label, case-insensitively.
func StripFinalAnswer(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(strings.ToUpper(trimmed), "FINAL ANSWER:") {
		return strings.TrimSpace(trimmed[len("FINAL ANSWER:"):])
	}
	return text
}
