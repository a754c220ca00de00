package scrape

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/config"
	"github.com/sells-group/leadgen-cli/internal/extract"
)

const (
	maxBodyBytes = 2 << 20
	// minReadableChars is the shortest readability extract trusted over the
	// whole-body fallback.
	minReadableChars = 200
)

// LocalScraper fetches HTML directly, detects blocks and reduces the page
// to its main text. It makes no API calls.
type LocalScraper struct {
	client    *http.Client
	userAgent string
	maxChars  int
}

// NewLocalScraper creates a LocalScraper from scrape config.
func NewLocalScraper(cfg config.ScrapeConfig) *LocalScraper {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (compatible; leadgen/1.0)"
	}
	return &LocalScraper{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: ua,
		maxChars:  cfg.MaxTextChars,
	}
}

func (l *LocalScraper) Name() string { return "local_http" }

// Scrape fetches targetURL and returns its readable text and the contact
// emails found on it.
func (l *LocalScraper) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: create request")
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "local_http: fetch")
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: read body")
	}

	if block := DetectBlock(resp, body); block != BlockNone {
		return nil, eris.Errorf("local_http: blocked (%s)", block)
	}
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("local_http: status %d", resp.StatusCode)
	}
	if len(bytes.TrimSpace(body)) < 100 {
		return nil, eris.New("local_http: empty page")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "local_http: parse html")
	}

	// Emails usually sit in headers and footers, which readability drops.
	emails := harvestEmails(doc)

	title := strings.TrimSpace(doc.Find("title").First().Text())
	text := readableText(body, resp.Request.URL)
	if len(text) < minReadableChars {
		text = documentText(doc)
	}

	return &Page{
		URL:        targetURL,
		Title:      title,
		Text:       truncate(text, l.maxChars),
		Emails:     emails,
		StatusCode: resp.StatusCode,
		Source:     l.Name(),
	}, nil
}

// readableText returns the main article text, or "" when readability
// cannot find one.
func readableText(body []byte, pageURL *url.URL) string {
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), pageURL)
	if err != nil {
		return ""
	}
	return collapseSpace(article.TextContent)
}

// documentText strips non-content elements and returns the body text.
func documentText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, nav, footer, svg, iframe").Remove()
	return collapseSpace(body.Text())
}

// harvestEmails collects mailto: targets and addresses in the page text,
// first occurrence first.
func harvestEmails(doc *goquery.Document) []string {
	var candidates []string
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		candidates = append(candidates, addr)
	})
	candidates = append(candidates, doc.Find("body").Text())
	return extract.FindEmails(strings.Join(candidates, "\n"))
}

func collapseSpace(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

// truncate caps s at max runes. max <= 0 disables the cap.
func truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
