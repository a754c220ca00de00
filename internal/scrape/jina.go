package scrape

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/extract"
	"github.com/sells-group/leadgen-cli/internal/resilience"
	"github.com/sells-group/leadgen-cli/pkg/jina"
)

// JinaScraper reads pages through the Jina Reader API. A circuit breaker
// skips Jina quickly while it keeps failing so the chain falls through.
type JinaScraper struct {
	client   jina.Client
	breaker  *resilience.CircuitBreaker
	maxChars int
}

// NewJinaScraper wraps a Jina client. Three consecutive failures open the
// breaker for a minute.
func NewJinaScraper(client jina.Client, maxChars int) *JinaScraper {
	return &JinaScraper{
		client:   client,
		breaker:  resilience.NewCircuitBreaker("jina", 3, time.Minute),
		maxChars: maxChars,
	}
}

func (j *JinaScraper) Name() string { return "jina" }

// Scrape fetches targetURL via Jina Reader and rejects empty or challenge
// pages.
func (j *JinaScraper) Scrape(ctx context.Context, targetURL string) (*Page, error) {
	resp, err := resilience.Guard(ctx, j.breaker, func(ctx context.Context) (*jina.ReadResponse, error) {
		resp, err := j.client.Read(ctx, targetURL)
		if err != nil {
			return nil, err
		}
		if reason := unusable(resp); reason != "" {
			return nil, eris.Errorf("jina: %s", reason)
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	content := resp.Data.Content
	pageURL := resp.Data.URL
	if pageURL == "" {
		pageURL = targetURL
	}
	return &Page{
		URL:        pageURL,
		Title:      resp.Data.Title,
		Text:       truncate(content, j.maxChars),
		Emails:     extract.FindEmails(content),
		StatusCode: resp.Code,
		Source:     j.Name(),
	}, nil
}

var challengeSignatures = []string{
	"checking your browser",
	"enable javascript",
	"please enable cookies",
	"access denied",
	"403 forbidden",
	"just a moment",
	"cloudflare",
	"attention required",
}

// unusable explains why a Jina response carries no page content, or
// returns "".
func unusable(resp *jina.ReadResponse) string {
	if resp == nil {
		return "empty response"
	}
	if resp.Code != 0 && resp.Code != 200 {
		return "upstream status " + strconv.Itoa(resp.Code) + " " + http.StatusText(resp.Code)
	}

	content := strings.TrimSpace(resp.Data.Content)
	if len(content) < 100 {
		return "content too short"
	}
	if len(content) < 1000 {
		lower := strings.ToLower(content)
		for _, sig := range challengeSignatures {
			if strings.Contains(lower, sig) {
				return "challenge page (" + sig + ")"
			}
		}
	}
	return ""
}
