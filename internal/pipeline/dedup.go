package pipeline

import (
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"github.com/sells-group/leadgen-cli/internal/model"
)

// NormalizeKey reduces a website to its dedup identity: lower-cased, without
// scheme, without a leading "www." and without one trailing slash. It is
// never shown to users.
func NormalizeKey(website string) string {
	key := strings.ToLower(strings.TrimSpace(website))
	for _, scheme := range []string{"https://", "http://"} {
		if strings.HasPrefix(key, scheme) {
			key = key[len(scheme):]
			break
		}
	}
	key = strings.TrimPrefix(key, "www.")
	return strings.TrimSuffix(key, "/")
}

// Deduplicator admits each website once per run and drops placeholder
// company names. It is safe for concurrent use.
type Deduplicator struct {
	fold    cases.Caser
	generic map[string]bool

	mu   sync.Mutex
	seen map[string]struct{}
}

// NewDeduplicator creates a Deduplicator with an empty seen-set.
func NewDeduplicator(genericNames []string) *Deduplicator {
	d := &Deduplicator{
		fold:    cases.Fold(),
		generic: make(map[string]bool, len(genericNames)),
		seen:    make(map[string]struct{}),
	}
	for _, n := range genericNames {
		d.generic[d.fold.String(strings.TrimSpace(n))] = true
	}
	return d
}

// Admit reports whether c is new to this run. Duplicates and generic names
// are rejected; only admitted keys are remembered.
func (d *Deduplicator) Admit(c model.CompanyCandidate) bool {
	key := NormalizeKey(c.Website)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, dup := d.seen[key]; dup {
		return false
	}
	if d.generic[d.fold.String(strings.TrimSpace(c.Name))] {
		return false
	}
	d.seen[key] = struct{}{}
	return true
}

// Seen returns the number of admitted keys.
func (d *Deduplicator) Seen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
