package export

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/notion"
)

// NotionExporter creates a lead page for each successful record whose
// website is not already in the database.
type NotionExporter struct {
	client notion.Client
	dbID   string
}

// NewNotion creates a NotionExporter for the lead database dbID.
func NewNotion(client notion.Client, dbID string) *NotionExporter {
	return &NotionExporter{client: client, dbID: dbID}
}

func (e *NotionExporter) Name() string { return "notion" }

func (e *NotionExporter) Export(ctx context.Context, records []model.CompanyRecord) error {
	var (
		errs             []error
		created, skipped int
	)
	for _, rec := range model.FilterSuccessful(records) {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		existing, err := notion.FindLeadByWebsite(ctx, e.client, e.dbID, rec.Website)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if existing != "" {
			skipped++
			continue
		}
		if _, err := notion.CreateLead(ctx, e.client, e.dbID, notion.Lead{
			Name:       rec.Name,
			Website:    rec.Website,
			Category:   string(rec.Category),
			Email:      rec.ContactEmail,
			PainPoints: rec.PainPoints,
			Source:     rec.SourceURL,
		}); err != nil {
			errs = append(errs, err)
			continue
		}
		created++
	}

	zap.L().Info("notion: export complete",
		zap.Int("created", created),
		zap.Int("skipped_existing", skipped),
		zap.Int("errors", len(errs)),
	)
	return errors.Join(errs...)
}
