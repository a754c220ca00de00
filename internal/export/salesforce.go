package export

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/leadgen-cli/internal/model"
	"github.com/sells-group/leadgen-cli/pkg/salesforce"
)

// SalesforceExporter inserts successful records as Salesforce Leads,
// skipping websites that already have a Lead.
type SalesforceExporter struct {
	client     salesforce.Client
	leadSource string
}

// NewSalesforce creates a SalesforceExporter tagging leads with leadSource.
func NewSalesforce(client salesforce.Client, leadSource string) *SalesforceExporter {
	return &SalesforceExporter{client: client, leadSource: leadSource}
}

func (e *SalesforceExporter) Name() string { return "salesforce" }

func (e *SalesforceExporter) Export(ctx context.Context, records []model.CompanyRecord) error {
	var (
		fields  []map[string]any
		names   []string
		skipped int
	)
	for _, rec := range model.FilterSuccessful(records) {
		existing, err := salesforce.FindLeadByWebsite(ctx, e.client, rec.Website)
		if err != nil {
			return eris.Wrap(err, "salesforce: duplicate check")
		}
		if existing != nil {
			skipped++
			continue
		}
		fields = append(fields, salesforce.LeadInput{
			Company:     rec.Name,
			Website:     rec.Website,
			Email:       rec.ContactEmail,
			Description: rec.PainPoints,
			Industry:    string(rec.Category),
		}.Fields(e.leadSource))
		names = append(names, rec.Name)
	}

	results, err := salesforce.InsertLeads(ctx, e.client, fields)
	if err != nil {
		return err
	}

	var failed []string
	for i, r := range results {
		if !r.Success {
			failed = append(failed, names[i]+": "+strings.Join(r.Errors, "; "))
		}
	}
	zap.L().Info("salesforce: export complete",
		zap.Int("inserted", len(results)-len(failed)),
		zap.Int("skipped_existing", skipped),
		zap.Int("failed", len(failed)),
	)
	if len(failed) > 0 {
		return eris.Errorf("salesforce: %d leads rejected: %s", len(failed), strings.Join(failed, ", "))
	}
	return nil
}
