package salesforce

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// maxBatchSize is the Salesforce Collections API limit per request.
const maxBatchSize = 200

// unknownLastName fills the required Lead.LastName for company-level leads.
const unknownLastName = "Unknown"

// Lead is a Salesforce Lead record as queried back for duplicate checks.
type Lead struct {
	ID      string `json:"Id" salesforce:"Id"`
	Company string `json:"Company" salesforce:"Company"`
	Website string `json:"Website" salesforce:"Website"`
	Email   string `json:"Email" salesforce:"Email"`
}

// LeadInput is a qualified prospect to insert.
type LeadInput struct {
	Company     string
	Website     string
	Email       string
	Description string
	Industry    string
}

// Fields converts the input into Lead SObject fields.
func (l LeadInput) Fields(leadSource string) map[string]any {
	fields := map[string]any{
		"Company":     l.Company,
		"LastName":    unknownLastName,
		"Website":     l.Website,
		"Description": l.Description,
		"Status":      "Open - Not Contacted",
	}
	if l.Email != "" {
		fields["Email"] = l.Email
	}
	if l.Industry != "" {
		fields["Industry"] = l.Industry
	}
	if leadSource != "" {
		fields["LeadSource"] = leadSource
	}
	return fields
}

// FindLeadByWebsite returns the first Lead whose Website matches, or nil.
func FindLeadByWebsite(ctx context.Context, c Client, website string) (*Lead, error) {
	soql := fmt.Sprintf(
		"SELECT Id, Company, Website, Email FROM Lead WHERE Website = '%s' LIMIT 1",
		escapeSoql(website),
	)

	var leads []Lead
	if err := c.Query(ctx, soql, &leads); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find lead by website %s", website))
	}
	if len(leads) == 0 {
		return nil, nil
	}
	return &leads[0], nil
}

// InsertLeads splits records into batches of 200 and inserts them as Leads.
// Results from completed batches are returned alongside any error.
func InsertLeads(ctx context.Context, c Client, records []map[string]any) ([]CollectionResult, error) {
	var all []CollectionResult
	for start := 0; start < len(records); start += maxBatchSize {
		end := min(start+maxBatchSize, len(records))
		results, err := c.InsertCollection(ctx, "Lead", records[start:end])
		if err != nil {
			return all, eris.Wrap(err, fmt.Sprintf("sf: insert leads batch %d-%d", start, end))
		}
		all = append(all, results...)
	}
	return all, nil
}

// escapeSoql escapes single quotes in SOQL string literals.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
