package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// Lead is a qualified prospect written as one database page.
type Lead struct {
	Name       string
	Website    string
	Category   string
	Email      string
	PainPoints string
	Source     string
}

// Notion rich text blocks are capped at 2000 characters.
const maxRichText = 2000

// LeadProperties converts a lead into database page properties. Name is the
// title property. Website is rich text so it can be matched with a text
// filter when checking for an existing lead.
func LeadProperties(l Lead) notionapi.Properties {
	props := notionapi.Properties{
		"Name": notionapi.TitleProperty{
			Type:  notionapi.PropertyTypeTitle,
			Title: richText(l.Name),
		},
		"Website": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(l.Website),
		},
		"Pain Points": notionapi.RichTextProperty{
			Type:     notionapi.PropertyTypeRichText,
			RichText: richText(l.PainPoints),
		},
		"Status": notionapi.StatusProperty{
			Type:   notionapi.PropertyTypeStatus,
			Status: notionapi.Option{Name: "New"},
		},
	}
	if l.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Type:   notionapi.PropertyTypeSelect,
			Select: notionapi.Option{Name: l.Category},
		}
	}
	if l.Email != "" {
		props["Email"] = notionapi.EmailProperty{
			Type:  notionapi.PropertyTypeEmail,
			Email: l.Email,
		}
	}
	if l.Source != "" {
		props["Source"] = notionapi.URLProperty{
			Type: notionapi.PropertyTypeURL,
			URL:  l.Source,
		}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	if r := []rune(s); len(r) > maxRichText {
		s = string(r[:maxRichText])
	}
	return []notionapi.RichText{
		{Type: notionapi.ObjectTypeText, Text: &notionapi.Text{Content: s}},
	}
}

// FindLeadByWebsite returns the ID of the first page whose Website equals
// website, or "" when there is none.
func FindLeadByWebsite(ctx context.Context, c Client, dbID, website string) (string, error) {
	resp, err := c.QueryDatabase(ctx, dbID, &notionapi.DatabaseQueryRequest{
		Filter: notionapi.PropertyFilter{
			Property: "Website",
			RichText: &notionapi.TextFilterCondition{Equals: website},
		},
		PageSize: 1,
	})
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("notion: find lead %s", website))
	}
	if len(resp.Results) == 0 {
		return "", nil
	}
	return string(resp.Results[0].ID), nil
}

// CreateLead creates a page for l in the lead database and returns its ID.
func CreateLead(ctx context.Context, c Client, dbID string, l Lead) (string, error) {
	if l.Name == "" {
		return "", eris.New("notion: lead name is required")
	}
	page, err := c.CreatePage(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(dbID),
		},
		Properties: LeadProperties(l),
	})
	if err != nil {
		return "", eris.Wrap(err, fmt.Sprintf("notion: create lead %s", l.Name))
	}
	return string(page.ID), nil
}
