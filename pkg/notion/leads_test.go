package notion

import (
	"context"
	"strings"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLeadProperties(t *testing.T) {
	props := LeadProperties(Lead{
		Name:       "Acme HR",
		Website:    "https://acme-hr.com",
		Category:   "HR",
		Email:      "info@acme-hr.com",
		PainPoints: "scaling support staff",
		Source:     "https://hr-directory.com/list",
	})

	title, ok := props["Name"].(notionapi.TitleProperty)
	require.True(t, ok)
	assert.Equal(t, "Acme HR", title.Title[0].Text.Content)

	site, ok := props["Website"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "https://acme-hr.com", site.RichText[0].Text.Content)

	email, ok := props["Email"].(notionapi.EmailProperty)
	require.True(t, ok)
	assert.Equal(t, "info@acme-hr.com", email.Email)

	cat, ok := props["Category"].(notionapi.SelectProperty)
	require.True(t, ok)
	assert.Equal(t, "HR", cat.Select.Name)

	pain, ok := props["Pain Points"].(notionapi.RichTextProperty)
	require.True(t, ok)
	assert.Equal(t, "scaling support staff", pain.RichText[0].Text.Content)
	assert.Contains(t, props, "Source")
}

func TestLeadProperties_OptionalFields(t *testing.T) {
	props := LeadProperties(Lead{Name: "Acme", Website: "https://acme.com"})
	assert.NotContains(t, props, "Email")
	assert.NotContains(t, props, "Category")
	assert.NotContains(t, props, "Source")
}

func TestLeadProperties_TruncatesLongText(t *testing.T) {
	props := LeadProperties(Lead{Name: "Acme", PainPoints: strings.Repeat("é", maxRichText+50)})
	pain := props["Pain Points"].(notionapi.RichTextProperty)
	assert.Len(t, []rune(pain.RichText[0].Text.Content), maxRichText)
}

func TestFindLeadByWebsite(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-1", mock.MatchedBy(func(req *notionapi.DatabaseQueryRequest) bool {
		pf, ok := req.Filter.(notionapi.PropertyFilter)
		return ok && pf.Property == "Website" && pf.RichText != nil && pf.RichText.Equals == "https://acme.com"
	})).Return(&notionapi.DatabaseQueryResponse{Results: []notionapi.Page{{ID: "p1"}}}, nil).Once()

	id, err := FindLeadByWebsite(ctx, mc, "db-1", "https://acme.com")
	require.NoError(t, err)
	assert.Equal(t, "p1", id)
	mc.AssertExpectations(t)
}

func TestFindLeadByWebsite_None(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-1", mock.Anything).
		Return(&notionapi.DatabaseQueryResponse{}, nil).Once()

	id, err := FindLeadByWebsite(ctx, mc, "db-1", "https://acme.com")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestFindLeadByWebsite_Error(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("QueryDatabase", ctx, "db-1", mock.Anything).Return(nil, assert.AnError).Once()

	_, err := FindLeadByWebsite(ctx, mc, "db-1", "https://acme.com")
	assert.ErrorContains(t, err, "find lead https://acme.com")
}

func TestCreateLead(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	mc.On("CreatePage", ctx, mock.MatchedBy(func(req *notionapi.PageCreateRequest) bool {
		return req.Parent.DatabaseID == "db-1" && req.Properties["Name"] != nil
	})).Return(&notionapi.Page{ID: "new-page"}, nil).Once()

	id, err := CreateLead(ctx, mc, "db-1", Lead{Name: "Acme", Website: "https://acme.com"})
	require.NoError(t, err)
	assert.Equal(t, "new-page", id)
	mc.AssertExpectations(t)
}

func TestCreateLead_Errors(t *testing.T) {
	mc := new(MockClient)
	ctx := context.Background()

	_, err := CreateLead(ctx, mc, "db-1", Lead{})
	assert.ErrorContains(t, err, "name is required")

	mc.On("CreatePage", ctx, mock.Anything).Return(nil, assert.AnError).Once()
	_, err = CreateLead(ctx, mc, "db-1", Lead{Name: "Acme"})
	assert.ErrorContains(t, err, "create lead Acme")
}
