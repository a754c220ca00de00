package salesforce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	gosf "github.com/k-capehart/go-salesforce/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSFClient creates an sfClient backed by an httptest server.
func newTestSFClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	sf, err := gosf.Init(gosf.Creds{
		AccessToken: "test-token",
		Domain:      ts.URL,
	},
		gosf.WithValidateAuthentication(false),
		gosf.WithRoundTripper(http.DefaultTransport),
	)
	require.NoError(t, err)
	return NewClient(sf)
}

func TestSFClient_Query(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/query")
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"totalSize": 1,
			"done":      true,
			"records": []map[string]any{
				{
					"attributes": map[string]any{"type": "Lead"},
					"Id":         "00Qxx",
					"Company":    "Acme HR",
					"Website":    "https://acme-hr.com",
				},
			},
		})
	}))

	var leads []Lead
	err := client.Query(context.Background(), "SELECT Id, Company FROM Lead", &leads)
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "00Qxx", leads[0].ID)
	assert.Equal(t, "Acme HR", leads[0].Company)
}

func TestSFClient_Query_Error(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"message": "invalid SOQL", "errorCode": "MALFORMED_QUERY"},
		})
	}))

	var leads []Lead
	err := client.Query(context.Background(), "INVALID SOQL", &leads)
	assert.ErrorContains(t, err, "sf: query")
}

func TestSFClient_InsertCollection(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "00Q1", "success": true, "errors": []any{}},
			{"id": "", "success": false, "errors": []map[string]any{{"message": "REQUIRED_FIELD_MISSING"}}},
		})
	}))

	results, err := client.InsertCollection(context.Background(), "Lead", []map[string]any{
		{"Company": "Acme", "LastName": "Unknown"},
		{"Company": "Beacon"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].Success)
	assert.Equal(t, "00Q1", results[0].ID)
	assert.False(t, results[1].Success)
	assert.Equal(t, []string{"REQUIRED_FIELD_MISSING"}, results[1].Errors)
}

func TestSFClient_InsertCollection_Error(t *testing.T) {
	client := newTestSFClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode([]map[string]any{{"message": "batch error"}})
	}))

	_, err := client.InsertCollection(context.Background(), "Lead", []map[string]any{{"Company": "Acme"}})
	assert.ErrorContains(t, err, "sf: insert collection Lead")
}
