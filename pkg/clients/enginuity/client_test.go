package enginuity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", time.Second)
}

func TestCompare(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/quotations/compare", r.URL.Path)

		var body CompareRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []models.Selection{{ItemID: "a", Quantity: 2}}, body.Selections)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"supplierId":"s2","total":"12","offerCount":1}],"best":{"supplierId":"s2","total":"12","offerCount":1}}`))
	})

	got, err := client.Compare(context.Background(), CompareRequest{Selections: []models.Selection{{ItemID: "a", Quantity: 2}}})
	require.NoError(t, err)
	require.NotNil(t, got.Best)
	assert.Equal(t, "s2", got.Best.SupplierID)
	assert.Equal(t, "12", got.Best.Total.String())
}

func TestComputeSurfacesAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"unknown supplier: s9"}`))
	})

	_, err := client.Compute(context.Background(), ComputeRequest{SupplierID: "s9", Tier: models.Tier1})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "unknown supplier: s9", apiErr.Message)
}

func TestTierMarkups(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/preferences/tier-markups", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"1":"5","2":"10","3":"15"}`))
	})

	table, err := client.TierMarkups(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "10", table[models.Tier2].String())
}

func TestSweepSendsDryRun(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("dryRun"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"dryRun":true,"duplicateItemIds":["x"],"danglingOfferCount":2}`))
	})

	report, err := client.Sweep(context.Background(), true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, 2, report.DanglingOfferCount)
}
