package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Haizenx/Enginuity-Alpha/internal/domain/models"
)

func TestParseSelections(t *testing.T) {
	got, err := parseSelections([]string{"a=2", " b = 1 "})
	require.NoError(t, err)
	assert.Equal(t, []models.Selection{{ItemID: "a", Quantity: 2}, {ItemID: "b", Quantity: 1}}, got)

	_, err = parseSelections([]string{"a"})
	require.Error(t, err)
	_, err = parseSelections([]string{"a=two"})
	require.Error(t, err)
	_, err = parseSelections([]string{"=2"})
	require.Error(t, err)
}

func TestParseTierMarkups(t *testing.T) {
	table, err := parseTierMarkups([]string{"1=5", "2=7.5"})
	require.NoError(t, err)
	assert.Equal(t, "7.5", table[models.Tier2].String())

	_, err = parseTierMarkups([]string{"x=5"})
	require.Error(t, err)
	_, err = parseTierMarkups([]string{"1=lots"})
	require.Error(t, err)
}

func runCmd(t *testing.T, srv *httptest.Server, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--server", srv.URL}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestComputeCommand(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/quotations/compute", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"supplierId":"s1","tier":2,"lines":[],"grandTotal":"220","supplier":{"id":"s1","name":"Acme"}}`))
	}))
	defer srv.Close()

	out, err := runCmd(t, srv, "compute", "--supplier", "s1", "--tier", "2", "--item", "a=2")
	require.NoError(t, err)

	assert.Equal(t, "s1", body["supplierId"])
	assert.EqualValues(t, 2, body["tier"])
	assert.Contains(t, out, `"grandTotal": "220"`)
}

func TestSuppliersCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"s1","name":"Acme"},{"id":"s2","name":"Bolt"}]`))
	}))
	defer srv.Close()

	out, err := runCmd(t, srv, "suppliers")
	require.NoError(t, err)
	assert.Equal(t, "s1\tAcme\ns2\tBolt\n", out)
}

func TestCommandReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"invalid configuration: negative markup for tier 2"}`))
	}))
	defer srv.Close()

	_, err := runCmd(t, srv, "tiers", "set", "1=5", "2=-1", "3=15")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative markup")
}
