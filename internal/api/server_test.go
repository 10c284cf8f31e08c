package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/gateway"
	"github.com/pbaille/orgadmin/internal/session"
	"github.com/pbaille/orgadmin/internal/store"
)

type testServer struct {
	*httptest.Server
	dir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	exporter := gateway.NewFileExporter(dir, nil, zerolog.Nop())
	ctrl := session.New(store.New(), exporter, session.Options{})
	srv := httptest.NewServer(New(ctrl, "", zerolog.Nop()).Handler())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, dir: dir}
}

func (ts *testServer) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (ts *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(ts.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCompanyFlow(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/scopes/company/new", "{}")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.post(t, "/scopes/company/save", `{"name": ""}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "company name is required", decodeBody[map[string]string](t, resp)["error"])

	resp = ts.post(t, "/scopes/company/save", `{"name": "Acme"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	company := decodeBody[domain.Company](t, resp)
	assert.Equal(t, 1, company.ID)

	resp = ts.post(t, "/scopes/department/new", "{}")
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "the company scope is closed after a save")

	resp = ts.post(t, "/scopes/company/edit", `{"index": 0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.post(t, "/scopes/department/new", "{}")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.post(t, "/scopes/department/save", `{"name": "Sales"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 101, decodeBody[domain.Department](t, resp).ID)

	resp = ts.get(t, "/summary")
	assert.Equal(t, domain.Summary{Companies: 1, Departments: 1}, decodeBody[domain.Summary](t, resp))

	scopes := decodeBody[map[string]any](t, ts.get(t, "/scopes"))
	assert.Equal(t, "editing", scopes["scopes"].(map[string]any)["company"].(map[string]any)["state"])

	data, err := os.ReadFile(filepath.Join(ts.dir, "companies.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"name": "Sales"`)
}

func TestEditOutOfRange(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/scopes/company/edit", `{"index": 4}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.post(t, "/scopes/widget/new", "{}")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeletionFlow(t *testing.T) {
	ts := newTestServer(t)

	ts.post(t, "/scopes/config/new", `{"list": "priorities"}`)
	resp := ts.post(t, "/scopes/config/save", `{"id": "P1", "name": "High"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.post(t, "/deletions", `{"kind": "config", "index": 0, "list": "priorities"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	pending := decodeBody[session.PendingDeletion](t, resp)
	require.NotEmpty(t, pending.Token)
	assert.Contains(t, pending.Prompt, "Priorities")

	resp = ts.post(t, "/deletions/wrong/confirm", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = ts.post(t, "/deletions/"+pending.Token+"/confirm", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cfg := decodeBody[domain.ConfigDocument](t, ts.get(t, "/config"))
	assert.Empty(t, cfg.Priorities)

	resp = ts.post(t, "/deletions/"+pending.Token+"/cancel", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDownload(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.get(t, "/export/config.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `attachment; filename="config.json"`, resp.Header.Get("Content-Disposition"))
	doc := decodeBody[domain.ConfigDocument](t, resp)
	assert.NotNil(t, doc.Categories)

	resp = ts.get(t, "/export/people")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExportAll(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/export", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, kind := range domain.Documents {
		assert.FileExists(t, filepath.Join(ts.dir, kind.FileName()))
	}
}

func TestImport(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.post(t, "/import/companies", `{"companies": [`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.post(t, "/import/companies", `{"companies": [{"id": 5, "name": "Initech"}]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	res := decodeBody[map[string]any](t, resp)
	assert.Equal(t, true, res["changed"])

	companies := decodeBody[domain.CompaniesDocument](t, ts.get(t, "/companies"))
	require.Len(t, companies.Companies, 1)
	assert.Equal(t, 5, companies.Companies[0].ID)
	assert.NotNil(t, companies.Companies[0].Departments)
}
