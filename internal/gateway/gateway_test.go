package gateway

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/orgadmin/internal/domain"
	"github.com/pbaille/orgadmin/internal/store"
)

const companiesJSON = `{"companies": [{"id": 1, "name": "Acme", "departments": [
	{"id": 101, "name": "Sales", "persons": [{"id": 1011, "name": "Ann", "email": "ann@acme.test"}]}
]}]}`

const configJSON = `{"changeTypes": [{"id": "CT1", "name": "Standard"}], "priorities": [{"id": "P1", "name": "High"}]}`

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadAllFromDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "companies.json", companiesJSON)
	writeDoc(t, dir, "config.json", configJSON)
	writeDoc(t, dir, "tasks.json", `{"tasks": [{"id": 1}, {"id": 2}]}`)

	s := store.New()
	NewLoader(dir, time.Second, zerolog.Nop()).LoadAll(context.Background(), s)

	assert.Equal(t, domain.Summary{Companies: 1, Departments: 1, Persons: 1, Tasks: 2}, s.Summary())
	items, err := s.ConfigList(domain.RiskLevels)
	require.NoError(t, err)
	assert.NotNil(t, items, "lists missing from the file load as empty")
}

func TestLoadAllFallsBackPerDocument(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "companies.json", companiesJSON)
	writeDoc(t, dir, "config.json", `{"changeTypes": [`)

	var logs bytes.Buffer
	s := store.New()
	NewLoader(dir, time.Second, zerolog.New(&logs)).LoadAll(context.Background(), s)

	assert.Equal(t, 1, s.Summary().Companies)
	assert.Equal(t, domain.NewConfigDocument(), s.ConfigDocument())
	assert.Equal(t, 0, s.Summary().Tasks)
	assert.Contains(t, logs.String(), `"document":"config.json"`)
	assert.Contains(t, logs.String(), `"document":"tasks.json"`)
	assert.Contains(t, logs.String(), `"level":"warn"`)
}

func TestLoadAllMissingDirectory(t *testing.T) {
	s := store.New()
	NewLoader(filepath.Join(t.TempDir(), "nope"), time.Second, zerolog.Nop()).LoadAll(context.Background(), s)

	assert.Equal(t, domain.Summary{}, s.Summary())
	assert.Equal(t, domain.NewCompaniesDocument(), s.CompaniesDocument())
}

func TestLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/companies.json":
			w.Write([]byte(companiesJSON))
		case "/data/config.json":
			w.Write([]byte(configJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	l := NewLoader(srv.URL+"/data", time.Second, zerolog.Nop())
	_, err := l.Load(context.Background(), domain.DocumentTasks)
	assert.ErrorIs(t, err, ErrNotFound)

	s := store.New()
	l.LoadAll(context.Background(), s)
	assert.Equal(t, domain.Summary{Companies: 1, Departments: 1, Persons: 1}, s.Summary())
	items, err := s.ConfigList(domain.Priorities)
	require.NoError(t, err)
	assert.Equal(t, []domain.ConfigItem{{ID: "P1", Name: "High"}}, items)
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.test/data"))
	assert.True(t, IsURL(" http://localhost:8000 "))
	assert.False(t, IsURL("./data"))
	assert.False(t, IsURL("ftp://example.test"))
}

func TestExportWritesIndentedFileAndHistory(t *testing.T) {
	dir := t.TempDir()
	h, err := store.OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer h.Close()

	s := store.New()
	_, err = s.SaveCompany(-1, "Acme")
	require.NoError(t, err)

	e := NewFileExporter(dir, h, zerolog.Nop())
	require.NoError(t, e.Export(context.Background(), domain.DocumentCompanies, s.CompaniesDocument()))

	data, err := os.ReadFile(filepath.Join(dir, "companies.json"))
	require.NoError(t, err)
	want := "{\n  \"companies\": [\n    {\n      \"id\": 1,\n      \"name\": \"Acme\",\n      \"departments\": []\n    }\n  ]\n}"
	assert.Equal(t, want, string(data))

	records, err := h.List(5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	rec, err := h.Get(records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, data, rec.Content)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestExportEmptyConfig(t *testing.T) {
	dir := t.TempDir()
	e := NewFileExporter(dir, nil, zerolog.Nop())
	require.NoError(t, e.Export(context.Background(), domain.DocumentConfig, domain.NewConfigDocument()))

	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"changeTypes\": [],\n  \"riskLevels\": [],\n  \"impactLevels\": [],\n  \"priorities\": [],\n  \"categories\": []\n}", string(data))
}

func TestImportInvalidLeavesStoreUntouched(t *testing.T) {
	s := store.New()
	install, err := decode(domain.DocumentCompanies, []byte(companiesJSON))
	require.NoError(t, err)
	install(s)
	before, err := Marshal(s.CompaniesDocument())
	require.NoError(t, err)

	for _, data := range []string{`not json`, `{"companies": {"id": 1}}`, `{"companies": [{"id": "one"}]}`} {
		_, err := Import(s, domain.DocumentCompanies, []byte(data))
		assert.ErrorIs(t, err, ErrInvalidDocument, data)
	}

	after, err := Marshal(s.CompaniesDocument())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestImportRoundTripIsNoop(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "tasks.json", `{"tasks": [{"id": 1, "title": "t"}]}`)
	writeDoc(t, dir, "config.json", configJSON)

	s := store.New()
	NewLoader(dir, time.Second, zerolog.Nop()).LoadAll(context.Background(), s)

	for _, kind := range domain.Documents {
		doc, err := s.Document(kind)
		require.NoError(t, err)
		exported, err := Marshal(doc)
		require.NoError(t, err)

		res, err := Import(s, kind, exported)
		require.NoError(t, err)
		assert.False(t, res.Changed, kind)
		assert.Empty(t, res.Patch, kind)
	}
}

func TestImportReportsPatch(t *testing.T) {
	s := store.New()
	_, err := s.SaveCompany(-1, "Acme")
	require.NoError(t, err)

	res, err := Import(s, domain.DocumentCompanies, []byte(`{"companies": [{"id": 1, "name": "Acme Corp", "departments": []}]}`))
	require.NoError(t, err)
	require.True(t, res.Changed)
	require.Len(t, res.Patch, 1)
	assert.Equal(t, "replace", res.Patch[0].Type)
	assert.Equal(t, "/companies/0/name", res.Patch[0].Path)

	c, err := s.Company(0)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", c.Name)
}

func TestWriteFileCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "downloads")
	path, err := WriteFile(dir, "tasks.json", []byte(`{"tasks": []}`))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tasks.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"tasks": []}`, string(data))
}

func largeCompanies() string {
	return `{"companies": [{"id": 1, "name": "` + strings.Repeat("x", 6<<20) + `", "departments": []}]}`
}

func TestLoadLargeLocalDocument(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "companies.json", largeCompanies())

	s := store.New()
	NewLoader(dir, time.Second, zerolog.Nop()).LoadAll(context.Background(), s)

	c, err := s.Company(0)
	require.NoError(t, err)
	assert.Len(t, c.Name, 6<<20)
}

func TestLoadLargeRemoteDocumentIsRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(largeCompanies()))
	}))
	defer srv.Close()

	l := NewLoader(srv.URL, time.Second*5, zerolog.Nop())
	_, err := l.Load(context.Background(), domain.DocumentCompanies)
	assert.ErrorIs(t, err, ErrTooLarge)

	var logs bytes.Buffer
	s := store.New()
	NewLoader(srv.URL, time.Second*5, zerolog.New(&logs)).LoadAll(context.Background(), s)
	assert.Contains(t, logs.String(), "document exceeds 5MB")
	assert.NotContains(t, logs.String(), "invalid JSON document")
}

func TestImportRoundTripPopulatedCompanies(t *testing.T) {
	s := store.New()
	_, err := Import(s, domain.DocumentCompanies, []byte(`{"companies": [
		{"id": 1, "name": "Acme", "departments": [
			{"id": 101, "name": "Sales", "persons": [
				{"id": 1011, "name": "Ann", "email": "ann@acme.test"},
				{"id": 1012, "name": "Bob", "email": "bob@acme.test"}
			]},
			{"id": 102, "name": "Support", "persons": []}
		]},
		{"id": 2, "name": "Globex", "departments": [
			{"id": 201, "name": "R&D", "persons": [{"id": 2011, "name": "Cid", "email": "cid@globex.test"}]}
		]}
	]}`))
	require.NoError(t, err)
	before := s.CompaniesDocument()
	require.Equal(t, domain.Summary{Companies: 2, Departments: 3, Persons: 3}, s.Summary())

	exported, err := Marshal(before)
	require.NoError(t, err)
	res, err := Import(s, domain.DocumentCompanies, exported)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, before, s.CompaniesDocument())
}

func TestImportKeepsTaskFileKeys(t *testing.T) {
	s := store.New()
	_, err := Import(s, domain.DocumentTasks, []byte(`{"version": 2, "tasks": [{"id": 1}], "owner": {"name": "ops"}}`))
	require.NoError(t, err)

	exported, err := Marshal(s.TasksDocument())
	require.NoError(t, err)
	assert.JSONEq(t, `{"version": 2, "tasks": [{"id": 1}], "owner": {"name": "ops"}}`, string(exported))
}

func TestImportReportsDroppedFields(t *testing.T) {
	s := store.New()
	res, err := Import(s, domain.DocumentCompanies, []byte(`{"source": "crm", "companies": [{"id": 1, "name": "Acme", "vat": "X1"}]}`))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"/source", "/companies/0/vat"}, res.Dropped)
}
