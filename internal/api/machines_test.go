package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/plantworks/configurizer-core/internal/audit"
	"github.com/plantworks/configurizer-core/internal/infrastructure/config"
	"github.com/plantworks/configurizer-core/internal/infrastructure/database"
	"github.com/plantworks/configurizer-core/internal/infrastructure/logging"
	"github.com/plantworks/configurizer-core/internal/machine"
)

// testEnv bundles the router and its collaborators for handler tests.
type testEnv struct {
	handler  http.Handler
	audit    audit.Repository
	filePath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	filePath := filepath.Join(t.TempDir(), "molder-1.json")
	registry, err := machine.NewRegistry(
		[]machine.Spec{{
			Name:   "molder-1",
			Kind:   machine.KindInjectionMolder,
			Params: map[string]string{"file_path": filePath},
		}},
		machine.Builders(),
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	db, err := database.Open(database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	repo := audit.NewSQLiteRepository(db.DB)

	logger := logging.New(config.LoggingConfig{Level: "error", Format: "json"}, "test")

	srv, err := New(Deps{
		Config:   config.APIConfig{Host: "127.0.0.1", Port: 3000},
		Logger:   logger,
		Registry: registry,
		Audit:    repo,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	return &testEnv{
		handler:  srv.buildRouter(),
		audit:    repo,
		filePath: filePath,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding response body: %v\nbody: %s", err, rec.Body.String())
	}
	return body
}

func TestHandleHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := decodeBody(t, rec)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if body["machines"] != float64(1) {
		t.Errorf("machines = %v, want 1", body["machines"])
	}
}

func TestHandleListMachines(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/machines/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := decodeBody(t, rec)
	if body["count"] != float64(1) {
		t.Errorf("count = %v, want 1", body["count"])
	}
	machines, ok := body["machines"].([]any)
	if !ok || len(machines) != 1 {
		t.Fatalf("machines = %v, want one entry", body["machines"])
	}
	entry := machines[0].(map[string]any)
	if entry["name"] != "molder-1" {
		t.Errorf("name = %v, want molder-1", entry["name"])
	}
	if entry["kind"] != machine.KindInjectionMolder {
		t.Errorf("kind = %v, want %s", entry["kind"], machine.KindInjectionMolder)
	}
}

func TestHandleGetSettings(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/machines/molder-1/settings", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := decodeBody(t, rec)
	if body["machine"] != "molder-1" {
		t.Errorf("machine = %v, want molder-1", body["machine"])
	}

	defs, ok := body["settings"].([]any)
	if !ok {
		t.Fatalf("settings missing from response: %v", body)
	}
	if len(defs) != 7 {
		t.Fatalf("len(settings) = %d, want 7", len(defs))
	}

	byID := make(map[string]map[string]any, len(defs))
	for _, d := range defs {
		def := d.(map[string]any)
		byID[def["identifier"].(string)] = def
	}

	barrel, ok := byID["barrelTemperature"]
	if !ok {
		t.Fatal("barrelTemperature not in settings response")
	}
	if barrel["type"] != "number" {
		t.Errorf("barrelTemperature type = %v, want number", barrel["type"])
	}
	if barrel["uom"] != "°C" {
		t.Errorf("barrelTemperature uom = %v, want °C", barrel["uom"])
	}
	if barrel["minValue"] != float64(150) {
		t.Errorf("barrelTemperature minValue = %v, want 150", barrel["minValue"])
	}
	if barrel["defaultValue"] != float64(230) {
		t.Errorf("barrelTemperature defaultValue = %v, want 230", barrel["defaultValue"])
	}

	cooling, ok := byID["coolingTime"]
	if !ok {
		t.Fatal("coolingTime not in settings response")
	}
	if cooling["nullable"] != true {
		t.Errorf("coolingTime nullable = %v, want true", cooling["nullable"])
	}
	if _, present := cooling["defaultValue"]; present {
		t.Errorf("coolingTime defaultValue should be omitted, got %v", cooling["defaultValue"])
	}
}

func TestHandleGetSettingsUnknownMachine(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/machines/nope/settings", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	body := decodeBody(t, rec)
	if body["code"] != ErrCodeNotFound {
		t.Errorf("code = %v, want %s", body["code"], ErrCodeNotFound)
	}
}

func TestHandleApplySettings(t *testing.T) {
	env := newTestEnv(t)

	payload := `{"settings":[
		{"identifier":"guardsClosedRequired","value":true},
		{"identifier":"barrelTemperature","value":446,"uom":"°F"},
		{"identifier":"screwSpeed","value":120,"uom":"rpm"}
	]}`

	rec := env.do(t, http.MethodPost, "/api/v1/machines/molder-1/settings", payload)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["machine"] != "molder-1" {
		t.Errorf("machine = %v, want molder-1", body["machine"])
	}

	data, err := os.ReadFile(env.filePath)
	if err != nil {
		t.Fatalf("reading committed settings file: %v", err)
	}
	if !strings.Contains(string(data), `"guardsClosedRequired"`) {
		t.Errorf("committed file missing guardsClosedRequired:\n%s", data)
	}

	logs, err := env.audit.List(context.Background(), audit.Filter{Machine: "molder-1"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	if !logs[0].Accepted {
		t.Errorf("audit entry Accepted = false, want true")
	}
	if logs[0].ErrorCount != 0 {
		t.Errorf("audit entry ErrorCount = %d, want 0", logs[0].ErrorCount)
	}
}

func TestHandleApplySettingsValidationFailure(t *testing.T) {
	env := newTestEnv(t)

	payload := `{"settings":[{"identifier":"screwSpeed","value":-10}]}`

	rec := env.do(t, http.MethodPost, "/api/v1/machines/molder-1/settings", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d\nbody: %s", rec.Code, http.StatusBadRequest, rec.Body.String())
	}

	body := decodeBody(t, rec)
	if body["code"] != ErrCodeValidation {
		t.Errorf("code = %v, want %s", body["code"], ErrCodeValidation)
	}

	errList, ok := body["errors"].([]any)
	if !ok || len(errList) == 0 {
		t.Fatalf("errors missing from response: %v", body)
	}
	found := map[string]string{}
	for _, e := range errList {
		entry := e.(map[string]any)
		found[entry["identifier"].(string)] = entry["message"].(string)
	}
	if found["guardsClosedRequired"] != "Missing value (no default and not nullable)" {
		t.Errorf("guardsClosedRequired message = %q", found["guardsClosedRequired"])
	}
	if found["screwSpeed"] != "Value must be >= 0" {
		t.Errorf("screwSpeed message = %q", found["screwSpeed"])
	}

	// Nothing committed on rejection.
	if _, err := os.Stat(env.filePath); !os.IsNotExist(err) {
		t.Errorf("settings file should not exist after rejection")
	}

	// Rejections are still audited.
	logs, err := env.audit.List(context.Background(), audit.Filter{Machine: "molder-1"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("len(logs) = %d, want 1", len(logs))
	}
	if logs[0].Accepted {
		t.Errorf("audit entry Accepted = true, want false")
	}
	if logs[0].ErrorCount != len(errList) {
		t.Errorf("audit entry ErrorCount = %d, want %d", logs[0].ErrorCount, len(errList))
	}
}

func TestHandleApplySettingsBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{
			name: "unknown unit",
			body: `{"settings":[{"identifier":"screwSpeed","value":80,"uom":"parsecs"}]}`,
		},
		{
			name: "object value",
			body: `{"settings":[{"identifier":"screwSpeed","value":{"nested":true}}]}`,
		},
		{
			name: "malformed json",
			body: `{"settings":`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/v1/machines/molder-1/settings", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
			}
			body := decodeBody(t, rec)
			if body["code"] != ErrCodeBadRequest {
				t.Errorf("code = %v, want %s", body["code"], ErrCodeBadRequest)
			}
		})
	}
}

func TestHandleApplySettingsUnknownMachine(t *testing.T) {
	env := newTestEnv(t)

	payload := `{"settings":[{"identifier":"guardsClosedRequired","value":true}]}`
	rec := env.do(t, http.MethodPost, "/api/v1/machines/nope/settings", payload)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestHandleApplyHistory(t *testing.T) {
	env := newTestEnv(t)

	// One accepted, one rejected.
	env.do(t, http.MethodPost, "/api/v1/machines/molder-1/settings",
		`{"settings":[{"identifier":"guardsClosedRequired","value":true}]}`)
	env.do(t, http.MethodPost, "/api/v1/machines/molder-1/settings",
		`{"settings":[{"identifier":"bogus","value":1}]}`)

	rec := env.do(t, http.MethodGet, "/api/v1/machines/molder-1/history", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	body := decodeBody(t, rec)
	history, ok := body["history"].([]any)
	if !ok {
		t.Fatalf("history missing from response: %v", body)
	}
	if len(history) != 2 {
		t.Fatalf("len(history) = %d, want 2", len(history))
	}

	rec = env.do(t, http.MethodGet, "/api/v1/machines/molder-1/history?limit=1", "")
	body = decodeBody(t, rec)
	if history, _ = body["history"].([]any); len(history) != 1 {
		t.Errorf("len(history) with limit=1 = %d, want 1", len(history))
	}
}

func TestHandleApplyHistoryUnknownMachine(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/machines/nope/history", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	logger := logging.New(config.LoggingConfig{Level: "error"}, "test")
	registry, err := machine.NewRegistry(nil, machine.Builders())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	if _, err := New(Deps{Registry: registry}); err == nil {
		t.Error("New() without logger should fail")
	}
	if _, err := New(Deps{Logger: logger}); err == nil {
		t.Error("New() without registry should fail")
	}
	if _, err := New(Deps{Logger: logger, Registry: registry}); err != nil {
		t.Errorf("New() with required deps error = %v", err)
	}
}
