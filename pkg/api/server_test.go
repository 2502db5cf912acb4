package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matzehuels/matlayer/pkg/cache"
	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/export"
	"github.com/matzehuels/matlayer/pkg/material"
	"github.com/matzehuels/matlayer/pkg/project"
)

func newTestServer(t *testing.T) (*httptest.Server, *project.MemoryStore) {
	t.Helper()
	store := project.NewMemoryStore()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(New(store, WithCache(c, nil)).Handler())
	t.Cleanup(srv.Close)
	return srv, store
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestCreateAndGet(t *testing.T) {
	srv, _ := newTestServer(t)

	if resp := do(t, srv, http.MethodPost, "/materials/Metal", ""); resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if resp := do(t, srv, http.MethodPost, "/materials/Metal", ""); resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	if resp := do(t, srv, http.MethodPost, "/materials/a..b", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("invalid name status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	resp := do(t, srv, http.MethodGet, "/materials/Metal", "")
	snap := decode[material.Snapshot](t, resp)
	if snap.Name != "Metal" || len(snap.Layers) != 0 || snap.Selected != -1 {
		t.Errorf("snapshot = %+v", snap)
	}

	resp = do(t, srv, http.MethodGet, "/materials", "")
	list := decode[map[string][]string](t, resp)
	if got := list["materials"]; len(got) != 1 || got[0] != "Metal" {
		t.Errorf("materials = %v, want [Metal]", got)
	}

	if resp := do(t, srv, http.MethodGet, "/materials/Wood", ""); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing get status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestCommands(t *testing.T) {
	srv, store := newTestServer(t)
	do(t, srv, http.MethodPost, "/materials/Metal", "")

	steps := []struct {
		path     string
		body     string
		status   int
		selected int
		code     errors.Code
	}{
		{"/layers/add", `{"kind":"COLOR"}`, http.StatusOK, 0, ""},
		{"/masks/add", `{"kind":"EDGE_WEAR"}`, http.StatusOK, 0, ""},
		{"/masks/add", `{"kind":"WHITE"}`, http.StatusOK, 1, ""},
		{"/masks/up", "", http.StatusOK, 0, ""},
		{"/masks/add", `{"kind":"RUST"}`, http.StatusBadRequest, 0, errors.ErrCodeInvalidKind},
		{"/masks/select", `{"index":7}`, http.StatusBadRequest, 0, errors.ErrCodeInvalidIndex},
		{"/layers/hide", `{"index":0}`, http.StatusOK, 0, ""},
		{"/layers/explode", "", http.StatusBadRequest, 0, errors.ErrCodeInvalidInput},
	}
	for _, step := range steps {
		resp := do(t, srv, http.MethodPost, "/materials/Metal"+step.path, step.body)
		if resp.StatusCode != step.status {
			t.Fatalf("%s status = %d, want %d", step.path, resp.StatusCode, step.status)
		}
		body := decode[CommandResponse](t, resp)
		if body.Code != step.code {
			t.Errorf("%s code = %q, want %q", step.path, body.Code, step.code)
		}
		if step.code == "" && body.Selected != step.selected {
			t.Errorf("%s selected = %d, want %d", step.path, body.Selected, step.selected)
		}
		if body.Status == "" && step.code != errors.ErrCodeInvalidInput {
			t.Errorf("%s has no status message", step.path)
		}
	}

	m, err := project.Load(context.Background(), store, "Metal")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Layers.Len() != 1 || m.MaskStack(0).Len() != 2 {
		t.Errorf("stored stacks = %d layers, %d masks", m.Layers.Len(), m.MaskStack(0).Len())
	}
	if e, _ := m.Layers.Entry(0); !e.Hidden {
		t.Errorf("layer 0 hidden = false after hide")
	}

	resp := do(t, srv, http.MethodGet, "/materials/Metal/check", "")
	if check := decode[CheckResponse](t, resp); !check.OK {
		t.Errorf("check = %+v, want ok", check)
	}
}

func TestFailedCommandIsNotSaved(t *testing.T) {
	srv, store := newTestServer(t)
	do(t, srv, http.MethodPost, "/materials/Metal", "")
	before, _ := store.Get(context.Background(), "Metal")

	// No layer yet, so mask commands have no active context.
	resp := do(t, srv, http.MethodPost, "/materials/Metal/masks/add", `{"kind":"BLACK"}`)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
	after, _ := store.Get(context.Background(), "Metal")
	if before.Hash() != after.Hash() {
		t.Errorf("failed command changed the stored document")
	}
}

func TestGraphAndExport(t *testing.T) {
	srv, _ := newTestServer(t)
	do(t, srv, http.MethodPost, "/materials/Metal", "")
	do(t, srv, http.MethodPost, "/materials/Metal/layers/add", `{"kind":"COLOR"}`)

	first := do(t, srv, http.MethodGet, "/materials/Metal/graph?format=dot", "")
	if first.StatusCode != http.StatusOK {
		t.Fatalf("graph status = %d", first.StatusCode)
	}
	if got := first.Header.Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(first.Body)
	if !strings.Contains(buf.String(), "Metal_0") {
		t.Errorf("DOT does not mention Metal_0:\n%s", buf.String())
	}
	second := do(t, srv, http.MethodGet, "/materials/Metal/graph?format=dot", "")
	if got := second.Header.Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
	if resp := do(t, srv, http.MethodGet, "/materials/Metal/graph?format=gif", ""); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad format status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	resp := do(t, srv, http.MethodGet, "/materials/Metal/export?object=Cube", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	plan := decode[export.Plan](t, resp)
	if plan.Texture != "T_Metal_C" || len(plan.Jobs) == 0 || plan.Jobs[0].Image != "Cube_COLOR" {
		t.Errorf("plan = %+v", plan)
	}
	if resp := do(t, srv, http.MethodGet, "/materials/Metal/export", ""); resp.StatusCode != http.StatusConflict {
		t.Errorf("export without object status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestDelete(t *testing.T) {
	srv, store := newTestServer(t)
	do(t, srv, http.MethodPost, "/materials/Metal", "")
	if resp := do(t, srv, http.MethodDelete, "/materials/Metal", ""); resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	if doc, _ := store.Get(context.Background(), "Metal"); doc != nil {
		t.Errorf("document still stored after delete")
	}
}
