package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vizql-org/vizql/pipeline"
)

// ============================================================================
// TEST DOUBLES
// ============================================================================

type fakeAsker struct {
	resp *pipeline.Response
	err  error

	lastQuery string
}

func (f *fakeAsker) Run(_ context.Context, query string) (*pipeline.Response, error) {
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newTestServer(asker Asker) http.Handler {
	return New(asker, nil, WithOrigins([]string{"http://localhost:3000"})).Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

// ============================================================================
// TESTS
// ============================================================================

func TestHealth(t *testing.T) {
	handler := newTestServer(&fakeAsker{})
	w := doJSON(t, handler, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "healthy") {
		t.Errorf("body = %q, want healthy status", w.Body.String())
	}
}

func TestAskEmptyQuery(t *testing.T) {
	handler := newTestServer(&fakeAsker{})
	w := doJSON(t, handler, http.MethodPost, "/ask", `{"query": ""}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAskMalformedBody(t *testing.T) {
	handler := newTestServer(&fakeAsker{})
	w := doJSON(t, handler, http.MethodPost, "/ask", `{not json`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAskPipelineError(t *testing.T) {
	handler := newTestServer(&fakeAsker{err: errors.New("llm unreachable")})
	w := doJSON(t, handler, http.MethodPost, "/ask", `{"query": "total sales"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if body["error"] != "Internal Server Error" {
		t.Errorf("error = %q", body["error"])
	}
	if body["detail"] != "llm unreachable" {
		t.Errorf("detail = %q", body["detail"])
	}
}

func TestAskReturnsRenderPlan(t *testing.T) {
	asker := &fakeAsker{resp: &pipeline.Response{
		Answer:      "Sales grew in Q2.",
		ChartType:   "bar",
		ChartConfig: json.RawMessage(`{"labels": ["Q1", "Q2"], "datasets": [{"label": "Sales", "data": [100, 200]}]}`),
		SQL:         "SELECT 1",
		Result:      []map[string]any{{"total": 300}},
	}}
	handler := newTestServer(asker)

	w := doJSON(t, handler, http.MethodPost, "/ask", `{"query": "sales by quarter"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if asker.lastQuery != "sales by quarter" {
		t.Errorf("query passed to pipeline = %q", asker.lastQuery)
	}

	var resp AskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Render.Kind != "bar" {
		t.Errorf("render kind = %q, want bar", resp.Render.Kind)
	}
	if resp.Render.Fallback {
		t.Error("expected a real plan, got fallback")
	}
	if len(resp.Render.Series) != 1 || resp.Render.Series[0].Label != "Sales" {
		t.Errorf("render series = %+v", resp.Render.Series)
	}
	if !resp.Render.Options.BeginAtZero {
		t.Error("bar plan should begin at zero")
	}
}

func TestAskDegradedConfigFallsBack(t *testing.T) {
	asker := &fakeAsker{resp: &pipeline.Response{
		Answer:      "No rows matched.",
		ChartType:   "line",
		ChartConfig: json.RawMessage(`{"labels": [], "datasets": []}`),
	}}
	handler := newTestServer(asker)

	w := doJSON(t, handler, http.MethodPost, "/ask", `{"query": "anything"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp AskResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Render.Fallback {
		t.Error("empty datasets should produce the fallback plan")
	}
	if resp.Render.Options.Title != "No chart data available" {
		t.Errorf("fallback title = %q", resp.Render.Options.Title)
	}
}

func TestDebugReturnsVerbatimConfig(t *testing.T) {
	// Key order and spacing must survive untouched.
	raw := `{"datasets": [{"data": [1, 2]}],   "labels": ["a", "b"]}`
	asker := &fakeAsker{resp: &pipeline.Response{
		ChartType:   "bar",
		ChartConfig: json.RawMessage(raw),
	}}
	handler := newTestServer(asker)

	if w := doJSON(t, handler, http.MethodPost, "/ask", `{"query": "q"}`); w.Code != http.StatusOK {
		t.Fatalf("ask status = %d", w.Code)
	}

	w := doJSON(t, handler, http.MethodGet, "/debug", "")
	if w.Code != http.StatusOK {
		t.Fatalf("debug status = %d", w.Code)
	}
	if w.Body.String() != raw {
		t.Errorf("debug body = %q, want verbatim %q", w.Body.String(), raw)
	}
}

func TestDebugBeforeAnyAsk(t *testing.T) {
	handler := newTestServer(&fakeAsker{})
	w := doJSON(t, handler, http.MethodGet, "/debug", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestPreviewAfterAsk(t *testing.T) {
	asker := &fakeAsker{resp: &pipeline.Response{
		ChartType:   "pie",
		ChartConfig: json.RawMessage(`{"labels": ["North", "South"], "datasets": [{"label": "Orders", "data": [40, 60]}]}`),
	}}
	handler := newTestServer(asker)

	if w := doJSON(t, handler, http.MethodPost, "/ask", `{"query": "orders"}`); w.Code != http.StatusOK {
		t.Fatalf("ask status = %d", w.Code)
	}

	w := doJSON(t, handler, http.MethodGet, "/preview", "")
	if w.Code != http.StatusOK {
		t.Fatalf("preview status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Body.String(), "North") {
		t.Error("preview should contain the chart labels")
	}
}

func TestCORSAllowedOrigin(t *testing.T) {
	handler := newTestServer(&fakeAsker{})

	req := httptest.NewRequest(http.MethodOptions, "/ask", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("allow-origin = %q", got)
	}
}

func TestCORSUnknownOrigin(t *testing.T) {
	handler := newTestServer(&fakeAsker{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("allow-origin = %q, want unset", got)
	}
}
