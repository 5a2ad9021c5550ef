package chi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	gochi "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/oriole-ai/oriole/internal/domain"
	healthuc "github.com/oriole-ai/oriole/internal/usecase/health"
)

type mockAsk struct {
	ranked   []domain.RankedDocument
	err      error
	gotQuery string
	gotTopK  int
}

func (m *mockAsk) Ask(_ context.Context, query string, topK int) ([]domain.RankedDocument, error) {
	m.gotQuery = query
	m.gotTopK = topK
	return m.ranked, m.err
}

type mockHealth struct{ report healthuc.Report }

func (m *mockHealth) Check(_ context.Context) healthuc.Report { return m.report }

func newTestRouter(ask AskService, health HealthService) http.Handler {
	r := gochi.NewRouter()
	NewServer(ask, health, zap.NewNop()).Mount(r)
	return r
}

func ranked(id, text string, score float64, reranked bool) domain.RankedDocument {
	return domain.RankedDocument{
		ParentDocument: domain.ParentDocument{
			ID: id, Text: text, FilePath: "/d/" + id + ".md", FileType: "md", Score: 0.42,
		},
		RerankScore: score,
		Reranked:    reranked,
	}
}

func TestHandleAsk_Success(t *testing.T) {
	ask := &mockAsk{ranked: []domain.RankedDocument{ranked("doc1", "hello", 0.91, true)}}
	router := newTestRouter(ask, &mockHealth{})

	rec := httptest.NewRecorder()
	body := `{"query": "find hello", "top_k": 3}`
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ask.gotQuery != "find hello" || ask.gotTopK != 3 {
		t.Errorf("service got query=%q top_k=%d", ask.gotQuery, ask.gotTopK)
	}

	var resp struct {
		Documents []struct {
			DocID     string  `json:"doc_id"`
			FilePath  string  `json:"file_path"`
			FileType  string  `json:"file_type"`
			TextChunk string  `json:"text_chunk"`
			Score     float64 `json:"score"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Documents) != 1 {
		t.Fatalf("expected 1 document, got %d", len(resp.Documents))
	}
	d := resp.Documents[0]
	if d.DocID != "doc1" || d.TextChunk != "hello" || d.FileType != "md" {
		t.Errorf("unexpected document: %+v", d)
	}
	if d.Score != 0.91 {
		t.Errorf("reranked result must expose the rerank score, got %v", d.Score)
	}
}

func TestHandleAsk_FusedScoreWhenNotReranked(t *testing.T) {
	ask := &mockAsk{ranked: []domain.RankedDocument{ranked("doc1", "hello", 0, false)}}
	router := newTestRouter(ask, &mockHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query": "q"}`)))

	var resp struct {
		Documents []struct {
			Score float64 `json:"score"`
		} `json:"documents"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Documents[0].Score != 0.42 {
		t.Errorf("expected fused score 0.42, got %v", resp.Documents[0].Score)
	}
}

func TestHandleAsk_EmptyResultIsOK(t *testing.T) {
	ask := &mockAsk{ranked: []domain.RankedDocument{}}
	router := newTestRouter(ask, &mockHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query": "nothing"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("empty results must be 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"documents":[]`) {
		t.Errorf("expected empty documents array, got %s", rec.Body.String())
	}
}

func TestHandleAsk_BadJSON(t *testing.T) {
	router := newTestRouter(&mockAsk{}, &mockHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader("{not json")))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleAsk_EmptyQuery(t *testing.T) {
	ask := &mockAsk{err: domain.ErrEmptyQuery}
	router := newTestRouter(ask, &mockHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query": ""}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), codeValidationFailed) {
		t.Errorf("expected %s code, got %s", codeValidationFailed, rec.Body.String())
	}
}

func TestHandleAsk_BackendErrorIsBadGateway(t *testing.T) {
	ask := &mockAsk{err: fmt.Errorf("resolve parents: %w", domain.ErrSearchBackendError)}
	router := newTestRouter(ask, &mockHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query": "q"}`)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	// wrapped internals must not leak
	if strings.Contains(rec.Body.String(), "resolve parents") {
		t.Errorf("response leaks internals: %s", rec.Body.String())
	}
}

func TestHandleAsk_UnknownErrorIsInternal(t *testing.T) {
	ask := &mockAsk{err: fmt.Errorf("something odd")}
	router := newTestRouter(ask, &mockHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"query": "q"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "something odd") {
		t.Errorf("response leaks internals: %s", rec.Body.String())
	}
}

func TestHandleHealth_OK(t *testing.T) {
	h := &mockHealth{report: healthuc.Report{
		Status: healthuc.Healthy,
		Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckOK},
	}}
	router := newTestRouter(&mockAsk{}, h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandleHealth_UnhealthyIs503(t *testing.T) {
	h := &mockHealth{report: healthuc.Report{
		Status: healthuc.Unhealthy,
		Checks: map[string]healthuc.CheckResult{"store": healthuc.CheckError},
	}}
	router := newTestRouter(&mockAsk{}, h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestHandleHealth_DegradedStays200(t *testing.T) {
	h := &mockHealth{report: healthuc.Report{
		Status: healthuc.Degraded,
		Checks: map[string]healthuc.CheckResult{
			"store": healthuc.CheckOK,
			"llm":   healthuc.CheckError,
		},
	}}
	router := newTestRouter(&mockAsk{}, h)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("degraded must stay routable, got %d", rec.Code)
	}
}
