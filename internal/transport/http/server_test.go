package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/assistant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockAssistant struct {
	panics   bool
	reply    *assistant.Reply
	history  []core.ChatEntry
	memories []core.Memory
	err      error
	got      string
}

func (m *mockAssistant) Respond(_ context.Context, text string) (*assistant.Reply, error) {
	m.got = text
	if m.panics {
		panic("completion client exploded")
	}
	if strings.TrimSpace(text) == "" {
		return nil, core.ErrEmptyMessage
	}
	return m.reply, m.err
}

func (m *mockAssistant) History(context.Context, int) ([]core.ChatEntry, error) {
	return m.history, m.err
}

func (m *mockAssistant) Memories(context.Context) ([]core.Memory, error) {
	return m.memories, m.err
}

func serve(t *testing.T, a Assistant, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	h := NewServer(":0", a).Handler(context.Background())
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestServer_Status(t *testing.T) {
	rec := serve(t, &mockAssistant{}, http.MethodGet, "/test", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Server is running", decode[map[string]string](t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_Chat(t *testing.T) {
	reply := &assistant.Reply{
		Response: "You like tea.",
		MemoriesUsed: []core.ScoredMemory{
			{Memory: core.Memory{ID: 3, Content: "I like tea", RecallCount: 1}, Relevance: 0.95, RecallProbability: 0.9},
		},
	}

	tests := []struct {
		name       string
		assistant  *mockAssistant
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "ok",
			assistant:  &mockAssistant{reply: reply},
			body:       `{"message":"what do I drink?"}`,
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing message",
			assistant:  &mockAssistant{reply: reply},
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No message provided",
		},
		{
			name:       "invalid json",
			assistant:  &mockAssistant{reply: reply},
			body:       `{"message":`,
			wantStatus: http.StatusBadRequest,
			wantError:  "No message provided",
		},
		{
			name:       "store failure",
			assistant:  &mockAssistant{err: errors.New("disk full")},
			body:       `{"message":"hi"}`,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(t, tt.assistant, http.MethodPost, "/api/chat", tt.body)

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, decode[map[string]string](t, rec)["error"])
				return
			}

			got := decode[assistant.Reply](t, rec)
			assert.Equal(t, "You like tea.", got.Response)
			require.Len(t, got.MemoriesUsed, 1)
			assert.Equal(t, int64(3), got.MemoriesUsed[0].ID)
			assert.InDelta(t, 0.95, got.MemoriesUsed[0].Relevance, 1e-12)
			assert.Equal(t, "what do I drink?", tt.assistant.got)
		})
	}
}

func TestServer_History(t *testing.T) {
	a := &mockAssistant{history: []core.ChatEntry{
		{Role: core.RoleUser, Content: "hi", Timestamp: 1},
		{Role: core.RoleAssistant, Content: "hello", Timestamp: 1, MemoriesUsed: []int64{0}},
	}}

	rec := serve(t, a, http.MethodGet, "/api/chat/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[[]core.ChatEntry](t, rec)
	assert.Equal(t, a.history, got)

	rec = serve(t, &mockAssistant{}, http.MethodGet, "/api/chat/history", "")
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestServer_MemoriesOmitVectors(t *testing.T) {
	a := &mockAssistant{memories: []core.Memory{
		{ID: 0, Content: "tea", Vector: []float64{0.1, 0.2}, CreatedAt: 10, LastRecalled: 20, RecallCount: 1, ConsolidationFactor: 1.7},
	}}

	rec := serve(t, a, http.MethodGet, "/api/memories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "vector")

	got := decode[[]MemoryView](t, rec)
	assert.Equal(t, []MemoryView{
		{ID: 0, Content: "tea", CreatedAt: 10, LastRecalled: 20, RecallCount: 1, ConsolidationFactor: 1.7},
	}, got)
}

func TestServer_CORS(t *testing.T) {
	h := NewServer(":0", &mockAssistant{}).Handler(context.Background())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_MethodNotAllowed(t *testing.T) {
	rec := serve(t, &mockAssistant{}, http.MethodGet, "/api/chat", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Middleware(t *testing.T) {
	var order []string
	mw := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := NewServer(":0", &mockAssistant{}, mw("first"), mw("second")).Handler(context.Background())
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestServer_RecoveryMiddleware(t *testing.T) {
	h := NewServer(":0", &mockAssistant{panics: true}, Recovery(context.Background())).Handler(context.Background())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	require.NotPanics(t, func() { h.ServeHTTP(rec, req) })

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	// the server keeps serving afterwards
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
