// Package http exposes the assistant over a small JSON API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/sandevgo/mnemo/internal/core"
	"github.com/sandevgo/mnemo/internal/service/assistant"
	"github.com/sandevgo/mnemo/pkg/log"
)

const maxBodyBytes = 1 << 20

type Assistant interface {
	Respond(ctx context.Context, text string) (*assistant.Reply, error)
	History(ctx context.Context, limit int) ([]core.ChatEntry, error)
	Memories(ctx context.Context) ([]core.Memory, error)
}

// MemoryView is a memory without its embedding.
type MemoryView struct {
	ID                  int64   `json:"id"`
	Content             string  `json:"content"`
	CreatedAt           float64 `json:"created_at"`
	LastRecalled        float64 `json:"last_recalled"`
	RecallCount         int     `json:"recall_count"`
	ConsolidationFactor float64 `json:"consolidation_factor"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type Server struct {
	assistant  Assistant
	srv        *http.Server
	middleware []func(http.Handler) http.Handler
}

func NewServer(addr string, assistant Assistant, middleware ...func(http.Handler) http.Handler) *Server {
	s := &Server{
		assistant:  assistant,
		middleware: middleware,
	}
	s.srv = &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the routed handler. Every request gets ctx's logger, a
// request id and an access log line.
func (s *Server) Handler(ctx context.Context) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/test", s.handleStatus).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/chat", s.handleChat).Methods(http.MethodPost)
	api.HandleFunc("/chat/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/memories", s.handleMemories).Methods(http.MethodGet)

	var h http.Handler = r
	for i := len(s.middleware) - 1; i >= 0; i-- {
		h = s.middleware[i](h)
	}

	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)

	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(h)
	h = hlog.RequestIDHandler("req_id", "X-Request-Id")(h)
	return hlog.NewHandler(*log.FromCtx(ctx))(h)
}

// Recovery turns a handler panic into a 500 and logs it with ctx's logger.
func Recovery(ctx context.Context) func(http.Handler) http.Handler {
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(panicLogger{logger: log.FromCtx(ctx)}),
	)
}

type panicLogger struct {
	logger *zerolog.Logger
}

func (p panicLogger) Println(v ...interface{}) {
	p.logger.Error().Msg(fmt.Sprint(v...))
}

func (s *Server) Start(ctx context.Context) error {
	s.srv.Handler = s.Handler(ctx)
	s.srv.BaseContext = func(net.Listener) context.Context { return ctx }

	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("starting http server")
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "Server is running"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "No message provided")
		return
	}

	reply, err := s.assistant.Respond(r.Context(), req.Message)
	switch {
	case errors.Is(err, core.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "No message provided")
	case err != nil:
		hlog.FromRequest(r).Error().Err(err).Msg("chat turn failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	default:
		writeJSON(w, http.StatusOK, reply)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.assistant.History(r.Context(), 0)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("load chat history failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if entries == nil {
		entries = []core.ChatEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleMemories(w http.ResponseWriter, r *http.Request) {
	memories, err := s.assistant.Memories(r.Context())
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("load memories failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	views := make([]MemoryView, 0, len(memories))
	for _, m := range memories {
		views = append(views, MemoryView{
			ID:                  m.ID,
			Content:             m.Content,
			CreatedAt:           m.CreatedAt,
			LastRecalled:        m.LastRecalled,
			RecallCount:         m.RecallCount,
			ConsolidationFactor: m.ConsolidationFactor,
		})
	}
	writeJSON(w, http.StatusOK, views)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
