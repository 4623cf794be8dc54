package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flashlark/larkmemo/internal/biz/domain"
	"github.com/flashlark/larkmemo/internal/service"
)

// Server provides the local HTTP API
type Server struct {
	svc    *service.MemoService
	logger *slog.Logger
	addr   string
	server *http.Server
}

// NewServer creates a new API server listening on addr
func NewServer(svc *service.MemoService, logger *slog.Logger, addr string) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, logger: logger, addr: addr}
}

// Router builds the route table
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/memo", s.handleSendMemo)
		r.Get("/chats", s.handleListChats)

		r.Route("/history", func(r chi.Router) {
			r.Get("/", s.handleListHistory)
			r.Delete("/", s.handleClearHistory)
			r.Get("/stats", s.handleHistoryStats)
			r.Delete("/{id}", s.handleDeleteHistory)
		})

		r.Route("/custom-chats", func(r chi.Router) {
			r.Get("/", s.handleListCustomChats)
			r.Post("/", s.handleCreateCustomChat)
			r.Put("/{id}", s.handleUpdateCustomChat)
			r.Delete("/{id}", s.handleDeleteCustomChat)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", s.handleListTemplates)
			r.Get("/{id}/render", s.handleRenderTemplate)
		})

		r.Get("/settings/status", s.handleSettingsStatus)
	})
	return r
}

// Start serves until Stop is called
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("api server listening", slog.String("addr", s.addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("api request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// ============ Memo ============

// SendMemoRequest is the body of POST /api/memo
type SendMemoRequest struct {
	domain.MemoRequest
	WaitReply bool `json:"wait_reply"`
}

func (s *Server) handleSendMemo(w http.ResponseWriter, r *http.Request) {
	var req SendMemoRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := fillSizes(req.Files); err != nil {
		writeError(w, err)
		return
	}

	out, err := s.svc.Send(r.Context(), req.MemoRequest, req.WaitReply)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// fillSizes sets each size from the decoded base64 payload.
// A declared size must be absent or match the payload.
func fillSizes(files []domain.AttachedFile) error {
	for i := range files {
		f := &files[i]
		if f.Size < 0 {
			return &domain.ValidationError{Entity: "attachments", Problems: []string{f.Name + " has a negative size"}}
		}
		if f.Data == "" {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			return &domain.ValidationError{Entity: "attachments", Problems: []string{f.Name + " is not valid base64"}}
		}
		actual := int64(len(raw))
		if f.Size != 0 && f.Size != actual {
			return &domain.ValidationError{Entity: "attachments", Problems: []string{
				fmt.Sprintf("%s declares %d bytes but carries %d", f.Name, f.Size, actual),
			}}
		}
		f.Size = actual
	}
	return nil
}

func (s *Server) handleListChats(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.ListChats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	warnings := make([]string, 0, len(result.Warnings))
	for _, pw := range result.Warnings {
		warnings = append(warnings, pw.Error())
	}
	writeJSON(w, http.StatusOK, map[string]any{"chats": result.Chats, "warnings": warnings})
}

// ============ History ============

func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	uc := s.svc.Usecases().History
	var (
		entries []domain.HistoryEntry
		err     error
	)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		entries, err = uc.Search(r.Context(), q)
	} else {
		entries, err = uc.List(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": nonNil(entries)})
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.Usecases().History.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleDeleteHistory(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.Usecases().History.Delete(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !ok {
		err = domain.ErrNotFound
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Usecases().History.Clear(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============ Custom chats ============

func (s *Server) handleListCustomChats(w http.ResponseWriter, r *http.Request) {
	chats, err := s.svc.Usecases().CustomChat.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"custom_chats": nonNil(chats)})
}

func (s *Server) handleCreateCustomChat(w http.ResponseWriter, r *http.Request) {
	var chat domain.CustomChat
	if !decodeBody(w, r, &chat) {
		return
	}
	created, err := s.svc.Usecases().CustomChat.Create(r.Context(), chat)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateCustomChat(w http.ResponseWriter, r *http.Request) {
	var patch domain.CustomChatPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	updated, err := s.svc.Usecases().CustomChat.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCustomChat(w http.ResponseWriter, r *http.Request) {
	ok, err := s.svc.Usecases().CustomChat.Delete(r.Context(), chi.URLParam(r, "id"))
	if err == nil && !ok {
		err = domain.ErrNotFound
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============ Templates ============

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := s.svc.Usecases().Template.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": templates})
}

func (s *Server) handleRenderTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	content, err := s.svc.Usecases().Template.Render(r.Context(), id, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "content": content})
}

// ============ Settings ============

func (s *Server) handleSettingsStatus(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Usecases().Settings.Status(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// ============ Helpers ============

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 80<<20)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// StatusFor maps an error to its HTTP status
func StatusFor(err error) int {
	var (
		vErr    *domain.ValidationError
		cfgErr  *domain.ConfigurationError
		authErr *domain.AuthenticationError
		delErr  *domain.DeliveryError
		upErr   *domain.UploadError
	)
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest
	case errors.As(err, &cfgErr):
		return http.StatusPreconditionFailed
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &delErr), errors.As(err, &upErr):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, StatusFor(err), map[string]string{"error": err.Error()})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
