package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/lawbridge/lawbridge/internal/adapter"
	"github.com/lawbridge/lawbridge/internal/db"
	"github.com/lawbridge/lawbridge/internal/export"
	"github.com/lawbridge/lawbridge/internal/present/format"
	"github.com/lawbridge/lawbridge/internal/segment"
	"github.com/lawbridge/lawbridge/internal/util"
	"github.com/lawbridge/lawbridge/pkg/api"
)

// Server serves the chat API backed by a Store and an Exporter.
type Server struct {
	cfg   *viper.Viper
	store *db.Store
	exp   *export.Exporter
	log   *zap.Logger
}

func New(cfg *viper.Viper, store *db.Store, exp *export.Exporter, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{cfg: cfg, store: store, exp: exp, log: log}
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /v1/render", s.auth(s.handleRender))
	mux.HandleFunc("POST /v1/export", s.auth(s.handleExport))
	mux.HandleFunc("GET /v1/conversations", s.auth(s.handleList))
	mux.HandleFunc("POST /v1/conversations", s.auth(s.handleCreate))
	mux.HandleFunc("GET /v1/conversations/{id}", s.auth(s.handleGet))
	mux.HandleFunc("DELETE /v1/conversations/{id}", s.auth(s.handleDelete))
	mux.HandleFunc("POST /v1/conversations/{id}/turns", s.auth(s.handleAppend))
	mux.HandleFunc("GET /v1/conversations/{id}/export", s.auth(s.handleExportStored))
	return s.logRequests(mux)
}

// auth requires "Authorization: Bearer <auth.token>" when a token is configured.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimSpace(s.cfg.GetString("auth.token"))
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := r.Header.Get("Authorization")
		if !strings.HasPrefix(got, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(got, "Bearer ")) != tok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		if max := s.cfg.GetInt64("http.max_body"); max > 0 {
			r.Body = http.MaxBytesReader(rec, r.Body, max)
		}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("took", time.Since(start)))
	})
}

type renderRequest struct {
	Content    string   `json:"content"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type renderResponse struct {
	Blocks api.Document `json:"blocks"`
	Tree   format.Tree  `json:"tree"`
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if !s.decode(w, r, &req) {
		return
	}
	if !api.ValidConfidence(req.Confidence) {
		writeError(w, http.StatusBadRequest, "confidence must be within [0, 1]")
		return
	}
	doc := segment.Segment(req.Content)
	tree := format.BuildTree(doc, req.Confidence)

	switch f := r.URL.Query().Get("format"); f {
	case "", "json":
		writeJSON(w, http.StatusOK, renderResponse{Blocks: doc, Tree: tree})
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := format.WriteHTML(w, tree); err != nil {
			s.log.Error("render html", zap.Error(err))
		}
	case "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = io.WriteString(w, format.Markdown(tree))
	case "plain":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		width := s.cfg.GetInt("render.width")
		if n, err := strconv.Atoi(r.URL.Query().Get("width")); err == nil && n > 0 {
			width = n
		}
		_ = format.WritePlain(w, tree, width)
	default:
		writeError(w, http.StatusBadRequest, "unknown format "+strconv.Quote(f))
	}
}

type exportRequest struct {
	Title    string     `json:"title,omitempty"`
	Subtitle string     `json:"subtitle,omitempty"`
	Prefix   string     `json:"prefix,omitempty"`
	Bot      string     `json:"bot,omitempty"`
	Turns    []api.Turn `json:"turns"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !s.decode(w, r, &req) {
		return
	}
	conv := api.Conversation{Title: req.Title, Bot: req.Bot}
	for i, t := range req.Turns {
		role, ok := api.ParseRole(string(t.Role))
		if !ok {
			writeError(w, http.StatusBadRequest, "turn "+strconv.Itoa(i)+": unknown role "+strconv.Quote(string(t.Role)))
			return
		}
		if !api.ValidConfidence(t.Confidence) {
			writeError(w, http.StatusBadRequest, "turn "+strconv.Itoa(i)+": confidence must be within [0, 1]")
			return
		}
		t.Role = role
		conv.Append(t)
	}
	s.writeExport(w, r, conv, export.Request{Title: req.Title, Subtitle: req.Subtitle, Prefix: req.Prefix})
}

func (s *Server) handleExportStored(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.load(w, r)
	if !ok {
		return
	}
	etag := `"` + conv.Hash() + `"`
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	s.writeExport(w, r, conv, export.Request{})
}

func (s *Server) writeExport(w http.ResponseWriter, r *http.Request, conv api.Conversation, req export.Request) {
	art, ok, err := s.exp.Export(r.Context(), conv, req)
	switch {
	case err != nil:
		s.log.Error("export", zap.String("conversation", conv.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Export failed, please try again")
		return
	case !ok:
		w.Header().Set("X-Export-Notice", export.NothingToExport)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+art.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(art.Bytes)))
	w.Header().Set("X-Export-Pages", strconv.Itoa(art.Pages))
	w.Header().Set("X-Content-Digest", art.Digest)
	_, _ = w.Write(art.Bytes)
}

type listResponse struct {
	Items []api.Summary `json:"items"`
	Page  api.Page      `json:"page"`
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	qs := r.URL.Query()
	q := api.ListQuery{
		Bot:    strings.TrimSpace(qs.Get("bot")),
		Cursor: strings.TrimSpace(qs.Get("cursor")),
		Limit:  50,
	}
	if ls := strings.TrimSpace(qs.Get("limit")); ls != "" {
		n, err := strconv.Atoi(ls)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad limit")
			return
		}
		q.Limit = n
	}
	if since := strings.TrimSpace(qs.Get("since")); since != "" {
		t, err := util.ParseSince(since, time.Now())
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad since")
			return
		}
		q.Since = t
	}
	items, page, err := s.store.Conversations.ListConversations(r.Context(), q)
	if err != nil {
		s.fail(w, err)
		return
	}
	if m := strings.TrimSpace(qs.Get("match")); m != "" {
		items = util.MatchSummaries(m, items)
	}
	if items == nil {
		items = []api.Summary{}
	}
	writeJSON(w, http.StatusOK, listResponse{Items: items, Page: page})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var c api.Conversation
	if !s.decode(w, r, &c) {
		return
	}
	out, err := s.store.Conversations.CreateConversation(r.Context(), c)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	conv, ok := s.load(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Conversations.DeleteConversation(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAppend stores one turn. Assistant payloads are normalised from
// whatever shape the upstream AI returned; ?role=user stores the body as a
// question verbatim.
func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	var turn api.Turn
	role := api.RoleAssistant
	if rs := r.URL.Query().Get("role"); rs != "" {
		var ok bool
		if role, ok = api.ParseRole(rs); !ok {
			writeError(w, http.StatusBadRequest, "unknown role "+strconv.Quote(rs))
			return
		}
	}
	if role == api.RoleUser {
		content := strings.TrimSpace(string(body))
		if content == "" {
			writeError(w, http.StatusBadRequest, "empty question")
			return
		}
		turn = api.Turn{Role: api.RoleUser, Content: content}
	} else {
		turn, err = adapter.Normalize(body)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	out, err := s.store.Conversations.AppendTurn(r.Context(), r.PathValue("id"), turn)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) (api.Conversation, bool) {
	conv, err := s.store.Conversations.GetConversation(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, err)
		return api.Conversation{}, false
	}
	return conv, true
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeBodyError(w, err)
		return false
	}
	return true
}

// fail maps store errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, db.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, db.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("store", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "bad request body")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
