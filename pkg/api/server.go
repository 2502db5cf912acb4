package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/matlayer/pkg/cache"
	"github.com/matzehuels/matlayer/pkg/config"
	"github.com/matzehuels/matlayer/pkg/errors"
	"github.com/matzehuels/matlayer/pkg/export"
	"github.com/matzehuels/matlayer/pkg/httputil"
	"github.com/matzehuels/matlayer/pkg/material"
	"github.com/matzehuels/matlayer/pkg/project"
	"github.com/matzehuels/matlayer/pkg/render"
	"github.com/matzehuels/matlayer/pkg/render/nodelink"
)

// DefaultRenderTTL is how long rendered graphs stay cached.
const DefaultRenderTTL = 24 * time.Hour

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	store     project.Store
	cache     cache.Cache
	keyer     cache.Keyer
	logger    *log.Logger
	export    export.Settings
	matOpts   []material.Option
	metrics   *Metrics
	renderTTL time.Duration

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Option configures a Server.
type Option func(*Server)

// WithCache sets the render cache and its keyer.
func WithCache(c cache.Cache, keyer cache.Keyer) Option {
	return func(s *Server) {
		s.cache = c
		if keyer != nil {
			s.keyer = keyer
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithExportSettings sets the settings used for export plans.
func WithExportSettings(es export.Settings) Option {
	return func(s *Server) { s.export = es }
}

// WithMaterialOptions sets options applied to every loaded material.
func WithMaterialOptions(opts ...material.Option) Option {
	return func(s *Server) { s.matOpts = opts }
}

// WithMetrics exposes m at GET /metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New creates a server backed by store.
func New(store project.Store, opts ...Option) *Server {
	s := &Server{
		store:     store,
		cache:     cache.NewNullCache(),
		keyer:     cache.NewDefaultKeyer(),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		export:    export.FromConfig(config.Default().Export),
		renderTTL: DefaultRenderTTL,
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Route("/materials", func(r chi.Router) {
		r.Get("/", s.list)
		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", s.get)
			r.Post("/", s.create)
			r.Delete("/", s.remove)
			r.Post("/{target:layers|masks}/{op}", s.command)
			r.Get("/check", s.check)
			r.Get("/graph", s.graph)
			r.Get("/export", s.exportPlan)
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// lock serializes work on one material.
func (s *Server) lock(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	s.mu.Unlock()
	l.Lock()
	return l.Unlock
}

// load reads the named document and rebuilds its material.
func (s *Server) load(ctx context.Context, name string) (*project.Document, *material.Material, error) {
	doc, err := s.store.Get(ctx, name)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeStorage, err, "load %s", name)
	}
	if doc == nil {
		return nil, nil, errors.New(errors.ErrCodeNotFound, "material %s not found", name)
	}
	m, err := doc.Material(s.materialOptions()...)
	if err != nil {
		return nil, nil, err
	}
	return doc, m, nil
}

func (s *Server) materialOptions() []material.Option {
	return append([]material.Option{material.WithLogger(s.logger)}, s.matOpts...)
}

// =============================================================================
// Handlers
// =============================================================================

// CommandResponse is the body of a command request.
type CommandResponse struct {
	Status   string      `json:"status"`
	Selected int         `json:"selected"`
	Error    string      `json:"error,omitempty"`
	Code     errors.Code `json:"code,omitempty"`
}

// CheckResponse is the body of a check request.
type CheckResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.List(r.Context())
	if err != nil {
		httputil.WriteError(w, errors.Wrap(errors.ErrCodeStorage, err, "list materials"))
		return
	}
	if names == nil {
		names = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]string{"materials": names})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	_, m, err := s.load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	defer s.lock(name)()

	existing, err := s.store.Get(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, errors.Wrap(errors.ErrCodeStorage, err, "load %s", name))
		return
	}
	if existing != nil {
		httputil.WriteError(w, errors.New(errors.ErrCodeNameCollision, "material %s already exists", name))
		return
	}
	m, err := material.New(name, s.materialOptions()...)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := project.Save(r.Context(), s.store, m); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m.Snapshot())
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	defer s.lock(name)()
	if err := s.store.Delete(r.Context(), name); err != nil {
		httputil.WriteError(w, errors.Wrap(errors.ErrCodeStorage, err, "delete %s", name))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) command(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	target := material.Target(chi.URLParam(r, "target"))
	op := material.Op(chi.URLParam(r, "op"))

	var args material.Args
	if err := httputil.DecodeJSON(r, &args); err != nil {
		httputil.WriteError(w, err)
		return
	}

	defer s.lock(name)()
	_, m, err := s.load(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := m.Exec(r.Context(), target, op, args)
	if err != nil {
		httputil.WriteJSON(w, httputil.StatusFor(err), CommandResponse{
			Status:   res.Status,
			Selected: res.Selected,
			Error:    errors.UserMessage(err),
			Code:     errors.GetCode(err),
		})
		return
	}
	if err := project.Save(r.Context(), s.store, m); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CommandResponse{Status: res.Status, Selected: res.Selected})
}

func (s *Server) check(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	doc, err := s.store.Get(r.Context(), name)
	if err != nil {
		httputil.WriteError(w, errors.Wrap(errors.ErrCodeStorage, err, "load %s", name))
		return
	}
	if doc == nil {
		httputil.WriteError(w, errors.New(errors.ErrCodeNotFound, "material %s not found", name))
		return
	}
	// Document.Material runs the consistency check.
	if _, err := doc.Material(s.materialOptions()...); err != nil {
		httputil.WriteJSON(w, http.StatusOK, CheckResponse{Error: errors.UserMessage(err)})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, CheckResponse{OK: true})
}

var contentTypes = map[string]string{
	render.FormatDOT: "text/vnd.graphviz",
	render.FormatSVG: "image/svg+xml",
	render.FormatPDF: "application/pdf",
	render.FormatPNG: "image/png",
}

func (s *Server) graph(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = render.FormatSVG
	}
	ct, ok := contentTypes[format]
	if !ok {
		httputil.WriteError(w, errors.New(errors.ErrCodeInvalidInput, "unknown graph format %q", format))
		return
	}
	groups, _ := strconv.ParseBool(r.URL.Query().Get("groups"))

	doc, m, err := s.load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	data, hit, err := nodelink.Render(r.Context(), s.cache, s.keyer, nodelink.Request{
		Tree:    m.Tree,
		DocHash: doc.Hash(),
		Format:  format,
		Options: nodelink.Options{Groups: groups},
		TTL:     s.renderTTL,
	})
	if err != nil {
		httputil.WriteError(w, errors.Wrap(errors.ErrCodeInternal, err, "render graph"))
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("X-Cache", map[bool]string{true: "HIT", false: "MISS"}[hit])
	_, _ = w.Write(data)
}

func (s *Server) exportPlan(w http.ResponseWriter, r *http.Request) {
	object := r.URL.Query().Get("object")
	doc, m, err := s.load(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	plan, err := export.BuildCached(r.Context(), s.cache, s.keyer, doc.Hash(), m, object, s.export, s.renderTTL)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, plan)
}
