package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	m "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"scoresheet/internal/config"
	"scoresheet/internal/db"
	"scoresheet/internal/logging"
	"scoresheet/internal/scores"
	"scoresheet/internal/worker"
)

// Ledger stores the history of saves.
type Ledger interface {
	Record(ctx context.Context, e *db.SaveEntry) error
	Recent(ctx context.Context, limit int) ([]db.SaveEntry, error)
	Ping(ctx context.Context) error
}

// Mirror queues a saved file for copying to object storage.
type Mirror interface {
	EnqueueMirror(ctx context.Context, p worker.MirrorPayload) error
}

// Deps are the collaborators of the server. Ledger and Mirror are optional.
type Deps struct {
	Config config.Config
	Log    *zap.Logger
	Ledger Ledger
	Mirror Mirror
}

type Server struct {
	cfg       config.Config
	log       *zap.Logger
	loader    *scores.Loader
	persister *scores.Persister
	sessions  *sessionStore
	ledger    Ledger
	mirror    Mirror
}

func New(d Deps) *Server {
	log := logging.OrNop(d.Log)
	return &Server{
		cfg:       d.Config,
		log:       log,
		loader:    scores.NewLoader(d.Config.Columns, log),
		persister: scores.NewPersister(log),
		sessions:  newSessionStore(64),
		ledger:    d.Ledger,
		mirror:    d.Mirror,
	}
}

// NewServer wires the router into an http.Server listening on the
// configured address.
func NewServer(d Deps) *http.Server {
	s := New(d)
	return &http.Server{
		Addr:              d.Config.ListenAddr(),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(m.RequestID, m.RealIP, RequestLogger(s.log), m.Recoverer)

	r.Get("/", s.index)
	r.Post("/sessions", s.upload)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", s.getSession)
		r.Patch("/", s.edit)
		r.Post("/save", s.save)
		r.Get("/download", s.download)
	})

	// Admin/API-token protected
	if s.cfg.APIToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(RequireAPIToken(s.cfg.APIToken))
			r.Get("/history", s.history)
		})
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if s.ledger != nil {
			if err := s.ledger.Ping(r.Context()); err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "db error"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads an optional JSON body; an empty body leaves v untouched.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
