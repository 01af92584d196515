package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/storage"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/sync"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/vault"

	"golang.org/x/time/rate"
)

// Server is the local HTTP surface over one vault. It never sees plaintext
// beyond a request's lifetime and never logs secrets or task content.
type Server struct {
	cfg    Config
	mux    *http.ServeMux
	vault  *vault.Vault
	store  storage.Store
	push   sync.Transport
	logger *log.Logger

	rlUnlock *multiLimiter
}

func New(ctx context.Context, cfg Config) (*Server, error) {
	cfg.setDefaults()

	store, err := storage.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return nil, err
	}
	v, err := vault.Open(ctx, store)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		mux:    http.NewServeMux(),
		vault:  v,
		store:  store,
		logger: log.New(os.Stdout, "[vaultd] ", log.LstdFlags|log.Lshortfile),
	}

	if cfg.MongoURI != "" {
		tr, err := sync.NewMongoTransport(ctx, cfg.MongoURI, cfg.MongoDB, cfg.MongoCollection, cfg.VaultID)
		if err != nil {
			s.logger.Printf("backup transport unavailable: %v", err)
		} else {
			s.push = tr
		}
	}

	perWindow := func(n int, window time.Duration) float64 { return float64(n) / window.Seconds() }
	s.rlUnlock = newMultiLimiter(rate.Limit(perWindow(10, time.Minute)), 10, 1*time.Hour)

	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Printf("panic: %v", rec)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}()

	s.addDefaultHeaders(w, r)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	// any API interaction counts as activity for the auto-lock clock
	if strings.HasPrefix(r.URL.Path, "/api/") {
		s.vault.RecordActivity()
	}
	s.mux.ServeHTTP(w, r)
}

func (s *Server) Handler() http.Handler { return s }

// Vault exposes the underlying state machine to the process owner, for
// auto-lock notifications and shutdown.
func (s *Server) Vault() *vault.Vault { return s.vault }

// Close locks the vault and releases the store and the backup transport.
func (s *Server) Close(ctx context.Context) error {
	s.vault.Close()
	if mt, ok := s.push.(*sync.MongoTransport); ok && mt != nil {
		if err := mt.Close(ctx); err != nil {
			s.logger.Printf("transport close: %v", err)
		}
	}
	return s.store.Close()
}

func (s *Server) addDefaultHeaders(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	}
}
