package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/platform"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/server"
)

func main() {
	var cfg server.Config
	flag.StringVar(&cfg.ListenAddr, "listen", "127.0.0.1:8440", "listen address")
	flag.StringVar(&cfg.DBPath, "db", "./vault.db", "path to the vault database")
	flag.StringVar(&cfg.MongoURI, "mongo", "", "MongoDB URI for remote backup push (optional)")
	flag.StringVar(&cfg.MongoDB, "mongo-db", "taskvault", "Mongo database name")
	flag.StringVar(&cfg.MongoCollection, "mongo-coll", "backups", "Mongo collection name")
	flag.StringVar(&cfg.VaultID, "vault-id", "primary", "backup document id")
	flag.Parse()

	logger := log.New(os.Stdout, "[vaultd] ", log.LstdFlags)

	if err := platform.DisableCoreDumps(); err != nil {
		logger.Printf("core dumps not disabled: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := server.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("startup: %v", err)
	}

	go func() {
		for range s.Vault().AutoLocked() {
			logger.Printf("vault auto-locked after inactivity")
		}
	}()

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Printf("listening on %s", cfg.ListenAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
	if err := s.Close(shutdownCtx); err != nil {
		logger.Printf("close: %v", err)
	}
}
