package server

import "net/http"

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/health", s.handleHealth)

	s.mux.HandleFunc("/api/vault/status", s.handleStatus)
	s.mux.HandleFunc("/api/vault/create", s.handleCreate)
	s.mux.HandleFunc("/api/vault/unlock", s.handleUnlock)
	s.mux.HandleFunc("/api/vault/lock", s.handleLock)
	s.mux.HandleFunc("/api/vault/wipe", s.handleWipe)
	s.mux.HandleFunc("/api/vault/export", s.handleExport)
	s.mux.HandleFunc("/api/vault/import", s.handleImport)
	s.mux.HandleFunc("/api/vault/push", s.handlePush)
	s.mux.HandleFunc("/api/strength", s.handleStrength)
	s.mux.HandleFunc("/api/generate", s.handleGenerate)

	s.mux.HandleFunc("/api/tasks", s.handleTasks)
	s.mux.HandleFunc("/api/tasks/", s.handleTaskByPath)
	s.mux.HandleFunc("/api/categories", s.handleCategories)
	s.mux.HandleFunc("/api/categories/", s.handleCategoryByName)
	s.mux.HandleFunc("/api/settings", s.handleSettings)
	s.mux.HandleFunc("/api/credentials", s.handleCredentials)
	s.mux.HandleFunc("/api/credentials/", s.handleCredentialByID)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
