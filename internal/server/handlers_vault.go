package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/crypto"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/vault"
)

type secretRequest struct {
	Secret string `json:"secret"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]string{"state": s.vault.State().String()})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req secretRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.vault.Create(r.Context(), req.Secret); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Printf("vault created")
	writeJSONStatus(w, http.StatusCreated, map[string]string{"state": s.vault.State().String()})
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.rlUnlock.allow(getClientIP(r)) {
		tooMany(w, 60)
		return
	}
	var req secretRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.vault.Unlock(r.Context(), req.Secret); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"state": s.vault.State().String()})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.vault.Lock()
	writeJSON(w, map[string]string{"state": s.vault.State().String()})
}

func (s *Server) handleWipe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.vault.Wipe(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Printf("vault wiped")
	writeJSON(w, map[string]string{"state": s.vault.State().String()})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	bundle, err := s.vault.ExportBackup(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, bundle)
}

type importRequest struct {
	Secret string          `json:"secret"`
	Bundle json.RawMessage `json:"bundle"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req importRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.vault.ImportBackup(r.Context(), req.Bundle, req.Secret); err != nil {
		writeError(w, err)
		return
	}
	s.logger.Printf("backup imported")
	writeJSON(w, map[string]string{"state": s.vault.State().String()})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.push == nil {
		http.Error(w, "no backup transport configured", http.StatusNotImplemented)
		return
	}
	if err := s.vault.PushBackup(r.Context(), s.push); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]bool{"pushed": true})
}

func (s *Server) handleStrength(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req secretRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, vault.CheckStrength(req.Secret))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	length := 20
	if q := r.URL.Query().Get("length"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 8 || n > 128 {
			http.Error(w, "length must be 8-128", http.StatusBadRequest)
			return
		}
		length = n
	}
	pw, err := crypto.GeneratePassword(length)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]string{"password": pw})
}
