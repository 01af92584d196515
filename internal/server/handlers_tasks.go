package server

import (
	"net/http"
	"strings"

	"github.com/EdoSag/Zero-Trust-Tasks/internal/task"
	"github.com/EdoSag/Zero-Trust-Tasks/internal/vault"
)

type addTaskRequest struct {
	ParentPath []string  `json:"parentPath"`
	Task       task.Task `json:"task"`
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		doc, err := s.vault.Document()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, doc)

	case http.MethodPost:
		var req addTaskRequest
		if !decodeBody(w, r, &req) {
			return
		}
		var (
			added task.Task
			err   error
		)
		if len(req.ParentPath) == 0 {
			added, err = s.vault.AddTask(r.Context(), req.Task)
		} else {
			added, err = s.vault.AddSubtask(r.Context(), req.ParentPath, req.Task)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, added)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTaskByPath addresses one task by its id path, ancestors first:
// /api/tasks/{ancestorID}/.../{taskID}
func (s *Server) handleTaskByPath(w http.ResponseWriter, r *http.Request) {
	raw := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/tasks/"), "/")
	if raw == "" {
		http.NotFound(w, r)
		return
	}
	path := strings.Split(raw, "/")

	switch r.Method {
	case http.MethodGet:
		doc, err := s.vault.Document()
		if err != nil {
			writeError(w, err)
			return
		}
		t, err := task.Find(doc.Tasks, path)
		if err != nil {
			writeError(w, vault.ErrTaskNotFound)
			return
		}
		writeJSON(w, t)

	case http.MethodPut:
		var patch task.Patch
		if !decodeBody(w, r, &patch) {
			return
		}
		updated, err := s.vault.UpdateTask(r.Context(), path, patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, updated)

	case http.MethodDelete:
		if err := s.vault.DeleteTask(r.Context(), path); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type categoryRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		doc, err := s.vault.Document()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, doc.Categories)

	case http.MethodPost:
		var req categoryRequest
		if !decodeBody(w, r, &req) {
			return
		}
		cats, err := s.vault.AddCategory(r.Context(), req.Name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, cats)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCategoryByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/categories/")
	if name == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	cats, err := s.vault.RemoveCategory(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, cats)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.vault.Settings()
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, settings)

	case http.MethodPut:
		var settings vault.Settings
		if !decodeBody(w, r, &settings) {
			return
		}
		if err := s.vault.SaveSettings(r.Context(), settings); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, settings)

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type credentialRequest struct {
	ID      string `json:"id"`
	Payload []byte `json:"payload"`
}

func (s *Server) handleCredentials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		creds, err := s.vault.Credentials(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, creds)

	case http.MethodPost:
		var req credentialRequest
		if !decodeBody(w, r, &req) {
			return
		}
		if err := s.vault.RegisterCredential(r.Context(), req.ID, req.Payload); err != nil {
			writeError(w, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, map[string]string{"id": req.ID})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleCredentialByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/credentials/")
	if id == "" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.vault.RemoveCredential(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
