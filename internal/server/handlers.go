package server

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/sean-lockwood/crimson-ins-submit/schema"
	"github.com/sean-lockwood/crimson-ins-submit/submission"
)

func (s *Server) handleDescription(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/x-yaml")
	_, _ = w.Write(s.doc)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Key      string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed login request")
		return
	}
	hash, ok := s.users[req.Username]
	if !ok || bcrypt.CompareHashAndPassword(hash, []byte(req.Key)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := generateToken(s.cfg.JWTSecret, req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "token generation failed")
		return
	}
	s.log.Info("user logged in", zap.String("username", req.Username))
	writeData(w, map[string]string{"token": token})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	// Tokens are stateless; logout is acknowledged so clients can drop
	// theirs.
	writeData(w, map[string]string{"status": "logged out"})
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request) {
	instrument := chi.URLParam(r, "instrument")
	if !submission.ValidInstrument(s.cfg.Observatory, instrument) {
		writeError(w, http.StatusBadRequest, "unknown instrument "+instrument)
		return
	}
	user := requestUser(r.Context())
	if err := s.locks.Acquire(instrument, user); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.log.Info("lock acquired", zap.String("instrument", instrument), zap.String("username", user))
	writeData(w, map[string]string{"instrument": instrument})
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	instrument := chi.URLParam(r, "instrument")
	user := requestUser(r.Context())
	if err := s.locks.Release(instrument, user); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	s.log.Info("lock released", zap.String("instrument", instrument), zap.String("username", user))
	writeData(w, map[string]string{"instrument": instrument})
}

// certifiable file suffixes accepted for delivery.
var certifiableSuffixes = []string{".fits", ".asdf", ".json", ".yaml"}

func (s *Server) handleCertify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		File string `json:"file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.File == "" {
		writeError(w, http.StatusBadRequest, "malformed certify request")
		return
	}
	ext := strings.ToLower(filepath.Ext(req.File))
	for _, ok := range certifiableSuffixes {
		if ext == ok {
			writeData(w, map[string]string{"file": req.File, "status": "certified"})
			return
		}
	}
	writeError(w, http.StatusUnprocessableEntity, "file "+req.File+" is not a recognized reference file type")
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart upload")
		return
	}
	var staged []string
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
			return
		}
		if part.FormName() != "files" || part.FileName() == "" {
			continue
		}
		dst := filepath.Join(s.cfg.StagingDir, filepath.Base(part.FileName()))
		out, err := os.Create(dst)
		if err == nil {
			_, err = io.Copy(out, part)
			out.Close()
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "stage "+part.FileName()+": "+err.Error())
			return
		}
		staged = append(staged, filepath.Base(part.FileName()))
	}
	if len(staged) == 0 {
		writeError(w, http.StatusBadRequest, "no files in upload")
		return
	}
	s.log.Info("files staged", zap.Strings("files", staged))
	writeData(w, map[string]any{"staged": staged})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read submission: "+err.Error())
		return
	}
	fields := map[string]any{}
	if err := yaml.Unmarshal(body, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "malformed submission document")
		return
	}

	// Mirror the client-side checks; the server is the authority. Empty
	// text is the record's constructed state: flagged when required,
	// accepted when optional, and never run through the choice check.
	var empty []string
	for _, def := range s.form.All() {
		v, present := fields[def.Key]
		if !present {
			writeError(w, http.StatusUnprocessableEntity, "missing key "+def.Key)
			return
		}
		if sv, ok := v.(string); ok && sv == "" {
			if def.Required {
				empty = append(empty, def.Key)
			}
			continue
		}
		if _, err := schema.Validate(def, v); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
	}
	for key := range fields {
		if !s.form.Has(key) {
			writeError(w, http.StatusUnprocessableEntity, "unexpected key "+key)
			return
		}
	}
	if len(empty) > 0 {
		writeError(w, http.StatusUnprocessableEntity, "these keywords cannot be empty: "+strings.Join(empty, ", "))
		return
	}

	user := requestUser(r.Context())
	instrument, _ := fields["instrument"].(string)
	if s.locks.Holder(instrument) != user {
		writeError(w, http.StatusConflict, "you do not hold the lock for instrument "+instrument)
		return
	}

	id := s.store.Create(&Submission{
		User:       user,
		Instrument: instrument,
		Fields:     fields,
	})
	// Accepting the delivery releases the instrument lock.
	if err := s.locks.Release(instrument, user); err != nil {
		s.log.Warn("lock release after submit failed", zap.Error(err))
	}
	s.log.Info("submission accepted",
		zap.String("id", id),
		zap.String("instrument", instrument),
		zap.String("username", user),
	)
	writeData(w, map[string]string{"id": id})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.store.List())
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sub, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeData(w, sub)
}
