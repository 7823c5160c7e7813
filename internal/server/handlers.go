package server

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/graphsnap/pkg/errors"
	"github.com/matzehuels/graphsnap/pkg/inspect"
	"github.com/matzehuels/graphsnap/pkg/snapshot"
	"github.com/matzehuels/graphsnap/pkg/tree"
)

// =============================================================================
// Document tooling
// =============================================================================

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	indent, err := parseIndent(r.URL.Query().Get("indent"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if _, err := tree.Parse(body); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidJSON, err, "parse document"))
		return
	}

	var out bytes.Buffer
	if indent == "" {
		err = tree.Compact(&out, body)
	} else {
		err = tree.Indent(&out, body, indent)
	}
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidJSON, err, "format document"))
		return
	}
	out.WriteByte('\n')
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(out.Bytes())
}

// parseIndent maps the indent query parameter to an indent string: empty
// for compact output, "tab" for a tab, or a number of spaces up to 8.
func parseIndent(v string) (string, error) {
	switch v {
	case "", "0":
		return "", nil
	case "tab":
		return "\t", nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 || n > 8 {
		return "", errors.New(errors.ErrCodeInvalidInput, "indent must be 0-8 or \"tab\", got %q", v)
	}
	return strings.Repeat(" ", n), nil
}

type checkResponse struct {
	OK       bool              `json:"ok"`
	Problems []inspect.Problem `json:"problems"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	problems := inspect.Check(doc)
	if problems == nil {
		problems = []inspect.Problem{}
	}
	s.writeJSON(w, http.StatusOK, checkResponse{OK: len(problems) == 0, Problems: problems})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inspect.Summarize(doc))
}

// =============================================================================
// Snapshots
// =============================================================================

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if infos == nil {
		infos = []snapshot.Info{}
	}
	s.writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handlePutSnapshot(w http.ResponseWriter, r *http.Request) {
	body, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := snapshot.New(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.store.Put(r.Context(), snap); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/snapshots/"+snap.ID)
	s.writeJSON(w, http.StatusCreated, snap.Info())
}

func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("ETag", strconv.Quote(snap.Hash))
	h.Set("X-Snapshot-Root-Type", snap.RootType)
	if strings.Contains(r.Header.Get("If-None-Match"), snap.Hash) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	_, _ = w.Write(snap.Data)
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}
	return body, nil
}

func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (tree.Node, error) {
	body, err := s.readBody(w, r)
	if err != nil {
		return nil, err
	}
	doc, err := tree.Parse(body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidJSON, err, "parse document")
	}
	return doc, nil
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= 500 {
		s.logger.Error("request failed", "err", err)
	}
	s.writeJSON(w, status, errorResponse{Code: string(code), Error: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidJSON, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidID, errors.ErrCodeInvalidTag:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "err", err)
	}
}
