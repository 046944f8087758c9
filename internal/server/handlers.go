package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roach88/expertlog/internal/record"
	"github.com/roach88/expertlog/internal/render"
)

const maxBodyBytes = 1 << 20

// readBody reads at most maxBodyBytes of the request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &record.ValidationError{Reason: fmt.Sprintf("body exceeds %d bytes", tooLarge.Limit)}
		}
		return nil, &record.ValidationError{Reason: "unreadable body: " + err.Error()}
	}
	return body, nil
}

// pathID parses the {id} route variable as a log identifier.
func (s *Server) pathID(r *http.Request) (record.ID, error) {
	raw := mux.Vars(r)["id"]
	id, err := record.ParseID(raw, s.decode.LogIDs)
	if err != nil || id.IsZero() {
		return record.ID{}, &record.ValidationError{Field: "id", Reason: fmt.Sprintf("invalid log identifier %q", raw)}
	}
	return id, nil
}

func (*Server) handleRoot() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "expertlog backend is running")
	}
}

func (s *Server) handleSaveLog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		l, err := record.DecodeLog(body, s.decode)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := s.writer.SaveLog(r.Context(), l)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, writeResponse{Success: true, LogID: &res.ID, Replicated: res.Replicated})
	}
}

func (s *Server) handleSaveCamp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := readBody(w, r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		c, err := record.DecodeCamp(body, s.decode)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := s.writer.SaveCamp(r.Context(), c)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, writeResponse{Success: true, CampID: &res.ID, Replicated: res.Replicated})
	}
}

func (s *Server) handleDeleteLog() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		res, err := s.writer.DeleteLog(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, writeResponse{Success: true, Replicated: res.Replicated})
	}
}

func (s *Server) handleGetLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := s.reader.ReadLogs(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, logs)
	}
}

func (s *Server) handleGetCamps() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		camps, err := s.reader.ReadCamps(r.Context())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, camps)
	}
}

func (s *Server) handleGetLogCamps() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.pathID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		camps, err := s.reader.ReadCampsForLog(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, camps)
	}
}

func (s *Server) handleViewLogs() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := s.reader.ReadLogs(r.Context())
		if err != nil {
			s.writeViewError(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := render.Logs(&buf, logs); err != nil {
			s.writeViewError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", render.ContentType)
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) handleViewCamps() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		camps, err := s.reader.ReadCamps(r.Context())
		if err != nil {
			s.writeViewError(w, r, err)
			return
		}
		var buf bytes.Buffer
		if err := render.Camps(&buf, camps); err != nil {
			s.writeViewError(w, r, err)
			return
		}
		w.Header().Set("Content-Type", render.ContentType)
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) writeViewError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.ErrorContext(r.Context(), "view failed", "path", r.URL.Path, "error", err)
	http.Error(w, "error loading data: "+err.Error(), http.StatusInternalServerError)
}

func (s *Server) handleOpenAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.doc)
	}
}
