package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/urfave/negroni"
)

// logRequest writes one log line per request.
func (s *Server) logRequest(rw http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(rw, r)

	status := 0
	if res, ok := rw.(negroni.ResponseWriter); ok {
		status = res.Status()
	}
	s.logger.InfoContext(r.Context(), "request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"duration", time.Since(start),
	)
}

// instrument observes request latency per matched route template.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := negroni.NewResponseWriter(w)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if cr := mux.CurrentRoute(r); cr != nil {
			if tpl, err := cr.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.duration.
			WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
