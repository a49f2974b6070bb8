// ABOUTME: chi router and middleware for the sandbox API server.
// ABOUTME: Wires request ids, request logging, and bearer auth around schema-driven routes.

package sandbox

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/2389/nv/internal/httperr"
	"github.com/2389/nv/internal/schema"
)

// Handler builds the sandbox API router for the given resources. Every
// resource gets CRUD routes plus a POST route per custom verb.
func Handler(s *Store, resources []schema.ResourceDescriptor) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(s))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"ok": true})
	})

	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		for i := range resources {
			h := &resourceHandlers{store: s, resource: &resources[i]}
			base := "/" + resources[i].PluralName
			r.Get(base, h.list)
			r.Post(base, h.create)
			r.Get(base+"/{id}", h.get)
			r.Patch(base+"/{id}", h.update)
			r.Delete(base+"/{id}", h.delete)
			for _, verb := range resources[i].VerbNames {
				r.Post(base+"/{id}/"+verb, h.verb(verb))
			}
		}
	})

	return r
}

// requestIDMiddleware assigns a correlation id to every request and echoes
// it in the response so failures can be traced from the CLI.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = "req_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
			r.Header.Set("X-Request-Id", id)
		}
		w.Header().Set("X-Request-Id", id)
		next.ServeHTTP(w, r)
	})
}

// authMiddleware requires a bearer token on every resource route. The
// sandbox accepts any non-empty token; it exists to exercise the CLI's
// auth flow, not to protect anything.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if header == "" || token == header || token == "" {
			httperr.Write(w, r, http.StatusUnauthorized, httperr.CodeUnauthorized,
				"missing or malformed bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
		sr.ResponseWriter.WriteHeader(code)
	}
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.written {
		sr.statusCode = http.StatusOK
		sr.written = true
	}
	return sr.ResponseWriter.Write(b)
}

// loggingMiddleware records method, path, status, and duration for every
// request into the request_logs table.
func loggingMiddleware(s *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w}
			start := time.Now()
			next.ServeHTTP(recorder, r)

			// Logging failures must never fail the request.
			_ = s.LogRequest(
				httperr.RequestID(r),
				r.Method,
				r.URL.Path,
				recorder.statusCode,
				int(time.Since(start).Milliseconds()),
			)
		})
	}
}
