package engine

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/clipd/idgen"
)

// newRequestID tags each HTTP request; short IDs keep log lines readable.
var newRequestID = idgen.NanoID(12)

// requestID echoes the caller's X-Request-ID or assigns a fresh one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = newRequestID()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

// Router returns the read-only HTTP surface. Entry reads bump access
// accounting exactly like their MCP counterparts; nothing else mutates.
func (e *Engine) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, 200, map[string]string{"status": "ok"})
	})

	r.Get("/entries", func(w http.ResponseWriter, r *http.Request) {
		entries, err := e.Recent(r.Context(), queryInt(r, "limit"), r.URL.Query().Get("type"))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]any{"entries": entries, "count": len(entries)})
	})

	r.Get("/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, 400, err)
			return
		}
		entry, err := e.GetByID(r.Context(), id)
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, err)
			return
		}
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, entry)
	})

	r.Delete("/entries/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			writeError(w, 400, err)
			return
		}
		switch err := e.Delete(r.Context(), id); {
		case errors.Is(err, ErrNotFound):
			writeError(w, 404, err)
		case err != nil:
			writeError(w, 500, err)
		default:
			writeJSON(w, 200, map[string]any{"deleted": id})
		}
	})

	r.Get("/search", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if q == "" {
			writeError(w, 400, errors.New("missing q parameter"))
			return
		}
		entries, err := e.Search(r.Context(), q, queryInt(r, "limit"))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]any{"entries": entries, "count": len(entries)})
	})

	r.Get("/urls", func(w http.ResponseWriter, r *http.Request) {
		entries, err := e.URLEntries(r.Context(), queryInt(r, "limit"))
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, map[string]any{"entries": entries, "count": len(entries)})
	})

	r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats, err := e.Stats(r.Context())
		if err != nil {
			writeError(w, 500, err)
			return
		}
		writeJSON(w, 200, stats)
	})

	return r
}

func queryInt(r *http.Request, key string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(key))
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
