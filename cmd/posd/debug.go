/*
debug.go - Read-only debug HTTP surface

PURPOSE:
  The kernel itself is transport-agnostic (spec.md §1 Non-goals); this is
  an optional, read-only inspection surface over an already-running
  kernel instance, for local debugging - never a mutation path. Mutation
  only ever happens through the Kernel Client / Tool Executor.

GROUNDED ON:
  api/server.go's NewRouter: the same middleware stack (Logger,
  Recoverer, RequestID, CORS), reshaped to two read-only routes instead
  of the teacher's full CRUD surface.
*/
package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/posware/kernel/client"
)

func newDebugRouter(terminal *client.Terminal) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Get("/transaction", func(w http.ResponseWriter, r *http.Request) {
		envelope := terminal.Show()
		w.Header().Set("Content-Type", "application/json")
		if !envelope.Success {
			w.WriteHeader(http.StatusNotFound)
		}
		json.NewEncoder(w).Encode(envelope)
	})

	return r
}
