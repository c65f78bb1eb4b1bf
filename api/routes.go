package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"shelflog/handlers"
)

// corsMiddleware handles CORS for API routes
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// handleOptions handles OPTIONS requests for CORS preflight
func handleOptions(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// Register wires every HTTP surface under the /api prefix.
func Register(
	r *mux.Router,
	metadata *handlers.MetadataHandler,
	actions *handlers.ActionsHandler,
	entries *handlers.EntriesHandler,
	uploads *handlers.UploadHandler,
	users *handlers.UsersHandler,
) {
	api := r.PathPrefix("/api").Subrouter()
	api.Use(corsMiddleware)

	api.HandleFunc("/metadata", metadata.Resolve).Methods(http.MethodGet)
	api.HandleFunc("/metadata", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/execute-actions", actions.Execute).Methods(http.MethodPost)
	api.HandleFunc("/execute-actions", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/upload", uploads.Upload).Methods(http.MethodPost)
	api.HandleFunc("/upload", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/uploads/{name}", uploads.Serve).Methods(http.MethodGet)
	api.HandleFunc("/uploads/{name}", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/users/register", users.Register).Methods(http.MethodPost)
	api.HandleFunc("/users/register", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/users/{userID}/entries", entries.List).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/entries", entries.Create).Methods(http.MethodPost)
	api.HandleFunc("/users/{userID}/entries", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/users/{userID}/entries/{id}", entries.Get).Methods(http.MethodGet)
	api.HandleFunc("/users/{userID}/entries/{id}", entries.Update).Methods(http.MethodPatch)
	api.HandleFunc("/users/{userID}/entries/{id}", entries.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/users/{userID}/entries/{id}", handleOptions).Methods(http.MethodOptions)

	api.HandleFunc("/admin/users", users.List).Methods(http.MethodGet)
	api.HandleFunc("/admin/users", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/admin/users/{id}/approve", users.Approve).Methods(http.MethodPost)
	api.HandleFunc("/admin/users/{id}/approve", handleOptions).Methods(http.MethodOptions)
	api.HandleFunc("/admin/users/{id}/reject", users.Reject).Methods(http.MethodPost)
	api.HandleFunc("/admin/users/{id}/reject", handleOptions).Methods(http.MethodOptions)
}
