package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"slotswapper/internal/auth"
)

// NewRouter assembles the public API surface. It is shared by the server
// binary and the handler tests.
func NewRouter(authHandler *AuthHandler, slotHandler *SlotHandler, swapHandler *SwapHandler, mw *auth.Middleware) *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", healthCheck).Methods("GET")
	api.HandleFunc("/signup", authHandler.Signup).Methods("POST")
	api.HandleFunc("/login", authHandler.Login).Methods("POST")
	api.Handle("/me", mw.RequireAuth(http.HandlerFunc(authHandler.Me))).Methods("GET")

	events := api.PathPrefix("/events").Subrouter()
	events.Use(mw.RequireAuth)
	events.HandleFunc("", slotHandler.CreateSlot).Methods("POST")
	events.HandleFunc("/me", slotHandler.ListMySlots).Methods("GET")
	events.HandleFunc("/swappable", slotHandler.ListSwappable).Methods("GET")
	events.HandleFunc("/{id}", slotHandler.UpdateSlot).Methods("PUT")
	events.HandleFunc("/{id}", slotHandler.DeleteSlot).Methods("DELETE")

	swaps := api.PathPrefix("/swaps").Subrouter()
	swaps.Use(mw.RequireAuth)
	swaps.HandleFunc("/swap-request", swapHandler.ProposeSwap).Methods("POST")
	swaps.HandleFunc("/swap-response/{id}", swapHandler.ResolveSwap).Methods("POST")
	swaps.HandleFunc("/my-requests", swapHandler.ListMyRequests).Methods("GET")

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
