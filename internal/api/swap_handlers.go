package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"slotswapper/internal/auth"
	"slotswapper/internal/db"
	"slotswapper/internal/entities"
	"slotswapper/internal/repository"
	"slotswapper/internal/service"
)

type SwapHandler struct {
	Service *service.SwapService
}

func NewSwapHandler(svc *service.SwapService) *SwapHandler {
	return &SwapHandler{Service: svc}
}

func (h *SwapHandler) ProposeSwap(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req entities.SwapProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	swap, err := h.Service.ProposeSwap(r.Context(), userID, req.OfferedSlotID, req.TargetSlotID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, swap)
}

func (h *SwapHandler) ResolveSwap(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	requestID := mux.Vars(r)["id"]
	var req entities.SwapDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	decision := service.Decision(strings.ToUpper(req.Decision))
	swap, err := h.Service.ResolveSwap(r.Context(), userID, requestID, decision)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, swap)
}

func (h *SwapHandler) ListMyRequests(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	dir := repository.Direction(strings.ToUpper(r.URL.Query().Get("direction")))
	requests, err := h.Service.ListRequests(r.Context(), userID, dir)
	if err != nil {
		writeError(w, err)
		return
	}
	if requests == nil {
		requests = []db.SwapRequest{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": requests})
}
