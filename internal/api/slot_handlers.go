package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"slotswapper/internal/auth"
	"slotswapper/internal/entities"
	"slotswapper/internal/service"
)

type SlotHandler struct {
	Service *service.SlotService
}

func NewSlotHandler(svc *service.SlotService) *SlotHandler {
	return &SlotHandler{Service: svc}
}

func (h *SlotHandler) CreateSlot(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	var req entities.CreateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	slot, err := h.Service.CreateSlot(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, slot)
}

func (h *SlotHandler) ListMySlots(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	slots, err := h.Service.ListMySlots(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *SlotHandler) ListSwappable(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	slots, err := h.Service.ListSwappable(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

func (h *SlotHandler) UpdateSlot(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	slotID := mux.Vars(r)["id"]
	var req entities.UpdateSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid request body"})
		return
	}
	slot, err := h.Service.UpdateSlot(r.Context(), userID, slotID, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slot)
}

func (h *SlotHandler) DeleteSlot(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserID(r.Context())
	slotID := mux.Vars(r)["id"]
	if err := h.Service.DeleteSlot(r.Context(), userID, slotID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "slot deleted"})
}
