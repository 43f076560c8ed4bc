package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"equiptrack/internal/db"
	"equiptrack/internal/types"
)

// HandleListMachines returns the active machine catalog.
func (h *HandlerSet) HandleListMachines(w http.ResponseWriter, req *http.Request) {

	machines, err := h.database.ListMachines(req.Context())
	if err != nil {
		logger.Error(err)
		http.Error(w, "Error getting data", http.StatusInternalServerError)
		return
	}

	if len(machines) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, machines)
}

func (h *HandlerSet) HandleAddMachine(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var data struct {
		Name         string `json:"name"`
		Manufacturer string `json:"manufacturer"`
	}
	if err := json.Unmarshal(body, &data); err != nil || data.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	machine := &types.Machine{
		Name:         data.Name,
		Manufacturer: data.Manufacturer,
	}
	if err := h.database.InsertMachine(req.Context(), machine); err != nil {
		var exists *db.MachineExistsError
		if errors.As(err, &exists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		logger.Error(err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, machine)
}

func (h *HandlerSet) HandleUpdateMachine(w http.ResponseWriter, req *http.Request) {

	machineID, ok := parseUUIDParam(w, req, "machineID")
	if !ok {
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var data struct {
		Name         string `json:"name"`
		Manufacturer string `json:"manufacturer"`
	}
	if err := json.Unmarshal(body, &data); err != nil || data.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	if err := h.database.UpdateMachine(req.Context(), machineID, data.Name, data.Manufacturer); err != nil {
		h.handleMachineErrors(err, w)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// HandleDeactivateMachine soft-deletes a catalog entry so historical data
// keeps pointing at it while new listings no longer show it.
func (h *HandlerSet) HandleDeactivateMachine(w http.ResponseWriter, req *http.Request) {

	machineID, ok := parseUUIDParam(w, req, "machineID")
	if !ok {
		return
	}

	if err := h.database.DeactivateMachine(req.Context(), machineID); err != nil {
		h.handleMachineErrors(err, w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *HandlerSet) handleMachineErrors(err error, w http.ResponseWriter) {

	var exists *db.MachineExistsError
	var notFound *db.MachineNotFoundError

	switch {
	case errors.As(err, &exists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &notFound):
		http.Error(w, "Machine not found", http.StatusNotFound)
	default:
		logger.Error(err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
