package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"equiptrack/internal/audit"
	"equiptrack/internal/db"
	"equiptrack/internal/pending"
	"equiptrack/internal/status"
	"equiptrack/internal/types"
)

type itemsStatus struct {
	All        []string `json:"all"`
	Pending    []string `json:"pending"`
	IsComplete bool     `json:"isComplete"`
}

// HandleGetTenderItems reports the selection and remaining work of both
// item kinds for a tender.
func (h *HandlerSet) HandleGetTenderItems(w http.ResponseWriter, req *http.Request) {

	tenderID, ok := parseUUIDParam(w, req, "tenderID")
	if !ok {
		return
	}

	tender, err := h.database.GetTender(req.Context(), tenderID)
	if err != nil {
		var notFound *db.TenderNotFoundError
		if errors.As(err, &notFound) {
			http.Error(w, "Tender not found", http.StatusNotFound)
			return
		}
		logger.Error(err)
		http.Error(w, "Error getting data", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Accessories itemsStatus `json:"accessories"`
		Consumables itemsStatus `json:"consumables"`
	}{
		Accessories: itemsStatus{
			All:        tender.SelectedAccessories.Items,
			Pending:    tender.SelectedAccessories.Pending,
			IsComplete: !tender.SelectedAccessories.PendingFlag(),
		},
		Consumables: itemsStatus{
			All:        tender.SelectedConsumables.Items,
			Pending:    tender.SelectedConsumables.Pending,
			IsComplete: !tender.SelectedConsumables.PendingFlag(),
		},
	})
}

// HandleMarkItemsComplete removes the posted item names from the tender's
// pending list of the kind named in the URL. Re-posting already completed
// names is a no-op.
func (h *HandlerSet) HandleMarkItemsComplete(w http.ResponseWriter, req *http.Request) {

	user, err := h.handleAuthorizeUser(w, req)
	if err != nil {
		return
	}

	kind := types.ItemKind(chi.URLParam(req, "kind"))
	if !kind.Valid() {
		http.Error(w, "Unknown item kind", http.StatusNotFound)
		return
	}

	tenderID, ok := parseUUIDParam(w, req, "tenderID")
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
		Items []string `json:"items"`
	}
	if err := json.Unmarshal(body, &data); err != nil || data.Items == nil {
		http.Error(w, "Items must be an array", http.StatusBadRequest)
		return
	}

	var updated types.ItemSet
	err = h.database.InTransaction(req.Context(), func(t *db.Tx) error {
		var markErr error
		updated, markErr = status.MarkItemsComplete(req.Context(), t, tenderID, kind, data.Items)
		if markErr != nil {
			return markErr
		}
		return audit.Log(req.Context(), t, &user.ID, "COMPLETE_"+strings.ToUpper(string(kind)),
			"Tender", &tenderID, nil, map[string]any{"completed": data.Items, "remainingPending": updated.Pending})
	})
	if err != nil {
		var notFound *db.TenderNotFoundError
		var invariant *pending.InvariantError
		switch {
		case errors.As(err, &notFound):
			http.Error(w, "Tender not found", http.StatusNotFound)
		case errors.As(err, &invariant):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		default:
			logger.Error(err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		Completed        []string `json:"completed"`
		RemainingPending []string `json:"remainingPending"`
		IsComplete       bool     `json:"isComplete"`
	}{data.Items, updated.Pending, !updated.PendingFlag()})
}

// HandleRecomputeStatuses re-derives the status of each listed tender.
// Tenders that no longer exist are dropped from the result instead of
// failing the batch.
func (h *HandlerSet) HandleRecomputeStatuses(w http.ResponseWriter, req *http.Request) {

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var data struct {
		TenderIDs []uuid.UUID `json:"tenderIds"`
	}
	if err := json.Unmarshal(body, &data); err != nil || len(data.TenderIDs) == 0 {
		http.Error(w, "Tender ids are required", http.StatusBadRequest)
		return
	}

	var results []status.BulkResult
	err = h.database.InTransaction(req.Context(), func(t *db.Tx) error {
		var bulkErr error
		results, bulkErr = status.RecomputeAll(req.Context(), t, data.TenderIDs)
		return bulkErr
	})
	if err != nil {
		logger.Error(err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, results)
}
