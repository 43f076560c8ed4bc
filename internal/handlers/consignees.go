package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"equiptrack/internal/audit"
	"equiptrack/internal/db"
	"equiptrack/internal/status"
	"equiptrack/internal/types"
	"equiptrack/internal/validate"
)

func (h *HandlerSet) HandleCreateConsignee(w http.ResponseWriter, req *http.Request) {

	user, err := h.handleAuthorizeUser(w, req)
	if err != nil {
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
		SrNo               string `json:"srNo"`
		DistrictName       string `json:"districtName"`
		BlockName          string `json:"blockName"`
		FacilityName       string `json:"facilityName"`
		ContactPersonName  string `json:"contactPersonName"`
		ContactPersonEmail string `json:"contactPersonEmail"`
		ContactPersonPhone string `json:"contactPersonMobile"`
		MachineCount       int    `json:"machineCount"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		http.Error(w, "Could not parse body", http.StatusBadRequest)
		return
	}
	if data.DistrictName == "" || data.FacilityName == "" {
		http.Error(w, "District and facility are required", http.StatusBadRequest)
		return
	}
	if data.ContactPersonEmail != "" && !validate.ValidateEmail(data.ContactPersonEmail) {
		http.Error(w, "Invalid contact email", http.StatusBadRequest)
		return
	}
	if data.ContactPersonPhone != "" && !validate.ValidateMobile(data.ContactPersonPhone) {
		http.Error(w, "Invalid contact mobile", http.StatusBadRequest)
		return
	}
	if data.MachineCount < 1 {
		data.MachineCount = 1
	}

	consignee := &types.Consignee{
		TenderID:           tenderID,
		SrNo:               data.SrNo,
		DistrictName:       data.DistrictName,
		BlockName:          data.BlockName,
		FacilityName:       data.FacilityName,
		ContactPersonName:  data.ContactPersonName,
		ContactPersonEmail: data.ContactPersonEmail,
		ContactPersonPhone: data.ContactPersonPhone,
		MachineCount:       data.MachineCount,
		ConsignmentStatus:  types.ConsignmentProcessing,
	}

	err = h.database.InTransaction(req.Context(), func(t *db.Tx) error {
		if err := t.InsertConsignee(req.Context(), consignee); err != nil {
			return err
		}
		// A new consignee changes the tender's consignee counts, so the
		// aggregate status may change too.
		if _, err := status.Recompute(req.Context(), t, tenderID); err != nil {
			return err
		}
		return audit.Log(req.Context(), t, &user.ID, "CREATE_CONSIGNEE", "Consignee", &consignee.ID, nil, consignee)
	})
	if err != nil {
		var notFound *db.TenderNotFoundError
		if errors.As(err, &notFound) {
			http.Error(w, "Tender not found", http.StatusNotFound)
			return
		}
		logger.Error(err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, consignee)
}

func (h *HandlerSet) HandleGetConsignees(w http.ResponseWriter, req *http.Request) {

	tenderID, ok := parseUUIDParam(w, req, "tenderID")
	if !ok {
		return
	}

	consignees, err := h.database.TenderConsignees(req.Context(), tenderID)
	if err != nil {
		logger.Error(err)
		http.Error(w, "Error getting data", http.StatusInternalServerError)
		return
	}

	if len(consignees) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, consignees)
}

// HandleUpdateConsignmentStatus moves a consignee along its own manual
// pipeline. This state machine is independent from the document-derived
// tender status; the two are deliberately not reconciled.
func (h *HandlerSet) HandleUpdateConsignmentStatus(w http.ResponseWriter, req *http.Request) {

	user, err := h.handleAuthorizeUser(w, req)
	if err != nil {
		return
	}

	consigneeID, ok := parseUUIDParam(w, req, "consigneeID")
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
		Status types.ConsignmentStatus `json:"status"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		http.Error(w, "Could not parse body", http.StatusBadRequest)
		return
	}
	if !data.Status.Valid() {
		http.Error(w, "Invalid consignment status", http.StatusBadRequest)
		return
	}

	var updated *types.Consignee
	err = h.database.InTransaction(req.Context(), func(t *db.Tx) error {
		before, err := t.GetConsignee(req.Context(), consigneeID)
		if err != nil {
			return err
		}
		if err := t.SetConsignmentStatus(req.Context(), consigneeID, data.Status); err != nil {
			return err
		}
		err = audit.Log(req.Context(), t, &user.ID, "UPDATE_CONSIGNMENT_STATUS", "Consignee", &consigneeID,
			map[string]any{"status": before.ConsignmentStatus},
			map[string]any{"status": data.Status})
		if err != nil {
			return err
		}
		before.ConsignmentStatus = data.Status
		updated = before
		return nil
	})
	if err != nil {
		var notFound *db.ConsigneeNotFoundError
		if errors.As(err, &notFound) {
			http.Error(w, "Consignee not found", http.StatusNotFound)
			return
		}
		logger.Error(err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, updated)
}
