package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"equiptrack/internal/audit"
	"equiptrack/internal/db"
	"equiptrack/internal/pending"
	"equiptrack/internal/types"
)

const dateLayout = "2006-01-02"

func parseUUIDParam(w http.ResponseWriter, req *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(req, name))
	if err != nil {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *HandlerSet) HandleCreateTender(w http.ResponseWriter, req *http.Request) {

	user, err := h.handleAuthorizeUser(w, req)
	if err != nil {
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong",
			http.StatusInternalServerError)
		return
	}

	var data struct {
		TenderNumber        string   `json:"tenderNumber"`
		AuthorityType       string   `json:"authorityType"`
		EquipmentName       string   `json:"equipmentName"`
		LeadTimeToDeliver   int      `json:"leadTimeToDeliver"`
		LeadTimeToInstall   int      `json:"leadTimeToInstall"`
		SelectedAccessories []string `json:"selectedAccessories"`
		SelectedConsumables []string `json:"selectedConsumables"`
		Remarks             string   `json:"remarks"`
	}
	if err := json.Unmarshal(body, &data); err != nil {
		http.Error(w, "Could not parse body", http.StatusBadRequest)
		return
	}
	if data.TenderNumber == "" {
		http.Error(w, "Tender number is required", http.StatusBadRequest)
		return
	}

	tender := &types.Tender{
		TenderNumber:      data.TenderNumber,
		AuthorityType:     data.AuthorityType,
		EquipmentName:     data.EquipmentName,
		LeadTimeToDeliver: data.LeadTimeToDeliver,
		LeadTimeToInstall: data.LeadTimeToInstall,
		Status:            types.StatusDraft,
		// Everything selected for a new tender starts out pending.
		SelectedAccessories: pending.NewSelection(data.SelectedAccessories),
		SelectedConsumables: pending.NewSelection(data.SelectedConsumables),
		Remarks:             data.Remarks,
		CreatedBy:           &user.ID,
	}

	err = h.database.InTransaction(req.Context(), func(t *db.Tx) error {
		if err := t.InsertTender(req.Context(), tender); err != nil {
			return err
		}
		return audit.Log(req.Context(), t, &user.ID, "CREATE_TENDER", "Tender", &tender.ID, nil, tender)
	})
	if err != nil {
		var exists *db.TenderExistsError
		if errors.As(err, &exists) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		logger.Error(err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusCreated, tender)
}

func (h *HandlerSet) HandleGetTenders(w http.ResponseWriter, req *http.Request) {

	filter := types.TenderStatus(req.URL.Query().Get("status"))
	if filter != "" && !filter.Valid() {
		http.Error(w, "Invalid status filter", http.StatusBadRequest)
		return
	}

	tenders, err := h.database.GetTenders(req.Context(), filter)
	if err != nil {
		logger.Error(err)
		http.Error(w, "Error getting data", http.StatusInternalServerError)
		return
	}

	if len(tenders) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, tenders)
}

func (h *HandlerSet) HandleGetTender(w http.ResponseWriter, req *http.Request) {

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

	consignees, err := h.database.TenderConsignees(req.Context(), tenderID)
	if err != nil {
		logger.Error(err)
		http.Error(w, "Error getting data", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		*types.Tender
		Consignees []types.ConsigneeDetail `json:"consignees"`
	}{tender, consignees})
}

func (h *HandlerSet) HandleDeleteTender(w http.ResponseWriter, req *http.Request) {

	tenderID, ok := parseUUIDParam(w, req, "tenderID")
	if !ok {
		return
	}

	err := h.database.DeleteTender(req.Context(), tenderID)
	if err != nil {
		var notFound *db.TenderNotFoundError
		switch {
		case errors.Is(err, db.ErrTenderHasConsignees):
			http.Error(w, "Tender still has consignees", http.StatusConflict)
		case errors.As(err, &notFound):
			http.Error(w, "Tender not found", http.StatusNotFound)
		default:
			logger.Error(err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleUploadLOA stores the letter of award file and records it against
// the tender in one transaction with the audit entry.
func (h *HandlerSet) HandleUploadLOA(w http.ResponseWriter, req *http.Request) {
	h.handleUploadTenderDocument(w, req, "loa")
}

func (h *HandlerSet) HandleUploadPO(w http.ResponseWriter, req *http.Request) {
	h.handleUploadTenderDocument(w, req, "po")
}

func (h *HandlerSet) handleUploadTenderDocument(w http.ResponseWriter, req *http.Request, kind string) {

	user, err := h.handleAuthorizeUser(w, req)
	if err != nil {
		return
	}

	tenderID, ok := parseUUIDParam(w, req, "tenderID")
	if !ok {
		return
	}

	date, err := time.Parse(dateLayout, req.FormValue("date"))
	if err != nil {
		http.Error(w, "Invalid date", http.StatusBadRequest)
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		http.Error(w, "File is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	objectName, err := h.files.Upload(req.Context(), kind, header.Filename,
		file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		logger.Error(err)
		http.Error(w, "Could not store file", http.StatusInternalServerError)
		return
	}

	doc := &types.TenderDocument{
		TenderID:     tenderID,
		Number:       req.FormValue("number"),
		DocumentDate: date,
		FilePath:     objectName,
		CreatedBy:    &user.ID,
	}

	err = h.database.InTransaction(req.Context(), func(t *db.Tx) error {
		var insertErr error
		if kind == "loa" {
			insertErr = t.InsertTenderLOA(req.Context(), doc)
		} else {
			insertErr = t.InsertTenderPO(req.Context(), doc)
		}
		if insertErr != nil {
			return insertErr
		}
		return audit.Log(req.Context(), t, &user.ID, "UPLOAD_"+strings.ToUpper(kind), "Tender", &tenderID, nil, doc)
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

	h.writeJSON(w, http.StatusCreated, doc)
}

func (h *HandlerSet) HandleGetLOA(w http.ResponseWriter, req *http.Request) {
	h.handleGetTenderDocument(w, req, "loa")
}

func (h *HandlerSet) HandleGetPO(w http.ResponseWriter, req *http.Request) {
	h.handleGetTenderDocument(w, req, "po")
}

func (h *HandlerSet) handleGetTenderDocument(w http.ResponseWriter, req *http.Request, kind string) {

	tenderID, ok := parseUUIDParam(w, req, "tenderID")
	if !ok {
		return
	}

	var doc *types.TenderDocument
	var err error
	if kind == "loa" {
		doc, err = h.database.GetTenderLOA(req.Context(), tenderID)
	} else {
		doc, err = h.database.GetTenderPO(req.Context(), tenderID)
	}
	if err != nil {
		logger.Error(err)
		http.Error(w, "Error getting data", http.StatusInternalServerError)
		return
	}
	if doc == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.writeJSON(w, http.StatusOK, doc)
}

func (h *HandlerSet) HandleListCatalog(w http.ResponseWriter, req *http.Request) {

	kind := types.ItemKind(chi.URLParam(req, "kind"))
	if !kind.Valid() {
		http.Error(w, "Unknown item kind", http.StatusNotFound)
		return
	}

	names, err := h.database.ListCatalog(req.Context(), kind)
	if err != nil {
		logger.Error(err)
		http.Error(w, "Error getting data", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, names)
}

func (h *HandlerSet) HandleAddCatalogItem(w http.ResponseWriter, req *http.Request) {

	kind := types.ItemKind(chi.URLParam(req, "kind"))
	if !kind.Valid() {
		http.Error(w, "Unknown item kind", http.StatusNotFound)
		return
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		http.Error(w, "Something went wrong", http.StatusInternalServerError)
		return
	}

	var data struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &data); err != nil || data.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	if err := h.database.AddCatalogItem(req.Context(), kind, data.Name); err != nil {
		logger.Error(err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
}
