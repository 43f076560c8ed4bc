package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	logger "github.com/sirupsen/logrus"

	"equiptrack/internal/audit"
	"equiptrack/internal/db"
	"equiptrack/internal/status"
	"equiptrack/internal/types"
)

const documentURLExpiry = 15 * time.Minute

// documentUploadRoles maps each document kind to the role allowed to
// attach it. Admin passes everywhere.
var documentUploadRoles = map[types.DocumentKind]string{
	types.DocLogistics:    types.RoleLogisticsManager,
	types.DocChallan:      types.RoleLogisticsManager,
	types.DocInstallation: types.RoleInstaller,
	types.DocInvoice:      types.RoleFinanceManager,
}

// HandleAttachDocument stores the uploaded file, inserts the document row
// and recomputes the owning tender's status, all in one transaction, so a
// document never exists with a stale tender status.
func (h *HandlerSet) HandleAttachDocument(w http.ResponseWriter, req *http.Request) {

	user, err := h.handleAuthorizeUser(w, req)
	if err != nil {
		return
	}

	kind := types.DocumentKind(chi.URLParam(req, "kind"))
	if !kind.Valid() {
		http.Error(w, "Unknown document kind", http.StatusNotFound)
		return
	}
	if !h.allowedToUpload(user, kind) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	consigneeID, ok := parseUUIDParam(w, req, "consigneeID")
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

	objectName, err := h.files.Upload(req.Context(), string(kind), header.Filename,
		file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		logger.Error(err)
		http.Error(w, "Could not store file", http.StatusInternalServerError)
		return
	}

	doc := &types.ConsignmentDocument{
		ConsigneeID:  consigneeID,
		DocumentDate: date,
		FilePath:     objectName,
		CreatedBy:    &user.ID,
	}
	if kind == types.DocLogistics {
		doc.CourierName = req.FormValue("courierName")
		doc.DocketNumber = req.FormValue("docketNumber")
	}

	var tenderStatus types.TenderStatus
	err = h.database.InTransaction(req.Context(), func(t *db.Tx) error {
		if err := t.InsertConsignmentDocument(req.Context(), kind, doc); err != nil {
			return err
		}
		tenderStatus, err = status.OnDocumentAttached(req.Context(), t, consigneeID)
		if err != nil {
			return err
		}
		return audit.Log(req.Context(), t, &user.ID, "ATTACH_"+strings.ToUpper(string(kind)),
			"Consignee", &consigneeID, nil, doc)
	})
	if err != nil {
		h.handleDocumentErrors(err, w)
		return
	}

	h.writeJSON(w, http.StatusCreated, struct {
		Document     *types.ConsignmentDocument `json:"document"`
		TenderStatus types.TenderStatus         `json:"tenderStatus"`
	}{doc, tenderStatus})
}

// HandleDetachDocument removes a document and recomputes the tender's
// status in the same transaction. This is the one path where the status
// may legitimately move backward. The stored file is removed after the
// commit; a failed blob delete only leaves an orphaned object behind.
func (h *HandlerSet) HandleDetachDocument(w http.ResponseWriter, req *http.Request) {

	user, err := h.handleAuthorizeUser(w, req)
	if err != nil {
		return
	}

	kind := types.DocumentKind(chi.URLParam(req, "kind"))
	if !kind.Valid() {
		http.Error(w, "Unknown document kind", http.StatusNotFound)
		return
	}
	if !h.allowedToUpload(user, kind) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	consigneeID, ok := parseUUIDParam(w, req, "consigneeID")
	if !ok {
		return
	}

	doc, err := h.database.GetConsignmentDocument(req.Context(), kind, consigneeID)
	if err != nil {
		h.handleDocumentErrors(err, w)
		return
	}

	var tenderStatus types.TenderStatus
	err = h.database.InTransaction(req.Context(), func(t *db.Tx) error {
		if err := t.DeleteConsignmentDocument(req.Context(), kind, consigneeID); err != nil {
			return err
		}
		tenderStatus, err = status.OnDocumentDetached(req.Context(), t, consigneeID)
		if err != nil {
			return err
		}
		return audit.Log(req.Context(), t, &user.ID, "DETACH_"+strings.ToUpper(string(kind)),
			"Consignee", &consigneeID, map[string]any{"filePath": doc.FilePath}, nil)
	})
	if err != nil {
		h.handleDocumentErrors(err, w)
		return
	}

	if doc.FilePath != "" {
		if err := h.files.Delete(req.Context(), doc.FilePath); err != nil {
			logger.Errorf("Could not delete stored file %s: %s", doc.FilePath, err)
		}
	}

	h.writeJSON(w, http.StatusOK, struct {
		TenderStatus types.TenderStatus `json:"tenderStatus"`
	}{tenderStatus})
}

// HandleGetDocumentFile hands out a time-limited download URL for a stored
// document instead of proxying the file itself.
func (h *HandlerSet) HandleGetDocumentFile(w http.ResponseWriter, req *http.Request) {

	kind := types.DocumentKind(chi.URLParam(req, "kind"))
	if !kind.Valid() {
		http.Error(w, "Unknown document kind", http.StatusNotFound)
		return
	}

	consigneeID, ok := parseUUIDParam(w, req, "consigneeID")
	if !ok {
		return
	}

	doc, err := h.database.GetConsignmentDocument(req.Context(), kind, consigneeID)
	if err != nil {
		h.handleDocumentErrors(err, w)
		return
	}

	url, err := h.files.PresignedURL(req.Context(), doc.FilePath, documentURLExpiry)
	if err != nil {
		logger.Error(err)
		http.Error(w, "Could not generate download URL", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, struct {
		URL string `json:"url"`
	}{url})
}

func (h *HandlerSet) allowedToUpload(user *types.User, kind types.DocumentKind) bool {
	required := documentUploadRoles[kind]
	for _, role := range user.Roles {
		if role == types.RoleAdmin || role == required {
			return true
		}
	}
	return false
}

func (h *HandlerSet) handleDocumentErrors(err error, w http.ResponseWriter) {

	var docExists *db.DocumentExistsError
	var docNotFound *db.DocumentNotFoundError
	var consigneeNotFound *db.ConsigneeNotFoundError

	switch {
	case errors.As(err, &docExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &docNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.As(err, &consigneeNotFound):
		http.Error(w, "Consignee not found", http.StatusNotFound)
	default:
		logger.Error(err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
	}
}
