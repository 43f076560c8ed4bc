package types

import (
	"time"

	"github.com/google/uuid"
)

// DocumentKind names one of the four lifecycle document slots of a consignee.
type DocumentKind string

const (
	DocLogistics    DocumentKind = "logistics"
	DocChallan      DocumentKind = "challan"
	DocInstallation DocumentKind = "installation"
	DocInvoice      DocumentKind = "invoice"
)

func (k DocumentKind) Valid() bool {
	switch k {
	case DocLogistics, DocChallan, DocInstallation, DocInvoice:
		return true
	}
	return false
}

// ConsignmentDocument is one lifecycle document attached to a consignee.
// CourierName and DocketNumber are only set for logistics documents.
type ConsignmentDocument struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ConsigneeID  uuid.UUID  `db:"consignee_id" json:"consigneeId"`
	DocumentDate time.Time  `db:"document_date" json:"date"`
	FilePath     string     `db:"file_path" json:"filePath"`
	CourierName  string     `db:"courier_name" json:"courierName,omitempty"`
	DocketNumber string     `db:"docket_number" json:"docketNumber,omitempty"`
	CreatedBy    *uuid.UUID `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}

// DocumentSet holds the four document slots of a consignee. A nil slot
// means no document of that kind is attached; presence is the only signal
// status computation reads.
type DocumentSet struct {
	Logistics    *ConsignmentDocument `json:"logistics,omitempty"`
	Challan      *ConsignmentDocument `json:"challan,omitempty"`
	Installation *ConsignmentDocument `json:"installation,omitempty"`
	Invoice      *ConsignmentDocument `json:"invoice,omitempty"`
}

// TenderDocument is a letter of award or purchase order attached to a
// tender as a whole.
type TenderDocument struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	TenderID     uuid.UUID  `db:"tender_id" json:"tenderId"`
	Number       string     `db:"number" json:"number"`
	DocumentDate time.Time  `db:"document_date" json:"date"`
	FilePath     string     `db:"file_path" json:"filePath"`
	CreatedBy    *uuid.UUID `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
}
