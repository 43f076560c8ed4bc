package types

import (
	"time"

	"github.com/google/uuid"
)

// ConsignmentStatus is the manually driven pipeline position of a single
// consignee. It is independent from the document-derived tender status and
// the two are deliberately not reconciled.
type ConsignmentStatus string

const (
	ConsignmentProcessing          ConsignmentStatus = "Processing"
	ConsignmentDispatched          ConsignmentStatus = "Dispatched"
	ConsignmentInstallationPending ConsignmentStatus = "Installation Pending"
	ConsignmentInstallationDone    ConsignmentStatus = "Installation Done"
	ConsignmentInvoiceDone         ConsignmentStatus = "Invoice Done"
	ConsignmentBillSubmitted       ConsignmentStatus = "Bill Submitted"
)

func (s ConsignmentStatus) Valid() bool {
	switch s {
	case ConsignmentProcessing, ConsignmentDispatched, ConsignmentInstallationPending,
		ConsignmentInstallationDone, ConsignmentInvoiceDone, ConsignmentBillSubmitted:
		return true
	}
	return false
}

type Consignee struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	TenderID           uuid.UUID         `db:"tender_id" json:"tenderId"`
	SrNo               string            `db:"sr_no" json:"srNo"`
	DistrictName       string            `db:"district_name" json:"districtName"`
	BlockName          string            `db:"block_name" json:"blockName"`
	FacilityName       string            `db:"facility_name" json:"facilityName"`
	ContactPersonName  string            `db:"contact_person_name" json:"contactPersonName"`
	ContactPersonEmail string            `db:"contact_person_email" json:"contactPersonEmail"`
	ContactPersonPhone string            `db:"contact_person_mobile" json:"contactPersonMobile"`
	MachineCount       int               `db:"machine_count" json:"machineCount"`
	ConsignmentStatus  ConsignmentStatus `db:"consignment_status" json:"consignmentStatus"`
	CreatedAt          time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updatedAt"`
}

// ConsigneeDetail is a consignee together with its four document slots.
type ConsigneeDetail struct {
	Consignee
	Documents DocumentSet `json:"documents"`
}
