package types

import (
	"time"

	"github.com/google/uuid"
)

type TenderStatus string

const (
	StatusDraft              TenderStatus = "Draft"
	StatusInProgress         TenderStatus = "In Progress"
	StatusPartiallyCompleted TenderStatus = "Partially Completed"
	StatusCompleted          TenderStatus = "Completed"
)

func (s TenderStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusPartiallyCompleted, StatusCompleted:
		return true
	}
	return false
}

type ItemKind string

const (
	AccessoryItems  ItemKind = "accessories"
	ConsumableItems ItemKind = "consumables"
)

func (k ItemKind) Valid() bool {
	return k == AccessoryItems || k == ConsumableItems
}

// ItemSet is the per-tender selection of accessories or consumables.
// Items is the immutable record of what was selected; Pending is the
// subset not yet fulfilled.
type ItemSet struct {
	Items   []string `json:"items"`
	Pending []string `json:"pending"`
}

// PendingFlag is the derived boolean persisted next to the set. It is
// recomputed from Pending at every write, never stored independently.
func (s ItemSet) PendingFlag() bool {
	return len(s.Pending) > 0
}

type Tender struct {
	ID                  uuid.UUID    `db:"id" json:"id"`
	TenderNumber        string       `db:"tender_number" json:"tenderNumber"`
	AuthorityType       string       `db:"authority_type" json:"authorityType"`
	EquipmentName       string       `db:"equipment_name" json:"equipmentName"`
	LeadTimeToDeliver   int          `db:"lead_time_to_deliver" json:"leadTimeToDeliver"`
	LeadTimeToInstall   int          `db:"lead_time_to_install" json:"leadTimeToInstall"`
	Status              TenderStatus `db:"status" json:"status"`
	SelectedAccessories ItemSet      `db:"selected_accessories" json:"selectedAccessories"`
	SelectedConsumables ItemSet      `db:"selected_consumables" json:"selectedConsumables"`
	AccessoriesPending  bool         `db:"accessories_pending" json:"accessoriesPending"`
	ConsumablesPending  bool         `db:"consumables_pending" json:"consumablesPending"`
	Remarks             string       `db:"remarks" json:"remarks"`
	CreatedBy           *uuid.UUID   `db:"created_by" json:"createdBy,omitempty"`
	CreatedAt           time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time    `db:"updated_at" json:"updatedAt"`
}

// Items returns the selection for the given kind.
func (t *Tender) Items(kind ItemKind) ItemSet {
	if kind == ConsumableItems {
		return t.SelectedConsumables
	}
	return t.SelectedAccessories
}
