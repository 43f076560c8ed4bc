package progress

import (
	"equiptrack/internal/types"
)

// Descriptor describes which document stages a single consignee has reached.
type Descriptor struct {
	HasLogistics    bool `json:"hasLogistics"`
	HasChallan      bool `json:"hasChallan"`
	HasInstallation bool `json:"hasInstallation"`
	HasInvoice      bool `json:"hasInvoice"`
	IsComplete      bool `json:"isComplete"`
	HasAnyProgress  bool `json:"hasAnyProgress"`
}

// Evaluate derives a progress descriptor from a consignee's document slots.
// An absent document is simply false, never an error.
func Evaluate(docs types.DocumentSet) Descriptor {
	d := Descriptor{
		HasLogistics:    docs.Logistics != nil,
		HasChallan:      docs.Challan != nil,
		HasInstallation: docs.Installation != nil,
		HasInvoice:      docs.Invoice != nil,
	}
	d.IsComplete = d.HasLogistics && d.HasChallan && d.HasInstallation && d.HasInvoice
	d.HasAnyProgress = d.HasLogistics || d.HasChallan || d.HasInstallation || d.HasInvoice
	return d
}

// Stats are the counts a tender's status is decided from.
type Stats struct {
	Total      int `json:"total"`
	Complete   int `json:"complete"`
	InProgress int `json:"inProgress"`
}

func Reduce(descriptors []Descriptor) Stats {
	var s Stats
	for _, d := range descriptors {
		s.Total++
		if d.IsComplete {
			s.Complete++
		} else if d.HasAnyProgress {
			s.InProgress++
		}
	}
	return s
}

// StatusFor applies the status decision table. Rules are checked in order,
// first match wins.
func StatusFor(s Stats) types.TenderStatus {
	switch {
	case s.Total == s.Complete && s.Total > 0:
		return types.StatusCompleted
	case s.Complete > 0:
		return types.StatusPartiallyCompleted
	case s.InProgress > 0:
		return types.StatusInProgress
	default:
		return types.StatusDraft
	}
}

// StatusOf computes a tender's overall status from its consignees.
// A tender with no consignees is Draft.
func StatusOf(consignees []types.ConsigneeDetail) types.TenderStatus {
	if len(consignees) == 0 {
		return types.StatusDraft
	}
	descriptors := make([]Descriptor, 0, len(consignees))
	for _, c := range consignees {
		descriptors = append(descriptors, Evaluate(c.Documents))
	}
	return StatusFor(Reduce(descriptors))
}
