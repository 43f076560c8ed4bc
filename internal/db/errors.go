package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"equiptrack/internal/types"
)

var ErrTenderHasConsignees = errors.New("tender still has consignees")

type UserExistsError struct {
	Username string
}

func (e *UserExistsError) Error() string {
	return fmt.Sprintf("User %s exists", e.Username)
}

type UserNotFoundError struct {
	Username string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("User %s not found", e.Username)
}

type TenderNotFoundError struct {
	TenderID uuid.UUID
}

func (e *TenderNotFoundError) Error() string {
	return fmt.Sprintf("Tender %s not found", e.TenderID)
}

type TenderExistsError struct {
	TenderNumber string
}

func (e *TenderExistsError) Error() string {
	return fmt.Sprintf("Tender %s exists", e.TenderNumber)
}

type ConsigneeNotFoundError struct {
	ConsigneeID uuid.UUID
}

func (e *ConsigneeNotFoundError) Error() string {
	return fmt.Sprintf("Consignee %s not found", e.ConsigneeID)
}

type MachineExistsError struct {
	Name string
}

func (e *MachineExistsError) Error() string {
	return fmt.Sprintf("Machine %s exists", e.Name)
}

type MachineNotFoundError struct {
	MachineID uuid.UUID
}

func (e *MachineNotFoundError) Error() string {
	return fmt.Sprintf("Machine %s not found", e.MachineID)
}

// DocumentExistsError reports an attempt to attach a second active document
// of the same kind to a consignee.
type DocumentExistsError struct {
	ConsigneeID uuid.UUID
	Kind        types.DocumentKind
}

func (e *DocumentExistsError) Error() string {
	return fmt.Sprintf("Consignee %s already has a %s document", e.ConsigneeID, e.Kind)
}

type DocumentNotFoundError struct {
	ConsigneeID uuid.UUID
	Kind        types.DocumentKind
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("Consignee %s has no %s document", e.ConsigneeID, e.Kind)
}
