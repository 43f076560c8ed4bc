// Package status derives a tender's overall status from the document
// state of its consignees and keeps the accessory/consumable pending
// lists consistent. All entry points expect a transaction-scoped store,
// so the triggering write and the recomputation commit together.
package status

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"equiptrack/internal/db"
	"equiptrack/internal/pending"
	"equiptrack/internal/progress"
	"equiptrack/internal/types"
)

// Store is the transaction-scoped persistence the orchestrator needs.
// *db.Tx implements it; tests supply an in-memory fake.
type Store interface {
	TenderForUpdate(ctx context.Context, id uuid.UUID) (*types.Tender, error)
	TenderConsignees(ctx context.Context, tenderID uuid.UUID) ([]types.ConsigneeDetail, error)
	SetTenderStatus(ctx context.Context, id uuid.UUID, status types.TenderStatus) error
	SetTenderItems(ctx context.Context, id uuid.UUID, kind types.ItemKind, set types.ItemSet) error
	ConsigneeTenderID(ctx context.Context, consigneeID uuid.UUID) (uuid.UUID, error)
}

// Recompute derives the tender's status from its consignees and persists
// it if it changed. The tender row is locked first, so concurrent
// recomputations for the same tender serialize instead of losing updates.
// A missing tender is logged and reported as an empty status, not an
// error: the write that triggered the recomputation is allowed to stand.
func Recompute(ctx context.Context, s Store, tenderID uuid.UUID) (types.TenderStatus, error) {
	tender, err := s.TenderForUpdate(ctx, tenderID)
	if err != nil {
		var notFound *db.TenderNotFoundError
		if errors.As(err, &notFound) {
			logger.Errorf("Tender %s not found, skipping status update", tenderID)
			return "", nil
		}
		return "", fmt.Errorf("loading tender %s: %w", tenderID, err)
	}

	consignees, err := s.TenderConsignees(ctx, tenderID)
	if err != nil {
		return "", fmt.Errorf("loading consignees of tender %s: %w", tenderID, err)
	}

	newStatus := progress.StatusOf(consignees)
	if newStatus == tender.Status {
		return newStatus, nil
	}

	if err := s.SetTenderStatus(ctx, tenderID, newStatus); err != nil {
		return "", fmt.Errorf("persisting status of tender %s: %w", tenderID, err)
	}
	logger.Infof("Updated tender %s status to %s", tenderID, newStatus)
	return newStatus, nil
}

// OnDocumentAttached recomputes the owning tender's status after a
// lifecycle document was inserted in the same transaction.
func OnDocumentAttached(ctx context.Context, s Store, consigneeID uuid.UUID) (types.TenderStatus, error) {
	return recomputeForConsignee(ctx, s, consigneeID)
}

// OnDocumentDetached recomputes after a document was removed. This is the
// one path where a tender's status may legitimately move backward.
func OnDocumentDetached(ctx context.Context, s Store, consigneeID uuid.UUID) (types.TenderStatus, error) {
	return recomputeForConsignee(ctx, s, consigneeID)
}

func recomputeForConsignee(ctx context.Context, s Store, consigneeID uuid.UUID) (types.TenderStatus, error) {
	tenderID, err := s.ConsigneeTenderID(ctx, consigneeID)
	if err != nil {
		return "", fmt.Errorf("resolving tender of consignee %s: %w", consigneeID, err)
	}
	return Recompute(ctx, s, tenderID)
}

// MarkItemsComplete removes the given item names from the tender's pending
// list of the given kind and persists the updated set together with its
// recomputed pending flag. Unknown names are ignored, so the call is
// idempotent. Unlike Recompute, a missing tender here is a hard error:
// the caller addressed the tender directly.
func MarkItemsComplete(ctx context.Context, s Store, tenderID uuid.UUID, kind types.ItemKind, items []string) (types.ItemSet, error) {
	tender, err := s.TenderForUpdate(ctx, tenderID)
	if err != nil {
		return types.ItemSet{}, fmt.Errorf("loading tender %s: %w", tenderID, err)
	}

	updated := pending.MarkComplete(tender.Items(kind), items)
	if err := pending.Validate(updated); err != nil {
		return types.ItemSet{}, fmt.Errorf("tender %s %s: %w", tenderID, kind, err)
	}

	if err := s.SetTenderItems(ctx, tenderID, kind, updated); err != nil {
		return types.ItemSet{}, fmt.Errorf("persisting %s of tender %s: %w", kind, tenderID, err)
	}
	return updated, nil
}

// BulkResult is one tender's outcome of a bulk recomputation.
type BulkResult struct {
	TenderID uuid.UUID          `json:"tenderId"`
	Status   types.TenderStatus `json:"status"`
}

// RecomputeAll applies Recompute to each tender independently. Tenders
// that no longer exist are dropped from the result; they do not abort
// the rest of the batch.
func RecomputeAll(ctx context.Context, s Store, tenderIDs []uuid.UUID) ([]BulkResult, error) {
	results := make([]BulkResult, 0, len(tenderIDs))
	for _, id := range tenderIDs {
		st, err := Recompute(ctx, s, id)
		if err != nil {
			return nil, err
		}
		if st == "" {
			continue
		}
		results = append(results, BulkResult{TenderID: id, Status: st})
	}
	return results, nil
}
