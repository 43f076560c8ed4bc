package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"equiptrack/internal/types"
)

// Tx is a transaction-scoped view of the store. A document insert and the
// tender status recomputation it triggers go through the same Tx, so they
// commit or roll back together.
type Tx struct {
	tx pgx.Tx
}

// InTransaction runs fn inside a single database transaction. The
// transaction commits only when fn returns nil; any error rolls back every
// write made through the Tx.
func (d *Database) InTransaction(ctx context.Context, fn func(t *Tx) error) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// InsertTender creates a tender. Both pending flags are derived from the
// initial item sets.
func (t *Tx) InsertTender(ctx context.Context, tender *types.Tender) error {
	query := `
		INSERT INTO tenders
			(tender_number, authority_type, equipment_name,
			 lead_time_to_deliver, lead_time_to_install, status,
			 selected_accessories, selected_consumables,
			 accessories_pending, consumables_pending, remarks, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	err := t.tx.QueryRow(ctx, query,
		tender.TenderNumber, tender.AuthorityType, tender.EquipmentName,
		tender.LeadTimeToDeliver, tender.LeadTimeToInstall, tender.Status,
		tender.SelectedAccessories, tender.SelectedConsumables,
		tender.SelectedAccessories.PendingFlag(), tender.SelectedConsumables.PendingFlag(),
		tender.Remarks, tender.CreatedBy).
		Scan(&tender.ID, &tender.CreatedAt, &tender.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w", &TenderExistsError{TenderNumber: tender.TenderNumber})
		}
		return fmt.Errorf("%w", err)
	}
	tender.AccessoriesPending = tender.SelectedAccessories.PendingFlag()
	tender.ConsumablesPending = tender.SelectedConsumables.PendingFlag()
	return nil
}

// TenderForUpdate reads a tender and takes a row lock on it, serializing
// concurrent status recomputations for the same tender.
func (t *Tx) TenderForUpdate(ctx context.Context, id uuid.UUID) (*types.Tender, error) {
	return getTender(ctx, t.tx, id, true)
}

// TenderConsignees loads all consignees of a tender together with their
// four document slots. Absent documents come back as nil slots.
func (t *Tx) TenderConsignees(ctx context.Context, tenderID uuid.UUID) ([]types.ConsigneeDetail, error) {
	return tenderConsignees(ctx, t.tx, tenderID)
}

func tenderConsignees(ctx context.Context, r runner, tenderID uuid.UUID) ([]types.ConsigneeDetail, error) {
	query := `
		SELECT c.id, c.tender_id, c.sr_no, c.district_name, c.block_name, c.facility_name,
		       c.contact_person_name, c.contact_person_email, c.contact_person_mobile,
		       c.machine_count, c.consignment_status, c.created_at, c.updated_at,
		       ld.id, ld.document_date, ld.courier_name, ld.docket_number, ld.file_path,
		       cr.id, cr.document_date, cr.file_path,
		       ir.id, ir.document_date, ir.file_path,
		       iv.id, iv.document_date, iv.file_path
		FROM consignees c
		LEFT JOIN logistics_details ld ON ld.consignee_id = c.id
		LEFT JOIN challan_receipts cr ON cr.consignee_id = c.id
		LEFT JOIN installation_reports ir ON ir.consignee_id = c.id
		LEFT JOIN invoices iv ON iv.consignee_id = c.id
		WHERE c.tender_id = $1
		ORDER BY c.created_at`

	rows, err := r.Query(ctx, query, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}
	defer rows.Close()

	var details []types.ConsigneeDetail
	for rows.Next() {
		var (
			detail types.ConsigneeDetail

			ldID, crID, irID, ivID         *uuid.UUID
			ldDate, crDate, irDate, ivDate *time.Time
			ldCourier, ldDocket            *string
			ldPath, crPath, irPath, ivPath *string
		)

		err := rows.Scan(
			&detail.ID, &detail.TenderID, &detail.SrNo, &detail.DistrictName,
			&detail.BlockName, &detail.FacilityName,
			&detail.ContactPersonName, &detail.ContactPersonEmail, &detail.ContactPersonPhone,
			&detail.MachineCount, &detail.ConsignmentStatus, &detail.CreatedAt, &detail.UpdatedAt,
			&ldID, &ldDate, &ldCourier, &ldDocket, &ldPath,
			&crID, &crDate, &crPath,
			&irID, &irDate, &irPath,
			&ivID, &ivDate, &ivPath,
		)
		if err != nil {
			return nil, fmt.Errorf("failed unpacking rows %w", err)
		}

		detail.Documents.Logistics = slotDocument(detail.ID, ldID, ldDate, ldPath, ldCourier, ldDocket)
		detail.Documents.Challan = slotDocument(detail.ID, crID, crDate, crPath, nil, nil)
		detail.Documents.Installation = slotDocument(detail.ID, irID, irDate, irPath, nil, nil)
		detail.Documents.Invoice = slotDocument(detail.ID, ivID, ivDate, ivPath, nil, nil)

		details = append(details, detail)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}
	return details, nil
}

func slotDocument(consigneeID uuid.UUID, id *uuid.UUID, date *time.Time, path, courier, docket *string) *types.ConsignmentDocument {
	if id == nil {
		return nil
	}
	doc := &types.ConsignmentDocument{
		ID:          *id,
		ConsigneeID: consigneeID,
	}
	if date != nil {
		doc.DocumentDate = *date
	}
	if path != nil {
		doc.FilePath = *path
	}
	if courier != nil {
		doc.CourierName = *courier
	}
	if docket != nil {
		doc.DocketNumber = *docket
	}
	return doc
}

func (t *Tx) SetTenderStatus(ctx context.Context, id uuid.UUID, status types.TenderStatus) error {
	query := `
		UPDATE tenders
		SET status = $1, updated_at = NOW()
		WHERE id = $2`

	tag, err := t.tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w", &TenderNotFoundError{TenderID: id})
	}
	return nil
}

// SetTenderItems persists an item set and its derived pending flag. The
// flag is always recomputed from the set, never taken from the caller.
func (t *Tx) SetTenderItems(ctx context.Context, id uuid.UUID, kind types.ItemKind, set types.ItemSet) error {
	column := "selected_accessories"
	flag := "accessories_pending"
	if kind == types.ConsumableItems {
		column = "selected_consumables"
		flag = "consumables_pending"
	}

	query := `
		UPDATE tenders
		SET ` + column + ` = $1, ` + flag + ` = $2, updated_at = NOW()
		WHERE id = $3`

	tag, err := t.tx.Exec(ctx, query, set, set.PendingFlag(), id)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w", &TenderNotFoundError{TenderID: id})
	}
	return nil
}

func (t *Tx) ConsigneeTenderID(ctx context.Context, consigneeID uuid.UUID) (uuid.UUID, error) {
	query := `
		SELECT tender_id
		FROM consignees
		WHERE id = $1`

	var tenderID uuid.UUID
	err := t.tx.QueryRow(ctx, query, consigneeID).Scan(&tenderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, fmt.Errorf("%w", &ConsigneeNotFoundError{ConsigneeID: consigneeID})
		}
		return uuid.Nil, fmt.Errorf("%w", err)
	}
	return tenderID, nil
}

func (t *Tx) GetConsignee(ctx context.Context, id uuid.UUID) (*types.Consignee, error) {
	return getConsignee(ctx, t.tx, id)
}

func (t *Tx) InsertConsignee(ctx context.Context, c *types.Consignee) error {
	query := `
		INSERT INTO consignees
			(tender_id, sr_no, district_name, block_name, facility_name,
			 contact_person_name, contact_person_email, contact_person_mobile,
			 machine_count, consignment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := t.tx.QueryRow(ctx, query,
		c.TenderID, c.SrNo, c.DistrictName, c.BlockName, c.FacilityName,
		c.ContactPersonName, c.ContactPersonEmail, c.ContactPersonPhone,
		c.MachineCount, c.ConsignmentStatus).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("%w", &TenderNotFoundError{TenderID: c.TenderID})
		}
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (t *Tx) SetConsignmentStatus(ctx context.Context, id uuid.UUID, status types.ConsignmentStatus) error {
	query := `
		UPDATE consignees
		SET consignment_status = $1, updated_at = NOW()
		WHERE id = $2`

	tag, err := t.tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w", &ConsigneeNotFoundError{ConsigneeID: id})
	}
	return nil
}

func documentTable(kind types.DocumentKind) string {
	switch kind {
	case types.DocChallan:
		return "challan_receipts"
	case types.DocInstallation:
		return "installation_reports"
	case types.DocInvoice:
		return "invoices"
	default:
		return "logistics_details"
	}
}

// InsertConsignmentDocument attaches a lifecycle document to a consignee.
// The unique constraint on consignee_id keeps each slot single-occupancy.
func (t *Tx) InsertConsignmentDocument(ctx context.Context, kind types.DocumentKind, doc *types.ConsignmentDocument) error {
	table := documentTable(kind)

	var err error
	if kind == types.DocLogistics {
		query := `
			INSERT INTO ` + table + `
				(consignee_id, document_date, courier_name, docket_number, file_path, created_by)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at`
		err = t.tx.QueryRow(ctx, query,
			doc.ConsigneeID, doc.DocumentDate, doc.CourierName, doc.DocketNumber,
			doc.FilePath, doc.CreatedBy).
			Scan(&doc.ID, &doc.CreatedAt)
	} else {
		query := `
			INSERT INTO ` + table + `
				(consignee_id, document_date, file_path, created_by)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at`
		err = t.tx.QueryRow(ctx, query,
			doc.ConsigneeID, doc.DocumentDate, doc.FilePath, doc.CreatedBy).
			Scan(&doc.ID, &doc.CreatedAt)
	}

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return fmt.Errorf("%w", &DocumentExistsError{ConsigneeID: doc.ConsigneeID, Kind: kind})
			case pgerrcode.ForeignKeyViolation:
				return fmt.Errorf("%w", &ConsigneeNotFoundError{ConsigneeID: doc.ConsigneeID})
			}
		}
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (t *Tx) DeleteConsignmentDocument(ctx context.Context, kind types.DocumentKind, consigneeID uuid.UUID) error {
	query := `DELETE FROM ` + documentTable(kind) + ` WHERE consignee_id = $1`

	tag, err := t.tx.Exec(ctx, query, consigneeID)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w", &DocumentNotFoundError{ConsigneeID: consigneeID, Kind: kind})
	}
	return nil
}

func (t *Tx) InsertTenderLOA(ctx context.Context, doc *types.TenderDocument) error {
	return t.insertTenderDocument(ctx, "loas", doc)
}

func (t *Tx) InsertTenderPO(ctx context.Context, doc *types.TenderDocument) error {
	return t.insertTenderDocument(ctx, "purchase_orders", doc)
}

func (t *Tx) insertTenderDocument(ctx context.Context, table string, doc *types.TenderDocument) error {
	query := `
		INSERT INTO ` + table + ` (tender_id, number, document_date, file_path, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`

	err := t.tx.QueryRow(ctx, query,
		doc.TenderID, doc.Number, doc.DocumentDate, doc.FilePath, doc.CreatedBy).
		Scan(&doc.ID, &doc.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return fmt.Errorf("%w", &TenderNotFoundError{TenderID: doc.TenderID})
		}
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (t *Tx) InsertAuditLog(ctx context.Context, entry *types.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, old_values, new_values)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := t.tx.QueryRow(ctx, query,
		entry.UserID, entry.Action, entry.EntityType, entry.EntityID,
		entry.OldValues, entry.NewValues).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}
