package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"equiptrack/internal/types"
)

type Database struct {
	pool *pgxpool.Pool
}

// runner is the part of pgx shared by pool and transaction handles, so
// the same query helpers serve both.
type runner interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func NewDatabase(connString string) (*Database, error) {

	err := Migrate(connString)

	if err != nil {
		return nil, fmt.Errorf("failed to migrate %w", err)
	}

	ctx := context.Background()
	p, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}

	return &Database{
		pool: p,
	}, nil
}

func (d *Database) Close() {
	d.pool.Close()
}

func (d *Database) CreateUser(ctx context.Context, username string, email string, password string, roles []string) error {

	query := `
		INSERT INTO users (username, email, password, roles)
		VALUES ($1, $2, $3, $4)
		`
	_, err := d.pool.Exec(ctx, query, username, email, password, roles)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return fmt.Errorf("%w", &UserExistsError{Username: username})
		}
		return err
	}
	return nil
}

func (d *Database) GetUserHashedPassword(ctx context.Context, username string) (string, error) {
	query := `
		SELECT password
		FROM users
		WHERE username = $1 AND is_active`

	row := d.pool.QueryRow(ctx, query, username)

	var password string

	err := row.Scan(&password)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%w", &UserNotFoundError{Username: username})
	}
	return password, nil
}

func (d *Database) GetUser(ctx context.Context, username string) (*types.User, error) {
	query := `
		SELECT id, username, email, roles, is_active
		FROM users
		WHERE username = $1`

	rows, err := d.pool.Query(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[types.User])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w", &UserNotFoundError{Username: username})
		}
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return user, nil
}

const tenderColumns = `
	id, tender_number, authority_type, equipment_name,
	lead_time_to_deliver, lead_time_to_install, status,
	selected_accessories, selected_consumables,
	accessories_pending, consumables_pending, remarks,
	created_by, created_at, updated_at`

func getTender(ctx context.Context, r runner, id uuid.UUID, forUpdate bool) (*types.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tenders WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := r.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}

	tender, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[types.Tender])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w", &TenderNotFoundError{TenderID: id})
		}
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return tender, nil
}

func (d *Database) GetTender(ctx context.Context, id uuid.UUID) (*types.Tender, error) {
	return getTender(ctx, d.pool, id, false)
}

func (d *Database) GetTenders(ctx context.Context, status types.TenderStatus) ([]types.Tender, error) {
	query := `SELECT ` + tenderColumns + ` FROM tenders`
	var args []any
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := d.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}

	tenders, err := pgx.CollectRows(rows, pgx.RowToStructByName[types.Tender])
	if err != nil {
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return tenders, nil
}

// DeleteTender removes a tender that has no consignees left. The consignee
// check and the delete run in one transaction so a concurrent consignee
// insert cannot slip in between.
func (d *Database) DeleteTender(ctx context.Context, id uuid.UUID) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	err = tx.QueryRow(ctx, `SELECT COUNT(1) FROM consignees WHERE tender_id = $1`, id).Scan(&count)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w", ErrTenderHasConsignees)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM tenders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w", &TenderNotFoundError{TenderID: id})
	}

	return tx.Commit(ctx)
}

func getConsignee(ctx context.Context, r runner, id uuid.UUID) (*types.Consignee, error) {
	query := `
		SELECT id, tender_id, sr_no, district_name, block_name, facility_name,
		       contact_person_name, contact_person_email, contact_person_mobile,
		       machine_count, consignment_status, created_at, updated_at
		FROM consignees
		WHERE id = $1`

	rows, err := r.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}

	consignee, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[types.Consignee])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w", &ConsigneeNotFoundError{ConsigneeID: id})
		}
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return consignee, nil
}

func (d *Database) GetConsignee(ctx context.Context, id uuid.UUID) (*types.Consignee, error) {
	return getConsignee(ctx, d.pool, id)
}

func (d *Database) TenderConsignees(ctx context.Context, tenderID uuid.UUID) ([]types.ConsigneeDetail, error) {
	return tenderConsignees(ctx, d.pool, tenderID)
}

func (d *Database) GetTenderLOA(ctx context.Context, tenderID uuid.UUID) (*types.TenderDocument, error) {
	return getTenderDocument(ctx, d.pool, "loas", tenderID)
}

func (d *Database) GetTenderPO(ctx context.Context, tenderID uuid.UUID) (*types.TenderDocument, error) {
	return getTenderDocument(ctx, d.pool, "purchase_orders", tenderID)
}

func getTenderDocument(ctx context.Context, r runner, table string, tenderID uuid.UUID) (*types.TenderDocument, error) {
	query := `
		SELECT id, tender_id, number, document_date, file_path, created_by, created_at
		FROM ` + table + `
		WHERE tender_id = $1`

	rows, err := r.Query(ctx, query, tenderID)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}

	doc, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[types.TenderDocument])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return doc, nil
}

// GetConsignmentDocument loads one document slot of a consignee. The
// non-logistics tables have no courier columns, so empty ones are selected
// to keep the struct scan uniform.
func (d *Database) GetConsignmentDocument(ctx context.Context, kind types.DocumentKind, consigneeID uuid.UUID) (*types.ConsignmentDocument, error) {
	columns := `id, consignee_id, document_date, '' AS courier_name, '' AS docket_number, file_path, created_by, created_at`
	if kind == types.DocLogistics {
		columns = `id, consignee_id, document_date, courier_name, docket_number, file_path, created_by, created_at`
	}
	query := `SELECT ` + columns + ` FROM ` + documentTable(kind) + ` WHERE consignee_id = $1`

	rows, err := d.pool.Query(ctx, query, consigneeID)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}

	doc, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[types.ConsignmentDocument])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w", &DocumentNotFoundError{ConsigneeID: consigneeID, Kind: kind})
		}
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return doc, nil
}

func (d *Database) ListCatalog(ctx context.Context, kind types.ItemKind) ([]string, error) {
	table := "accessories"
	if kind == types.ConsumableItems {
		table = "consumables"
	}

	rows, err := d.pool.Query(ctx, `SELECT name FROM `+table+` ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}

	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return names, nil
}

func (d *Database) AddCatalogItem(ctx context.Context, kind types.ItemKind, name string) error {
	table := "accessories"
	if kind == types.ConsumableItems {
		table = "consumables"
	}

	_, err := d.pool.Exec(ctx, `INSERT INTO `+table+` (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ListMachines returns the active entries of the machine catalog.
// Deactivated machines are kept in the table but never listed.
func (d *Database) ListMachines(ctx context.Context) ([]types.Machine, error) {
	query := `
		SELECT id, name, manufacturer, is_active, created_at
		FROM machines
		WHERE is_active
		ORDER BY name`

	rows, err := d.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed collecting rows %w", err)
	}

	machines, err := pgx.CollectRows(rows, pgx.RowToStructByName[types.Machine])
	if err != nil {
		return nil, fmt.Errorf("failed unpacking rows %w", err)
	}
	return machines, nil
}

func (d *Database) InsertMachine(ctx context.Context, machine *types.Machine) error {
	query := `
		INSERT INTO machines (name, manufacturer)
		VALUES ($1, $2)
		RETURNING id, is_active, created_at`

	err := d.pool.QueryRow(ctx, query, machine.Name, machine.Manufacturer).
		Scan(&machine.ID, &machine.IsActive, &machine.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w", &MachineExistsError{Name: machine.Name})
		}
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (d *Database) UpdateMachine(ctx context.Context, id uuid.UUID, name string, manufacturer string) error {
	query := `
		UPDATE machines
		SET name = $1, manufacturer = $2
		WHERE id = $3 AND is_active`

	tag, err := d.pool.Exec(ctx, query, name, manufacturer, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w", &MachineExistsError{Name: name})
		}
		return fmt.Errorf("%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w", &MachineNotFoundError{MachineID: id})
	}
	return nil
}

// DeactivateMachine soft-deletes a catalog entry.
func (d *Database) DeactivateMachine(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE machines
		SET is_active = false
		WHERE id = $1 AND is_active`

	tag, err := d.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w", &MachineNotFoundError{MachineID: id})
	}
	return nil
}
