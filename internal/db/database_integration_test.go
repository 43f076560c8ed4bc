//go:build integration_tests
// +build integration_tests

package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"gotest.tools/assert"

	"equiptrack/internal/testutils"
	"equiptrack/internal/types"
)

var DBDSN string

func TestMain(m *testing.M) {
	code, err := runMain(m)

	if err != nil {
		log.Fatal(err)
	}
	os.Exit(code)
}

func runMain(m *testing.M) (int, error) {

	databaseDSN, cleanUp, err := testutils.RunTestDatabase()
	defer cleanUp()

	if err != nil {
		return 1, err
	}
	DBDSN = databaseDSN

	exitCode := m.Run()

	return exitCode, nil

}

func cleanTables(t *testing.T) {
	t.Cleanup(func() {
		conn, err := pgx.Connect(context.Background(), DBDSN)
		if err != nil {
			log.Printf("could not clean up database %s", err.Error())
			return
		}
		conn.Exec(context.Background(), "TRUNCATE TABLE tenders CASCADE")
		conn.Exec(context.Background(), "TRUNCATE TABLE users CASCADE")
		conn.Exec(context.Background(), "TRUNCATE TABLE accessories CASCADE")
		conn.Exec(context.Background(), "TRUNCATE TABLE consumables CASCADE")
		conn.Exec(context.Background(), "TRUNCATE TABLE machines CASCADE")
	})
}

func testTender(number string) *types.Tender {
	return &types.Tender{
		TenderNumber:      number,
		AuthorityType:     "State Health Society",
		EquipmentName:     "X-Ray Machine",
		LeadTimeToDeliver: 45,
		LeadTimeToInstall: 15,
		Status:            types.StatusDraft,
		SelectedAccessories: types.ItemSet{
			Items:   []string{"Lead Apron", "Cassette"},
			Pending: []string{"Lead Apron", "Cassette"},
		},
		SelectedConsumables: types.ItemSet{
			Items:   []string{},
			Pending: []string{},
		},
	}
}

func testConsignee(tenderID uuid.UUID, srNo string) *types.Consignee {
	return &types.Consignee{
		TenderID:           tenderID,
		SrNo:               srNo,
		DistrictName:       "Patna",
		BlockName:          "Phulwari",
		FacilityName:       "District Hospital",
		ContactPersonName:  "S. Kumar",
		ContactPersonEmail: "s.kumar@example.org",
		ContactPersonPhone: "9876543210",
		MachineCount:       2,
		ConsignmentStatus:  types.ConsignmentProcessing,
	}
}

func insertTestTender(t *testing.T, database *Database, number string) *types.Tender {
	tender := testTender(number)
	err := database.InTransaction(context.Background(), func(tx *Tx) error {
		return tx.InsertTender(context.Background(), tender)
	})
	assert.NilError(t, err)
	return tender
}

func insertTestConsignee(t *testing.T, database *Database, tenderID uuid.UUID, srNo string) *types.Consignee {
	consignee := testConsignee(tenderID, srNo)
	err := database.InTransaction(context.Background(), func(tx *Tx) error {
		return tx.InsertConsignee(context.Background(), consignee)
	})
	assert.NilError(t, err)
	return consignee
}

func TestInsertAndGetTender(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	tender := insertTestTender(t, database, "GEM/2025/B/001")
	assert.Assert(t, tender.ID != uuid.Nil)
	assert.Assert(t, tender.AccessoriesPending)
	assert.Assert(t, !tender.ConsumablesPending)

	got, err := database.GetTender(ctx, tender.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.TenderNumber, "GEM/2025/B/001")
	assert.Equal(t, got.Status, types.StatusDraft)
	assert.DeepEqual(t, got.SelectedAccessories.Pending, []string{"Lead Apron", "Cassette"})

	t.Run("duplicate tender number", func(t *testing.T) {
		err := database.InTransaction(ctx, func(tx *Tx) error {
			return tx.InsertTender(ctx, testTender("GEM/2025/B/001"))
		})
		var exists *TenderExistsError
		assert.Assert(t, errors.As(err, &exists))
		assert.Equal(t, exists.TenderNumber, "GEM/2025/B/001")
	})

	t.Run("missing tender", func(t *testing.T) {
		_, err := database.GetTender(ctx, uuid.New())
		var notFound *TenderNotFoundError
		assert.Assert(t, errors.As(err, &notFound))
	})
}

func TestGetTendersStatusFilter(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	first := insertTestTender(t, database, "GEM/2025/B/010")
	insertTestTender(t, database, "GEM/2025/B/011")

	err = database.InTransaction(ctx, func(tx *Tx) error {
		return tx.SetTenderStatus(ctx, first.ID, types.StatusInProgress)
	})
	assert.NilError(t, err)

	all, err := database.GetTenders(ctx, "")
	assert.NilError(t, err)
	assert.Equal(t, len(all), 2)

	inProgress, err := database.GetTenders(ctx, types.StatusInProgress)
	assert.NilError(t, err)
	assert.Equal(t, len(inProgress), 1)
	assert.Equal(t, inProgress[0].ID, first.ID)
}

func TestConsigneeDocumentSlots(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	tender := insertTestTender(t, database, "GEM/2025/B/020")
	consignee := insertTestConsignee(t, database, tender.ID, "1")

	details, err := database.TenderConsignees(ctx, tender.ID)
	assert.NilError(t, err)
	assert.Equal(t, len(details), 1)
	assert.Assert(t, details[0].Documents.Logistics == nil)
	assert.Assert(t, details[0].Documents.Challan == nil)

	doc := &types.ConsignmentDocument{
		ConsigneeID:  consignee.ID,
		CourierName:  "BlueDart",
		DocketNumber: "BD12345",
		FilePath:     "logistics/abc.pdf",
	}
	err = database.InTransaction(ctx, func(tx *Tx) error {
		return tx.InsertConsignmentDocument(ctx, types.DocLogistics, doc)
	})
	assert.NilError(t, err)

	details, err = database.TenderConsignees(ctx, tender.ID)
	assert.NilError(t, err)
	assert.Assert(t, details[0].Documents.Logistics != nil)
	assert.Equal(t, details[0].Documents.Logistics.DocketNumber, "BD12345")
	assert.Assert(t, details[0].Documents.Invoice == nil)

	t.Run("second document in same slot rejected", func(t *testing.T) {
		err := database.InTransaction(ctx, func(tx *Tx) error {
			return tx.InsertConsignmentDocument(ctx, types.DocLogistics, &types.ConsignmentDocument{
				ConsigneeID: consignee.ID,
				FilePath:    "logistics/other.pdf",
			})
		})
		var exists *DocumentExistsError
		assert.Assert(t, errors.As(err, &exists))
		assert.Equal(t, exists.Kind, types.DocLogistics)
	})

	t.Run("document for unknown consignee", func(t *testing.T) {
		err := database.InTransaction(ctx, func(tx *Tx) error {
			return tx.InsertConsignmentDocument(ctx, types.DocChallan, &types.ConsignmentDocument{
				ConsigneeID: uuid.New(),
				FilePath:    "challan/abc.pdf",
			})
		})
		var notFound *ConsigneeNotFoundError
		assert.Assert(t, errors.As(err, &notFound))
	})

	t.Run("detach clears the slot", func(t *testing.T) {
		err := database.InTransaction(ctx, func(tx *Tx) error {
			return tx.DeleteConsignmentDocument(ctx, types.DocLogistics, consignee.ID)
		})
		assert.NilError(t, err)

		details, err := database.TenderConsignees(ctx, tender.ID)
		assert.NilError(t, err)
		assert.Assert(t, details[0].Documents.Logistics == nil)

		err = database.InTransaction(ctx, func(tx *Tx) error {
			return tx.DeleteConsignmentDocument(ctx, types.DocLogistics, consignee.ID)
		})
		var notFound *DocumentNotFoundError
		assert.Assert(t, errors.As(err, &notFound))
	})
}

func TestGetConsignmentDocument(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	tender := insertTestTender(t, database, "GEM/2025/B/025")
	consignee := insertTestConsignee(t, database, tender.ID, "1")

	err = database.InTransaction(ctx, func(tx *Tx) error {
		return tx.InsertConsignmentDocument(ctx, types.DocLogistics, &types.ConsignmentDocument{
			ConsigneeID:  consignee.ID,
			CourierName:  "BlueDart",
			DocketNumber: "BD12345",
			FilePath:     "logistics/abc.pdf",
		})
	})
	assert.NilError(t, err)
	err = database.InTransaction(ctx, func(tx *Tx) error {
		return tx.InsertConsignmentDocument(ctx, types.DocChallan, &types.ConsignmentDocument{
			ConsigneeID: consignee.ID,
			FilePath:    "challan/def.pdf",
		})
	})
	assert.NilError(t, err)

	doc, err := database.GetConsignmentDocument(ctx, types.DocLogistics, consignee.ID)
	assert.NilError(t, err)
	assert.Equal(t, doc.FilePath, "logistics/abc.pdf")
	assert.Equal(t, doc.DocketNumber, "BD12345")

	challan, err := database.GetConsignmentDocument(ctx, types.DocChallan, consignee.ID)
	assert.NilError(t, err)
	assert.Equal(t, challan.FilePath, "challan/def.pdf")
	assert.Equal(t, challan.CourierName, "")

	_, err = database.GetConsignmentDocument(ctx, types.DocInvoice, consignee.ID)
	var notFound *DocumentNotFoundError
	assert.Assert(t, errors.As(err, &notFound))
	assert.Equal(t, notFound.Kind, types.DocInvoice)
}

func TestTransactionRollsBackAllWrites(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	tender := insertTestTender(t, database, "GEM/2025/B/030")
	consignee := insertTestConsignee(t, database, tender.ID, "1")

	failure := fmt.Errorf("boom")
	err = database.InTransaction(ctx, func(tx *Tx) error {
		insertErr := tx.InsertConsignmentDocument(ctx, types.DocInvoice, &types.ConsignmentDocument{
			ConsigneeID: consignee.ID,
			FilePath:    "invoices/abc.pdf",
		})
		if insertErr != nil {
			return insertErr
		}
		if err := tx.SetTenderStatus(ctx, tender.ID, types.StatusInProgress); err != nil {
			return err
		}
		return failure
	})
	assert.Assert(t, errors.Is(err, failure))

	details, err := database.TenderConsignees(ctx, tender.ID)
	assert.NilError(t, err)
	assert.Assert(t, details[0].Documents.Invoice == nil)

	got, err := database.GetTender(ctx, tender.ID)
	assert.NilError(t, err)
	assert.Equal(t, got.Status, types.StatusDraft)
}

func TestSetTenderItems(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	tender := insertTestTender(t, database, "GEM/2025/B/040")

	err = database.InTransaction(ctx, func(tx *Tx) error {
		return tx.SetTenderItems(ctx, tender.ID, types.AccessoryItems, types.ItemSet{
			Items:   []string{"Lead Apron", "Cassette"},
			Pending: []string{},
		})
	})
	assert.NilError(t, err)

	got, err := database.GetTender(ctx, tender.ID)
	assert.NilError(t, err)
	assert.Assert(t, !got.AccessoriesPending)
	assert.Equal(t, len(got.SelectedAccessories.Pending), 0)
	assert.DeepEqual(t, got.SelectedAccessories.Items, []string{"Lead Apron", "Cassette"})
}

func TestDeleteTender(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	tender := insertTestTender(t, database, "GEM/2025/B/050")
	insertTestConsignee(t, database, tender.ID, "1")

	err = database.DeleteTender(ctx, tender.ID)
	assert.Assert(t, errors.Is(err, ErrTenderHasConsignees))

	empty := insertTestTender(t, database, "GEM/2025/B/051")
	assert.NilError(t, database.DeleteTender(ctx, empty.ID))

	err = database.DeleteTender(ctx, uuid.New())
	var notFound *TenderNotFoundError
	assert.Assert(t, errors.As(err, &notFound))
}

func TestUsers(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	err = database.CreateUser(ctx, "manager", "manager@example.org", "hashed", []string{types.RoleTenderManager})
	assert.NilError(t, err)

	password, err := database.GetUserHashedPassword(ctx, "manager")
	assert.NilError(t, err)
	assert.Equal(t, password, "hashed")

	user, err := database.GetUser(ctx, "manager")
	assert.NilError(t, err)
	assert.DeepEqual(t, user.Roles, []string{types.RoleTenderManager})
	assert.Assert(t, user.IsActive)

	err = database.CreateUser(ctx, "manager", "other@example.org", "hashed", nil)
	var exists *UserExistsError
	assert.Assert(t, errors.As(err, &exists))

	_, err = database.GetUserHashedPassword(ctx, "nobody")
	var notFound *UserNotFoundError
	assert.Assert(t, errors.As(err, &notFound))
}

func TestCatalog(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	assert.NilError(t, database.AddCatalogItem(ctx, types.AccessoryItems, "Lead Apron"))
	assert.NilError(t, database.AddCatalogItem(ctx, types.AccessoryItems, "Cassette"))
	// re-adding is a no-op
	assert.NilError(t, database.AddCatalogItem(ctx, types.AccessoryItems, "Cassette"))

	names, err := database.ListCatalog(ctx, types.AccessoryItems)
	assert.NilError(t, err)
	assert.DeepEqual(t, names, []string{"Cassette", "Lead Apron"})

	consumables, err := database.ListCatalog(ctx, types.ConsumableItems)
	assert.NilError(t, err)
	assert.Equal(t, len(consumables), 0)
}

func TestMachines(t *testing.T) {

	cleanTables(t)

	database, err := NewDatabase(DBDSN)
	assert.NilError(t, err)

	ctx := context.Background()

	machine := &types.Machine{Name: "XR-100", Manufacturer: "Siemens"}
	assert.NilError(t, database.InsertMachine(ctx, machine))
	assert.Assert(t, machine.ID != uuid.Nil)
	assert.Assert(t, machine.IsActive)

	t.Run("duplicate name", func(t *testing.T) {
		err := database.InsertMachine(ctx, &types.Machine{Name: "XR-100"})
		var exists *MachineExistsError
		assert.Assert(t, errors.As(err, &exists))
		assert.Equal(t, exists.Name, "XR-100")
	})

	t.Run("update", func(t *testing.T) {
		assert.NilError(t, database.UpdateMachine(ctx, machine.ID, "XR-100S", "Siemens"))

		machines, err := database.ListMachines(ctx)
		assert.NilError(t, err)
		assert.Equal(t, len(machines), 1)
		assert.Equal(t, machines[0].Name, "XR-100S")
	})

	t.Run("deactivate hides from listing", func(t *testing.T) {
		assert.NilError(t, database.DeactivateMachine(ctx, machine.ID))

		machines, err := database.ListMachines(ctx)
		assert.NilError(t, err)
		assert.Equal(t, len(machines), 0)

		// the soft-deleted entry is gone for further mutations too
		var notFound *MachineNotFoundError
		err = database.DeactivateMachine(ctx, machine.ID)
		assert.Assert(t, errors.As(err, &notFound))
		err = database.UpdateMachine(ctx, machine.ID, "XR-100S", "Siemens")
		assert.Assert(t, errors.As(err, &notFound))
	})
}
