package repository

import (
	"testing"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
)

func TestMetricsRepositorySummary(t *testing.T) {
	db := setupRepositoryTestDB(t)
	f := seedRepositoryFixture(t, db)
	repo := NewMetricsRepository(db)

	periodStart := time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)
	periodEnd := time.Date(2024, 7, 1, 3, 0, 0, 0, time.UTC)
	inPeriod := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	beforePeriod := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)

	createTestClaim(t, db, models.Claim{ClientID: f.client.ID, InvoiceNumber: "NF-1", CreatedByID: f.user.ID, Value: moneyPtr(100), CreatedAt: inPeriod})
	createTestClaim(t, db, models.Claim{ClientID: f.client.ID, InvoiceNumber: "NF-2", CreatedByID: f.user.ID, CreatedAt: inPeriod})
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-3", CreatedByID: f.user.ID, Value: moneyPtr(40),
		Status: constants.ClaimStatusAwaitingReturn, CreatedAt: beforePeriod,
	})
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-4", CreatedByID: f.user.ID, Value: moneyPtr(250),
		Status: constants.ClaimStatusFinalized, Closure: constants.ClaimClosureReturnCompleted,
		CreatedAt: beforePeriod, FinalizedAt: timePtr(inPeriod),
	})
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-5", CreatedByID: f.user.ID, Value: moneyPtr(30),
		Status: constants.ClaimStatusFinalized, Closure: constants.ClaimClosureReturnCompleted,
		CreatedAt: beforePeriod, FinalizedAt: timePtr(beforePeriod),
	})
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-6", CreatedByID: f.user.ID, Value: moneyPtr(70),
		Status: constants.ClaimStatusFinalized, Closure: constants.ClaimClosureAccepted,
		CreatedAt: inPeriod, FinalizedAt: timePtr(inPeriod),
	})

	summary, err := repo.GetSummary(periodStart, periodEnd)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.OpenCount != 2 || summary.AwaitingReturnCount != 1 {
		t.Fatalf("unexpected status counts: %+v", summary)
	}
	if summary.ReturnsCompletedInPeriod != 1 || summary.FinalizedInPeriod != 2 || summary.CreatedInPeriod != 3 {
		t.Fatalf("unexpected period counts: %+v", summary)
	}
	if summary.AcceptedCount != 1 || summary.ReturnCompletedCount != 2 {
		t.Fatalf("unexpected closure counts: %+v", summary)
	}
	if summary.OpenValue.String() != "100.00" {
		t.Fatalf("open value want 100.00 got %s", summary.OpenValue.String())
	}
	if summary.ReturnedValue.String() != "280.00" {
		t.Fatalf("returned value want 280.00 got %s", summary.ReturnedValue.String())
	}
	if summary.AcceptedValue.String() != "70.00" {
		t.Fatalf("accepted value want 70.00 got %s", summary.AcceptedValue.String())
	}
}

func TestMetricsRepositoryTopProductsCountsDistinctClaims(t *testing.T) {
	db := setupRepositoryTestDB(t)
	f := seedRepositoryFixture(t, db)
	repo := NewMetricsRepository(db)
	other := models.Product{Name: "Soro Fisiológico", ControlCode: "CTL-2", Active: true}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	finalizedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-1", CreatedByID: f.user.ID,
		Status: constants.ClaimStatusFinalized, Closure: constants.ClaimClosureAccepted, FinalizedAt: &finalizedAt,
		Items: []models.ClaimItem{
			{ProductID: f.product.ID, Quantity: 1, Lot: "A"},
			{ProductID: f.product.ID, Quantity: 3, Lot: "B"},
		},
	})
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-2", CreatedByID: f.user.ID,
		Items: []models.ClaimItem{{ProductID: f.product.ID, Quantity: 1}, {ProductID: other.ID, Quantity: 1}},
	})

	all, err := repo.TopProducts("", 5)
	if err != nil {
		t.Fatalf("top products failed: %v", err)
	}
	if len(all) != 2 || all[0].ProductID != f.product.ID || all[0].Total != 2 || all[1].Total != 1 {
		t.Fatalf("unexpected top products: %+v", all)
	}

	accepted, err := repo.TopProducts(constants.ClaimClosureAccepted, 5)
	if err != nil {
		t.Fatalf("top accepted products failed: %v", err)
	}
	if len(accepted) != 1 || accepted[0].Total != 1 {
		t.Fatalf("unexpected accepted products: %+v", accepted)
	}
}

func TestMetricsRepositoryTopClientsAndDrivers(t *testing.T) {
	db := setupRepositoryTestDB(t)
	f := seedRepositoryFixture(t, db)
	repo := NewMetricsRepository(db)
	second := models.Client{CompanyName: "Drogaria Sul", CNPJ: "22.222.222/0001-22", Active: true}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("create client failed: %v", err)
	}
	finalizedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 2; i++ {
		createTestClaim(t, db, models.Claim{
			ClientID: second.ID, InvoiceNumber: "NF-S", CreatedByID: f.user.ID, DriverID: uintPtr(f.driver.ID),
			Status: constants.ClaimStatusFinalized, Closure: constants.ClaimClosureAccepted, FinalizedAt: &finalizedAt,
		})
	}
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-C", CreatedByID: f.user.ID,
		Status: constants.ClaimStatusFinalized, Closure: constants.ClaimClosureReturnCompleted, FinalizedAt: &finalizedAt,
	})
	createTestClaim(t, db, models.Claim{ClientID: f.client.ID, InvoiceNumber: "NF-O", CreatedByID: f.user.ID, DriverID: uintPtr(f.driver.ID)})

	clients, err := repo.TopClients(10)
	if err != nil {
		t.Fatalf("top clients failed: %v", err)
	}
	if len(clients) != 2 || clients[0].ClientID != second.ID || clients[0].Accepted != 2 || clients[1].Returned != 1 {
		t.Fatalf("unexpected top clients: %+v", clients)
	}

	drivers, err := repo.TopDrivers(5)
	if err != nil {
		t.Fatalf("top drivers failed: %v", err)
	}
	if len(drivers) != 1 || drivers[0].Total != 3 || drivers[0].CPF != f.driver.CPF {
		t.Fatalf("unexpected top drivers: %+v", drivers)
	}
}
