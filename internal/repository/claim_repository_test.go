package repository

import (
	"testing"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
)

func TestClaimRepositoryListFilters(t *testing.T) {
	db := setupRepositoryTestDB(t)
	f := seedRepositoryFixture(t, db)
	repo := NewClaimRepository(db)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	withTrailer := createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-1001", CreatedByID: f.user.ID,
		DriverID: uintPtr(f.driver.ID), VehicleID: uintPtr(f.truck.ID), TrailerID: uintPtr(f.trailer.ID),
		Location: "Cajamar - SP", CreatedAt: base,
		Items: []models.ClaimItem{{ProductID: f.product.ID, Quantity: 2}},
	})
	awaiting := createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-2002", CreatedByID: f.user.ID,
		Status: constants.ClaimStatusAwaitingReturn, ReturnInvoiceNumber: "NFD-77",
		DistributionCenterID: uintPtr(f.center.ID), Location: "Curitiba PR", CreatedAt: base.Add(24 * time.Hour),
	})
	literal := createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "LOTE_50%", CreatedByID: f.user.ID,
		Location: "Jundiaí", CreatedAt: base.Add(48 * time.Hour),
	})

	cases := []struct {
		name   string
		filter ClaimListFilter
		want   []uint
	}{
		{name: "status", filter: ClaimListFilter{Status: constants.ClaimStatusAwaitingReturn}, want: []uint{awaiting.ID}},
		{name: "plate matches trailer", filter: ClaimListFilter{Plate: "xyz9"}, want: []uint{withTrailer.ID}},
		{name: "invoice substring", filter: ClaimListFilter{InvoiceNumber: "200"}, want: []uint{awaiting.ID}},
		{name: "return invoice", filter: ClaimListFilter{ReturnInvoiceNumber: "77"}, want: []uint{awaiting.ID}},
		{name: "driver cpf", filter: ClaimListFilter{DriverCPF: "456.789"}, want: []uint{withTrailer.ID}},
		{name: "keyword product name", filter: ClaimListFilter{Keyword: "Dipirona"}, want: []uint{withTrailer.ID}},
		{name: "keyword client name", filter: ClaimListFilter{Keyword: "Central"}, want: []uint{literal.ID, awaiting.ID, withTrailer.ID}},
		{name: "underscore is literal", filter: ClaimListFilter{InvoiceNumber: "NF_1"}, want: []uint{}},
		{name: "percent is literal", filter: ClaimListFilter{InvoiceNumber: "%"}, want: []uint{literal.ID}},
		{name: "literal underscore matches", filter: ClaimListFilter{InvoiceNumber: "e_50"}, want: []uint{literal.ID}},
		{name: "keyword percent is literal", filter: ClaimListFilter{Keyword: "50%"}, want: []uint{literal.ID}},
		{name: "location", filter: ClaimListFilter{Location: "curitiba"}, want: []uint{awaiting.ID}},
		{name: "distribution center", filter: ClaimListFilter{DistributionCenterID: uintPtr(f.center.ID)}, want: []uint{awaiting.ID}},
		{name: "created range", filter: ClaimListFilter{CreatedFrom: timePtr(base.Add(-time.Hour)), CreatedTo: timePtr(base.Add(time.Hour))}, want: []uint{withTrailer.ID}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rows, total, err := repo.List(tc.filter)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if int(total) != len(tc.want) || len(rows) != len(tc.want) {
				t.Fatalf("want %d rows got total=%d len=%d", len(tc.want), total, len(rows))
			}
			for i, id := range tc.want {
				if rows[i].ID != id {
					t.Fatalf("row %d want id %d got %d", i, id, rows[i].ID)
				}
			}
		})
	}
}

func TestClaimRepositoryLiabilityPending(t *testing.T) {
	db := setupRepositoryTestDB(t)
	f := seedRepositoryFixture(t, db)
	repo := NewClaimRepository(db)
	finalizedAt := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	pending := createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-1", CreatedByID: f.user.ID,
		Status: constants.ClaimStatusFinalized, Closure: constants.ClaimClosureReturnCompleted, FinalizedAt: &finalizedAt,
	})
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-2", CreatedByID: f.user.ID,
		Status: constants.ClaimStatusFinalized, Closure: constants.ClaimClosureReturnCompleted, FinalizedAt: &finalizedAt,
		Liability: constants.LiabilityClient,
	})
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-3", CreatedByID: f.user.ID,
		Status: constants.ClaimStatusFinalized, Closure: constants.ClaimClosureAccepted, FinalizedAt: &finalizedAt,
	})

	rows, total, err := repo.List(ClaimListFilter{LiabilityPending: true})
	if err != nil {
		t.Fatalf("list pending failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].ID != pending.ID {
		t.Fatalf("expected only the unassigned returned claim, got total=%d rows=%+v", total, rows)
	}
}

func TestClaimRepositoryUpdateVersioned(t *testing.T) {
	db := setupRepositoryTestDB(t)
	f := seedRepositoryFixture(t, db)
	repo := NewClaimRepository(db)
	claim := createTestClaim(t, db, models.Claim{ClientID: f.client.ID, InvoiceNumber: "NF-9", CreatedByID: f.user.ID})

	ok, err := repo.UpdateVersioned(claim.ID, 1, map[string]interface{}{"location": "Recife PE"})
	if err != nil || !ok {
		t.Fatalf("first update should succeed, ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdateVersioned(claim.ID, 1, map[string]interface{}{"location": "Natal RN"})
	if err != nil {
		t.Fatalf("stale update failed unexpectedly: %v", err)
	}
	if ok {
		t.Fatalf("stale version must not update")
	}

	reloaded, err := repo.GetByID(claim.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Version != 2 || reloaded.Location != "Recife PE" {
		t.Fatalf("unexpected claim after versioned update: version=%d location=%s", reloaded.Version, reloaded.Location)
	}
}

func TestClaimRepositoryCountAwaitingByDistributionCenter(t *testing.T) {
	db := setupRepositoryTestDB(t)
	f := seedRepositoryFixture(t, db)
	repo := NewClaimRepository(db)
	for i := 0; i < 2; i++ {
		createTestClaim(t, db, models.Claim{
			ClientID: f.client.ID, InvoiceNumber: "NF-A", CreatedByID: f.user.ID,
			Status: constants.ClaimStatusAwaitingReturn, DistributionCenterID: uintPtr(f.center.ID),
		})
	}
	createTestClaim(t, db, models.Claim{
		ClientID: f.client.ID, InvoiceNumber: "NF-B", CreatedByID: f.user.ID, Status: constants.ClaimStatusAwaitingReturn,
	})
	createTestClaim(t, db, models.Claim{ClientID: f.client.ID, InvoiceNumber: "NF-C", CreatedByID: f.user.ID})

	counts, err := repo.CountAwaitingByDistributionCenter()
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if counts[f.center.ID] != 2 || counts[0] != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestClaimLogRepositoryAppendAssignsSequence(t *testing.T) {
	db := setupRepositoryTestDB(t)
	f := seedRepositoryFixture(t, db)
	claim := createTestClaim(t, db, models.Claim{ClientID: f.client.ID, InvoiceNumber: "NF-L", CreatedByID: f.user.ID})
	other := createTestClaim(t, db, models.Claim{ClientID: f.client.ID, InvoiceNumber: "NF-M", CreatedByID: f.user.ID})
	repo := NewClaimLogRepository(db)

	for _, action := range []string{constants.ClaimActionOpened, constants.ClaimActionNote} {
		if err := repo.Append(&models.ClaimLogEntry{ClaimID: claim.ID, Username: "operador", Action: action}); err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}
	if err := repo.Append(&models.ClaimLogEntry{ClaimID: other.ID, Username: "operador", Action: constants.ClaimActionOpened}); err != nil {
		t.Fatalf("append other failed: %v", err)
	}

	entries, err := repo.ListByClaim(claim.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Seq != 1 || entries[1].Seq != 2 {
		t.Fatalf("unexpected sequence: %+v", entries)
	}
	otherEntries, _ := repo.ListByClaim(other.ID)
	if len(otherEntries) != 1 || otherEntries[0].Seq != 1 {
		t.Fatalf("sequence should be per claim: %+v", otherEntries)
	}
}
