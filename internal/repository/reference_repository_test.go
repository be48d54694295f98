package repository

import (
	"testing"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
)

func TestReferenceRepositoriesUniquenessAndActive(t *testing.T) {
	db := setupRepositoryTestDB(t)
	f := seedRepositoryFixture(t, db)

	clients := NewClientRepository(db)
	exists, err := clients.ExistsByCNPJ(f.client.CNPJ, 0)
	if err != nil || !exists {
		t.Fatalf("expected cnpj to exist, exists=%v err=%v", exists, err)
	}
	exists, err = clients.ExistsByCNPJ(f.client.CNPJ, f.client.ID)
	if err != nil || exists {
		t.Fatalf("self should be excluded, exists=%v err=%v", exists, err)
	}

	vehicles := NewVehicleRepository(db)
	exists, err = vehicles.ExistsByPlate(" XYZ9K88 ", 0)
	if err != nil || !exists {
		t.Fatalf("expected plate to exist, exists=%v err=%v", exists, err)
	}

	ok, err := clients.SetActive(f.client.ID, false)
	if err != nil || !ok {
		t.Fatalf("deactivate failed, ok=%v err=%v", ok, err)
	}
	active := true
	rows, total, err := clients.List(ReferenceListFilter{IsActive: &active})
	if err != nil {
		t.Fatalf("list clients failed: %v", err)
	}
	if total != 0 || len(rows) != 0 {
		t.Fatalf("deactivated client should be hidden, total=%d", total)
	}
	ok, err = clients.SetActive(9999, true)
	if err != nil || ok {
		t.Fatalf("missing client should report not updated, ok=%v err=%v", ok, err)
	}
}

func TestVehicleRepositoryListByKindAndSearch(t *testing.T) {
	db := setupRepositoryTestDB(t)
	seedRepositoryFixture(t, db)
	repo := NewVehicleRepository(db)

	rows, total, err := repo.List(ReferenceListFilter{Kind: constants.VehicleKindTrailer})
	if err != nil {
		t.Fatalf("list vehicles failed: %v", err)
	}
	if total != 1 || rows[0].Plate != "XYZ9K88" {
		t.Fatalf("unexpected trailer list: total=%d rows=%+v", total, rows)
	}

	rows, total, err = repo.List(ReferenceListFilter{Search: "abc1"})
	if err != nil {
		t.Fatalf("search vehicles failed: %v", err)
	}
	if total != 1 || rows[0].Plate != "ABC1D23" {
		t.Fatalf("unexpected search result: total=%d rows=%+v", total, rows)
	}
}

func TestProductRepositoryGeneratesControlCode(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewProductRepository(db)

	product := &models.Product{Name: "Amoxicilina", Active: true}
	if err := repo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if product.ControlCode == "" {
		t.Fatalf("control code should be generated")
	}
	exists, err := repo.ExistsByControlCode(product.ControlCode, 0)
	if err != nil || !exists {
		t.Fatalf("generated code should be persisted, exists=%v err=%v", exists, err)
	}
}

func TestUserRepositoryUsernameCaseInsensitive(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)
	user := &models.User{Username: "Maria.Souza", PasswordHash: "hash", AccessLevel: constants.UserAccessMobile, IsActive: true}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	found, err := repo.GetByUsername("maria.souza")
	if err != nil || found == nil || found.ID != user.ID {
		t.Fatalf("lookup should ignore case, found=%+v err=%v", found, err)
	}
	exists, err := repo.ExistsByUsername("MARIA.SOUZA", 0)
	if err != nil || !exists {
		t.Fatalf("exists should ignore case, exists=%v err=%v", exists, err)
	}
	missing, err := repo.GetByUsername("ninguem")
	if err != nil || missing != nil {
		t.Fatalf("missing user should be nil, got %+v err=%v", missing, err)
	}
}
