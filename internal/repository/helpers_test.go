package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Client{},
		&models.Driver{},
		&models.Vehicle{},
		&models.Product{},
		&models.DistributionCenter{},
		&models.Claim{},
		&models.ClaimItem{},
		&models.ClaimPhoto{},
		&models.ClaimLogEntry{},
		&models.UserLoginLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

type repositoryFixture struct {
	user    models.User
	client  models.Client
	driver  models.Driver
	truck   models.Vehicle
	trailer models.Vehicle
	product models.Product
	center  models.DistributionCenter
}

func seedRepositoryFixture(t *testing.T, db *gorm.DB) repositoryFixture {
	t.Helper()
	f := repositoryFixture{
		user:    models.User{Username: "operador", PasswordHash: "hash", AccessLevel: constants.UserAccessFull, IsActive: true},
		client:  models.Client{CompanyName: "Farmácia Central LTDA", CNPJ: "11.111.111/0001-11", Active: true},
		driver:  models.Driver{Name: "João da Silva", CPF: "123.456.789-00", Active: true},
		truck:   models.Vehicle{Plate: "ABC1D23", Kind: constants.VehicleKindMain, Ownership: constants.VehicleOwnershipFleet, Active: true},
		trailer: models.Vehicle{Plate: "XYZ9K88", Kind: constants.VehicleKindTrailer, Ownership: constants.VehicleOwnershipFleet, Active: true},
		product: models.Product{Name: "Dipirona 500mg", Laboratory: "EMS", ControlCode: "CTL-1", Active: true},
		center:  models.DistributionCenter{Name: "CD Cajamar", Code: "CAJ", Active: true},
	}
	for _, item := range []interface{}{&f.user, &f.client, &f.driver, &f.truck, &f.trailer, &f.product, &f.center} {
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("seed fixture failed: %v", err)
		}
	}
	return f
}

func createTestClaim(t *testing.T, db *gorm.DB, claim models.Claim) *models.Claim {
	t.Helper()
	if claim.Status == "" {
		claim.Status = constants.ClaimStatusOpen
	}
	if claim.Version == 0 {
		claim.Version = 1
	}
	if claim.CreatedAt.IsZero() {
		claim.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	if err := db.Create(&claim).Error; err != nil {
		t.Fatalf("create claim failed: %v", err)
	}
	return &claim
}

func moneyPtr(value int64) *models.Money {
	m := models.NewMoneyFromDecimal(decimal.NewFromInt(value))
	return &m
}

func uintPtr(v uint) *uint {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}
