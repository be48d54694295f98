package main

import (
	"context"
	"errors"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/provider"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/shopspring/decimal"
)

// 1x1 PNG，仅作为演示证据照片
var samplePNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0xf8, 0xcf, 0xc0, 0xf0,
	0x1f, 0x00, 0x05, 0x00, 0x01, 0xff, 0x89, 0x99, 0x3d, 0x1d, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45,
	0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, false); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}
	root, err := models.InitDefaultSuperuser(cfg.Bootstrap.SuperuserUsername, cfg.Bootstrap.SuperuserPassword)
	if err != nil {
		stdLog.Fatalf("Failed to ensure superuser: %v", err)
	}
	if root == nil {
		root = &models.User{}
		if err := models.DB.Where("is_super = ?", true).Order("id asc").First(root).Error; err != nil {
			stdLog.Fatalf("Failed to load superuser: %v", err)
		}
	}

	c := provider.NewContainer(cfg)
	ctx := context.Background()
	actor := service.Actor{UserID: root.ID, Username: root.Username, IsSuper: true}
	refs := c.ReferenceService

	clients := []service.ClientInput{
		{CompanyName: "Drogaria Central Ltda", CNPJ: "11.222.333/0001-81", Address: "Av. Paulista, 1000 - São Paulo/SP", ContactName: "Marina Souza", ContactPhone: "(11) 3333-1000"},
		{CompanyName: "Farmácia Bom Preço S.A.", CNPJ: "44.555.666/0001-99", Address: "Rua XV de Novembro, 250 - Curitiba/PR", ContactName: "Paulo Lima", ContactPhone: "(41) 3222-2000"},
	}
	drivers := []service.DriverInput{
		{Name: "João Pereira", CPF: "123.456.789-09", Phone: "(11) 98888-1111"},
		{Name: "Carlos Andrade", CPF: "987.654.321-00", Phone: "(11) 97777-2222"},
	}
	vehicles := []service.VehicleInput{
		{Plate: "ABC1D23", Kind: constants.VehicleKindMain, Ownership: constants.VehicleOwnershipFleet, Model: "Volvo FH 540"},
		{Plate: "XYZ9K87", Kind: constants.VehicleKindTrailer, Ownership: constants.VehicleOwnershipFleet, Model: "Randon Baú"},
		{Plate: "TRC4E56", Kind: constants.VehicleKindMain, Ownership: constants.VehicleOwnershipThirdParty, Model: "Scania R450", CarrierName: "Rodo Parceira Ltda", CarrierCNPJ: "77.888.999/0001-10"},
	}
	products := []service.ProductInput{
		{Name: "Dipirona 500mg cx 20", Laboratory: "EMS"},
		{Name: "Amoxicilina 875mg cx 14", Laboratory: "Medley"},
		{Name: "Soro Fisiológico 500ml", Laboratory: "Fresenius"},
	}
	centers := []service.DistributionCenterInput{
		{Name: "CD Cajamar", Code: "CD-CJM", City: "Cajamar", State: "SP", Manager: "Renata Alves", Phone: "(11) 4400-1000"},
		{Name: "CD Extrema", Code: "CD-EXT", City: "Extrema", State: "MG", Manager: "Fábio Costa", Phone: "(35) 3435-2000"},
	}

	for _, input := range clients {
		if _, err := refs.CreateClient(ctx, actor, input); err != nil {
			reportSeedError(stdLog.Printf, "client", input.CNPJ, err)
		}
	}
	for _, input := range drivers {
		if _, err := refs.CreateDriver(ctx, actor, input); err != nil {
			reportSeedError(stdLog.Printf, "driver", input.CPF, err)
		}
	}
	for _, input := range vehicles {
		if _, err := refs.CreateVehicle(ctx, actor, input); err != nil {
			reportSeedError(stdLog.Printf, "vehicle", input.Plate, err)
		}
	}
	for _, input := range products {
		if _, err := refs.CreateProduct(ctx, actor, input); err != nil {
			reportSeedError(stdLog.Printf, "product", input.Name, err)
		}
	}
	for _, input := range centers {
		if _, err := refs.CreateDistributionCenter(ctx, actor, input); err != nil {
			reportSeedError(stdLog.Printf, "distribution_center", input.Code, err)
		}
	}

	var claimCount int64
	if err := models.DB.Model(&models.Claim{}).Count(&claimCount).Error; err != nil {
		stdLog.Fatalf("Failed to count claims: %v", err)
	}
	if claimCount > 0 {
		stdLog.Printf("Claims already exist (%d), skipping demo claims", claimCount)
		return
	}

	var client models.Client
	var driver models.Driver
	var truck, trailer models.Vehicle
	var product models.Product
	var center models.DistributionCenter
	lookups := []struct {
		dest  interface{}
		query string
		arg   interface{}
	}{
		{&client, "cnpj = ?", "11.222.333/0001-81"},
		{&driver, "cpf = ?", "123.456.789-09"},
		{&truck, "plate = ?", "ABC1D23"},
		{&trailer, "plate = ?", "XYZ9K87"},
		{&product, "name = ?", "Dipirona 500mg cx 20"},
		{&center, "code = ?", "CD-CJM"},
	}
	for _, lookup := range lookups {
		if err := models.DB.Where(lookup.query, lookup.arg).First(lookup.dest).Error; err != nil {
			stdLog.Fatalf("Failed to load seeded reference (%s %v): %v", lookup.query, lookup.arg, err)
		}
	}

	newClaim := func(invoice string, value string) *models.Claim {
		amount := models.NewMoneyFromDecimal(decimal.RequireFromString(value))
		claim, err := c.ClaimService.CreateClaim(ctx, actor, service.CreateClaimInput{
			ClientID:      client.ID,
			InvoiceNumber: invoice,
			Value:         &amount,
			DriverID:      &driver.ID,
			VehicleID:     &truck.ID,
			TrailerID:     &trailer.ID,
			Location:      "Cajamar",
			Note:          "Caixas amassadas na descarga",
			Items:         []service.ClaimItemInput{{ProductID: product.ID, Quantity: 3, Lot: "L2405"}},
			Photos:        []service.PhotoFile{service.NewPhotoFromBytes("evidencia.png", "image/png", samplePNG)},
		})
		if err != nil {
			stdLog.Fatalf("Failed to create demo claim %s: %v", invoice, err)
		}
		stdLog.Printf("Created demo claim #%d (%s)", claim.ID, invoice)
		return claim
	}

	newClaim("NF-90001", "1250.00")

	accepted := newClaim("NF-90002", "380.50")
	if _, err := c.ClaimService.Decide(ctx, actor, accepted.ID, service.DecideInput{Action: constants.ClaimDecisionAccept, Note: "Cliente aceitou com desconto"}); err != nil {
		stdLog.Printf("Failed to accept demo claim: %v", err)
	}

	returned := newClaim("NF-90003", "2100.00")
	if _, err := c.ClaimService.Decide(ctx, actor, returned.ID, service.DecideInput{
		Action:               constants.ClaimDecisionReturn,
		ReturnInvoiceNumber:  "NFD-5001",
		DistributionCenterID: &center.ID,
	}); err != nil {
		stdLog.Printf("Failed to return demo claim: %v", err)
	} else if _, err := c.ClaimService.StartReturnTransit(ctx, actor, returned.ID, service.StartReturnTransitInput{
		ReturnDriverID:  &driver.ID,
		ReturnVehicleID: &truck.ID,
	}); err != nil {
		stdLog.Printf("Failed to start demo return transit: %v", err)
	}

	stdLog.Println("Seed completed")
}

func reportSeedError(printf func(format string, v ...interface{}), entity, key string, err error) {
	var dup *service.ConflictError
	if errors.As(err, &dup) {
		printf("%s already exists: %s", entity, key)
		return
	}
	printf("Failed to create %s %s: %v", entity, key, err)
}
