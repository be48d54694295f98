package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"

	"github.com/xuri/excelize/v2"
)

func TestExportServiceExportSearch(t *testing.T) {
	h := setupClaimServiceTest(t, nil)
	h.createClaim(t)
	h.advance(time.Minute)
	h.createClaim(t)

	svc := NewExportService(h.svc, nil, testLocation)
	svc.now = func() time.Time { return h.now }
	file, err := svc.ExportSearch(context.Background(), h.actor, repository.ClaimListFilter{InvoiceNumber: "NF-1001"})
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if file.Rows != 2 {
		t.Fatalf("rows want 2 got %d", file.Rows)
	}
	if file.FileName != "avarias_20240610_1501.xlsx" {
		t.Fatalf("unexpected file name %s", file.FileName)
	}

	book, err := excelize.OpenReader(file.Content)
	if err != nil {
		t.Fatalf("open workbook failed: %v", err)
	}
	defer book.Close()

	rows, err := book.GetRows(exportSheetClaims)
	if err != nil {
		t.Fatalf("read claims sheet failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("claims sheet rows want 3 got %d", len(rows))
	}
	if rows[0][0] != "ID" || rows[1][1] != "Aberta" || rows[1][4] != h.fixture.client.CompanyName || rows[1][8] != h.fixture.truck.Plate {
		t.Fatalf("unexpected claim row: %v", rows[1])
	}

	items, err := book.GetRows(exportSheetItems)
	if err != nil {
		t.Fatalf("read items sheet failed: %v", err)
	}
	if len(items) != 3 || items[1][2] != h.fixture.product.Name || items[1][5] != "2" {
		t.Fatalf("unexpected item rows: %v", items)
	}
}

func TestExportServiceRequiresCapability(t *testing.T) {
	h := setupClaimServiceTest(t, nil)
	svc := NewExportService(h.svc, denyAuthorizer{}, testLocation)
	if _, err := svc.ExportSearch(context.Background(), h.actor, repository.ClaimListFilter{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}
