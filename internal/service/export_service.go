package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"

	"github.com/xuri/excelize/v2"
)

const (
	exportSheetClaims = "Avarias"
	exportSheetItems  = "Itens"
	exportMaxRows     = 5000
)

// ExportService 检索结果导出为 xlsx
type ExportService struct {
	claims     *ClaimService
	authorizer Authorizer
	loc        *time.Location
	now        func() time.Time
}

// NewExportService 创建导出服务
func NewExportService(claims *ClaimService, authorizer Authorizer, loc *time.Location) *ExportService {
	return &ExportService{claims: claims, authorizer: authorizer, loc: defaultLocation(loc), now: time.Now}
}

// ExportFile 导出文件
type ExportFile struct {
	FileName string
	Content  *bytes.Buffer
	Rows     int
}

var claimExportHeaders = []string{
	"ID", "Status", "NF", "NFD", "Cliente", "CNPJ", "Valor (R$)", "Motorista", "Placa", "Carreta",
	"CD", "Local", "Responsável", "Criado em", "Decidido em", "Finalizado em",
}

var itemExportHeaders = []string{"Avaria", "NF", "Produto", "Código", "Lote", "Quantidade"}

func claimStatusLabel(status string) string {
	switch status {
	case constants.ClaimStatusOpen:
		return "Aberta"
	case constants.ClaimStatusAwaitingReturn:
		return "Aguardando Devolução"
	case constants.ClaimStatusInReturnTransit:
		return "Em Trânsito de Devolução"
	case constants.ClaimStatusFinalized:
		return "Finalizada"
	default:
		return status
	}
}

func (s *ExportService) formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.loc).Format("02/01/2006 15:04")
}

// ExportSearch 按检索条件导出索赔与明细两张工作表
func (s *ExportService) ExportSearch(ctx context.Context, actor Actor, filter repository.ClaimListFilter) (*ExportFile, error) {
	if err := authorize(ctx, s.authorizer, actor, authz.CapClaimExport); err != nil {
		return nil, err
	}
	filter.Page = 1
	filter.PageSize = exportMaxRows
	filter.WithRelations = true
	filter.WithItems = true
	claims, total, err := s.claims.claims.List(s.claims.normalizeFilter(filter))
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", exportSheetClaims)
	if _, err := f.NewSheet(exportSheetItems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	writeRow := func(sheet string, row int, values []interface{}) error {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		return f.SetSheetRow(sheet, cell, &values)
	}
	headers := func(sheet string, names []string) error {
		values := make([]interface{}, 0, len(names))
		for _, name := range names {
			values = append(values, name)
		}
		if err := writeRow(sheet, 1, values); err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(names), 1)
		return f.SetCellStyle(sheet, "A1", last, headerStyle)
	}
	if err := headers(exportSheetClaims, claimExportHeaders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if err := headers(exportSheetItems, itemExportHeaders); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	itemRow := 2
	for i := range claims {
		claim := &claims[i]
		row := []interface{}{
			claim.ID,
			claimStatusLabel(claim.Status),
			claim.InvoiceNumber,
			claim.ReturnInvoiceNumber,
			"", "",
			models.MoneyOrZero(claim.Value).InexactFloat64(),
			"", "", "", "",
			claim.Location,
			liabilityLabel(claim.Liability),
			s.formatTime(&claim.CreatedAt),
			s.formatTime(claim.DecidedAt),
			s.formatTime(claim.FinalizedAt),
		}
		if claim.Client != nil {
			row[4] = claim.Client.CompanyName
			row[5] = claim.Client.CNPJ
		}
		if claim.Driver != nil {
			row[7] = claim.Driver.Name
		}
		if claim.Vehicle != nil {
			row[8] = claim.Vehicle.Plate
		}
		if claim.Trailer != nil {
			row[9] = claim.Trailer.Plate
		}
		if claim.DistributionCenter != nil {
			row[10] = claim.DistributionCenter.Label()
		}
		if err := writeRow(exportSheetClaims, i+2, row); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		for _, item := range claim.Items {
			name, code := "", ""
			if item.Product != nil {
				name, code = item.Product.Name, item.Product.ControlCode
			}
			if err := writeRow(exportSheetItems, itemRow, []interface{}{claim.ID, claim.InvoiceNumber, name, code, item.Lot, item.Quantity}); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
			}
			itemRow++
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	if total > int64(len(claims)) {
		logger.Ctx(ctx).Warnw("claim_export_truncated", "total", total, "rows", len(claims))
	}
	logger.Ctx(ctx).Infow("claim_export_generated", "rows", len(claims), "username", actor.Username)
	name := fmt.Sprintf("avarias_%s.xlsx", s.now().In(s.loc).Format("20060102_1504"))
	return &ExportFile{FileName: name, Content: buf, Rows: len(claims)}, nil
}
