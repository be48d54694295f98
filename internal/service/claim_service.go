package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/storage"

	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

// ClaimServiceDeps 索赔服务依赖
type ClaimServiceDeps struct {
	Claims      repository.ClaimRepository
	Items       repository.ClaimItemRepository
	Photos      repository.ClaimPhotoRepository
	Logs        repository.ClaimLogRepository
	Clients     repository.ClientRepository
	Drivers     repository.DriverRepository
	Vehicles    repository.VehicleRepository
	Products    repository.ProductRepository
	Centers     repository.DistributionCenterRepository
	Storage     storage.Provider
	Authorizer  Authorizer
	Invalidator MetricsInvalidator
	Company     config.CompanyConfig
	Location    *time.Location
	Now         func() time.Time
}

// ClaimService 索赔生命周期引擎
type ClaimService struct {
	claims      repository.ClaimRepository
	items       repository.ClaimItemRepository
	photos      repository.ClaimPhotoRepository
	logs        repository.ClaimLogRepository
	clients     repository.ClientRepository
	drivers     repository.DriverRepository
	vehicles    repository.VehicleRepository
	products    repository.ProductRepository
	centers     repository.DistributionCenterRepository
	storage     storage.Provider
	authorizer  Authorizer
	invalidator MetricsInvalidator
	company     config.CompanyConfig
	loc         *time.Location
	now         func() time.Time
}

// NewClaimService 创建索赔服务
func NewClaimService(deps ClaimServiceDeps) *ClaimService {
	return &ClaimService{
		claims:      deps.Claims,
		items:       deps.Items,
		photos:      deps.Photos,
		logs:        deps.Logs,
		clients:     deps.Clients,
		drivers:     deps.Drivers,
		vehicles:    deps.Vehicles,
		products:    deps.Products,
		centers:     deps.Centers,
		storage:     deps.Storage,
		authorizer:  deps.Authorizer,
		invalidator: deps.Invalidator,
		company:     deps.Company,
		loc:         defaultLocation(deps.Location),
		now:         defaultClock(deps.Now),
	}
}

// ClaimItemInput 新建索赔的明细
type ClaimItemInput struct {
	ProductID uint
	Quantity  int
	Lot       string
}

// CreateClaimInput 新建索赔输入
type CreateClaimInput struct {
	ClientID      uint
	InvoiceNumber string
	Value         *models.Money
	DriverID      *uint
	VehicleID     *uint
	TrailerID     *uint
	Location      string
	Note          string
	Items         []ClaimItemInput
	Photos        []PhotoFile
}

// DecideInput 决策输入
type DecideInput struct {
	Action               string
	InvoiceRetained      bool
	RetentionHours       *int
	ReturnInvoiceNumber  string
	DistributionCenterID *uint
	Note                 string
}

// StartReturnTransitInput 退货出发输入
type StartReturnTransitInput struct {
	ReturnDriverID  *uint
	ReturnVehicleID *uint
	ReturnTrailerID *uint
	Note            string
}

// CompleteReturnInput 退货完成输入
type CompleteReturnInput struct {
	Proof *PhotoFile
}

// AssignLiabilityInput 责任认定输入
type AssignLiabilityInput struct {
	Party    string
	Override bool
}

// RetainedItemInput 编辑时保留的明细（数量为原始文本）
type RetainedItemInput struct {
	ItemID   uint
	Quantity string
	Lot      string
}

// NewItemInput 编辑时新增的明细（数量为原始文本）
type NewItemInput struct {
	ProductID uint
	Quantity  string
	Lot       string
}

// EditLineItemsInput 明细编辑输入
type EditLineItemsInput struct {
	Retained []RetainedItemInput
	New      []NewItemInput
}

// EditLineItemsResult 明细编辑统计
type EditLineItemsResult struct {
	Removed int `json:"removed"`
	Updated int `json:"updated"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// UpdateValueInput 调整货值输入
type UpdateValueInput struct {
	Value  models.Money
	Reason string
}

// TransferDistributionCenterInput CD 转移输入
type TransferDistributionCenterInput struct {
	DistributionCenterID uint
	Note                 string
}

// ClaimDetail 索赔详情（含派生时长与日志投影）
type ClaimDetail struct {
	Claim              *models.Claim `json:"claim"`
	DaysOpen           int           `json:"days_open"`
	DaysAwaitingReturn int           `json:"days_awaiting_return"`
	DaysInTransit      int           `json:"days_in_transit"`
	LogText            string        `json:"log_text"`
}

type claimMutation struct {
	updates map[string]interface{}
	action  string
	detail  string
}

type mutateFunc func(tx *gorm.DB, claim *models.Claim, now time.Time) (*claimMutation, error)

// mutate 单事务执行：加载、守卫、版本化写入、追加一条日志
func (s *ClaimService) mutate(ctx context.Context, actor Actor, claimID uint, capability, event string, fn mutateFunc) (*models.Claim, error) {
	if err := authorize(ctx, s.authorizer, actor, capability); err != nil {
		return nil, err
	}
	if claimID == 0 {
		return nil, notFound(ErrClaimNotFound, "claim", claimID)
	}
	current := s.now()
	err := s.claims.Transaction(func(tx *gorm.DB) error {
		claimRepo := s.claims.WithTx(tx)
		claim, err := claimRepo.GetByID(claimID)
		if err != nil {
			return err
		}
		if claim == nil {
			return notFound(ErrClaimNotFound, "claim", claimID)
		}
		mutation, err := fn(tx, claim, current)
		if err != nil {
			return err
		}
		updates := mutation.updates
		if updates == nil {
			updates = map[string]interface{}{}
		}
		updates["updated_at"] = current
		ok, err := claimRepo.UpdateVersioned(claim.ID, claim.Version, updates)
		if err != nil {
			return err
		}
		if !ok {
			return conflict(ErrClaimConflict, fmt.Sprintf("claim #%d version %d", claim.ID, claim.Version))
		}
		return s.appendLog(tx, claim.ID, actor, mutation.action, mutation.detail, current)
	})
	if err != nil {
		s.logFailure(ctx, event, claimID, actor, err)
		return nil, err
	}
	logger.Ctx(ctx).Infow(event, "claim_id", claimID, "username", actor.Username)
	s.invalidateMetrics(ctx, current)
	return s.claims.GetDetail(claimID)
}

func (s *ClaimService) appendLog(tx *gorm.DB, claimID uint, actor Actor, action, detail string, at time.Time) error {
	entry := &models.ClaimLogEntry{
		ClaimID:   claimID,
		Username:  actor.Username,
		Action:    action,
		Detail:    strings.TrimSpace(detail),
		CreatedAt: at,
	}
	if actor.UserID != 0 {
		userID := actor.UserID
		entry.UserID = &userID
	}
	return s.logs.WithTx(tx).Append(entry)
}

func (s *ClaimService) logFailure(ctx context.Context, event string, claimID uint, actor Actor, err error) {
	var validationErr *ValidationError
	var notFoundErr *NotFoundError
	var conflictErr *ConflictError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &notFoundErr), errors.Is(err, ErrForbidden):
		logger.Ctx(ctx).Debugw(event+"_rejected", "claim_id", claimID, "username", actor.Username, "reason", err.Error())
	case errors.As(err, &conflictErr), errors.Is(err, ErrDistributionCenterUnchanged):
		logger.Ctx(ctx).Warnw(event+"_rejected", "claim_id", claimID, "username", actor.Username, "reason", err.Error())
	default:
		logger.Ctx(ctx).Errorw(event+"_failed", "claim_id", claimID, "username", actor.Username, "error", err)
	}
}

func (s *ClaimService) invalidateMetrics(ctx context.Context, at time.Time) {
	if s.invalidator == nil {
		return
	}
	s.invalidator.InvalidateMetrics(ctx, at)
}

func expectStatus(claim *models.Claim, want string) error {
	if claim.Status != want {
		return invalid(ErrClaimStatusInvalid, fmt.Sprintf("expected %s, got %s", want, claim.Status))
	}
	return nil
}

// CreateClaim 登记新索赔（ABERTURA）
func (s *ClaimService) CreateClaim(ctx context.Context, actor Actor, input CreateClaimInput) (*models.Claim, error) {
	if err := authorize(ctx, s.authorizer, actor, authz.CapClaimCreate); err != nil {
		return nil, err
	}
	invoice := sanitizeText(input.InvoiceNumber)
	if invoice == "" {
		return nil, invalid(ErrClaimInvoiceRequired, "")
	}
	if input.ClientID == 0 {
		return nil, invalid(ErrClaimClientRequired, "")
	}
	if input.Value != nil && input.Value.IsNegative() {
		return nil, invalid(ErrClaimValueInvalid, input.Value.String())
	}
	location := sanitizeText(input.Location)
	if location == "" {
		location = strings.TrimSpace(actor.Location)
	}
	note := sanitizeText(input.Note)
	current := s.now()

	var created *models.Claim
	var stored []string
	err := s.claims.Transaction(func(tx *gorm.DB) error {
		client, err := s.clients.WithTx(tx).GetByID(input.ClientID)
		if err != nil {
			return err
		}
		if client == nil || !client.Active {
			return invalid(ErrClaimClientRequired, fmt.Sprintf("client #%d", input.ClientID))
		}
		if err := s.ensureDriver(tx, input.DriverID); err != nil {
			return err
		}
		if err := s.ensureVehicle(tx, input.VehicleID); err != nil {
			return err
		}
		if err := s.ensureVehicle(tx, input.TrailerID); err != nil {
			return err
		}
		items, err := s.buildNewItems(tx, input.Items)
		if err != nil {
			return err
		}

		claim := &models.Claim{
			ClientID:      client.ID,
			InvoiceNumber: invoice,
			DriverID:      input.DriverID,
			VehicleID:     input.VehicleID,
			TrailerID:     input.TrailerID,
			Status:        constants.ClaimStatusOpen,
			CreatedByID:   actor.UserID,
			Location:      location,
			Value:         input.Value,
			Version:       1,
			CreatedAt:     current,
			UpdatedAt:     current,
			Items:         items,
		}
		if err := s.claims.WithTx(tx).Create(claim); err != nil {
			return err
		}

		detail := openedDetail(invoice, client, len(items), note)
		if len(input.Photos) > 0 {
			photos, err := s.storePhotos(ctx, claim.ID, constants.ClaimPhotoKindEvidence, input.Photos, actor, current, &stored)
			if err != nil {
				return err
			}
			if err := s.photos.WithTx(tx).CreateBatch(photos); err != nil {
				return err
			}
			detail += " | " + photosDetail(len(photos))
		}
		if err := s.appendLog(tx, claim.ID, actor, constants.ClaimActionOpened, detail, current); err != nil {
			return err
		}
		created = claim
		return nil
	})
	if err != nil {
		s.discardStored(ctx, stored)
		s.logFailure(ctx, "claim_create", 0, actor, err)
		return nil, err
	}
	logger.Ctx(ctx).Infow("claim_created", "claim_id", created.ID, "invoice_number", invoice, "username", actor.Username)
	s.invalidateMetrics(ctx, current)
	return s.claims.GetDetail(created.ID)
}

func (s *ClaimService) buildNewItems(tx *gorm.DB, inputs []ClaimItemInput) ([]models.ClaimItem, error) {
	productRepo := s.products.WithTx(tx)
	items := make([]models.ClaimItem, 0, len(inputs))
	for _, input := range inputs {
		if input.ProductID == 0 {
			continue
		}
		product, err := productRepo.GetByID(input.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil || !product.Active {
			continue
		}
		quantity := input.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, models.ClaimItem{
			ProductID: product.ID,
			Quantity:  quantity,
			Lot:       sanitizeText(input.Lot),
		})
	}
	if len(items) == 0 {
		return nil, invalid(ErrClaimItemsRequired, "")
	}
	return items, nil
}

func (s *ClaimService) loadDriver(tx *gorm.DB, id *uint) (*models.Driver, error) {
	if id == nil {
		return nil, nil
	}
	driver, err := s.drivers.WithTx(tx).GetByID(*id)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, notFound(ErrReferenceNotFound, "driver", *id)
	}
	return driver, nil
}

func (s *ClaimService) ensureDriver(tx *gorm.DB, id *uint) error {
	_, err := s.loadDriver(tx, id)
	return err
}

func (s *ClaimService) loadVehicle(tx *gorm.DB, id *uint) (*models.Vehicle, error) {
	if id == nil {
		return nil, nil
	}
	vehicle, err := s.vehicles.WithTx(tx).GetByID(*id)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, notFound(ErrReferenceNotFound, "vehicle", *id)
	}
	return vehicle, nil
}

func (s *ClaimService) ensureVehicle(tx *gorm.DB, id *uint) error {
	_, err := s.loadVehicle(tx, id)
	return err
}

func (s *ClaimService) loadCenter(tx *gorm.DB, id uint) (*models.DistributionCenter, error) {
	center, err := s.centers.WithTx(tx).GetByID(id)
	if err != nil {
		return nil, err
	}
	if center == nil {
		return nil, notFound(ErrReferenceNotFound, "distribution_center", id)
	}
	return center, nil
}

func normalizeDecisionAction(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case constants.ClaimDecisionAccept, "aceitar":
		return constants.ClaimDecisionAccept
	case constants.ClaimDecisionReturn, "devolver":
		return constants.ClaimDecisionReturn
	default:
		return ""
	}
}

// Decide 对待处理索赔作出接受或退货决策
func (s *ClaimService) Decide(ctx context.Context, actor Actor, claimID uint, input DecideInput) (*models.Claim, error) {
	action := normalizeDecisionAction(input.Action)
	if action == "" {
		return nil, invalid(ErrDecisionInvalid, input.Action)
	}
	if input.RetentionHours != nil && *input.RetentionHours < 0 {
		return nil, invalid(ErrDecisionInvalid, "retention_hours")
	}
	returnInvoice := sanitizeText(input.ReturnInvoiceNumber)
	note := sanitizeText(input.Note)

	return s.mutate(ctx, actor, claimID, authz.CapClaimDecide, "claim_decided", func(tx *gorm.DB, claim *models.Claim, current time.Time) (*claimMutation, error) {
		if err := expectStatus(claim, constants.ClaimStatusOpen); err != nil {
			return nil, err
		}
		var retentionHours *int
		if input.InvoiceRetained {
			hours := 0
			if input.RetentionHours != nil {
				hours = *input.RetentionHours
			}
			retentionHours = &hours
		}
		updates := map[string]interface{}{
			"decision":         action,
			"invoice_retained": input.InvoiceRetained,
			"retention_hours":  retentionHours,
			"decided_at":       current,
		}

		if action == constants.ClaimDecisionAccept {
			updates["status"] = constants.ClaimStatusFinalized
			updates["closure"] = constants.ClaimClosureAccepted
			updates["finalized_at"] = current
			return &claimMutation{
				updates: updates,
				action:  constants.ClaimActionDecisionAccept,
				detail:  decisionDetail(action, input.InvoiceRetained, retentionHours, "", nil, note),
			}, nil
		}

		if returnInvoice == "" {
			return nil, invalid(ErrReturnInvoiceRequired, "")
		}
		var center *models.DistributionCenter
		if input.DistributionCenterID != nil && *input.DistributionCenterID != 0 {
			loaded, err := s.loadCenter(tx, *input.DistributionCenterID)
			if err != nil {
				return nil, err
			}
			center = loaded
			updates["distribution_center_id"] = center.ID
		}
		updates["status"] = constants.ClaimStatusAwaitingReturn
		updates["return_invoice_number"] = returnInvoice
		return &claimMutation{
			updates: updates,
			action:  constants.ClaimActionDecisionReturn,
			detail:  decisionDetail(action, input.InvoiceRetained, retentionHours, returnInvoice, center, note),
		}, nil
	})
}

// StartReturnTransit 记录退货车辆出发
func (s *ClaimService) StartReturnTransit(ctx context.Context, actor Actor, claimID uint, input StartReturnTransitInput) (*models.Claim, error) {
	note := sanitizeText(input.Note)
	return s.mutate(ctx, actor, claimID, authz.CapClaimReturn, "claim_return_started", func(tx *gorm.DB, claim *models.Claim, current time.Time) (*claimMutation, error) {
		if err := expectStatus(claim, constants.ClaimStatusAwaitingReturn); err != nil {
			return nil, err
		}
		if input.ReturnVehicleID == nil || *input.ReturnVehicleID == 0 {
			return nil, invalid(ErrReturnVehicleRequired, "")
		}
		vehicle, err := s.loadVehicle(tx, input.ReturnVehicleID)
		if err != nil {
			return nil, err
		}
		trailer, err := s.loadVehicle(tx, input.ReturnTrailerID)
		if err != nil {
			return nil, err
		}
		driver, err := s.loadDriver(tx, input.ReturnDriverID)
		if err != nil {
			return nil, err
		}

		parts := []string{fmt.Sprintf("Veículo: %s", vehicle.Plate)}
		if driver != nil {
			parts = append(parts, fmt.Sprintf("Motorista: %s", driver.Name))
		}
		if trailer != nil {
			parts = append(parts, fmt.Sprintf("Carreta: %s", trailer.Plate))
		}
		detail := strings.Join(parts, " | ")
		if note != "" {
			detail += " " + note
		}
		return &claimMutation{
			updates: map[string]interface{}{
				"status":            constants.ClaimStatusInReturnTransit,
				"return_started_at": current,
				"return_driver_id":  input.ReturnDriverID,
				"return_vehicle_id": input.ReturnVehicleID,
				"return_trailer_id": input.ReturnTrailerID,
			},
			action: constants.ClaimActionReturnDeparture,
			detail: detail,
		}, nil
	})
}

// CompleteReturn 凭签收凭证结案退货
func (s *ClaimService) CompleteReturn(ctx context.Context, actor Actor, claimID uint, input CompleteReturnInput) (*models.Claim, error) {
	var stored []string
	claim, err := s.mutate(ctx, actor, claimID, authz.CapClaimReturn, "claim_return_completed", func(tx *gorm.DB, claim *models.Claim, current time.Time) (*claimMutation, error) {
		if err := expectStatus(claim, constants.ClaimStatusInReturnTransit); err != nil {
			return nil, err
		}
		if input.Proof == nil || input.Proof.Open == nil {
			return nil, invalid(ErrProofRequired, "")
		}
		photos, err := s.storePhotos(ctx, claim.ID, constants.ClaimPhotoKindProof, []PhotoFile{*input.Proof}, actor, current, &stored)
		if err != nil {
			return nil, err
		}
		if err := s.photos.WithTx(tx).CreateBatch(photos); err != nil {
			return nil, err
		}
		return &claimMutation{
			updates: map[string]interface{}{
				"status":       constants.ClaimStatusFinalized,
				"closure":      constants.ClaimClosureReturnCompleted,
				"finalized_at": current,
			},
			action: constants.ClaimActionReturnCompleted,
			detail: "Processo finalizado com comprovante.",
		}, nil
	})
	if err != nil {
		s.discardStored(ctx, stored)
		return nil, err
	}
	return claim, nil
}

func normalizeLiabilityParty(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case constants.LiabilityCarrierCompany:
		return constants.LiabilityCarrierCompany
	case constants.LiabilityClient:
		return constants.LiabilityClient
	case constants.LiabilityThirdPartyCarrier:
		return constants.LiabilityThirdPartyCarrier
	default:
		return ""
	}
}

// AssignLiability 认定退货结案索赔的损失责任方；已认定时需显式覆盖
func (s *ClaimService) AssignLiability(ctx context.Context, actor Actor, claimID uint, input AssignLiabilityInput) (*models.Claim, error) {
	party := normalizeLiabilityParty(input.Party)
	if party == "" {
		return nil, invalid(ErrLiabilityInvalid, input.Party)
	}
	return s.mutate(ctx, actor, claimID, authz.CapClaimLiability, "claim_liability_assigned", func(tx *gorm.DB, claim *models.Claim, _ time.Time) (*claimMutation, error) {
		if claim.Status != constants.ClaimStatusFinalized || claim.Closure != constants.ClaimClosureReturnCompleted {
			return nil, invalid(ErrLiabilityNotAllowed, fmt.Sprintf("status %s closure %s", claim.Status, claim.Closure))
		}
		previous := claim.Liability
		if previous != "" && !input.Override {
			logger.Ctx(ctx).Warnw("claim_liability_reassign_rejected",
				"claim_id", claim.ID,
				"current", previous,
				"requested", party,
				"username", actor.Username,
			)
			return nil, conflict(ErrLiabilityAlreadyAssigned, previous)
		}

		client, err := s.clients.WithTx(tx).GetByID(claim.ClientID)
		if err != nil {
			return nil, err
		}
		claim.Client = client
		if claim.VehicleID != nil {
			vehicle, err := s.vehicles.WithTx(tx).GetByID(*claim.VehicleID)
			if err != nil {
				return nil, err
			}
			claim.Vehicle = vehicle
		}

		action := constants.ClaimActionLiabilityAssigned
		if previous != "" {
			action = constants.ClaimActionLiabilityReassigned
		}
		return &claimMutation{
			updates: map[string]interface{}{"liability": party},
			action:  action,
			detail:  liabilityDetail(party, describeLiability(party, claim, s.company), previous),
		}, nil
	})
}

// AddNote 追加备注，不改变状态
func (s *ClaimService) AddNote(ctx context.Context, actor Actor, claimID uint, text string) (*models.Claim, error) {
	note := sanitizeText(text)
	if note == "" {
		return nil, invalid(ErrNoteRequired, "")
	}
	return s.mutate(ctx, actor, claimID, authz.CapClaimNote, "claim_note_added", func(_ *gorm.DB, _ *models.Claim, _ time.Time) (*claimMutation, error) {
		return &claimMutation{action: constants.ClaimActionNote, detail: note}, nil
	})
}

// EditLineItems 编辑明细：移除未保留项、更新保留项、追加新项
func (s *ClaimService) EditLineItems(ctx context.Context, actor Actor, claimID uint, input EditLineItemsInput) (*models.Claim, *EditLineItemsResult, error) {
	result := &EditLineItemsResult{}
	claim, err := s.mutate(ctx, actor, claimID, authz.CapClaimEdit, "claim_items_edited", func(tx *gorm.DB, claim *models.Claim, _ time.Time) (*claimMutation, error) {
		*result = EditLineItemsResult{}
		itemRepo := s.items.WithTx(tx)
		existing, err := itemRepo.ListByClaim(claim.ID)
		if err != nil {
			return nil, err
		}
		existingByID := make(map[uint]models.ClaimItem, len(existing))
		for _, item := range existing {
			existingByID[item.ID] = item
		}

		retained := make(map[uint]RetainedItemInput, len(input.Retained))
		for _, item := range input.Retained {
			if _, ok := existingByID[item.ItemID]; ok {
				retained[item.ItemID] = item
			}
		}
		removeIDs := make([]uint, 0)
		for _, item := range existing {
			if _, ok := retained[item.ID]; !ok {
				removeIDs = append(removeIDs, item.ID)
			}
		}
		removed, err := itemRepo.DeleteByIDs(claim.ID, removeIDs)
		if err != nil {
			return nil, err
		}
		result.Removed = int(removed)

		for _, item := range existing {
			input, ok := retained[item.ID]
			if !ok {
				continue
			}
			updates := map[string]interface{}{"lot": sanitizeText(input.Lot)}
			if quantity, err := strconv.Atoi(strings.TrimSpace(input.Quantity)); err == nil {
				if quantity < 0 {
					quantity = 0
				}
				updates["quantity"] = quantity
			}
			if err := itemRepo.UpdateFields(claim.ID, item.ID, updates); err != nil {
				return nil, err
			}
			result.Updated++
		}

		productRepo := s.products.WithTx(tx)
		added := make([]models.ClaimItem, 0, len(input.New))
		for _, item := range input.New {
			quantity, ok := parseNewItemQuantity(item.Quantity)
			if !ok || item.ProductID == 0 {
				result.Skipped++
				continue
			}
			product, err := productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			if product == nil || !product.Active {
				result.Skipped++
				continue
			}
			added = append(added, models.ClaimItem{
				ClaimID:   claim.ID,
				ProductID: product.ID,
				Quantity:  quantity,
				Lot:       sanitizeText(item.Lot),
			})
		}
		if len(added) > 0 {
			if err := itemRepo.CreateBatch(added); err != nil {
				return nil, err
			}
		}
		result.Added = len(added)

		return &claimMutation{
			action: constants.ClaimActionItemsEdited,
			detail: itemsEditedDetail(result.Removed, result.Updated, result.Added, result.Skipped),
		}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return claim, result, nil
}

// parseNewItemQuantity 空或 0 视为 1；非整数或负数视为无效
func parseNewItemQuantity(raw string) (int, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return 1, true
	}
	quantity, err := strconv.Atoi(text)
	if err != nil || quantity < 0 {
		return 0, false
	}
	if quantity == 0 {
		return 1, true
	}
	return quantity, true
}

// UpdateValue 调整货值并记录原因
func (s *ClaimService) UpdateValue(ctx context.Context, actor Actor, claimID uint, input UpdateValueInput) (*models.Claim, error) {
	if input.Value.IsNegative() {
		return nil, invalid(ErrClaimValueInvalid, input.Value.String())
	}
	reason := sanitizeText(input.Reason)
	next := models.NewMoneyFromDecimal(input.Value.Decimal)
	return s.mutate(ctx, actor, claimID, authz.CapClaimEdit, "claim_value_adjusted", func(_ *gorm.DB, claim *models.Claim, _ time.Time) (*claimMutation, error) {
		return &claimMutation{
			updates: map[string]interface{}{"value": next},
			action:  constants.ClaimActionValueAdjusted,
			detail:  valueAdjustedDetail(claim.Value, &next, reason),
		}, nil
	})
}

// TransferDistributionCenter 变更逆向物流 CD；目标与当前相同时不做任何修改
func (s *ClaimService) TransferDistributionCenter(ctx context.Context, actor Actor, claimID uint, input TransferDistributionCenterInput) (*models.Claim, error) {
	if input.DistributionCenterID == 0 {
		return nil, invalid(ErrDistributionCenterRequired, "")
	}
	note := sanitizeText(input.Note)
	claim, err := s.mutate(ctx, actor, claimID, authz.CapClaimEdit, "claim_center_transferred", func(tx *gorm.DB, claim *models.Claim, _ time.Time) (*claimMutation, error) {
		next, err := s.loadCenter(tx, input.DistributionCenterID)
		if err != nil {
			return nil, err
		}
		if claim.DistributionCenterID != nil && *claim.DistributionCenterID == next.ID {
			return nil, ErrDistributionCenterUnchanged
		}
		var previous *models.DistributionCenter
		if claim.DistributionCenterID != nil {
			previous, err = s.centers.WithTx(tx).GetByID(*claim.DistributionCenterID)
			if err != nil {
				return nil, err
			}
		}
		return &claimMutation{
			updates: map[string]interface{}{"distribution_center_id": next.ID},
			action:  constants.ClaimActionCenterTransferred,
			detail:  centerTransferDetail(previous, next, note),
		}, nil
	})
	if errors.Is(err, ErrDistributionCenterUnchanged) {
		current, loadErr := s.claims.GetDetail(claimID)
		if loadErr != nil {
			return nil, loadErr
		}
		return current, ErrDistributionCenterUnchanged
	}
	return claim, err
}

// AttachPhotos 追加现场照片（任意状态）
func (s *ClaimService) AttachPhotos(ctx context.Context, actor Actor, claimID uint, files []PhotoFile) (*models.Claim, error) {
	if len(files) == 0 {
		return nil, invalid(ErrPhotoRequired, "")
	}
	var stored []string
	claim, err := s.mutate(ctx, actor, claimID, authz.CapClaimPhoto, "claim_photos_attached", func(tx *gorm.DB, claim *models.Claim, current time.Time) (*claimMutation, error) {
		photos, err := s.storePhotos(ctx, claim.ID, constants.ClaimPhotoKindEvidence, files, actor, current, &stored)
		if err != nil {
			return nil, err
		}
		if err := s.photos.WithTx(tx).CreateBatch(photos); err != nil {
			return nil, err
		}
		return &claimMutation{action: constants.ClaimActionPhotosAttached, detail: photosDetail(len(photos))}, nil
	})
	if err != nil {
		s.discardStored(ctx, stored)
		return nil, err
	}
	return claim, nil
}

func (s *ClaimService) storePhotos(ctx context.Context, claimID uint, kind string, files []PhotoFile, actor Actor, at time.Time, stored *[]string) ([]models.ClaimPhoto, error) {
	if s.storage == nil {
		return nil, fmt.Errorf("%w: storage not configured", ErrUploadFailed)
	}
	scene := fmt.Sprintf("claims/%d", claimID)
	photos := make([]models.ClaimPhoto, 0, len(files))
	for _, file := range files {
		if file.Open == nil {
			return nil, invalid(ErrPhotoRequired, file.FileName)
		}
		body, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		key := storage.BuildKey(scene, file.Ext, at)
		obj, err := s.storage.Put(ctx, key, body, file.ContentType, file.Size)
		_ = body.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		*stored = append(*stored, obj.Key)

		photo := models.ClaimPhoto{
			ClaimID:    claimID,
			Kind:       kind,
			StorageKey: obj.Key,
			URL:        obj.URL,
			FileName:   file.FileName,
			MimeType:   file.ContentType,
			Size:       obj.Size,
			UploadedBy: actor.Username,
			CreatedAt:  at,
		}
		if actor.UserID != 0 {
			userID := actor.UserID
			photo.UploadedByID = &userID
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

func (s *ClaimService) discardStored(ctx context.Context, keys []string) {
	if s.storage == nil {
		return
	}
	for _, key := range keys {
		if err := s.storage.Delete(ctx, key); err != nil {
			logger.Ctx(ctx).Warnw("claim_photo_cleanup_failed", "storage_key", key, "error", err)
		}
	}
}

// GetDetail 获取索赔详情
func (s *ClaimService) GetDetail(ctx context.Context, actor Actor, claimID uint) (*ClaimDetail, error) {
	if err := authorize(ctx, s.authorizer, actor, authz.CapClaimView); err != nil {
		return nil, err
	}
	claim, err := s.claims.GetDetail(claimID)
	if err != nil {
		return nil, err
	}
	if claim == nil {
		return nil, notFound(ErrClaimNotFound, "claim", claimID)
	}
	current := s.now()
	return &ClaimDetail{
		Claim:              claim,
		DaysOpen:           claim.DaysOpen(current),
		DaysAwaitingReturn: claim.DaysAwaitingReturn(current),
		DaysInTransit:      claim.DaysInTransit(current),
		LogText:            FormatLogProjection(claim.LogEntries, s.loc),
	}, nil
}

// ListClaims 作业列表（按状态等条件）
func (s *ClaimService) ListClaims(ctx context.Context, actor Actor, filter repository.ClaimListFilter) ([]models.Claim, int64, error) {
	if err := authorize(ctx, s.authorizer, actor, authz.CapClaimView); err != nil {
		return nil, 0, err
	}
	return s.claims.List(s.normalizeFilter(filter))
}

// SearchClaims 全局检索（管理能力）
func (s *ClaimService) SearchClaims(ctx context.Context, actor Actor, filter repository.ClaimListFilter) ([]models.Claim, int64, error) {
	if err := authorize(ctx, s.authorizer, actor, authz.CapClaimSearch); err != nil {
		return nil, 0, err
	}
	return s.claims.List(s.normalizeFilter(filter))
}

// ListLiabilityPending 待认定责任的退货结案索赔
func (s *ClaimService) ListLiabilityPending(ctx context.Context, actor Actor, page, pageSize int) ([]models.Claim, int64, error) {
	if err := authorize(ctx, s.authorizer, actor, authz.CapClaimLiability); err != nil {
		return nil, 0, err
	}
	return s.claims.List(repository.ClaimListFilter{
		Page:             page,
		PageSize:         pageSize,
		LiabilityPending: true,
		WithRelations:    true,
	})
}

// CountAwaitingByDistributionCenter 等待退货数量按 CD 分组
func (s *ClaimService) CountAwaitingByDistributionCenter(ctx context.Context, actor Actor) (map[uint]int64, error) {
	if err := authorize(ctx, s.authorizer, actor, authz.CapClaimView); err != nil {
		return nil, err
	}
	return s.claims.CountAwaitingByDistributionCenter()
}

// normalizeFilter 日期条件按业务时区扩展为整天
func (s *ClaimService) normalizeFilter(filter repository.ClaimListFilter) repository.ClaimListFilter {
	if filter.CreatedFrom != nil {
		start := now.New(filter.CreatedFrom.In(s.loc)).BeginningOfDay().UTC()
		filter.CreatedFrom = &start
	}
	if filter.CreatedTo != nil {
		end := now.New(filter.CreatedTo.In(s.loc)).EndOfDay().UTC()
		filter.CreatedTo = &end
	}
	return filter
}
