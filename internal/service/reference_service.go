package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
)

// ReferenceServiceDeps 参考数据服务依赖
type ReferenceServiceDeps struct {
	Clients    repository.ClientRepository
	Drivers    repository.DriverRepository
	Vehicles   repository.VehicleRepository
	Products   repository.ProductRepository
	Centers    repository.DistributionCenterRepository
	Authorizer Authorizer
}

// ReferenceService 客户、司机、车辆、商品与仓储中心维护
type ReferenceService struct {
	clients    repository.ClientRepository
	drivers    repository.DriverRepository
	vehicles   repository.VehicleRepository
	products   repository.ProductRepository
	centers    repository.DistributionCenterRepository
	authorizer Authorizer
}

// NewReferenceService 创建参考数据服务
func NewReferenceService(deps ReferenceServiceDeps) *ReferenceService {
	return &ReferenceService{
		clients:    deps.Clients,
		drivers:    deps.Drivers,
		vehicles:   deps.Vehicles,
		products:   deps.Products,
		centers:    deps.Centers,
		authorizer: deps.Authorizer,
	}
}

// ClientInput 客户表单
type ClientInput struct {
	CompanyName  string
	CNPJ         string
	Address      string
	ContactName  string
	ContactPhone string
}

// DriverInput 司机表单
type DriverInput struct {
	Name  string
	CPF   string
	Phone string
}

// VehicleInput 车辆表单
type VehicleInput struct {
	Plate       string
	Kind        string
	Ownership   string
	Model       string
	CarrierName string
	CarrierCNPJ string
}

// ProductInput 商品表单（控制编码为空时自动生成）
type ProductInput struct {
	Name        string
	Laboratory  string
	ControlCode string
}

// DistributionCenterInput 仓储中心表单
type DistributionCenterInput struct {
	Name    string
	Code    string
	Address string
	City    string
	State   string
	Manager string
	Phone   string
}

// NormalizePlate 车牌统一为大写且去除空格与连字符
func NormalizePlate(raw string) string {
	plate := strings.ToUpper(strings.TrimSpace(raw))
	plate = strings.ReplaceAll(plate, "-", "")
	return strings.ReplaceAll(plate, " ", "")
}

func requireFields(fields map[string]string) error {
	missing := make([]string, 0)
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return invalid(ErrReferenceRequiredFields, strings.Join(missing, ","))
}

func (s *ReferenceService) canView(ctx context.Context, actor Actor) error {
	return authorize(ctx, s.authorizer, actor, authz.CapReferenceView)
}

func (s *ReferenceService) canManage(ctx context.Context, actor Actor) error {
	return authorize(ctx, s.authorizer, actor, authz.CapReferenceEdit)
}

func (s *ReferenceService) toggle(ctx context.Context, actor Actor, entity string, id uint, active bool, fn func(uint, bool) (bool, error)) error {
	if err := s.canManage(ctx, actor); err != nil {
		return err
	}
	ok, err := fn(id, active)
	if err != nil {
		return err
	}
	if !ok {
		return notFound(ErrReferenceNotFound, entity, id)
	}
	event := "reference_deactivated"
	if active {
		event = "reference_reactivated"
	}
	logger.Ctx(ctx).Infow(event, "entity", entity, "id", id, "username", actor.Username)
	return nil
}

func duplicate(entity, field, value string) error {
	return conflict(ErrReferenceDuplicate, fmt.Sprintf("%s %s %s", entity, field, value))
}

// ListClients 客户列表
func (s *ReferenceService) ListClients(ctx context.Context, actor Actor, filter repository.ReferenceListFilter) ([]models.Client, int64, error) {
	if err := s.canView(ctx, actor); err != nil {
		return nil, 0, err
	}
	return s.clients.List(filter)
}

// CreateClient 新建客户
func (s *ReferenceService) CreateClient(ctx context.Context, actor Actor, input ClientInput) (*models.Client, error) {
	return s.saveClient(ctx, actor, 0, input)
}

// UpdateClient 更新客户
func (s *ReferenceService) UpdateClient(ctx context.Context, actor Actor, id uint, input ClientInput) (*models.Client, error) {
	return s.saveClient(ctx, actor, id, input)
}

func (s *ReferenceService) saveClient(ctx context.Context, actor Actor, id uint, input ClientInput) (*models.Client, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	name := sanitizeText(input.CompanyName)
	cnpj := strings.TrimSpace(input.CNPJ)
	if err := requireFields(map[string]string{"company_name": name, "cnpj": cnpj}); err != nil {
		return nil, err
	}
	exists, err := s.clients.ExistsByCNPJ(cnpj, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicate(constants.ReferenceTypeClient, "cnpj", cnpj)
	}

	item := &models.Client{Active: true}
	if id != 0 {
		if item, err = s.clients.GetByID(id); err != nil {
			return nil, err
		}
		if item == nil {
			return nil, notFound(ErrReferenceNotFound, constants.ReferenceTypeClient, id)
		}
	}
	item.CompanyName = name
	item.CNPJ = cnpj
	item.Address = sanitizeText(input.Address)
	item.ContactName = sanitizeText(input.ContactName)
	item.ContactPhone = strings.TrimSpace(input.ContactPhone)
	if id == 0 {
		err = s.clients.Create(item)
	} else {
		err = s.clients.Update(item)
	}
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Infow("reference_saved", "entity", constants.ReferenceTypeClient, "id", item.ID, "username", actor.Username)
	return item, nil
}

// SetClientActive 停用或重新启用客户
func (s *ReferenceService) SetClientActive(ctx context.Context, actor Actor, id uint, active bool) error {
	return s.toggle(ctx, actor, constants.ReferenceTypeClient, id, active, s.clients.SetActive)
}

// ListDrivers 司机列表
func (s *ReferenceService) ListDrivers(ctx context.Context, actor Actor, filter repository.ReferenceListFilter) ([]models.Driver, int64, error) {
	if err := s.canView(ctx, actor); err != nil {
		return nil, 0, err
	}
	return s.drivers.List(filter)
}

// CreateDriver 新建司机
func (s *ReferenceService) CreateDriver(ctx context.Context, actor Actor, input DriverInput) (*models.Driver, error) {
	return s.saveDriver(ctx, actor, 0, input)
}

// UpdateDriver 更新司机
func (s *ReferenceService) UpdateDriver(ctx context.Context, actor Actor, id uint, input DriverInput) (*models.Driver, error) {
	return s.saveDriver(ctx, actor, id, input)
}

func (s *ReferenceService) saveDriver(ctx context.Context, actor Actor, id uint, input DriverInput) (*models.Driver, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	name := sanitizeText(input.Name)
	cpf := strings.TrimSpace(input.CPF)
	if err := requireFields(map[string]string{"name": name, "cpf": cpf}); err != nil {
		return nil, err
	}
	exists, err := s.drivers.ExistsByCPF(cpf, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicate(constants.ReferenceTypeDriver, "cpf", cpf)
	}

	item := &models.Driver{Active: true}
	if id != 0 {
		if item, err = s.drivers.GetByID(id); err != nil {
			return nil, err
		}
		if item == nil {
			return nil, notFound(ErrReferenceNotFound, constants.ReferenceTypeDriver, id)
		}
	}
	item.Name = name
	item.CPF = cpf
	item.Phone = strings.TrimSpace(input.Phone)
	if id == 0 {
		err = s.drivers.Create(item)
	} else {
		err = s.drivers.Update(item)
	}
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Infow("reference_saved", "entity", constants.ReferenceTypeDriver, "id", item.ID, "username", actor.Username)
	return item, nil
}

// SetDriverActive 停用或重新启用司机
func (s *ReferenceService) SetDriverActive(ctx context.Context, actor Actor, id uint, active bool) error {
	return s.toggle(ctx, actor, constants.ReferenceTypeDriver, id, active, s.drivers.SetActive)
}

// ListVehicles 车辆列表（可按 kind 过滤牵引车/挂车）
func (s *ReferenceService) ListVehicles(ctx context.Context, actor Actor, filter repository.ReferenceListFilter) ([]models.Vehicle, int64, error) {
	if err := s.canView(ctx, actor); err != nil {
		return nil, 0, err
	}
	return s.vehicles.List(filter)
}

// CreateVehicle 新建车辆
func (s *ReferenceService) CreateVehicle(ctx context.Context, actor Actor, input VehicleInput) (*models.Vehicle, error) {
	return s.saveVehicle(ctx, actor, 0, input)
}

// UpdateVehicle 更新车辆
func (s *ReferenceService) UpdateVehicle(ctx context.Context, actor Actor, id uint, input VehicleInput) (*models.Vehicle, error) {
	return s.saveVehicle(ctx, actor, id, input)
}

func normalizeVehicleKind(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.VehicleKindMain:
		return constants.VehicleKindMain, true
	case constants.VehicleKindTrailer:
		return constants.VehicleKindTrailer, true
	default:
		return "", false
	}
}

func normalizeVehicleOwnership(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.VehicleOwnershipFleet:
		return constants.VehicleOwnershipFleet, true
	case constants.VehicleOwnershipAggregate:
		return constants.VehicleOwnershipAggregate, true
	case constants.VehicleOwnershipThirdParty:
		return constants.VehicleOwnershipThirdParty, true
	default:
		return "", false
	}
}

func (s *ReferenceService) saveVehicle(ctx context.Context, actor Actor, id uint, input VehicleInput) (*models.Vehicle, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	plate := NormalizePlate(input.Plate)
	if err := requireFields(map[string]string{"plate": plate}); err != nil {
		return nil, err
	}
	kind, ok := normalizeVehicleKind(input.Kind)
	if !ok {
		return nil, invalid(ErrReferenceRequiredFields, "kind")
	}
	ownership, ok := normalizeVehicleOwnership(input.Ownership)
	if !ok {
		return nil, invalid(ErrReferenceRequiredFields, "ownership")
	}
	exists, err := s.vehicles.ExistsByPlate(plate, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicate(constants.ReferenceTypeVehicle, "plate", plate)
	}

	item := &models.Vehicle{Active: true}
	if id != 0 {
		if item, err = s.vehicles.GetByID(id); err != nil {
			return nil, err
		}
		if item == nil {
			return nil, notFound(ErrReferenceNotFound, constants.ReferenceTypeVehicle, id)
		}
	}
	item.Plate = plate
	item.Kind = kind
	item.Ownership = ownership
	item.Model = sanitizeText(input.Model)
	item.CarrierName = ""
	item.CarrierCNPJ = ""
	if ownership == constants.VehicleOwnershipThirdParty {
		item.CarrierName = sanitizeText(input.CarrierName)
		item.CarrierCNPJ = strings.TrimSpace(input.CarrierCNPJ)
	}
	if id == 0 {
		err = s.vehicles.Create(item)
	} else {
		err = s.vehicles.Update(item)
	}
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Infow("reference_saved", "entity", constants.ReferenceTypeVehicle, "id", item.ID, "username", actor.Username)
	return item, nil
}

// SetVehicleActive 停用或重新启用车辆
func (s *ReferenceService) SetVehicleActive(ctx context.Context, actor Actor, id uint, active bool) error {
	return s.toggle(ctx, actor, constants.ReferenceTypeVehicle, id, active, s.vehicles.SetActive)
}

// ListProducts 商品列表
func (s *ReferenceService) ListProducts(ctx context.Context, actor Actor, filter repository.ReferenceListFilter) ([]models.Product, int64, error) {
	if err := s.canView(ctx, actor); err != nil {
		return nil, 0, err
	}
	return s.products.List(filter)
}

// CreateProduct 新建商品
func (s *ReferenceService) CreateProduct(ctx context.Context, actor Actor, input ProductInput) (*models.Product, error) {
	return s.saveProduct(ctx, actor, 0, input)
}

// UpdateProduct 更新商品
func (s *ReferenceService) UpdateProduct(ctx context.Context, actor Actor, id uint, input ProductInput) (*models.Product, error) {
	return s.saveProduct(ctx, actor, id, input)
}

func (s *ReferenceService) saveProduct(ctx context.Context, actor Actor, id uint, input ProductInput) (*models.Product, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	name := sanitizeText(input.Name)
	if err := requireFields(map[string]string{"name": name}); err != nil {
		return nil, err
	}
	code := strings.ToUpper(strings.TrimSpace(input.ControlCode))
	if code != "" {
		exists, err := s.products.ExistsByControlCode(code, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, duplicate(constants.ReferenceTypeProduct, "control_code", code)
		}
	}

	item := &models.Product{Active: true}
	var err error
	if id != 0 {
		if item, err = s.products.GetByID(id); err != nil {
			return nil, err
		}
		if item == nil {
			return nil, notFound(ErrReferenceNotFound, constants.ReferenceTypeProduct, id)
		}
	}
	item.Name = name
	item.Laboratory = sanitizeText(input.Laboratory)
	if code != "" {
		item.ControlCode = code
	}
	if id == 0 {
		err = s.products.Create(item)
	} else {
		err = s.products.Update(item)
	}
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Infow("reference_saved", "entity", constants.ReferenceTypeProduct, "id", item.ID, "username", actor.Username)
	return item, nil
}

// SetProductActive 停用或重新启用商品
func (s *ReferenceService) SetProductActive(ctx context.Context, actor Actor, id uint, active bool) error {
	return s.toggle(ctx, actor, constants.ReferenceTypeProduct, id, active, s.products.SetActive)
}

// ListDistributionCenters 仓储中心列表
func (s *ReferenceService) ListDistributionCenters(ctx context.Context, actor Actor, filter repository.ReferenceListFilter) ([]models.DistributionCenter, int64, error) {
	if err := s.canView(ctx, actor); err != nil {
		return nil, 0, err
	}
	return s.centers.List(filter)
}

// CreateDistributionCenter 新建仓储中心
func (s *ReferenceService) CreateDistributionCenter(ctx context.Context, actor Actor, input DistributionCenterInput) (*models.DistributionCenter, error) {
	return s.saveDistributionCenter(ctx, actor, 0, input)
}

// UpdateDistributionCenter 更新仓储中心
func (s *ReferenceService) UpdateDistributionCenter(ctx context.Context, actor Actor, id uint, input DistributionCenterInput) (*models.DistributionCenter, error) {
	return s.saveDistributionCenter(ctx, actor, id, input)
}

func (s *ReferenceService) saveDistributionCenter(ctx context.Context, actor Actor, id uint, input DistributionCenterInput) (*models.DistributionCenter, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	name := sanitizeText(input.Name)
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if err := requireFields(map[string]string{"name": name, "code": code}); err != nil {
		return nil, err
	}
	exists, err := s.centers.ExistsByCode(code, id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, duplicate("distribution_center", "code", code)
	}

	item := &models.DistributionCenter{Active: true}
	if id != 0 {
		if item, err = s.centers.GetByID(id); err != nil {
			return nil, err
		}
		if item == nil {
			return nil, notFound(ErrReferenceNotFound, "distribution_center", id)
		}
	}
	item.Name = name
	item.Code = code
	item.Address = sanitizeText(input.Address)
	item.City = sanitizeText(input.City)
	item.State = strings.ToUpper(strings.TrimSpace(input.State))
	item.Manager = sanitizeText(input.Manager)
	item.Phone = strings.TrimSpace(input.Phone)
	if id == 0 {
		err = s.centers.Create(item)
	} else {
		err = s.centers.Update(item)
	}
	if err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Infow("reference_saved", "entity", "distribution_center", "id", item.ID, "username", actor.Username)
	return item, nil
}

// SetDistributionCenterActive 停用或重新启用仓储中心
func (s *ReferenceService) SetDistributionCenterActive(ctx context.Context, actor Actor, id uint, active bool) error {
	return s.toggle(ctx, actor, "distribution_center", id, active, s.centers.SetActive)
}

// CheckAvailability 唯一字段可用性检查（司机 CPF、车牌、控制编码、客户 CNPJ）
func (s *ReferenceService) CheckAvailability(ctx context.Context, actor Actor, refType, value string, excludeID uint) (bool, error) {
	if err := s.canView(ctx, actor); err != nil {
		return false, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return false, invalid(ErrReferenceRequiredFields, "value")
	}
	var (
		exists bool
		err    error
	)
	switch strings.ToLower(strings.TrimSpace(refType)) {
	case constants.ReferenceTypeDriver:
		exists, err = s.drivers.ExistsByCPF(value, excludeID)
	case constants.ReferenceTypeVehicle:
		exists, err = s.vehicles.ExistsByPlate(NormalizePlate(value), excludeID)
	case constants.ReferenceTypeProduct:
		exists, err = s.products.ExistsByControlCode(strings.ToUpper(value), excludeID)
	case constants.ReferenceTypeClient:
		exists, err = s.clients.ExistsByCNPJ(value, excludeID)
	default:
		return false, invalid(ErrReferenceTypeInvalid, refType)
	}
	if err != nil {
		return false, err
	}
	return !exists, nil
}
