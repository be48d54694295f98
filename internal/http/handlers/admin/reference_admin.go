package admin

import (
	"context"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

// ClientRequest 客户表单
type ClientRequest struct {
	CompanyName  string `json:"company_name"`
	CNPJ         string `json:"cnpj"`
	Address      string `json:"address"`
	ContactName  string `json:"contact_name"`
	ContactPhone string `json:"contact_phone"`
}

// DriverRequest 司机表单
type DriverRequest struct {
	Name  string `json:"name"`
	CPF   string `json:"cpf"`
	Phone string `json:"phone"`
}

// VehicleRequest 车辆表单
type VehicleRequest struct {
	Plate       string `json:"plate"`
	Kind        string `json:"kind"`
	Ownership   string `json:"ownership"`
	Model       string `json:"model"`
	CarrierName string `json:"carrier_name"`
	CarrierCNPJ string `json:"carrier_cnpj"`
}

// ProductRequest 商品表单
type ProductRequest struct {
	Name        string `json:"name"`
	Laboratory  string `json:"laboratory"`
	ControlCode string `json:"control_code"`
}

// DistributionCenterRequest CD 表单
type DistributionCenterRequest struct {
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Manager string `json:"manager"`
	Phone   string `json:"phone"`
}

func referenceFilter(c *gin.Context) (repository.ReferenceListFilter, bool) {
	page, pageSize := shared.QueryPagination(c)
	active, err := shared.ParseOptionalBool(c.Query("active"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return repository.ReferenceListFilter{}, false
	}
	return repository.ReferenceListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Kind:     strings.TrimSpace(c.Query("kind")),
		IsActive: active,
	}, true
}

// referenceList 列表处理的公共流程
func referenceList[T any](c *gin.Context, list func(service.Actor, repository.ReferenceListFilter) ([]T, int64, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	filter, ok := referenceFilter(c)
	if !ok {
		return
	}
	items, total, err := list(actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	shared.RespondPage(c, items, filter.Page, filter.PageSize, total)
}

// referenceSave 新建（id 为 0）或更新的公共流程
func referenceSave[Req any, T any](c *gin.Context, withID bool, save func(service.Actor, uint, Req) (T, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var id uint
	if withID {
		if id, ok = parseID(c); !ok {
			return
		}
	}
	var req Req
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	item, err := save(actor, id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, item)
}

// referenceToggle 停用 / 重新启用的公共流程
func referenceToggle(c *gin.Context, active bool, toggle func(service.Actor, uint, bool) error) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := toggle(actor, id, active); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "active": active})
}

// 客户

func (h *Handler) ListClients(c *gin.Context) {
	referenceList(c, func(actor service.Actor, filter repository.ReferenceListFilter) ([]models.Client, int64, error) {
		return h.ReferenceService.ListClients(c.Request.Context(), actor, filter)
	})
}

func (h *Handler) saveClient(c *gin.Context, withID bool) {
	referenceSave(c, withID, func(actor service.Actor, id uint, req ClientRequest) (*models.Client, error) {
		input := service.ClientInput{
			CompanyName:  req.CompanyName,
			CNPJ:         req.CNPJ,
			Address:      req.Address,
			ContactName:  req.ContactName,
			ContactPhone: req.ContactPhone,
		}
		if id == 0 {
			return h.ReferenceService.CreateClient(c.Request.Context(), actor, input)
		}
		return h.ReferenceService.UpdateClient(c.Request.Context(), actor, id, input)
	})
}

func (h *Handler) CreateClient(c *gin.Context) { h.saveClient(c, false) }

func (h *Handler) UpdateClient(c *gin.Context) { h.saveClient(c, true) }

func (h *Handler) DeactivateClient(c *gin.Context) {
	referenceToggle(c, false, h.toggleWith(c, h.ReferenceService.SetClientActive))
}

func (h *Handler) ReactivateClient(c *gin.Context) {
	referenceToggle(c, true, h.toggleWith(c, h.ReferenceService.SetClientActive))
}

// 司机

func (h *Handler) ListDrivers(c *gin.Context) {
	referenceList(c, func(actor service.Actor, filter repository.ReferenceListFilter) ([]models.Driver, int64, error) {
		return h.ReferenceService.ListDrivers(c.Request.Context(), actor, filter)
	})
}

func (h *Handler) saveDriver(c *gin.Context, withID bool) {
	referenceSave(c, withID, func(actor service.Actor, id uint, req DriverRequest) (*models.Driver, error) {
		input := service.DriverInput{Name: req.Name, CPF: req.CPF, Phone: req.Phone}
		if id == 0 {
			return h.ReferenceService.CreateDriver(c.Request.Context(), actor, input)
		}
		return h.ReferenceService.UpdateDriver(c.Request.Context(), actor, id, input)
	})
}

func (h *Handler) CreateDriver(c *gin.Context) { h.saveDriver(c, false) }

func (h *Handler) UpdateDriver(c *gin.Context) { h.saveDriver(c, true) }

func (h *Handler) DeactivateDriver(c *gin.Context) {
	referenceToggle(c, false, h.toggleWith(c, h.ReferenceService.SetDriverActive))
}

func (h *Handler) ReactivateDriver(c *gin.Context) {
	referenceToggle(c, true, h.toggleWith(c, h.ReferenceService.SetDriverActive))
}

// 车辆

func (h *Handler) ListVehicles(c *gin.Context) {
	referenceList(c, func(actor service.Actor, filter repository.ReferenceListFilter) ([]models.Vehicle, int64, error) {
		return h.ReferenceService.ListVehicles(c.Request.Context(), actor, filter)
	})
}

func (h *Handler) saveVehicle(c *gin.Context, withID bool) {
	referenceSave(c, withID, func(actor service.Actor, id uint, req VehicleRequest) (*models.Vehicle, error) {
		input := service.VehicleInput{
			Plate:       req.Plate,
			Kind:        req.Kind,
			Ownership:   req.Ownership,
			Model:       req.Model,
			CarrierName: req.CarrierName,
			CarrierCNPJ: req.CarrierCNPJ,
		}
		if id == 0 {
			return h.ReferenceService.CreateVehicle(c.Request.Context(), actor, input)
		}
		return h.ReferenceService.UpdateVehicle(c.Request.Context(), actor, id, input)
	})
}

func (h *Handler) CreateVehicle(c *gin.Context) { h.saveVehicle(c, false) }

func (h *Handler) UpdateVehicle(c *gin.Context) { h.saveVehicle(c, true) }

func (h *Handler) DeactivateVehicle(c *gin.Context) {
	referenceToggle(c, false, h.toggleWith(c, h.ReferenceService.SetVehicleActive))
}

func (h *Handler) ReactivateVehicle(c *gin.Context) {
	referenceToggle(c, true, h.toggleWith(c, h.ReferenceService.SetVehicleActive))
}

// 商品

func (h *Handler) ListProducts(c *gin.Context) {
	referenceList(c, func(actor service.Actor, filter repository.ReferenceListFilter) ([]models.Product, int64, error) {
		return h.ReferenceService.ListProducts(c.Request.Context(), actor, filter)
	})
}

func (h *Handler) saveProduct(c *gin.Context, withID bool) {
	referenceSave(c, withID, func(actor service.Actor, id uint, req ProductRequest) (*models.Product, error) {
		input := service.ProductInput{Name: req.Name, Laboratory: req.Laboratory, ControlCode: req.ControlCode}
		if id == 0 {
			return h.ReferenceService.CreateProduct(c.Request.Context(), actor, input)
		}
		return h.ReferenceService.UpdateProduct(c.Request.Context(), actor, id, input)
	})
}

func (h *Handler) CreateProduct(c *gin.Context) { h.saveProduct(c, false) }

func (h *Handler) UpdateProduct(c *gin.Context) { h.saveProduct(c, true) }

func (h *Handler) DeactivateProduct(c *gin.Context) {
	referenceToggle(c, false, h.toggleWith(c, h.ReferenceService.SetProductActive))
}

func (h *Handler) ReactivateProduct(c *gin.Context) {
	referenceToggle(c, true, h.toggleWith(c, h.ReferenceService.SetProductActive))
}

// 仓储中心

func (h *Handler) ListDistributionCenters(c *gin.Context) {
	referenceList(c, func(actor service.Actor, filter repository.ReferenceListFilter) ([]models.DistributionCenter, int64, error) {
		return h.ReferenceService.ListDistributionCenters(c.Request.Context(), actor, filter)
	})
}

func (h *Handler) saveDistributionCenter(c *gin.Context, withID bool) {
	referenceSave(c, withID, func(actor service.Actor, id uint, req DistributionCenterRequest) (*models.DistributionCenter, error) {
		input := service.DistributionCenterInput{
			Name:    req.Name,
			Code:    req.Code,
			Address: req.Address,
			City:    req.City,
			State:   req.State,
			Manager: req.Manager,
			Phone:   req.Phone,
		}
		if id == 0 {
			return h.ReferenceService.CreateDistributionCenter(c.Request.Context(), actor, input)
		}
		return h.ReferenceService.UpdateDistributionCenter(c.Request.Context(), actor, id, input)
	})
}

func (h *Handler) CreateDistributionCenter(c *gin.Context) { h.saveDistributionCenter(c, false) }

func (h *Handler) UpdateDistributionCenter(c *gin.Context) { h.saveDistributionCenter(c, true) }

func (h *Handler) DeactivateDistributionCenter(c *gin.Context) {
	referenceToggle(c, false, h.toggleWith(c, h.ReferenceService.SetDistributionCenterActive))
}

func (h *Handler) ReactivateDistributionCenter(c *gin.Context) {
	referenceToggle(c, true, h.toggleWith(c, h.ReferenceService.SetDistributionCenterActive))
}

func (h *Handler) toggleWith(c *gin.Context, fn func(ctx context.Context, actor service.Actor, id uint, active bool) error) func(service.Actor, uint, bool) error {
	return func(actor service.Actor, id uint, active bool) error {
		return fn(c.Request.Context(), actor, id, active)
	}
}

// CheckReferenceAvailability 唯一字段可用性检查（type: driver|vehicle|product|client）
func (h *Handler) CheckReferenceAvailability(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	excludeID, err := shared.ParseOptionalUint(c.Query("exclude_id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var exclude uint
	if excludeID != nil {
		exclude = *excludeID
	}
	available, err := h.ReferenceService.CheckAvailability(c.Request.Context(), actor, c.Query("type"), c.Query("value"), exclude)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"available": available})
}
