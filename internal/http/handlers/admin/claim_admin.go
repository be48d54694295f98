package admin

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/i18n"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ClaimListResponse 作业列表（等待退货时附带各 CD 数量）
type ClaimListResponse struct {
	Claims       []models.Claim `json:"claims"`
	CenterCounts map[uint]int64 `json:"center_counts,omitempty"`
}

// DecisionRequest 决策请求
type DecisionRequest struct {
	Action               string `json:"action" binding:"required"`
	InvoiceRetained      bool   `json:"invoice_retained"`
	RetentionHours       *int   `json:"retention_hours"`
	ReturnInvoiceNumber  string `json:"return_invoice_number"`
	DistributionCenterID *uint  `json:"distribution_center_id"`
	Note                 string `json:"note"`
}

// ReturnTransitRequest 退货出发请求
type ReturnTransitRequest struct {
	ReturnDriverID  *uint  `json:"return_driver_id"`
	ReturnVehicleID *uint  `json:"return_vehicle_id"`
	ReturnTrailerID *uint  `json:"return_trailer_id"`
	Note            string `json:"note"`
}

// LiabilityRequest 责任认定请求
type LiabilityRequest struct {
	Party    string `json:"party" binding:"required"`
	Override bool   `json:"override"`
}

// EditItemsRequest 明细编辑请求（数量可为数字或文本；新增行空值或 0 按 1 计，非整数或负数的行被跳过）
type EditItemsRequest struct {
	Retained []struct {
		ItemID   uint         `json:"item_id"`
		Quantity itemQuantity `json:"quantity"`
		Lot      string       `json:"lot"`
	} `json:"retained"`
	New []struct {
		ProductID uint         `json:"product_id"`
		Quantity  itemQuantity `json:"quantity"`
		Lot       string       `json:"lot"`
	} `json:"new"`
}

// itemQuantity 原样保留数量文本，由服务层逐行校验
type itemQuantity string

func (q *itemQuantity) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*q = ""
	case strings.HasPrefix(raw, `"`):
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*q = itemQuantity(text)
	default:
		*q = itemQuantity(raw)
	}
	return nil
}

// UpdateValueRequest 调整货值请求
type UpdateValueRequest struct {
	Value  string `json:"value" binding:"required"`
	Reason string `json:"reason"`
}

// TransferCenterRequest CD 转移请求
type TransferCenterRequest struct {
	DistributionCenterID uint   `json:"distribution_center_id" binding:"required"`
	Note                 string `json:"note"`
}

// ListClaims 作业列表（默认 open；awaiting_return 时返回 CD 计数）
func (h *Handler) ListClaims(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	filter, ok := shared.ClaimFilterFromQuery(c, h.Location)
	if !ok {
		return
	}
	if filter.Status == "" {
		filter.Status = constants.ClaimStatusOpen
	}
	claims, total, err := h.ClaimService.ListClaims(c.Request.Context(), actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	result := ClaimListResponse{Claims: claims}
	if filter.Status == constants.ClaimStatusAwaitingReturn {
		counts, err := h.ClaimService.CountAwaitingByDistributionCenter(c.Request.Context(), actor)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		result.CenterCounts = counts
	}
	shared.RespondPage(c, result, filter.Page, filter.PageSize, total)
}

// SearchClaims 全局检索
func (h *Handler) SearchClaims(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	filter, ok := shared.ClaimFilterFromQuery(c, h.Location)
	if !ok {
		return
	}
	claims, total, err := h.ClaimService.SearchClaims(c.Request.Context(), actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	shared.RespondPage(c, claims, filter.Page, filter.PageSize, total)
}

// ExportClaims 按检索条件导出 xlsx
func (h *Handler) ExportClaims(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	filter, ok := shared.ClaimFilterFromQuery(c, h.Location)
	if !ok {
		return
	}
	file, err := h.ExportService.ExportSearch(c.Request.Context(), actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	c.Data(200, xlsxContentType, file.Content.Bytes())
}

// CreateClaim 新建索赔（multipart：字段 + items JSON + photos）
func (h *Handler) CreateClaim(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	input, ok := shared.BindCreateClaim(c, h.UploadService)
	if !ok {
		return
	}
	claim, err := h.ClaimService.CreateClaim(c.Request.Context(), actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// GetClaim 索赔详情
func (h *Handler) GetClaim(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	detail, err := h.ClaimService.GetDetail(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, detail)
}

// DecideClaim 决策（接受 / 退货）
func (h *Handler) DecideClaim(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	claim, err := h.ClaimService.Decide(c.Request.Context(), actor, id, service.DecideInput{
		Action:               strings.ToLower(strings.TrimSpace(req.Action)),
		InvoiceRetained:      req.InvoiceRetained,
		RetentionHours:       req.RetentionHours,
		ReturnInvoiceNumber:  req.ReturnInvoiceNumber,
		DistributionCenterID: req.DistributionCenterID,
		Note:                 req.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// StartReturnTransit 退货出发
func (h *Handler) StartReturnTransit(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	var req ReturnTransitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	claim, err := h.ClaimService.StartReturnTransit(c.Request.Context(), actor, id, service.StartReturnTransitInput{
		ReturnDriverID:  req.ReturnDriverID,
		ReturnVehicleID: req.ReturnVehicleID,
		ReturnTrailerID: req.ReturnTrailerID,
		Note:            req.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// CompleteReturn 退货完成（multipart 字段 proof 为签收凭证照片）
func (h *Handler) CompleteReturn(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	input := service.CompleteReturnInput{}
	if file, err := c.FormFile("proof"); err == nil {
		proof, err := h.UploadService.PreparePhoto(file)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		input.Proof = &proof
	}
	claim, err := h.ClaimService.CompleteReturn(c.Request.Context(), actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// AddNote 追加备注
func (h *Handler) AddNote(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	var req shared.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	claim, err := h.ClaimService.AddNote(c.Request.Context(), actor, id, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// AttachPhotos 追加现场照片
func (h *Handler) AttachPhotos(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	photos, err := h.UploadService.PreparePhotos(shared.FormFiles(c, "photos"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	claim, err := h.ClaimService.AttachPhotos(c.Request.Context(), actor, id, photos)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// EditItems 明细编辑（保留 / 删除 / 新增）
func (h *Handler) EditItems(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	var req EditItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	input := service.EditLineItemsInput{}
	for _, item := range req.Retained {
		input.Retained = append(input.Retained, service.RetainedItemInput{ItemID: item.ItemID, Quantity: string(item.Quantity), Lot: item.Lot})
	}
	for _, item := range req.New {
		input.New = append(input.New, service.NewItemInput{ProductID: item.ProductID, Quantity: string(item.Quantity), Lot: item.Lot})
	}
	claim, result, err := h.ClaimService.EditLineItems(c.Request.Context(), actor, id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"claim": claim, "result": result})
}

// UpdateValue 调整货值
func (h *Handler) UpdateValue(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	var req UpdateValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	value, err := models.ParseMoney(req.Value)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.claim_value_invalid", err)
		return
	}
	claim, err := h.ClaimService.UpdateValue(c.Request.Context(), actor, id, service.UpdateValueInput{Value: value, Reason: req.Reason})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// TransferDistributionCenter 变更逆向物流 CD；目标未变化时成功返回并附带提示
func (h *Handler) TransferDistributionCenter(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	var req TransferCenterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	claim, err := h.ClaimService.TransferDistributionCenter(c.Request.Context(), actor, id, service.TransferDistributionCenterInput{
		DistributionCenterID: req.DistributionCenterID,
		Note:                 req.Note,
	})
	if errors.Is(err, service.ErrDistributionCenterUnchanged) {
		response.SuccessWithMsg(c, i18n.T(i18n.ResolveLocale(c), "warning.distribution_center_unchanged"), claim)
		return
	}
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}

// ListLiabilityPending 待认定责任列表
func (h *Handler) ListLiabilityPending(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	claims, total, err := h.ClaimService.ListLiabilityPending(c.Request.Context(), actor, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	shared.RespondPage(c, claims, page, pageSize, total)
}

// AssignLiability 责任认定（已认定时需 override=true 才能改判）
func (h *Handler) AssignLiability(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseClaimID(c)
	if !ok {
		return
	}
	var req LiabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	claim, err := h.ClaimService.AssignLiability(c.Request.Context(), actor, id, service.AssignLiabilityInput{
		Party:    strings.ToLower(strings.TrimSpace(req.Party)),
		Override: req.Override,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}
