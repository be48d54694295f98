package mobile

import (
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListClaims 按状态列出索赔（默认 open）
func (h *Handler) ListClaims(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	status := strings.ToLower(strings.TrimSpace(c.Query("status")))
	if status == "" {
		status = constants.ClaimStatusOpen
	}
	claims, total, err := h.ClaimService.ListClaims(c.Request.Context(), actor, repository.ClaimListFilter{
		Page:          page,
		PageSize:      pageSize,
		Status:        status,
		WithRelations: true,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RespondPage(c, claims, page, pageSize, total)
}

// CreateClaim 现场登记索赔
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
		shared.RespondServiceError(c, err)
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
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, detail)
}

// AttachPhotos 上传现场照片（任意状态）
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
		shared.RespondServiceError(c, err)
		return
	}
	claim, err := h.ClaimService.AttachPhotos(c.Request.Context(), actor, id, photos)
	if err != nil {
		shared.RespondServiceError(c, err)
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
		shared.RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	claim, err := h.ClaimService.AddNote(c.Request.Context(), actor, id, req.Text)
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	response.Success(c, claim)
}
