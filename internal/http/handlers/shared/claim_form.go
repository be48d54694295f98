package shared

import (
	"encoding/json"
	"mime/multipart"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

// ClaimItemPayload 索赔明细
type ClaimItemPayload struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Lot       string `json:"lot"`
}

// CreateClaimForm 新建索赔表单（multipart；items 为 JSON 数组文本，照片字段为 photos）
type CreateClaimForm struct {
	ClientID      uint   `form:"client_id" binding:"required"`
	InvoiceNumber string `form:"invoice_number" binding:"required"`
	Value         string `form:"value"`
	DriverID      string `form:"driver_id"`
	VehicleID     string `form:"vehicle_id"`
	TrailerID     string `form:"trailer_id"`
	Location      string `form:"location"`
	Note          string `form:"note"`
	Items         string `form:"items"`
}

// PhotoPreparer 上传文件校验
type PhotoPreparer interface {
	PreparePhotos(files []*multipart.FileHeader) ([]service.PhotoFile, error)
}

// BindCreateClaim 解析新建索赔表单，失败时直接响应
func BindCreateClaim(c *gin.Context, uploads PhotoPreparer) (service.CreateClaimInput, bool) {
	var form CreateClaimForm
	if err := c.ShouldBind(&form); err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return service.CreateClaimInput{}, false
	}
	input := service.CreateClaimInput{
		ClientID:      form.ClientID,
		InvoiceNumber: form.InvoiceNumber,
		Location:      form.Location,
		Note:          form.Note,
	}
	if strings.TrimSpace(form.Value) != "" {
		value, err := models.ParseMoney(form.Value)
		if err != nil {
			RespondError(c, response.CodeBadRequest, "error.claim_value_invalid", err)
			return service.CreateClaimInput{}, false
		}
		input.Value = &value
	}
	var err error
	if input.DriverID, err = ParseOptionalUint(form.DriverID); err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return service.CreateClaimInput{}, false
	}
	if input.VehicleID, err = ParseOptionalUint(form.VehicleID); err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return service.CreateClaimInput{}, false
	}
	if input.TrailerID, err = ParseOptionalUint(form.TrailerID); err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return service.CreateClaimInput{}, false
	}
	if strings.TrimSpace(form.Items) != "" {
		var items []ClaimItemPayload
		if err := json.Unmarshal([]byte(form.Items), &items); err != nil {
			RespondError(c, response.CodeBadRequest, "error.claim_items_required", err)
			return service.CreateClaimInput{}, false
		}
		for _, item := range items {
			input.Items = append(input.Items, service.ClaimItemInput{ProductID: item.ProductID, Quantity: item.Quantity, Lot: item.Lot})
		}
	}

	files := FormFiles(c, "photos")
	if len(files) > 0 {
		photos, err := uploads.PreparePhotos(files)
		if err != nil {
			RespondServiceError(c, err)
			return service.CreateClaimInput{}, false
		}
		input.Photos = photos
	}
	return input, true
}

// FormFiles 读取 multipart 中的同名文件（非 multipart 请求返回空）
func FormFiles(c *gin.Context, field string) []*multipart.FileHeader {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil
	}
	return form.File[field]
}

// NoteRequest 备注请求
type NoteRequest struct {
	Text string `json:"text"`
}
