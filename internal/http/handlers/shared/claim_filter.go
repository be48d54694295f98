package shared

import (
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"

	"github.com/gin-gonic/gin"
)

// ClaimFilterFromQuery 从查询参数组装索赔检索条件，失败时直接响应
func ClaimFilterFromQuery(c *gin.Context, loc *time.Location) (repository.ClaimListFilter, bool) {
	page, pageSize := QueryPagination(c)
	filter := repository.ClaimListFilter{
		Page:                page,
		PageSize:            pageSize,
		Status:              strings.TrimSpace(c.Query("status")),
		InvoiceNumber:       strings.TrimSpace(c.Query("invoice")),
		ReturnInvoiceNumber: strings.TrimSpace(c.Query("return_invoice")),
		Plate:               strings.TrimSpace(c.Query("plate")),
		DriverCPF:           strings.TrimSpace(c.Query("driver_cpf")),
		DriverName:          strings.TrimSpace(c.Query("driver_name")),
		Location:            strings.TrimSpace(c.Query("location")),
		Keyword:             strings.TrimSpace(c.Query("keyword")),
		WithRelations:       true,
	}
	var err error
	if filter.CreatedFrom, err = ParseDateNullable(c.Query("created_from"), loc); err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return filter, false
	}
	if filter.CreatedTo, err = ParseDateNullable(c.Query("created_to"), loc); err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return filter, false
	}
	if filter.DistributionCenterID, err = ParseOptionalUint(c.Query("cd_id")); err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return filter, false
	}
	clientID, err := ParseOptionalUint(c.Query("client_id"))
	if err != nil {
		RespondError(c, response.CodeBadRequest, "error.bad_request", err)
		return filter, false
	}
	if clientID != nil {
		filter.ClientID = *clientID
	}
	return filter, true
}
