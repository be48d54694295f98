package shared

import (
	"errors"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/i18n"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应；有原始错误时记录日志
func RespondError(c *gin.Context, code int, key string, err error) {
	appErr := response.NewAppError(code, key, i18n.T(i18n.ResolveLocale(c), key), err)
	if err != nil {
		log := RequestLog(c)
		if appErr.Internal() {
			log.Errorw("handler_error", "code", appErr.Code, "key", key, "error", err)
		} else {
			log.Infow("handler_rejected", "code", appErr.Code, "key", key, "error", err)
		}
	}
	appErr.Send(c)
}

// RespondErrorWithMsg 返回自定义消息的错误响应
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.NewAppError(code, "", msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error", "code", appErr.Code, "message", appErr.Message, "error", err)
	}
	appErr.Send(c)
}

type serviceErrorMapping struct {
	err  error
	code int
	key  string
}

// 按顺序匹配，越具体的哨兵越靠前
var serviceErrorMappings = []serviceErrorMapping{
	{service.ErrForbidden, response.CodeForbidden, "error.forbidden"},
	{service.ErrInvalidCredentials, response.CodeUnauthorized, "error.invalid_credentials"},
	{service.ErrUserDisabled, response.CodeUnauthorized, "error.user_disabled"},
	{service.ErrAccessLevelDenied, response.CodeForbidden, "error.access_level_denied"},
	{service.ErrInvalidPassword, response.CodeBadRequest, "error.password_invalid"},
	{service.ErrUserNotFound, response.CodeNotFound, "error.user_not_found"},
	{service.ErrUsernameTaken, response.CodeConflict, "error.username_taken"},
	{service.ErrUserSelfDeactivate, response.CodeBadRequest, "error.user_self_deactivate"},
	{service.ErrRoleInvalid, response.CodeBadRequest, "error.role_invalid"},
	{service.ErrClaimNotFound, response.CodeNotFound, "error.claim_not_found"},
	{service.ErrClaimStatusInvalid, response.CodeBadRequest, "error.claim_status_invalid"},
	{service.ErrClaimConflict, response.CodeConflict, "error.claim_conflict"},
	{service.ErrClaimClientRequired, response.CodeBadRequest, "error.claim_client_required"},
	{service.ErrClaimInvoiceRequired, response.CodeBadRequest, "error.claim_invoice_required"},
	{service.ErrClaimItemsRequired, response.CodeBadRequest, "error.claim_items_required"},
	{service.ErrClaimValueInvalid, response.CodeBadRequest, "error.claim_value_invalid"},
	{service.ErrDecisionInvalid, response.CodeBadRequest, "error.decision_invalid"},
	{service.ErrReturnInvoiceRequired, response.CodeBadRequest, "error.return_invoice_required"},
	{service.ErrReturnVehicleRequired, response.CodeBadRequest, "error.return_vehicle_required"},
	{service.ErrProofRequired, response.CodeBadRequest, "error.proof_required"},
	{service.ErrPhotoRequired, response.CodeBadRequest, "error.photo_required"},
	{service.ErrNoteRequired, response.CodeBadRequest, "error.note_required"},
	{service.ErrLiabilityInvalid, response.CodeBadRequest, "error.liability_invalid"},
	{service.ErrLiabilityNotAllowed, response.CodeBadRequest, "error.liability_not_allowed"},
	{service.ErrLiabilityAlreadyAssigned, response.CodeConflict, "error.liability_already_assigned"},
	{service.ErrDistributionCenterRequired, response.CodeBadRequest, "error.distribution_center_required"},
	{service.ErrReferenceNotFound, response.CodeNotFound, "error.reference_not_found"},
	{service.ErrReferenceTypeInvalid, response.CodeBadRequest, "error.reference_type_invalid"},
	{service.ErrReferenceDuplicate, response.CodeConflict, "error.reference_duplicate"},
	{service.ErrReferenceRequiredFields, response.CodeBadRequest, "error.reference_required_fields"},
	{service.ErrUploadTooLarge, response.CodeBadRequest, "error.upload_too_large"},
	{service.ErrUploadTypeInvalid, response.CodeBadRequest, "error.upload_type_invalid"},
	{service.ErrUploadTooMany, response.CodeBadRequest, "error.upload_too_many"},
	{service.ErrUploadFailed, response.CodeInternal, "error.upload_failed"},
	{service.ErrMetricsPeriodInvalid, response.CodeBadRequest, "error.metrics_period_invalid"},
	{service.ErrExportFailed, response.CodeInternal, "error.export_failed"},
	{service.ErrNotFound, response.CodeNotFound, "error.not_found"},
}

// passwordPolicyViolation 密码策略错误携带消息键与参数
type passwordPolicyViolation interface {
	Key() string
	Args() []interface{}
}

// RespondServiceError 将服务层错误映射为业务状态码与国际化消息
func RespondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	var policy passwordPolicyViolation
	if errors.As(err, &policy) {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), policy.Key(), policy.Args()...)
		response.Error(c, response.CodeBadRequest, msg)
		return
	}
	for _, mapping := range serviceErrorMappings {
		if errors.Is(err, mapping.err) {
			RespondError(c, mapping.code, mapping.key, err)
			return
		}
	}
	RespondError(c, response.CodeInternal, "error.internal", err)
}
