package constants

// 索赔状态常量
const (
	ClaimStatusOpen            = "open"
	ClaimStatusAwaitingReturn  = "awaiting_return"
	ClaimStatusInReturnTransit = "in_return_transit"
	ClaimStatusFinalized       = "finalized"
)

// 决策动作常量
const (
	ClaimDecisionAccept = "accept"
	ClaimDecisionReturn = "return"
)

// 结案类型常量
const (
	ClaimClosureAccepted        = "accepted"
	ClaimClosureReturnCompleted = "return_completed"
)

// 损失责任方常量
const (
	LiabilityCarrierCompany    = "carrier_company"
	LiabilityClient            = "client"
	LiabilityThirdPartyCarrier = "third_party_carrier"
)

// 索赔照片类型常量
const (
	ClaimPhotoKindEvidence = "evidence"
	ClaimPhotoKindProof    = "proof"
)

// 审计日志动作标签（展示文本沿用业务方葡语术语）
const (
	ClaimActionOpened              = "ABERTURA"
	ClaimActionDecisionAccept      = "DECISÃO: ACEITAR"
	ClaimActionDecisionReturn      = "DECISÃO: DEVOLVER"
	ClaimActionReturnDeparture     = "SAÍDA DEVOLUÇÃO"
	ClaimActionReturnCompleted     = "DEVOLUÇÃO CONCLUÍDA"
	ClaimActionLiabilityAssigned   = "DEFINIÇÃO DE PREJUÍZO"
	ClaimActionNote                = "OBSERVAÇÃO"
	ClaimActionItemsEdited         = "EDIÇÃO DE ITENS"
	ClaimActionValueAdjusted       = "AJUSTE DE VALOR"
	ClaimActionCenterTransferred   = "TRANSFERÊNCIA CD"
	ClaimActionPhotosAttached      = "FOTO"
	ClaimActionLiabilityReassigned = "REDEFINIÇÃO DE PREJUÍZO"
)

// 车辆类型常量
const (
	VehicleKindMain    = "main"
	VehicleKindTrailer = "trailer"
)

// 车辆归属常量
const (
	VehicleOwnershipFleet      = "fleet"
	VehicleOwnershipAggregate  = "aggregate"
	VehicleOwnershipThirdParty = "third_party"
)

// 用户访问级别常量
const (
	UserAccessMobile = "mobile"
	UserAccessFull   = "full"
)

// 内置角色常量
const (
	RoleManager     = "gestor"
	RoleOperational = "operacional"
)

// 参考数据类型常量（唯一性校验使用）
const (
	ReferenceTypeDriver  = "driver"
	ReferenceTypeVehicle = "vehicle"
	ReferenceTypeProduct = "product"
	ReferenceTypeClient  = "client"
)

// 登录日志常量
const (
	LoginLogStatusSuccess = "success"
	LoginLogStatusFailed  = "failed"

	LoginLogFailReasonInvalidCredentials = "invalid_credentials"
	LoginLogFailReasonUserDisabled       = "user_disabled"
	LoginLogFailReasonAccessDenied       = "access_denied"
	LoginLogFailReasonRateLimited        = "rate_limited"
	LoginLogFailReasonInternalError      = "internal_error"

	LoginLogSourceWeb    = "web"
	LoginLogSourceMobile = "mobile"
)

// 队列常量
const (
	QueueDefault       = "default"
	QueueCritical      = "critical"
	TaskMetricsRefresh = "metrics:refresh"
)
