package service

import (
	"errors"
	"fmt"
)

// 通用错误
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrUserDisabled       = errors.New("user disabled")
	ErrAccessLevelDenied  = errors.New("access level denied")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrUserSelfDeactivate = errors.New("cannot deactivate yourself")
	ErrRoleInvalid        = errors.New("invalid role")
)

// 索赔生命周期错误
var (
	ErrClaimNotFound               = errors.New("claim not found")
	ErrClaimStatusInvalid          = errors.New("claim status does not allow this operation")
	ErrClaimConflict               = errors.New("claim was modified concurrently")
	ErrClaimClientRequired         = errors.New("active client is required")
	ErrClaimInvoiceRequired        = errors.New("invoice number is required")
	ErrClaimItemsRequired          = errors.New("at least one valid item is required")
	ErrClaimValueInvalid           = errors.New("claim value is invalid")
	ErrDecisionInvalid             = errors.New("decision action is invalid")
	ErrReturnInvoiceRequired       = errors.New("return invoice is required")
	ErrReturnVehicleRequired       = errors.New("return vehicle is required")
	ErrProofRequired               = errors.New("proof photo is required")
	ErrPhotoRequired               = errors.New("at least one photo is required")
	ErrNoteRequired                = errors.New("note text is required")
	ErrLiabilityInvalid            = errors.New("liability party is invalid")
	ErrLiabilityNotAllowed         = errors.New("liability can only be assigned to completed returns")
	ErrLiabilityAlreadyAssigned    = errors.New("liability already assigned")
	ErrDistributionCenterRequired  = errors.New("distribution center is required")
	ErrDistributionCenterUnchanged = errors.New("distribution center unchanged")
)

// 参考数据、上传与看板错误
var (
	ErrReferenceNotFound       = errors.New("reference not found")
	ErrReferenceTypeInvalid    = errors.New("reference type is invalid")
	ErrReferenceDuplicate      = errors.New("reference already exists")
	ErrReferenceRequiredFields = errors.New("reference required fields missing")
	ErrUploadTooLarge          = errors.New("upload too large")
	ErrUploadTypeInvalid       = errors.New("upload type not allowed")
	ErrUploadTooMany           = errors.New("too many files")
	ErrUploadFailed            = errors.New("upload failed")
	ErrMetricsPeriodInvalid    = errors.New("metrics period is invalid")
	ErrExportFailed            = errors.New("export failed")
)

// ValidationError 输入或状态前置条件不满足
type ValidationError struct {
	Err    error
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NotFoundError 引用的实体不存在
type NotFoundError struct {
	Err    error
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	if e.Entity == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s #%d", e.Err.Error(), e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// ConflictError 并发修改或唯一性冲突
type ConflictError struct {
	Err    error
	Detail string
}

func (e *ConflictError) Error() string {
	if e.Detail == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Detail)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func invalid(err error, detail string) error {
	return &ValidationError{Err: err, Detail: detail}
}

func notFound(err error, entity string, id uint) error {
	return &NotFoundError{Err: err, Entity: entity, ID: id}
}

func conflict(err error, detail string) error {
	return &ConflictError{Err: err, Detail: detail}
}
