package service

import (
	"context"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
)

// UserLoginLogService 登录记录（成功、失败与限流）
type UserLoginLogService struct {
	repo       repository.UserLoginLogRepository
	authorizer Authorizer
	now        func() time.Time
}

// NewUserLoginLogService 创建登录记录服务
func NewUserLoginLogService(repo repository.UserLoginLogRepository, authorizer Authorizer) *UserLoginLogService {
	return &UserLoginLogService{repo: repo, authorizer: authorizer, now: defaultClock(nil)}
}

// RecordUserLoginInput 一次登录尝试
type RecordUserLoginInput struct {
	UserID      uint
	Username    string
	Status      string
	FailReason  string
	ClientIP    string
	UserAgent   string
	LoginSource string
	RequestID   string
}

// entry 状态只有 success/failed；失败缺省原因记为 internal_error，来源缺省 web
func (in RecordUserLoginInput) entry(at time.Time) *models.UserLoginLog {
	clean := func(v string) string { return strings.TrimSpace(v) }
	lower := func(v string) string { return strings.ToLower(clean(v)) }

	log := &models.UserLoginLog{
		UserID:      in.UserID,
		Username:    lower(in.Username),
		Status:      constants.LoginLogStatusFailed,
		FailReason:  lower(in.FailReason),
		ClientIP:    clean(in.ClientIP),
		UserAgent:   clean(in.UserAgent),
		LoginSource: lower(in.LoginSource),
		RequestID:   clean(in.RequestID),
		CreatedAt:   at,
	}
	switch {
	case lower(in.Status) == constants.LoginLogStatusSuccess:
		log.Status = constants.LoginLogStatusSuccess
		log.FailReason = ""
	case log.FailReason == "":
		log.FailReason = constants.LoginLogFailReasonInternalError
	}
	if log.LoginSource == "" {
		log.LoginSource = constants.LoginLogSourceWeb
	}
	return log
}

// Record 写入一条登录记录
func (s *UserLoginLogService) Record(input RecordUserLoginInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	return s.repo.Create(input.entry(s.now()))
}

// List 登录记录查询，每页最多 100 条
func (s *UserLoginLogService) List(ctx context.Context, actor Actor, filter repository.UserLoginLogListFilter) ([]models.UserLoginLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.UserLoginLog{}, 0, nil
	}
	if err := authorize(ctx, s.authorizer, actor, authz.CapUserManage); err != nil {
		return nil, 0, err
	}
	filter.Page, filter.PageSize = clampPage(filter.Page, filter.PageSize, 20, 100)
	return s.repo.List(filter)
}

func clampPage(page, pageSize, fallback, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = fallback
	case pageSize > max:
		pageSize = max
	}
	return page, pageSize
}
