package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
)

func TestRecordUserLoginInputEntry(t *testing.T) {
	at := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	ok := RecordUserLoginInput{Username: " Ana ", Status: "SUCCESS", FailReason: "ignored"}.entry(at)
	if ok.Username != "ana" || ok.Status != constants.LoginLogStatusSuccess || ok.FailReason != "" {
		t.Fatalf("unexpected success entry: %+v", ok)
	}
	if ok.LoginSource != constants.LoginLogSourceWeb || !ok.CreatedAt.Equal(at) {
		t.Fatalf("unexpected defaults: %+v", ok)
	}

	failed := RecordUserLoginInput{Username: "ana", Status: "weird", LoginSource: "MOBILE"}.entry(at)
	if failed.Status != constants.LoginLogStatusFailed || failed.FailReason != constants.LoginLogFailReasonInternalError {
		t.Fatalf("unknown status should become a failure with internal reason: %+v", failed)
	}
	if failed.LoginSource != constants.LoginLogSourceMobile {
		t.Fatalf("source want mobile got %s", failed.LoginSource)
	}
}

func TestUserLoginLogServiceList(t *testing.T) {
	db := openServiceTestDB(t)
	repo := repository.NewUserLoginLogRepository(db)
	svc := NewUserLoginLogService(repo, nil)
	for i := 0; i < 3; i++ {
		if err := svc.Record(RecordUserLoginInput{Username: "ana", FailReason: constants.LoginLogFailReasonInvalidCredentials}); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}
	logs, total, err := svc.List(context.Background(), Actor{UserID: 1}, repository.UserLoginLogListFilter{PageSize: 500})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 3 || len(logs) != 3 {
		t.Fatalf("want 3 logs got total=%d len=%d", total, len(logs))
	}

	denied := NewUserLoginLogService(repo, denyAuthorizer{})
	if _, _, err := denied.List(context.Background(), Actor{UserID: 2}, repository.UserLoginLogListFilter{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if page, size := clampPage(0, 500, 20, 100); page != 1 || size != 100 {
		t.Fatalf("clamp want 1/100 got %d/%d", page, size)
	}
}
