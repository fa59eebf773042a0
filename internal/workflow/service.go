// Package workflow 实现排班与考勤的业务流程：用户注册、排班、变更申请审批、签到签退以及报表统计。
//
// 每个操作都会从 Store 获取一个只属于本次调用的事务，在返回前提交或回滚。
package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/credential"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

type Service struct {
	store    Store
	hasher   credential.Hasher
	validate *validator.Validate
}

func New(store Store, hasher credential.Hasher) *Service {
	return &Service{
		store:    store,
		hasher:   hasher,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// withTx 在一个事务中执行 fn，fn 返回错误时回滚，否则提交
func (s *Service) withTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("无法开启事务: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Service) validateStruct(v any) error {
	if err := s.validate.Struct(v); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fe := validationErrors[0]
			return domain.InvalidInput(fmt.Sprintf("字段 %s 不满足 %s 规则", fe.Field(), fe.Tag()))
		}
		return err
	}
	return nil
}
