package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

// Decision 是管理员处理变更申请的结果。
// 找不到待处理的申请时，Decision 仍然携带提示信息，同时返回 domain.ErrNoPendingRequest。
type Decision struct {
	ShiftID int64                `json:"shiftID"`
	UserID  int64                `json:"userID"`
	Status  domain.RequestStatus `json:"status"`
	Message string               `json:"message"`
}

// RequestShiftChange 只能修改自己的班次；已经被批准或拒绝的申请不能再修改
func (s *staff) RequestShiftChange(ctx context.Context, shiftID int64, text string) (*domain.Shift, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.InvalidInput("变更申请内容不能为空")
	}

	var shift *domain.Shift
	if err := s.svc.withTx(ctx, func(tx Tx) error {
		var err error
		shift, err = tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			return err
		}
		// 不暴露别人的班次是否存在
		if shift.UserID != s.user.ID {
			return domain.ErrShiftNotFound
		}
		if shift.RequestStatus.Decided() {
			return domain.ErrRequestDecided
		}

		shift.RequestStatus = domain.RequestPending
		shift.ChangeRequest = text
		return tx.UpdateShiftRequest(ctx, shift)
	}); err != nil {
		return nil, err
	}

	slog.Info("已提交班次变更申请", "user_id", s.user.ID, "shift_id", shiftID)
	return shift, nil
}

func (a *admin) ApproveRequest(ctx context.Context, userID, shiftID int64) (*Decision, error) {
	return a.decide(ctx, userID, shiftID, domain.RequestApproved)
}

func (a *admin) DenyRequest(ctx context.Context, userID, shiftID int64) (*Decision, error) {
	return a.decide(ctx, userID, shiftID, domain.RequestDenied)
}

// decide 只处理处于待处理状态的申请，重复批准或拒绝不会产生任何修改
func (a *admin) decide(ctx context.Context, userID, shiftID int64, status domain.RequestStatus) (*Decision, error) {
	decision := &Decision{ShiftID: shiftID, UserID: userID}

	err := a.svc.withTx(ctx, func(tx Tx) error {
		shift, err := tx.GetShiftForUpdate(ctx, shiftID)
		if err != nil {
			if errors.Is(err, domain.ErrShiftNotFound) {
				return domain.ErrNoPendingRequest
			}
			return err
		}
		if shift.UserID != userID || shift.RequestStatus != domain.RequestPending {
			return domain.ErrNoPendingRequest
		}

		shift.RequestStatus = status
		return tx.UpdateShiftRequest(ctx, shift)
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoPendingRequest) {
			decision.Message = fmt.Sprintf("用户 %d 在班次 %d 上没有待处理的变更申请", userID, shiftID)
			return decision, err
		}
		return nil, err
	}

	decision.Status = status
	switch status {
	case domain.RequestApproved:
		decision.Message = fmt.Sprintf("已批准用户 %d 在班次 %d 上的变更申请", userID, shiftID)
	case domain.RequestDenied:
		decision.Message = fmt.Sprintf("已拒绝用户 %d 在班次 %d 上的变更申请", userID, shiftID)
	}

	slog.Info("已处理班次变更申请", "admin_id", a.user.ID, "user_id", userID, "shift_id", shiftID, "status", status)
	return decision, nil
}
