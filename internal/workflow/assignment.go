package workflow

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/utils"
)

// 标准工作周为周一至周五
const workDaysPerWeek = 5

func newShift(userID int64, weekStart, weekEnd time.Time, changeRequest string) *domain.Shift {
	shift := &domain.Shift{
		UserID:        userID,
		WeekStart:     utils.TruncateToDate(weekStart),
		WeekEnd:       utils.TruncateToDate(weekEnd),
		RequestStatus: domain.RequestNone,
	}

	if text := strings.TrimSpace(changeRequest); text != "" {
		shift.RequestStatus = domain.RequestPending
		shift.ChangeRequest = text
	}

	return shift
}

func (a *admin) CreateShift(ctx context.Context, userID int64, weekStart, weekEnd time.Time, changeRequest string) (*domain.Shift, error) {
	shift := newShift(userID, weekStart, weekEnd, changeRequest)
	if err := shift.ValidateInterval(); err != nil {
		return nil, err
	}

	if err := a.svc.withTx(ctx, func(tx Tx) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return err
		}
		return tx.CreateShift(ctx, shift)
	}); err != nil {
		return nil, err
	}

	slog.Info("已创建班次", "admin_id", a.user.ID, "shift_id", shift.ID, "user_id", userID)
	return shift, nil
}

// ScheduleShift 为 userID 的若干班次创建排班记录，任意一个班次不合法时整批回滚。
// 班次必须存在且属于 userID；同一个班次不能重复排班。
func (a *admin) ScheduleShift(ctx context.Context, userID int64, shiftIDs []int64) ([]*domain.Roster, error) {
	if len(shiftIDs) == 0 {
		return nil, domain.InvalidInput("班次列表不能为空")
	}

	rosters := make([]*domain.Roster, 0, len(shiftIDs))
	if err := a.svc.withTx(ctx, func(tx Tx) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return err
		}

		seen := make(map[int64]bool, len(shiftIDs))
		for _, shiftID := range shiftIDs {
			if seen[shiftID] {
				return domain.ErrAlreadyRostered
			}
			seen[shiftID] = true

			shift, err := tx.GetShiftByID(ctx, shiftID)
			if err != nil {
				return err
			}
			if shift.UserID != userID {
				return domain.ErrShiftOwnerMismatch
			}

			rosters = append(rosters, &domain.Roster{ShiftID: shiftID, UserID: userID})
		}

		return tx.CreateRosters(ctx, rosters)
	}); err != nil {
		return nil, err
	}

	slog.Info("已排班", "admin_id", a.user.ID, "user_id", userID, "shift_count", len(rosters))
	return rosters, nil
}

// ManualScheduleShift 为员工创建一个单日班次并同时排班，两者在同一个事务中完成
func (a *admin) ManualScheduleShift(ctx context.Context, staffUserID int64, date time.Time, changeRequest string) (*domain.Shift, error) {
	var shifts []*domain.Shift
	if err := a.svc.withTx(ctx, func(tx Tx) error {
		var err error
		shifts, err = scheduleSingleDays(ctx, tx, staffUserID, []time.Time{date}, changeRequest)
		return err
	}); err != nil {
		return nil, err
	}

	slog.Info("已手动排班", "admin_id", a.user.ID, "user_id", staffUserID, "shift_id", shifts[0].ID)
	return shifts[0], nil
}

// WeeklyBulkSchedule 从 weekStart 开始连续五天，每天创建一个单日班次并排班
func (a *admin) WeeklyBulkSchedule(ctx context.Context, staffUserID int64, weekStart time.Time) ([]*domain.Shift, error) {
	dates := make([]time.Time, workDaysPerWeek)
	for i := range dates {
		dates[i] = weekStart.AddDate(0, 0, i)
	}

	var shifts []*domain.Shift
	if err := a.svc.withTx(ctx, func(tx Tx) error {
		var err error
		shifts, err = scheduleSingleDays(ctx, tx, staffUserID, dates, "")
		return err
	}); err != nil {
		return nil, err
	}

	slog.Info("已按周排班", "admin_id", a.user.ID, "user_id", staffUserID, "week_start", weekStart.Format(utils.DateLayout))
	return shifts, nil
}

func scheduleSingleDays(ctx context.Context, tx Tx, staffUserID int64, dates []time.Time, changeRequest string) ([]*domain.Shift, error) {
	user, err := tx.GetUserByID(ctx, staffUserID)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleStaff {
		return nil, domain.ErrRoleMismatch
	}

	shifts := make([]*domain.Shift, 0, len(dates))
	rosters := make([]*domain.Roster, 0, len(dates))
	for _, date := range dates {
		shift := newShift(user.ID, date, date, changeRequest)
		if err := tx.CreateShift(ctx, shift); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
		rosters = append(rosters, &domain.Roster{ShiftID: shift.ID, UserID: user.ID})
	}

	if err := tx.CreateRosters(ctx, rosters); err != nil {
		return nil, err
	}

	return shifts, nil
}
