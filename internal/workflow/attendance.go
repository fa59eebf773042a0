package workflow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

// ClockIn 为自己的班次签到，同一班次在签退之前不能再次签到
func (m *member) ClockIn(ctx context.Context, shiftID int64, timeIn time.Time) (*domain.AttendanceRecord, error) {
	record := &domain.AttendanceRecord{
		ShiftID: shiftID,
		UserID:  m.user.ID,
		TimeIn:  timeIn,
	}

	if err := m.svc.withTx(ctx, func(tx Tx) error {
		shift, err := tx.GetShiftByID(ctx, shiftID)
		if err != nil {
			return err
		}
		if shift.UserID != m.user.ID {
			return domain.ErrShiftNotFound
		}

		open, err := tx.FindOpenAttendanceRecord(ctx, shiftID, m.user.ID)
		switch {
		case err == nil && open != nil:
			return domain.ErrAlreadyClockedIn
		case err != nil && !errors.Is(err, domain.ErrNoActiveRecord):
			return err
		}

		return tx.CreateAttendanceRecord(ctx, record)
	}); err != nil {
		return nil, err
	}

	slog.Info("已签到", "user_id", m.user.ID, "shift_id", shiftID, "record_id", record.ID)
	return record, nil
}

// ClockOut 找到该班次最早签到且未签退的记录并写入签退时间
func (m *member) ClockOut(ctx context.Context, shiftID int64, timeOut time.Time) (*domain.AttendanceRecord, error) {
	var record *domain.AttendanceRecord
	if err := m.svc.withTx(ctx, func(tx Tx) error {
		var err error
		record, err = tx.FindOpenAttendanceRecord(ctx, shiftID, m.user.ID)
		if err != nil {
			return err
		}
		if timeOut.Before(record.TimeIn) {
			return domain.ErrInvalidInterval
		}
		return tx.CloseAttendanceRecord(ctx, record, timeOut)
	}); err != nil {
		return nil, err
	}

	slog.Info("已签退", "user_id", m.user.ID, "shift_id", shiftID, "record_id", record.ID, "hours", record.Hours())
	return record, nil
}

// ViewRoster 返回自己名下班次的排班记录
func (m *member) ViewRoster(ctx context.Context) ([]*domain.Roster, error) {
	var rosters []*domain.Roster
	err := m.svc.withTx(ctx, func(tx Tx) error {
		var err error
		rosters, err = tx.ListRostersByUserID(ctx, m.user.ID)
		return err
	})
	return rosters, err
}

func (m *member) MyShifts(ctx context.Context) ([]*domain.Shift, error) {
	var shifts []*domain.Shift
	err := m.svc.withTx(ctx, func(tx Tx) error {
		var err error
		shifts, err = tx.ListShiftsByUserID(ctx, m.user.ID)
		return err
	})
	return shifts, err
}
