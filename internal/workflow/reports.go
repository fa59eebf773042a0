package workflow

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/utils"
)

// WeeklyReport 返回完全落在 [weekStart, weekEnd] 内的班次，部分重叠的班次不计入
func (a *admin) WeeklyReport(ctx context.Context, weekStart, weekEnd time.Time) ([]*domain.Shift, error) {
	weekStart, weekEnd = utils.TruncateToDate(weekStart), utils.TruncateToDate(weekEnd)
	if err := utils.ValidateDateRange(weekStart, weekEnd); err != nil {
		return nil, err
	}

	var shifts []*domain.Shift
	err := a.svc.withTx(ctx, func(tx Tx) error {
		var err error
		shifts, err = tx.ListShiftsWithin(ctx, weekStart, weekEnd)
		return err
	})
	return shifts, err
}

// ShiftReport 统计每位员工在 [weekStart, weekEnd] 内的排班数、考勤记录数和实际工作时长。
// 考勤记录按签到时间归属，签到时间落在 weekStart 00:00 到 weekEnd 当天结束之间即计入。
func (a *admin) ShiftReport(ctx context.Context, weekStart, weekEnd time.Time) ([]*domain.StaffShiftReport, error) {
	weekStart, weekEnd = utils.TruncateToDate(weekStart), utils.TruncateToDate(weekEnd)
	if err := utils.ValidateDateRange(weekStart, weekEnd); err != nil {
		return nil, err
	}

	var (
		staffMembers []*domain.User
		shifts       []*domain.Shift
		records      []*domain.AttendanceRecord
	)
	if err := a.svc.withTx(ctx, func(tx Tx) error {
		var err error
		if staffMembers, err = tx.ListUsersByRole(ctx, domain.RoleStaff); err != nil {
			return err
		}
		if shifts, err = tx.ListShiftsWithin(ctx, weekStart, weekEnd); err != nil {
			return err
		}
		records, err = tx.ListAttendanceRecordsByTimeIn(ctx, weekStart, weekEnd.AddDate(0, 0, 1))
		return err
	}); err != nil {
		return nil, err
	}

	reports := make([]*domain.StaffShiftReport, 0, len(staffMembers))
	reportsMap := make(map[int64]*domain.StaffShiftReport, len(staffMembers)) // userID -> report
	for _, user := range staffMembers {
		report := &domain.StaffShiftReport{
			UserID: user.ID,
			Name:   user.Name,
			Email:  user.Email,
		}
		reports = append(reports, report)
		reportsMap[user.ID] = report
	}

	for _, shift := range shifts {
		if report, ok := reportsMap[shift.UserID]; ok {
			report.ScheduledShifts++
		}
	}

	for _, record := range records {
		if report, ok := reportsMap[record.UserID]; ok {
			report.AttendanceRecords++
			report.TotalHours += record.Hours()
		}
	}

	return reports, nil
}

func (a *admin) WeeklyRoster(ctx context.Context, weekStart, weekEnd time.Time) ([]*domain.WeeklyRosterEntry, error) {
	weekStart, weekEnd = utils.TruncateToDate(weekStart), utils.TruncateToDate(weekEnd)
	if err := utils.ValidateDateRange(weekStart, weekEnd); err != nil {
		return nil, err
	}

	var entries []*domain.WeeklyRosterEntry
	err := a.svc.withTx(ctx, func(tx Tx) error {
		var err error
		entries, err = tx.ListWeeklyRoster(ctx, weekStart, weekEnd)
		return err
	})
	return entries, err
}
