package workflow

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

// Store 为每一次工作流调用提供一个独立的事务
type Store interface {
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx 是一次工作流调用所使用的事务句柄。
// 查不到记录时，Get/Find 系列方法返回 domain 包中对应的 NotFound 错误。
type Tx interface {
	Commit() error
	Rollback() error

	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
	ListUsersByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error

	CreateShift(ctx context.Context, shift *domain.Shift) error
	GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error)
	// GetShiftForUpdate 会锁住该班次直到事务结束
	GetShiftForUpdate(ctx context.Context, id int64) (*domain.Shift, error)
	UpdateShiftRequest(ctx context.Context, shift *domain.Shift) error
	ListShiftsByUserID(ctx context.Context, userID int64) ([]*domain.Shift, error)
	// ListShiftsWithin 返回完全落在 [start, end] 内的班次
	ListShiftsWithin(ctx context.Context, start, end time.Time) ([]*domain.Shift, error)

	CreateRosters(ctx context.Context, rosters []*domain.Roster) error
	ListRostersByUserID(ctx context.Context, userID int64) ([]*domain.Roster, error)
	ListWeeklyRoster(ctx context.Context, start, end time.Time) ([]*domain.WeeklyRosterEntry, error)

	CreateAttendanceRecord(ctx context.Context, record *domain.AttendanceRecord) error
	// FindOpenAttendanceRecord 锁住并返回最早签到的未签退记录，不存在时返回 domain.ErrNoActiveRecord
	FindOpenAttendanceRecord(ctx context.Context, shiftID, userID int64) (*domain.AttendanceRecord, error)
	// CloseAttendanceRecord 只在记录仍未签退时写入签退时间，否则返回 domain.ErrNoActiveRecord
	CloseAttendanceRecord(ctx context.Context, record *domain.AttendanceRecord, timeOut time.Time) error
	// ListAttendanceRecordsByTimeIn 返回签到时间落在 [from, to) 内的记录
	ListAttendanceRecordsByTimeIn(ctx context.Context, from, to time.Time) ([]*domain.AttendanceRecord, error)
}
