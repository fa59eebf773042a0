package workflow

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

// Member 是所有用户都具备的能力
type Member interface {
	User() *domain.User
	ClockIn(ctx context.Context, shiftID int64, timeIn time.Time) (*domain.AttendanceRecord, error)
	ClockOut(ctx context.Context, shiftID int64, timeOut time.Time) (*domain.AttendanceRecord, error)
	ViewRoster(ctx context.Context) ([]*domain.Roster, error)
	MyShifts(ctx context.Context) ([]*domain.Shift, error)
}

// Staff 是员工额外具备的能力
type Staff interface {
	Member
	RequestShiftChange(ctx context.Context, shiftID int64, text string) (*domain.Shift, error)
}

// Admin 是管理员额外具备的能力
type Admin interface {
	Member
	CreateShift(ctx context.Context, userID int64, weekStart, weekEnd time.Time, changeRequest string) (*domain.Shift, error)
	ScheduleShift(ctx context.Context, userID int64, shiftIDs []int64) ([]*domain.Roster, error)
	ManualScheduleShift(ctx context.Context, staffUserID int64, date time.Time, changeRequest string) (*domain.Shift, error)
	WeeklyBulkSchedule(ctx context.Context, staffUserID int64, weekStart time.Time) ([]*domain.Shift, error)
	ApproveRequest(ctx context.Context, userID, shiftID int64) (*Decision, error)
	DenyRequest(ctx context.Context, userID, shiftID int64) (*Decision, error)
	WeeklyReport(ctx context.Context, weekStart, weekEnd time.Time) ([]*domain.Shift, error)
	ShiftReport(ctx context.Context, weekStart, weekEnd time.Time) ([]*domain.StaffShiftReport, error)
	WeeklyRoster(ctx context.Context, weekStart, weekEnd time.Time) ([]*domain.WeeklyRosterEntry, error)
}

type member struct {
	svc  *Service
	user *domain.User
}

func (m *member) User() *domain.User {
	return m.user
}

type staff struct {
	*member
}

type admin struct {
	*member
}

func (s *Service) AsMember(user *domain.User) Member {
	return &member{svc: s, user: user}
}

// AsStaff 只对角色为员工的用户返回 Staff 能力
func (s *Service) AsStaff(user *domain.User) (Staff, error) {
	if user.Role != domain.RoleStaff {
		return nil, domain.ErrRoleMismatch
	}
	return &staff{member: &member{svc: s, user: user}}, nil
}

// AsAdmin 只对角色为管理员的用户返回 Admin 能力
func (s *Service) AsAdmin(user *domain.User) (Admin, error) {
	if user.Role != domain.RoleAdmin {
		return nil, domain.ErrRoleMismatch
	}
	return &admin{member: &member{svc: s, user: user}}, nil
}

func (s *Service) MemberByEmail(ctx context.Context, email string) (Member, error) {
	user, err := s.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.AsMember(user), nil
}

func (s *Service) StaffByEmail(ctx context.Context, email string) (Staff, error) {
	user, err := s.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.AsStaff(user)
}

func (s *Service) AdminByEmail(ctx context.Context, email string) (Admin, error) {
	user, err := s.UserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.AsAdmin(user)
}
