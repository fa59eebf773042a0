package seed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/utils"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
)

type SampleUser struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

var SampleUsers = []SampleUser{
	{Name: "Alice Johnson", Email: "admin1@example.com", Password: "adminpass1", Role: domain.RoleAdmin},
	{Name: "Bob Smith", Email: "admin2@example.com", Password: "adminpass2", Role: domain.RoleAdmin},
	{Name: "Carol Lee", Email: "staff1@example.com", Password: "staffpass1", Role: domain.RoleStaff},
	{Name: "David Brown", Email: "staff2@example.com", Password: "staffpass2", Role: domain.RoleStaff},
	{Name: "Eve Davis", Email: "staff3@example.com", Password: "staffpass3", Role: domain.RoleStaff},
	{Name: "Frank Miller", Email: "staff4@example.com", Password: "staffpass4", Role: domain.RoleStaff},
	{Name: "Grace Wilson", Email: "staff5@example.com", Password: "staffpass5", Role: domain.RoleStaff},
}

type Summary struct {
	Users   int
	Shifts  int
	Rosters int
}

// SeedSampleData 插入示例用户，并为每个新建的员工安排 now 所在周的周一至周五。
// 已存在的用户不会重复创建，也不会再为其排班。
func SeedSampleData(ctx context.Context, svc *workflow.Service, now time.Time) (*Summary, error) {
	summary := &Summary{}

	var admin workflow.Admin
	newStaff := make([]*domain.User, 0)
	for _, su := range SampleUsers {
		user, err := svc.RegisterUser(ctx, workflow.NewUser{
			Name:     su.Name,
			Email:    su.Email,
			Password: su.Password,
			Role:     su.Role,
		})
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			slog.Info("示例用户已存在", "email", su.Email)
			if user, err = svc.UserByEmail(ctx, su.Email); err != nil {
				return nil, err
			}
		case err != nil:
			return nil, err
		default:
			summary.Users++
			if user.Role == domain.RoleStaff {
				newStaff = append(newStaff, user)
			}
		}

		if admin == nil && user.Role == domain.RoleAdmin {
			if admin, err = svc.AsAdmin(user); err != nil {
				return nil, err
			}
		}
	}

	if admin == nil {
		return nil, errors.New("示例数据中没有管理员")
	}

	monday, _ := utils.WeekBounds(now)
	for _, staff := range newStaff {
		shifts, err := admin.WeeklyBulkSchedule(ctx, staff.ID, monday)
		if err != nil {
			return nil, err
		}
		summary.Shifts += len(shifts)
		summary.Rosters += len(shifts)
	}

	slog.Info("插入示例数据完成", "users", summary.Users, "shifts", summary.Shifts, "rosters", summary.Rosters)
	return summary, nil
}

// SeedSampleAttendance 为每位员工在 now 所在周的班次中随机挑选 2 到 3 个，
// 生成 7 点到 9 点之间签到、8 小时后签退的考勤记录。
func SeedSampleAttendance(ctx context.Context, svc *workflow.Service, admin workflow.Admin, now time.Time) (int, error) {
	monday, sunday := utils.WeekBounds(now)

	shifts, err := admin.WeeklyReport(ctx, monday, sunday)
	if err != nil {
		return 0, err
	}

	users, err := svc.ListUsers(ctx)
	if err != nil {
		return 0, err
	}

	cnt := 0
	for _, user := range users {
		if user.Role != domain.RoleStaff {
			continue
		}

		staffShifts := make([]*domain.Shift, 0)
		for _, shift := range shifts {
			if shift.UserID == user.ID {
				staffShifts = append(staffShifts, shift)
			}
		}

		member := svc.AsMember(user)
		for _, shift := range utils.RandomSample(staffShifts, utils.RandomIntBetween(2, 3)) {
			timeIn := shift.WeekStart.Add(time.Duration(utils.RandomIntBetween(7, 9)) * time.Hour)

			if _, err := member.ClockIn(ctx, shift.ID, timeIn); err != nil {
				if errors.Is(err, domain.ErrAlreadyClockedIn) {
					slog.Warn("班次已有未签退的记录，跳过", "user_id", user.ID, "shift_id", shift.ID)
					continue
				}
				return cnt, err
			}
			if _, err := member.ClockOut(ctx, shift.ID, timeIn.Add(8*time.Hour)); err != nil {
				return cnt, err
			}

			cnt++
		}
	}

	slog.Info("生成示例考勤记录完成", "count", cnt)
	return cnt, nil
}

// SeedRandomStaff 随机生成 n 名员工，邮箱冲突的会被跳过
func SeedRandomStaff(ctx context.Context, svc *workflow.Service, n int, password, emailDomainName string) ([]*domain.User, error) {
	if n <= 0 {
		return nil, domain.InvalidInput("请输入合法的用户数量")
	}

	users := make([]*domain.User, 0, n)
	for i := 0; i < n; i++ {
		name, email := utils.GenerateRandomStaff(emailDomainName)

		user, err := svc.RegisterUser(ctx, workflow.NewUser{
			Name:     name,
			Email:    email,
			Password: password,
			Role:     domain.RoleStaff,
		})
		if err != nil {
			if errors.Is(err, domain.ErrEmailTaken) {
				slog.Warn("随机生成的邮箱已存在", "email", email)
				continue
			}
			return users, err
		}

		users = append(users, user)
	}

	slog.Info("插入随机员工成功", "count", len(users))
	return users, nil
}
