package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/seed"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/utils"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
)

type decideFunc func(workflow.Admin, context.Context, int64, int64) (*workflow.Decision, error)

func newRootCmd(a *app) *cobra.Command {
	var adminEmail string

	root := &cobra.Command{
		Use:           "roster",
		Short:         "排班与考勤管理命令行工具",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&adminEmail, "admin", "", "未指定管理员的命令所使用的管理员邮箱，默认为初始管理员")

	// 没有指定管理员的命令以 --admin 或初始管理员的身份执行
	operator := func(cmd *cobra.Command) (workflow.Admin, error) {
		email := adminEmail
		if email == "" {
			email = a.cfg.InitialAdmin.Email
		}
		return a.svc.AdminByEmail(cmd.Context(), email)
	}

	root.AddCommand(
		newInitCmd(a),
		newUserCmd(a),
		newViewWeeklyRosterCmd(a, operator),
		newScheduleShiftCmd(a),
		newManualScheduleShiftCmd(a, operator),
		newRequestChangeCmd(a),
		newDecideRequestCmd(a, "approve-request", "批准员工的班次变更申请", workflow.Admin.ApproveRequest),
		newDecideRequestCmd(a, "deny-request", "拒绝员工的班次变更申请", workflow.Admin.DenyRequest),
		newClockInCmd(a),
		newClockOutCmd(a),
		newShiftReportCmd(a, operator),
		newSampleAttendanceCmd(a, operator),
	)

	return root
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "创建数据表并插入示例用户和本周的排班",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if err := a.migrate(ctx); err != nil {
				return fmt.Errorf("无法初始化数据库表结构: %w", err)
			}

			_, err := a.svc.RegisterUser(ctx, workflow.NewUser{
				Name:     a.cfg.InitialAdmin.Name,
				Email:    a.cfg.InitialAdmin.Email,
				Password: a.cfg.InitialAdmin.Password,
				Role:     domain.RoleAdmin,
			})
			if err != nil && !errors.Is(err, domain.ErrEmailTaken) {
				return fmt.Errorf("无法创建初始管理员: %w", err)
			}

			summary, err := seed.SeedSampleData(ctx, a.svc, a.now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "数据库初始化完成：新增 %d 名用户、%d 个班次、%d 条排班记录\n", summary.Users, summary.Shifts, summary.Rosters)
			return nil
		},
	}
}

func newUserCmd(a *app) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "用户相关命令",
	}

	var role string
	createCmd := &cobra.Command{
		Use:   "create <name> <email> <password>",
		Short: "创建用户",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := parseRole(role)
			if err != nil {
				return err
			}

			user, err := a.svc.RegisterUser(cmd.Context(), workflow.NewUser{
				Name:     args[0],
				Email:    args[1],
				Password: args[2],
				Role:     r,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "已创建%s %s (%s)\n", user.Role, user.Name, user.Email)
			return nil
		},
	}
	createCmd.Flags().StringVar(&role, "role", "staff", "用户角色：user、staff 或 admin")

	var format string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "列出所有用户",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := a.svc.ListUsers(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "string":
				for _, user := range users {
					fmt.Fprintf(out, "ID: %d, 姓名: %s, 邮箱: %s, 角色: %s\n", user.ID, user.Name, user.Email, user.Role)
				}
			case "json":
				data, err := json.MarshalIndent(users, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			default:
				return fmt.Errorf("不支持的输出格式: %s", format)
			}
			return nil
		},
	}
	listCmd.Flags().StringVar(&format, "format", "string", "输出格式：string 或 json")

	var n int
	randomCmd := &cobra.Command{
		Use:   "random",
		Short: "随机生成员工",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := seed.SeedRandomStaff(cmd.Context(), a.svc, n, a.cfg.Seed.User.Password, a.cfg.Email.UserDomain)
			if err != nil {
				return err
			}

			for _, user := range users {
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", user.Name, user.Email)
			}
			return nil
		},
	}
	randomCmd.Flags().IntVarP(&n, "number", "n", 5, "要生成的员工数量")

	userCmd.AddCommand(createCmd, listCmd, randomCmd)
	return userCmd
}

func newViewWeeklyRosterCmd(a *app, operator func(*cobra.Command) (workflow.Admin, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "view-weekly-roster",
		Short: "查看本周的排班",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := operator(cmd)
			if err != nil {
				return err
			}

			weekStart, weekEnd := utils.WeekBounds(a.now())
			entries, err := admin.WeeklyRoster(cmd.Context(), weekStart, weekEnd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "本周没有排班")
				return nil
			}

			fmt.Fprintf(out, "本周排班 (%s 至 %s)：\n", weekStart.Format(utils.DateLayout), weekEnd.Format(utils.DateLayout))
			for _, entry := range entries {
				fmt.Fprintf(out, "班次ID: %d, 日期: %s, 负责人: %s (%s)\n", entry.ShiftID, entry.Date.Format(utils.DateLayout), entry.UserName, entry.UserEmail)
			}
			return nil
		},
	}
}

func newScheduleShiftCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule-shift <adminEmail> <staffEmail>",
		Short: "为员工安排本周周一至周五的班次",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			admin, err := a.svc.AdminByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			staff, err := a.svc.StaffByEmail(ctx, args[1])
			if err != nil {
				return err
			}

			// 班次和排班记录在同一个事务中写入
			weekStart, _ := utils.WeekBounds(a.now())
			if _, err := admin.WeeklyBulkSchedule(ctx, staff.User().ID, weekStart); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "已为 %s (%s) 安排本周的班次\n", staff.User().Name, staff.User().Email)
			return nil
		},
	}
}

func newManualScheduleShiftCmd(a *app, operator func(*cobra.Command) (workflow.Admin, error)) *cobra.Command {
	var changeRequest string

	cmd := &cobra.Command{
		Use:   "manual-schedule-shift <staffEmail> <date>",
		Short: "为员工手动安排某一天的班次",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			staff, err := a.svc.StaffByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			date, err := utils.ParseDate(args[1])
			if err != nil {
				return err
			}

			admin, err := operator(cmd)
			if err != nil {
				return err
			}

			shift, err := admin.ManualScheduleShift(ctx, staff.User().ID, date, changeRequest)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "已为 %s 安排 %s 的班次 (班次ID: %d)\n", staff.User().Name, shift.WeekStart.Format(utils.DateLayout), shift.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&changeRequest, "change-request", "", "班次的变更申请")

	return cmd
}

func newRequestChangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "request-change <staffEmail> <shiftID> <text>",
		Short: "员工提交班次变更申请",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			staff, err := a.svc.StaffByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			shiftID, err := parseShiftID(args[1])
			if err != nil {
				return err
			}

			if _, err := staff.RequestShiftChange(ctx, shiftID, args[2]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s 已提交班次 %d 的变更申请\n", staff.User().Name, shiftID)
			return nil
		},
	}
}

func newDecideRequestCmd(a *app, use, short string, decide decideFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <adminEmail> <staffEmail> <shiftID>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			admin, err := a.svc.AdminByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			user, err := a.svc.UserByEmail(ctx, args[1])
			if err != nil {
				return err
			}
			shiftID, err := parseShiftID(args[2])
			if err != nil {
				return err
			}

			decision, err := decide(admin, ctx, user.ID, shiftID)
			if decision != nil {
				fmt.Fprintln(cmd.OutOrStdout(), decision.Message)
			}
			return err
		},
	}
}

func newClockInCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clock-in <staffEmail> <shiftID> <timeIn>",
		Short: "员工签到",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			member, err := a.svc.MemberByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			shiftID, err := parseShiftID(args[1])
			if err != nil {
				return err
			}
			timeIn, err := utils.ParseTimestamp(args[2])
			if err != nil {
				return err
			}

			if _, err := member.ClockIn(ctx, shiftID, timeIn); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s 已于 %s 签到班次 %d\n", member.User().Name, timeIn.Format(utils.TimestampLayout), shiftID)
			return nil
		},
	}
}

func newClockOutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clock-out <staffEmail> <shiftID> <timeOut>",
		Short: "员工签退",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			member, err := a.svc.MemberByEmail(ctx, args[0])
			if err != nil {
				return err
			}
			shiftID, err := parseShiftID(args[1])
			if err != nil {
				return err
			}
			timeOut, err := utils.ParseTimestamp(args[2])
			if err != nil {
				return err
			}

			record, err := member.ClockOut(ctx, shiftID, timeOut)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s 已于 %s 签退班次 %d，本次工作 %.2f 小时\n", member.User().Name, timeOut.Format(utils.TimestampLayout), shiftID, record.Hours())
			return nil
		},
	}
}

func newShiftReportCmd(a *app, operator func(*cobra.Command) (workflow.Admin, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-shift-report <weekStart> <weekEnd>",
		Short: "生成员工的排班与考勤报表",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			weekStart, weekEnd, err := utils.ParseDateRange(args[0], args[1])
			if err != nil {
				return err
			}

			admin, err := operator(cmd)
			if err != nil {
				return err
			}

			reports, err := admin.ShiftReport(cmd.Context(), weekStart, weekEnd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			separator := strings.Repeat("-", 60)
			fmt.Fprintf(out, "排班报表 (%s 至 %s)：\n", weekStart.Format(utils.DateLayout), weekEnd.Format(utils.DateLayout))
			fmt.Fprintln(out, separator)
			for _, report := range reports {
				fmt.Fprintf(out, "员工: %s (%s)\n", report.Name, report.Email)
				fmt.Fprintf(out, "  排班数: %d\n", report.ScheduledShifts)
				fmt.Fprintf(out, "  工作时长: %.2f\n", report.TotalHours)
				fmt.Fprintf(out, "  考勤记录数: %d\n", report.AttendanceRecords)
				fmt.Fprintln(out, separator)
			}
			return nil
		},
	}
}

func newSampleAttendanceCmd(a *app, operator func(*cobra.Command) (workflow.Admin, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-sample-attendance",
		Short: "为本周的班次生成示例考勤记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := operator(cmd)
			if err != nil {
				return err
			}

			cnt, err := seed.SeedSampleAttendance(cmd.Context(), a.svc, admin, a.now())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "已为本周生成 %d 条示例考勤记录\n", cnt)
			return nil
		},
	}
}

func parseShiftID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.InvalidInput("班次ID无效")
	}
	return id, nil
}

func parseRole(s string) (domain.Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user", string(domain.RoleUser):
		return domain.RoleUser, nil
	case "staff", string(domain.RoleStaff):
		return domain.RoleStaff, nil
	case "admin", string(domain.RoleAdmin):
		return domain.RoleAdmin, nil
	}
	return "", domain.InvalidInput("不支持的用户角色: " + s)
}
