package workflow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

func TestCreateShiftRejectsInvertedInterval(t *testing.T) {
	f := newFixture(t)

	_, err := f.admin.CreateShift(f.ctx, f.staffUser.ID, date(t, "2024-01-07"), date(t, "2024-01-01"), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInterval)
	assert.Empty(t, f.store.Shifts())
}

func TestCreateShiftWithChangeRequestIsPending(t *testing.T) {
	f := newFixture(t)

	shift, err := f.admin.CreateShift(f.ctx, f.staffUser.ID, date(t, "2024-01-01"), date(t, "2024-01-01"), " swap with Bob ")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, shift.RequestStatus)
	assert.Equal(t, "swap with Bob", shift.ChangeRequest)

	shift, err = f.admin.CreateShift(f.ctx, f.staffUser.ID, date(t, "2024-01-02"), date(t, "2024-01-02"), "")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestNone, shift.RequestStatus)

	_, err = f.admin.CreateShift(f.ctx, 999, date(t, "2024-01-02"), date(t, "2024-01-02"), "")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestScheduleShift(t *testing.T) {
	f := newFixture(t)

	a, err := f.admin.CreateShift(f.ctx, f.staffUser.ID, date(t, "2024-01-01"), date(t, "2024-01-01"), "")
	require.NoError(t, err)
	b, err := f.admin.CreateShift(f.ctx, f.staffUser.ID, date(t, "2024-01-02"), date(t, "2024-01-02"), "")
	require.NoError(t, err)

	rosters, err := f.admin.ScheduleShift(f.ctx, f.staffUser.ID, []int64{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, rosters, 2)
	assert.Len(t, f.store.Rosters(), 2)

	t.Run("already rostered", func(t *testing.T) {
		_, err := f.admin.ScheduleShift(f.ctx, f.staffUser.ID, []int64{a.ID})
		assert.ErrorIs(t, err, domain.ErrAlreadyRostered)
		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Len(t, f.store.Rosters(), 2)
	})
}

func TestScheduleShiftSameIDTwiceRollsBack(t *testing.T) {
	f := newFixture(t)

	shift, err := f.admin.CreateShift(f.ctx, f.staffUser.ID, date(t, "2024-01-01"), date(t, "2024-01-01"), "")
	require.NoError(t, err)

	commits := f.store.Commits
	_, err = f.admin.ScheduleShift(f.ctx, f.staffUser.ID, []int64{shift.ID, shift.ID})
	assert.ErrorIs(t, err, domain.ErrAlreadyRostered)
	assert.Empty(t, f.store.Rosters())
	assert.Equal(t, commits, f.store.Commits)
}

func TestScheduleShiftValidatesEveryShift(t *testing.T) {
	f := newFixture(t)
	other := f.register(t, "Staff Two", "staff2@example.com", domain.RoleStaff)

	own, err := f.admin.CreateShift(f.ctx, f.staffUser.ID, date(t, "2024-01-01"), date(t, "2024-01-01"), "")
	require.NoError(t, err)
	foreign, err := f.admin.CreateShift(f.ctx, other.ID, date(t, "2024-01-01"), date(t, "2024-01-01"), "")
	require.NoError(t, err)

	_, err = f.admin.ScheduleShift(f.ctx, f.staffUser.ID, []int64{own.ID, foreign.ID})
	assert.ErrorIs(t, err, domain.ErrShiftOwnerMismatch)

	_, err = f.admin.ScheduleShift(f.ctx, f.staffUser.ID, []int64{own.ID, 999})
	assert.ErrorIs(t, err, domain.ErrShiftNotFound)

	_, err = f.admin.ScheduleShift(f.ctx, f.staffUser.ID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// 整批失败时不会留下任何排班记录
	assert.Empty(t, f.store.Rosters())
}

func TestManualScheduleShiftCreatesOneShiftAndOneRoster(t *testing.T) {
	f := newFixture(t)

	shift, err := f.admin.ManualScheduleShift(f.ctx, f.staffUser.ID, date(t, "2024-01-03"), "need the afternoon off")
	require.NoError(t, err)

	assert.Equal(t, date(t, "2024-01-03"), shift.WeekStart)
	assert.Equal(t, date(t, "2024-01-03"), shift.WeekEnd)
	assert.Equal(t, domain.RequestPending, shift.RequestStatus)

	require.Len(t, f.store.Shifts(), 1)
	rosters := f.store.Rosters()
	require.Len(t, rosters, 1)
	assert.Equal(t, shift.ID, rosters[0].ShiftID)
	assert.Equal(t, f.staffUser.ID, rosters[0].UserID)
}

func TestManualScheduleShiftRequiresStaff(t *testing.T) {
	f := newFixture(t)

	_, err := f.admin.ManualScheduleShift(f.ctx, f.admin.User().ID, date(t, "2024-01-03"), "")
	assert.ErrorIs(t, err, domain.ErrRoleMismatch)

	_, err = f.admin.ManualScheduleShift(f.ctx, 999, date(t, "2024-01-03"), "")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	assert.Empty(t, f.store.Shifts())
	assert.Empty(t, f.store.Rosters())
}

func TestWeeklyBulkScheduleCreatesFiveDays(t *testing.T) {
	f := newFixture(t)

	shifts, err := f.admin.WeeklyBulkSchedule(f.ctx, f.staffUser.ID, date(t, "2024-01-01"))
	require.NoError(t, err)
	require.Len(t, shifts, 5)

	for i, shift := range shifts {
		want := date(t, "2024-01-01").AddDate(0, 0, i)
		assert.Equal(t, want, shift.WeekStart)
		assert.Equal(t, want, shift.WeekEnd)
		assert.Equal(t, domain.RequestNone, shift.RequestStatus)
	}
	assert.Len(t, f.store.Shifts(), 5)
	assert.Len(t, f.store.Rosters(), 5)
}

func TestWeeklyBulkScheduleRequiresStaff(t *testing.T) {
	f := newFixture(t)
	plain := f.register(t, "Plain", "plain@example.com", domain.RoleUser)

	_, err := f.admin.WeeklyBulkSchedule(f.ctx, plain.ID, date(t, "2024-01-01"))
	assert.ErrorIs(t, err, domain.ErrRoleMismatch)
	assert.Empty(t, f.store.Shifts())
}
