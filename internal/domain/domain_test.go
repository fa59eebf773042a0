package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestErrorKinds(t *testing.T) {
	assert.True(t, errors.Is(ErrNoPendingRequest, ErrNotFound))
	assert.True(t, errors.Is(ErrNoActiveRecord, ErrNotFound))
	assert.True(t, errors.Is(ErrEmailTaken, ErrConflict))
	assert.True(t, errors.Is(ErrAlreadyRostered, ErrConflict))
	assert.True(t, errors.Is(ErrInvalidInterval, ErrInvalidInput))
	assert.True(t, errors.Is(ErrRoleMismatch, ErrForbidden))
	assert.False(t, errors.Is(ErrEmailTaken, ErrNotFound))

	wrapped := InvalidInput("名字不能为空")
	assert.True(t, errors.Is(wrapped, ErrInvalidInput))
	assert.Equal(t, "名字不能为空", wrapped.Error())
}

func TestShiftValidateInterval(t *testing.T) {
	s := &Shift{WeekStart: date("2024-01-02"), WeekEnd: date("2024-01-02")}
	assert.NoError(t, s.ValidateInterval())

	s.WeekEnd = date("2024-01-01")
	assert.ErrorIs(t, s.ValidateInterval(), ErrInvalidInterval)
}

func TestShiftContains(t *testing.T) {
	start, end := date("2024-01-01"), date("2024-01-07")

	inside := &Shift{WeekStart: date("2024-01-01"), WeekEnd: date("2024-01-07")}
	partial := &Shift{WeekStart: date("2024-01-05"), WeekEnd: date("2024-01-10")}
	before := &Shift{WeekStart: date("2023-12-31"), WeekEnd: date("2024-01-01")}

	assert.True(t, inside.Contains(start, end))
	assert.False(t, partial.Contains(start, end))
	assert.False(t, before.Contains(start, end))
}

func TestShiftDisplayRequest(t *testing.T) {
	s := &Shift{ChangeRequest: "换到周三"}
	assert.Equal(t, "", s.DisplayRequest())

	s.RequestStatus = RequestPending
	assert.Equal(t, "换到周三", s.DisplayRequest())

	s.RequestStatus = RequestApproved
	assert.Equal(t, "APPROVED: 换到周三", s.DisplayRequest())
	assert.True(t, s.RequestStatus.Decided())

	s.RequestStatus = RequestDenied
	assert.Equal(t, "DENIED: 换到周三", s.DisplayRequest())
}

func TestAttendanceHours(t *testing.T) {
	in := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	r := &AttendanceRecord{TimeIn: in}
	assert.True(t, r.Open())
	assert.Equal(t, 0.0, r.Hours())

	out := in.Add(8 * time.Hour)
	r.TimeOut = &out
	assert.False(t, r.Open())
	assert.InDelta(t, 8.0, r.Hours(), 1e-9)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleStaff.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleUser.Valid())
	assert.False(t, Role("老板").Valid())
}
