package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

const shiftColumns = `id, user_id, week_start, week_end, request_status, change_request, created_at, version`

func shiftDst(shift *domain.Shift) []any {
	return []any{
		&shift.ID,
		&shift.UserID,
		&shift.WeekStart,
		&shift.WeekEnd,
		&shift.RequestStatus,
		&shift.ChangeRequest,
		&shift.CreatedAt,
		&shift.Version,
	}
}

func (t *Tx) CreateShift(ctx context.Context, shift *domain.Shift) error {
	query := `
		INSERT INTO shifts (user_id, week_start, week_end, request_status, change_request)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, version
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	if shift.RequestStatus == "" {
		shift.RequestStatus = domain.RequestNone
	}

	params := []any{shift.UserID, shift.WeekStart, shift.WeekEnd, shift.RequestStatus, shift.ChangeRequest}
	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&shift.ID, &shift.CreatedAt, &shift.Version); err != nil {
		return translateError(err, nil)
	}

	return nil
}

func (t *Tx) GetShiftByID(ctx context.Context, id int64) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`
	return t.getShift(ctx, query, id)
}

func (t *Tx) GetShiftForUpdate(ctx context.Context, id int64) (*domain.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1 FOR UPDATE`
	return t.getShift(ctx, query, id)
}

func (t *Tx) getShift(ctx context.Context, query string, id int64) (*domain.Shift, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	shift := &domain.Shift{}
	if err := t.tx.QueryRowContext(ctx, query, id).Scan(shiftDst(shift)...); err != nil {
		return nil, translateError(err, domain.ErrShiftNotFound)
	}

	return shift, nil
}

func (t *Tx) UpdateShiftRequest(ctx context.Context, shift *domain.Shift) error {
	query := `
		UPDATE shifts
		SET
			request_status = $1,
			change_request = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	params := []any{shift.RequestStatus, shift.ChangeRequest, shift.ID, shift.Version}
	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&shift.Version); err != nil {
		return translateError(err, domain.ErrVersionConflict)
	}

	return nil
}

func (t *Tx) ListShiftsByUserID(ctx context.Context, userID int64) ([]*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts WHERE user_id = $1
		ORDER BY week_start, id
	`
	return t.queryShifts(ctx, query, userID)
}

func (t *Tx) ListShiftsWithin(ctx context.Context, start, end time.Time) ([]*domain.Shift, error) {
	query := `
		SELECT ` + shiftColumns + `
		FROM shifts WHERE week_start >= $1 AND week_end <= $2
		ORDER BY week_start, id
	`
	return t.queryShifts(ctx, query, start, end)
}

func (t *Tx) queryShifts(ctx context.Context, query string, args ...any) ([]*domain.Shift, error) {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]*domain.Shift, 0)
	for rows.Next() {
		shift := &domain.Shift{}
		if err := rows.Scan(shiftDst(shift)...); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return shifts, nil
}
