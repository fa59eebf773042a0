package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

func (t *Tx) CreateAttendanceRecord(ctx context.Context, record *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendance_records (shift_id, user_id, time_in, time_out)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	params := []any{record.ShiftID, record.UserID, record.TimeIn, record.TimeOut}
	if err := t.tx.QueryRowContext(ctx, query, params...).Scan(&record.ID); err != nil {
		return translateError(err, nil)
	}

	return nil
}

// FindOpenAttendanceRecord 锁住最早签到的未签退记录，签到时间相同时取 id 较小的一条
func (t *Tx) FindOpenAttendanceRecord(ctx context.Context, shiftID, userID int64) (*domain.AttendanceRecord, error) {
	query := `
		SELECT id, time_in
		FROM attendance_records
		WHERE shift_id = $1 AND user_id = $2 AND time_out IS NULL
		ORDER BY time_in, id
		LIMIT 1
		FOR UPDATE
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	record := &domain.AttendanceRecord{
		ShiftID: shiftID,
		UserID:  userID,
	}
	if err := t.tx.QueryRowContext(ctx, query, shiftID, userID).Scan(&record.ID, &record.TimeIn); err != nil {
		return nil, translateError(err, domain.ErrNoActiveRecord)
	}

	return record, nil
}

func (t *Tx) CloseAttendanceRecord(ctx context.Context, record *domain.AttendanceRecord, timeOut time.Time) error {
	query := `
		UPDATE attendance_records
		SET time_out = $1
		WHERE id = $2 AND time_out IS NULL
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	result, err := t.tx.ExecContext(ctx, query, timeOut, record.ID)
	if err != nil {
		return translateError(err, nil)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	// 记录已经被其他事务签退
	if affected == 0 {
		return domain.ErrNoActiveRecord
	}

	record.TimeOut = &timeOut
	return nil
}

func (t *Tx) ListAttendanceRecordsByTimeIn(ctx context.Context, from, to time.Time) ([]*domain.AttendanceRecord, error) {
	query := `
		SELECT id, shift_id, user_id, time_in, time_out
		FROM attendance_records
		WHERE time_in >= $1 AND time_in < $2
		ORDER BY id
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	rows, err := t.tx.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.AttendanceRecord, 0)
	for rows.Next() {
		record := &domain.AttendanceRecord{}
		dst := []any{&record.ID, &record.ShiftID, &record.UserID, &record.TimeIn, &record.TimeOut}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
