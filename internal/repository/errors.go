package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

// translateError 把数据库约束错误转换成 domain 中的错误，无法识别的错误原样返回。
// notFound 为 sql.ErrNoRows 时应当返回的错误，为 nil 时不转换。
func translateError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.ConstraintName {
	case "users_email_key":
		return domain.ErrEmailTaken
	case "rosters_pkey":
		return domain.ErrAlreadyRostered
	case "attendance_records_open_key":
		return domain.ErrAlreadyClockedIn
	case "shifts_week_range_check", "attendance_records_time_range_check":
		return domain.ErrInvalidInterval
	case "shifts_user_id_fkey", "rosters_user_id_fkey", "attendance_records_user_id_fkey":
		return domain.ErrUserNotFound
	case "rosters_shift_id_fkey", "attendance_records_shift_id_fkey":
		return domain.ErrShiftNotFound
	}

	return err
}
