package repository

import (
	"context"
	"fmt"
	"time"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		version INTEGER NOT NULL DEFAULT 1,
		CONSTRAINT users_email_key UNIQUE (email)
	)`,
	`CREATE TABLE IF NOT EXISTS shifts (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL,
		week_start DATE NOT NULL,
		week_end DATE NOT NULL,
		request_status TEXT NOT NULL DEFAULT 'none',
		change_request TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		version INTEGER NOT NULL DEFAULT 1,
		CONSTRAINT shifts_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT shifts_week_range_check CHECK (week_start <= week_end),
		CONSTRAINT shifts_request_status_check CHECK (request_status IN ('none', 'pending', 'approved', 'denied'))
	)`,
	`CREATE INDEX IF NOT EXISTS shifts_week_start_idx ON shifts (week_start, id)`,
	`CREATE TABLE IF NOT EXISTS rosters (
		shift_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT rosters_pkey PRIMARY KEY (shift_id),
		CONSTRAINT rosters_shift_id_fkey FOREIGN KEY (shift_id) REFERENCES shifts (id) ON DELETE CASCADE,
		CONSTRAINT rosters_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
		id BIGSERIAL PRIMARY KEY,
		shift_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		time_in TIMESTAMP NOT NULL,
		time_out TIMESTAMP,
		CONSTRAINT attendance_records_shift_id_fkey FOREIGN KEY (shift_id) REFERENCES shifts (id) ON DELETE CASCADE,
		CONSTRAINT attendance_records_user_id_fkey FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT attendance_records_time_range_check CHECK (time_out IS NULL OR time_out >= time_in)
	)`,
	// 同一个用户在同一个班次上最多只有一条未签退的记录
	`CREATE UNIQUE INDEX IF NOT EXISTS attendance_records_open_key
		ON attendance_records (shift_id, user_id) WHERE time_out IS NULL`,
	`CREATE INDEX IF NOT EXISTS attendance_records_time_in_idx ON attendance_records (time_in)`,
}

// Migrate 创建所需的表和索引，重复执行不会产生影响
func (r *Repository) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("第 %d 条建表语句执行失败: %w", i+1, err)
		}
	}

	return tx.Commit()
}
