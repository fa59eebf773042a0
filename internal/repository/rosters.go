package repository

import (
	"context"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

func (t *Tx) CreateRosters(ctx context.Context, rosters []*domain.Roster) error {
	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO rosters (shift_id, user_id)
		VALUES ($1, $2)
		RETURNING created_at
	`

	for _, roster := range rosters {
		if err := t.tx.QueryRowContext(ctx, query, roster.ShiftID, roster.UserID).Scan(&roster.CreatedAt); err != nil {
			return translateError(err, nil)
		}
	}

	return nil
}

// ListRostersByUserID 返回属于该用户的班次上的排班记录
func (t *Tx) ListRostersByUserID(ctx context.Context, userID int64) ([]*domain.Roster, error) {
	query := `
		SELECT r.shift_id, r.user_id, r.created_at
		FROM rosters r
		JOIN shifts s ON s.id = r.shift_id
		WHERE s.user_id = $1
		ORDER BY r.shift_id
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	rows, err := t.tx.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rosters := make([]*domain.Roster, 0)
	for rows.Next() {
		roster := &domain.Roster{}
		if err := rows.Scan(&roster.ShiftID, &roster.UserID, &roster.CreatedAt); err != nil {
			return nil, err
		}
		rosters = append(rosters, roster)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rosters, nil
}

func (t *Tx) ListWeeklyRoster(ctx context.Context, start, end time.Time) ([]*domain.WeeklyRosterEntry, error) {
	query := `
		SELECT s.id, s.week_start, u.id, u.name, u.email
		FROM rosters r
		JOIN shifts s ON s.id = r.shift_id
		JOIN users u ON u.id = r.user_id
		WHERE s.week_start >= $1 AND s.week_end <= $2
		ORDER BY s.week_start, s.id
	`

	ctx, cancel := t.withTimeout(ctx)
	defer cancel()

	rows, err := t.tx.QueryContext(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*domain.WeeklyRosterEntry, 0)
	for rows.Next() {
		entry := &domain.WeeklyRosterEntry{}
		dst := []any{&entry.ShiftID, &entry.Date, &entry.UserID, &entry.UserName, &entry.UserEmail}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}
