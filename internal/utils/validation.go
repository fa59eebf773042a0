package utils

import (
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02T15:04"
)

// ParseDate 解析 YYYY-MM-DD 格式的日期，格式错误时返回 domain.ErrInvalidDate
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.ErrInvalidDate
	}
	return d, nil
}

// ParseTimestamp 解析 YYYY-MM-DDTHH:MM 格式的时间
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(TimestampLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, domain.ErrInvalidTimestamp
	}
	return t, nil
}

// ParseDateRange 解析报表使用的起止日期，并检查开始日期不晚于结束日期
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	weekStart, err := ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	weekEnd, err := ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateDateRange(weekStart, weekEnd); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return weekStart, weekEnd, nil
}

func ValidateDateRange(start, end time.Time) error {
	if start.After(end) {
		return domain.ErrInvalidInterval
	}
	return nil
}

// TruncateToDate 去掉时分秒，只保留日期
func TruncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekBounds 返回 t 所在周的周一和周日
func WeekBounds(t time.Time) (time.Time, time.Time) {
	day := TruncateToDate(t)
	// time.Weekday 中周日为 0，这里需要把周一当作一周的第一天
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}
