package domain

import "time"

// RequestStatus 是班次变更申请所处的状态，申请内容单独保存在 ChangeRequest 中
type RequestStatus string

const (
	RequestNone     RequestStatus = "none"
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDenied   RequestStatus = "denied"
)

// Decided 表示申请已经被管理员处理过，处理结果不可再更改
func (s RequestStatus) Decided() bool {
	return s == RequestApproved || s == RequestDenied
}

type Shift struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"userID"`
	WeekStart     time.Time     `json:"weekStart"`
	WeekEnd       time.Time     `json:"weekEnd"`
	RequestStatus RequestStatus `json:"requestStatus"`
	ChangeRequest string        `json:"changeRequest"`
	CreatedAt     time.Time     `json:"createdAt"`
	Version       int32         `json:"-"`
}

// ValidateInterval 检查班次的开始日期不晚于结束日期
func (s *Shift) ValidateInterval() error {
	if s.WeekStart.After(s.WeekEnd) {
		return ErrInvalidInterval
	}
	return nil
}

// Contains 判断班次是否完全落在 [start, end] 之内，部分重叠不算
func (s *Shift) Contains(start, end time.Time) bool {
	return !s.WeekStart.Before(start) && !s.WeekEnd.After(end)
}

// DisplayRequest 以 "APPROVED: ..." / "DENIED: ..." 的形式展示申请，便于在命令行中阅读
func (s *Shift) DisplayRequest() string {
	switch s.RequestStatus {
	case RequestApproved:
		return "APPROVED: " + s.ChangeRequest
	case RequestDenied:
		return "DENIED: " + s.ChangeRequest
	case RequestPending:
		return s.ChangeRequest
	default:
		return ""
	}
}
