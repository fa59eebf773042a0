package domain

import "time"

type AttendanceRecord struct {
	ID      int64      `json:"id"`
	ShiftID int64      `json:"shiftID"`
	UserID  int64      `json:"userID"`
	TimeIn  time.Time  `json:"timeIn"`
	TimeOut *time.Time `json:"timeOut"` // 为空表示仍在签到中
}

func (r *AttendanceRecord) Open() bool {
	return r.TimeOut == nil
}

// Hours 返回签到到签退之间的小时数，未签退的记录计为 0
func (r *AttendanceRecord) Hours() float64 {
	if r.TimeOut == nil {
		return 0
	}
	return r.TimeOut.Sub(r.TimeIn).Hours()
}
