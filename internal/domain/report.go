package domain

type StaffShiftReport struct {
	UserID            int64   `json:"userID"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	ScheduledShifts   int     `json:"scheduledShifts"`
	AttendanceRecords int     `json:"attendanceRecords"`
	TotalHours        float64 `json:"totalHours"`
}
