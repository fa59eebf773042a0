package domain

import "time"

// Roster 将班次分配给负责该班次的用户，每个班次最多只有一条
type Roster struct {
	ShiftID   int64     `json:"shiftID"`
	UserID    int64     `json:"userID"`
	CreatedAt time.Time `json:"createdAt"`
}

type WeeklyRosterEntry struct {
	ShiftID   int64     `json:"shiftID"`
	Date      time.Time `json:"date"`
	UserID    int64     `json:"userID"`
	UserName  string    `json:"userName"`
	UserEmail string    `json:"userEmail"`
}
