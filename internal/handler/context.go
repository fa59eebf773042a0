package handler

type ContextKey string

var (
	SubCtxKey    ContextKey = "sub"
	MyInfoCtx    ContextKey = "myInfo"
	UserInfoCtx  ContextKey = "userInfo"
	AdminCtx     ContextKey = "admin"
	StaffCtx     ContextKey = "staff"
	ShiftIDCtx   ContextKey = "shiftID"
	DateRangeCtx ContextKey = "dateRange"
)
