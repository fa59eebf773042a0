package domain

import "errors"

// 错误的类别，调用方通过 errors.Is 判断属于哪一类
var (
	ErrNotFound     = errors.New("记录不存在")
	ErrConflict     = errors.New("数据冲突")
	ErrInvalidInput = errors.New("输入不合法")
	ErrForbidden    = errors.New("角色不符")
)

// Error 带有面向用户的提示信息，同时可以通过 errors.Is 匹配到它的类别
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

var (
	ErrUserNotFound     = newError(ErrNotFound, "用户不存在")
	ErrShiftNotFound    = newError(ErrNotFound, "班次不存在")
	ErrNoPendingRequest = newError(ErrNotFound, "没有待处理的变更申请")
	ErrNoActiveRecord   = newError(ErrNotFound, "没有进行中的考勤记录")

	ErrEmailTaken       = newError(ErrConflict, "邮箱已存在")
	ErrAlreadyRostered  = newError(ErrConflict, "班次已被排班")
	ErrAlreadyClockedIn = newError(ErrConflict, "该班次已签到且尚未签退")
	ErrRequestDecided   = newError(ErrConflict, "变更申请已被处理，不能再修改")
	ErrVersionConflict  = newError(ErrConflict, "数据已被修改，请重试")

	ErrInvalidInterval    = newError(ErrInvalidInput, "开始时间不能晚于结束时间")
	ErrShiftOwnerMismatch = newError(ErrInvalidInput, "班次不属于该用户")
	ErrInvalidDate        = newError(ErrInvalidInput, "日期格式错误，请使用 YYYY-MM-DD")
	ErrInvalidTimestamp   = newError(ErrInvalidInput, "时间格式错误，请使用 YYYY-MM-DDTHH:MM")
	ErrInvalidCredentials = newError(ErrInvalidInput, "邮箱不存在或密码错误")

	ErrRoleMismatch = newError(ErrForbidden, "用户角色不符合该操作")
)

// InvalidInput 构造一个类别为 ErrInvalidInput 的错误
func InvalidInput(msg string) error {
	return newError(ErrInvalidInput, msg)
}
