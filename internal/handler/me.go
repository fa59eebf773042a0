package handler

import (
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
)

func (h *Handler) GetMyInfo(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	h.successResponse(w, r, "获取个人信息成功", myInfo)
}

func (h *Handler) UpdateMyPassword(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		OldPassword string `json:"oldPassword" validate:"required"`
		NewPassword string `json:"newPassword" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := h.workflow.Authenticate(r.Context(), myInfo.Email, req.OldPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			h.errorResponse(w, r, "旧密码错误")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.workflow.ChangePassword(r.Context(), myInfo, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, domain.ErrVersionConflict):
			h.errorResponse(w, r, "更新密码失败，请重试")
		default:
			h.workflowError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新密码成功", nil)
}

func (h *Handler) GetMyRoster(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	rosters, err := h.workflow.AsMember(myInfo).ViewRoster(r.Context())
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班信息成功", rosters)
}

func (h *Handler) GetMyShifts(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	shifts, err := h.workflow.AsMember(myInfo).MyShifts(r.Context())
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取班次列表成功", shifts)
}
