package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/utils"
)

func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	shiftID := r.Context().Value(ShiftIDCtx).(int64)

	var req struct {
		TimeIn string `json:"timeIn" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	timeIn, err := utils.ParseTimestamp(req.TimeIn)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	record, err := h.workflow.AsMember(myInfo).ClockIn(r.Context(), shiftID, timeIn)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "签到成功", record)
}

func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	shiftID := r.Context().Value(ShiftIDCtx).(int64)

	var req struct {
		TimeOut string `json:"timeOut" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	timeOut, err := utils.ParseTimestamp(req.TimeOut)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	record, err := h.workflow.AsMember(myInfo).ClockOut(r.Context(), shiftID, timeOut)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "签退成功", record)
}
