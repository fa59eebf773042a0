package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/domain"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/utils"
	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
)

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	admin := r.Context().Value(AdminCtx).(workflow.Admin)

	var req struct {
		UserID        int64  `json:"userID" validate:"required"`
		WeekStart     string `json:"weekStart" validate:"required"`
		WeekEnd       string `json:"weekEnd" validate:"required"`
		ChangeRequest string `json:"changeRequest"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weekStart, weekEnd, err := utils.ParseDateRange(req.WeekStart, req.WeekEnd)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	shift, err := admin.CreateShift(r.Context(), req.UserID, weekStart, weekEnd, req.ChangeRequest)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建班次成功", shift)
}

func (h *Handler) ScheduleShift(w http.ResponseWriter, r *http.Request) {
	admin := r.Context().Value(AdminCtx).(workflow.Admin)

	var req struct {
		UserID   int64   `json:"userID" validate:"required"`
		ShiftIDs []int64 `json:"shiftIDs" validate:"required,min=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rosters, err := admin.ScheduleShift(r.Context(), req.UserID, req.ShiftIDs)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "排班成功", rosters)
}

func (h *Handler) ManualScheduleShift(w http.ResponseWriter, r *http.Request) {
	admin := r.Context().Value(AdminCtx).(workflow.Admin)

	var req struct {
		UserID        int64  `json:"userID" validate:"required"`
		Date          string `json:"date" validate:"required"`
		ChangeRequest string `json:"changeRequest"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	shift, err := admin.ManualScheduleShift(r.Context(), req.UserID, date, req.ChangeRequest)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "手动排班成功", shift)
}

func (h *Handler) WeeklyBulkSchedule(w http.ResponseWriter, r *http.Request) {
	admin := r.Context().Value(AdminCtx).(workflow.Admin)

	var req struct {
		UserID    int64  `json:"userID" validate:"required"`
		WeekStart string `json:"weekStart" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	weekStart, err := utils.ParseDate(req.WeekStart)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	shifts, err := admin.WeeklyBulkSchedule(r.Context(), req.UserID, weekStart)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "按周排班成功", shifts)
}

func (h *Handler) RequestShiftChange(w http.ResponseWriter, r *http.Request) {
	staff := r.Context().Value(StaffCtx).(workflow.Staff)
	shiftID := r.Context().Value(ShiftIDCtx).(int64)

	var req struct {
		Text string `json:"text" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	shift, err := staff.RequestShiftChange(r.Context(), shiftID, req.Text)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交变更申请成功", shift)
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.decideRequest(w, r, workflow.Admin.ApproveRequest)
}

func (h *Handler) DenyRequest(w http.ResponseWriter, r *http.Request) {
	h.decideRequest(w, r, workflow.Admin.DenyRequest)
}

type decideFunc func(a workflow.Admin, ctx context.Context, userID, shiftID int64) (*workflow.Decision, error)

func (h *Handler) decideRequest(w http.ResponseWriter, r *http.Request, decide decideFunc) {
	admin := r.Context().Value(AdminCtx).(workflow.Admin)
	shiftID := r.Context().Value(ShiftIDCtx).(int64)

	var req struct {
		UserID int64 `json:"userID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	decision, err := decide(admin, r.Context(), req.UserID, shiftID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNoPendingRequest) && decision != nil:
			h.errorResponse(w, r, decision.Message)
		default:
			h.workflowError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, decision.Message, decision)
}
