package handler

import (
	"net/http"

	"github.com/sysu-ecnc-dev/staff-roster/backend/internal/workflow"
)

func (h *Handler) GetWeeklyReport(w http.ResponseWriter, r *http.Request) {
	admin := r.Context().Value(AdminCtx).(workflow.Admin)
	dr := r.Context().Value(DateRangeCtx).(dateRange)

	shifts, err := admin.WeeklyReport(r.Context(), dr.start, dr.end)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取周报成功", shifts)
}

func (h *Handler) GetShiftReport(w http.ResponseWriter, r *http.Request) {
	admin := r.Context().Value(AdminCtx).(workflow.Admin)
	dr := r.Context().Value(DateRangeCtx).(dateRange)

	reports, err := admin.ShiftReport(r.Context(), dr.start, dr.end)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取出勤统计成功", reports)
}

func (h *Handler) GetWeeklyRoster(w http.ResponseWriter, r *http.Request) {
	admin := r.Context().Value(AdminCtx).(workflow.Admin)
	dr := r.Context().Value(DateRangeCtx).(dateRange)

	entries, err := admin.WeeklyRoster(r.Context(), dr.start, dr.end)
	if err != nil {
		h.workflowError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班表成功", entries)
}
