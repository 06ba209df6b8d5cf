package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

/**********************************************
 * 节假日
 **********************************************/

func (h *Handler) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name" validate:"required"`
		LocationID *int64 `json:"locationID"` // 为空表示适用于所有驻点
		StartDate  string `json:"startDate" validate:"required,datetime=2006-01-02"`
		EndDate    string `json:"endDate" validate:"required,datetime=2006-01-02"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, err := time.ParseInLocation(time.DateOnly, req.StartDate, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	endDate, err := time.ParseInLocation(time.DateOnly, req.EndDate, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if endDate.Before(startDate) {
		h.errorResponse(w, r, "结束日期不能早于开始日期")
		return
	}

	holiday := &domain.Holiday{
		Name:       req.Name,
		LocationID: req.LocationID,
		StartDate:  startDate,
		EndDate:    endDate,
	}

	if err := h.repository.CreateHoliday(holiday); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "holidays_location_id_fkey":
				h.errorResponse(w, r, "驻点不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建节假日成功", holiday)
}

func (h *Handler) GetAllHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := h.repository.GetAllHolidays()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取节假日列表成功", holidays)
}

func (h *Handler) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "节假日ID无效")
		return
	}

	if err := h.repository.DeleteHoliday(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除节假日成功", nil)
}

/**********************************************
 * 驻点临时关闭
 **********************************************/

func (h *Handler) CreateLocationClosure(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LocationID int64  `json:"locationID" validate:"required"`
		Reason     string `json:"reason" validate:"required"`
		StartDate  string `json:"startDate" validate:"required,datetime=2006-01-02"`
		EndDate    string `json:"endDate" validate:"required,datetime=2006-01-02"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, err := time.ParseInLocation(time.DateOnly, req.StartDate, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	endDate, err := time.ParseInLocation(time.DateOnly, req.EndDate, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}
	if endDate.Before(startDate) {
		h.errorResponse(w, r, "结束日期不能早于开始日期")
		return
	}

	closure := &domain.LocationClosure{
		LocationID: req.LocationID,
		Reason:     req.Reason,
		StartDate:  startDate,
		EndDate:    endDate,
	}

	if err := h.repository.CreateLocationClosure(closure); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "location_closures_location_id_fkey":
				h.errorResponse(w, r, "驻点不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建驻点关闭记录成功", closure)
}

func (h *Handler) GetAllLocationClosures(w http.ResponseWriter, r *http.Request) {
	closures, err := h.repository.GetAllLocationClosures()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取驻点关闭记录成功", closures)
}

func (h *Handler) DeleteLocationClosure(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	if err := h.repository.DeleteLocationClosure(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除驻点关闭记录成功", nil)
}

/**********************************************
 * 请假与取消记录
 **********************************************/

func (h *Handler) CreateShiftIssue(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		TemplateID int64  `json:"templateID" validate:"required"`
		Date       string `json:"date" validate:"required,datetime=2006-01-02"`
		Type       string `json:"type" validate:"required,oneof=SICK_LEAVE PERSONAL_LEAVE BULK_CANCEL"`
		Reason     string `json:"reason"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.ParseInLocation(time.DateOnly, req.Date, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	issue := &domain.ShiftIssue{
		TemplateID: req.TemplateID,
		Date:       date,
		Type:       domain.IssueType(req.Type),
		Reason:     req.Reason,
		CreatedBy:  myInfo.ID,
	}

	if err := h.repository.CreateShiftIssue(issue); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "shift_issues_template_id_fkey":
				h.errorResponse(w, r, "模板不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建记录成功", issue)
}

func (h *Handler) GetShiftIssues(w http.ResponseWriter, r *http.Request) {
	templateID, err := strconv.ParseInt(r.URL.Query().Get("templateID"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "模板ID无效")
		return
	}

	issues, err := h.repository.GetShiftIssuesByTemplate(templateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取记录成功", issues)
}

func (h *Handler) DeleteShiftIssue(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "记录ID无效")
		return
	}

	if err := h.repository.DeleteShiftIssue(id); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除记录成功", nil)
}
