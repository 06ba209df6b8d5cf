package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
	"github.com/anxun-security/guard-roster/backend/internal/utils"
)

func (h *Handler) CreateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		Name          string   `json:"name" validate:"required"`
		LocationID    int64    `json:"locationID" validate:"required"`
		RepeatType    string   `json:"repeatType" validate:"required,oneof=WEEKLY FIXED_DATES"`
		Weekdays      []int32  `json:"weekdays"`
		FixedDates    []string `json:"fixedDates" validate:"omitempty,dive,datetime=2006-01-02"`
		StartTime     string   `json:"startTime" validate:"required"`
		EndTime       string   `json:"endTime" validate:"required"`
		EffectiveFrom string   `json:"effectiveFrom" validate:"required,datetime=2006-01-02"`
		EffectiveTo   *string  `json:"effectiveTo" validate:"omitempty,datetime=2006-01-02"`
		MinGuards     int32    `json:"minGuards" validate:"required,gte=1"`
		MaxGuards     int32    `json:"maxGuards" validate:"required,gte=1"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	effectiveFrom, err := time.ParseInLocation(time.DateOnly, req.EffectiveFrom, h.location)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	tpl := &domain.ShiftTemplate{
		Name:          req.Name,
		ManagerID:     myInfo.ID,
		LocationID:    req.LocationID,
		RepeatType:    domain.RepeatType(req.RepeatType),
		Weekdays:      req.Weekdays,
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		EffectiveFrom: effectiveFrom,
		MinGuards:     req.MinGuards,
		MaxGuards:     req.MaxGuards,
		IsActive:      true,
	}

	if req.EffectiveTo != nil {
		effectiveTo, err := time.ParseInLocation(time.DateOnly, *req.EffectiveTo, h.location)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		tpl.EffectiveTo = &effectiveTo
	}

	for _, dateStr := range req.FixedDates {
		date, err := time.ParseInLocation(time.DateOnly, dateStr, h.location)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		tpl.FixedDates = append(tpl.FixedDates, date)
	}

	if err := utils.ValidateShiftTemplate(tpl); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateShiftTemplate(tpl); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "shift_templates_location_id_fkey":
				h.errorResponse(w, r, "驻点不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建排班模板成功", tpl)
}

// GetMyShiftTemplates 经理只能看到自己创建的模板，管理员可以看到所有模板
func (h *Handler) GetMyShiftTemplates(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var managerID *int64
	if myInfo.Role == domain.RoleManager {
		managerID = &myInfo.ID
	}

	templates, err := h.repository.GetShiftTemplatesByManager(managerID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取排班模板列表成功", templates)
}

func (h *Handler) GetShiftTemplate(w http.ResponseWriter, r *http.Request) {
	tpl := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)
	h.successResponse(w, r, "获取排班模板成功", tpl)
}

func (h *Handler) UpdateShiftTemplate(w http.ResponseWriter, r *http.Request) {
	tpl := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	var req struct {
		Name          *string  `json:"name"`
		RepeatType    *string  `json:"repeatType" validate:"omitempty,oneof=WEEKLY FIXED_DATES"`
		Weekdays      []int32  `json:"weekdays"`
		FixedDates    []string `json:"fixedDates" validate:"omitempty,dive,datetime=2006-01-02"`
		StartTime     *string  `json:"startTime"`
		EndTime       *string  `json:"endTime"`
		EffectiveFrom *string  `json:"effectiveFrom" validate:"omitempty,datetime=2006-01-02"`
		EffectiveTo   *string  `json:"effectiveTo" validate:"omitempty,datetime=2006-01-02"`
		MinGuards     *int32   `json:"minGuards" validate:"omitempty,gte=1"`
		MaxGuards     *int32   `json:"maxGuards" validate:"omitempty,gte=1"`
		IsActive      *bool    `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if req.Name != nil {
		tpl.Name = *req.Name
	}
	if req.RepeatType != nil {
		tpl.RepeatType = domain.RepeatType(*req.RepeatType)
	}
	if req.Weekdays != nil {
		tpl.Weekdays = req.Weekdays
	}
	if req.FixedDates != nil {
		tpl.FixedDates = tpl.FixedDates[:0]
		for _, dateStr := range req.FixedDates {
			date, err := time.ParseInLocation(time.DateOnly, dateStr, h.location)
			if err != nil {
				h.badRequest(w, r, err)
				return
			}
			tpl.FixedDates = append(tpl.FixedDates, date)
		}
	}
	if req.StartTime != nil {
		tpl.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		tpl.EndTime = *req.EndTime
	}
	if req.EffectiveFrom != nil {
		effectiveFrom, err := time.ParseInLocation(time.DateOnly, *req.EffectiveFrom, h.location)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		tpl.EffectiveFrom = effectiveFrom
	}
	if req.EffectiveTo != nil {
		effectiveTo, err := time.ParseInLocation(time.DateOnly, *req.EffectiveTo, h.location)
		if err != nil {
			h.badRequest(w, r, err)
			return
		}
		tpl.EffectiveTo = &effectiveTo
	}
	if req.MinGuards != nil {
		tpl.MinGuards = *req.MinGuards
	}
	if req.MaxGuards != nil {
		tpl.MaxGuards = *req.MaxGuards
	}
	if req.IsActive != nil {
		tpl.IsActive = *req.IsActive
	}

	if err := utils.ValidateShiftTemplate(tpl); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateShiftTemplate(tpl); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "更新排班模板失败，请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新排班模板成功", tpl)
}

// DeleteShiftTemplate 软删除，已生成的班次保留
func (h *Handler) DeleteShiftTemplate(w http.ResponseWriter, r *http.Request) {
	tpl := r.Context().Value(ShiftTemplateCtx).(*domain.ShiftTemplate)

	if err := h.repository.DeleteShiftTemplate(tpl.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排班模板成功", nil)
}
