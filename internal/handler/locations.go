package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

func (h *Handler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name" validate:"required"`
		Address string `json:"address" validate:"required"`
		Region  string `json:"region"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	location := &domain.Location{
		Name:    req.Name,
		Address: req.Address,
		Region:  req.Region,
	}

	if err := h.repository.CreateLocation(location); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "locations_name_key":
				h.errorResponse(w, r, "驻点名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建驻点成功", location)
}

func (h *Handler) GetAllLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := h.repository.GetAllLocations()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取驻点列表成功", locations)
}

func (h *Handler) GetLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)
	h.successResponse(w, r, "获取驻点成功", location)
}

func (h *Handler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	var req struct {
		Name     *string `json:"name"`
		Address  *string `json:"address"`
		Region   *string `json:"region"`
		IsActive *bool   `json:"isActive"`
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
		location.Name = *req.Name
	}
	if req.Address != nil {
		location.Address = *req.Address
	}
	if req.Region != nil {
		location.Region = *req.Region
	}
	if req.IsActive != nil {
		location.IsActive = *req.IsActive
	}

	if err := h.repository.UpdateLocation(location); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "locations_name_key":
				h.errorResponse(w, r, "驻点名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "请重试")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新驻点成功", location)
}

func (h *Handler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	location := r.Context().Value(LocationCtx).(*domain.Location)

	if err := h.repository.DeleteLocation(location.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "shift_templates_location_id_fkey":
				h.errorResponse(w, r, "该驻点已被排班模板引用，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除驻点成功", nil)
}
