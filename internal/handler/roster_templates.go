package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/utils"
)

func (h *Handler) GetAllRosterTemplates(w http.ResponseWriter, r *http.Request) {
	rts, err := h.repository.GetAllRosterTemplates()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有排班模板成功", rts)
}

func (h *Handler) CreateRosterTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Description string `json:"description"`
		Shifts      []struct {
			StartTime               string  `json:"startTime" validate:"required"`
			EndTime                 string  `json:"endTime" validate:"required"`
			RequiredAssistantNumber int32   `json:"requiredAssistantNumber" validate:"required,gte=1"`
			ApplicableDays          []int32 `json:"applicableDays" validate:"required,dive,gte=1,lte=7"`
		} `json:"shifts" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rt := &domain.RosterTemplate{
		Name:        req.Name,
		Description: req.Description,
		Shifts:      make([]domain.RosterTemplateShift, 0, len(req.Shifts)),
	}

	for _, shift := range req.Shifts {
		rt.Shifts = append(rt.Shifts, domain.RosterTemplateShift{
			StartTime:               shift.StartTime,
			EndTime:                 shift.EndTime,
			RequiredAssistantNumber: shift.RequiredAssistantNumber,
			ApplicableDays:          shift.ApplicableDays,
		})
	}

	if err := utils.ValidateRosterTemplateShiftTime(rt); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreateRosterTemplate(rt); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "roster_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建模板成功", rt)
}

func (h *Handler) GetRosterTemplate(w http.ResponseWriter, r *http.Request) {
	rt := r.Context().Value(RosterTemplateCtx).(*domain.RosterTemplate)

	h.successResponse(w, r, "获取模板成功", rt)
}

func (h *Handler) UpdateRosterTemplate(w http.ResponseWriter, r *http.Request) {
	rt := r.Context().Value(RosterTemplateCtx).(*domain.RosterTemplate)

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
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
		rt.Name = *req.Name
	}
	if req.Description != nil {
		rt.Description = *req.Description
	}

	if err := h.repository.UpdateRosterTemplate(rt); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "roster_templates_name_key":
				h.errorResponse(w, r, "模板名称已存在")
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

	h.successResponse(w, r, "更新模板成功", rt)
}

func (h *Handler) DeleteRosterTemplate(w http.ResponseWriter, r *http.Request) {
	rt := r.Context().Value(RosterTemplateCtx).(*domain.RosterTemplate)

	if err := h.repository.DeleteRosterTemplate(rt.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "roster_plans_roster_template_id_fkey":
				h.errorResponse(w, r, "该模板已被应用于排班计划，无法删除")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "删除模板成功", nil)
}
