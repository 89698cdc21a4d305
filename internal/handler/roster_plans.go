package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/utils"
)

func (h *Handler) CreateRosterPlan(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                string    `json:"name" validate:"required"`
		Description         string    `json:"description"`
		SubmissionStartTime time.Time `json:"submissionStartTime" validate:"required"`
		SubmissionEndTime   time.Time `json:"submissionEndTime" validate:"required"`
		ActiveStartTime     time.Time `json:"activeStartTime" validate:"required"`
		ActiveEndTime       time.Time `json:"activeEndTime" validate:"required"`
		TemplateID          int64     `json:"templateID" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plan := &domain.RosterPlan{
		Name:                req.Name,
		Description:         req.Description,
		SubmissionStartTime: req.SubmissionStartTime,
		SubmissionEndTime:   req.SubmissionEndTime,
		ActiveStartTime:     req.ActiveStartTime,
		ActiveEndTime:       req.ActiveEndTime,
		RosterTemplateID:    req.TemplateID,
	}

	// 检查 plan 的时间是否合法
	if err := utils.ValidateRosterPlanTime(plan); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 插入数据到数据库中
	if err := h.repository.CreateRosterPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "roster_plans_name_key":
				h.errorResponse(w, r, "排班计划名称已存在")
			case "roster_plans_roster_template_id_fkey":
				h.errorResponse(w, r, "排班计划模板不存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "创建排班计划成功", plan)
}

func (h *Handler) GetRosterPlanByID(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	h.successResponse(w, r, "获取排班计划成功", plan)
}

func (h *Handler) DeleteRosterPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	if err := h.repository.DeleteRosterPlan(plan.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除排班计划成功", nil)
}

func (h *Handler) UpdateRosterPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	var req struct {
		Name                *string    `json:"name"`
		Description         *string    `json:"description"`
		SubmissionStartTime *time.Time `json:"submissionStartTime"`
		SubmissionEndTime   *time.Time `json:"submissionEndTime"`
		ActiveStartTime     *time.Time `json:"activeStartTime"`
		ActiveEndTime       *time.Time `json:"activeEndTime"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 将输入的参数解析到 plan 中
	if req.Name != nil {
		plan.Name = *req.Name
	}
	if req.Description != nil {
		plan.Description = *req.Description
	}
	if req.SubmissionStartTime != nil {
		plan.SubmissionStartTime = *req.SubmissionStartTime
	}
	if req.SubmissionEndTime != nil {
		plan.SubmissionEndTime = *req.SubmissionEndTime
	}
	if req.ActiveStartTime != nil {
		plan.ActiveStartTime = *req.ActiveStartTime
	}
	if req.ActiveEndTime != nil {
		plan.ActiveEndTime = *req.ActiveEndTime
	}

	// 检查 plan 的时间是否合法
	if err := utils.ValidateRosterPlanTime(plan); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 更新排班计划
	if err := h.repository.UpdateRosterPlan(plan); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch pgErr.ConstraintName {
			case "roster_plans_name_key":
				h.errorResponse(w, r, "排班计划名称已存在")
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "更新排班计划成功", plan)
}

func (h *Handler) GetAllRosterPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := h.repository.GetAllRosterPlans()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取所有排班计划成功", plans)
}

func (h *Handler) SubmitYourAvailability(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	var req []struct {
		ShiftID int64   `json:"shiftID" validate:"required"`
		Days    []int32 `json:"days" validate:"required,dive,min=1,max=7"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.validate.Var(req, "required,dive"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	submission := &domain.AvailabilitySubmission{
		RosterPlanID: plan.ID,
		UserID:       myInfo.ID,
		Items:        make([]domain.AvailabilitySubmissionItem, len(req)),
	}

	for i, item := range req {
		submission.Items[i] = domain.AvailabilitySubmissionItem{
			ShiftID: item.ShiftID,
			Days:    item.Days,
		}
	}

	// 还需要检查模板和提交的格式是否对的上
	template, err := h.repository.GetRosterTemplate(plan.RosterTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateSubmissionWithTemplate(submission, template); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.InsertAvailabilitySubmission(submission); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "成功提交空闲时间", submission)
}

func (h *Handler) GetYourAvailabilitySubmission(w http.ResponseWriter, r *http.Request) {
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	submission, err := h.repository.GetAvailabilitySubmissionByUserIDAndRosterPlanID(myInfo.ID, plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "你还没有提交过空闲时间", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取空闲时间提交成功", submission)
}

func (h *Handler) GetRosterPlanSubmissions(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	submissions, err := h.repository.GetAllSubmissionsByRosterPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取该排班计划所有的提交记录成功", submissions)
}

func (h *Handler) SubmitRosterResult(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	var req []struct {
		ShiftID int64 `json:"shiftID" validate:"required"`
		Items   []struct {
			Day          int32   `json:"day" validate:"required,min=1,max=7"`
			PrincipalID  *int64  `json:"principalID"`
			AssistantIDs []int64 `json:"assistantIDs" validate:"required"`
		} `json:"items" validate:"required,dive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Var(req, "required,dive"); err != nil {
		h.badRequest(w, r, err)
		return
	}

	rosterResult := &domain.RosterResult{
		RosterPlanID: plan.ID,
		Shifts:       make([]domain.RosterResultShift, len(req)),
	}

	for i, shift := range req {
		rosterResult.Shifts[i] = domain.RosterResultShift{
			ShiftID: shift.ShiftID,
			Items:   make([]domain.RosterResultShiftItem, len(shift.Items)),
		}

		for j, item := range shift.Items {
			rosterResult.Shifts[i].Items[j] = domain.RosterResultShiftItem{
				Day:          item.Day,
				AssistantIDs: item.AssistantIDs,
				PrincipalID:  item.PrincipalID,
			}
		}
	}

	// 必须检查提交的结果是否和模板对的上
	template, err := h.repository.GetRosterTemplate(plan.RosterTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateRosterResultWithTemplate(rosterResult, template); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 还要检查提交的结果是否和助理提交的结果对的上
	submissions, err := h.repository.GetAllSubmissionsByRosterPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if err := utils.ValidateRosterResultWithSubmissions(rosterResult, submissions); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 最后要检查是否存在重复的助理
	if err := utils.ValidIfExistsDuplicateAssistant(rosterResult); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.InsertRosterResult(rosterResult); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "提交排班结果成功", rosterResult)
}

func (h *Handler) GetRosterResult(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	rosterResult, err := h.repository.GetRosterResultByRosterPlanID(plan.ID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.successResponse(w, r, "该排班计划还没有排班结果", nil)
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "获取排班结果成功", rosterResult)
}
