package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

// newValidationTemplate 构造一份用于校验测试的模板，两个班次互不重叠
func newValidationTemplate() *domain.RosterTemplate {
	return &domain.RosterTemplate{
		ID:   1,
		Name: "校验测试模板",
		Shifts: []domain.RosterTemplateShift{
			{ID: 1, StartTime: "08:00:00", EndTime: "12:00:00", RequiredAssistantNumber: 2, ApplicableDays: []int32{1, 2, 3}},
			{ID: 2, StartTime: "18:00:00", EndTime: "21:00:00", RequiredAssistantNumber: 2, ApplicableDays: []int32{1}},
		},
	}
}

func int64Ptr(v int64) *int64 {
	return &v
}

func TestValidateRosterTemplateShiftTime(t *testing.T) {
	require.NoError(t, ValidateRosterTemplateShiftTime(newValidationTemplate()))

	// 两个班次首尾相接不算冲突
	adjacent := newValidationTemplate()
	adjacent.Shifts[1].StartTime = "12:00:00"
	adjacent.Shifts[1].EndTime = "18:00:00"
	require.NoError(t, ValidateRosterTemplateShiftTime(adjacent))

	tests := []struct {
		name   string
		mutate func(rt *domain.RosterTemplate)
	}{
		{"开始时间格式错误", func(rt *domain.RosterTemplate) { rt.Shifts[0].StartTime = "8:00" }},
		{"结束时间格式错误", func(rt *domain.RosterTemplate) { rt.Shifts[0].EndTime = "中午" }},
		{"结束时间早于开始时间", func(rt *domain.RosterTemplate) { rt.Shifts[0].EndTime = "07:00:00" }},
		{"班次时间重叠", func(rt *domain.RosterTemplate) { rt.Shifts[1].StartTime = "11:00:00" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := newValidationTemplate()
			tt.mutate(rt)
			require.Error(t, ValidateRosterTemplateShiftTime(rt))
		})
	}
}

func TestValidateRosterPlanTime(t *testing.T) {
	base := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	newPlan := func() *domain.RosterPlan {
		return &domain.RosterPlan{
			SubmissionStartTime: base,
			SubmissionEndTime:   base.AddDate(0, 0, 3),
			ActiveStartTime:     base.AddDate(0, 0, 7),
			ActiveEndTime:       base.AddDate(0, 0, 14),
		}
	}

	require.NoError(t, ValidateRosterPlanTime(newPlan()))

	tests := []struct {
		name   string
		mutate func(plan *domain.RosterPlan)
	}{
		{"提交开始时间晚于提交结束时间", func(plan *domain.RosterPlan) { plan.SubmissionStartTime = base.AddDate(0, 0, 4) }},
		{"生效开始时间晚于生效结束时间", func(plan *domain.RosterPlan) { plan.ActiveStartTime = base.AddDate(0, 0, 15) }},
		{"生效开始时间早于提交结束时间", func(plan *domain.RosterPlan) { plan.ActiveStartTime = base.AddDate(0, 0, 2) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := newPlan()
			tt.mutate(plan)
			require.Error(t, ValidateRosterPlanTime(plan))
		})
	}
}

func TestValidateSubmissionWithTemplate(t *testing.T) {
	template := newValidationTemplate()

	newSubmission := func() *domain.AvailabilitySubmission {
		return &domain.AvailabilitySubmission{
			UserID: 10,
			Items: []domain.AvailabilitySubmissionItem{
				{ShiftID: 1, Days: []int32{1, 3}},
				{ShiftID: 2, Days: []int32{1}},
			},
		}
	}

	require.NoError(t, ValidateSubmissionWithTemplate(newSubmission(), template))

	// 没有空闲时间的班次也必须提交一项，天数留空即可
	empty := newSubmission()
	empty.Items[1].Days = []int32{}
	require.NoError(t, ValidateSubmissionWithTemplate(empty, template))

	// 缺少班次
	missing := newSubmission()
	missing.Items = missing.Items[:1]
	require.Error(t, ValidateSubmissionWithTemplate(missing, template))

	// 模板中不存在的班次
	unknown := newSubmission()
	unknown.Items[0].ShiftID = 99
	require.Error(t, ValidateSubmissionWithTemplate(unknown, template))

	// 天数不在班次的适用日期内
	badDay := newSubmission()
	badDay.Items[1].Days = []int32{2}
	require.Error(t, ValidateSubmissionWithTemplate(badDay, template))
}

// newValidationResult 构造一份恰好覆盖模板全部适用日期的排班结果
func newValidationResult() *domain.RosterResult {
	return &domain.RosterResult{
		RosterPlanID: 1,
		Shifts: []domain.RosterResultShift{
			{ShiftID: 1, Items: []domain.RosterResultShiftItem{
				{Day: 1, AssistantIDs: []int64{10}},
				{Day: 2, AssistantIDs: []int64{11}},
				{Day: 3, AssistantIDs: []int64{10}},
			}},
			{ShiftID: 2, Items: []domain.RosterResultShiftItem{
				{Day: 1, PrincipalID: int64Ptr(10), AssistantIDs: []int64{11}},
			}},
		},
	}
}

func TestValidateRosterResultWithTemplate(t *testing.T) {
	template := newValidationTemplate()

	require.NoError(t, ValidateRosterResultWithTemplate(newValidationResult(), template))

	tests := []struct {
		name   string
		mutate func(result *domain.RosterResult)
	}{
		{"班次数量不匹配", func(result *domain.RosterResult) { result.Shifts = result.Shifts[:1] }},
		{"模板中不存在的班次", func(result *domain.RosterResult) { result.Shifts[1].ShiftID = 99 }},
		{"适用日期没有排班项", func(result *domain.RosterResult) { result.Shifts[0].Items = result.Shifts[0].Items[:2] }},
		{"排班项不在适用日期内", func(result *domain.RosterResult) {
			result.Shifts[1].Items = append(result.Shifts[1].Items, domain.RosterResultShiftItem{Day: 5, AssistantIDs: []int64{10}})
		}},
		{"助理人数超过需求", func(result *domain.RosterResult) {
			result.Shifts[0].Items[0].AssistantIDs = []int64{10, 11, 12}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newValidationResult()
			tt.mutate(result)
			require.Error(t, ValidateRosterResultWithTemplate(result, template))
		})
	}
}

func TestValidateRosterResultWithSubmissions(t *testing.T) {
	submissions := []*domain.AvailabilitySubmission{
		{UserID: 10, Items: []domain.AvailabilitySubmissionItem{
			{ShiftID: 1, Days: []int32{1, 3}},
			{ShiftID: 2, Days: []int32{1}},
		}},
		{UserID: 11, Items: []domain.AvailabilitySubmissionItem{
			{ShiftID: 1, Days: []int32{2}},
			{ShiftID: 2, Days: []int32{1}},
		}},
	}

	require.NoError(t, ValidateRosterResultWithSubmissions(newValidationResult(), submissions))

	// 没有提交空闲时间的负责人
	noPrincipal := newValidationResult()
	noPrincipal.Shifts[1].Items[0].PrincipalID = int64Ptr(99)
	require.Error(t, ValidateRosterResultWithSubmissions(noPrincipal, submissions))

	// 没有提交空闲时间的助理
	noAssistant := newValidationResult()
	noAssistant.Shifts[0].Items[0].AssistantIDs = []int64{99}
	require.Error(t, ValidateRosterResultWithSubmissions(noAssistant, submissions))

	// 助理在当天没有空闲时间
	unavailable := newValidationResult()
	unavailable.Shifts[0].Items[1].AssistantIDs = []int64{10}
	require.Error(t, ValidateRosterResultWithSubmissions(unavailable, submissions))
}

func TestValidIfExistsDuplicateAssistant(t *testing.T) {
	require.NoError(t, ValidIfExistsDuplicateAssistant(newValidationResult()))

	// 负责人同时出现在助理列表中
	duplicatePrincipal := newValidationResult()
	duplicatePrincipal.Shifts[1].Items[0].AssistantIDs = []int64{10}
	require.Error(t, ValidIfExistsDuplicateAssistant(duplicatePrincipal))

	// 助理列表内部重复
	duplicateAssistant := newValidationResult()
	duplicateAssistant.Shifts[0].Items[0].AssistantIDs = []int64{11, 11}
	require.Error(t, ValidIfExistsDuplicateAssistant(duplicateAssistant))
}
