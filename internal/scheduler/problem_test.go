package scheduler

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// newBridgeFixture 构造一份带两个班次的模板、四名助理和三条提交记录
// 其中 4 号助理没有提交空闲时间，3 号助理是黑心
func newBridgeFixture() (*domain.RosterTemplate, []*domain.User, []*domain.AvailabilitySubmission) {
	template := &domain.RosterTemplate{
		ID:   1,
		Name: "测试模板",
		Shifts: []domain.RosterTemplateShift{
			{ID: 10, StartTime: "08:00:00", EndTime: "12:00:00", RequiredAssistantNumber: 2, ApplicableDays: []int32{1, 2, 3, 4, 5}},
			{ID: 20, StartTime: "18:00:00", EndTime: "21:00:00", RequiredAssistantNumber: 1, ApplicableDays: []int32{1, 2, 3, 4, 5, 6, 7}},
		},
	}

	users := []*domain.User{
		{ID: 1, Username: "zhangsan", FullName: "张三", Role: domain.RoleNormalAssistant},
		{ID: 2, Username: "lisi", FullName: "李四", Role: domain.RoleNormalAssistant},
		{ID: 3, Username: "wangwu", FullName: "王五", Role: domain.RoleBlackCore},
		{ID: 4, Username: "zhaoliu", FullName: "赵六", Role: domain.RoleNormalAssistant},
	}

	submissions := []*domain.AvailabilitySubmission{
		{
			RosterPlanID: 1,
			UserID:       1,
			Items: []domain.AvailabilitySubmissionItem{
				{ShiftID: 10, Days: []int32{1, 2, 3, 4, 5}},
				{ShiftID: 20, Days: []int32{1, 2, 3}},
			},
		},
		{
			RosterPlanID: 1,
			UserID:       2,
			Items: []domain.AvailabilitySubmissionItem{
				{ShiftID: 10, Days: []int32{1, 2}},
				{ShiftID: 20, Days: []int32{}},
			},
		},
		{
			RosterPlanID: 1,
			UserID:       3,
			Items: []domain.AvailabilitySubmissionItem{
				{ShiftID: 10, Days: []int32{1, 2, 3, 4, 5}},
				{ShiftID: 20, Days: []int32{1, 2, 3, 4, 5, 6, 7}},
			},
		},
	}

	return template, users, submissions
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	// 2025-03-05 是周三，2025-03-09 是周日
	require.Equal(t, monday, WeekStart(time.Date(2025, 3, 5, 9, 30, 0, 0, time.UTC)))
	require.Equal(t, monday, WeekStart(time.Date(2025, 3, 9, 23, 59, 0, 0, time.UTC)))
	// 周一自身不再往前推
	require.Equal(t, monday, WeekStart(time.Date(2025, 3, 3, 14, 0, 0, 0, time.UTC)))
}

func TestBuildProblemValidation(t *testing.T) {
	template, users, submissions := newBridgeFixture()
	weekStart := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	_, err := BuildProblem(nil, users, submissions, weekStart)
	require.Error(t, err)

	_, err = BuildProblem(&domain.RosterTemplate{}, users, submissions, weekStart)
	require.Error(t, err)

	// 提交人数不足
	_, err = BuildProblem(template, users, submissions[:2], weekStart)
	require.Error(t, err)

	// 提交者不在助理列表中
	orphan := &domain.AvailabilitySubmission{UserID: 99, Items: []domain.AvailabilitySubmissionItem{{ShiftID: 10, Days: []int32{1}}}}
	_, err = BuildProblem(template, users, []*domain.AvailabilitySubmission{submissions[0], submissions[1], orphan}, weekStart)
	require.Error(t, err)

	// 提交中出现模板里不存在的班次
	badShift := &domain.AvailabilitySubmission{UserID: 3, Items: []domain.AvailabilitySubmissionItem{{ShiftID: 77, Days: []int32{1}}}}
	_, err = BuildProblem(template, users, []*domain.AvailabilitySubmission{submissions[0], submissions[1], badShift}, weekStart)
	require.Error(t, err)

	// 模板中的适用日期越界
	badTemplate := &domain.RosterTemplate{
		Shifts: []domain.RosterTemplateShift{
			{ID: 10, RequiredAssistantNumber: 1, ApplicableDays: []int32{8}},
		},
	}
	_, err = BuildProblem(badTemplate, users, submissions, weekStart)
	require.Error(t, err)
}

func TestBuildProblem(t *testing.T) {
	template, users, submissions := newBridgeFixture()
	weekStart := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	problem, err := BuildProblem(template, users, submissions, weekStart)
	require.NoError(t, err)

	require.Equal(t, rosterDays, problem.Period().Size())
	require.Equal(t, weekStart, problem.Period().Date(0))

	// 只有提交了空闲时间的三名助理参与排班
	employees := problem.Employees()
	require.Len(t, employees, 3)
	require.Equal(t, int64(1), employees[0].ID)
	require.Equal(t, "李四", employees[1].Name)

	// 普通助理和黑心使用不同的合同
	require.Equal(t, string(domain.RoleNormalAssistant), employees[0].Contract.Name)
	require.Equal(t, string(domain.RoleSeniorAssistant), employees[2].Contract.Name)
	require.Greater(t, employees[2].Contract.MaxAssignments, employees[0].Contract.MaxAssignments)

	// 需求矩阵按适用日期展开
	shifts := problem.Shifts()
	require.Len(t, shifts, 2)
	require.Equal(t, int64(10), shifts[0].ID)
	for day := 0; day < 5; day++ {
		require.Equal(t, 2, problem.Demand(shifts[0], day))
		require.Equal(t, 1, problem.Demand(shifts[1], day))
	}
	for day := 5; day < 7; day++ {
		require.Equal(t, 0, problem.Demand(shifts[0], day))
		require.Equal(t, 1, problem.Demand(shifts[1], day))
	}

	// 三个约束等级：结构、空闲时间、工作量
	require.Equal(t, 2, problem.MaxConstraintRankIndex())
	require.Len(t, problem.Constraints(0), 2)
	require.Len(t, problem.Constraints(1), 2)
	require.Len(t, problem.Constraints(2), 2)
}

func TestBuildProblemAvailabilityCosts(t *testing.T) {
	template, users, submissions := newBridgeFixture()
	weekStart := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	problem, err := BuildProblem(template, users, submissions, weekStart)
	require.NoError(t, err)

	shifts := problem.Shifts()

	// 李四只在周一周二的早班有空，把他排到周三的早班是休息日违反
	dayOffSolution := roster.NewSolution(problem)
	takeSlot(t, dayOffSolution, 2, 1, shifts[0])
	require.Equal(t, 1, dayOffSolution.Evaluation().Cost(availabilityRankIndex))

	// 张三周四有早班的空闲但没有晚班的空闲，排到晚班是班次回避违反
	shiftOffSolution := roster.NewSolution(problem)
	takeSlot(t, shiftOffSolution, 3, 0, shifts[1])
	require.Equal(t, 1, shiftOffSolution.Evaluation().Cost(availabilityRankIndex))

	// 王五什么时候都有空，排任何班次都没有违反
	freeSolution := roster.NewSolution(problem)
	takeSlot(t, freeSolution, 6, 2, shifts[1])
	require.Equal(t, 0, freeSolution.Evaluation().Cost(availabilityRankIndex))
}

// takeSlot 从待分配的班次中取出指定班次并分配给指定助理
func takeSlot(t *testing.T, s *roster.Solution, dayIndex, employeeIndex int, shift *roster.Shift) {
	t.Helper()

	for i := 0; i < s.UnassignedSlotCount(dayIndex); i++ {
		if s.UnassignedSlot(dayIndex, i) == shift {
			s.SetAssignment(dayIndex, employeeIndex, s.TakeUnassignedSlot(dayIndex, i))
			s.InvalidateEvaluation()
			return
		}
	}
	t.Fatalf("第 %d 天没有待分配的 %s", dayIndex, shift.Label)
}

func TestResultShifts(t *testing.T) {
	template, users, submissions := newBridgeFixture()
	weekStart := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	problem, err := BuildProblem(template, users, submissions, weekStart)
	require.NoError(t, err)

	solution := roster.NewSolution(problem)
	fillRandomly(t, solution, rand.New(rand.NewSource(7)))

	resultShifts := ResultShifts(solution)
	require.Len(t, resultShifts, 2)

	// 早班只在工作日有排班项，晚班每天都有
	require.Equal(t, int64(10), resultShifts[0].ShiftID)
	require.Len(t, resultShifts[0].Items, 5)
	require.Equal(t, int64(20), resultShifts[1].ShiftID)
	require.Len(t, resultShifts[1].Items, 7)

	for _, resultShift := range resultShifts {
		for _, item := range resultShift.Items {
			require.Nil(t, item.PrincipalID)
			for _, assistantID := range item.AssistantIDs {
				require.Contains(t, []int64{1, 2, 3}, assistantID)
			}
		}
	}

	// 完整填充后每个排班项的人数等于需求人数
	for _, item := range resultShifts[0].Items {
		require.Len(t, item.AssistantIDs, 2)
	}
	for _, item := range resultShifts[1].Items {
		require.Len(t, item.AssistantIDs, 1)
	}
}

func TestEvaluationRanks(t *testing.T) {
	template, users, submissions := newBridgeFixture()
	weekStart := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	problem, err := BuildProblem(template, users, submissions, weekStart)
	require.NoError(t, err)

	require.Nil(t, EvaluationRanks(problem, nil))

	ranks := EvaluationRanks(problem, roster.Evaluation{3, 2, 1})
	require.Len(t, ranks, 3)
	require.Equal(t, "班次需求覆盖、每日单班次", ranks[0].Label)
	require.Equal(t, 3, ranks[0].Cost)
	require.Equal(t, "休息日申请、班次回避申请", ranks[1].Label)
	require.Equal(t, 2, ranks[1].Cost)
	require.Equal(t, "班次总数上限、连续工作天数上限", ranks[2].Label)
	require.Equal(t, 1, ranks[2].Cost)
}

func TestSolvingTracePoints(t *testing.T) {
	records := []TraceRecord[roster.Evaluation]{
		{Elapsed: 1500 * time.Millisecond, Value: roster.Evaluation{4, 2}},
		{Elapsed: 3 * time.Second, Value: roster.Evaluation{1, 0}},
	}

	points := SolvingTracePoints(records)
	require.Len(t, points, 2)
	require.InDelta(t, 1.5, points[0].ElapsedSeconds, 1e-9)
	require.Equal(t, []int{4, 2}, points[0].Evaluation)
	require.InDelta(t, 3.0, points[1].ElapsedSeconds, 1e-9)
	require.Equal(t, []int{1, 0}, points[1].Evaluation)
}
