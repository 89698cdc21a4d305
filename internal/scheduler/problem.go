package scheduler

import (
	"fmt"
	"strings"
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// 排班以周为单位，模板中的适用日期 1~7 对应周一~周日
const rosterDays = 7

// 约束等级，0 为最高，求解时优先满足
const (
	availabilityRankIndex = 1 // 助理提交的空闲时间
	contractRankIndex     = 2 // 工作量规则
)

// 不同角色的工作量规则
// 资深助理和黑心通常承担更多班次，因此上限略高
var (
	normalAssistantContract = &roster.Contract{
		Name:                   string(domain.RoleNormalAssistant),
		MaxAssignments:         5,
		MaxConsecutiveWorkDays: 5,
	}
	seniorAssistantContract = &roster.Contract{
		Name:                   string(domain.RoleSeniorAssistant),
		MaxAssignments:         6,
		MaxConsecutiveWorkDays: 6,
	}
)

// WeekStart 返回生效开始时间所在周的周一
func WeekStart(activeStartTime time.Time) time.Time {
	day := time.Date(activeStartTime.Year(), activeStartTime.Month(), activeStartTime.Day(), 0, 0, 0, 0, activeStartTime.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Weekday 以周日为 0，周一为一周的第一天
	return day.AddDate(0, 0, -offset)
}

// BuildProblem 把排班模板、助理和空闲时间提交转换为一次排班求解的输入
// 注意只有提交了空闲时间的助理才会参与排班
// 某个助理在某一天没有提交任何可用班次时视为休息日申请，
// 只提交了部分班次时，未提交的班次视为班次回避申请
func BuildProblem(template *domain.RosterTemplate, users []*domain.User, submissions []*domain.AvailabilitySubmission, weekStart time.Time) (*roster.Problem, error) {
	if template == nil || len(template.Shifts) == 0 {
		return nil, fmt.Errorf("排班模板中没有任何班次")
	}
	if len(submissions) < 3 {
		return nil, fmt.Errorf("提交了空闲时间的助理少于 3 人，无法进行自动排班")
	}

	period, err := roster.NewSchedulingPeriod(weekStart, rosterDays)
	if err != nil {
		return nil, err
	}

	// 班次沿用模板班次的 ID，方便把求解结果写回排班结果
	shifts := make([]*roster.Shift, 0, len(template.Shifts))
	demand := make([][]int, 0, len(template.Shifts))
	shiftIndexByID := make(map[int64]int, len(template.Shifts))

	for _, templateShift := range template.Shifts {
		shift := &roster.Shift{
			ID:        templateShift.ID,
			Label:     templateShift.StartTime + "-" + templateShift.EndTime,
			StartTime: templateShift.StartTime,
			EndTime:   templateShift.EndTime,
		}

		days := make([]int, rosterDays)
		for _, day := range templateShift.ApplicableDays {
			if day < 1 || day > rosterDays {
				return nil, fmt.Errorf("班次 %d 的适用日期 %d 非法", templateShift.ID, day)
			}
			days[day-1] = int(templateShift.RequiredAssistantNumber)
		}

		shiftIndexByID[shift.ID] = len(shifts)
		shifts = append(shifts, shift)
		demand = append(demand, days)
	}

	// 只有提交了空闲时间的助理才会参与排班
	employees := make([]*roster.Employee, 0, len(submissions))
	for _, submission := range submissions {
		var user *domain.User = nil
		for _, u := range users {
			if u.ID == submission.UserID {
				user = u
				break
			}
		}

		if user == nil {
			return nil, fmt.Errorf("用户 %d 不在传入的 users 数组中", submission.UserID)
		}

		contract := normalAssistantContract
		if isSeniorOrBlackCore(user) {
			contract = seniorAssistantContract
		}

		employees = append(employees, &roster.Employee{
			ID:       user.ID,
			Name:     user.FullName,
			Contract: contract,
		})
	}

	problem, err := roster.NewProblem(period, employees, shifts, demand)
	if err != nil {
		return nil, err
	}

	problem.AddConstraint(roster.NewShiftCoverageConstraint())
	problem.AddConstraint(roster.NewSingleAssignmentPerDayConstraint())

	// 把空闲时间提交转换为请求型约束
	dayOffRequests := make([][]bool, rosterDays)     // [日][助理]
	shiftOffRequests := make([][][]bool, rosterDays) // [日][助理][班次]
	for day := 0; day < rosterDays; day++ {
		dayOffRequests[day] = make([]bool, len(employees))
		shiftOffRequests[day] = make([][]bool, len(employees))
		for e := range employees {
			shiftOffRequests[day][e] = make([]bool, len(shifts))
		}
	}

	for e, submission := range submissions {
		available := make([][]bool, rosterDays) // [日][班次]
		for day := range available {
			available[day] = make([]bool, len(shifts))
		}

		for _, item := range submission.Items {
			shiftIndex, exists := shiftIndexByID[item.ShiftID]
			if !exists {
				return nil, fmt.Errorf("提交记录中的班次 %d 不存在于排班模板中", item.ShiftID)
			}
			for _, day := range item.Days {
				if day < 1 || day > rosterDays {
					return nil, fmt.Errorf("提交记录中的日期 %d 非法", day)
				}
				available[day-1][shiftIndex] = true
			}
		}

		for day := 0; day < rosterDays; day++ {
			anyAvailable := false
			for shiftIndex := range shifts {
				if available[day][shiftIndex] {
					anyAvailable = true
					break
				}
			}

			if !anyAvailable {
				// 这一天一个班次都没有提交，视为休息日
				dayOffRequests[day][e] = true
				continue
			}

			for shiftIndex := range shifts {
				if !available[day][shiftIndex] {
					shiftOffRequests[day][e][shiftIndex] = true
				}
			}
		}
	}

	dayOffConstraint, err := roster.NewDayOffRequestConstraint(availabilityRankIndex, dayOffRequests)
	if err != nil {
		return nil, err
	}
	problem.AddConstraint(dayOffConstraint)

	shiftOffConstraint, err := roster.NewShiftOffRequestConstraint(availabilityRankIndex, shiftOffRequests)
	if err != nil {
		return nil, err
	}
	problem.AddConstraint(shiftOffConstraint)

	maxAssignmentsConstraint, err := roster.NewMaxAssignmentsConstraint(contractRankIndex)
	if err != nil {
		return nil, err
	}
	problem.AddConstraint(maxAssignmentsConstraint)

	maxConsecutiveConstraint, err := roster.NewMaxConsecutiveWorkDaysConstraint(contractRankIndex)
	if err != nil {
		return nil, err
	}
	problem.AddConstraint(maxConsecutiveConstraint)

	return problem, nil
}

// ResultShifts 把求解得到的排班转换为排班结果中的班次列表
// 自动排班不指定负责人，PrincipalID 保持为空
func ResultShifts(solution *roster.Solution) []domain.RosterResultShift {
	problem := solution.Problem()
	employees := problem.Employees()

	resultShifts := make([]domain.RosterResultShift, 0, len(problem.Shifts()))
	for _, shift := range problem.Shifts() {
		resultShift := domain.RosterResultShift{
			ShiftID: shift.ID,
			Items:   make([]domain.RosterResultShiftItem, 0, rosterDays),
		}

		for day := 0; day < problem.Period().Size(); day++ {
			if problem.Demand(shift, day) == 0 {
				// 模板中这一天不适用该班次
				continue
			}

			item := domain.RosterResultShiftItem{
				Day:          int32(day + 1),
				PrincipalID:  nil,
				AssistantIDs: make([]int64, 0),
			}

			for e, employee := range employees {
				assignment := solution.Assignment(day, e)
				if assignment != nil && assignment.ID == shift.ID {
					item.AssistantIDs = append(item.AssistantIDs, employee.ID)
				}
			}

			resultShift.Items = append(resultShift.Items, item)
		}

		resultShifts = append(resultShifts, resultShift)
	}

	return resultShifts
}

// EvaluationRanks 把代价向量和各等级的约束名称组装成排班结果中的评价信息
func EvaluationRanks(problem *roster.Problem, evaluation roster.Evaluation) []domain.RosterEvaluationRank {
	if evaluation == nil {
		return nil
	}

	ranks := make([]domain.RosterEvaluationRank, 0, len(evaluation))
	for rankIndex := range evaluation {
		names := make([]string, 0)
		for _, constraint := range problem.Constraints(rankIndex) {
			names = append(names, constraint.Name())
		}

		ranks = append(ranks, domain.RosterEvaluationRank{
			Label: strings.Join(names, "、"),
			Cost:  evaluation.Cost(rankIndex),
		})
	}

	return ranks
}

// SolvingTracePoints 把求解轨迹转换为可以持久化的形式
func SolvingTracePoints(records []TraceRecord[roster.Evaluation]) []domain.RosterSolvingTracePoint {
	points := make([]domain.RosterSolvingTracePoint, 0, len(records))
	for _, record := range records {
		points = append(points, domain.RosterSolvingTracePoint{
			ElapsedSeconds: record.ElapsedSeconds(),
			Evaluation:     record.Value,
		})
	}
	return points
}
