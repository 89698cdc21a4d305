package scheduler

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// newTestProblem 构造一个两个班次的测试问题，每个班次每天需求 1 人
func newTestProblem(t *testing.T, days, employeeCount int) *roster.Problem {
	t.Helper()

	period, err := roster.NewSchedulingPeriod(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), days)
	require.NoError(t, err)

	contract := &roster.Contract{Name: "默认合同", MaxAssignments: days, MaxConsecutiveWorkDays: days}
	employees := make([]*roster.Employee, employeeCount)
	for i := range employees {
		employees[i] = &roster.Employee{ID: int64(i + 1), Name: fmt.Sprintf("助理%d", i+1), Contract: contract}
	}

	shifts := []*roster.Shift{
		{ID: 1, Label: "早班", StartTime: "08:00", EndTime: "16:00"},
		{ID: 2, Label: "晚班", StartTime: "16:00", EndTime: "24:00"},
	}

	demand := make([][]int, len(shifts))
	for s := range demand {
		demand[s] = make([]int, days)
		for d := range demand[s] {
			demand[s][d] = 1
		}
	}

	problem, err := roster.NewProblem(period, employees, shifts, demand)
	require.NoError(t, err)
	return problem
}

// newSearchProblem 在测试问题上加上覆盖与合同约束
// 合同上限收紧到刚好高于人均班次数，让搜索过程有改善空间
func newSearchProblem(t *testing.T, days, employeeCount int) *roster.Problem {
	t.Helper()

	problem := newTestProblem(t, days, employeeCount)
	contract := problem.Employees()[0].Contract
	contract.MaxAssignments = 2*days/employeeCount + 1
	contract.MaxConsecutiveWorkDays = 3

	problem.AddConstraint(roster.NewShiftCoverageConstraint())
	problem.AddConstraint(roster.NewSingleAssignmentPerDayConstraint())
	maxAssignments, err := roster.NewMaxAssignmentsConstraint(1)
	require.NoError(t, err)
	problem.AddConstraint(maxAssignments)
	maxConsecutive, err := roster.NewMaxConsecutiveWorkDaysConstraint(1)
	require.NoError(t, err)
	problem.AddConstraint(maxConsecutive)
	return problem
}

// fillRandomly 随机地把所有待分配的班次分配给当天空闲的助理
func fillRandomly(t *testing.T, s *roster.Solution, rng *rand.Rand) {
	t.Helper()

	days := s.Problem().Period().Size()
	employees := len(s.Problem().Employees())
	for day := 0; day < days; day++ {
		for s.UnassignedSlotCount(day) > 0 {
			employee := rng.Intn(employees)
			for s.Assignment(day, employee) != nil {
				employee = (employee + 1) % employees
			}
			s.SetAssignment(day, employee, s.TakeUnassignedSlot(day, 0))
		}
	}
	s.InvalidateEvaluation()
}

// requireCompleteCoverage 断言每天每个班次的分配数量等于需求数量且没有剩余待分配
func requireCompleteCoverage(t *testing.T, s *roster.Solution) {
	t.Helper()

	problem := s.Problem()
	days := problem.Period().Size()
	for day := 0; day < days; day++ {
		require.Zero(t, s.UnassignedSlotCount(day))
		for _, shift := range problem.Shifts() {
			assigned := 0
			for employee := range problem.Employees() {
				if s.Assignment(day, employee) == shift {
					assigned++
				}
			}
			require.Equal(t, problem.Demand(shift, day), assigned)
		}
	}
}
