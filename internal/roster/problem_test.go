package roster

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// newTestProblem 构造一个两个班次的测试问题，每个班次每天需求 1 人
func newTestProblem(t *testing.T, days, employeeCount int) *Problem {
	t.Helper()

	period, err := NewSchedulingPeriod(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), days)
	require.NoError(t, err)

	contract := &Contract{Name: "默认合同", MaxAssignments: days, MaxConsecutiveWorkDays: days}
	employees := make([]*Employee, employeeCount)
	for i := range employees {
		employees[i] = &Employee{ID: int64(i + 1), Name: fmt.Sprintf("助理%d", i+1), Contract: contract}
	}

	shifts := []*Shift{
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

	problem, err := NewProblem(period, employees, shifts, demand)
	require.NoError(t, err)
	return problem
}

// fillRandomly 随机地把所有待分配的班次分配给当天空闲的助理
func fillRandomly(t *testing.T, s *Solution, rng *rand.Rand) {
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

func TestNewProblemValidation(t *testing.T) {
	period, err := NewSchedulingPeriod(time.Now(), 7)
	require.NoError(t, err)

	contract := &Contract{Name: "默认合同", MaxAssignments: 7, MaxConsecutiveWorkDays: 7}
	employees := []*Employee{{ID: 1, Name: "助理1", Contract: contract}}
	shifts := []*Shift{{ID: 1, Label: "早班"}}
	demand := [][]int{{1, 1, 1, 1, 1, 1, 1}}

	_, err = NewProblem(nil, employees, shifts, demand)
	require.Error(t, err)

	_, err = NewProblem(period, nil, shifts, demand)
	require.Error(t, err)

	_, err = NewProblem(period, employees, nil, demand)
	require.Error(t, err)

	_, err = NewProblem(period, employees, shifts, [][]int{{1, 1}})
	require.Error(t, err)

	_, err = NewProblem(period, employees, shifts, [][]int{{1, 1, 1, -1, 1, 1, 1}})
	require.Error(t, err)

	problem, err := NewProblem(period, employees, shifts, demand)
	require.NoError(t, err)
	require.Equal(t, 7, problem.Period().Size())
	require.Len(t, problem.Contracts(), 1)
}

func TestProblemConstraintRanks(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	require.Equal(t, -1, problem.MaxConstraintRankIndex())

	problem.AddConstraint(NewShiftCoverageConstraint())
	maxAssignments, err := NewMaxAssignmentsConstraint(2)
	require.NoError(t, err)
	problem.AddConstraint(maxAssignments)

	require.Equal(t, 2, problem.MaxConstraintRankIndex())
	require.Len(t, problem.Constraints(0), 1)
	require.Empty(t, problem.Constraints(1))
	require.Len(t, problem.Constraints(2), 1)
	require.Nil(t, problem.Constraints(3))
}

func TestSchedulingPeriod(t *testing.T) {
	_, err := NewSchedulingPeriod(time.Now(), 0)
	require.Error(t, err)

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	period, err := NewSchedulingPeriod(start, 14)
	require.NoError(t, err)
	require.Equal(t, 14, period.Size())
	require.Equal(t, start.AddDate(0, 0, 13), period.Date(13))
	require.Equal(t, time.Monday, period.DayOfWeek(0))
	require.Equal(t, time.Sunday, period.DayOfWeek(6))
}
