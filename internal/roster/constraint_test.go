package roster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShiftCoverageConstraint(t *testing.T) {
	problem := newTestProblem(t, 3, 4)
	constraint := NewShiftCoverageConstraint()
	evaluator := constraint.Evaluator(problem)

	solution := NewSolution(problem)
	require.Equal(t, 6, evaluator.Cost(solution))

	solution.SetAssignment(0, 0, solution.TakeUnassignedSlot(0, 0))
	require.Equal(t, 5, evaluator.Cost(solution))

	// 交换只在助理之间转移班次，不影响覆盖
	move, err := NewSwapMove(0, 1, 0, 2)
	require.NoError(t, err)
	require.Zero(t, evaluator.SwapMoveCostDifference(solution, move))

	violations := evaluator.Violations(solution)
	require.Len(t, violations, 3)
	require.Equal(t, 0, violations[0].RankIndex)
}

func TestSingleAssignmentPerDayConstraint(t *testing.T) {
	problem := newTestProblem(t, 3, 4)
	constraint := NewSingleAssignmentPerDayConstraint()
	evaluator := constraint.Evaluator(problem)

	solution := NewSolution(problem)
	require.Zero(t, evaluator.Cost(solution))
	require.Empty(t, evaluator.Violations(solution))
}

func TestMaxAssignmentsConstraint(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	shift := problem.Shifts()[0]

	// 测试合同上限为 4
	problem.Employees()[0].Contract = &Contract{Name: "紧合同", MaxAssignments: 4, MaxConsecutiveWorkDays: 7}

	constraint, err := NewMaxAssignmentsConstraint(0)
	require.NoError(t, err)
	evaluator := constraint.Evaluator(problem)

	solution := NewSolution(problem)
	for day := 0; day < 5; day++ {
		solution.SetAssignment(day, 0, shift)
	}
	require.Equal(t, 1, evaluator.Cost(solution))
	require.Equal(t, 2, evaluator.EstimatedAssignmentCost(solution, 0, shift, 5))

	violations := evaluator.Violations(solution)
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Description, "助理1")

	// 把超限助理的一个班次换给空闲助理
	move, err := NewSwapMove(0, 1, 0, 1)
	require.NoError(t, err)
	require.Equal(t, -1, evaluator.SwapMoveCostDifference(solution, move))

	satisfied, unsatisfied := evaluator.ConstraintSatisfactionDifference(solution, move)
	require.Equal(t, 1, satisfied)
	require.Zero(t, unsatisfied)
}

func TestMaxConsecutiveWorkDaysConstraint(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	shift := problem.Shifts()[0]

	problem.Employees()[0].Contract = &Contract{Name: "紧合同", MaxAssignments: 7, MaxConsecutiveWorkDays: 2}

	constraint, err := NewMaxConsecutiveWorkDaysConstraint(0)
	require.NoError(t, err)
	evaluator := constraint.Evaluator(problem)

	solution := NewSolution(problem)
	for day := 0; day < 4; day++ {
		solution.SetAssignment(day, 0, shift)
	}
	solution.SetAssignment(5, 0, shift)
	solution.SetAssignment(6, 0, shift)

	// 连续 4 天超出 2 天，连续 2 天不超
	require.Equal(t, 2, evaluator.Cost(solution))

	violations := evaluator.Violations(solution)
	require.Len(t, violations, 1)

	// 在第 5 天补班会把两段连起来形成 7 天
	require.Equal(t, 5, evaluator.EstimatedAssignmentCost(solution, 0, shift, 4))
}

func TestDayOffRequestConstraint(t *testing.T) {
	problem := newTestProblem(t, 3, 4)
	shift := problem.Shifts()[0]

	requests := [][]bool{
		{false, false, false, false},
		{false, true, false, false},
		{false, true, false, false},
	}
	constraint, err := NewDayOffRequestConstraint(0, requests)
	require.NoError(t, err)
	evaluator := constraint.Evaluator(problem)

	solution := NewSolution(problem)
	require.Zero(t, evaluator.Cost(solution))

	solution.SetAssignment(1, 1, shift)
	require.Equal(t, 1, evaluator.Cost(solution))
	require.Equal(t, 1, evaluator.EstimatedAssignmentCost(solution, 1, shift, 2))
	require.Zero(t, evaluator.EstimatedAssignmentCost(solution, 0, shift, 2))

	require.True(t, evaluator.HasUnwantedAssignment(1, 1))
	require.False(t, evaluator.HasUnwantedAssignment(0, 1))
	require.False(t, evaluator.IsPreferredAssignment(1, 1, shift))
	require.True(t, evaluator.IsPreferredAssignment(0, 1, shift))

	violations := evaluator.Violations(solution)
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Description, "第 2 天")
}

func TestShiftOffRequestConstraint(t *testing.T) {
	problem := newTestProblem(t, 2, 4)
	early, late := problem.Shifts()[0], problem.Shifts()[1]

	requests := [][][]bool{
		{{true, false}, {false, false}, {false, false}, {false, false}},
		{{false, false}, {false, false}, {false, false}, {false, false}},
	}
	constraint, err := NewShiftOffRequestConstraint(0, requests)
	require.NoError(t, err)
	evaluator := constraint.Evaluator(problem)

	solution := NewSolution(problem)
	solution.SetAssignment(0, 0, late)
	require.Zero(t, evaluator.Cost(solution))

	solution.SetAssignment(0, 0, early)
	require.Equal(t, 1, evaluator.Cost(solution))
	require.Equal(t, 1, evaluator.EstimatedAssignmentCost(solution, 0, early, 0))
	require.Zero(t, evaluator.EstimatedAssignmentCost(solution, 0, late, 0))

	require.True(t, evaluator.HasUnwantedAssignment(0, 0))
	require.False(t, evaluator.HasUnwantedAssignment(1, 0))
	require.False(t, evaluator.IsPreferredAssignment(0, 0, early))
	require.True(t, evaluator.IsPreferredAssignment(0, 0, late))

	violations := evaluator.Violations(solution)
	require.Len(t, violations, 1)
	require.Contains(t, violations[0].Description, "早班")
}
