package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

func TestFastBlockConstructionCoversAllDemand(t *testing.T) {
	problem := newSearchProblem(t, 14, 5)

	construction, err := NewFastBlockConstruction(problem, rand.New(rand.NewSource(10)))
	require.NoError(t, err)
	require.Nil(t, construction.Result())

	result, err := RunOperator(construction)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, construction.IsDone())
	requireCompleteCoverage(t, result)

	// 覆盖完整时最高等级代价为 0
	require.Zero(t, result.Evaluation().Cost(0))
}

func TestFastBlockConstructionFailsWhenUnderstaffed(t *testing.T) {
	// 每天需要 2 个班次却只有 1 名助理
	problem := newTestProblem(t, 3, 1)

	construction, err := NewFastBlockConstruction(problem, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	_, err = RunOperator(construction)
	require.ErrorIs(t, err, ErrNoFeasibleSolution)
}

func TestGreedyConstructionAvoidsContractViolations(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	problem.Employees()[0].Contract.MaxAssignments = 4
	problem.AddConstraint(roster.NewShiftCoverageConstraint())
	maxAssignments, err := roster.NewMaxAssignmentsConstraint(1)
	require.NoError(t, err)
	problem.AddConstraint(maxAssignments)

	construction, err := NewGreedyConstruction(problem, rand.New(rand.NewSource(12)))
	require.NoError(t, err)
	result, err := RunOperator(construction)
	require.NoError(t, err)
	require.NotNil(t, result)
	requireCompleteCoverage(t, result)

	// 总班次 14，上限 4 的四名助理足够，贪心不应产生超限
	require.True(t, result.Evaluation().Equal(roster.Evaluation{0, 0}))
}

func TestGreedyConstructionRebuildsDamagedRoster(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	construction, err := NewGreedyConstruction(problem, rand.New(rand.NewSource(13)))
	require.NoError(t, err)
	complete, err := RunOperator(construction)
	require.NoError(t, err)
	requireCompleteCoverage(t, complete)

	// 挖掉几个已分配的格子，再补上一个多余的分配
	damaged := complete.Clone()
	removed := 0
	for day := 0; day < 7 && removed < 3; day++ {
		for employee := 0; employee < 4; employee++ {
			if damaged.Assignment(day, employee) != nil {
				damaged.SetAssignment(day, employee, nil)
				removed++
				break
			}
		}
	}
	require.Equal(t, 3, removed)
	for employee := 0; employee < 4; employee++ {
		if damaged.Assignment(6, employee) == nil {
			damaged.SetAssignment(6, employee, problem.Shifts()[0])
			break
		}
	}
	damaged.InvalidateEvaluation()

	rebuilt, err := RunOperator(construction, damaged)
	require.NoError(t, err)
	require.Same(t, damaged, rebuilt)
	requireCompleteCoverage(t, rebuilt)
}

func TestMultistartGreedyConstruction(t *testing.T) {
	_, err := NewMultistartGreedyConstruction(newSearchProblem(t, 7, 4), rand.New(rand.NewSource(14)), 0)
	require.ErrorIs(t, err, ErrInvalidArgument)

	problem := newSearchProblem(t, 7, 4)
	construction, err := NewMultistartGreedyConstruction(problem, rand.New(rand.NewSource(14)), 3)
	require.NoError(t, err)

	result, err := RunOperator(construction)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, construction.IsDone())
	requireCompleteCoverage(t, result)

	// 多起点构造保留的排班不差于重跑一轮贪心的结果
	single, err := NewGreedyConstruction(problem, rand.New(rand.NewSource(14)))
	require.NoError(t, err)
	baseline, err := RunOperator(single)
	require.NoError(t, err)
	require.LessOrEqual(t, result.Evaluation().Compare(baseline.Evaluation()), 0)
}

func TestConstructionWithProgressiveDescent(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	construction, err := NewConstructionWithProgressiveDescent(problem, rand.New(rand.NewSource(15)))
	require.NoError(t, err)

	_, err = construction.NextStep()
	require.ErrorIs(t, err, ErrNotInitialized)

	result, err := RunOperator(construction)
	require.NoError(t, err)
	require.NotNil(t, result)
	require.True(t, construction.IsDone())
	requireCompleteCoverage(t, result)
	require.Zero(t, result.Evaluation().Cost(0))
}
