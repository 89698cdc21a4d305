package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

func TestIteratedLocalSearchValidation(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	rng := rand.New(rand.NewSource(10))

	_, err := NewIteratedLocalSearch(nil, 30, 0.1, 0.1, []int{1}, rng, FirstImproving, 5)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewIteratedLocalSearch(problem, 0, 0.1, 0.1, []int{1}, rng, FirstImproving, 5)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewIteratedLocalSearch(problem, 30, -1, 0.1, []int{1}, rng, FirstImproving, 5)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewIteratedLocalSearch(problem, 30, 0.1, -0.5, []int{1}, rng, FirstImproving, 5)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewIteratedLocalSearch(problem, 30, 0.1, 0.1, nil, rng, FirstImproving, 5)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewIteratedLocalSearch(problem, 30, 0.1, 0.1, []int{1}, rng, FirstImproving, -1)
	require.ErrorIs(t, err, ErrInvalidArgument)

	// 内置的轮换扰动至少需要三名助理
	_, err = NewIteratedLocalSearch(newTestProblem(t, 7, 2), 30, 0.1, 0.1, []int{1}, rng, FirstImproving, 5)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIteratedLocalSearchRunsToCompletion(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	search, err := NewIteratedLocalSearch(
		problem, 30, 0.1, 0.1, []int{1, 2, 3}, rand.New(rand.NewSource(11)), FirstImproving, 5)
	require.NoError(t, err)
	search.Init(nil)

	// 最优评估在整个搜索过程中单调不升
	var lastBest roster.Evaluation
	steps := 0
	for {
		more, err := search.NextStep()
		require.NoError(t, err)
		if best := search.BestFoundSolution(); best != nil {
			current := best.Evaluation().Clone()
			if lastBest != nil {
				require.LessOrEqual(t, current.Compare(lastBest), 0)
			}
			lastBest = current
		}
		if !more {
			break
		}
		steps++
		require.Less(t, steps, 1000000)
	}

	require.True(t, search.IsDone())
	require.Equal(t, 31, search.CurrentIteration())
	require.NotNil(t, search.LastAcceptedSolution())
	require.NotNil(t, search.CurrentSolution())

	best := search.BestFoundSolution()
	require.NotNil(t, best)
	// 构造、交换与轮换都保持覆盖完整，需求约束的代价应当为零
	requireCompleteCoverage(t, best)
	require.Equal(t, 0, best.Evaluation().Cost(0))
}

func TestIteratedLocalSearchInitWithSolution(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	search, err := NewIteratedLocalSearch(
		problem, 10, 0.1, 0.1, []int{1, 2}, rand.New(rand.NewSource(12)), FirstImproving, 5)
	require.NoError(t, err)

	// 完整的初始排班被原样接受为搜索起点
	initial := roster.NewSolution(problem)
	fillRandomly(t, initial, rand.New(rand.NewSource(12)))
	search.Init(initial)
	more, err := search.NextStep()
	require.NoError(t, err)
	require.True(t, more)
	require.Equal(t, 1, search.CurrentIteration())
	require.Same(t, initial, search.CurrentSolution())
	require.Same(t, initial, search.BestFoundSolution())
	require.NotSame(t, initial, search.LastAcceptedSolution())
	require.True(t, search.LastAcceptedSolution().EqualAssignments(initial))

	// 不完整的初始排班先经过贪心重建
	damaged := roster.NewSolution(problem)
	fillRandomly(t, damaged, rand.New(rand.NewSource(13)))
	for employee := 0; employee < 4; employee++ {
		if shift := damaged.Assignment(0, employee); shift != nil {
			damaged.SetAssignment(0, employee, nil)
			damaged.AddUnassignedSlot(0, shift)
			break
		}
	}
	damaged.InvalidateEvaluation()

	search.Init(damaged)
	_, err = search.NextStep()
	require.NoError(t, err)
	require.Same(t, damaged, search.CurrentSolution())
	requireCompleteCoverage(t, damaged)
}

func TestIteratedLocalSearchUpdateBestFoundSolution(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	search, err := NewIteratedLocalSearch(
		problem, 10, 0.1, 0.1, []int{1}, rand.New(rand.NewSource(14)), FirstImproving, 5)
	require.NoError(t, err)
	search.Init(nil)

	require.False(t, search.UpdateBestFoundSolution(nil))
	require.Nil(t, search.BestFoundSolution())

	first := roster.NewSolution(problem)
	first.SetEvaluation(roster.Evaluation{2, 5})
	require.True(t, search.UpdateBestFoundSolution(first))
	require.Same(t, first, search.BestFoundSolution())

	// 严格更优时替换记录，记录保存引用而非副本
	better := roster.NewSolution(problem)
	better.SetEvaluation(roster.Evaluation{2, 4})
	require.True(t, search.UpdateBestFoundSolution(better))
	require.Same(t, better, search.BestFoundSolution())

	worse := roster.NewSolution(problem)
	worse.SetEvaluation(roster.Evaluation{2, 6})
	require.False(t, search.UpdateBestFoundSolution(worse))
	require.Same(t, better, search.BestFoundSolution())
}
