package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

func TestVariableNeighborhoodDescentValidation(t *testing.T) {
	_, err := NewVariableNeighborhoodDescent(nil, FirstImproving, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewVariableNeighborhoodDescent([]int{1, 0}, FirstImproving, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	vnd, err := NewVariableNeighborhoodDescent([]int{1}, FirstImproving, nil)
	require.NoError(t, err)
	_, err = vnd.NextStep()
	require.ErrorIs(t, err, ErrNotInitialized)
	require.ErrorIs(t, vnd.Init(nil), ErrInvalidArgument)
}

func TestVariableNeighborhoodDescentReachesLocalOptimum(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	solution := roster.NewSolution(problem)
	fillRandomly(t, solution, rand.New(rand.NewSource(7)))
	initial := solution.Evaluation().Clone()

	blockSizes := []int{1, 2, 3}
	vnd, err := NewVariableNeighborhoodDescent(blockSizes, FirstImproving, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	require.NoError(t, vnd.Init(solution))

	previous := initial.Clone()
	steps := 0
	for {
		more, err := vnd.NextStep()
		require.NoError(t, err)
		// 下降过程中评估单调不升
		require.LessOrEqual(t, solution.Evaluation().Compare(previous), 0)
		previous = solution.Evaluation().Clone()
		if !more {
			break
		}
		steps++
		require.Less(t, steps, 100000)
	}
	require.True(t, vnd.IsDone())
	require.LessOrEqual(t, solution.Evaluation().Compare(initial), 0)

	// 结束后每一层邻域都不存在改善移动
	for _, blockSize := range blockSizes {
		neighborhood, err := NewSwapNeighborhood(solution, blockSize, true, nil)
		require.NoError(t, err)
		require.Nil(t, neighborhood.NextNeighborEvaluation())
	}

	// 结束后的步进不再改变排班
	final := solution.Evaluation().Clone()
	more, err := vnd.NextStep()
	require.NoError(t, err)
	require.False(t, more)
	require.True(t, solution.Evaluation().Equal(final))
}

func TestVariableNeighborhoodDescentBestImproving(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	solution := roster.NewSolution(problem)
	fillRandomly(t, solution, rand.New(rand.NewSource(8)))
	initial := solution.Evaluation().Clone()

	vnd, err := NewVariableNeighborhoodDescent([]int{1, 2}, BestImproving, rand.New(rand.NewSource(8)))
	require.NoError(t, err)
	require.NoError(t, vnd.Init(solution))

	steps := 0
	for {
		more, err := vnd.NextStep()
		require.NoError(t, err)
		if !more {
			break
		}
		steps++
		require.Less(t, steps, 100000)
	}
	require.True(t, vnd.IsDone())
	require.LessOrEqual(t, solution.Evaluation().Compare(initial), 0)
}
