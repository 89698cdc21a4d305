package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

func TestSwapNeighborhoodValidation(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	solution := roster.NewSolution(problem)

	_, err := NewSwapNeighborhood(nil, 1, false, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSwapNeighborhood(solution, 0, false, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSwapNeighborhoodEnumerationCount(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	solution := roster.NewSolution(problem)
	fillRandomly(t, solution, rand.New(rand.NewSource(1)))

	// 起始日 7-2+1 种，助理组合 4*3/2 种
	neighborhood, err := NewSwapNeighborhood(solution, 2, false, nil)
	require.NoError(t, err)

	count := 0
	for neighborhood.NextNeighborEvaluation() != nil {
		count++
	}
	require.Equal(t, 6*6, count)

	// 耗尽后继续探索仍然返回 nil，也没有可用的邻居
	require.Nil(t, neighborhood.NextNeighborEvaluation())
	_, err = neighborhood.LastEvaluatedNeighbor()
	require.ErrorIs(t, err, ErrNoSuchNeighbor)
	require.ErrorIs(t, neighborhood.MoveToLastEvaluatedNeighbor(), ErrNoSuchNeighbor)

	// 重新开始探索后邻居数量不变
	neighborhood.ResetExploration()
	count = 0
	for neighborhood.NextNeighborEvaluation() != nil {
		count++
	}
	require.Equal(t, 36, count)
}

func TestSwapNeighborhoodDeltaMatchesFullEvaluation(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	solution := roster.NewSolution(problem)
	fillRandomly(t, solution, rand.New(rand.NewSource(2)))

	for _, blockSize := range []int{1, 3} {
		neighborhood, err := NewSwapNeighborhood(solution.Clone(), blockSize, false, nil)
		require.NoError(t, err)

		for evaluation := neighborhood.NextNeighborEvaluation(); evaluation != nil; evaluation = neighborhood.NextNeighborEvaluation() {
			neighbor, err := neighborhood.LastEvaluatedNeighbor()
			require.NoError(t, err)
			neighbor.InvalidateEvaluation()
			require.True(t, evaluation.Equal(neighbor.Evaluation()),
				"块大小 %d 的增量评估 %v 与全量评估 %v 不一致", blockSize, evaluation, neighbor.Evaluation())
		}
	}
}

func TestSwapNeighborhoodOnlyImproving(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	solution := roster.NewSolution(problem)
	fillRandomly(t, solution, rand.New(rand.NewSource(3)))
	initial := solution.Evaluation().Clone()

	neighborhood, err := NewSwapNeighborhood(solution, 1, true, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	steps := 0
	for {
		evaluation := neighborhood.NextNeighborEvaluation()
		if evaluation == nil {
			break
		}
		// 只考虑改善移动时返回的邻居都严格优于起点
		require.Negative(t, evaluation.Compare(solution.Evaluation()))
		require.NoError(t, neighborhood.MoveToLastEvaluatedNeighbor())
		steps++
		require.Less(t, steps, 10000)
	}

	require.LessOrEqual(t, solution.Evaluation().Compare(initial), 0)

	// 探索耗尽后起点是块大小 1 邻域下的局部最优
	checked, err := NewSwapNeighborhood(solution, 1, true, nil)
	require.NoError(t, err)
	require.Nil(t, checked.NextNeighborEvaluation())
}

func TestSwapNeighborhoodBestNeighbor(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	solution := roster.NewSolution(problem)
	fillRandomly(t, solution, rand.New(rand.NewSource(4)))

	// 先全量枚举求出邻域中的最优评估
	enumerator, err := NewSwapNeighborhood(solution.Clone(), 2, false, nil)
	require.NoError(t, err)
	var manualBest roster.Evaluation
	for evaluation := enumerator.NextNeighborEvaluation(); evaluation != nil; evaluation = enumerator.NextNeighborEvaluation() {
		if manualBest == nil || evaluation.Compare(manualBest) < 0 {
			manualBest = evaluation.Clone()
		}
	}
	require.NotNil(t, manualBest)

	neighborhood, err := NewSwapNeighborhood(solution, 2, false, rand.New(rand.NewSource(4)))
	require.NoError(t, err)
	best := neighborhood.BestNeighborEvaluation()
	require.NotNil(t, best)
	require.Zero(t, best.Compare(manualBest))

	// BestNeighbor 返回副本，不修改起点
	before := solution.Evaluation().Clone()
	neighbor := neighborhood.BestNeighbor()
	require.NotNil(t, neighbor)
	require.True(t, neighbor.Evaluation().Equal(manualBest))
	require.True(t, solution.Evaluation().Equal(before))

	// MoveToBestNeighbor 把起点移动到最优邻居
	require.True(t, neighborhood.MoveToBestNeighbor())
	require.True(t, solution.Evaluation().Equal(manualBest))
}

func TestSwapConstraintSatisfactionNeighborhood(t *testing.T) {
	problem := newTestProblem(t, 3, 4)
	// 助理2 希望第 2 天与第 3 天休息
	requests := [][]bool{
		{false, false, false, false},
		{false, true, false, false},
		{false, true, false, false},
	}
	dayOff, err := roster.NewDayOffRequestConstraint(0, requests)
	require.NoError(t, err)
	problem.AddConstraint(dayOff)

	solution := roster.NewSolution(problem)
	solution.SetAssignment(1, 1, solution.TakeUnassignedSlot(1, 0))
	solution.InvalidateEvaluation()

	neighborhood, err := NewSwapConstraintSatisfactionNeighborhood(solution, 1, nil, nil)
	require.NoError(t, err)

	total, repairing := 0, 0
	for {
		satisfied, unsatisfied, ok := neighborhood.NextNeighborEvaluation()
		if !ok {
			break
		}
		total++
		move := neighborhood.LastEvaluatedMove()
		require.NotNil(t, move)
		if satisfied > 0 {
			repairing++
			require.Zero(t, unsatisfied)
			// 修复移动都是把助理2 在第 2 天的班次换走
			require.Equal(t, 1, move.StartDayIndex)
			require.True(t, move.Employee1Index == 1 || move.Employee2Index == 1)
		}
	}

	// 每个起始日 4*3/2 种组合
	require.Equal(t, 18, total)
	require.Equal(t, 3, repairing)
	require.Nil(t, neighborhood.LastEvaluatedMove())
}

func TestNoReturnFilterRejectsUndoMoves(t *testing.T) {
	problem := newTestProblem(t, 3, 4)
	origin := roster.NewSolution(problem)
	fillRandomly(t, origin, rand.New(rand.NewSource(5)))

	// 找出第 1 天班次不同的两名助理
	employee1, employee2 := -1, -1
	for i := 0; i < 4 && employee1 == -1; i++ {
		for j := i + 1; j < 4; j++ {
			if origin.Assignment(0, i) != origin.Assignment(0, j) {
				employee1, employee2 = i, j
				break
			}
		}
	}
	require.NotEqual(t, -1, employee1)

	current := origin.Clone()
	move, err := roster.NewSwapMove(employee1, employee2, 0, 1)
	require.NoError(t, err)
	move.Apply(current)
	current.InvalidateEvaluation()

	filter := &noReturnFilter{origin: origin, current: current}
	// 再交换一次会恢复原排班，应当被拒绝
	require.False(t, filter.IsSatisfied(move))

	// 未被改动的日期上的移动不受影响
	untouched, err := roster.NewSwapMove(employee1, employee2, 1, 1)
	require.NoError(t, err)
	require.True(t, filter.IsSatisfied(untouched))
}

func TestBiasedSwapNeighborhoodDescendsOnActiveConstraints(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	solution := roster.NewSolution(problem)
	fillRandomly(t, solution, rand.New(rand.NewSource(6)))

	// 只激活覆盖类约束与合同约束中的班次总数上限
	activeConstraints := make([][]roster.Constraint, problem.MaxConstraintRankIndex()+1)
	for rankIndex := range activeConstraints {
		activeConstraints[rankIndex] = []roster.Constraint{}
	}
	activeConstraints[0] = append(activeConstraints[0], problem.Constraints(0)...)
	activeConstraints[1] = append(activeConstraints[1], problem.Constraints(1)[0])

	neighborhood, err := NewBiasedSwapNeighborhood(
		solution, 1, true, rand.New(rand.NewSource(6)), activeConstraints)
	require.NoError(t, err)

	steps := 0
	for {
		delta := neighborhood.NextNeighborPartialDeltaEvaluation()
		if delta == nil {
			break
		}
		// 偏置邻域返回的增量在激活约束上严格为负
		require.Negative(t, delta.Compare(roster.NewEvaluation(len(activeConstraints))))
		require.NoError(t, neighborhood.MoveToLastEvaluatedNeighbor())
		steps++
		require.Less(t, steps, 10000)
	}

	_, err = neighborhood.LastEvaluatedNeighbor()
	require.ErrorIs(t, err, ErrNoSuchNeighbor)
}
