package scheduler

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// makePoolSolution 构造一份只在第一天为指定助理排班的排班并固定其评估
func makePoolSolution(problem *roster.Problem, employeeIndex int, evaluation roster.Evaluation) *roster.Solution {
	s := roster.NewSolution(problem)
	s.SetAssignment(0, employeeIndex, s.TakeUnassignedSlot(0, 0))
	s.SetEvaluation(evaluation)
	return s
}

func poolCosts(t *testing.T, pool *SolutionPool) []int {
	t.Helper()
	costs := make([]int, 0, pool.Len())
	for _, evaluation := range pool.Evaluations() {
		costs = append(costs, evaluation.Cost(1))
	}
	sort.Ints(costs)
	return costs
}

func TestSolutionPoolValidation(t *testing.T) {
	problem := newTestProblem(t, 7, 4)

	_, err := NewSolutionPool(nil, 4, []int{1}, 40)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSolutionPool(problem, 0, []int{1}, 40)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewSolutionPool(problem, 4, nil, 40)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSolutionPoolRejectsDuplicates(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	pool, err := NewSolutionPool(problem, 4, []int{1}, 41)
	require.NoError(t, err)

	pool.Select(nil)
	require.Equal(t, 0, pool.Len())

	first := makePoolSolution(problem, 0, roster.Evaluation{1, 7})
	pool.Select(first)
	require.Equal(t, 1, pool.Len())

	// 评估与逐格安排都一致的排班被拒绝
	pool.Select(first.Clone())
	require.Equal(t, 1, pool.Len())

	// 评估相同但安排不同的排班可以入池
	pool.Select(makePoolSolution(problem, 1, roster.Evaluation{1, 7}))
	require.Equal(t, 2, pool.Len())
}

func TestSolutionPoolReplaceNext(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	pool, err := NewSolutionPool(problem, 2, []int{1}, 42)
	require.NoError(t, err)
	pool.SetInsertionStrategy(ReplaceNext)

	pool.Select(makePoolSolution(problem, 0, roster.Evaluation{0, 0}))
	pool.Select(makePoolSolution(problem, 1, roster.Evaluation{0, 1}))
	require.Equal(t, 2, pool.Len())

	// 满员后按轮转位置依次替换
	pool.Select(makePoolSolution(problem, 2, roster.Evaluation{0, 2}))
	pool.Select(makePoolSolution(problem, 3, roster.Evaluation{0, 3}))
	require.Equal(t, 2, pool.Len())

	evaluations := pool.Evaluations()
	require.True(t, evaluations[0].Equal(roster.Evaluation{0, 2}))
	require.True(t, evaluations[1].Equal(roster.Evaluation{0, 3}))
}

func TestSolutionPoolReplaceInWorstSet(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	pool, err := NewSolutionPool(problem, 3, []int{1}, 43)
	require.NoError(t, err)

	pool.Select(makePoolSolution(problem, 0, roster.Evaluation{0, 9}))
	pool.Select(makePoolSolution(problem, 1, roster.Evaluation{0, 1}))
	pool.Select(makePoolSolution(problem, 2, roster.Evaluation{0, 8}))

	// 默认策略下最差集合只有一份排班，评估最差的一定被换掉
	pool.Select(makePoolSolution(problem, 3, roster.Evaluation{0, 2}))
	require.Equal(t, 3, pool.Len())
	require.Equal(t, []int{1, 2, 8}, poolCosts(t, pool))
}

func TestSolutionPoolReplaceOneOfWorst(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	pool, err := NewSolutionPool(problem, 2, []int{1}, 44)
	require.NoError(t, err)
	pool.SetInsertionStrategy(ReplaceOneOfWorst)

	pool.Select(makePoolSolution(problem, 0, roster.Evaluation{0, 5}))
	pool.Select(makePoolSolution(problem, 1, roster.Evaluation{0, 5}))

	// 两份排班评估并列最差，其中一份被随机替换
	pool.Select(makePoolSolution(problem, 2, roster.Evaluation{0, 1}))
	require.Equal(t, 2, pool.Len())
	require.Equal(t, []int{1, 5}, poolCosts(t, pool))
}

func TestSolutionPoolOffspring(t *testing.T) {
	problem := newSearchProblem(t, 7, 4)
	pool, err := NewSolutionPool(problem, 4, []int{1, 2, 3}, 45)
	require.NoError(t, err)

	// 种群不足两份排班时没有后代
	offspring, err := pool.OffspringSolution()
	require.NoError(t, err)
	require.Nil(t, offspring)

	parent1 := roster.NewSolution(problem)
	fillRandomly(t, parent1, rand.New(rand.NewSource(46)))
	pool.Select(parent1)

	offspring, err = pool.OffspringSolution()
	require.NoError(t, err)
	require.Nil(t, offspring)

	parent2 := roster.NewSolution(problem)
	fillRandomly(t, parent2, rand.New(rand.NewSource(47)))
	pool.Select(parent2)
	require.Equal(t, 2, pool.Len())

	offspring, err = pool.OffspringSolution()
	require.NoError(t, err)
	require.NotNil(t, offspring)
	requireCompleteCoverage(t, offspring)
}
