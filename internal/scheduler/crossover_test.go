package scheduler

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

func TestBlockCrossoverValidation(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	rng := rand.New(rand.NewSource(30))

	_, err := NewBlockCrossover(nil, rng, []int{1})
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewBlockCrossover(problem, nil, []int{1})
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewBlockCrossover(problem, rng, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewBlockCrossover(problem, rng, []int{2, 0})
	require.ErrorIs(t, err, ErrInvalidArgument)

	crossover, err := NewBlockCrossover(problem, rng, []int{1, 2})
	require.NoError(t, err)
	_, err = crossover.NextStep()
	require.ErrorIs(t, err, ErrNotInitialized)

	parent := roster.NewSolution(problem)
	require.ErrorIs(t, crossover.Init(parent), ErrInvalidArgument)
	require.ErrorIs(t, crossover.Init(parent, nil), ErrInvalidArgument)
	require.Nil(t, crossover.Result())
}

func TestBlockCrossoverMixesWholeDayColumns(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	parent1 := roster.NewSolution(problem)
	fillRandomly(t, parent1, rand.New(rand.NewSource(31)))
	parent2 := roster.NewSolution(problem)
	fillRandomly(t, parent2, rand.New(rand.NewSource(32)))
	backup1 := parent1.Clone()
	backup2 := parent2.Clone()

	crossover, err := NewBlockCrossover(problem, rand.New(rand.NewSource(33)), []int{1, 2, 3})
	require.NoError(t, err)
	offspring, err := RunOperator(crossover, parent1, parent2)
	require.NoError(t, err)
	require.True(t, crossover.IsDone())
	require.NotNil(t, offspring)

	// 父代不被交叉修改
	require.True(t, parent1.EqualAssignments(backup1))
	require.True(t, parent2.EqualAssignments(backup2))

	// 每天的整列安排都完整来自其中一个父代，第一天总是来自父代一
	for day := 0; day < 7; day++ {
		fromParent1 := true
		fromParent2 := true
		for employee := 0; employee < 4; employee++ {
			if offspring.Assignment(day, employee) != parent1.Assignment(day, employee) {
				fromParent1 = false
			}
			if offspring.Assignment(day, employee) != parent2.Assignment(day, employee) {
				fromParent2 = false
			}
		}
		require.True(t, fromParent1 || fromParent2, "第 %d 天的安排混合了两个父代", day)
		if day == 0 {
			require.True(t, fromParent1)
		}
	}
	requireCompleteCoverage(t, offspring)
}

func TestBlockCrossoverIdenticalParents(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	parent := roster.NewSolution(problem)
	fillRandomly(t, parent, rand.New(rand.NewSource(34)))

	crossover, err := NewBlockCrossover(problem, rand.New(rand.NewSource(35)), []int{1, 2})
	require.NoError(t, err)
	offspring, err := RunOperator(crossover, parent, parent.Clone())
	require.NoError(t, err)
	require.True(t, offspring.EqualAssignments(parent))
}

func TestBlockCrossoverDeterministicWithSameSeed(t *testing.T) {
	problem := newTestProblem(t, 14, 4)
	parent1 := roster.NewSolution(problem)
	fillRandomly(t, parent1, rand.New(rand.NewSource(36)))
	parent2 := roster.NewSolution(problem)
	fillRandomly(t, parent2, rand.New(rand.NewSource(37)))

	first, err := NewBlockCrossover(problem, rand.New(rand.NewSource(38)), []int{1, 2, 3})
	require.NoError(t, err)
	offspring1, err := RunOperator(first, parent1, parent2)
	require.NoError(t, err)

	second, err := NewBlockCrossover(problem, rand.New(rand.NewSource(38)), []int{1, 2, 3})
	require.NoError(t, err)
	offspring2, err := RunOperator(second, parent1, parent2)
	require.NoError(t, err)

	require.True(t, offspring1.EqualAssignments(offspring2))
}
