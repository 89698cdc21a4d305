package scheduler

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

func TestIteratedLocalSearchWorkerValidation(t *testing.T) {
	problem := newSearchProblem(t, 7, 5)

	_, err := NewIteratedLocalSearchWorker(nil, nil, DefaultIteratedLocalSearchSettings())
	require.ErrorIs(t, err, ErrInvalidArgument)
	_, err = NewIteratedLocalSearchWorker(problem, nil, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	broken := DefaultIteratedLocalSearchSettings()
	broken.NbThreads = 0
	_, err = NewIteratedLocalSearchWorker(problem, nil, broken)
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestIteratedLocalSearchWorkerSolves(t *testing.T) {
	problem := newSearchProblem(t, 7, 5)
	settings := DefaultIteratedLocalSearchSettings()
	settings.TimeLimit = 2 * time.Second
	settings.NbThreads = 2
	settings.BlockSizes = []int{1, 2, 3}
	settings.RecordFullIterationTrace = true

	worker, err := NewIteratedLocalSearchWorker(problem, nil, settings)
	require.NoError(t, err)

	best := worker.Run(context.Background())
	require.NotNil(t, best)
	requireCompleteCoverage(t, best)
	require.Equal(t, 0, best.Evaluation().Cost(0))
	require.True(t, worker.IsDone())
	require.Equal(t, 100, worker.Progress())
	require.InDelta(t, 100, worker.ExactProgress(), 0.0001)
	require.Positive(t, worker.IterationCount())

	// 求解轨迹按时间追加且最优评估单调不升
	trace := worker.SolvingTrace()
	require.NotNil(t, trace)
	records := trace.Records()
	require.NotEmpty(t, records)
	for i := 1; i < len(records); i++ {
		require.LessOrEqual(t, records[i].Value.Compare(records[i-1].Value), 0)
		require.GreaterOrEqual(t, records[i].Elapsed, records[i-1].Elapsed)
	}

	iterationTrace := worker.IterationTrace()
	require.NotNil(t, iterationTrace)
	require.False(t, iterationTrace.IsEmpty())
	for _, record := range iterationTrace.Records() {
		require.GreaterOrEqual(t, record.Value.Iteration, 1)
		require.NotNil(t, record.Value.BestFound)
		require.NotNil(t, record.Value.LastAccepted)
		require.NotNil(t, record.Value.Current)
	}
}

func TestIteratedLocalSearchWorkerInitialSolution(t *testing.T) {
	problem := newSearchProblem(t, 7, 5)
	initial := roster.NewSolution(problem)
	fillRandomly(t, initial, rand.New(rand.NewSource(50)))
	initialEvaluation := initial.Evaluation().Clone()

	settings := DefaultIteratedLocalSearchSettings()
	settings.TimeLimit = time.Second
	worker, err := NewIteratedLocalSearchWorker(problem, initial, settings)
	require.NoError(t, err)

	// 从给定排班出发，结果不会比它差
	best := worker.Run(context.Background())
	require.NotNil(t, best)
	require.LessOrEqual(t, best.Evaluation().Compare(initialEvaluation), 0)
}

func TestIteratedLocalSearchWorkerCancel(t *testing.T) {
	problem := newSearchProblem(t, 7, 5)
	settings := DefaultIteratedLocalSearchSettings()
	settings.TimeLimit = time.Minute

	worker, err := NewIteratedLocalSearchWorker(problem, nil, settings)
	require.NoError(t, err)

	result := make(chan *roster.Solution, 1)
	go func() { result <- worker.Run(context.Background()) }()
	time.Sleep(200 * time.Millisecond)
	worker.Cancel()

	select {
	case best := <-result:
		require.NotNil(t, best)
	case <-time.After(5 * time.Second):
		t.Fatal("取消后求解没有及时结束")
	}
	require.True(t, worker.IsDone())
	require.Equal(t, 100, worker.Progress())
}

func TestIteratedLocalSearchWorkerContextCancel(t *testing.T) {
	problem := newSearchProblem(t, 7, 5)
	settings := DefaultIteratedLocalSearchSettings()
	settings.TimeLimit = time.Minute

	worker, err := NewIteratedLocalSearchWorker(problem, nil, settings)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan *roster.Solution, 1)
	go func() { result <- worker.Run(ctx) }()
	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case best := <-result:
		require.NotNil(t, best)
	case <-time.After(5 * time.Second):
		t.Fatal("上下文取消后求解没有及时结束")
	}
	require.True(t, worker.IsDone())
}

func TestOptimizationWorkerBestFound(t *testing.T) {
	problem := newTestProblem(t, 7, 4)
	worker, err := NewIteratedLocalSearchWorker(problem, nil, DefaultIteratedLocalSearchSettings())
	require.NoError(t, err)

	require.Nil(t, worker.BestFound(nil))
	require.Nil(t, worker.BestFoundEvaluation())
	require.Equal(t, 0, worker.Progress())
	require.False(t, worker.IsDone())

	first := roster.NewSolution(problem)
	first.SetEvaluation(roster.Evaluation{1, 4})
	require.True(t, worker.updateBestFound(first))

	// 评估持平不替换
	equal := roster.NewSolution(problem)
	equal.SetEvaluation(roster.Evaluation{1, 4})
	require.False(t, worker.updateBestFound(equal))

	better := roster.NewSolution(problem)
	better.SetEvaluation(roster.Evaluation{1, 3})
	require.True(t, worker.updateBestFound(better))
	require.True(t, worker.BestFoundEvaluation().Equal(roster.Evaluation{1, 3}))

	// 只在严格优于给定评估时返回副本
	require.Nil(t, worker.BestFound(roster.Evaluation{1, 3}))
	require.NotNil(t, worker.BestFound(roster.Evaluation{1, 4}))
	require.NotSame(t, worker.BestFound(nil), worker.BestFound(nil))

	worker.Cancel()
	require.True(t, worker.IsDone())
	require.Equal(t, 100, worker.Progress())
}

func TestMemeticAlgorithmWorkerDefaults(t *testing.T) {
	problem := newSearchProblem(t, 7, 5)

	_, err := NewMemeticAlgorithmWorker(nil, nil, nil)
	require.ErrorIs(t, err, ErrInvalidArgument)

	broken := DefaultMemeticAlgorithmSettings()
	broken.PopulationSize = 0
	_, err = NewMemeticAlgorithmWorker(problem, nil, broken)
	require.ErrorIs(t, err, ErrInvalidArgument)

	// settings 为 nil 时使用内置默认参数，初始排班直接入池
	initial := roster.NewSolution(problem)
	fillRandomly(t, initial, rand.New(rand.NewSource(51)))
	worker, err := NewMemeticAlgorithmWorker(problem, initial, nil)
	require.NoError(t, err)
	require.Equal(t, 1, worker.Pool().Len())
}

func TestMemeticAlgorithmWorkerSolves(t *testing.T) {
	problem := newSearchProblem(t, 7, 5)
	settings := DefaultMemeticAlgorithmSettings()
	settings.TimeLimit = 2 * time.Second
	settings.NbThreads = 2
	settings.PopulationSize = 8
	settings.LocalSearchBlockSizes = []int{1, 2, 3}
	settings.CrossoverBlockSizes = []int{1, 3}

	worker, err := NewMemeticAlgorithmWorker(problem, nil, settings)
	require.NoError(t, err)

	best := worker.Run(context.Background())
	require.NotNil(t, best)
	requireCompleteCoverage(t, best)
	require.Equal(t, 0, best.Evaluation().Cost(0))
	require.True(t, worker.IsDone())
	require.Equal(t, 100, worker.Progress())
	require.Positive(t, worker.IterationCount())

	// 种群不为空且不超过容量
	pool := worker.Pool()
	require.GreaterOrEqual(t, pool.Len(), 1)
	require.LessOrEqual(t, pool.Len(), 8)
	require.NotEmpty(t, pool.Evaluations())
}

func TestMemeticAlgorithmWorkerCancel(t *testing.T) {
	problem := newSearchProblem(t, 7, 5)
	settings := DefaultMemeticAlgorithmSettings()
	settings.TimeLimit = time.Minute
	settings.NbThreads = 2

	worker, err := NewMemeticAlgorithmWorker(problem, nil, settings)
	require.NoError(t, err)

	result := make(chan *roster.Solution, 1)
	go func() { result <- worker.Run(context.Background()) }()
	time.Sleep(200 * time.Millisecond)
	worker.Cancel()

	select {
	case best := <-result:
		require.NotNil(t, best)
	case <-time.After(5 * time.Second):
		t.Fatal("取消后求解没有及时结束")
	}
	require.True(t, worker.IsDone())
	require.Equal(t, 100, worker.Progress())
}
