package scheduler

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// MemeticAlgorithmWorker: 多协程的模因算法求解器
// 各协程从共享种群交叉出后代，变异并做局部搜索后交还种群筛选
type MemeticAlgorithmWorker struct {
	optimizationWorker

	settings     *MemeticAlgorithmSettings
	solutionPool *SolutionPool
	maThreads    []*memeticThread
}

// NewMemeticAlgorithmWorker 构造模因算法求解器
// settings 为 nil 时使用内置默认参数，initialSolution 可以为 nil
func NewMemeticAlgorithmWorker(problem *roster.Problem, initialSolution *roster.Solution, settings *MemeticAlgorithmSettings) (*MemeticAlgorithmWorker, error) {
	if problem == nil {
		return nil, ErrInvalidArgument
	}
	if settings == nil {
		settings = DefaultMemeticAlgorithmSettings()
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	pool, err := NewSolutionPool(
		problem, settings.PopulationSize, settings.CrossoverBlockSizes, settings.RngSeed)
	if err != nil {
		return nil, err
	}
	pool.Select(initialSolution)

	w := &MemeticAlgorithmWorker{
		optimizationWorker: optimizationWorker{
			maxIterations: settings.MaxIterations,
			timeLimit:     settings.TimeLimit,
		},
		settings:     settings,
		solutionPool: pool,
	}
	w.maThreads = make([]*memeticThread, settings.NbThreads)
	for threadIndex := range w.maThreads {
		thread, err := newMemeticThread(w, problem, settings, int64(threadIndex))
		if err != nil {
			return nil, err
		}
		w.maThreads[threadIndex] = thread
	}
	return w, nil
}

// Run 启动全部搜索协程并阻塞到求解结束，返回找到的最优排班
// 尚未找到任何可行排班时返回 nil
func (w *MemeticAlgorithmWorker) Run(ctx context.Context) *roster.Solution {
	w.begin()

	var wg sync.WaitGroup
	for _, thread := range w.maThreads {
		thread := thread
		wg.Add(1)
		go func() {
			defer wg.Done()
			thread.run(ctx)
		}()
	}

	for !w.stopOptimization(ctx) {
		w.updateProgress()
		time.Sleep(workerPollInterval)
	}
	wg.Wait()
	w.finish()

	return w.BestFound(nil)
}

// Pool 返回求解器使用的种群
func (w *MemeticAlgorithmWorker) Pool() *SolutionPool {
	return w.solutionPool
}

// 搜索协程的三个状态
const (
	stepGetSolution = iota
	stepMutation
	stepLocalSearch
)

// memeticThread 封装单个搜索协程的算子与状态机
type memeticThread struct {
	worker *MemeticAlgorithmWorker

	generationProcedure  *FastBlockConstruction
	mutationProcedure    *ExchangePerturbation
	localSearchProcedure *VariableNeighborhoodDescent

	currentStep     int
	currentSolution *roster.Solution
}

func newMemeticThread(worker *MemeticAlgorithmWorker, problem *roster.Problem, settings *MemeticAlgorithmSettings, threadIndex int64) (*memeticThread, error) {
	rng := rand.New(rand.NewSource(settings.RngSeed + threadIndex))
	generation, err := NewFastBlockConstruction(problem, rng)
	if err != nil {
		return nil, err
	}
	mutation, err := NewExchangePerturbation(
		problem, settings.LocalSearchBlockSizes, settings.PerturbationStrength, rng)
	if err != nil {
		return nil, err
	}
	localSearch, err := NewVariableNeighborhoodDescent(
		settings.LocalSearchBlockSizes, FirstImproving, rng)
	if err != nil {
		return nil, err
	}
	return &memeticThread{
		worker:               worker,
		generationProcedure:  generation,
		mutationProcedure:    mutation,
		localSearchProcedure: localSearch,
	}, nil
}

// run 循环推进状态机直到停止条件满足
// 搜索出错时记录日志并回到取后代状态，不中断其余协程
func (t *memeticThread) run(ctx context.Context) {
	for !t.worker.stopOptimization(ctx) {
		if err := t.step(); err != nil {
			slog.Error("模因算法搜索出错，重新开始搜索", "错误", err)
			t.currentStep = stepGetSolution
			time.Sleep(workerPollInterval)
		}
	}
	// 退出前把手头的排班也纳入最优记录
	t.worker.updateBestFound(t.currentSolution)
}

// step 推进状态机：取后代、变异、局部搜索，然后交还种群
func (t *memeticThread) step() error {
	switch t.currentStep {
	case stepGetSolution:
		offspring, err := t.worker.solutionPool.OffspringSolution()
		if err != nil {
			return err
		}
		if offspring == nil {
			// 种群还没有足够的排班，生成新排班并直接做局部搜索
			solution, err := RunOperator(t.generationProcedure)
			if err != nil {
				return err
			}
			t.currentSolution = solution
			if err := t.localSearchProcedure.Init(t.currentSolution); err != nil {
				return err
			}
			t.currentStep = stepLocalSearch
			return nil
		}
		t.currentSolution = offspring
		if err := t.mutationProcedure.Init(t.currentSolution); err != nil {
			return err
		}
		t.currentStep = stepMutation
	case stepMutation:
		if !t.mutationProcedure.IsDone() {
			_, err := t.mutationProcedure.NextStep()
			return err
		}
		if err := t.localSearchProcedure.Init(t.currentSolution); err != nil {
			return err
		}
		t.currentStep = stepLocalSearch
	case stepLocalSearch:
		if !t.localSearchProcedure.IsDone() {
			_, err := t.localSearchProcedure.NextStep()
			return err
		}
		t.worker.solutionPool.Select(t.currentSolution)
		t.worker.updateBestFound(t.currentSolution)
		t.worker.incrementIterations()
		t.currentStep = stepGetSolution
	}
	return nil
}
