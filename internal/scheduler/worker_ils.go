package scheduler

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// IteratedLocalSearchWorker: 多协程版本的迭代局部搜索求解器
// 每个协程独立运行一个 ILS 过程，通过共享的最优排班互相拉近，
// 驱动循环定期刷新进度并在停止条件满足后回收协程
type IteratedLocalSearchWorker struct {
	optimizationWorker

	settings      *IteratedLocalSearchSettings
	ilsProcedures []*IteratedLocalSearch

	solvingTrace   *Trace[roster.Evaluation]
	iterationTrace *Trace[IterationRecord]
}

func NewIteratedLocalSearchWorker(problem *roster.Problem, initialSolution *roster.Solution, settings *IteratedLocalSearchSettings) (*IteratedLocalSearchWorker, error) {
	if problem == nil || settings == nil {
		return nil, ErrInvalidArgument
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	w := &IteratedLocalSearchWorker{
		optimizationWorker: optimizationWorker{
			maxIterations: settings.MaxIterations,
			timeLimit:     settings.TimeLimit,
		},
		settings: settings,
	}
	if settings.RecordTrace {
		w.solvingTrace = NewTrace[roster.Evaluation]("迭代局部搜索")
	}
	if settings.RecordFullIterationTrace {
		w.iterationTrace = NewTrace[IterationRecord]("迭代局部搜索")
	}

	// 每个协程使用独立的 ILS 过程与随机数发生器，迭代预算由求解器统一控制
	w.ilsProcedures = make([]*IteratedLocalSearch, settings.NbThreads)
	for threadIndex := range w.ilsProcedures {
		procedure, err := NewIteratedLocalSearch(
			problem,
			math.MaxInt32,
			settings.PerturbationStrength,
			settings.WorseSolutionAcceptanceRate,
			settings.BlockSizes,
			rand.New(rand.NewSource(settings.RngSeed+int64(threadIndex))),
			settings.SelectionPolicy,
			settings.RestartIterations,
		)
		if err != nil {
			return nil, err
		}
		if initialSolution != nil {
			procedure.Init(initialSolution.Clone())
		} else {
			procedure.Init(nil)
		}
		w.ilsProcedures[threadIndex] = procedure
	}
	return w, nil
}

// Run 启动全部搜索协程并阻塞到求解结束，返回找到的最优排班
// 时间或迭代预算用完、上下文取消或调用 Cancel 都会结束求解
// 尚未找到任何可行排班时返回 nil
func (w *IteratedLocalSearchWorker) Run(ctx context.Context) *roster.Solution {
	w.begin()

	var wg sync.WaitGroup
	for _, procedure := range w.ilsProcedures {
		procedure := procedure
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.runProcedure(ctx, procedure)
		}()
	}

	for !w.stopOptimization(ctx) {
		w.updateProgress()
		time.Sleep(workerPollInterval)
	}
	wg.Wait()
	w.finish()

	w.updateTraceRecord(true)
	return w.BestFound(nil)
}

// runProcedure 在单个协程内推进 ILS 过程，每步之间检查停止条件
// 搜索出错时记录日志并重新开始，不中断其余协程
func (w *IteratedLocalSearchWorker) runProcedure(ctx context.Context, procedure *IteratedLocalSearch) {
	shareBestFound := w.settings.ShareBestFoundSolution && w.settings.NbThreads > 1
	for !w.stopOptimization(ctx) {
		initialIteration := procedure.CurrentIteration()
		if _, err := procedure.NextStep(); err != nil {
			slog.Error("迭代局部搜索出错，重新开始搜索", "错误", err)
			procedure.Init(nil)
			time.Sleep(workerPollInterval)
			continue
		}
		if procedure.CurrentIteration() > initialIteration {
			globalIteration := w.incrementIterations()
			w.addIterationRecord(procedure, globalIteration)
		}
		w.updateBestFound(procedure.BestFoundSolution())
		if shareBestFound {
			// 如果别的协程已经找到更好的排班，把它拉进本协程的 ILS 过程
			if best := procedure.BestFoundSolution(); best != nil {
				if shared := w.BestFound(best.Evaluation()); shared != nil {
					procedure.UpdateBestFoundSolution(shared)
				}
			}
		}
		w.updateTraceRecord(false)
	}
}

// updateTraceRecord 追加一条求解轨迹
// 只在强制记录、轨迹为空、记录周期已过或最优评估变化时追加
func (w *IteratedLocalSearchWorker) updateTraceRecord(force bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.solvingTrace == nil || w.bestFoundSolution == nil {
		return
	}
	elapsed := time.Since(w.startTime)
	evaluation := w.bestFoundSolution.Evaluation()
	last := w.solvingTrace.LastRecord()
	switch {
	case force || last == nil:
		w.solvingTrace.Add(elapsed, evaluation.Clone())
	case elapsed-last.Elapsed > w.settings.TraceRecordPeriod:
		w.solvingTrace.Add(elapsed, evaluation.Clone())
	case last.Value.Compare(evaluation) != 0:
		w.solvingTrace.Add(elapsed, evaluation.Clone())
	}
}

// addIterationRecord 记录某个协程完成的一次迭代
func (w *IteratedLocalSearchWorker) addIterationRecord(procedure *IteratedLocalSearch, globalIteration int) {
	if w.iterationTrace == nil {
		return
	}
	bestFound := procedure.BestFoundSolution()
	lastAccepted := procedure.LastAcceptedSolution()
	current := procedure.CurrentSolution()
	if bestFound == nil || lastAccepted == nil || current == nil {
		return
	}
	record := IterationRecord{
		Iteration:             globalIteration,
		BestFound:             bestFound.Evaluation().Clone(),
		LastAccepted:          lastAccepted.Evaluation().Clone(),
		Current:               current.Evaluation().Clone(),
		DistanceLastToCurrent: current.Distance(lastAccepted),
	}
	w.mu.Lock()
	w.iterationTrace.Add(time.Since(w.startTime), record)
	w.mu.Unlock()
}

// SolvingTrace 返回求解轨迹，未开启记录时返回 nil
// 求解过程中访问请改用 SolvingTraceRecords，避免与搜索协程竞争
func (w *IteratedLocalSearchWorker) SolvingTrace() *Trace[roster.Evaluation] {
	return w.solvingTrace
}

// SolvingTraceRecords 返回求解轨迹当前记录的副本，可在求解过程中调用
func (w *IteratedLocalSearchWorker) SolvingTraceRecords() []TraceRecord[roster.Evaluation] {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.solvingTrace == nil {
		return nil
	}
	records := make([]TraceRecord[roster.Evaluation], w.solvingTrace.Len())
	copy(records, w.solvingTrace.Records())
	return records
}

// IterationTrace 返回迭代轨迹，未开启记录时返回 nil
// 应在 Run 返回后访问
func (w *IteratedLocalSearchWorker) IterationTrace() *Trace[IterationRecord] {
	return w.iterationTrace
}
