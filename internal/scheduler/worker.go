package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// 驱动循环轮询停止条件的间隔
const workerPollInterval = 500 * time.Millisecond

// optimizationWorker 持有求解器各协程共享的状态，嵌入到具体求解器中
// 所有读写都经过互斥锁，排班在锁内深拷贝后才交给调用方
type optimizationWorker struct {
	maxIterations int
	timeLimit     time.Duration

	mu                sync.Mutex
	bestFoundSolution *roster.Solution
	startTime         time.Time
	iterationCount    int
	progress          int
	canceled          bool
	finished          bool
}

// begin 记录求解开始时间
func (w *optimizationWorker) begin() {
	w.mu.Lock()
	w.startTime = time.Now()
	w.mu.Unlock()
}

// BestFound 返回最优排班的副本
// limit 非空时只在评估严格优于 limit 时才复制并返回，避免不必要的拷贝
func (w *optimizationWorker) BestFound(limit roster.Evaluation) *roster.Solution {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.bestFoundSolution == nil {
		return nil
	}
	if limit == nil || w.bestFoundSolution.Evaluation().Compare(limit) < 0 {
		return w.bestFoundSolution.Clone()
	}
	return nil
}

// BestFoundEvaluation 返回最优排班的评估，尚无排班时返回 nil
func (w *optimizationWorker) BestFoundEvaluation() roster.Evaluation {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.bestFoundSolution == nil {
		return nil
	}
	return w.bestFoundSolution.Evaluation().Clone()
}

// updateBestFound 在候选排班严格更优时保存其副本
func (w *optimizationWorker) updateBestFound(solution *roster.Solution) bool {
	if solution == nil {
		return false
	}
	evaluation := solution.Evaluation()
	w.mu.Lock()
	if w.bestFoundSolution != nil &&
		w.bestFoundSolution.Evaluation().Compare(evaluation) <= 0 {
		w.mu.Unlock()
		return false
	}
	w.bestFoundSolution = solution.Clone()
	w.mu.Unlock()
	w.updateProgress()
	return true
}

// stopOptimization 判定是否应当结束求解：
// 上下文取消、任务被取消、时间或迭代预算用完
func (w *optimizationWorker) stopOptimization(ctx context.Context) bool {
	if ctx.Err() != nil {
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.canceled || w.finished {
		return true
	}
	if time.Since(w.startTime) > w.timeLimit {
		return true
	}
	return w.iterationCount > w.maxIterations
}

// updateProgress 根据迭代数与耗时刷新整数进度
// 求解结束前最大为 99，结束后固定为 100
func (w *optimizationWorker) updateProgress() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.canceled || w.finished {
		w.progress = 100
		return
	}
	progress := int(w.progressLocked())
	if progress >= 100 {
		progress = 99
	}
	if progress <= 0 {
		progress = 0
	}
	w.progress = progress
}

// progressLocked 取迭代进度与时间进度中的较大者，调用方需持有锁
func (w *optimizationWorker) progressLocked() float64 {
	if w.startTime.IsZero() {
		return 0
	}
	iterationProgress := float64(w.iterationCount) / float64(w.maxIterations) * 100
	timeProgress := float64(time.Since(w.startTime)) / float64(w.timeLimit) * 100
	progress := iterationProgress
	if timeProgress > progress {
		progress = timeProgress
	}
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

// Progress 返回 0 到 100 之间的整数进度
func (w *optimizationWorker) Progress() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}

// ExactProgress 返回浮点进度
func (w *optimizationWorker) ExactProgress() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progressLocked()
}

// incrementIterations 累加迭代数并返回累加后的值
func (w *optimizationWorker) incrementIterations() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.iterationCount++
	return w.iterationCount
}

// IterationCount 返回全部协程累计完成的迭代数
func (w *optimizationWorker) IterationCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.iterationCount
}

// Cancel 取消求解，搜索协程会在下一次检查停止条件时退出
func (w *optimizationWorker) Cancel() {
	w.mu.Lock()
	w.canceled = true
	w.mu.Unlock()
	w.updateProgress()
}

// IsDone 返回求解是否已结束，完成和取消都算结束
func (w *optimizationWorker) IsDone() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canceled || w.finished
}

// finish 标记求解结束并把进度推到 100
func (w *optimizationWorker) finish() {
	w.mu.Lock()
	w.finished = true
	w.mu.Unlock()
	w.updateProgress()
}
