package domain

import "time"

const (
	OptimizationAlgorithmILS     = "ils"
	OptimizationAlgorithmMemetic = "memetic"
)

const (
	OptimizationStatusRunning   = "running"
	OptimizationStatusCompleted = "completed"
	OptimizationStatusCancelled = "cancelled"
	OptimizationStatusFailed    = "failed"
)

// OptimizationJobStatus: 自动排班任务的运行状态，轮询接口返回给客户端
type OptimizationJobStatus struct {
	RosterPlanID   int64      `json:"rosterPlanID"`
	Algorithm      string     `json:"algorithm"`
	Status         string     `json:"status"`
	Progress       int        `json:"progress"` // 0~100
	IterationCount int        `json:"iterationCount"`
	BestEvaluation []int      `json:"bestEvaluation,omitempty"`
	StartedAt      time.Time  `json:"startedAt"`
	FinishedAt     *time.Time `json:"finishedAt,omitempty"`
}
