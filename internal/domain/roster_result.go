package domain

import "time"

type RosterResultShiftItem struct {
	Day          int32   `json:"day"`
	PrincipalID  *int64  `json:"principalID"` // 当负责人的 ID 为空（0）时，表示该班次没有负责人
	AssistantIDs []int64 `json:"assistantIDs"`
}

type RosterResultShift struct {
	ShiftID int64                   `json:"shiftID"`
	Items   []RosterResultShiftItem `json:"items"`
}

// RosterEvaluationRank: 某个约束等级下的总违反代价
// Label 是该等级下所有约束的名称，Cost 越小表示排班越好
type RosterEvaluationRank struct {
	Label string `json:"label"`
	Cost  int    `json:"cost"`
}

// RosterSolvingTracePoint: 求解过程中某一时刻的最优代价快照
type RosterSolvingTracePoint struct {
	ElapsedSeconds float64 `json:"elapsedSeconds"`
	Evaluation     []int   `json:"evaluation"`
}

type RosterResult struct {
	ID           int64                     `json:"id"`
	RosterPlanID int64                     `json:"rosterPlanID"`
	Shifts       []RosterResultShift       `json:"shifts"`
	Evaluation   []RosterEvaluationRank    `json:"evaluation,omitempty"`   // 排班手动提交时为空
	SolvingTrace []RosterSolvingTracePoint `json:"solvingTrace,omitempty"` // 仅自动排班时记录
	CreatedAt    time.Time                 `json:"createdAt"`
	Version      int32                     `json:"-"`
}
