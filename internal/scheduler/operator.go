// Package scheduler 实现排班优化的元启发式搜索引擎
package scheduler

import (
	"errors"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

var (
	// ErrInvalidArgument 表示构造或初始化操作时收到非法参数
	ErrInvalidArgument = errors.New("非法参数")
	// ErrNotInitialized 表示在调用 Init 之前就开始执行操作
	ErrNotInitialized = errors.New("操作尚未初始化")
	// ErrNoSuchNeighbor 表示邻域尚未评估出可用的移动
	ErrNoSuchNeighbor = errors.New("邻域中没有已评估的移动")
	// ErrNoFeasibleSolution 表示构造过程无法生成满足需求的排班
	ErrNoFeasibleSolution = errors.New("无法生成可行的排班")
)

// Operator: 搜索空间探索过程的统一接口
// 构造、扰动和交叉操作都以单步推进的方式实现，便于工作线程在步进之间轮询取消信号
type Operator interface {
	// Init 用一个或多个排班初始化（或重新初始化）操作过程
	// 传入的排班可能被操作过程修改
	Init(solutions ...*roster.Solution) error
	// NextStep 执行下一步，返回 true 表示还有后续步骤
	NextStep() (bool, error)
	// IsDone 返回操作过程是否已经完成
	IsDone() bool
	// Result 返回操作的当前结果，没有结果时返回 nil
	Result() *roster.Solution
}

// RunOperator 初始化操作过程并一步步执行到结束，返回结果排班
func RunOperator(op Operator, solutions ...*roster.Solution) (*roster.Solution, error) {
	if err := op.Init(solutions...); err != nil {
		return nil, err
	}
	for {
		more, err := op.NextStep()
		if err != nil {
			return nil, err
		}
		if !more {
			break
		}
	}
	return op.Result(), nil
}

// PerturbationProcedure: 就地修改排班的扰动过程
type PerturbationProcedure interface {
	// Init 设定要扰动的排班
	Init(solution *roster.Solution) error
	// NextStep 执行下一步扰动，返回 true 表示还有后续步骤
	NextStep() (bool, error)
	// IsDone 返回扰动是否已经完成
	IsDone() bool
}

// RunPerturbation 初始化扰动过程并一步步执行到结束
func RunPerturbation(procedure PerturbationProcedure, solution *roster.Solution) error {
	if err := procedure.Init(solution); err != nil {
		return err
	}
	for {
		more, err := procedure.NextStep()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// NeighborSelectionPolicy: 邻居选择策略
type NeighborSelectionPolicy int

const (
	// FirstImproving 选择第一个严格改善的邻居
	FirstImproving NeighborSelectionPolicy = iota
	// BestImproving 选择当前邻域中最优的改善邻居
	BestImproving
)

// SwapMoveFilter 在邻域枚举时过滤交换移动，可用于实现简单的禁忌列表
type SwapMoveFilter interface {
	// IsSatisfied 返回 true 表示移动通过过滤，false 表示应当被拒绝
	IsSatisfied(move *roster.SwapMove) bool
}
