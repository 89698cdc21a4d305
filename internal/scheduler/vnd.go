package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// VariableNeighborhoodDescent: 在一组块大小的交换邻域上做变邻域下降
// 块大小按给定顺序使用，任意一层找到改善后回到第一层
type VariableNeighborhoodDescent struct {
	swapBlockSizes  []int
	selectionPolicy NeighborSelectionPolicy
	rng             *rand.Rand

	currentNeighborhood   *SwapNeighborhood
	currentBlockSizeIndex int
}

func NewVariableNeighborhoodDescent(swapBlockSizes []int, selectionPolicy NeighborSelectionPolicy, rng *rand.Rand) (*VariableNeighborhoodDescent, error) {
	if len(swapBlockSizes) == 0 {
		return nil, ErrInvalidArgument
	}
	for _, size := range swapBlockSizes {
		if size < 1 {
			return nil, ErrInvalidArgument
		}
	}
	return &VariableNeighborhoodDescent{
		swapBlockSizes:  swapBlockSizes,
		selectionPolicy: selectionPolicy,
		rng:             rng,
	}, nil
}

// Init 以给定排班初始化下降过程，排班会被就地修改
func (v *VariableNeighborhoodDescent) Init(solution *roster.Solution) error {
	if solution == nil {
		return ErrInvalidArgument
	}
	v.currentBlockSizeIndex = 0
	neighborhood, err := NewSwapNeighborhood(
		solution, v.swapBlockSizes[0], true, v.rng)
	if err != nil {
		return err
	}
	v.currentNeighborhood = neighborhood
	return nil
}

// NextStep 执行下一步下降，返回 true 表示还有后续步骤
func (v *VariableNeighborhoodDescent) NextStep() (bool, error) {
	if v.currentNeighborhood == nil {
		return false, ErrNotInitialized
	}
	if v.currentBlockSizeIndex >= len(v.swapBlockSizes) {
		return false, nil
	}

	improved := false
	if v.selectionPolicy == FirstImproving {
		if v.currentNeighborhood.NextNeighborEvaluation() != nil {
			if err := v.currentNeighborhood.MoveToLastEvaluatedNeighbor(); err != nil {
				return false, err
			}
			improved = true
		}
	} else {
		improved = v.currentNeighborhood.MoveToBestNeighbor()
	}

	if improved {
		// 找到改善后回到第一层邻域
		if v.currentBlockSizeIndex != 0 {
			v.currentBlockSizeIndex = 0
			return true, v.recreateNeighborhood()
		}
		return true, nil
	}

	v.currentBlockSizeIndex++
	if v.currentBlockSizeIndex < len(v.swapBlockSizes) {
		return true, v.recreateNeighborhood()
	}
	return false, nil
}

func (v *VariableNeighborhoodDescent) recreateNeighborhood() error {
	neighborhood, err := NewSwapNeighborhood(
		v.currentNeighborhood.Origin(),
		v.swapBlockSizes[v.currentBlockSizeIndex],
		true, v.rng)
	if err != nil {
		return err
	}
	v.currentNeighborhood = neighborhood
	return nil
}

// IsDone 返回下降过程是否已经结束
func (v *VariableNeighborhoodDescent) IsDone() bool {
	return v.currentNeighborhood != nil &&
		v.currentBlockSizeIndex >= len(v.swapBlockSizes)
}

// BiasedVariableNeighborhoodDescent: 只在激活约束上评估移动的变邻域下降
type BiasedVariableNeighborhoodDescent struct {
	swapBlockSizes    []int
	rng               *rand.Rand
	activeConstraints [][]roster.Constraint

	currentNeighborhood   *BiasedSwapNeighborhood
	currentBlockSizeIndex int
}

func NewBiasedVariableNeighborhoodDescent(swapBlockSizes []int, rng *rand.Rand, activeConstraints [][]roster.Constraint) (*BiasedVariableNeighborhoodDescent, error) {
	if len(swapBlockSizes) == 0 || rng == nil || activeConstraints == nil {
		return nil, ErrInvalidArgument
	}
	for _, size := range swapBlockSizes {
		if size < 1 {
			return nil, ErrInvalidArgument
		}
	}
	return &BiasedVariableNeighborhoodDescent{
		swapBlockSizes:    swapBlockSizes,
		rng:               rng,
		activeConstraints: activeConstraints,
	}, nil
}

// Init 以给定排班初始化下降过程，排班会被就地修改
func (v *BiasedVariableNeighborhoodDescent) Init(solution *roster.Solution) error {
	if solution == nil {
		return ErrInvalidArgument
	}
	v.currentBlockSizeIndex = 0
	neighborhood, err := NewBiasedSwapNeighborhood(
		solution, v.swapBlockSizes[0], true, v.rng, v.activeConstraints)
	if err != nil {
		return err
	}
	v.currentNeighborhood = neighborhood
	return nil
}

// NextStep 执行下一步下降，返回 true 表示还有后续步骤
func (v *BiasedVariableNeighborhoodDescent) NextStep() (bool, error) {
	if v.currentNeighborhood == nil {
		return false, ErrNotInitialized
	}
	if v.currentBlockSizeIndex >= len(v.swapBlockSizes) {
		return false, nil
	}

	if v.currentNeighborhood.NextNeighborPartialDeltaEvaluation() != nil {
		if err := v.currentNeighborhood.MoveToLastEvaluatedNeighbor(); err != nil {
			return false, err
		}
		if v.currentBlockSizeIndex != 0 {
			v.currentBlockSizeIndex = 0
			return true, v.recreateNeighborhood()
		}
		return true, nil
	}

	v.currentBlockSizeIndex++
	if v.currentBlockSizeIndex < len(v.swapBlockSizes) {
		return true, v.recreateNeighborhood()
	}
	return false, nil
}

func (v *BiasedVariableNeighborhoodDescent) recreateNeighborhood() error {
	neighborhood, err := NewBiasedSwapNeighborhood(
		v.currentNeighborhood.Origin(),
		v.swapBlockSizes[v.currentBlockSizeIndex],
		true, v.rng, v.activeConstraints)
	if err != nil {
		return err
	}
	v.currentNeighborhood = neighborhood
	return nil
}

// IsDone 返回下降过程是否已经结束
func (v *BiasedVariableNeighborhoodDescent) IsDone() bool {
	return v.currentNeighborhood != nil &&
		v.currentBlockSizeIndex >= len(v.swapBlockSizes)
}
