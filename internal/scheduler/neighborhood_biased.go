package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// BiasedSwapNeighborhood: 只在一部分约束上评估邻居的交换邻域
// 渐进式构造通过它在约束逐步激活的过程中做局部搜索
type BiasedSwapNeighborhood struct {
	origin        *roster.Solution
	blockSize     int
	onlyImproving bool
	rng           *rand.Rand

	// activeConstraints 按等级分组，增量评估只累加这些约束的代价变化
	activeConstraints [][]roster.Constraint
	// nullDeltaEvaluation 全零增量，用于判断移动是否带来改善
	nullDeltaEvaluation roster.Evaluation

	currentNeighborDeltaEvaluation roster.Evaluation
	currentNeighborMove            *roster.SwapMove

	remainingMoves           []*roster.SwapMove
	remainingStartDayIndexes []int
}

func NewBiasedSwapNeighborhood(origin *roster.Solution, blockSize int, onlyImproving bool, rng *rand.Rand, activeConstraints [][]roster.Constraint) (*BiasedSwapNeighborhood, error) {
	if origin == nil || rng == nil {
		return nil, ErrInvalidArgument
	}
	if blockSize < 1 {
		return nil, ErrInvalidArgument
	}
	if activeConstraints == nil {
		return nil, ErrInvalidArgument
	}
	n := &BiasedSwapNeighborhood{
		origin:              origin,
		blockSize:           blockSize,
		onlyImproving:       onlyImproving,
		rng:                 rng,
		activeConstraints:   activeConstraints,
		nullDeltaEvaluation: roster.NewEvaluation(len(activeConstraints)),
	}
	origin.Evaluation()
	n.ResetExploration()
	return n, nil
}

// ResetExploration 重新开始邻域的探索
func (n *BiasedSwapNeighborhood) ResetExploration() {
	n.currentNeighborDeltaEvaluation = nil
	n.currentNeighborMove = nil
	n.remainingMoves = nil
	n.remainingStartDayIndexes = nil
	for dayIndex := 0; dayIndex+n.blockSize <= n.origin.Problem().Period().Size(); dayIndex++ {
		n.remainingStartDayIndexes = append(n.remainingStartDayIndexes, dayIndex)
	}
}

func (n *BiasedSwapNeighborhood) completeListOfMoves() {
	if len(n.remainingMoves) > 0 || len(n.remainingStartDayIndexes) == 0 {
		return
	}
	index := n.rng.Intn(len(n.remainingStartDayIndexes))
	startDayIndex := n.remainingStartDayIndexes[index]
	n.remainingStartDayIndexes = append(
		n.remainingStartDayIndexes[:index], n.remainingStartDayIndexes[index+1:]...)

	employees := len(n.origin.Problem().Employees())
	for employee1 := 0; employee1 < employees; employee1++ {
		for employee2 := employee1 + 1; employee2 < employees; employee2++ {
			n.remainingMoves = append(n.remainingMoves, &roster.SwapMove{
				Employee1Index: employee1,
				Employee2Index: employee2,
				StartDayIndex:  startDayIndex,
				BlockSize:      n.blockSize,
			})
		}
	}
}

// biasedDeltaEvaluation 在激活约束上累加移动带来的代价变化
func (n *BiasedSwapNeighborhood) biasedDeltaEvaluation(move *roster.SwapMove) roster.Evaluation {
	delta := roster.NewEvaluation(len(n.activeConstraints))
	for rankIndex, constraints := range n.activeConstraints {
		for _, constraint := range constraints {
			delta[rankIndex] += constraint.Evaluator(n.origin.Problem()).
				SwapMoveCostDifference(n.origin, move)
		}
	}
	return delta
}

// NextNeighborPartialDeltaEvaluation 返回下一个邻居的部分增量评估
// 邻域耗尽时返回 nil
func (n *BiasedSwapNeighborhood) NextNeighborPartialDeltaEvaluation() roster.Evaluation {
	for {
		if len(n.remainingMoves) == 0 && len(n.remainingStartDayIndexes) == 0 {
			n.currentNeighborMove = nil
			n.currentNeighborDeltaEvaluation = nil
			return nil
		}
		n.completeListOfMoves()

		index := n.rng.Intn(len(n.remainingMoves))
		move := n.remainingMoves[index]
		n.remainingMoves = append(n.remainingMoves[:index], n.remainingMoves[index+1:]...)

		var delta roster.Evaluation
		if move.ModifiesAssignments(n.origin) {
			delta = n.biasedDeltaEvaluation(move)
		} else {
			delta = n.nullDeltaEvaluation
		}
		n.currentNeighborMove = move
		n.currentNeighborDeltaEvaluation = delta

		if n.onlyImproving && delta.Compare(n.nullDeltaEvaluation) >= 0 {
			continue
		}
		return delta
	}
}

// LastEvaluatedNeighbor 返回最近一次评估的邻居对应的排班
// 部分增量无法推出完整评估，返回的排班评估处于失效状态
func (n *BiasedSwapNeighborhood) LastEvaluatedNeighbor() (*roster.Solution, error) {
	if n.currentNeighborMove == nil {
		return nil, ErrNoSuchNeighbor
	}
	neighbor := n.origin.Clone()
	neighbor.InvalidateEvaluation()
	n.currentNeighborMove.Apply(neighbor)
	return neighbor, nil
}

// MoveToLastEvaluatedNeighbor 把起点移动到最近一次评估的邻居并重新开始探索
// 起点的评估会失效，需要时将重新全量计算
func (n *BiasedSwapNeighborhood) MoveToLastEvaluatedNeighbor() error {
	if n.currentNeighborMove == nil {
		return ErrNoSuchNeighbor
	}
	n.currentNeighborMove.Apply(n.origin)
	n.origin.InvalidateEvaluation()
	n.ResetExploration()
	return nil
}

func (n *BiasedSwapNeighborhood) Origin() *roster.Solution {
	return n.origin
}

func (n *BiasedSwapNeighborhood) BlockSize() int {
	return n.blockSize
}
