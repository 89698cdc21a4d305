package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// SwapConstraintSatisfactionNeighborhood: 以约束满足数量变化来评估邻居的交换邻域
// 引导式扰动通过它寻找能修复违反约束的移动
type SwapConstraintSatisfactionNeighborhood struct {
	origin    *roster.Solution
	blockSize int
	// rng 为 nil 时按固定顺序枚举邻居
	rng *rand.Rand
	// moveFilter 为 nil 时不过滤移动
	moveFilter SwapMoveFilter

	currentNeighborMove *roster.SwapMove

	remainingMoves           []*roster.SwapMove
	remainingStartDayIndexes []int
}

func NewSwapConstraintSatisfactionNeighborhood(origin *roster.Solution, blockSize int, rng *rand.Rand, moveFilter SwapMoveFilter) (*SwapConstraintSatisfactionNeighborhood, error) {
	if origin == nil {
		return nil, ErrInvalidArgument
	}
	if blockSize < 1 {
		return nil, ErrInvalidArgument
	}
	n := &SwapConstraintSatisfactionNeighborhood{
		origin:     origin,
		blockSize:  blockSize,
		rng:        rng,
		moveFilter: moveFilter,
	}
	n.ResetExploration()
	return n, nil
}

// ResetExploration 重新开始邻域的探索
func (n *SwapConstraintSatisfactionNeighborhood) ResetExploration() {
	n.currentNeighborMove = nil
	n.remainingMoves = nil
	n.remainingStartDayIndexes = nil
	for dayIndex := 0; dayIndex+n.blockSize <= n.origin.Problem().Period().Size(); dayIndex++ {
		n.remainingStartDayIndexes = append(n.remainingStartDayIndexes, dayIndex)
	}
}

func (n *SwapConstraintSatisfactionNeighborhood) completeListOfMoves() {
	if len(n.remainingMoves) > 0 || len(n.remainingStartDayIndexes) == 0 {
		return
	}
	index := 0
	if n.rng != nil {
		index = n.rng.Intn(len(n.remainingStartDayIndexes))
	}
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

// NextNeighborEvaluation 返回下一个通过过滤的邻居带来的约束满足变化
// 第三个返回值为 false 表示邻域已经耗尽
func (n *SwapConstraintSatisfactionNeighborhood) NextNeighborEvaluation() (satisfied, unsatisfied int, ok bool) {
	n.currentNeighborMove = nil
	for n.currentNeighborMove == nil ||
		(n.moveFilter != nil && !n.moveFilter.IsSatisfied(n.currentNeighborMove)) {
		if len(n.remainingMoves) == 0 && len(n.remainingStartDayIndexes) == 0 {
			n.currentNeighborMove = nil
			return 0, 0, false
		}
		n.completeListOfMoves()

		index := 0
		if n.rng != nil {
			index = n.rng.Intn(len(n.remainingMoves))
		}
		n.currentNeighborMove = n.remainingMoves[index]
		n.remainingMoves = append(n.remainingMoves[:index], n.remainingMoves[index+1:]...)
	}

	if !n.currentNeighborMove.ModifiesAssignments(n.origin) {
		return 0, 0, true
	}
	satisfied, unsatisfied = n.constraintSatisfactionDifference(n.currentNeighborMove)
	return satisfied, unsatisfied, true
}

// constraintSatisfactionDifference 累加全部约束在移动下的满足数量变化
func (n *SwapConstraintSatisfactionNeighborhood) constraintSatisfactionDifference(move *roster.SwapMove) (int, int) {
	problem := n.origin.Problem()
	sumSatisfied, sumUnsatisfied := 0, 0
	for rankIndex := 0; rankIndex <= problem.MaxConstraintRankIndex(); rankIndex++ {
		for _, constraint := range problem.Constraints(rankIndex) {
			satisfied, unsatisfied := constraint.Evaluator(problem).
				ConstraintSatisfactionDifference(n.origin, move)
			sumSatisfied += satisfied
			sumUnsatisfied += unsatisfied
		}
	}
	return sumSatisfied, sumUnsatisfied
}

// LastEvaluatedMove 返回最近一次评估的移动，没有时返回 nil
func (n *SwapConstraintSatisfactionNeighborhood) LastEvaluatedMove() *roster.SwapMove {
	return n.currentNeighborMove
}

func (n *SwapConstraintSatisfactionNeighborhood) Origin() *roster.Solution {
	return n.origin
}

func (n *SwapConstraintSatisfactionNeighborhood) BlockSize() int {
	return n.blockSize
}
