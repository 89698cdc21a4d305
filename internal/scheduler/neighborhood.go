package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// SwapNeighborhood: 基于交换移动的邻域结构
// 邻域的探索方式类似迭代器，NextNeighborEvaluation 返回下一个邻居的评估，
// MoveToLastEvaluatedNeighbor 把起点移动到最近评估的邻居
type SwapNeighborhood struct {
	origin        *roster.Solution
	blockSize     int
	onlyImproving bool
	// rng 为 nil 时按固定顺序枚举邻居
	rng *rand.Rand

	bestNeighborEvaluation roster.Evaluation
	bestNeighborMove       *roster.SwapMove
	// bestNeighborChecked 表示剩余的邻居已全部参与过最优邻居的比较
	bestNeighborChecked bool

	currentNeighborEvaluation roster.Evaluation
	currentNeighborMove       *roster.SwapMove

	remainingMoves           []*roster.SwapMove
	remainingStartDayIndexes []int
}

func NewSwapNeighborhood(origin *roster.Solution, blockSize int, onlyImproving bool, rng *rand.Rand) (*SwapNeighborhood, error) {
	if origin == nil {
		return nil, ErrInvalidArgument
	}
	if blockSize < 1 {
		return nil, ErrInvalidArgument
	}
	n := &SwapNeighborhood{
		origin:        origin,
		blockSize:     blockSize,
		onlyImproving: onlyImproving,
		rng:           rng,
	}
	// 预先计算起点的评估，保证后续的增量评估有基准
	origin.Evaluation()
	n.ResetExploration()
	return n, nil
}

// ResetExploration 重新开始邻域的探索
func (n *SwapNeighborhood) ResetExploration() {
	n.currentNeighborEvaluation = nil
	n.currentNeighborMove = nil
	n.remainingMoves = nil
	n.remainingStartDayIndexes = nil
	for dayIndex := 0; dayIndex+n.blockSize <= n.origin.Problem().Period().Size(); dayIndex++ {
		n.remainingStartDayIndexes = append(n.remainingStartDayIndexes, dayIndex)
	}
}

// completeListOfMoves 从剩余日期中取出一天并生成这一天的全部交换移动
func (n *SwapNeighborhood) completeListOfMoves() {
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

func (n *SwapNeighborhood) takeNextMove() *roster.SwapMove {
	index := 0
	if n.rng != nil {
		index = n.rng.Intn(len(n.remainingMoves))
	}
	move := n.remainingMoves[index]
	n.remainingMoves = append(n.remainingMoves[:index], n.remainingMoves[index+1:]...)
	return move
}

func (n *SwapNeighborhood) evaluateMove(move *roster.SwapMove) roster.Evaluation {
	if move.ModifiesAssignments(n.origin) {
		return move.Evaluate(n.origin)
	}
	return n.origin.Evaluation()
}

// NextNeighborEvaluation 返回下一个邻居的评估，邻域耗尽时返回 nil
// 只考虑改善移动时会跳过所有不严格优于起点的邻居
func (n *SwapNeighborhood) NextNeighborEvaluation() roster.Evaluation {
	for {
		if len(n.remainingMoves) == 0 && len(n.remainingStartDayIndexes) == 0 {
			n.currentNeighborMove = nil
			n.currentNeighborEvaluation = nil
			return nil
		}
		n.completeListOfMoves()

		move := n.takeNextMove()
		evaluation := n.evaluateMove(move)
		n.currentNeighborMove = move
		n.currentNeighborEvaluation = evaluation

		if n.onlyImproving && evaluation.Compare(n.origin.Evaluation()) >= 0 {
			continue
		}
		if !n.bestNeighborChecked {
			n.updateBestNeighbor(move, evaluation)
		}
		return evaluation
	}
}

// BestNeighborEvaluation 返回邻域中最优邻居的评估，不影响迭代式的探索
// 邻域为空或只考虑改善移动且没有更优邻居时返回 nil
func (n *SwapNeighborhood) BestNeighborEvaluation() roster.Evaluation {
	if n.bestNeighborChecked {
		return n.bestNeighborEvaluation
	}
	for _, move := range n.remainingMoves {
		n.updateBestNeighbor(move, nil)
	}
	employees := len(n.origin.Problem().Employees())
	for _, startDayIndex := range n.remainingStartDayIndexes {
		for employee1 := 0; employee1 < employees; employee1++ {
			for employee2 := employee1 + 1; employee2 < employees; employee2++ {
				n.updateBestNeighbor(&roster.SwapMove{
					Employee1Index: employee1,
					Employee2Index: employee2,
					StartDayIndex:  startDayIndex,
					BlockSize:      n.blockSize,
				}, nil)
			}
		}
	}
	n.bestNeighborChecked = true
	return n.bestNeighborEvaluation
}

// updateBestNeighbor 用给定的移动更新最优邻居，评估为 nil 时现场计算
// 相同评估时保留先遇到的移动
func (n *SwapNeighborhood) updateBestNeighbor(move *roster.SwapMove, evaluation roster.Evaluation) {
	if evaluation == nil {
		evaluation = n.evaluateMove(move)
	}
	if n.bestNeighborMove == nil {
		if !n.onlyImproving || evaluation.Compare(n.origin.Evaluation()) < 0 {
			n.bestNeighborMove = move
			n.bestNeighborEvaluation = evaluation
		}
		return
	}
	if evaluation.Compare(n.bestNeighborEvaluation) < 0 {
		n.bestNeighborMove = move
		n.bestNeighborEvaluation = evaluation
	}
}

// BestNeighbor 返回邻域中最优的邻居，不影响探索也不修改起点
func (n *SwapNeighborhood) BestNeighbor() *roster.Solution {
	if n.BestNeighborEvaluation() == nil {
		return nil
	}
	neighbor := n.origin.Clone()
	n.bestNeighborMove.Apply(neighbor)
	neighbor.SetEvaluation(n.bestNeighborEvaluation)
	return neighbor
}

// MoveToBestNeighbor 把起点移动到最优邻居并重新开始探索
// 返回 false 表示邻域中没有可用的邻居，起点保持不变
func (n *SwapNeighborhood) MoveToBestNeighbor() bool {
	if n.BestNeighborEvaluation() == nil {
		return false
	}
	n.bestNeighborMove.Apply(n.origin)
	n.origin.SetEvaluation(n.bestNeighborEvaluation)
	verifyEvaluation(n.origin, n.bestNeighborEvaluation)

	n.ResetExploration()
	n.bestNeighborMove = nil
	n.bestNeighborEvaluation = nil
	n.bestNeighborChecked = false
	return true
}

// LastEvaluatedNeighbor 返回最近一次评估的邻居对应的排班
// 不修改起点，也不影响探索
func (n *SwapNeighborhood) LastEvaluatedNeighbor() (*roster.Solution, error) {
	if n.currentNeighborMove == nil {
		return nil, ErrNoSuchNeighbor
	}
	neighbor := n.origin.Clone()
	n.currentNeighborMove.Apply(neighbor)
	neighbor.SetEvaluation(n.currentNeighborEvaluation)
	return neighbor, nil
}

// MoveToLastEvaluatedNeighbor 把起点移动到最近一次评估的邻居并重新开始探索
func (n *SwapNeighborhood) MoveToLastEvaluatedNeighbor() error {
	if n.currentNeighborMove == nil {
		return ErrNoSuchNeighbor
	}
	n.currentNeighborMove.Apply(n.origin)
	n.origin.SetEvaluation(n.currentNeighborEvaluation)
	verifyEvaluation(n.origin, n.currentNeighborEvaluation)

	n.ResetExploration()
	n.bestNeighborMove = nil
	n.bestNeighborEvaluation = nil
	n.bestNeighborChecked = false
	return nil
}

func (n *SwapNeighborhood) Origin() *roster.Solution {
	return n.origin
}

func (n *SwapNeighborhood) BlockSize() int {
	return n.blockSize
}
