package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// 扰动移动的选择策略
const (
	// selectFirstPolicy 使用邻域中第一个能修复约束的移动
	selectFirstPolicy = iota
	// selectBestPolicy 扫描整个邻域，选净修复效果最好的移动
	selectBestPolicy
)

// GuidedSwapPerturbation: 受约束引导的交换扰动
// 移动从约束满足邻域中选取，过滤器避免把排班换回扰动前的状态
// 邻域里没有能修复约束的移动时退回到任意会改变排班的移动
type GuidedSwapPerturbation struct {
	blockSizes []int
	// minSlotExchanges 每次扰动至少改变的格子数量，由强度系数推出
	minSlotExchanges int
	// origin 扰动开始时排班的副本，供过滤器比对
	origin   *roster.Solution
	solution *roster.Solution
	done     bool
	rng      *rand.Rand

	moveSelectionPolicy int
}

func NewGuidedSwapPerturbation(problem *roster.Problem, blockSizes []int, strength float64, rng *rand.Rand) (*GuidedSwapPerturbation, error) {
	if problem == nil || rng == nil || len(blockSizes) == 0 {
		return nil, ErrInvalidArgument
	}
	for _, size := range blockSizes {
		if size < 1 {
			return nil, ErrInvalidArgument
		}
	}
	if len(problem.Employees()) < 3 || strength < 0 {
		return nil, ErrInvalidArgument
	}
	return &GuidedSwapPerturbation{
		blockSizes: append([]int(nil), blockSizes...),
		minSlotExchanges: int(strength*
			float64(len(problem.Employees())*problem.Period().Size())) + 1,
		rng:                 rng,
		moveSelectionPolicy: selectBestPolicy,
	}, nil
}

// Init 设定要扰动的排班，排班会被就地修改
func (p *GuidedSwapPerturbation) Init(solution *roster.Solution) error {
	if solution == nil {
		return ErrInvalidArgument
	}
	p.solution = solution
	p.origin = solution.Clone()
	p.done = false
	return nil
}

// NextStep 执行扰动，返回 false 表示本轮扰动完成
// 扰动完成后再次调用会继续加大与原排班的差异
func (p *GuidedSwapPerturbation) NextStep() (bool, error) {
	if p.solution == nil {
		return false, ErrNotInitialized
	}

	nbExchanges := 0
	p.solution.InvalidateEvaluation()
	for nbExchanges < p.minSlotExchanges {
		blockSize := p.blockSizes[p.rng.Intn(len(p.blockSizes))]
		perturbationMove, err := p.findPerturbationMove(blockSize)
		if err != nil {
			return false, err
		}
		if perturbationMove == nil {
			p.done = true
			return false, ErrNoFeasibleSolution
		}
		nbExchanges += perturbationMove.ResultingDistance(p.solution)
		perturbationMove.Apply(p.solution)
	}

	p.done = true
	return false, nil
}

// findPerturbationMove 在约束满足邻域中挑选一个扰动移动
// 优先选能修复约束的移动，找不到时退回记录下的改变排班的移动
func (p *GuidedSwapPerturbation) findPerturbationMove(blockSize int) (*roster.SwapMove, error) {
	moveFilter := &noReturnFilter{origin: p.origin, current: p.solution}
	neighborhood, err := NewSwapConstraintSatisfactionNeighborhood(
		p.solution, blockSize, p.rng, moveFilter)
	if err != nil {
		return nil, err
	}

	var alteringMove *roster.SwapMove

	if p.moveSelectionPolicy == selectFirstPolicy {
		for {
			satisfied, _, ok := neighborhood.NextNeighborEvaluation()
			if !ok {
				return alteringMove, nil
			}
			if satisfied > 0 {
				return neighborhood.LastEvaluatedMove(), nil
			}
			if alteringMove == nil &&
				neighborhood.LastEvaluatedMove().ResultingDistance(p.solution) > 0 {
				alteringMove = neighborhood.LastEvaluatedMove()
			}
		}
	}

	var (
		selectedMove        *roster.SwapMove
		selectedSatisfied   int
		selectedUnsatisfied int
	)
	for {
		satisfied, unsatisfied, ok := neighborhood.NextNeighborEvaluation()
		if !ok {
			break
		}
		if satisfied > 0 {
			// 最小化新失约减修复数，同分时取修复数更多的移动
			if selectedMove == nil ||
				unsatisfied-satisfied < selectedUnsatisfied-selectedSatisfied ||
				(unsatisfied-satisfied == selectedUnsatisfied-selectedSatisfied &&
					satisfied > selectedSatisfied) {
				selectedMove = neighborhood.LastEvaluatedMove()
				selectedSatisfied = satisfied
				selectedUnsatisfied = unsatisfied
			}
		} else if alteringMove == nil &&
			neighborhood.LastEvaluatedMove().ResultingDistance(p.solution) > 0 {
			alteringMove = neighborhood.LastEvaluatedMove()
		}
	}
	if selectedMove == nil {
		selectedMove = alteringMove
	}
	return selectedMove, nil
}

// IsDone 返回扰动是否完成
func (p *GuidedSwapPerturbation) IsDone() bool {
	return p.done
}

// noReturnFilter 拒绝会把一对员工在某天的安排恢复成扰动前状态的移动
type noReturnFilter struct {
	origin  *roster.Solution
	current *roster.Solution
}

func (f *noReturnFilter) IsSatisfied(move *roster.SwapMove) bool {
	for dayIndex := move.StartDayIndex; dayIndex <= move.EndDayIndex(); dayIndex++ {
		originAssignment1 := f.origin.Assignment(dayIndex, move.Employee1Index)
		originAssignment2 := f.origin.Assignment(dayIndex, move.Employee2Index)
		currentAssignment1 := f.current.Assignment(dayIndex, move.Employee1Index)
		currentAssignment2 := f.current.Assignment(dayIndex, move.Employee2Index)
		if originAssignment1 != currentAssignment1 &&
			originAssignment1 == currentAssignment2 {
			return false
		}
		if originAssignment2 != currentAssignment2 &&
			originAssignment2 == currentAssignment1 {
			return false
		}
	}
	return true
}
