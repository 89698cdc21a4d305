package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// RuinAndRecreateProcedure: 随机移除若干班次块后用贪心构造补全空缺
type RuinAndRecreateProcedure struct {
	problem      *roster.Problem
	maxBlockSize int
	// minSlotRemovals 每次扰动至少移除的格子数量，由强度系数推出
	minSlotRemovals int
	rng             *rand.Rand

	reconstruction *GreedyConstruction

	solution *roster.Solution
	done     bool
}

func NewRuinAndRecreateProcedure(problem *roster.Problem, maxBlockSize int, strength float64, rng *rand.Rand) (*RuinAndRecreateProcedure, error) {
	if problem == nil || rng == nil {
		return nil, ErrInvalidArgument
	}
	if len(problem.Employees()) < 1 {
		return nil, ErrInvalidArgument
	}
	if maxBlockSize < 1 {
		return nil, ErrInvalidArgument
	}
	if strength < 0 {
		return nil, ErrInvalidArgument
	}
	reconstruction, err := NewGreedyConstruction(problem, rng)
	if err != nil {
		return nil, err
	}
	return &RuinAndRecreateProcedure{
		problem:      problem,
		maxBlockSize: maxBlockSize,
		minSlotRemovals: int(strength*
			float64(len(problem.Employees())*problem.Period().Size())) + 1,
		rng:            rng,
		reconstruction: reconstruction,
	}, nil
}

// Init 以给定排班初始化扰动过程，排班会被就地修改
func (p *RuinAndRecreateProcedure) Init(solution *roster.Solution) error {
	if solution == nil {
		return ErrInvalidArgument
	}
	p.solution = solution
	p.done = false
	return nil
}

// NextStep 一步完成移除与重建，再次调用会继续扰动同一排班
func (p *RuinAndRecreateProcedure) NextStep() (bool, error) {
	if p.solution == nil {
		return false, ErrNotInitialized
	}

	p.solution.InvalidateEvaluation()
	days := p.problem.Period().Size()
	employees := len(p.problem.Employees())

	nbRemovals := 0
	for nbRemovals < p.minSlotRemovals {
		blockSize := p.rng.Intn(p.maxBlockSize) + 1
		startIndex := p.rng.Intn(days)
		employeeIndex := p.rng.Intn(employees)

		// 抽中空格子时按日序环绕查找下一个已排班的格子
		if p.solution.Assignment(startIndex, employeeIndex) == nil {
			adjustedStartIndex := startIndex + 1
			adjustedEmployeeIndex := employeeIndex
			for {
				if adjustedStartIndex == days {
					adjustedStartIndex = 0
					adjustedEmployeeIndex++
					if adjustedEmployeeIndex == employees {
						adjustedEmployeeIndex = 0
					}
				}
				if adjustedStartIndex == startIndex && adjustedEmployeeIndex == employeeIndex {
					// 整个排班已没有任何班次可移除
					nbRemovals = p.minSlotRemovals
					break
				}
				if p.solution.Assignment(adjustedStartIndex, adjustedEmployeeIndex) != nil {
					startIndex = adjustedStartIndex
					employeeIndex = adjustedEmployeeIndex
					break
				}
				adjustedStartIndex++
			}
		}

		// 块以抽中的日期为中心，越界时收缩
		startIndex -= blockSize / 2
		if startIndex < 0 {
			startIndex = 0
		}
		if startIndex+blockSize > days {
			blockSize = days - startIndex
		}

		endIndex := startIndex + blockSize - 1
		for dayIndex := startIndex; dayIndex <= endIndex; dayIndex++ {
			assigned := p.solution.Assignment(dayIndex, employeeIndex)
			if assigned != nil {
				p.solution.SetAssignment(dayIndex, employeeIndex, nil)
				p.solution.AddUnassignedSlot(dayIndex, assigned)
				nbRemovals++
			}
		}
	}

	if err := p.reconstruction.Init(p.solution); err != nil {
		return false, err
	}
	if _, err := p.reconstruction.NextStep(); err != nil {
		return false, err
	}
	p.done = true
	return false, nil
}

func (p *RuinAndRecreateProcedure) IsDone() bool {
	return p.done
}
