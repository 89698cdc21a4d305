package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// ExchangePerturbation: 在三名助理之间随机轮换班次块来扰动排班
// 轮换保持每天的班次集合不变，因此不会破坏需求覆盖
type ExchangePerturbation struct {
	problem    *roster.Problem
	blockSizes []int
	// minSlotExchanges 每次扰动至少改变的格子数量，由强度系数推出
	minSlotExchanges int
	rng              *rand.Rand

	solution *roster.Solution
	done     bool
}

func NewExchangePerturbation(problem *roster.Problem, blockSizes []int, strength float64, rng *rand.Rand) (*ExchangePerturbation, error) {
	if problem == nil || rng == nil {
		return nil, ErrInvalidArgument
	}
	if len(problem.Employees()) < 3 {
		return nil, ErrInvalidArgument
	}
	if strength < 0 {
		return nil, ErrInvalidArgument
	}
	if len(blockSizes) == 0 {
		return nil, ErrInvalidArgument
	}
	for _, size := range blockSizes {
		if size < 1 {
			return nil, ErrInvalidArgument
		}
	}
	return &ExchangePerturbation{
		problem:    problem,
		blockSizes: blockSizes,
		minSlotExchanges: int(strength*
			float64(len(problem.Employees())*problem.Period().Size())) + 1,
		rng: rng,
	}, nil
}

// Init 以给定排班初始化扰动过程，排班会被就地修改
func (p *ExchangePerturbation) Init(solution *roster.Solution) error {
	if solution == nil {
		return ErrInvalidArgument
	}
	p.solution = solution
	p.done = false
	return nil
}

// NextStep 一步完成整个扰动，再次调用会继续扰动同一排班
func (p *ExchangePerturbation) NextStep() (bool, error) {
	if p.solution == nil {
		return false, ErrNotInitialized
	}

	days := p.problem.Period().Size()
	employees := len(p.problem.Employees())

	nbExchanges := 0
	for nbExchanges < p.minSlotExchanges {
		blockSize := p.blockSizes[p.rng.Intn(len(p.blockSizes))]
		startIndex := p.rng.Intn(days)

		employee1Index := p.rng.Intn(employees)

		employee2Index := p.rng.Intn(employees)
		if employee2Index == employee1Index {
			employee2Index = (employee2Index + 1) % employees
		}
		// 尽量让第二名助理在起始日的班次与第一名不同
		employee2Index = p.adjustToDifferentAssignment(startIndex, employee2Index,
			p.solution.Assignment(startIndex, employee1Index))

		employee3Index := p.rng.Intn(employees)
		for employee3Index == employee1Index || employee3Index == employee2Index {
			employee3Index = (employee3Index + 1) % employees
		}
		employee3Index = p.adjustToDifferentAssignment(startIndex, employee3Index,
			p.solution.Assignment(startIndex, employee1Index),
			p.solution.Assignment(startIndex, employee2Index))

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
			newAssignment1 := p.solution.Assignment(dayIndex, employee2Index)
			newAssignment2 := p.solution.Assignment(dayIndex, employee3Index)
			newAssignment3 := p.solution.Assignment(dayIndex, employee1Index)
			p.solution.SetAssignment(dayIndex, employee1Index, newAssignment1)
			p.solution.SetAssignment(dayIndex, employee2Index, newAssignment2)
			p.solution.SetAssignment(dayIndex, employee3Index, newAssignment3)
			nbExchanges += 3
		}
	}

	p.solution.InvalidateEvaluation()
	p.done = true
	return false, nil
}

// adjustToDifferentAssignment 环绕查找一名在起始日班次与给定班次都不同的助理
// 找不到时退回原来的助理下标
func (p *ExchangePerturbation) adjustToDifferentAssignment(dayIndex, employeeIndex int, avoid ...*roster.Shift) int {
	employees := len(p.problem.Employees())
	adjusted := employeeIndex
	for p.matchesAny(dayIndex, adjusted, avoid) {
		adjusted = (adjusted + 1) % employees
		if adjusted == employeeIndex {
			break
		}
	}
	return adjusted
}

func (p *ExchangePerturbation) matchesAny(dayIndex, employeeIndex int, avoid []*roster.Shift) bool {
	assignment := p.solution.Assignment(dayIndex, employeeIndex)
	for _, shift := range avoid {
		if assignment == shift {
			return true
		}
	}
	return false
}

func (p *ExchangePerturbation) IsDone() bool {
	return p.done
}
