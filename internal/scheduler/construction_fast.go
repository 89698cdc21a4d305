package scheduler

import (
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// fastBlockMaxSize 随机块的最大长度
const fastBlockMaxSize = 7

// FastBlockConstruction: 以随机块的方式快速分配需求，生成一个完整但质量粗糙的排班
type FastBlockConstruction struct {
	problem *roster.Problem
	rng     *rand.Rand

	currentSolution *roster.Solution
	done            bool
}

func NewFastBlockConstruction(problem *roster.Problem, rng *rand.Rand) (*FastBlockConstruction, error) {
	if problem == nil || rng == nil {
		return nil, ErrInvalidArgument
	}
	return &FastBlockConstruction{problem: problem, rng: rng}, nil
}

// Init 以给定排班初始化构造过程，不传排班时从空白排班开始
func (c *FastBlockConstruction) Init(solutions ...*roster.Solution) error {
	if len(solutions) > 1 {
		slog.Warn("快速块构造只使用第一个排班，忽略其余的初始排班")
	}
	if len(solutions) > 0 {
		c.currentSolution = solutions[0]
	} else {
		c.currentSolution = nil
	}
	c.done = false
	return nil
}

// NextStep 一步完成整个构造过程
func (c *FastBlockConstruction) NextStep() (bool, error) {
	if err := c.generate(); err != nil {
		return false, err
	}
	c.done = true
	return false, nil
}

func (c *FastBlockConstruction) generate() error {
	if c.currentSolution == nil {
		c.currentSolution = roster.NewSolution(c.problem)
	}
	c.currentSolution.InvalidateEvaluation()

	days := c.problem.Period().Size()
	for {
		startDayIndex := c.randomUnassignedSlotDayIndex()
		if startDayIndex == -1 {
			return nil
		}

		blockSize := c.rng.Intn(fastBlockMaxSize) + 1
		employeeIndex := c.randomUnassignedEmployeeIndex(startDayIndex)
		if employeeIndex == -1 {
			return ErrNoFeasibleSolution
		}

		// 从起始日开始环绕地分配一个块
		for b := 0; b < blockSize; b++ {
			dayIndex := (startDayIndex + b) % days
			if c.currentSolution.UnassignedSlotCount(dayIndex) > 0 &&
				c.currentSolution.Assignment(dayIndex, employeeIndex) == nil {
				c.currentSolution.SetAssignment(
					dayIndex, employeeIndex, c.currentSolution.TakeUnassignedSlot(dayIndex, 0))
			}
		}
	}
}

// randomUnassignedSlotDayIndex 随机返回一个还有未分配需求的日下标
// 没有剩余需求时返回 -1
func (c *FastBlockConstruction) randomUnassignedSlotDayIndex() int {
	days := c.problem.Period().Size()
	dayIndex := c.rng.Intn(days)
	if c.currentSolution.UnassignedSlotCount(dayIndex) > 0 {
		return dayIndex
	}
	adjusted := (dayIndex + 1) % days
	for c.currentSolution.UnassignedSlotCount(adjusted) == 0 {
		adjusted = (adjusted + 1) % days
		if adjusted == dayIndex {
			return -1
		}
	}
	return adjusted
}

// randomUnassignedEmployeeIndex 随机返回一个当天空闲的助理下标
// 当天所有助理都有班次时返回 -1
func (c *FastBlockConstruction) randomUnassignedEmployeeIndex(dayIndex int) int {
	employees := len(c.problem.Employees())
	employeeIndex := c.rng.Intn(employees)
	if c.currentSolution.Assignment(dayIndex, employeeIndex) == nil {
		return employeeIndex
	}
	adjusted := (employeeIndex + 1) % employees
	for c.currentSolution.Assignment(dayIndex, adjusted) != nil {
		adjusted = (adjusted + 1) % employees
		if adjusted == employeeIndex {
			return -1
		}
	}
	return adjusted
}

func (c *FastBlockConstruction) IsDone() bool {
	return c.done
}

func (c *FastBlockConstruction) Result() *roster.Solution {
	if !c.done {
		return nil
	}
	return c.currentSolution
}
