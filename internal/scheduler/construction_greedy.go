package scheduler

import (
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// GreedyConstruction: 按估计代价贪心地补全排班
// 既能从空白排班生成完整排班，也能在扰动破坏后做重建
type GreedyConstruction struct {
	problem *roster.Problem
	rng     *rand.Rand

	// shiftDemands[日下标][班次下标] 缓存需求数量，加速重建
	shiftDemands [][]int

	currentSolution *roster.Solution
	done            bool
}

func NewGreedyConstruction(problem *roster.Problem, rng *rand.Rand) (*GreedyConstruction, error) {
	if problem == nil || rng == nil {
		return nil, ErrInvalidArgument
	}
	c := &GreedyConstruction{problem: problem, rng: rng}

	days := problem.Period().Size()
	c.shiftDemands = make([][]int, days)
	for dayIndex := 0; dayIndex < days; dayIndex++ {
		c.shiftDemands[dayIndex] = make([]int, len(problem.Shifts()))
		for shiftIndex, shift := range problem.Shifts() {
			c.shiftDemands[dayIndex][shiftIndex] = problem.Demand(shift, dayIndex)
		}
	}
	return c, nil
}

// Generate 生成或重建一个排班
// 不提供初始排班时从空白排班开始，否则把初始排班补全到所有需求都被分配且没有超额
func (c *GreedyConstruction) Generate(initial *roster.Solution) *roster.Solution {
	var solution *roster.Solution
	if initial == nil {
		solution = roster.NewSolution(c.problem)
	} else {
		if c.completeUnassignedSlots(initial) {
			return initial
		}
		solution = initial
	}

	days := c.problem.Period().Size()
	dayIndexes := make([]int, days)
	for i := range dayIndexes {
		dayIndexes[i] = i
	}
	c.rng.Shuffle(len(dayIndexes), func(i, j int) {
		dayIndexes[i], dayIndexes[j] = dayIndexes[j], dayIndexes[i]
	})

	for _, dayIndex := range dayIndexes {
		slots := make([]*roster.Shift, 0, solution.UnassignedSlotCount(dayIndex))
		for i := 0; i < solution.UnassignedSlotCount(dayIndex); i++ {
			slots = append(slots, solution.UnassignedSlot(dayIndex, i))
		}
		c.rng.Shuffle(len(slots), func(i, j int) {
			slots[i], slots[j] = slots[j], slots[i]
		})

		for _, slot := range slots {
			bestEmployeeIndex := -1
			var bestEstimatedCost roster.Evaluation
			for employeeIndex := range c.problem.Employees() {
				if solution.Assignment(dayIndex, employeeIndex) != nil {
					continue
				}
				estimated := c.estimatedAssignmentEvaluation(solution, employeeIndex, slot, dayIndex)
				if bestEmployeeIndex == -1 || estimated.Compare(bestEstimatedCost) < 0 {
					bestEmployeeIndex = employeeIndex
					bestEstimatedCost = estimated
				}
			}
			if bestEmployeeIndex == -1 {
				slog.Warn("助理数量不足以覆盖需求")
				break
			}
			solution.SetAssignment(dayIndex, bestEmployeeIndex, slot)
		}
		solution.ClearUnassignedSlots(dayIndex)
	}

	solution.InvalidateEvaluation()
	return solution
}

// estimatedAssignmentEvaluation 汇总所有约束对一次分配的估计代价
func (c *GreedyConstruction) estimatedAssignmentEvaluation(solution *roster.Solution, employeeIndex int, slot *roster.Shift, dayIndex int) roster.Evaluation {
	estimated := roster.NewEvaluation(c.problem.MaxConstraintRankIndex() + 1)
	for rankIndex := 0; rankIndex <= c.problem.MaxConstraintRankIndex(); rankIndex++ {
		for _, constraint := range c.problem.Constraints(rankIndex) {
			estimated[rankIndex] += constraint.Evaluator(c.problem).
				EstimatedAssignmentCost(solution, employeeIndex, slot, dayIndex)
		}
	}
	return estimated
}

// completeUnassignedSlots 核对每天每个班次的分配数量和需求数量
// 超额时随机移除多余的分配，不足时把缺口补进待分配列表
// 返回 true 表示排班已经完整覆盖所有需求
func (c *GreedyConstruction) completeUnassignedSlots(solution *roster.Solution) bool {
	complete := true
	days := c.problem.Period().Size()
	employees := len(c.problem.Employees())

	for dayIndex := 0; dayIndex < days; dayIndex++ {
		solution.ClearUnassignedSlots(dayIndex)
		for shiftIndex, shift := range c.problem.Shifts() {
			demand := c.shiftDemands[dayIndex][shiftIndex]
			count := 0
			for employeeIndex := 0; employeeIndex < employees; employeeIndex++ {
				if solution.Assignment(dayIndex, employeeIndex) == shift {
					count++
				}
			}

			if demand < count {
				solution.InvalidateEvaluation()
				over := count - demand
				for over > 0 {
					toRemove := c.rng.Intn(demand + over)
					for employeeIndex := 0; employeeIndex < employees; employeeIndex++ {
						if solution.Assignment(dayIndex, employeeIndex) != shift {
							continue
						}
						if toRemove == 0 {
							solution.SetAssignment(dayIndex, employeeIndex, nil)
							over--
							break
						}
						toRemove--
					}
				}
			} else if demand > count {
				complete = false
				for u := 0; u < demand-count; u++ {
					solution.AddUnassignedSlot(dayIndex, shift)
				}
			}
		}
	}
	return complete
}

// Init 以最多一个初始排班初始化构造过程
func (c *GreedyConstruction) Init(solutions ...*roster.Solution) error {
	c.done = false
	c.currentSolution = nil
	if len(solutions) == 1 && solutions[0] != nil {
		c.currentSolution = solutions[0]
	} else if len(solutions) > 1 {
		slog.Warn("贪心构造只接受一个初始排班")
	}
	return nil
}

// NextStep 一步完成整个构造过程
func (c *GreedyConstruction) NextStep() (bool, error) {
	c.currentSolution = c.Generate(c.currentSolution)
	c.done = true
	return false, nil
}

func (c *GreedyConstruction) IsDone() bool {
	return c.done
}

func (c *GreedyConstruction) Result() *roster.Solution {
	if !c.done {
		return nil
	}
	return c.currentSolution
}
