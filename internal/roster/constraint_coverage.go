package roster

import "fmt"

// ShiftCoverageConstraint: 每天的班次需求必须全部有人承担
// 代价为所有未分配槽位的数量，交换操作不会改变覆盖情况
type ShiftCoverageConstraint struct {
	evaluator *shiftCoverageEvaluator
}

func NewShiftCoverageConstraint() *ShiftCoverageConstraint {
	return &ShiftCoverageConstraint{}
}

func (c *ShiftCoverageConstraint) Name() string {
	return "班次需求覆盖"
}

func (c *ShiftCoverageConstraint) RankIndex() int {
	return 0
}

func (c *ShiftCoverageConstraint) Evaluator(p *Problem) Evaluator {
	if c.evaluator == nil {
		c.evaluator = &shiftCoverageEvaluator{constraint: c}
	}
	return c.evaluator
}

func (c *ShiftCoverageConstraint) coverageConstraint() {}

type shiftCoverageEvaluator struct {
	noPreferences
	constraint *ShiftCoverageConstraint
}

func (e *shiftCoverageEvaluator) Cost(s *Solution) int {
	cost := 0
	for day := 0; day < s.Problem().Period().Size(); day++ {
		cost += s.UnassignedSlotCount(day)
	}
	return cost
}

func (e *shiftCoverageEvaluator) SwapMoveCostDifference(s *Solution, m *SwapMove) int {
	// 交换只在助理之间转移班次，不会产生或消除未分配槽位
	return 0
}

func (e *shiftCoverageEvaluator) ConstraintSatisfactionDifference(s *Solution, m *SwapMove) (int, int) {
	return 0, 0
}

func (e *shiftCoverageEvaluator) EstimatedAssignmentCost(s *Solution, employeeIndex int, shift *Shift, dayIndex int) int {
	return 0
}

func (e *shiftCoverageEvaluator) Violations(s *Solution) []Violation {
	violations := []Violation{}
	for day := 0; day < s.Problem().Period().Size(); day++ {
		if n := s.UnassignedSlotCount(day); n > 0 {
			violations = append(violations, Violation{
				ConstraintName: e.constraint.Name(),
				RankIndex:      e.constraint.RankIndex(),
				Description:    fmt.Sprintf("第 %d 天还有 %d 个班次没有分配", day+1, n),
			})
		}
	}
	return violations
}

// SingleAssignmentPerDayConstraint: 每名助理每天最多承担一个班次
// 排班表按格子存储，天然满足此约束，保留它是为了参与渐进式构造的激活集合
type SingleAssignmentPerDayConstraint struct {
	evaluator *singleAssignmentEvaluator
}

func NewSingleAssignmentPerDayConstraint() *SingleAssignmentPerDayConstraint {
	return &SingleAssignmentPerDayConstraint{}
}

func (c *SingleAssignmentPerDayConstraint) Name() string {
	return "每日单班次"
}

func (c *SingleAssignmentPerDayConstraint) RankIndex() int {
	return 0
}

func (c *SingleAssignmentPerDayConstraint) Evaluator(p *Problem) Evaluator {
	if c.evaluator == nil {
		c.evaluator = &singleAssignmentEvaluator{}
	}
	return c.evaluator
}

func (c *SingleAssignmentPerDayConstraint) coverageConstraint() {}

type singleAssignmentEvaluator struct {
	noPreferences
}

func (e *singleAssignmentEvaluator) Cost(s *Solution) int {
	return 0
}

func (e *singleAssignmentEvaluator) SwapMoveCostDifference(s *Solution, m *SwapMove) int {
	return 0
}

func (e *singleAssignmentEvaluator) ConstraintSatisfactionDifference(s *Solution, m *SwapMove) (int, int) {
	return 0, 0
}

func (e *singleAssignmentEvaluator) EstimatedAssignmentCost(s *Solution, employeeIndex int, shift *Shift, dayIndex int) int {
	return 0
}

func (e *singleAssignmentEvaluator) Violations(s *Solution) []Violation {
	return nil
}
