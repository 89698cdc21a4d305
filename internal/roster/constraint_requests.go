package roster

import "fmt"

// DayOffRequestConstraint: 助理申请休息的日期不应被安排班次
// requests 以 [日下标][助理下标] 组织，true 表示当天申请休息
type DayOffRequestConstraint struct {
	rankIndex int
	requests  [][]bool
	evaluator *dayOffEvaluator
}

func NewDayOffRequestConstraint(rankIndex int, requests [][]bool) (*DayOffRequestConstraint, error) {
	if rankIndex < 0 {
		return nil, fmt.Errorf("约束等级不能为负数")
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("休息申请表不能为空")
	}
	for day := 1; day < len(requests); day++ {
		if len(requests[day]) != len(requests[0]) {
			return nil, fmt.Errorf("休息申请表每天的助理数量必须一致")
		}
	}
	return &DayOffRequestConstraint{rankIndex: rankIndex, requests: requests}, nil
}

func (c *DayOffRequestConstraint) Name() string {
	return "休息日申请"
}

func (c *DayOffRequestConstraint) RankIndex() int {
	return c.rankIndex
}

func (c *DayOffRequestConstraint) Evaluator(p *Problem) Evaluator {
	if c.evaluator == nil {
		c.evaluator = &dayOffEvaluator{constraint: c}
	}
	return c.evaluator
}

type dayOffEvaluator struct {
	constraint *DayOffRequestConstraint
}

func (e *dayOffEvaluator) requested(dayIndex, employeeIndex int) bool {
	requests := e.constraint.requests
	if dayIndex >= len(requests) || employeeIndex >= len(requests[dayIndex]) {
		return false
	}
	return requests[dayIndex][employeeIndex]
}

func (e *dayOffEvaluator) Cost(s *Solution) int {
	cost := 0
	for day := 0; day < s.Problem().Period().Size(); day++ {
		for employee := range s.Problem().Employees() {
			if e.requested(day, employee) && s.Assignment(day, employee) != nil {
				cost++
			}
		}
	}
	return cost
}

func (e *dayOffEvaluator) SwapMoveCostDifference(s *Solution, m *SwapMove) int {
	diff := 0
	for day := m.StartDayIndex; day <= m.EndDayIndex(); day++ {
		a1 := s.Assignment(day, m.Employee1Index)
		a2 := s.Assignment(day, m.Employee2Index)
		// 交换不改变当天是否有班次时此约束不受影响
		if (a1 == nil) == (a2 == nil) {
			continue
		}
		if e.requested(day, m.Employee1Index) {
			if a1 != nil {
				diff--
			} else {
				diff++
			}
		}
		if e.requested(day, m.Employee2Index) {
			if a2 != nil {
				diff--
			} else {
				diff++
			}
		}
	}
	return diff
}

func (e *dayOffEvaluator) ConstraintSatisfactionDifference(s *Solution, m *SwapMove) (int, int) {
	satisfied, unsatisfied := 0, 0
	for day := m.StartDayIndex; day <= m.EndDayIndex(); day++ {
		a1 := s.Assignment(day, m.Employee1Index)
		a2 := s.Assignment(day, m.Employee2Index)
		if (a1 == nil) == (a2 == nil) {
			continue
		}
		if e.requested(day, m.Employee1Index) {
			if a1 != nil {
				satisfied++
			} else {
				unsatisfied++
			}
		}
		if e.requested(day, m.Employee2Index) {
			if a2 != nil {
				satisfied++
			} else {
				unsatisfied++
			}
		}
	}
	return satisfied, unsatisfied
}

func (e *dayOffEvaluator) EstimatedAssignmentCost(s *Solution, employeeIndex int, shift *Shift, dayIndex int) int {
	if e.requested(dayIndex, employeeIndex) {
		return 1
	}
	return 0
}

func (e *dayOffEvaluator) HasPreferredAssignment(dayIndex, employeeIndex int) bool {
	return false
}

func (e *dayOffEvaluator) HasUnwantedAssignment(dayIndex, employeeIndex int) bool {
	return e.requested(dayIndex, employeeIndex)
}

func (e *dayOffEvaluator) IsPreferredAssignment(dayIndex, employeeIndex int, shift *Shift) bool {
	return !e.requested(dayIndex, employeeIndex)
}

func (e *dayOffEvaluator) Violations(s *Solution) []Violation {
	violations := []Violation{}
	for day := 0; day < s.Problem().Period().Size(); day++ {
		for employee, info := range s.Problem().Employees() {
			if e.requested(day, employee) && s.Assignment(day, employee) != nil {
				violations = append(violations, Violation{
					ConstraintName: e.constraint.Name(),
					RankIndex:      e.constraint.RankIndex(),
					Description:    fmt.Sprintf("助理 %s 在第 %d 天申请休息但仍被安排了班次", info.Name, day+1),
				})
			}
		}
	}
	return violations
}

// ShiftOffRequestConstraint: 助理申请回避的具体班次不应被安排给他
// requests 以 [日下标][助理下标][班次下标] 组织，true 表示申请回避
type ShiftOffRequestConstraint struct {
	rankIndex int
	requests  [][][]bool
	evaluator *shiftOffEvaluator
}

func NewShiftOffRequestConstraint(rankIndex int, requests [][][]bool) (*ShiftOffRequestConstraint, error) {
	if rankIndex < 0 {
		return nil, fmt.Errorf("约束等级不能为负数")
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("回避申请表不能为空")
	}
	return &ShiftOffRequestConstraint{rankIndex: rankIndex, requests: requests}, nil
}

func (c *ShiftOffRequestConstraint) Name() string {
	return "班次回避申请"
}

func (c *ShiftOffRequestConstraint) RankIndex() int {
	return c.rankIndex
}

func (c *ShiftOffRequestConstraint) Evaluator(p *Problem) Evaluator {
	if c.evaluator == nil {
		c.evaluator = &shiftOffEvaluator{constraint: c, problem: p}
	}
	return c.evaluator
}

type shiftOffEvaluator struct {
	constraint *ShiftOffRequestConstraint
	problem    *Problem
}

func (e *shiftOffEvaluator) unwanted(dayIndex, employeeIndex int, shift *Shift) bool {
	if shift == nil {
		return false
	}
	requests := e.constraint.requests
	if dayIndex >= len(requests) || employeeIndex >= len(requests[dayIndex]) {
		return false
	}
	shiftIndex := e.problem.ShiftIndex(shift)
	if shiftIndex >= len(requests[dayIndex][employeeIndex]) {
		return false
	}
	return requests[dayIndex][employeeIndex][shiftIndex]
}

func (e *shiftOffEvaluator) Cost(s *Solution) int {
	cost := 0
	for day := 0; day < s.Problem().Period().Size(); day++ {
		for employee := range s.Problem().Employees() {
			if e.unwanted(day, employee, s.Assignment(day, employee)) {
				cost++
			}
		}
	}
	return cost
}

func (e *shiftOffEvaluator) cellDifference(s *Solution, m *SwapMove, dayIndex int) (int, int) {
	a1 := s.Assignment(dayIndex, m.Employee1Index)
	a2 := s.Assignment(dayIndex, m.Employee2Index)

	diff1, diff2 := 0, 0
	if e.unwanted(dayIndex, m.Employee1Index, a2) {
		diff1++
	}
	if e.unwanted(dayIndex, m.Employee1Index, a1) {
		diff1--
	}
	if e.unwanted(dayIndex, m.Employee2Index, a1) {
		diff2++
	}
	if e.unwanted(dayIndex, m.Employee2Index, a2) {
		diff2--
	}
	return diff1, diff2
}

func (e *shiftOffEvaluator) SwapMoveCostDifference(s *Solution, m *SwapMove) int {
	diff := 0
	for day := m.StartDayIndex; day <= m.EndDayIndex(); day++ {
		diff1, diff2 := e.cellDifference(s, m, day)
		diff += diff1 + diff2
	}
	return diff
}

func (e *shiftOffEvaluator) ConstraintSatisfactionDifference(s *Solution, m *SwapMove) (int, int) {
	satisfied, unsatisfied := 0, 0
	for day := m.StartDayIndex; day <= m.EndDayIndex(); day++ {
		diff1, diff2 := e.cellDifference(s, m, day)
		for _, diff := range []int{diff1, diff2} {
			if diff < 0 {
				satisfied++
			} else if diff > 0 {
				unsatisfied++
			}
		}
	}
	return satisfied, unsatisfied
}

func (e *shiftOffEvaluator) EstimatedAssignmentCost(s *Solution, employeeIndex int, shift *Shift, dayIndex int) int {
	if e.unwanted(dayIndex, employeeIndex, shift) {
		return 1
	}
	return 0
}

func (e *shiftOffEvaluator) HasPreferredAssignment(dayIndex, employeeIndex int) bool {
	return false
}

// HasUnwantedAssignment 返回助理当天是否申请回避了任何班次
func (e *shiftOffEvaluator) HasUnwantedAssignment(dayIndex, employeeIndex int) bool {
	requests := e.constraint.requests
	if dayIndex >= len(requests) || employeeIndex >= len(requests[dayIndex]) {
		return false
	}
	for _, r := range requests[dayIndex][employeeIndex] {
		if r {
			return true
		}
	}
	return false
}

func (e *shiftOffEvaluator) IsPreferredAssignment(dayIndex, employeeIndex int, shift *Shift) bool {
	return shift != nil && !e.unwanted(dayIndex, employeeIndex, shift)
}

func (e *shiftOffEvaluator) Violations(s *Solution) []Violation {
	violations := []Violation{}
	for day := 0; day < s.Problem().Period().Size(); day++ {
		for employee, info := range s.Problem().Employees() {
			if shift := s.Assignment(day, employee); e.unwanted(day, employee, shift) {
				violations = append(violations, Violation{
					ConstraintName: e.constraint.Name(),
					RankIndex:      e.constraint.RankIndex(),
					Description:    fmt.Sprintf("助理 %s 在第 %d 天被安排了其申请回避的班次 %s", info.Name, day+1, shift.Label),
				})
			}
		}
	}
	return violations
}
