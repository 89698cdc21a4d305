package roster

import "fmt"

// excess 返回实际数量超出上限的部分
func excess(n, limit int) int {
	if n > limit {
		return n - limit
	}
	return 0
}

// assignmentCount 统计一名助理在整个周期内承担的班次数
func assignmentCount(s *Solution, employeeIndex int) int {
	n := 0
	for day := 0; day < s.Problem().Period().Size(); day++ {
		if s.Assignment(day, employeeIndex) != nil {
			n++
		}
	}
	return n
}

// swapCountChanges 计算交换操作对两名助理班次数量的影响
func swapCountChanges(s *Solution, m *SwapMove) (int, int) {
	d1, d2 := 0, 0
	for day := m.StartDayIndex; day <= m.EndDayIndex(); day++ {
		a1 := s.Assignment(day, m.Employee1Index)
		a2 := s.Assignment(day, m.Employee2Index)
		if a1 != nil && a2 == nil {
			d1--
			d2++
		} else if a1 == nil && a2 != nil {
			d1++
			d2--
		}
	}
	return d1, d2
}

// MaxAssignmentsConstraint: 助理承担的班次总数不能超过合同上限
type MaxAssignmentsConstraint struct {
	rankIndex int
	evaluator *maxAssignmentsEvaluator
}

func NewMaxAssignmentsConstraint(rankIndex int) (*MaxAssignmentsConstraint, error) {
	if rankIndex < 0 {
		return nil, fmt.Errorf("约束等级不能为负数")
	}
	return &MaxAssignmentsConstraint{rankIndex: rankIndex}, nil
}

func (c *MaxAssignmentsConstraint) Name() string {
	return "班次总数上限"
}

func (c *MaxAssignmentsConstraint) RankIndex() int {
	return c.rankIndex
}

func (c *MaxAssignmentsConstraint) Evaluator(p *Problem) Evaluator {
	if c.evaluator == nil {
		c.evaluator = &maxAssignmentsEvaluator{constraint: c}
	}
	return c.evaluator
}

type maxAssignmentsEvaluator struct {
	noPreferences
	constraint *MaxAssignmentsConstraint
}

func (e *maxAssignmentsEvaluator) Cost(s *Solution) int {
	cost := 0
	for employee, info := range s.Problem().Employees() {
		cost += excess(assignmentCount(s, employee), info.Contract.MaxAssignments)
	}
	return cost
}

func (e *maxAssignmentsEvaluator) SwapMoveCostDifference(s *Solution, m *SwapMove) int {
	d1, d2 := swapCountChanges(s, m)
	if d1 == 0 && d2 == 0 {
		return 0
	}

	employees := s.Problem().Employees()
	max1 := employees[m.Employee1Index].Contract.MaxAssignments
	max2 := employees[m.Employee2Index].Contract.MaxAssignments
	n1 := assignmentCount(s, m.Employee1Index)
	n2 := assignmentCount(s, m.Employee2Index)

	return excess(n1+d1, max1) - excess(n1, max1) +
		excess(n2+d2, max2) - excess(n2, max2)
}

func (e *maxAssignmentsEvaluator) ConstraintSatisfactionDifference(s *Solution, m *SwapMove) (int, int) {
	d1, d2 := swapCountChanges(s, m)
	if d1 == 0 && d2 == 0 {
		return 0, 0
	}

	employees := s.Problem().Employees()
	satisfied, unsatisfied := 0, 0
	for _, change := range []struct {
		employeeIndex int
		diff          int
	}{
		{m.Employee1Index, d1},
		{m.Employee2Index, d2},
	} {
		limit := employees[change.employeeIndex].Contract.MaxAssignments
		n := assignmentCount(s, change.employeeIndex)
		before := excess(n, limit) > 0
		after := excess(n+change.diff, limit) > 0
		if before && !after {
			satisfied++
		} else if !before && after {
			unsatisfied++
		}
	}
	return satisfied, unsatisfied
}

func (e *maxAssignmentsEvaluator) EstimatedAssignmentCost(s *Solution, employeeIndex int, shift *Shift, dayIndex int) int {
	limit := s.Problem().Employees()[employeeIndex].Contract.MaxAssignments
	return excess(assignmentCount(s, employeeIndex)+1, limit)
}

func (e *maxAssignmentsEvaluator) Violations(s *Solution) []Violation {
	violations := []Violation{}
	for employee, info := range s.Problem().Employees() {
		if over := excess(assignmentCount(s, employee), info.Contract.MaxAssignments); over > 0 {
			violations = append(violations, Violation{
				ConstraintName: e.constraint.Name(),
				RankIndex:      e.constraint.RankIndex(),
				Description:    fmt.Sprintf("助理 %s 超出合同允许的班次数 %d 个", info.Name, over),
			})
		}
	}
	return violations
}

// MaxConsecutiveWorkDaysConstraint: 助理连续工作的天数不能超过合同上限
type MaxConsecutiveWorkDaysConstraint struct {
	rankIndex int
	evaluator *maxConsecutiveEvaluator
}

func NewMaxConsecutiveWorkDaysConstraint(rankIndex int) (*MaxConsecutiveWorkDaysConstraint, error) {
	if rankIndex < 0 {
		return nil, fmt.Errorf("约束等级不能为负数")
	}
	return &MaxConsecutiveWorkDaysConstraint{rankIndex: rankIndex}, nil
}

func (c *MaxConsecutiveWorkDaysConstraint) Name() string {
	return "连续工作天数上限"
}

func (c *MaxConsecutiveWorkDaysConstraint) RankIndex() int {
	return c.rankIndex
}

func (c *MaxConsecutiveWorkDaysConstraint) Evaluator(p *Problem) Evaluator {
	if c.evaluator == nil {
		c.evaluator = &maxConsecutiveEvaluator{constraint: c}
	}
	return c.evaluator
}

type maxConsecutiveEvaluator struct {
	noPreferences
	constraint *MaxConsecutiveWorkDaysConstraint
}

// consecutiveExcess 统计连续工作超出上限的总天数
// worked 以日下标为参数返回当天是否有班次
func consecutiveExcess(worked func(day int) bool, days, limit int) int {
	total, run := 0, 0
	for day := 0; day < days; day++ {
		if worked(day) {
			run++
			continue
		}
		total += excess(run, limit)
		run = 0
	}
	total += excess(run, limit)
	return total
}

// swappedWorked 返回交换执行后某名助理每天是否有班次的视图
func swappedWorked(s *Solution, m *SwapMove, employeeIndex, otherIndex int) func(day int) bool {
	return func(day int) bool {
		if day >= m.StartDayIndex && day <= m.EndDayIndex() {
			return s.Assignment(day, otherIndex) != nil
		}
		return s.Assignment(day, employeeIndex) != nil
	}
}

func (e *maxConsecutiveEvaluator) employeeExcess(s *Solution, employeeIndex int) int {
	limit := s.Problem().Employees()[employeeIndex].Contract.MaxConsecutiveWorkDays
	return consecutiveExcess(func(day int) bool {
		return s.Assignment(day, employeeIndex) != nil
	}, s.Problem().Period().Size(), limit)
}

func (e *maxConsecutiveEvaluator) Cost(s *Solution) int {
	cost := 0
	for employee := range s.Problem().Employees() {
		cost += e.employeeExcess(s, employee)
	}
	return cost
}

func (e *maxConsecutiveEvaluator) swappedExcess(s *Solution, m *SwapMove, employeeIndex, otherIndex int) int {
	limit := s.Problem().Employees()[employeeIndex].Contract.MaxConsecutiveWorkDays
	return consecutiveExcess(swappedWorked(s, m, employeeIndex, otherIndex), s.Problem().Period().Size(), limit)
}

func (e *maxConsecutiveEvaluator) SwapMoveCostDifference(s *Solution, m *SwapMove) int {
	if !m.ModifiesAssignments(s) {
		return 0
	}
	return e.swappedExcess(s, m, m.Employee1Index, m.Employee2Index) - e.employeeExcess(s, m.Employee1Index) +
		e.swappedExcess(s, m, m.Employee2Index, m.Employee1Index) - e.employeeExcess(s, m.Employee2Index)
}

func (e *maxConsecutiveEvaluator) ConstraintSatisfactionDifference(s *Solution, m *SwapMove) (int, int) {
	if !m.ModifiesAssignments(s) {
		return 0, 0
	}

	satisfied, unsatisfied := 0, 0
	for _, pair := range [][2]int{
		{m.Employee1Index, m.Employee2Index},
		{m.Employee2Index, m.Employee1Index},
	} {
		before := e.employeeExcess(s, pair[0]) > 0
		after := e.swappedExcess(s, m, pair[0], pair[1]) > 0
		if before && !after {
			satisfied++
		} else if !before && after {
			unsatisfied++
		}
	}
	return satisfied, unsatisfied
}

func (e *maxConsecutiveEvaluator) EstimatedAssignmentCost(s *Solution, employeeIndex int, shift *Shift, dayIndex int) int {
	limit := s.Problem().Employees()[employeeIndex].Contract.MaxConsecutiveWorkDays
	days := s.Problem().Period().Size()

	// 计算分配后会形成的连续工作区间长度
	run := 1
	for day := dayIndex - 1; day >= 0 && s.Assignment(day, employeeIndex) != nil; day-- {
		run++
	}
	for day := dayIndex + 1; day < days && s.Assignment(day, employeeIndex) != nil; day++ {
		run++
	}
	return excess(run, limit)
}

func (e *maxConsecutiveEvaluator) Violations(s *Solution) []Violation {
	violations := []Violation{}
	for employee, info := range s.Problem().Employees() {
		if over := e.employeeExcess(s, employee); over > 0 {
			violations = append(violations, Violation{
				ConstraintName: e.constraint.Name(),
				RankIndex:      e.constraint.RankIndex(),
				Description:    fmt.Sprintf("助理 %s 连续工作天数超出上限 %d 天", info.Name, over),
			})
		}
	}
	return violations
}
