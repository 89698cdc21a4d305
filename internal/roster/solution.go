package roster

// Solution: 一张排班表
// assignments[日][助理] 为分配到的班次，nil 表示当天不值班
// unassignedSlots[日] 为当天还没有分配出去的班次需求
type Solution struct {
	problem         *Problem
	assignments     [][]*Shift
	unassignedSlots [][]*Shift

	evaluation Evaluation
	evaluated  bool
	violations []Violation
}

// NewSolution 创建一张空的排班表，所有需求都进入未分配列表
func NewSolution(problem *Problem) *Solution {
	days := problem.Period().Size()

	s := &Solution{
		problem:         problem,
		assignments:     make([][]*Shift, days),
		unassignedSlots: make([][]*Shift, days),
	}

	for day := 0; day < days; day++ {
		s.assignments[day] = make([]*Shift, len(problem.Employees()))
		s.unassignedSlots[day] = []*Shift{}
		for _, shift := range problem.Shifts() {
			for i := 0; i < problem.Demand(shift, day); i++ {
				s.unassignedSlots[day] = append(s.unassignedSlots[day], shift)
			}
		}
	}

	return s
}

// Clone 深拷贝排班内容，问题本身只共享引用
func (s *Solution) Clone() *Solution {
	c := &Solution{
		problem:         s.problem,
		assignments:     make([][]*Shift, len(s.assignments)),
		unassignedSlots: make([][]*Shift, len(s.unassignedSlots)),
		evaluated:       s.evaluated,
	}

	for day := range s.assignments {
		c.assignments[day] = make([]*Shift, len(s.assignments[day]))
		copy(c.assignments[day], s.assignments[day])
	}
	for day := range s.unassignedSlots {
		c.unassignedSlots[day] = make([]*Shift, len(s.unassignedSlots[day]))
		copy(c.unassignedSlots[day], s.unassignedSlots[day])
	}
	if s.evaluated {
		c.evaluation = s.evaluation.Clone()
	}

	return c
}

func (s *Solution) Problem() *Problem {
	return s.problem
}

func (s *Solution) Assignment(dayIndex, employeeIndex int) *Shift {
	return s.assignments[dayIndex][employeeIndex]
}

// SetAssignment 直接写入某个格子，调用方负责维护评估缓存
func (s *Solution) SetAssignment(dayIndex, employeeIndex int, shift *Shift) {
	s.assignments[dayIndex][employeeIndex] = shift
}

func (s *Solution) UnassignedSlotCount(dayIndex int) int {
	return len(s.unassignedSlots[dayIndex])
}

func (s *Solution) UnassignedSlot(dayIndex, slotIndex int) *Shift {
	return s.unassignedSlots[dayIndex][slotIndex]
}

// TakeUnassignedSlot 取走某天的一个未分配班次
func (s *Solution) TakeUnassignedSlot(dayIndex, slotIndex int) *Shift {
	shift := s.unassignedSlots[dayIndex][slotIndex]
	s.unassignedSlots[dayIndex] = append(
		s.unassignedSlots[dayIndex][:slotIndex],
		s.unassignedSlots[dayIndex][slotIndex+1:]...,
	)
	return shift
}

func (s *Solution) AddUnassignedSlot(dayIndex int, shift *Shift) {
	s.unassignedSlots[dayIndex] = append(s.unassignedSlots[dayIndex], shift)
}

func (s *Solution) ClearUnassignedSlots(dayIndex int) {
	s.unassignedSlots[dayIndex] = []*Shift{}
}

// Evaluation 返回排班的代价向量，必要时重新计算并缓存
func (s *Solution) Evaluation() Evaluation {
	if s.evaluated {
		return s.evaluation
	}

	eval := NewEvaluation(s.problem.MaxConstraintRankIndex() + 1)
	for rank := 0; rank <= s.problem.MaxConstraintRankIndex(); rank++ {
		for _, c := range s.problem.Constraints(rank) {
			eval[rank] += c.Evaluator(s.problem).Cost(s)
		}
	}

	s.evaluation = eval
	s.evaluated = true
	return s.evaluation
}

// SetEvaluation 直接写入评估缓存，用于增量评估后的快速更新
func (s *Solution) SetEvaluation(e Evaluation) {
	s.evaluation = e
	s.evaluated = true
	s.violations = nil
}

// InvalidateEvaluation 在排班内容被修改后使缓存失效
func (s *Solution) InvalidateEvaluation() {
	s.evaluation = nil
	s.evaluated = false
	s.violations = nil
}

// Violations 返回当前排班违反的约束明细，必要时重新计算并缓存
func (s *Solution) Violations() []Violation {
	if s.violations != nil {
		return s.violations
	}

	violations := []Violation{}
	for rank := 0; rank <= s.problem.MaxConstraintRankIndex(); rank++ {
		for _, c := range s.problem.Constraints(rank) {
			violations = append(violations, c.Evaluator(s.problem).Violations(s)...)
		}
	}

	s.violations = violations
	return s.violations
}

// Distance 统计两张排班表中分配不同的格子数量
func (s *Solution) Distance(other *Solution) int {
	distance := 0
	for day := range s.assignments {
		for employee := range s.assignments[day] {
			if s.assignments[day][employee] != other.assignments[day][employee] {
				distance++
			}
		}
	}
	return distance
}

// EqualAssignments 判断两张排班表的分配内容是否完全相同
func (s *Solution) EqualAssignments(other *Solution) bool {
	return s.Distance(other) == 0
}
