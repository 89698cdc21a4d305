package roster

// Constraint: 引擎只通过这组接口访问约束，不区分具体种类
type Constraint interface {
	Name() string
	// RankIndex 返回约束所属的等级，0 为最高等级
	RankIndex() int
	// Evaluator 返回约束的代价计算器，多次调用返回同一个实例
	Evaluator(p *Problem) Evaluator
}

// Evaluator: 单个约束的代价计算器
type Evaluator interface {
	// Cost 计算当前排班在此约束下的总代价
	Cost(s *Solution) int
	// SwapMoveCostDifference 计算交换操作执行后的代价减去执行前的代价
	// 负数表示交换会改善此约束
	SwapMoveCostDifference(s *Solution, m *SwapMove) int
	// ConstraintSatisfactionDifference 计算交换操作会使多少个约束单元
	// 从违反变为满足（第一个返回值）以及从满足变为违反（第二个返回值）
	ConstraintSatisfactionDifference(s *Solution, m *SwapMove) (satisfied, unsatisfied int)
	// EstimatedAssignmentCost 估计把某个班次分配给某个助理的代价，用于贪心构造
	EstimatedAssignmentCost(s *Solution, employeeIndex int, shift *Shift, dayIndex int) int
	HasPreferredAssignment(dayIndex, employeeIndex int) bool
	HasUnwantedAssignment(dayIndex, employeeIndex int) bool
	IsPreferredAssignment(dayIndex, employeeIndex int, shift *Shift) bool
	// Violations 列出当前排班违反此约束的明细
	Violations(s *Solution) []Violation
}

// Violation: 一条约束违反明细
type Violation struct {
	ConstraintName string `json:"constraintName"`
	RankIndex      int    `json:"rankIndex"`
	Description    string `json:"description"`
}

// CoverageConstraint 标记保证覆盖需求的约束
// 渐进式构造会把实现了此接口的约束放入初始激活集合
type CoverageConstraint interface {
	Constraint
	coverageConstraint()
}

// noPreferences 为不涉及偏好查询的约束提供默认实现
type noPreferences struct{}

func (noPreferences) HasPreferredAssignment(dayIndex, employeeIndex int) bool {
	return false
}

func (noPreferences) HasUnwantedAssignment(dayIndex, employeeIndex int) bool {
	return false
}

func (noPreferences) IsPreferredAssignment(dayIndex, employeeIndex int, shift *Shift) bool {
	return false
}
