package roster

import "fmt"

// Shift: 一种班次类型
type Shift struct {
	ID        int64
	Label     string
	StartTime string // 格式为 15:04:05，和班表模板保持一致
	EndTime   string
}

// Contract: 助理在排班周期内需要遵守的工作规则参数
type Contract struct {
	Name                   string
	MaxAssignments         int // 周期内最多承担的班次数
	MaxConsecutiveWorkDays int // 最多连续工作的天数
}

// Employee: 参与排班的助理
type Employee struct {
	ID       int64
	Name     string
	Contract *Contract
}

// Problem: 一次排班求解的完整输入
// 包括助理、班次、每日需求以及按等级分组的约束
type Problem struct {
	employees   []*Employee
	shifts      []*Shift
	contracts   []*Contract
	period      *SchedulingPeriod
	demand      [][]int // [班次下标][日下标]
	shiftIndex  map[int64]int
	constraints [][]Constraint // 按等级分组，下标即等级
}

func NewProblem(period *SchedulingPeriod, employees []*Employee, shifts []*Shift, demand [][]int) (*Problem, error) {
	if period == nil {
		return nil, fmt.Errorf("排班周期不能为空")
	}
	if len(employees) < 1 {
		return nil, fmt.Errorf("至少需要一名助理")
	}
	if len(shifts) < 1 {
		return nil, fmt.Errorf("至少需要一种班次")
	}
	if len(demand) != len(shifts) {
		return nil, fmt.Errorf("需求矩阵的班次数量和班次列表不匹配")
	}

	p := &Problem{
		employees:   employees,
		shifts:      shifts,
		period:      period,
		demand:      demand,
		shiftIndex:  make(map[int64]int, len(shifts)),
		constraints: [][]Constraint{},
	}

	for i, shift := range shifts {
		if len(demand[i]) != period.Size() {
			return nil, fmt.Errorf("班次 %s 的需求天数和排班周期不匹配", shift.Label)
		}
		for _, d := range demand[i] {
			if d < 0 {
				return nil, fmt.Errorf("班次 %s 存在负的需求量", shift.Label)
			}
		}
		p.shiftIndex[shift.ID] = i
	}

	// 收集去重后的合同列表
	seen := make(map[*Contract]bool)
	for _, employee := range employees {
		if employee.Contract == nil {
			return nil, fmt.Errorf("助理 %s 没有绑定合同", employee.Name)
		}
		if !seen[employee.Contract] {
			seen[employee.Contract] = true
			p.contracts = append(p.contracts, employee.Contract)
		}
	}

	return p, nil
}

func (p *Problem) Employees() []*Employee {
	return p.employees
}

func (p *Problem) Shifts() []*Shift {
	return p.shifts
}

func (p *Problem) Contracts() []*Contract {
	return p.contracts
}

func (p *Problem) Period() *SchedulingPeriod {
	return p.period
}

// Demand 返回某个班次在某一天的需求人数
func (p *Problem) Demand(shift *Shift, dayIndex int) int {
	return p.demand[p.shiftIndex[shift.ID]][dayIndex]
}

// ShiftIndex 返回班次在班次列表中的下标
func (p *Problem) ShiftIndex(shift *Shift) int {
	return p.shiftIndex[shift.ID]
}

// AddConstraint 把约束按其等级放入对应的分组中
func (p *Problem) AddConstraint(c Constraint) {
	for len(p.constraints) <= c.RankIndex() {
		p.constraints = append(p.constraints, []Constraint{})
	}
	p.constraints[c.RankIndex()] = append(p.constraints[c.RankIndex()], c)
}

// Constraints 返回某个等级下的所有约束
func (p *Problem) Constraints(rankIndex int) []Constraint {
	if rankIndex < 0 || rankIndex >= len(p.constraints) {
		return nil
	}
	return p.constraints[rankIndex]
}

func (p *Problem) MaxConstraintRankIndex() int {
	return len(p.constraints) - 1
}
