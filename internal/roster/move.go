package roster

import "fmt"

// SwapMove: 在一段连续的天数内交换两名助理的全部班次
type SwapMove struct {
	Employee1Index int
	Employee2Index int
	StartDayIndex  int
	BlockSize      int
}

func NewSwapMove(employee1Index, employee2Index, startDayIndex, blockSize int) (*SwapMove, error) {
	if employee1Index < 0 || employee2Index < 0 || employee1Index == employee2Index {
		return nil, fmt.Errorf("交换操作需要两名不同的助理")
	}
	if startDayIndex < 0 {
		return nil, fmt.Errorf("交换操作的起始日下标不能为负数")
	}
	if blockSize < 1 {
		return nil, fmt.Errorf("交换操作的块长度必须大于 0")
	}
	return &SwapMove{
		Employee1Index: employee1Index,
		Employee2Index: employee2Index,
		StartDayIndex:  startDayIndex,
		BlockSize:      blockSize,
	}, nil
}

func (m *SwapMove) EndDayIndex() int {
	return m.StartDayIndex + m.BlockSize - 1
}

// ModifiesAssignments 判断交换是否会实际改变排班内容
// 只要区间内存在某一天两名助理的班次不同，交换就有效果
func (m *SwapMove) ModifiesAssignments(s *Solution) bool {
	for day := m.StartDayIndex; day <= m.EndDayIndex(); day++ {
		if s.Assignment(day, m.Employee1Index) != s.Assignment(day, m.Employee2Index) {
			return true
		}
	}
	return false
}

// Apply 执行交换，只修改格子内容，评估缓存由调用方维护
func (m *SwapMove) Apply(s *Solution) {
	for day := m.StartDayIndex; day <= m.EndDayIndex(); day++ {
		a1 := s.Assignment(day, m.Employee1Index)
		a2 := s.Assignment(day, m.Employee2Index)
		s.SetAssignment(day, m.Employee1Index, a2)
		s.SetAssignment(day, m.Employee2Index, a1)
	}
}

// ResultingDistance 返回交换会改变的格子数量，每个不同的天贡献两个格子
func (m *SwapMove) ResultingDistance(s *Solution) int {
	distance := 0
	for day := m.StartDayIndex; day <= m.EndDayIndex(); day++ {
		if s.Assignment(day, m.Employee1Index) != s.Assignment(day, m.Employee2Index) {
			distance += 2
		}
	}
	return distance
}

// Evaluate 通过各约束的增量计算交换执行后的完整代价向量
func (m *SwapMove) Evaluate(s *Solution) Evaluation {
	problem := s.Problem()
	eval := s.Evaluation().Clone()
	for rank := 0; rank <= problem.MaxConstraintRankIndex(); rank++ {
		for _, c := range problem.Constraints(rank) {
			eval[rank] += c.Evaluator(problem).SwapMoveCostDifference(s, m)
		}
	}
	return eval
}

// RemoveReplaceMove: 把某一天的一个班次槽位从一个位置挪到另一个位置
// 助理下标为 -1 表示未分配槽位列表
type RemoveReplaceMove struct {
	originEmployeeIndex int
	targetEmployeeIndex int
	shiftSlot           *Shift
	dayIndex            int
}

func NewRemoveReplaceMove(originEmployeeIndex, targetEmployeeIndex int, shiftSlot *Shift, dayIndex int) (*RemoveReplaceMove, error) {
	if originEmployeeIndex < -1 || targetEmployeeIndex < -1 {
		return nil, fmt.Errorf("助理下标不能小于 -1")
	}
	if shiftSlot == nil {
		return nil, fmt.Errorf("班次槽位不能为空")
	}
	if dayIndex < 0 {
		return nil, fmt.Errorf("日下标不能为负数")
	}
	return &RemoveReplaceMove{
		originEmployeeIndex: originEmployeeIndex,
		targetEmployeeIndex: targetEmployeeIndex,
		shiftSlot:           shiftSlot,
		dayIndex:            dayIndex,
	}, nil
}

func (m *RemoveReplaceMove) OriginEmployeeIndex() int {
	return m.originEmployeeIndex
}

func (m *RemoveReplaceMove) SetOriginEmployeeIndex(index int) error {
	if index < -1 {
		return fmt.Errorf("助理下标不能小于 -1")
	}
	m.originEmployeeIndex = index
	return nil
}

func (m *RemoveReplaceMove) TargetEmployeeIndex() int {
	return m.targetEmployeeIndex
}

func (m *RemoveReplaceMove) SetTargetEmployeeIndex(index int) error {
	if index < -1 {
		return fmt.Errorf("助理下标不能小于 -1")
	}
	m.targetEmployeeIndex = index
	return nil
}

func (m *RemoveReplaceMove) ShiftSlot() *Shift {
	return m.shiftSlot
}

func (m *RemoveReplaceMove) DayIndex() int {
	return m.dayIndex
}

// Apply 执行槽位转移并使评估缓存失效
func (m *RemoveReplaceMove) Apply(s *Solution) error {
	// 先校验两端，避免转移到一半时排班进入不一致状态
	originSlotIndex := -1
	if m.originEmployeeIndex == -1 {
		for i := 0; i < s.UnassignedSlotCount(m.dayIndex); i++ {
			if s.UnassignedSlot(m.dayIndex, i) == m.shiftSlot {
				originSlotIndex = i
				break
			}
		}
		if originSlotIndex == -1 {
			return fmt.Errorf("未分配列表中不存在该班次槽位")
		}
	} else if s.Assignment(m.dayIndex, m.originEmployeeIndex) != m.shiftSlot {
		return fmt.Errorf("来源助理在当天没有承担该班次")
	}
	if m.targetEmployeeIndex != -1 && s.Assignment(m.dayIndex, m.targetEmployeeIndex) != nil {
		return fmt.Errorf("目标助理在当天已经有班次")
	}

	// 从来源位置取出槽位
	if m.originEmployeeIndex == -1 {
		s.TakeUnassignedSlot(m.dayIndex, originSlotIndex)
	} else {
		s.SetAssignment(m.dayIndex, m.originEmployeeIndex, nil)
	}

	// 放入目标位置
	if m.targetEmployeeIndex == -1 {
		s.AddUnassignedSlot(m.dayIndex, m.shiftSlot)
	} else {
		s.SetAssignment(m.dayIndex, m.targetEmployeeIndex, m.shiftSlot)
	}

	s.InvalidateEvaluation()
	return nil
}
