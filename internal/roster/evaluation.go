package roster

import (
	"fmt"
	"strings"
)

// Evaluation: 按约束等级排列的代价向量，下标 0 为最高等级
// 比较时按字典序进行，越小代表排班质量越好
type Evaluation []int

// NewEvaluation 创建一个全零的代价向量
func NewEvaluation(size int) Evaluation {
	return make(Evaluation, size)
}

func (e Evaluation) Cost(rankIndex int) int {
	return e[rankIndex]
}

// Compare 按字典序比较两个代价向量
// 返回负数表示 e 更优，正数表示 other 更优，0 表示两者代价相同
func (e Evaluation) Compare(other Evaluation) int {
	for i := range e {
		if e[i] != other[i] {
			return e[i] - other[i]
		}
	}
	return 0
}

// Equal 逐项判断两个代价向量是否相等
func (e Evaluation) Equal(other Evaluation) bool {
	if len(e) != len(other) {
		return false
	}
	return e.Compare(other) == 0
}

func (e Evaluation) Clone() Evaluation {
	c := make(Evaluation, len(e))
	copy(c, e)
	return c
}

// Add 逐项累加增量并返回新的代价向量，不修改原向量
func (e Evaluation) Add(delta Evaluation) Evaluation {
	c := e.Clone()
	for i := range delta {
		c[i] += delta[i]
	}
	return c
}

func (e Evaluation) String() string {
	parts := make([]string, len(e))
	for i, cost := range e {
		parts[i] = fmt.Sprintf("%d", cost)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
