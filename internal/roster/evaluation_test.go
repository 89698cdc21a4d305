package roster

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluationCompare(t *testing.T) {
	a := Evaluation{0, 2, 5}
	b := Evaluation{0, 3, 0}
	c := Evaluation{1, 0, 0}

	// 字典序：高等级的代价优先比较
	require.Negative(t, a.Compare(b))
	require.Negative(t, b.Compare(c))
	require.Negative(t, a.Compare(c))

	// 反对称
	require.Positive(t, b.Compare(a))
	require.Positive(t, c.Compare(a))

	// 自反
	require.Zero(t, a.Compare(a))
	require.True(t, a.Equal(Evaluation{0, 2, 5}))
	require.False(t, a.Equal(b))
	require.False(t, a.Equal(Evaluation{0, 2}))
}

func TestEvaluationAdd(t *testing.T) {
	base := Evaluation{3, 1, 4}
	delta := Evaluation{-1, 0, 2}

	sum := base.Add(delta)
	require.Equal(t, Evaluation{2, 1, 6}, sum)
	// Add 不修改原向量
	require.Equal(t, Evaluation{3, 1, 4}, base)
}

func TestEvaluationClone(t *testing.T) {
	base := Evaluation{1, 2, 3}
	clone := base.Clone()
	clone[0] = 9
	require.Equal(t, Evaluation{1, 2, 3}, base)
}

func TestEvaluationString(t *testing.T) {
	require.Equal(t, "(1,2,3)", Evaluation{1, 2, 3}.String())
	require.Equal(t, "()", Evaluation{}.String())
}
