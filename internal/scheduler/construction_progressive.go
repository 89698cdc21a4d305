package scheduler

import (
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// progressiveBlockSizes 渐进下降使用的邻域块大小阶梯
var progressiveBlockSizes = []int{1, 2, 3, 5, 7}

// ConstructionWithProgressiveDescent: 先快速构造，再逐个引入约束并用偏置下降改善
// 覆盖类约束从一开始就处于激活状态，其余约束按等级从高到低随机顺序逐个激活
type ConstructionWithProgressiveDescent struct {
	problem *roster.Problem
	rng     *rand.Rand

	currentSolution *roster.Solution
	done            bool

	activeConstraints          [][]roster.Constraint
	disabledConstraints        [][]roster.Constraint
	remainsDisabledConstraints bool

	vnd                   *BiasedVariableNeighborhoodDescent
	constructionProcedure *FastBlockConstruction
}

func NewConstructionWithProgressiveDescent(problem *roster.Problem, rng *rand.Rand) (*ConstructionWithProgressiveDescent, error) {
	if problem == nil || rng == nil {
		return nil, ErrInvalidArgument
	}
	return &ConstructionWithProgressiveDescent{problem: problem, rng: rng}, nil
}

// Init 重置构造过程并重新划分激活与未激活的约束集合
func (c *ConstructionWithProgressiveDescent) Init(solutions ...*roster.Solution) error {
	if len(solutions) > 0 {
		slog.Warn("渐进下降构造不使用初始排班")
	}
	c.done = false
	c.currentSolution = nil
	c.vnd = nil

	c.activeConstraints = nil
	c.disabledConstraints = nil
	c.remainsDisabledConstraints = true
	for rankIndex := 0; rankIndex <= c.problem.MaxConstraintRankIndex(); rankIndex++ {
		activeSet := []roster.Constraint{}
		disabledSet := []roster.Constraint{}
		for _, constraint := range c.problem.Constraints(rankIndex) {
			// 覆盖类约束直接激活，保证下降过程不破坏需求覆盖
			if _, ok := constraint.(roster.CoverageConstraint); ok {
				activeSet = append(activeSet, constraint)
			} else {
				disabledSet = append(disabledSet, constraint)
			}
		}
		c.rng.Shuffle(len(disabledSet), func(i, j int) {
			disabledSet[i], disabledSet[j] = disabledSet[j], disabledSet[i]
		})
		c.activeConstraints = append(c.activeConstraints, activeSet)
		c.disabledConstraints = append(c.disabledConstraints, disabledSet)
	}

	construction, err := NewFastBlockConstruction(c.problem, c.rng)
	if err != nil {
		return err
	}
	c.constructionProcedure = construction
	return nil
}

// NextStep 推进构造过程：初次构造、一步下降或激活下一个约束
func (c *ConstructionWithProgressiveDescent) NextStep() (bool, error) {
	if c.constructionProcedure == nil {
		return false, ErrNotInitialized
	}
	if c.done {
		return false, nil
	}

	if c.currentSolution == nil {
		if err := c.constructionProcedure.Init(); err != nil {
			return false, err
		}
		for {
			more, err := c.constructionProcedure.NextStep()
			if err != nil {
				return false, err
			}
			if !more {
				break
			}
		}
		c.currentSolution = c.constructionProcedure.Result()
		return true, nil
	}

	if c.vnd != nil && !c.vnd.IsDone() {
		if _, err := c.vnd.NextStep(); err != nil {
			return false, err
		}
		return true, nil
	}

	if !c.remainsDisabledConstraints {
		c.done = true
		return false, nil
	}

	c.activateNextConstraint()
	vnd, err := NewBiasedVariableNeighborhoodDescent(
		progressiveBlockSizes, c.rng, c.activeConstraints)
	if err != nil {
		return false, err
	}
	if err := vnd.Init(c.currentSolution); err != nil {
		return false, err
	}
	c.vnd = vnd
	return true, nil
}

// activateNextConstraint 激活等级最高的未激活约束
// 没有剩余的未激活约束时更新结束标记
func (c *ConstructionWithProgressiveDescent) activateNextConstraint() {
	rankIndex := 0
	for rankIndex < len(c.disabledConstraints) && len(c.disabledConstraints[rankIndex]) == 0 {
		rankIndex++
	}
	if rankIndex == len(c.disabledConstraints) {
		c.remainsDisabledConstraints = false
		return
	}

	c.activeConstraints[rankIndex] = append(
		c.activeConstraints[rankIndex], c.disabledConstraints[rankIndex][0])
	c.disabledConstraints[rankIndex] = c.disabledConstraints[rankIndex][1:]

	if rankIndex == len(c.disabledConstraints)-1 &&
		len(c.disabledConstraints[rankIndex]) == 0 {
		c.remainsDisabledConstraints = false
	}
}

func (c *ConstructionWithProgressiveDescent) IsDone() bool {
	return c.done
}

func (c *ConstructionWithProgressiveDescent) Result() *roster.Solution {
	if !c.done {
		return nil
	}
	return c.currentSolution
}
