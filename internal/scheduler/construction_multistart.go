package scheduler

import (
	"log/slog"
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// MultistartGreedyConstruction: 多次运行贪心构造并保留其中最优的排班
type MultistartGreedyConstruction struct {
	nbGenerations        int
	remainingGenerations int

	bestFound           *roster.Solution
	generationProcedure *GreedyConstruction
}

func NewMultistartGreedyConstruction(problem *roster.Problem, rng *rand.Rand, nbGenerations int) (*MultistartGreedyConstruction, error) {
	if nbGenerations <= 0 {
		return nil, ErrInvalidArgument
	}
	generationProcedure, err := NewGreedyConstruction(problem, rng)
	if err != nil {
		return nil, err
	}
	return &MultistartGreedyConstruction{
		nbGenerations:        nbGenerations,
		remainingGenerations: nbGenerations,
		generationProcedure:  generationProcedure,
	}, nil
}

// Init 重置构造过程，多起点构造不接受初始排班
func (c *MultistartGreedyConstruction) Init(solutions ...*roster.Solution) error {
	if len(solutions) > 0 {
		slog.Warn("多起点贪心构造不使用初始排班")
	}
	c.remainingGenerations = c.nbGenerations
	c.bestFound = nil
	return c.generationProcedure.Init()
}

// NextStep 推进一轮贪心构造，构造完成时更新最优排班
func (c *MultistartGreedyConstruction) NextStep() (bool, error) {
	if c.IsDone() {
		return false, nil
	}
	if c.generationProcedure.IsDone() {
		if err := c.generationProcedure.Init(); err != nil {
			return false, err
		}
	}
	if _, err := c.generationProcedure.NextStep(); err != nil {
		return false, err
	}

	if c.generationProcedure.IsDone() {
		c.remainingGenerations--
		generated := c.generationProcedure.Result()
		if c.bestFound == nil ||
			generated.Evaluation().Compare(c.bestFound.Evaluation()) < 0 {
			c.bestFound = generated
		}
	}
	return !c.IsDone(), nil
}

func (c *MultistartGreedyConstruction) IsDone() bool {
	return c.remainingGenerations == 0 && c.generationProcedure.IsDone()
}

// Result 返回目前为止最优的排班，可能是中间结果
func (c *MultistartGreedyConstruction) Result() *roster.Solution {
	return c.bestFound
}
