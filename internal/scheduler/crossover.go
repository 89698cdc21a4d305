package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// BlockCrossover: 块交叉
// 把排班周期切成随机大小的块，交替保留父代一与复制父代二的整列安排，
// 第一个块总是保留父代一
type BlockCrossover struct {
	rng        *rand.Rand
	blockSizes []int

	initialSolution1 *roster.Solution
	initialSolution2 *roster.Solution
	crossSolution    *roster.Solution
	done             bool
}

func NewBlockCrossover(problem *roster.Problem, rng *rand.Rand, blockSizes []int) (*BlockCrossover, error) {
	if problem == nil || rng == nil || len(blockSizes) == 0 {
		return nil, ErrInvalidArgument
	}
	for _, size := range blockSizes {
		if size < 1 {
			return nil, ErrInvalidArgument
		}
	}
	return &BlockCrossover{
		rng:        rng,
		blockSizes: append([]int(nil), blockSizes...),
	}, nil
}

// Init 需要恰好两个父代排班
func (c *BlockCrossover) Init(solutions ...*roster.Solution) error {
	if len(solutions) != 2 || solutions[0] == nil || solutions[1] == nil {
		return ErrInvalidArgument
	}
	c.initialSolution1 = solutions[0]
	c.initialSolution2 = solutions[1]
	c.crossSolution = nil
	c.done = false
	return nil
}

// NextStep 一步完成整个交叉过程
func (c *BlockCrossover) NextStep() (bool, error) {
	if c.initialSolution1 == nil {
		return false, ErrNotInitialized
	}
	c.crossSolution = c.cross(c.initialSolution1, c.initialSolution2)
	c.done = true
	return false, nil
}

func (c *BlockCrossover) cross(solution1, solution2 *roster.Solution) *roster.Solution {
	result := solution1.Clone()
	result.InvalidateEvaluation()

	problem := result.Problem()
	days := problem.Period().Size()
	employees := len(problem.Employees())

	copyBlock := false
	startDayIndex := 0
	for startDayIndex < days {
		blockSize := c.blockSizes[c.rng.Intn(len(c.blockSizes))]
		if copyBlock {
			for dayIndex := startDayIndex; dayIndex < days &&
				dayIndex < startDayIndex+blockSize; dayIndex++ {
				for employeeIndex := 0; employeeIndex < employees; employeeIndex++ {
					result.SetAssignment(dayIndex, employeeIndex,
						solution2.Assignment(dayIndex, employeeIndex))
				}
			}
		}
		startDayIndex += blockSize
		copyBlock = !copyBlock
	}
	return result
}

func (c *BlockCrossover) IsDone() bool {
	return c.done
}

func (c *BlockCrossover) Result() *roster.Solution {
	if !c.done {
		return nil
	}
	return c.crossSolution
}
