package scheduler

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// SolutionInsertionStrategy: 种群满员时的替换策略
type SolutionInsertionStrategy int

const (
	// ReplaceNext 轮转替换下一个位置的排班
	ReplaceNext SolutionInsertionStrategy = iota
	// ReplaceOneOfWorst 随机替换评估最差的排班之一
	ReplaceOneOfWorst
	// ReplaceInWorstSet 在最差的一部分排班中随机替换
	ReplaceInWorstSet
)

// 最差集合占种群的比例
const defaultWorstSetRatio = 0.1

// SolutionPool: 模因算法的种群
// 保存容量有限的一组排班，入池时按策略替换并拒绝重复排班
// 方法都在互斥锁内执行，可被多个搜索协程并发调用
type SolutionPool struct {
	mu        sync.Mutex
	solutions []*roster.Solution
	rng       *rand.Rand
	crossover *BlockCrossover
	capacity  int

	insertionIndex    int
	insertionStrategy SolutionInsertionStrategy
	worstSetRatio     float64
}

func NewSolutionPool(problem *roster.Problem, capacity int, crossoverBlockSizes []int, rngSeed int64) (*SolutionPool, error) {
	if problem == nil || capacity < 1 {
		return nil, ErrInvalidArgument
	}
	rng := rand.New(rand.NewSource(rngSeed))
	crossover, err := NewBlockCrossover(problem, rng, crossoverBlockSizes)
	if err != nil {
		return nil, err
	}
	return &SolutionPool{
		solutions:         make([]*roster.Solution, 0, capacity),
		rng:               rng,
		crossover:         crossover,
		capacity:          capacity,
		insertionStrategy: ReplaceInWorstSet,
		worstSetRatio:     defaultWorstSetRatio,
	}, nil
}

// SetInsertionStrategy 设置种群满员时的替换策略
func (p *SolutionPool) SetInsertionStrategy(strategy SolutionInsertionStrategy) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.insertionStrategy = strategy
}

// Len 返回种群中的排班数量
func (p *SolutionPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.solutions)
}

// Evaluations 返回种群中全部排班的评估副本
func (p *SolutionPool) Evaluations() []roster.Evaluation {
	p.mu.Lock()
	defer p.mu.Unlock()
	evaluations := make([]roster.Evaluation, len(p.solutions))
	for i, solution := range p.solutions {
		evaluations[i] = solution.Evaluation().Clone()
	}
	return evaluations
}

// OffspringSolution 随机取两份不同的排班做块交叉并返回后代
// 种群中排班不足两份时返回 nil
func (p *SolutionPool) OffspringSolution() (*roster.Solution, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.solutions) <= 1 {
		return nil, nil
	}
	firstIndex := p.rng.Intn(len(p.solutions))
	secondIndex := p.rng.Intn(len(p.solutions))
	for firstIndex == secondIndex {
		secondIndex = p.rng.Intn(len(p.solutions))
	}
	return RunOperator(p.crossover, p.solutions[firstIndex], p.solutions[secondIndex])
}

// Select 依据选择准则决定给定排班是否进入种群，入池时保存副本
// 与池中某份排班评估相同且逐格一致的排班会被拒绝
func (p *SolutionPool) Select(toInsert *roster.Solution) {
	if toInsert == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.solutions) == 0 {
		p.solutions = append(p.solutions, toInsert.Clone())
		return
	}

	toInsertEvaluation := toInsert.Evaluation()
	var (
		worstIndexes    []int
		worstEvaluation roster.Evaluation
	)
	for inPoolIndex, inPool := range p.solutions {
		inPoolEvaluation := inPool.Evaluation()
		// 维护最差排班的下标集合
		if worstEvaluation == nil {
			worstEvaluation = inPoolEvaluation
			worstIndexes = append(worstIndexes, inPoolIndex)
		} else {
			comparison := worstEvaluation.Compare(inPoolEvaluation)
			if comparison == 0 {
				worstIndexes = append(worstIndexes, inPoolIndex)
			} else if comparison < 0 {
				worstEvaluation = inPoolEvaluation
				worstIndexes = worstIndexes[:0]
				worstIndexes = append(worstIndexes, inPoolIndex)
			}
		}
		// 拒绝重复排班
		if inPoolEvaluation.Compare(toInsertEvaluation) == 0 &&
			toInsert.EqualAssignments(inPool) {
			return
		}
	}

	inserted := toInsert.Clone()
	if len(p.solutions) < p.capacity {
		p.solutions = append(p.solutions, inserted)
		return
	}

	switch p.insertionStrategy {
	case ReplaceNext:
		p.solutions[p.insertionIndex] = inserted
		p.insertionIndex = (p.insertionIndex + 1) % len(p.solutions)
	case ReplaceOneOfWorst:
		p.solutions[worstIndexes[p.rng.Intn(len(worstIndexes))]] = inserted
	case ReplaceInWorstSet:
		// 先洗牌再稳定排序（从差到好），让同分排班的相对顺序随机
		p.rng.Shuffle(len(p.solutions), func(i, j int) {
			p.solutions[i], p.solutions[j] = p.solutions[j], p.solutions[i]
		})
		sort.SliceStable(p.solutions, func(i, j int) bool {
			return p.solutions[i].Evaluation().Compare(p.solutions[j].Evaluation()) > 0
		})
		worstSetSize := int(p.worstSetRatio * float64(len(p.solutions)))
		if worstSetSize == 0 {
			worstSetSize = 1
		}
		p.solutions[p.rng.Intn(worstSetSize)] = inserted
	}
}
