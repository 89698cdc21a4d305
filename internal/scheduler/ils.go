package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// IteratedLocalSearch: 迭代局部搜索
// 初始排班由快速块构造生成，局部搜索使用变邻域下降，扰动使用块轮换
// 连续多次迭代没有改善时从一个新生成的排班重启
type IteratedLocalSearch struct {
	maxIterations               int
	worseSolutionAcceptanceRate float64
	restartIterations           int
	rng                         *rand.Rand

	currentSolution          *roster.Solution
	overallBestFoundSolution *roster.Solution
	restartBestFoundSolution *roster.Solution
	// restartBestFoundIteration 上一次刷新重启最优时的迭代序号
	restartBestFoundIteration int
	lastAcceptedSolution      *roster.Solution
	currentIteration          int

	localSearchProcedure    *VariableNeighborhoodDescent
	perturbationProcedure   *ExchangePerturbation
	generationProcedure     Operator
	reconstructionProcedure Operator
}

func NewIteratedLocalSearch(
	problem *roster.Problem,
	maxIterations int,
	perturbationStrength float64,
	worseSolutionAcceptanceRate float64,
	blockSizes []int,
	rng *rand.Rand,
	selectionPolicy NeighborSelectionPolicy,
	restartIterations int,
) (*IteratedLocalSearch, error) {
	if problem == nil || rng == nil {
		return nil, ErrInvalidArgument
	}
	if maxIterations < 1 || perturbationStrength < 0 ||
		worseSolutionAcceptanceRate < 0 || len(blockSizes) == 0 ||
		restartIterations < 0 {
		return nil, ErrInvalidArgument
	}

	localSearch, err := NewVariableNeighborhoodDescent(blockSizes, selectionPolicy, rng)
	if err != nil {
		return nil, err
	}
	perturbation, err := NewExchangePerturbation(problem, blockSizes, perturbationStrength, rng)
	if err != nil {
		return nil, err
	}
	generation, err := NewFastBlockConstruction(problem, rng)
	if err != nil {
		return nil, err
	}
	reconstruction, err := NewGreedyConstruction(problem, rng)
	if err != nil {
		return nil, err
	}

	return &IteratedLocalSearch{
		maxIterations:               maxIterations,
		worseSolutionAcceptanceRate: worseSolutionAcceptanceRate,
		restartIterations:           restartIterations,
		rng:                         rng,
		localSearchProcedure:        localSearch,
		perturbationProcedure:       perturbation,
		generationProcedure:         generation,
		reconstructionProcedure:     reconstruction,
	}, nil
}

// Init 重置搜索状态
// initialSolution 为 nil 时第一步会自动生成初始排班，否则对其做一次贪心重建
func (s *IteratedLocalSearch) Init(initialSolution *roster.Solution) {
	s.currentSolution = initialSolution
	s.overallBestFoundSolution = nil
	s.restartBestFoundSolution = nil
	s.restartBestFoundIteration = 0
	s.lastAcceptedSolution = nil
	s.currentIteration = 0
}

// NextStep 执行下一步搜索，返回 true 表示还有后续步骤
func (s *IteratedLocalSearch) NextStep() (bool, error) {
	if s.currentIteration == 0 {
		s.currentIteration = 1
		// 生成或重建初始排班
		var (
			generated *roster.Solution
			err       error
		)
		if s.currentSolution == nil {
			generated, err = RunOperator(s.generationProcedure)
		} else {
			generated, err = RunOperator(s.reconstructionProcedure, s.currentSolution)
		}
		if err != nil {
			return false, err
		}
		s.currentSolution = generated
		s.UpdateBestFoundSolution(s.currentSolution)
		s.lastAcceptedSolution = s.currentSolution.Clone()
		return true, s.localSearchProcedure.Init(s.currentSolution)
	}

	if s.currentIteration > s.maxIterations {
		return false, nil
	}

	if s.localSearchProcedure.IsDone() {
		// 一轮局部搜索结束，应用接受准则并扰动后开始下一轮
		if err := s.acceptAndPerturb(); err != nil {
			return false, err
		}
		return true, s.localSearchProcedure.Init(s.currentSolution)
	}

	if _, err := s.localSearchProcedure.NextStep(); err != nil {
		return false, err
	}
	s.UpdateBestFoundSolution(s.currentSolution)
	if s.localSearchProcedure.IsDone() {
		s.currentIteration++
	}
	return true, nil
}

// acceptAndPerturb 依据接受准则决定下一轮迭代的起点并施加扰动
func (s *IteratedLocalSearch) acceptAndPerturb() error {
	if s.currentIteration-s.restartBestFoundIteration > s.restartIterations {
		// 长时间没有改善，从一个新生成的排班重启
		generated, err := RunOperator(s.generationProcedure)
		if err != nil {
			return err
		}
		s.restartBestFoundSolution = generated
		s.restartBestFoundIteration = s.currentIteration
		s.currentSolution = s.restartBestFoundSolution.Clone()
		s.lastAcceptedSolution = s.currentSolution.Clone()
		return nil
	}

	if s.currentSolution == s.restartBestFoundSolution {
		// 当前排班就是重启以来的最优，复制一份再扰动，避免破坏最优记录
		s.currentSolution = s.restartBestFoundSolution.Clone()
		s.lastAcceptedSolution = s.currentSolution.Clone()
		return RunPerturbation(s.perturbationProcedure, s.currentSolution)
	}

	if s.currentSolution.Evaluation().Compare(s.restartBestFoundSolution.Evaluation()) > 0 {
		if s.rng.Float64() > s.worseSolutionAcceptanceRate {
			// 退回重启以来的最优
			s.currentSolution = s.restartBestFoundSolution.Clone()
			s.lastAcceptedSolution = s.currentSolution.Clone()
		} else {
			// 接受比最优更差的排班
			s.lastAcceptedSolution = s.currentSolution.Clone()
		}
	}
	return RunPerturbation(s.perturbationProcedure, s.currentSolution)
}

// IsDone 返回搜索是否已经结束
func (s *IteratedLocalSearch) IsDone() bool {
	return s.currentIteration > s.maxIterations
}

// BestFoundSolution 返回目前找到的最优排班，初始排班尚未生成时返回 nil
// 返回的是内部引用，调用方需要保留时应自行复制
func (s *IteratedLocalSearch) BestFoundSolution() *roster.Solution {
	return s.overallBestFoundSolution
}

// LastAcceptedSolution 返回最近一次被接受的排班，即当前迭代的起点
func (s *IteratedLocalSearch) LastAcceptedSolution() *roster.Solution {
	return s.lastAcceptedSolution
}

// CurrentSolution 返回当前排班
func (s *IteratedLocalSearch) CurrentSolution() *roster.Solution {
	return s.currentSolution
}

// CurrentIteration 返回当前迭代序号
func (s *IteratedLocalSearch) CurrentIteration() int {
	return s.currentIteration
}

// UpdateBestFoundSolution 用给定排班更新最优记录，只在严格更优时替换
// 记录保存的是引用而非副本，接受准则通过指针判等识别当前排班是否就是最优
// 返回 true 表示重启以来的最优被替换
func (s *IteratedLocalSearch) UpdateBestFoundSolution(solution *roster.Solution) bool {
	if solution == nil {
		return false
	}
	updated := false
	if s.overallBestFoundSolution == nil {
		s.overallBestFoundSolution = solution
		updated = true
	} else if s.overallBestFoundSolution.Evaluation().Compare(solution.Evaluation()) > 0 {
		s.overallBestFoundSolution = solution
	}
	if s.restartBestFoundSolution == nil {
		s.restartBestFoundSolution = solution
		s.restartBestFoundIteration = s.currentIteration
		updated = true
	} else if s.restartBestFoundSolution.Evaluation().Compare(solution.Evaluation()) > 0 {
		s.restartBestFoundSolution = solution
		s.restartBestFoundIteration = s.currentIteration
		updated = true
	}
	return updated
}
