package scheduler

import (
	"math"
	"time"
)

// IteratedLocalSearchSettings: 迭代局部搜索求解器的运行参数
type IteratedLocalSearchSettings struct {
	// MaxIterations 全部协程累计的迭代数上限
	MaxIterations int
	// TimeLimit 求解时间上限
	TimeLimit time.Duration
	// PerturbationStrength 扰动强度，0 到 1 之间
	PerturbationStrength float64
	// WorseSolutionAcceptanceRate 接受更差排班的概率，0 到 1 之间
	WorseSolutionAcceptanceRate float64
	// BlockSizes 变邻域下降使用的块大小序列
	BlockSizes []int
	// RngSeed 随机数种子，第 i 个协程使用 RngSeed+i
	RngSeed int64
	// SelectionPolicy 邻域内的择优策略
	SelectionPolicy NeighborSelectionPolicy
	// NbThreads 并行搜索协程数量
	NbThreads int
	// ShareBestFoundSolution 协程间是否互相拉取最优排班，单协程时无效
	ShareBestFoundSolution bool
	// TraceRecordPeriod 求解轨迹的记录周期
	TraceRecordPeriod time.Duration
	// RecordTrace 是否记录求解轨迹
	RecordTrace bool
	// RecordFullIterationTrace 是否记录每次迭代的详细轨迹
	RecordFullIterationTrace bool
	// RestartIterations 连续多少次迭代没有改善后重启，0 表示每次迭代都重启
	RestartIterations int
}

// DefaultIteratedLocalSearchSettings 返回一组适合常见规模问题的默认参数
func DefaultIteratedLocalSearchSettings() *IteratedLocalSearchSettings {
	return &IteratedLocalSearchSettings{
		MaxIterations:               math.MaxInt32,
		TimeLimit:                   60 * time.Second,
		PerturbationStrength:        0.03,
		WorseSolutionAcceptanceRate: 0.1,
		BlockSizes:                  []int{1, 2, 3, 4, 5, 6, 7},
		RngSeed:                     0,
		SelectionPolicy:             FirstImproving,
		NbThreads:                   1,
		ShareBestFoundSolution:      true,
		TraceRecordPeriod:           time.Second,
		RecordTrace:                 true,
		RecordFullIterationTrace:    false,
		RestartIterations:           30,
	}
}

func (s *IteratedLocalSearchSettings) Validate() error {
	if s.MaxIterations < 1 || s.TimeLimit < time.Second {
		return ErrInvalidArgument
	}
	if s.PerturbationStrength < 0 || s.PerturbationStrength > 1 {
		return ErrInvalidArgument
	}
	if s.WorseSolutionAcceptanceRate < 0 || s.WorseSolutionAcceptanceRate > 1 {
		return ErrInvalidArgument
	}
	if len(s.BlockSizes) == 0 {
		return ErrInvalidArgument
	}
	for _, size := range s.BlockSizes {
		if size < 1 {
			return ErrInvalidArgument
		}
	}
	if s.NbThreads < 1 || s.TraceRecordPeriod < time.Second || s.RestartIterations < 0 {
		return ErrInvalidArgument
	}
	return nil
}

// MemeticAlgorithmSettings: 模因算法求解器的运行参数
type MemeticAlgorithmSettings struct {
	// MaxIterations 全部协程累计的迭代数上限
	MaxIterations int
	// TimeLimit 求解时间上限
	TimeLimit time.Duration
	// PerturbationStrength 变异（块轮换扰动）的强度
	PerturbationStrength float64
	// LocalSearchBlockSizes 变邻域下降与变异使用的块大小序列
	LocalSearchBlockSizes []int
	// CrossoverBlockSizes 块交叉使用的块大小序列
	CrossoverBlockSizes []int
	// RngSeed 随机数种子，种群与第 i 个协程分别使用 RngSeed 和 RngSeed+i
	RngSeed int64
	// NbThreads 并行搜索协程数量
	NbThreads int
	// PopulationSize 种群容量
	PopulationSize int
}

// DefaultMemeticAlgorithmSettings 返回内置的默认参数
func DefaultMemeticAlgorithmSettings() *MemeticAlgorithmSettings {
	return &MemeticAlgorithmSettings{
		MaxIterations:         math.MaxInt32,
		TimeLimit:             400 * time.Second,
		PerturbationStrength:  0.03,
		LocalSearchBlockSizes: []int{1, 2, 3, 4, 5, 6, 7},
		CrossoverBlockSizes:   []int{1, 5, 7},
		RngSeed:               0,
		NbThreads:             3,
		PopulationSize:        30,
	}
}

func (s *MemeticAlgorithmSettings) Validate() error {
	if s.MaxIterations < 1 || s.TimeLimit < time.Second {
		return ErrInvalidArgument
	}
	if s.PerturbationStrength < 0 || s.PerturbationStrength > 1 {
		return ErrInvalidArgument
	}
	if len(s.LocalSearchBlockSizes) == 0 || len(s.CrossoverBlockSizes) == 0 {
		return ErrInvalidArgument
	}
	for _, size := range s.LocalSearchBlockSizes {
		if size < 1 {
			return ErrInvalidArgument
		}
	}
	for _, size := range s.CrossoverBlockSizes {
		if size < 1 {
			return ErrInvalidArgument
		}
	}
	if s.NbThreads < 1 || s.PopulationSize < 1 {
		return ErrInvalidArgument
	}
	return nil
}
