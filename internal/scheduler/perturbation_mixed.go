package scheduler

import (
	"math/rand"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// 混合扰动内置的参数，两个算子的强度按经验取值
const (
	mixedRuinMaxBlockSize = 7
	mixedRuinStrength     = 0.1
	mixedExchangeStrength = 0.03
)

var mixedExchangeBlockSizes = []int{1, 2, 3, 4, 5, 6, 7}

// MixedPerturbationProcedure: 混合扰动
// 每次执行随机选择拆毁重建或块轮换中的一种
type MixedPerturbationProcedure struct {
	solution *roster.Solution
	done     bool
	rng      *rand.Rand

	ruinRecreateProcedure *RuinAndRecreateProcedure
	exchangePerturbation  *ExchangePerturbation
}

func NewMixedPerturbationProcedure(problem *roster.Problem, rng *rand.Rand) (*MixedPerturbationProcedure, error) {
	if problem == nil || rng == nil {
		return nil, ErrInvalidArgument
	}
	if len(problem.Employees()) < 1 {
		return nil, ErrInvalidArgument
	}
	ruinRecreate, err := NewRuinAndRecreateProcedure(
		problem, mixedRuinMaxBlockSize, mixedRuinStrength, rng)
	if err != nil {
		return nil, err
	}
	exchange, err := NewExchangePerturbation(
		problem, mixedExchangeBlockSizes, mixedExchangeStrength, rng)
	if err != nil {
		return nil, err
	}
	return &MixedPerturbationProcedure{
		rng:                   rng,
		ruinRecreateProcedure: ruinRecreate,
		exchangePerturbation:  exchange,
	}, nil
}

// Init 设定要扰动的排班，排班会被就地修改
func (p *MixedPerturbationProcedure) Init(solution *roster.Solution) error {
	if solution == nil {
		return ErrInvalidArgument
	}
	p.solution = solution
	p.done = false
	return nil
}

// NextStep 随机选择一种扰动算子并执行到结束
func (p *MixedPerturbationProcedure) NextStep() (bool, error) {
	if p.solution == nil {
		return false, ErrNotInitialized
	}

	var err error
	if p.rng.Intn(2) == 0 {
		err = RunPerturbation(p.ruinRecreateProcedure, p.solution)
	} else {
		err = RunPerturbation(p.exchangePerturbation, p.solution)
	}
	if err != nil {
		return false, err
	}

	p.done = true
	return false, nil
}

// IsDone 返回扰动是否完成
func (p *MixedPerturbationProcedure) IsDone() bool {
	return p.done
}
