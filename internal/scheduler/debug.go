package scheduler

import (
	"log/slog"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
)

// debugCheckEvaluations 开启后每次应用移动都会重新全量评估并与增量评估对比
// 增量评估的实现出错时能第一时间暴露，正常运行时保持关闭
var debugCheckEvaluations = false

func verifyEvaluation(s *roster.Solution, predicted roster.Evaluation) {
	if !debugCheckEvaluations {
		return
	}
	s.InvalidateEvaluation()
	recomputed := s.Evaluation()
	if !predicted.Equal(recomputed) {
		slog.Error("移动的增量评估与全量评估不一致", "增量评估", predicted.String(), "全量评估", recomputed.String())
	}
}
