package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/roster"
	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/scheduler"
)

// solvingWorker 统一两种求解器在任务注册表中需要的操作
type solvingWorker interface {
	Run(ctx context.Context) *roster.Solution
	Progress() int
	IterationCount() int
	BestFoundEvaluation() roster.Evaluation
	Cancel()
}

// optimizationJob: 一次自动排班任务
// worker 由后台协程驱动，status 和 finishedAt 由 jobsMutex 保护
type optimizationJob struct {
	rosterPlanID int64
	algorithm    string
	worker       solvingWorker
	ilsWorker    *scheduler.IteratedLocalSearchWorker // 只有迭代局部搜索记录求解轨迹

	status     string
	startedAt  time.Time
	finishedAt *time.Time
	cancel     context.CancelFunc
}

func (h *Handler) StartOptimization(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	var req struct {
		Algorithm            string   `json:"algorithm" validate:"required,oneof=ils memetic"`
		TimeLimit            *int     `json:"timeLimit" validate:"omitempty,min=1"` // 秒
		MaxIterations        *int     `json:"maxIterations" validate:"omitempty,min=1"`
		PerturbationStrength *float64 `json:"perturbationStrength" validate:"omitempty,min=0,max=1"`
		AcceptanceRate       *float64 `json:"acceptanceRate" validate:"omitempty,min=0,max=1"`
		RngSeed              *int64   `json:"rngSeed"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 获取排班计划所用的模板
	template, err := h.repository.GetRosterTemplate(plan.RosterTemplateID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 获取排班计划的提交记录
	submissions, err := h.repository.GetAllSubmissionsByRosterPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 获取所有用户
	users, err := h.repository.GetAllUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 构建排班问题
	problem, err := scheduler.BuildProblem(template, users, submissions, scheduler.WeekStart(plan.ActiveStartTime))
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	blockSizes, err := parseBlockSizes(h.config.Optimizer.BlockSizes)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 构建求解器
	var worker solvingWorker
	var ilsWorker *scheduler.IteratedLocalSearchWorker

	switch req.Algorithm {
	case domain.OptimizationAlgorithmILS:
		settings := h.ilsSettings(blockSizes)
		if req.TimeLimit != nil {
			settings.TimeLimit = time.Duration(*req.TimeLimit) * time.Second
		}
		if req.MaxIterations != nil {
			settings.MaxIterations = *req.MaxIterations
		}
		if req.PerturbationStrength != nil {
			settings.PerturbationStrength = *req.PerturbationStrength
		}
		if req.AcceptanceRate != nil {
			settings.WorseSolutionAcceptanceRate = *req.AcceptanceRate
		}
		if req.RngSeed != nil {
			settings.RngSeed = *req.RngSeed
		}

		ilsWorker, err = scheduler.NewIteratedLocalSearchWorker(problem, nil, settings)
		if err != nil {
			h.errorResponse(w, r, "无效的求解参数")
			return
		}
		worker = ilsWorker
	case domain.OptimizationAlgorithmMemetic:
		settings := h.memeticSettings(blockSizes)
		if req.TimeLimit != nil {
			settings.TimeLimit = time.Duration(*req.TimeLimit) * time.Second
		}
		if req.MaxIterations != nil {
			settings.MaxIterations = *req.MaxIterations
		}
		if req.PerturbationStrength != nil {
			settings.PerturbationStrength = *req.PerturbationStrength
		}
		if req.RngSeed != nil {
			settings.RngSeed = *req.RngSeed
		}

		memeticWorker, err := scheduler.NewMemeticAlgorithmWorker(problem, nil, settings)
		if err != nil {
			h.errorResponse(w, r, "无效的求解参数")
			return
		}
		worker = memeticWorker
	}

	ctx, cancel := context.WithCancel(context.Background())
	job := &optimizationJob{
		rosterPlanID: plan.ID,
		algorithm:    req.Algorithm,
		worker:       worker,
		ilsWorker:    ilsWorker,
		status:       domain.OptimizationStatusRunning,
		startedAt:    time.Now(),
		cancel:       cancel,
	}

	// 同一个排班计划同一时间只允许一个任务，已结束的任务会被新任务替换
	h.jobsMutex.Lock()
	if existing, ok := h.jobs[plan.ID]; ok && existing.status == domain.OptimizationStatusRunning {
		h.jobsMutex.Unlock()
		cancel()
		h.errorResponse(w, r, "该排班计划已有正在运行的自动排班任务")
		return
	}
	h.jobs[plan.ID] = job
	h.jobsMutex.Unlock()

	go h.runOptimizationJob(ctx, job, plan)

	h.successResponse(w, r, "自动排班任务已开始", h.jobStatus(job))
}

func (h *Handler) GetOptimizationStatus(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	h.jobsMutex.Lock()
	job, ok := h.jobs[plan.ID]
	h.jobsMutex.Unlock()
	if !ok {
		h.successResponse(w, r, "该排班计划没有自动排班任务", nil)
		return
	}

	h.successResponse(w, r, "获取自动排班任务状态成功", h.jobStatus(job))
}

func (h *Handler) CancelOptimization(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	h.jobsMutex.Lock()
	job, ok := h.jobs[plan.ID]
	if !ok {
		h.jobsMutex.Unlock()
		h.errorResponse(w, r, "该排班计划没有自动排班任务")
		return
	}
	if job.status != domain.OptimizationStatusRunning {
		h.jobsMutex.Unlock()
		h.errorResponse(w, r, "自动排班任务已结束")
		return
	}
	job.status = domain.OptimizationStatusCancelled
	h.jobsMutex.Unlock()

	job.worker.Cancel()

	h.successResponse(w, r, "自动排班任务已取消", h.jobStatus(job))
}

func (h *Handler) GetOptimizationTrace(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(RosterPlanCtx).(*domain.RosterPlan)

	h.jobsMutex.Lock()
	job, ok := h.jobs[plan.ID]
	h.jobsMutex.Unlock()
	if !ok {
		h.successResponse(w, r, "该排班计划没有自动排班任务", nil)
		return
	}

	if job.ilsWorker == nil {
		h.errorResponse(w, r, "模因算法不记录求解轨迹")
		return
	}

	points := scheduler.SolvingTracePoints(job.ilsWorker.SolvingTraceRecords())
	h.successResponse(w, r, "获取求解轨迹成功", points)
}

// runOptimizationJob 在后台驱动求解，结束后持久化结果并通知黑心
func (h *Handler) runOptimizationJob(ctx context.Context, job *optimizationJob, plan *domain.RosterPlan) {
	defer job.cancel()

	best := job.worker.Run(ctx)

	now := time.Now()
	h.jobsMutex.Lock()
	cancelled := job.status == domain.OptimizationStatusCancelled
	if !cancelled {
		if best != nil {
			job.status = domain.OptimizationStatusCompleted
		} else {
			job.status = domain.OptimizationStatusFailed
		}
	}
	job.finishedAt = &now
	h.jobsMutex.Unlock()

	if cancelled {
		slog.Info("自动排班任务已取消", "rosterPlanID", job.rosterPlanID, "algorithm", job.algorithm)
		return
	}
	if best == nil {
		slog.Error("自动排班没有找到任何排班", "rosterPlanID", job.rosterPlanID, "algorithm", job.algorithm)
		return
	}

	// 持久化排班结果
	result := &domain.RosterResult{
		RosterPlanID: job.rosterPlanID,
		Shifts:       scheduler.ResultShifts(best),
		Evaluation:   scheduler.EvaluationRanks(best.Problem(), best.Evaluation()),
	}
	if job.ilsWorker != nil {
		result.SolvingTrace = scheduler.SolvingTracePoints(job.ilsWorker.SolvingTraceRecords())
	}

	if err := h.repository.InsertRosterResult(result); err != nil {
		h.jobsMutex.Lock()
		job.status = domain.OptimizationStatusFailed
		h.jobsMutex.Unlock()
		slog.Error("自动排班结果写入失败", "rosterPlanID", job.rosterPlanID, "error", err)
		return
	}

	slog.Info("自动排班完成", "rosterPlanID", job.rosterPlanID, "algorithm", job.algorithm, "evaluation", best.Evaluation(), "iterations", job.worker.IterationCount())

	h.notifyRosterReady(plan, job.algorithm)
}

// notifyRosterReady 给所有在职的黑心发送排班完成通知
func (h *Handler) notifyRosterReady(plan *domain.RosterPlan, algorithm string) {
	users, err := h.repository.GetAllUsers()
	if err != nil {
		slog.Error("获取用户列表失败, 无法发送排班完成通知", "error", err)
		return
	}

	for _, user := range users {
		if user.Role != domain.RoleBlackCore || !user.IsActive {
			continue
		}

		mailMessage := domain.MailMessage{
			Type: "roster_ready",
			To:   user.Email,
			Data: domain.RosterReadyMailData{
				FullName:  user.FullName,
				PlanName:  plan.Name,
				Algorithm: algorithm,
			},
		}

		mailData, err := json.Marshal(mailMessage)
		if err != nil {
			slog.Error("序列化排班完成通知失败", "error", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
		err = h.mailChannel.PublishWithContext(
			ctx,
			"",
			"email_queue",
			true,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        mailData,
			},
		)
		cancel()
		if err != nil {
			slog.Error("发送排班完成通知失败", "to", user.Email, "error", err)
		}
	}
}

// jobStatus 汇总任务当前的运行状态
func (h *Handler) jobStatus(job *optimizationJob) *domain.OptimizationJobStatus {
	h.jobsMutex.Lock()
	status := &domain.OptimizationJobStatus{
		RosterPlanID: job.rosterPlanID,
		Algorithm:    job.algorithm,
		Status:       job.status,
		StartedAt:    job.startedAt,
		FinishedAt:   job.finishedAt,
	}
	h.jobsMutex.Unlock()

	status.Progress = job.worker.Progress()
	status.IterationCount = job.worker.IterationCount()
	status.BestEvaluation = job.worker.BestFoundEvaluation()

	return status
}

// ilsSettings 以配置为基础生成迭代局部搜索的求解参数
func (h *Handler) ilsSettings(blockSizes []int) *scheduler.IteratedLocalSearchSettings {
	settings := scheduler.DefaultIteratedLocalSearchSettings()
	settings.NbThreads = h.config.Optimizer.NbThreads
	settings.TimeLimit = time.Duration(h.config.Optimizer.TimeLimit) * time.Second
	if h.config.Optimizer.MaxIterations > 0 {
		settings.MaxIterations = h.config.Optimizer.MaxIterations
	}
	settings.PerturbationStrength = h.config.Optimizer.PerturbationStrength
	settings.WorseSolutionAcceptanceRate = h.config.Optimizer.AcceptanceRate
	settings.RestartIterations = h.config.Optimizer.RestartIterations
	settings.TraceRecordPeriod = time.Duration(h.config.Optimizer.TraceRecordPeriod) * time.Second
	settings.BlockSizes = blockSizes
	return settings
}

// memeticSettings 以配置为基础生成模因算法的求解参数
func (h *Handler) memeticSettings(blockSizes []int) *scheduler.MemeticAlgorithmSettings {
	settings := scheduler.DefaultMemeticAlgorithmSettings()
	settings.NbThreads = h.config.Optimizer.NbThreads
	settings.TimeLimit = time.Duration(h.config.Optimizer.TimeLimit) * time.Second
	if h.config.Optimizer.MaxIterations > 0 {
		settings.MaxIterations = h.config.Optimizer.MaxIterations
	}
	settings.PerturbationStrength = h.config.Optimizer.PerturbationStrength
	settings.LocalSearchBlockSizes = blockSizes
	settings.PopulationSize = h.config.Optimizer.PopulationSize
	return settings
}

// parseBlockSizes 解析配置中逗号分隔的块大小序列
func parseBlockSizes(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	sizes := make([]int, 0, len(parts))
	for _, part := range parts {
		size, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("无效的块大小配置: %s", raw)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}
