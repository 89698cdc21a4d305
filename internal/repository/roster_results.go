package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

func (r *Repository) InsertRosterResult(result *domain.RosterResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// 手动提交的排班结果没有代价向量和求解轨迹，此时这两列写入 NULL
	var evaluationJSON any = nil
	if len(result.Evaluation) > 0 {
		data, err := json.Marshal(result.Evaluation)
		if err != nil {
			return err
		}
		evaluationJSON = data
	}

	var traceJSON any = nil
	if len(result.SolvingTrace) > 0 {
		data, err := json.Marshal(result.SolvingTrace)
		if err != nil {
			return err
		}
		traceJSON = data
	}

	// 先将之前的排班结果删除
	query := `DELETE FROM roster_results WHERE roster_plan_id = $1`
	if _, err := tx.ExecContext(ctx, query, result.RosterPlanID); err != nil {
		return err
	}

	query = `
		INSERT INTO roster_results (roster_plan_id, evaluation, solving_trace)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, version
	`

	if err := tx.QueryRowContext(ctx, query, result.RosterPlanID, evaluationJSON, traceJSON).Scan(&result.ID, &result.CreatedAt, &result.Version); err != nil {
		return err
	}

	for _, shift := range result.Shifts {
		query := `
			INSERT INTO roster_result_shifts (roster_result_id, roster_template_shift_id)
			VALUES ($1, $2)
			RETURNING id
		`

		var shiftID int64
		if err := tx.QueryRowContext(ctx, query, result.ID, shift.ShiftID).Scan(&shiftID); err != nil {
			return err
		}

		for _, item := range shift.Items {
			query := `
				INSERT INTO roster_result_shift_items (roster_result_shift_id, day_of_week, principal_id)
				VALUES ($1, $2, $3)
				RETURNING id
			`

			var itemID int64
			if err := tx.QueryRowContext(ctx, query, shiftID, item.Day, item.PrincipalID).Scan(&itemID); err != nil {
				return err
			}

			for _, assistantID := range item.AssistantIDs {
				query := `
					INSERT INTO roster_result_shift_item_assistants (roster_result_shift_item_id, assistant_id)
					VALUES ($1, $2)
				`

				if _, err := tx.ExecContext(ctx, query, itemID, assistantID); err != nil {
					return err
				}
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRosterResultByRosterPlanID(rosterPlanID int64) (*domain.RosterResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			rr.id,
			rrs.roster_template_shift_id,
			rrsi.day_of_week,
			rrsi.principal_id,
			rrsia.assistant_id,
			rr.evaluation,
			rr.solving_trace,
			rr.created_at,
			rr.version
		FROM roster_results rr
		LEFT JOIN roster_result_shifts rrs ON rr.id = rrs.roster_result_id
		LEFT JOIN roster_result_shift_items rrsi ON rrs.id = rrsi.roster_result_shift_id
		LEFT JOIN roster_result_shift_item_assistants rrsia ON rrsi.id = rrsia.roster_result_shift_item_id
		WHERE rr.roster_plan_id = $1
	`

	rows, err := r.dbpool.QueryContext(ctx, query, rosterPlanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := &domain.RosterResult{
		RosterPlanID: rosterPlanID,
	}

	var rawEvaluation, rawTrace []byte
	shiftsMap := make(map[int64]*domain.RosterResultShift)              // templateShiftID -> shift
	itemsMap := make(map[int64]map[int32]*domain.RosterResultShiftItem) // templateShiftID -> item.Day -> item

	for rows.Next() {
		var row struct {
			resultID        int64
			templateShiftID sql.NullInt64
			dayOfWeek       sql.NullInt32
			principalID     sql.NullInt64
			assistantID     sql.NullInt64
			evaluation      []byte
			solvingTrace    []byte
			createdAt       time.Time
			version         int32
		}

		dst := []any{
			&row.resultID,
			&row.templateShiftID,
			&row.dayOfWeek,
			&row.principalID,
			&row.assistantID,
			&row.evaluation,
			&row.solvingTrace,
			&row.createdAt,
			&row.version,
		}

		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		result.ID = row.resultID
		result.CreatedAt = row.createdAt
		result.Version = row.version
		rawEvaluation = row.evaluation
		rawTrace = row.solvingTrace

		if !row.templateShiftID.Valid {
			// 说明这个排班结果不存在任何班次，这在业务上是不可能，但是为了代码的健壮性，这里还是需要处理
			continue
		}

		if _, exists := shiftsMap[row.templateShiftID.Int64]; !exists {
			shiftsMap[row.templateShiftID.Int64] = &domain.RosterResultShift{
				ShiftID: row.templateShiftID.Int64,
			}
			itemsMap[row.templateShiftID.Int64] = make(map[int32]*domain.RosterResultShiftItem)
		}

		if !row.dayOfWeek.Valid {
			// 说明这个班次的每天都不存在排班结果，这在业务上也是不可能的
			continue
		}

		if _, exists := itemsMap[row.templateShiftID.Int64][row.dayOfWeek.Int32]; !exists {
			itemsMap[row.templateShiftID.Int64][row.dayOfWeek.Int32] = &domain.RosterResultShiftItem{
				Day:          row.dayOfWeek.Int32,
				PrincipalID:  nil,
				AssistantIDs: make([]int64, 0),
			}
			if row.principalID.Valid {
				itemsMap[row.templateShiftID.Int64][row.dayOfWeek.Int32].PrincipalID = &row.principalID.Int64
			}
		}

		if !row.assistantID.Valid {
			// 说明当天的这个班次没有任何助理，这是有可能的
			continue
		}

		itemsMap[row.templateShiftID.Int64][row.dayOfWeek.Int32].AssistantIDs = append(itemsMap[row.templateShiftID.Int64][row.dayOfWeek.Int32].AssistantIDs, row.assistantID.Int64)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 组装结果
	result.Shifts = make([]domain.RosterResultShift, 0, len(shiftsMap))
	for _, shift := range shiftsMap {
		shift.Items = make([]domain.RosterResultShiftItem, 0, len(itemsMap[shift.ShiftID]))
		for _, item := range itemsMap[shift.ShiftID] {
			shift.Items = append(shift.Items, *item)
		}
		result.Shifts = append(result.Shifts, *shift)
	}

	if len(rawEvaluation) > 0 {
		if err := json.Unmarshal(rawEvaluation, &result.Evaluation); err != nil {
			return nil, err
		}
	}
	if len(rawTrace) > 0 {
		if err := json.Unmarshal(rawTrace, &result.SolvingTrace); err != nil {
			return nil, err
		}
	}

	// 还需要处理没有结果的情况
	if result.ID == 0 {
		return nil, sql.ErrNoRows
	}

	return result, nil
}
