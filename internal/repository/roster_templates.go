package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/sysu-ecnc-dev/shift-optimizer/backend/internal/domain"
)

func (r *Repository) GetAllRosterTemplates() ([]*domain.RosterTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			rt.id,
			rt.name,
			rt.description,
			rt.created_at,
			rt.version,
			rts.id,
			rts.start_time,
			rts.end_time,
			rts.required_assistant_number,
			rtsad.day
		FROM roster_templates rt
		LEFT JOIN roster_template_shifts rts ON rt.id = rts.template_id
		LEFT JOIN roster_template_shift_applicable_days rtsad ON rts.id = rtsad.shift_id
		ORDER BY rt.id, rts.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templatesMap := make(map[int64]*domain.RosterTemplate)
	shiftsMap := make(map[int64]map[int64]*domain.RosterTemplateShift) // templateID -> shiftID -> shift

	for rows.Next() {
		var row struct {
			ID          int64
			Name        string
			Description string
			CreatedAt   time.Time
			Version     int32

			ShiftID                 sql.NullInt64
			StartTime               sql.NullString
			EndTime                 sql.NullString
			RequiredAssistantNumber sql.NullInt32
			Day                     sql.NullInt32
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.Description,
			&row.CreatedAt,
			&row.Version,
			&row.ShiftID,
			&row.StartTime,
			&row.EndTime,
			&row.RequiredAssistantNumber,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if _, exists := templatesMap[row.ID]; !exists {
			// 说明此时是第一次查到这个 template，需要在 map 中初始化这个 template
			template := &domain.RosterTemplate{
				ID:          row.ID,
				Name:        row.Name,
				Description: row.Description,
				CreatedAt:   row.CreatedAt,
				Version:     row.Version,
			}
			templatesMap[row.ID] = template
			shiftsMap[row.ID] = make(map[int64]*domain.RosterTemplateShift)
		}

		// 如果 shiftID 为空，则表示这个模板不存在任何的班次，此时可以跳过 shift 解析的部分
		if !row.ShiftID.Valid {
			continue
		}

		// 解析 shift
		shift, exists := shiftsMap[row.ID][row.ShiftID.Int64]
		if !exists {
			// 说明此时是第一次查到这个 shift，需要在 map 中初始化这个 shift
			shift = &domain.RosterTemplateShift{
				ID:                      row.ShiftID.Int64,
				StartTime:               row.StartTime.String,
				EndTime:                 row.EndTime.String,
				RequiredAssistantNumber: row.RequiredAssistantNumber.Int32,
				ApplicableDays:          make([]int32, 0),
			}
			shiftsMap[row.ID][row.ShiftID.Int64] = shift
		}

		// 如果 day 为空，则表示这个 shift 不存在任何的适用日期，此时可以跳过 day 解析的部分
		if !row.Day.Valid {
			continue
		}

		// 解析 day
		shift.ApplicableDays = append(shift.ApplicableDays, row.Day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 组装结果
	templates := make([]*domain.RosterTemplate, 0, len(templatesMap))

	for templateID, template := range templatesMap {
		template.Shifts = make([]domain.RosterTemplateShift, 0, len(shiftsMap[templateID]))
		for _, shift := range shiftsMap[templateID] {
			template.Shifts = append(template.Shifts, *shift)
		}
		templates = append(templates, template)
	}

	return templates, nil
}

func (r *Repository) CreateRosterTemplate(rt *domain.RosterTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO roster_templates (name, description)
		VALUES ($1, $2)
		RETURNING id, created_at, version
	`
	if err := tx.QueryRowContext(ctx, query, rt.Name, rt.Description).Scan(&rt.ID, &rt.CreatedAt, &rt.Version); err != nil {
		return err
	}

	for i := range rt.Shifts {
		query = `
			INSERT INTO roster_template_shifts (template_id, start_time, end_time, required_assistant_number)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`
		params := []any{rt.ID, rt.Shifts[i].StartTime, rt.Shifts[i].EndTime, rt.Shifts[i].RequiredAssistantNumber}
		if err := tx.QueryRowContext(ctx, query, params...).Scan(&rt.Shifts[i].ID); err != nil {
			return err
		}

		for _, day := range rt.Shifts[i].ApplicableDays {
			query = `
				INSERT INTO roster_template_shift_applicable_days (shift_id, day)
				VALUES ($1, $2)
			`
			if _, err := tx.ExecContext(ctx, query, rt.Shifts[i].ID, day); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetRosterTemplate(id int64) (*domain.RosterTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			rt.name,
			rt.description,
			rt.created_at,
			rt.version,
			rts.id,
			rts.start_time,
			rts.end_time,
			rts.required_assistant_number,
			rtsad.day
		FROM roster_templates rt
		LEFT JOIN roster_template_shifts rts ON rt.id = rts.template_id
		LEFT JOIN roster_template_shift_applicable_days rtsad ON rts.id = rtsad.shift_id
		WHERE rt.id = $1
		ORDER BY rts.id
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rt := &domain.RosterTemplate{
		ID: id,
	}
	shiftsMap := make(map[int64]*domain.RosterTemplateShift)

	for rows.Next() {
		var row struct {
			Name        string
			Description string
			CreatedAt   time.Time
			Version     int32

			ShiftID                 sql.NullInt64
			StartTime               sql.NullString
			EndTime                 sql.NullString
			RequiredAssistantNumber sql.NullInt32
			Day                     sql.NullInt32
		}

		dst := []any{
			&row.Name,
			&row.Description,
			&row.CreatedAt,
			&row.Version,
			&row.ShiftID,
			&row.StartTime,
			&row.EndTime,
			&row.RequiredAssistantNumber,
			&row.Day,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if rt.Name == "" {
			// 说明此时是第一次查到这个模板，需要初始化这个模板
			rt.Name = row.Name
			rt.Description = row.Description
			rt.CreatedAt = row.CreatedAt
			rt.Version = row.Version
		}

		if !row.ShiftID.Valid {
			// 说明该模板不存在任何班次
			continue
		}

		// 解析班次
		shift, exists := shiftsMap[row.ShiftID.Int64]
		if !exists {
			// 说明此时是第一次查到这个班次，需要初始化这个班次
			shift = &domain.RosterTemplateShift{
				ID:                      row.ShiftID.Int64,
				StartTime:               row.StartTime.String,
				EndTime:                 row.EndTime.String,
				RequiredAssistantNumber: row.RequiredAssistantNumber.Int32,
				ApplicableDays:          make([]int32, 0),
			}
			shiftsMap[row.ShiftID.Int64] = shift
		}

		if !row.Day.Valid {
			// 说明该班次不存在任何适用日期
			continue
		}

		shift.ApplicableDays = append(shift.ApplicableDays, row.Day.Int32)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	rt.Shifts = make([]domain.RosterTemplateShift, 0, len(shiftsMap))
	for _, shift := range shiftsMap {
		rt.Shifts = append(rt.Shifts, *shift)
	}

	return rt, nil
}

func (r *Repository) UpdateRosterTemplate(rt *domain.RosterTemplate) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		UPDATE roster_templates
		SET
			name = $1,
			description = $2,
			version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version
	`

	params := []any{rt.Name, rt.Description, rt.ID, rt.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, params...).Scan(&rt.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteRosterTemplate(id int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		DELETE FROM roster_templates WHERE id = $1
	`

	_, err := r.dbpool.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	return nil
}
