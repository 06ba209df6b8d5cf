package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

func (r *Repository) CreateShiftTemplate(tpl *domain.ShiftTemplate) error {
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
		INSERT INTO shift_templates (name, manager_id, location_id, repeat_type, start_time, end_time, effective_from, effective_to, min_guards, max_guards)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, is_active, created_at, version
	`
	args := []any{
		tpl.Name,
		tpl.ManagerID,
		tpl.LocationID,
		tpl.RepeatType,
		tpl.StartTime,
		tpl.EndTime,
		tpl.EffectiveFrom,
		tpl.EffectiveTo,
		tpl.MinGuards,
		tpl.MaxGuards,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&tpl.ID, &tpl.IsActive, &tpl.CreatedAt, &tpl.Version); err != nil {
		return err
	}

	for _, weekday := range tpl.Weekdays {
		query = `
			INSERT INTO shift_template_weekdays (template_id, weekday)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, tpl.ID, weekday); err != nil {
			return err
		}
	}

	for _, date := range tpl.FixedDates {
		query = `
			INSERT INTO shift_template_dates (template_id, date)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, tpl.ID, date); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// GetActiveTemplates 是生成引擎使用的读取入口，只返回启用且未删除的模板，
// 未命中的 ID 由引擎自己报告，这里不当作错误。
// 与其他查询不同，这里必须尊重调用方的 ctx，生成被取消时立即停止。
func (r *Repository) GetActiveTemplates(ctx context.Context, ids []int64) ([]*domain.ShiftTemplate, error) {
	if len(ids) == 0 {
		return []*domain.ShiftTemplate{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT
			st.id,
			st.name,
			st.manager_id,
			st.location_id,
			l.name,
			st.repeat_type,
			st.start_time,
			st.end_time,
			st.effective_from,
			st.effective_to,
			st.min_guards,
			st.max_guards,
			st.is_active,
			st.created_at,
			st.version,
			stw.weekday,
			std.date
		FROM shift_templates st
		JOIN locations l ON st.location_id = l.id
		LEFT JOIN shift_template_weekdays stw ON st.id = stw.template_id
		LEFT JOIN shift_template_dates std ON st.id = std.template_id
		WHERE st.id IN (%s) AND st.is_active = TRUE AND st.deleted_at IS NULL
		ORDER BY st.id, stw.weekday, std.date
	`, strings.Join(placeholders, ", "))

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templatesMap := make(map[int64]*domain.ShiftTemplate)
	order := make([]int64, 0, len(ids))
	weekdaysSeen := make(map[int64]map[int32]struct{})
	datesSeen := make(map[int64]map[string]struct{})

	for rows.Next() {
		var row struct {
			ID            int64
			Name          string
			ManagerID     int64
			LocationID    int64
			LocationName  string
			RepeatType    string
			StartTime     string
			EndTime       string
			EffectiveFrom time.Time
			EffectiveTo   sql.NullTime
			MinGuards     int32
			MaxGuards     int32
			IsActive      bool
			CreatedAt     time.Time
			Version       int32

			Weekday sql.NullInt32
			Date    sql.NullTime
		}

		dst := []any{
			&row.ID,
			&row.Name,
			&row.ManagerID,
			&row.LocationID,
			&row.LocationName,
			&row.RepeatType,
			&row.StartTime,
			&row.EndTime,
			&row.EffectiveFrom,
			&row.EffectiveTo,
			&row.MinGuards,
			&row.MaxGuards,
			&row.IsActive,
			&row.CreatedAt,
			&row.Version,
			&row.Weekday,
			&row.Date,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		tpl, exists := templatesMap[row.ID]
		if !exists {
			// 第一次查到这个模板，初始化
			tpl = &domain.ShiftTemplate{
				ID:            row.ID,
				Name:          row.Name,
				ManagerID:     row.ManagerID,
				LocationID:    row.LocationID,
				LocationName:  row.LocationName,
				RepeatType:    domain.RepeatType(row.RepeatType),
				Weekdays:      make([]int32, 0),
				FixedDates:    make([]time.Time, 0),
				StartTime:     row.StartTime,
				EndTime:       row.EndTime,
				EffectiveFrom: row.EffectiveFrom,
				MinGuards:     row.MinGuards,
				MaxGuards:     row.MaxGuards,
				IsActive:      row.IsActive,
				CreatedAt:     row.CreatedAt,
				Version:       row.Version,
			}
			if row.EffectiveTo.Valid {
				effectiveTo := row.EffectiveTo.Time
				tpl.EffectiveTo = &effectiveTo
			}
			templatesMap[row.ID] = tpl
			order = append(order, row.ID)
			weekdaysSeen[row.ID] = make(map[int32]struct{})
			datesSeen[row.ID] = make(map[string]struct{})
		}

		// weekday 和 date 两个 LEFT JOIN 会产生笛卡尔积，去重后再收集
		if row.Weekday.Valid {
			if _, ok := weekdaysSeen[row.ID][row.Weekday.Int32]; !ok {
				weekdaysSeen[row.ID][row.Weekday.Int32] = struct{}{}
				tpl.Weekdays = append(tpl.Weekdays, row.Weekday.Int32)
			}
		}
		if row.Date.Valid {
			key := row.Date.Time.Format(time.DateOnly)
			if _, ok := datesSeen[row.ID][key]; !ok {
				datesSeen[row.ID][key] = struct{}{}
				tpl.FixedDates = append(tpl.FixedDates, row.Date.Time)
			}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	templates := make([]*domain.ShiftTemplate, 0, len(order))
	for _, id := range order {
		templates = append(templates, templatesMap[id])
	}

	return templates, nil
}

// GetShiftTemplateByID 管理接口使用，停用的模板也要能查出来，只过滤已删除的
func (r *Repository) GetShiftTemplateByID(id int64) (*domain.ShiftTemplate, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT
			st.name,
			st.manager_id,
			st.location_id,
			l.name,
			st.repeat_type,
			st.start_time,
			st.end_time,
			st.effective_from,
			st.effective_to,
			st.min_guards,
			st.max_guards,
			st.is_active,
			st.created_at,
			st.version,
			stw.weekday,
			std.date
		FROM shift_templates st
		JOIN locations l ON st.location_id = l.id
		LEFT JOIN shift_template_weekdays stw ON st.id = stw.template_id
		LEFT JOIN shift_template_dates std ON st.id = std.template_id
		WHERE st.id = $1 AND st.deleted_at IS NULL
		ORDER BY stw.weekday, std.date
	`

	rows, err := r.dbpool.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tpl := &domain.ShiftTemplate{
		ID:         id,
		Weekdays:   make([]int32, 0),
		FixedDates: make([]time.Time, 0),
	}
	found := false
	weekdaysSeen := make(map[int32]struct{})
	datesSeen := make(map[string]struct{})

	for rows.Next() {
		var row struct {
			Name          string
			ManagerID     int64
			LocationID    int64
			LocationName  string
			RepeatType    string
			StartTime     string
			EndTime       string
			EffectiveFrom time.Time
			EffectiveTo   sql.NullTime
			MinGuards     int32
			MaxGuards     int32
			IsActive      bool
			CreatedAt     time.Time
			Version       int32

			Weekday sql.NullInt32
			Date    sql.NullTime
		}

		dst := []any{
			&row.Name,
			&row.ManagerID,
			&row.LocationID,
			&row.LocationName,
			&row.RepeatType,
			&row.StartTime,
			&row.EndTime,
			&row.EffectiveFrom,
			&row.EffectiveTo,
			&row.MinGuards,
			&row.MaxGuards,
			&row.IsActive,
			&row.CreatedAt,
			&row.Version,
			&row.Weekday,
			&row.Date,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		if !found {
			found = true
			tpl.Name = row.Name
			tpl.ManagerID = row.ManagerID
			tpl.LocationID = row.LocationID
			tpl.LocationName = row.LocationName
			tpl.RepeatType = domain.RepeatType(row.RepeatType)
			tpl.StartTime = row.StartTime
			tpl.EndTime = row.EndTime
			tpl.EffectiveFrom = row.EffectiveFrom
			if row.EffectiveTo.Valid {
				effectiveTo := row.EffectiveTo.Time
				tpl.EffectiveTo = &effectiveTo
			}
			tpl.MinGuards = row.MinGuards
			tpl.MaxGuards = row.MaxGuards
			tpl.IsActive = row.IsActive
			tpl.CreatedAt = row.CreatedAt
			tpl.Version = row.Version
		}

		if row.Weekday.Valid {
			if _, ok := weekdaysSeen[row.Weekday.Int32]; !ok {
				weekdaysSeen[row.Weekday.Int32] = struct{}{}
				tpl.Weekdays = append(tpl.Weekdays, row.Weekday.Int32)
			}
		}
		if row.Date.Valid {
			key := row.Date.Time.Format(time.DateOnly)
			if _, ok := datesSeen[key]; !ok {
				datesSeen[key] = struct{}{}
				tpl.FixedDates = append(tpl.FixedDates, row.Date.Time)
			}
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if !found {
		return nil, sql.ErrNoRows
	}

	return tpl, nil
}

// GetShiftTemplatesByManager 管理接口使用的列表查询，managerID 为空表示不按经理过滤。
// 停用的模板也要返回，所以不能走 GetActiveTemplates。
func (r *Repository) GetShiftTemplatesByManager(managerID *int64) ([]*domain.ShiftTemplate, error) {
	query := `
		SELECT id FROM shift_templates
		WHERE ($1::BIGINT IS NULL OR manager_id = $1) AND deleted_at IS NULL
		ORDER BY id
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	templates := make([]*domain.ShiftTemplate, 0, len(ids))
	for _, id := range ids {
		tpl, err := r.GetShiftTemplateByID(id)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}

	return templates, nil
}

func (r *Repository) UpdateShiftTemplate(tpl *domain.ShiftTemplate) error {
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
		UPDATE shift_templates
		SET
			name = $1,
			repeat_type = $2,
			start_time = $3,
			end_time = $4,
			is_active = $5,
			effective_from = $6,
			effective_to = $7,
			min_guards = $8,
			max_guards = $9,
			version = version + 1
		WHERE id = $10 AND version = $11 AND deleted_at IS NULL
		RETURNING version
	`

	args := []any{
		tpl.Name,
		tpl.RepeatType,
		tpl.StartTime,
		tpl.EndTime,
		tpl.IsActive,
		tpl.EffectiveFrom,
		tpl.EffectiveTo,
		tpl.MinGuards,
		tpl.MaxGuards,
		tpl.ID,
		tpl.Version,
	}
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&tpl.Version); err != nil {
		return err
	}

	// 重复模式直接整体重建
	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_template_weekdays WHERE template_id = $1`, tpl.ID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM shift_template_dates WHERE template_id = $1`, tpl.ID); err != nil {
		return err
	}

	for _, weekday := range tpl.Weekdays {
		query = `
			INSERT INTO shift_template_weekdays (template_id, weekday)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, tpl.ID, weekday); err != nil {
			return err
		}
	}

	for _, date := range tpl.FixedDates {
		query = `
			INSERT INTO shift_template_dates (template_id, date)
			VALUES ($1, $2)
		`
		if _, err := tx.ExecContext(ctx, query, tpl.ID, date); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	return nil
}

// DeleteShiftTemplate 做软删除，历史班次还要引用模板
func (r *Repository) DeleteShiftTemplate(id int64) error {
	query := `
		UPDATE shift_templates SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
