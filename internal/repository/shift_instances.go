package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

// ShiftInstanceExists 判断 (模板, 日期) 是否已经生成过班次
func (r *Repository) ShiftInstanceExists(ctx context.Context, templateID int64, date time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (SELECT 1 FROM shift_instances WHERE template_id = $1 AND date = $2)
	`

	isExists := false
	if err := r.dbpool.QueryRowContext(ctx, query, templateID, date).Scan(&isExists); err != nil {
		return false, err
	}

	return isExists, nil
}

// CreateShiftInstances 在一个事务中写入一个模板的全部新班次。
// (template_id, date) 上有唯一约束，并发生成撞到约束的行按已存在处理，
// 不报错也不计入返回的 ID 列表。
func (r *Repository) CreateShiftInstances(ctx context.Context, instances []*domain.ShiftInstance) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.TransactionTimeout)*time.Second)
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO shift_instances (template_id, location_id, date, start_time, end_time, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (template_id, date) DO NOTHING
		RETURNING id, created_at, version
	`

	createdIDs := make([]int64, 0, len(instances))
	for _, instance := range instances {
		args := []any{
			instance.TemplateID,
			instance.LocationID,
			instance.Date,
			instance.StartTime,
			instance.EndTime,
			instance.Status,
		}
		err := tx.QueryRowContext(ctx, query, args...).Scan(&instance.ID, &instance.CreatedAt, &instance.Version)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// DO NOTHING 导致没有返回行，说明并发生成已经抢先创建了这个班次
				continue
			}
			return nil, err
		}
		createdIDs = append(createdIDs, instance.ID)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return createdIDs, nil
}

// ListShiftInstances 根据可选过滤条件查询班次。
// 过滤条件在这里翻译成参数化的 WHERE 子句，上层只传结构体。
func (r *Repository) ListShiftInstances(filter *domain.ShiftInstanceFilter) ([]*domain.ShiftInstance, error) {
	conditions := make([]string, 0, 5)
	args := make([]any, 0, 5)

	appendCondition := func(column string, op string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf("%s %s $%d", column, op, len(args)))
	}

	if filter.TemplateID != nil {
		appendCondition("template_id", "=", *filter.TemplateID)
	}
	if filter.LocationID != nil {
		appendCondition("location_id", "=", *filter.LocationID)
	}
	if filter.Status != nil {
		appendCondition("status", "=", *filter.Status)
	}
	if filter.From != nil {
		appendCondition("date", ">=", *filter.From)
	}
	if filter.To != nil {
		appendCondition("date", "<", *filter.To)
	}

	query := `
		SELECT id, template_id, location_id, date, start_time, end_time, status, created_at, version
		FROM shift_instances
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date, id"

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	instances := make([]*domain.ShiftInstance, 0)
	for rows.Next() {
		instance := &domain.ShiftInstance{}
		dst := []any{
			&instance.ID,
			&instance.TemplateID,
			&instance.LocationID,
			&instance.Date,
			&instance.StartTime,
			&instance.EndTime,
			&instance.Status,
			&instance.CreatedAt,
			&instance.Version,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		instances = append(instances, instance)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return instances, nil
}
