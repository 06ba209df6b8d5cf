package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

/**********************************************
 * 生成引擎使用的只读查询
 **********************************************/

// IsHoliday 判断 date 是否落在适用于该驻点的节假日内，location_id 为空的节假日对所有驻点生效
func (r *Repository) IsHoliday(ctx context.Context, locationID int64, date time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM holidays
			WHERE (location_id IS NULL OR location_id = $1) AND $2 BETWEEN start_date AND end_date
		)
	`

	isHoliday := false
	if err := r.dbpool.QueryRowContext(ctx, query, locationID, date).Scan(&isHoliday); err != nil {
		return false, err
	}

	return isHoliday, nil
}

func (r *Repository) IsClosed(ctx context.Context, locationID int64, date time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT EXISTS (
			SELECT 1 FROM location_closures
			WHERE location_id = $1 AND $2 BETWEEN start_date AND end_date
		)
	`

	isClosed := false
	if err := r.dbpool.QueryRowContext(ctx, query, locationID, date).Scan(&isClosed); err != nil {
		return false, err
	}

	return isClosed, nil
}

// FindIssue 查找针对 (模板, 日期) 的请假或取消记录，没有记录时返回 (nil, nil)
func (r *Repository) FindIssue(ctx context.Context, templateID int64, date time.Time) (*domain.ShiftIssue, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		SELECT id, issue_type, reason, created_by, created_at
		FROM shift_issues
		WHERE template_id = $1 AND date = $2
		ORDER BY id
		LIMIT 1
	`

	issue := &domain.ShiftIssue{
		TemplateID: templateID,
		Date:       date,
	}

	dst := []any{&issue.ID, &issue.Type, &issue.Reason, &issue.CreatedBy, &issue.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, templateID, date).Scan(dst...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return issue, nil
}

/**********************************************
 * 例外数据的管理接口
 **********************************************/

func (r *Repository) CreateHoliday(holiday *domain.Holiday) error {
	query := `
		INSERT INTO holidays (name, location_id, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{holiday.Name, holiday.LocationID, holiday.StartDate, holiday.EndDate}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&holiday.ID, &holiday.CreatedAt, &holiday.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllHolidays() ([]*domain.Holiday, error) {
	query := `
		SELECT id, name, location_id, start_date, end_date, created_at, version
		FROM holidays ORDER BY start_date
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holidays := make([]*domain.Holiday, 0)
	for rows.Next() {
		holiday := &domain.Holiday{}
		var locationID sql.NullInt64
		dst := []any{&holiday.ID, &holiday.Name, &locationID, &holiday.StartDate, &holiday.EndDate, &holiday.CreatedAt, &holiday.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if locationID.Valid {
			holiday.LocationID = &locationID.Int64
		}
		holidays = append(holidays, holiday)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}

func (r *Repository) DeleteHoliday(id int64) error {
	query := `
		DELETE FROM holidays WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateLocationClosure(closure *domain.LocationClosure) error {
	query := `
		INSERT INTO location_closures (location_id, reason, start_date, end_date)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, version
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{closure.LocationID, closure.Reason, closure.StartDate, closure.EndDate}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&closure.ID, &closure.CreatedAt, &closure.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAllLocationClosures() ([]*domain.LocationClosure, error) {
	query := `
		SELECT id, location_id, reason, start_date, end_date, created_at, version
		FROM location_closures ORDER BY start_date
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	closures := make([]*domain.LocationClosure, 0)
	for rows.Next() {
		closure := &domain.LocationClosure{}
		dst := []any{&closure.ID, &closure.LocationID, &closure.Reason, &closure.StartDate, &closure.EndDate, &closure.CreatedAt, &closure.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		closures = append(closures, closure)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return closures, nil
}

func (r *Repository) DeleteLocationClosure(id int64) error {
	query := `
		DELETE FROM location_closures WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) CreateShiftIssue(issue *domain.ShiftIssue) error {
	query := `
		INSERT INTO shift_issues (template_id, date, issue_type, reason, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	args := []any{issue.TemplateID, issue.Date, issue.Type, issue.Reason, issue.CreatedBy}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&issue.ID, &issue.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetShiftIssuesByTemplate(templateID int64) ([]*domain.ShiftIssue, error) {
	query := `
		SELECT id, template_id, date, issue_type, reason, created_by, created_at
		FROM shift_issues WHERE template_id = $1 ORDER BY date
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	issues := make([]*domain.ShiftIssue, 0)
	for rows.Next() {
		issue := &domain.ShiftIssue{}
		dst := []any{&issue.ID, &issue.TemplateID, &issue.Date, &issue.Type, &issue.Reason, &issue.CreatedBy, &issue.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		issues = append(issues, issue)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return issues, nil
}

func (r *Repository) DeleteShiftIssue(id int64) error {
	query := `
		DELETE FROM shift_issues WHERE id = $1
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return nil
}
