package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var templateColumns = []string{
	"id", "name", "manager_id", "location_id", "l_name", "repeat_type",
	"start_time", "end_time", "effective_from", "effective_to",
	"min_guards", "max_guards", "is_active", "created_at", "version",
	"weekday", "date",
}

func TestGetActiveTemplates(t *testing.T) {
	t.Run("空 ID 列表不查库", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		templates, err := repo.GetActiveTemplates(context.Background(), nil)
		require.NoError(t, err)
		require.Empty(t, templates)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("笛卡尔积去重后组装模板", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		effectiveFrom := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		fixedDate := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		now := time.Now()

		// 两个 weekday 和一个 date 的 LEFT JOIN 产生 2x1 行
		rows := sqlmock.NewRows(templateColumns).
			AddRow(int64(1), "白班", int64(9), int64(101), "天河科技园 A 座", "WEEKLY",
				"08:00:00", "16:00:00", effectiveFrom, nil, int32(1), int32(2), true, now, int32(1), int32(1), fixedDate).
			AddRow(int64(1), "白班", int64(9), int64(101), "天河科技园 A 座", "WEEKLY",
				"08:00:00", "16:00:00", effectiveFrom, nil, int32(1), int32(2), true, now, int32(1), int32(3), fixedDate)

		mock.ExpectQuery("FROM shift_templates st").
			WithArgs(int64(1)).
			WillReturnRows(rows)

		templates, err := repo.GetActiveTemplates(context.Background(), []int64{1})
		require.NoError(t, err)
		require.Len(t, templates, 1)

		tpl := templates[0]
		require.Equal(t, int64(1), tpl.ID)
		require.Equal(t, "白班", tpl.Name)
		require.Equal(t, "天河科技园 A 座", tpl.LocationName)
		require.Equal(t, []int32{1, 3}, tpl.Weekdays)
		require.Equal(t, []time.Time{fixedDate}, tpl.FixedDates)
		require.Nil(t, tpl.EffectiveTo)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("未命中的 ID 不报错", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		mock.ExpectQuery("FROM shift_templates st").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(templateColumns))

		templates, err := repo.GetActiveTemplates(context.Background(), []int64{42})
		require.NoError(t, err)
		require.Empty(t, templates)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetShiftTemplateByID(t *testing.T) {
	t.Run("模板不存在返回 ErrNoRows", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		mock.ExpectQuery("FROM shift_templates st").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows(templateColumns[1:]))

		_, err := repo.GetShiftTemplateByID(42)
		require.True(t, errors.Is(err, sql.ErrNoRows))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("停用的模板也能查出来", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		effectiveFrom := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		now := time.Now()

		rows := sqlmock.NewRows(templateColumns[1:]).
			AddRow("夜班", int64(9), int64(101), "天河科技园 A 座", "WEEKLY",
				"22:00:00", "06:00:00", effectiveFrom, nil, int32(1), int32(1), false, now, int32(2), int32(5), nil)

		mock.ExpectQuery("FROM shift_templates st").
			WithArgs(int64(7)).
			WillReturnRows(rows)

		tpl, err := repo.GetShiftTemplateByID(7)
		require.NoError(t, err)
		require.Equal(t, int64(7), tpl.ID)
		require.False(t, tpl.IsActive)
		require.Equal(t, []int32{5}, tpl.Weekdays)
		require.Empty(t, tpl.FixedDates)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteShiftTemplate(t *testing.T) {
	repo, mock := newTestRepository(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE shift_templates SET deleted_at = NOW()")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteShiftTemplate(7))
	require.NoError(t, mock.ExpectationsWereMet())
}
