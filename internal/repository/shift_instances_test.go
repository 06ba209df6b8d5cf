package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/anxun-security/guard-roster/backend/internal/config"
	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

func newTestRepository(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{}
	cfg.Database.QueryTimeout = 5
	cfg.Database.TransactionTimeout = 10

	return NewRepository(cfg, db), mock
}

func TestShiftInstanceExists(t *testing.T) {
	repo, mock := newTestRepository(t)
	day := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM shift_instances WHERE template_id = $1 AND date = $2)")).
		WithArgs(int64(1), day).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ShiftInstanceExists(context.Background(), 1, day)
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateShiftInstances(t *testing.T) {
	t.Run("全部写入成功", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		now := time.Now()

		instances := []*domain.ShiftInstance{
			{TemplateID: 1, LocationID: 101, Date: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), Status: domain.ShiftStatusPending},
			{TemplateID: 1, LocationID: 101, Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), Status: domain.ShiftStatusPending},
		}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shift_instances")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(int64(5), now, int32(1)))
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shift_instances")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(int64(6), now, int32(1)))
		mock.ExpectCommit()

		createdIDs, err := repo.CreateShiftInstances(context.Background(), instances)
		require.NoError(t, err)
		require.Equal(t, []int64{5, 6}, createdIDs)
		require.Equal(t, int64(5), instances[0].ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("撞唯一约束的班次静默跳过", func(t *testing.T) {
		repo, mock := newTestRepository(t)
		now := time.Now()

		instances := []*domain.ShiftInstance{
			{TemplateID: 1, Date: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)},
			{TemplateID: 1, Date: time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
		}

		mock.ExpectBegin()
		// ON CONFLICT DO NOTHING 时 RETURNING 不返回行
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shift_instances")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shift_instances")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "version"}).AddRow(int64(7), now, int32(1)))
		mock.ExpectCommit()

		createdIDs, err := repo.CreateShiftInstances(context.Background(), instances)
		require.NoError(t, err)
		require.Equal(t, []int64{7}, createdIDs)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("写入失败时回滚", func(t *testing.T) {
		repo, mock := newTestRepository(t)

		instances := []*domain.ShiftInstance{
			{TemplateID: 1, Date: time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)},
		}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO shift_instances")).
			WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		_, err := repo.CreateShiftInstances(context.Background(), instances)
		require.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListShiftInstances(t *testing.T) {
	repo, mock := newTestRepository(t)

	templateID := int64(1)
	from := time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC)
	filter := &domain.ShiftInstanceFilter{
		TemplateID: &templateID,
		From:       &from,
	}

	rows := sqlmock.NewRows([]string{"id", "template_id", "location_id", "date", "start_time", "end_time", "status", "created_at", "version"}).
		AddRow(int64(5), int64(1), int64(101), from, from.Add(8*time.Hour), from.Add(16*time.Hour), "待分配", time.Now(), int32(1))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE template_id = $1 AND date >= $2")).
		WithArgs(templateID, from).
		WillReturnRows(rows)

	instances, err := repo.ListShiftInstances(filter)
	require.NoError(t, err)
	require.Len(t, instances, 1)
	require.Equal(t, int64(5), instances[0].ID)
	require.Equal(t, domain.ShiftStatusPending, instances[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
