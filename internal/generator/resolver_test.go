package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

type fakeSource struct {
	holidays map[string]bool
	closures map[string]bool
	issues   map[string]*domain.ShiftIssue

	holidayErr error
	closedErr  error
	issueErr   error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		holidays: make(map[string]bool),
		closures: make(map[string]bool),
		issues:   make(map[string]*domain.ShiftIssue),
	}
}

func (s *fakeSource) IsHoliday(_ context.Context, locationID int64, date time.Time) (bool, error) {
	if s.holidayErr != nil {
		return false, s.holidayErr
	}
	return s.holidays[exceptionKey(locationID, date)], nil
}

func (s *fakeSource) IsClosed(_ context.Context, locationID int64, date time.Time) (bool, error) {
	if s.closedErr != nil {
		return false, s.closedErr
	}
	return s.closures[exceptionKey(locationID, date)], nil
}

func (s *fakeSource) FindIssue(_ context.Context, templateID int64, date time.Time) (*domain.ShiftIssue, error) {
	if s.issueErr != nil {
		return nil, s.issueErr
	}
	return s.issues[exceptionKey(templateID, date)], nil
}

func exceptionKey(id int64, date time.Time) string {
	return fmt.Sprintf("%d_%s", id, dateKey(date))
}

func TestResolver(t *testing.T) {
	day := date(2025, 1, 15)

	t.Run("无例外", func(t *testing.T) {
		r := NewResolver(newFakeSource())
		require.Equal(t, Verdict{}, r.Resolve(context.Background(), 1, 1, day))
	})

	t.Run("节假日优先于驻点关闭和请假记录", func(t *testing.T) {
		src := newFakeSource()
		src.holidays[exceptionKey(1, day)] = true
		src.closures[exceptionKey(1, day)] = true
		src.issues[exceptionKey(1, day)] = &domain.ShiftIssue{Type: domain.IssueSickLeave}

		verdict := NewResolver(src).Resolve(context.Background(), 1, 1, day)
		require.True(t, verdict.Skip)
		require.Equal(t, ReasonHoliday, verdict.Reason)
	})

	t.Run("驻点关闭优先于请假记录", func(t *testing.T) {
		src := newFakeSource()
		src.closures[exceptionKey(1, day)] = true
		src.issues[exceptionKey(1, day)] = &domain.ShiftIssue{Type: domain.IssueSickLeave}

		verdict := NewResolver(src).Resolve(context.Background(), 1, 1, day)
		require.True(t, verdict.Skip)
		require.Equal(t, ReasonLocationClosed, verdict.Reason)
	})

	t.Run("请假记录的原因为空时使用默认文案", func(t *testing.T) {
		src := newFakeSource()
		src.issues[exceptionKey(1, day)] = &domain.ShiftIssue{Type: domain.IssuePersonalLeave}

		verdict := NewResolver(src).Resolve(context.Background(), 1, 1, day)
		require.True(t, verdict.Skip)
		require.Equal(t, string(domain.IssuePersonalLeave), verdict.Reason)
		require.Equal(t, "保安事假", verdict.Message)
	})

	t.Run("请假记录自带原因时原样返回", func(t *testing.T) {
		src := newFakeSource()
		src.issues[exceptionKey(1, day)] = &domain.ShiftIssue{Type: domain.IssueBulkCancel, Reason: "驻点装修"}

		verdict := NewResolver(src).Resolve(context.Background(), 1, 1, day)
		require.True(t, verdict.Skip)
		require.Equal(t, "驻点装修", verdict.Message)
	})

	t.Run("数据源故障按无例外处理", func(t *testing.T) {
		src := newFakeSource()
		src.holidayErr = errors.New("连接超时")
		src.closedErr = errors.New("连接超时")
		src.issueErr = errors.New("连接超时")

		require.Equal(t, Verdict{}, NewResolver(src).Resolve(context.Background(), 1, 1, day))
	})

	t.Run("节假日数据源故障时仍然检查后续例外", func(t *testing.T) {
		src := newFakeSource()
		src.holidayErr = errors.New("连接超时")
		src.closures[exceptionKey(1, day)] = true

		verdict := NewResolver(src).Resolve(context.Background(), 1, 1, day)
		require.True(t, verdict.Skip)
		require.Equal(t, ReasonLocationClosed, verdict.Reason)
	})
}
