package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/domain"
)

type Resolver struct {
	src ExceptionSource
}

func NewResolver(src ExceptionSource) *Resolver {
	return &Resolver{src: src}
}

// Resolve 按固定优先级检查例外：节假日 > 驻点关闭 > 请假/取消记录，命中即返回。
// 任何一个数据源查询失败都按"无例外"处理，只记录告警，不中断本次生成。
func (r *Resolver) Resolve(ctx context.Context, locationID int64, templateID int64, date time.Time) Verdict {
	isHoliday, err := r.src.IsHoliday(ctx, locationID, date)
	if err != nil {
		slog.Warn("节假日数据源查询失败，按无例外处理", "locationID", locationID, "date", dateKey(date), "error", err)
	} else if isHoliday {
		return Verdict{Skip: true, Reason: ReasonHoliday, Message: "节假日停班"}
	}

	isClosed, err := r.src.IsClosed(ctx, locationID, date)
	if err != nil {
		slog.Warn("驻点关闭数据源查询失败，按无例外处理", "locationID", locationID, "date", dateKey(date), "error", err)
	} else if isClosed {
		return Verdict{Skip: true, Reason: ReasonLocationClosed, Message: "驻点临时关闭"}
	}

	issue, err := r.src.FindIssue(ctx, templateID, date)
	if err != nil {
		slog.Warn("请假/取消记录查询失败，按无例外处理", "templateID", templateID, "date", dateKey(date), "error", err)
	} else if issue != nil {
		msg := issue.Reason
		if msg == "" {
			msg = issueMessage(issue.Type)
		}
		return Verdict{Skip: true, Reason: string(issue.Type), Message: msg}
	}

	return Verdict{}
}

func issueMessage(t domain.IssueType) string {
	switch t {
	case domain.IssueSickLeave:
		return "保安病假"
	case domain.IssuePersonalLeave:
		return "保安事假"
	case domain.IssueBulkCancel:
		return "经理批量取消"
	default:
		return "该班次已登记例外"
	}
}
